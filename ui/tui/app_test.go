package tui

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"neo4jpg/internal/config"
	"neo4jpg/internal/database/graph"
)

// MockRunner returns n numbered records per query
type MockRunner struct {
	N        int
	Err      error
	LateErr  error
	Profiles []config.Profile
	Params   []string
	Pulled   int
}

func (m *MockRunner) Execute(ctx context.Context, profile config.Profile, query, params string) (iter.Seq2[graph.Record, error], error) {
	m.Profiles = append(m.Profiles, profile)
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return nil, m.Err
	}
	return func(yield func(graph.Record, error) bool) {
		for i := range m.N {
			m.Pulled++
			rec := graph.Record{Keys: []string{"n"}, Values: []graph.Value{graph.Scalar{V: int64(i)}}}
			if !yield(rec, nil) {
				return
			}
		}
		if m.LateErr != nil {
			yield(graph.Record{}, m.LateErr)
		}
	}, nil
}

type staticSource map[string][]string

func (s staticSource) ServerOptions(_ context.Context, server string) ([]string, error) {
	return s[server], nil
}

func newModel(runner *MockRunner) *MainModel {
	cfg := DefaultConfig()
	cfg.Pretty = false
	m := InitialModel(runner, staticSource{"films": {"url=bolt://films"}}, cfg)
	return &m
}

func typeAndEnter(t *testing.T, m *MainModel, text string) tea.Cmd {
	t.Helper()
	m.input.SetValue(text)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if updated.(*MainModel) != m {
		t.Fatal("Expected Update to return the same model")
	}
	return cmd
}

// runQuery executes the batched command returned for a query and feeds the
// resulting QueryDoneMsg back into the model.
func runQuery(t *testing.T, m *MainModel, cmd tea.Cmd) QueryDoneMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("Expected a command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("Expected a batch of commands")
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		if done, ok := c().(QueryDoneMsg); ok {
			m.Update(done)
			return done
		}
	}
	t.Fatal("No QueryDoneMsg produced")
	return QueryDoneMsg{}
}

func TestSubmitQuery(t *testing.T) {
	runner := &MockRunner{N: 2}
	m := newModel(runner)

	cmd := typeAndEnter(t, m, "UNWIND range(0,1) AS n RETURN n")
	if !m.state.Running {
		t.Error("Expected model to be running after enter")
	}
	if m.input.Value() != "" {
		t.Errorf("Expected input to be cleared, got %q", m.input.Value())
	}

	done := runQuery(t, m, cmd)
	if done.Entry.Err != nil {
		t.Fatalf("Expected no error, got %v", done.Entry.Err)
	}
	if strings.Join(done.Entry.Lines, "|") != `{"n":0}|{"n":1}` {
		t.Errorf("Unexpected lines %v", done.Entry.Lines)
	}
	if m.state.Running {
		t.Error("Expected model to stop running after QueryDoneMsg")
	}
	if len(m.state.History) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(m.state.History))
	}
	if !strings.Contains(m.viewport.View(), `{"n":1}`) {
		t.Error("Expected output to be rendered in the viewport")
	}
}

func TestSubmitEmptyInput(t *testing.T) {
	m := newModel(&MockRunner{})
	if cmd := typeAndEnter(t, m, "   "); cmd != nil {
		t.Error("Expected no command for empty input")
	}
	if m.state.Running {
		t.Error("Expected model not to be running")
	}
}

func TestLimitTruncates(t *testing.T) {
	runner := &MockRunner{N: 10}
	m := newModel(runner)

	typeAndEnter(t, m, ":limit 3")
	if m.state.Limit != 3 {
		t.Fatalf("Expected limit 3, got %d", m.state.Limit)
	}

	done := runQuery(t, m, typeAndEnter(t, m, "RETURN n"))
	if len(done.Entry.Lines) != 3 || !done.Entry.Truncated {
		t.Errorf("Expected 3 truncated lines, got %d (truncated=%v)", len(done.Entry.Lines), done.Entry.Truncated)
	}
	if runner.Pulled != 4 {
		t.Errorf("Expected runner to stop after 4 records, pulled %d", runner.Pulled)
	}
}

func TestLimitKeepsLinesWhenNextRowFails(t *testing.T) {
	runner := &MockRunner{N: 3, LateErr: errors.New("late failure")}
	m := newModel(runner)
	typeAndEnter(t, m, ":limit 3")

	done := runQuery(t, m, typeAndEnter(t, m, "RETURN n"))
	if done.Entry.Err != nil {
		t.Errorf("Expected no error past the limit, got %v", done.Entry.Err)
	}
	if len(done.Entry.Lines) != 3 || !done.Entry.Truncated {
		t.Errorf("Expected 3 truncated lines, got %d (truncated=%v)", len(done.Entry.Lines), done.Entry.Truncated)
	}
}

func TestCommands(t *testing.T) {
	runner := &MockRunner{N: 1}
	m := newModel(runner)

	typeAndEnter(t, m, ":server films")
	typeAndEnter(t, m, ":params {'x': 1}")
	runQuery(t, m, typeAndEnter(t, m, "RETURN $x"))

	if runner.Profiles[0].URL != "bolt://films" {
		t.Errorf("Expected films server profile, got %s", runner.Profiles[0])
	}
	if runner.Params[0] != "{'x': 1}" {
		t.Errorf("Expected params to be passed through, got %q", runner.Params[0])
	}

	typeAndEnter(t, m, ":limit zero")
	if !strings.Contains(m.state.Notice, "invalid limit") {
		t.Errorf("Expected invalid limit notice, got %q", m.state.Notice)
	}

	typeAndEnter(t, m, ":bogus")
	if !strings.Contains(m.state.Notice, "unknown command") {
		t.Errorf("Expected unknown command notice, got %q", m.state.Notice)
	}

	typeAndEnter(t, m, ":clear")
	if len(m.state.History) != 0 {
		t.Errorf("Expected history to be cleared, got %d entries", len(m.state.History))
	}

	cmd := typeAndEnter(t, m, ":quit")
	if cmd == nil || !m.quitting {
		t.Error("Expected :quit to quit")
	}
}

func TestQueryError(t *testing.T) {
	m := newModel(&MockRunner{Err: errors.New("connection refused")})

	done := runQuery(t, m, typeAndEnter(t, m, "RETURN 1"))
	if done.Entry.Err == nil {
		t.Fatal("Expected an error entry")
	}
	if !strings.Contains(m.viewport.View(), "connection refused") {
		t.Error("Expected error to be rendered")
	}
}

func TestHistoryRecall(t *testing.T) {
	m := newModel(&MockRunner{})
	runQuery(t, m, typeAndEnter(t, m, "RETURN 1"))
	runQuery(t, m, typeAndEnter(t, m, "RETURN 2"))

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.input.Value() != "RETURN 2" {
		t.Errorf("Expected last query, got %q", m.input.Value())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.input.Value() != "RETURN 1" {
		t.Errorf("Expected first query, got %q", m.input.Value())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.input.Value() != "" {
		t.Errorf("Expected empty input past the newest query, got %q", m.input.Value())
	}
}

func TestCtrlC(t *testing.T) {
	m := newModel(&MockRunner{})

	typeAndEnter(t, m, "RETURN 1")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd != nil || m.quitting {
		t.Error("Expected ctrl+c to cancel the running query, not quit")
	}

	m.state.Running = false
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !m.quitting {
		t.Error("Expected ctrl+c to quit when idle")
	}
	if m.View() != "Bye!\n" {
		t.Errorf("Unexpected final view %q", m.View())
	}
}

func TestWindowResize(t *testing.T) {
	m := newModel(&MockRunner{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.viewport.Width != 100 || m.viewport.Height != 26 {
		t.Errorf("Unexpected viewport size %dx%d", m.viewport.Width, m.viewport.Height)
	}
	if !strings.Contains(m.View(), "neo4jpg") {
		t.Error("Expected header in view")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
	var cfgErr *config.ConfigError
	if err := (Config{}).Validate(); !errors.As(err, &cfgErr) {
		t.Errorf("Expected ConfigError, got %v", err)
	}
}

// Package tui implements an interactive Cypher REPL.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"neo4jpg/internal/config"
	"neo4jpg/internal/output"
	"neo4jpg/ui/tui/state"
	"neo4jpg/ui/tui/views"
)

const helpText = `:server NAME   use the options of a catalog server (no name resets)
:params LIT    set query parameters, e.g. :params {'name': 'Ann'}
:limit N       show at most N records per query
:clear         clear the output
:quit          exit`

// Config holds the initial REPL settings.
type Config struct {
	Server    string
	Params    string
	Overrides []string
	Limit     int
	Pretty    bool
}

// DefaultConfig returns the settings used by `neo4jpg repl`.
func DefaultConfig() Config {
	return Config{Limit: 50, Pretty: true}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return &config.ConfigError{Field: "Limit", Message: "must be positive"}
	}
	return nil
}

// MainModel is the Bubble Tea Model acting as the Controller
type MainModel struct {
	runner   output.QueryRunner
	source   output.OptionSource
	config   Config
	state    state.AppState
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	cancel   context.CancelFunc
	recall   int // index into past queries while browsing with up/down
	quitting bool
	width    int
	height   int
}

// QueryDoneMsg carries the result of one query.
type QueryDoneMsg struct {
	Entry state.Entry
}

func InitialModel(runner output.QueryRunner, source output.OptionSource, cfg Config) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Prompt = "cypher> "
	ti.Placeholder = "MATCH (n) RETURN n LIMIT 5"
	ti.Focus()

	m := MainModel{
		runner:   runner,
		source:   source,
		config:   cfg,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  s,
		state: state.AppState{
			Server: cfg.Server,
			Params: cfg.Params,
			Limit:  cfg.Limit,
		},
	}
	m.refresh()
	return m
}

func (m *MainModel) Init() tea.Cmd {
	return textinput.Blink
}

// runQueryCmd streams the query off the UI goroutine and stops pulling once
// the limit is exceeded.
func runQueryCmd(ctx context.Context, runner output.QueryRunner, source output.OptionSource, st state.AppState, query string, overrides []string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		entry := state.Entry{Query: query, Server: st.Server, Lines: []string{}}

		for line, err := range output.StreamWithServer(ctx, runner, source, st.Server, query, st.Params, overrides...) {
			if len(entry.Lines) == st.Limit {
				entry.Truncated = true
				break
			}
			if err != nil {
				entry.Err = err
				break
			}
			entry.Lines = append(entry.Lines, line)
		}

		entry.Elapsed = time.Since(start)
		return QueryDoneMsg{Entry: entry}
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	case QueryDoneMsg:
		return m.handleQueryDoneMsg(msg)

	case spinner.TickMsg:
		if !m.state.Running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.state.Running {
			m.cancelQuery()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.cancelQuery()
		return m, nil
	case "enter":
		return m.submit()
	case "up":
		m.recallQuery(-1)
		return m, nil
	case "down":
		m.recallQuery(1)
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *MainModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, ":") {
		m.input.Reset()
		return m.runCommand(text)
	}
	if m.state.Running {
		m.state.Notice = "a query is already running"
		return m, nil
	}

	m.input.Reset()
	m.state.Running = true
	m.state.Notice = ""

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return m, tea.Batch(
		runQueryCmd(ctx, m.runner, m.source, m.state, text, m.config.Overrides),
		m.spinner.Tick,
	)
}

func (m *MainModel) runCommand(text string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(text, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "q", "quit", "exit":
		m.cancelQuery()
		m.quitting = true
		return m, tea.Quit
	case "server":
		m.state.Server = arg
		m.state.Notice = "server set"
	case "params":
		m.state.Params = arg
		m.state.Notice = "params set"
	case "limit":
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			m.state.Notice = fmt.Sprintf("invalid limit %q", arg)
			return m, nil
		}
		m.state.Limit = n
		m.state.Notice = "limit set"
	case "clear":
		m.state.History = nil
		m.state.Notice = ""
	case "help":
		m.state.Notice = "commands listed above"
		m.viewport.SetContent(helpText)
		return m, nil
	default:
		m.state.Notice = fmt.Sprintf("unknown command :%s", name)
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m *MainModel) cancelQuery() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *MainModel) recallQuery(delta int) {
	queries := m.state.Queries()
	if len(queries) == 0 {
		return
	}
	m.recall += delta
	if m.recall < 0 {
		m.recall = 0
	}
	if m.recall >= len(queries) {
		m.recall = len(queries)
		m.input.Reset()
		return
	}
	m.input.SetValue(queries[m.recall])
	m.input.CursorEnd()
}

func (m *MainModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// header, input and the two-line footer
	h := msg.Height - 4
	if h < 1 {
		h = 1
	}
	m.viewport.Width = msg.Width
	m.viewport.Height = h
	m.input.Width = msg.Width - len(m.input.Prompt) - 1
	m.refresh()
	return m, nil
}

func (m *MainModel) handleQueryDoneMsg(msg QueryDoneMsg) (tea.Model, tea.Cmd) {
	m.cancelQuery()
	m.state.Running = false
	m.state.Append(msg.Entry)
	m.recall = len(m.state.History)
	m.refresh()
	return m, nil
}

func (m *MainModel) props() views.ViewProps {
	return views.ViewProps{
		Width:       m.width,
		Height:      m.height,
		SpinnerView: m.spinner.View(),
		Pretty:      m.config.Pretty,
	}
}

func (m *MainModel) refresh() {
	m.viewport.SetContent(views.RenderHistory(m.state, m.props()))
	m.viewport.GotoBottom()
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}
	props := m.props()
	return lipgloss.JoinVertical(lipgloss.Left,
		views.RenderHeader(m.state, props),
		m.viewport.View(),
		m.input.View(),
		views.RenderFooter(m.state, props),
	)
}

// Start runs the REPL until the user quits.
func Start(runner output.QueryRunner, source output.OptionSource, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m := InitialModel(runner, source, cfg)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

package views

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"neo4jpg/ui/console"
	"neo4jpg/ui/tui/state"
	"neo4jpg/ui/tui/styles"
)

// ViewProps contains UI-specific properties provided by the Controller.
type ViewProps struct {
	Width, Height int
	SpinnerView   string
	Pretty        bool
}

// RenderHeader renders the title bar with the active session settings.
func RenderHeader(s state.AppState, props ViewProps) string {
	title := styles.TitleStyle.Render("neo4jpg")

	server := s.Server
	if server == "" {
		server = "(default)"
	}
	params := s.Params
	if params == "" {
		params = "none"
	}
	info := styles.InfoStyle.Render(fmt.Sprintf("server: %s • limit: %d • params: %s", server, s.Limit, params))

	return lipgloss.NewStyle().MaxWidth(props.Width).Render(lipgloss.JoinHorizontal(lipgloss.Top, title, info))
}

// RenderHistory renders every executed query with its records, oldest first.
func RenderHistory(s state.AppState, props ViewProps) string {
	if len(s.History) == 0 {
		return styles.InfoStyle.Render("Type a Cypher query and press enter. :help lists commands.")
	}

	var b strings.Builder
	for i, e := range s.History {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.QueryStyle.Render("› " + e.Query))
		b.WriteString("\n")

		for _, line := range e.Lines {
			b.WriteString(styles.RecordStyle.Render(formatRecord(line, props.Pretty)))
			b.WriteString("\n")
		}

		if e.Err != nil {
			b.WriteString(styles.ErrorStyle.Render("✗ " + e.Err.Error()))
			b.WriteString("\n")
			continue
		}
		b.WriteString(styles.SummaryStyle.Render(summary(e)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderFooter renders the status line shown below the input.
func RenderFooter(s state.AppState, props ViewProps) string {
	status := "ready"
	switch {
	case s.Running:
		status = props.SpinnerView + " running (esc to cancel)"
	case s.Notice != "":
		status = s.Notice
	}
	keys := "enter run • ↑/↓ history • pgup/pgdn scroll • ctrl+c quit"
	return styles.FooterStyle.Width(props.Width).Render(styles.StatusStyle.Render(status) + "  " + keys)
}

func formatRecord(line string, pretty bool) string {
	if !pretty {
		return line
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(line), "", "  "); err != nil {
		return line
	}
	return console.Colorize(buf.String())
}

func summary(e state.Entry) string {
	noun := "records"
	if len(e.Lines) == 1 {
		noun = "record"
	}
	s := fmt.Sprintf("%d %s in %s", len(e.Lines), noun, e.Elapsed.Round(time.Millisecond))
	if e.Truncated {
		s += " (limit reached)"
	}
	return s
}

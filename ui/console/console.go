// Package console writes query results to a terminal.
package console

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// Printer renders JSON records, one per call.
type Printer struct {
	w      io.Writer
	pretty bool
	color  bool
	count  int
}

// NewPrinter creates a printer. With pretty set, records are indented; with
// color set, keys and scalar values are colorized.
func NewPrinter(w io.Writer, pretty, color bool) *Printer {
	return &Printer{w: w, pretty: pretty, color: color}
}

// Print writes one JSON record followed by a newline.
func (p *Printer) Print(line string) error {
	p.count++
	if !p.pretty {
		_, err := fmt.Fprintln(p.w, line)
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(line), "", "  "); err != nil {
		return fmt.Errorf("indent record %d: %w", p.count, err)
	}
	out := buf.String()
	if p.color {
		out = Colorize(out)
	}
	_, err := fmt.Fprintln(p.w, out)
	return err
}

// Count returns the number of records printed so far.
func (p *Printer) Count() int {
	return p.count
}

// Summary writes a one-line footer.
func (p *Printer) Summary(truncated bool) {
	noun := "records"
	if p.count == 1 {
		noun = "record"
	}
	suffix := ""
	if truncated {
		suffix = " (limit reached)"
	}
	if p.color {
		fmt.Fprintf(p.w, "%s─ %d %s%s%s\n", colorCyan, p.count, noun, suffix, colorReset)
		return
	}
	fmt.Fprintf(p.w, "─ %d %s%s\n", p.count, noun, suffix)
}

// PrintError writes err in red when color is enabled.
func PrintError(w io.Writer, err error, color bool) {
	if color {
		fmt.Fprintf(w, "%s✗ %v%s\n", colorRed, err, colorReset)
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

var (
	keyPattern    = regexp.MustCompile(`^(\s*)("(?:[^"\\]|\\.)*")(: )(.*)$`)
	scalarPattern = regexp.MustCompile(`^(\s*)(.*?)(,?)$`)
)

// Colorize colors the keys and scalar values of indented JSON, one line at a time.
func Colorize(indented string) string {
	lines := strings.Split(indented, "\n")
	for i, line := range lines {
		if m := keyPattern.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + colorCyan + m[2] + colorReset + m[3] + colorValue(m[4])
			continue
		}
		lines[i] = colorValue(line)
	}
	return strings.Join(lines, "\n")
}

func colorValue(s string) string {
	m := scalarPattern.FindStringSubmatch(s)
	indent, value, comma := m[1], m[2], m[3]
	color := colorFor(value)
	if color == "" {
		return s
	}
	return indent + color + value + colorReset + comma
}

func colorFor(value string) string {
	switch {
	case value == "" || value == "{" || value == "}" || value == "[" || value == "]" || value == "{}" || value == "[]":
		return ""
	case strings.HasPrefix(value, `"`):
		return colorGreen
	case value == "true" || value == "false" || value == "null":
		return colorMagenta
	case strings.ContainsAny(value[:1], "-0123456789"):
		return colorYellow
	default:
		return ""
	}
}

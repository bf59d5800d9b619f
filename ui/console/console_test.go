package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestColorFor(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{`"Ann"`, colorGreen},
		{"42", colorYellow},
		{"-1.5", colorYellow},
		{"true", colorMagenta},
		{"null", colorMagenta},
		{"{", ""},
		{"]", ""},
		{"[]", ""},
		{"", ""},
	}

	for _, tt := range tests {
		result := colorFor(tt.value)
		if result != tt.expected {
			t.Errorf("colorFor(%q) = %q; want %q", tt.value, result, tt.expected)
		}
	}
}

func TestPrint_Compact(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false, false)

	for _, line := range []string{`{"n":1}`, `{"n":2}`} {
		if err := p.Print(line); err != nil {
			t.Fatalf("Print failed: %v", err)
		}
	}

	if buf.String() != "{\"n\":1}\n{\"n\":2}\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
	if p.Count() != 2 {
		t.Errorf("Count() = %d; want 2", p.Count())
	}
}

func TestPrint_Pretty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true, false)

	if err := p.Print(`{"a":{"id":7,"labels":["Person"]}}`); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	want := `{
  "a": {
    "id": 7,
    "labels": [
      "Person"
    ]
  }
}
`
	if buf.String() != want {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	if err := p.Print("not json"); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestColorize(t *testing.T) {
	out := Colorize("{\n  \"name\": \"Ann\",\n  \"age\": 42,\n  \"ok\": true\n}")

	lines := strings.Split(out, "\n")
	if lines[0] != "{" || lines[4] != "}" {
		t.Errorf("brackets should not be colored: %q", out)
	}
	if lines[1] != "  "+colorCyan+`"name"`+colorReset+": "+colorGreen+`"Ann"`+colorReset+"," {
		t.Errorf("unexpected string line %q", lines[1])
	}
	if !strings.Contains(lines[2], colorYellow+"42"+colorReset+",") {
		t.Errorf("unexpected number line %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], colorMagenta+"true"+colorReset) {
		t.Errorf("unexpected bool line %q", lines[3])
	}
}

func TestSummaryAndError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false, false)
	_ = p.Print(`{}`)
	p.Summary(true)
	if buf.String() != "{}\n─ 1 record (limit reached)\n" {
		t.Errorf("unexpected summary %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, errors.New("boom"), false)
	if buf.String() != "error: boom\n" {
		t.Errorf("unexpected error output %q", buf.String())
	}
}

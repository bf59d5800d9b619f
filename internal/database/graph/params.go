package graph

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseParams parses a serialized parameter mapping such as
// {'name': 'Ann', 'ids': [1, 2]} or its JSON equivalent. An empty string
// yields no parameters. Strings and keys must be quoted; None, True and
// False are accepted alongside null, true and false. Anything that is not a
// single string-keyed mapping is a *ParameterError.
func ParseParams(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, nil
	}

	fail := func(err error) (map[string]any, error) {
		return nil, &ParameterError{Params: raw, Err: err}
	}

	if err := checkSingleMapping(text); err != nil {
		return fail(err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return fail(err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return fail(errors.New("expected a single mapping"))
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode || root.Style&yaml.FlowStyle == 0 {
		return fail(errors.New("expected a {...} mapping"))
	}

	params, err := decodeMapping(root)
	if err != nil {
		return fail(err)
	}
	return params, nil
}

// checkSingleMapping verifies that text is one brace-delimited mapping with
// nothing after its closing brace.
func checkSingleMapping(text string) error {
	if text[0] != '{' {
		return fmt.Errorf("expected a mapping, got %q", firstToken(text))
	}

	var (
		depth int
		quote byte
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch {
			case c == '\\' && quote == '"':
				i++
			case c == quote && quote == '\'' && i+1 < len(text) && text[i+1] == '\'':
				i++
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"':
			quote = c
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				if rest := strings.TrimSpace(text[i+1:]); rest != "" {
					return fmt.Errorf("unexpected %q after mapping", firstToken(rest))
				}
				return nil
			}
		}
	}
	return errors.New("unterminated mapping")
}

func firstToken(s string) string {
	if i := strings.IndexAny(s, " \t\n"); i > 0 {
		return s[:i]
	}
	return s
}

func decodeMapping(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode || k.ShortTag() != "!!str" || k.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) == 0 {
			return nil, fmt.Errorf("mapping keys must be quoted strings, got %q", k.Value)
		}
		if v.Kind == yaml.ScalarNode && v.ShortTag() == "!!null" && v.Value == "" {
			return nil, fmt.Errorf("parameter %q has no value", k.Value)
		}

		val, err := decodeNode(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", k.Value, err)
		}
		out[k.Value] = val
	}
	return out, nil
}

func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		return decodeMapping(n)

	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, e := range n.Content {
			v, err := decodeNode(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case yaml.ScalarNode:
		return decodeScalar(n)

	default:
		return nil, fmt.Errorf("unsupported value at line %d", n.Line)
	}
}

// decodeScalar converts quoted strings and plain numbers, booleans and
// nulls into the types the driver sends.
func decodeScalar(n *yaml.Node) (any, error) {
	if n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
		return n.Value, nil
	}
	if n.Style != 0 {
		return nil, fmt.Errorf("unsupported value %q", n.Value)
	}

	switch n.Value {
	case "None", "null":
		return nil, nil
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	}

	switch n.ShortTag() {
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("unsupported number %q", n.Value)
		}
		return f, nil
	}
	return nil, fmt.Errorf("unquoted value %q", n.Value)
}

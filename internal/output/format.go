// Package output encodes graph records as JSON text and composes the
// resolve, execute and encode stages into a single stream.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf8"

	"neo4jpg/internal/database/graph"
)

// EncodingError reports a value that has no JSON representation.
type EncodingError struct {
	Column string
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode column %q as JSON: %v", e.Column, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// EncodeRecord renders one record as a JSON object with the columns in
// record order. Nodes, relationships and paths use a fixed schema:
//
//	node:         {"id":1,"labels":["Person"],"properties":{...}}
//	relationship: {"id":3,"type":"KNOWS","nodes":[<start>,<end>],"properties":{...}}
//	path:         [<relationship>,...]
func EncodeRecord(rec graph.Record) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range rec.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, key); err != nil {
			return "", &EncodingError{Column: key, Err: err}
		}
		buf.WriteByte(':')
		if err := writeValue(&buf, rec.Values[i]); err != nil {
			return "", &EncodingError{Column: key, Err: err}
		}
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

// EncodeValue renders a single value using the same schema as EncodeRecord.
func EncodeValue(v graph.Value) (string, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return "", &EncodingError{Err: err}
	}
	return buf.String(), nil
}

func writeValue(buf *bytes.Buffer, v graph.Value) error {
	switch v := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case graph.Node:
		return writeNode(buf, v)
	case graph.Relationship:
		return writeRelationship(buf, v)
	case graph.Path:
		buf.WriteByte('[')
		for i, seg := range v.Segments {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeRelationship(buf, seg); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case graph.List:
		return writeList(buf, v)
	case graph.Set:
		return writeList(buf, v)
	case graph.Map:
		return writeMap(buf, v)
	case graph.Scalar:
		return writeJSON(buf, v.V)
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}

func writeNode(buf *bytes.Buffer, n graph.Node) error {
	buf.WriteString(`{"id":`)
	buf.WriteString(strconv.FormatInt(n.ID, 10))
	buf.WriteString(`,"labels":`)
	labels := n.Labels
	if labels == nil {
		labels = []string{}
	}
	if err := writeJSON(buf, labels); err != nil {
		return err
	}
	buf.WriteString(`,"properties":`)
	if err := writeMap(buf, n.Properties); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeRelationship(buf *bytes.Buffer, r graph.Relationship) error {
	buf.WriteString(`{"id":`)
	buf.WriteString(strconv.FormatInt(r.ID, 10))
	buf.WriteString(`,"type":`)
	if err := writeJSON(buf, r.Type); err != nil {
		return err
	}
	buf.WriteString(`,"nodes":[`)
	if err := writeNode(buf, r.Start); err != nil {
		return err
	}
	buf.WriteByte(',')
	if err := writeNode(buf, r.End); err != nil {
		return err
	}
	buf.WriteString(`],"properties":`)
	if err := writeMap(buf, r.Properties); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeList(buf *bytes.Buffer, items []graph.Value) error {
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeValue(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// writeMap emits keys in sorted order, matching encoding/json for maps.
func writeMap(buf *bytes.Buffer, m graph.Map) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeValue(buf, m[k]); err != nil {
			return fmt.Errorf("property %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// ErrInvalidUTF8 is reported for strings encoding/json would rewrite with
// U+FFFD.
var ErrInvalidUTF8 = errors.New("string is not valid UTF-8")

func writeJSON(buf *bytes.Buffer, v any) error {
	switch v := v.(type) {
	case string:
		if !utf8.ValidString(v) {
			return fmt.Errorf("%q: %w", v, ErrInvalidUTF8)
		}
	case []string:
		for _, s := range v {
			if !utf8.ValidString(s) {
				return fmt.Errorf("%q: %w", s, ErrInvalidUTF8)
			}
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

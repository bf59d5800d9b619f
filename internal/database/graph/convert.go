package graph

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// NewRecord converts a driver record into a Record. Relationship endpoints are
// resolved against every node that appears in the same record.
func NewRecord(rec *neo4j.Record) Record {
	if rec == nil {
		return Record{}
	}
	idx := nodeIndex{}
	for _, v := range rec.Values {
		idx.collect(v)
	}

	out := Record{
		Keys:   slices.Clone(rec.Keys),
		Values: make([]Value, len(rec.Values)),
	}
	for i, v := range rec.Values {
		out.Values[i] = idx.convert(v)
	}
	return out
}

// Convert converts a single driver value or plain Go value into a Value.
func Convert(v any) Value {
	idx := nodeIndex{}
	idx.collect(v)
	return idx.convert(v)
}

// nodeIndex maps legacy integer node ids to the nodes seen in one record.
// The integer ids are deprecated in the driver but are part of the output schema.
type nodeIndex map[int64]dbtype.Node

func (idx nodeIndex) collect(v any) {
	switch v := v.(type) {
	case dbtype.Node:
		idx[v.Id] = v
	case dbtype.Path:
		for _, n := range v.Nodes {
			idx[n.Id] = n
		}
	case []any:
		for _, e := range v {
			idx.collect(e)
		}
	case map[string]any:
		for _, e := range v {
			idx.collect(e)
		}
	}
}

func (idx nodeIndex) convert(v any) Value {
	switch v := v.(type) {
	case nil:
		return Scalar{}
	case Value:
		return v
	case dbtype.Node:
		return idx.node(v)
	case dbtype.Relationship:
		return idx.relationship(v)
	case dbtype.Path:
		return newPath(v)
	case []any:
		list := make(List, len(v))
		for i, e := range v {
			list[i] = idx.convert(e)
		}
		return list
	case map[string]any:
		return idx.properties(v)
	case dbtype.Date:
		return Scalar{V: time.Time(v).Format(time.DateOnly)}
	case dbtype.LocalTime:
		return Scalar{V: time.Time(v).Format("15:04:05.999999999")}
	case dbtype.Time:
		return Scalar{V: time.Time(v).Format("15:04:05.999999999Z07:00")}
	case dbtype.LocalDateTime:
		return Scalar{V: time.Time(v).Format("2006-01-02T15:04:05.999999999")}
	case time.Time:
		return Scalar{V: v.Format(time.RFC3339Nano)}
	case dbtype.Duration:
		return Scalar{V: v.String()}
	case dbtype.Point2D:
		return Map{
			"srid": Scalar{V: int64(v.SpatialRefId)},
			"x":    Scalar{V: v.X},
			"y":    Scalar{V: v.Y},
		}
	case dbtype.Point3D:
		return Map{
			"srid": Scalar{V: int64(v.SpatialRefId)},
			"x":    Scalar{V: v.X},
			"y":    Scalar{V: v.Y},
			"z":    Scalar{V: v.Z},
		}
	default:
		return idx.convertReflect(v)
	}
}

var emptyStruct = reflect.TypeOf(struct{}{})

// convertReflect handles plain Go collections that do not come from the driver.
func (idx nodeIndex) convertReflect(v any) Value {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Elem() == emptyStruct {
			set := make(Set, 0, rv.Len())
			for _, k := range rv.MapKeys() {
				set = append(set, idx.convert(k.Interface()))
			}
			slices.SortFunc(set, func(a, b Value) int {
				return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
			})
			return set
		}
		if rv.Type().Key().Kind() == reflect.String {
			m := make(Map, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = idx.convert(iter.Value().Interface())
			}
			return m
		}
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Scalar{V: v}
		}
		list := make(List, rv.Len())
		for i := range rv.Len() {
			list[i] = idx.convert(rv.Index(i).Interface())
		}
		return list
	}
	return Scalar{V: v}
}

func (idx nodeIndex) node(n dbtype.Node) Node {
	labels := n.Labels
	if labels == nil {
		labels = []string{}
	}
	return Node{
		ID:         n.Id,
		Labels:     slices.Clone(labels),
		Properties: idx.properties(n.Props),
	}
}

func (idx nodeIndex) relationship(r dbtype.Relationship) Relationship {
	return Relationship{
		ID:         r.Id,
		Type:       r.Type,
		Start:      idx.endpoint(r.StartId),
		End:        idx.endpoint(r.EndId),
		Properties: idx.properties(r.Props),
	}
}

func (idx nodeIndex) endpoint(id int64) Node {
	if n, ok := idx[id]; ok {
		return idx.node(n)
	}
	return Node{ID: id, Labels: []string{}, Properties: Map{}}
}

func (idx nodeIndex) properties(props map[string]any) Map {
	m := make(Map, len(props))
	for k, v := range props {
		m[k] = idx.convert(v)
	}
	return m
}

// newPath keeps each relationship's own direction; endpoints come from the
// path's node list.
func newPath(p dbtype.Path) Path {
	local := make(nodeIndex, len(p.Nodes))
	for _, n := range p.Nodes {
		local[n.Id] = n
	}
	segments := make([]Relationship, len(p.Relationships))
	for i, r := range p.Relationships {
		segments[i] = local.relationship(r)
	}
	return Path{Segments: segments}
}

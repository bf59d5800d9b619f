package graph

// Kind identifies the variant of a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindNode
	KindRelationship
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindRelationship:
		return "relationship"
	case KindPath:
		return "path"
	default:
		return "scalar"
	}
}

// Value is a graph value received from the driver. The set of implementations
// is closed: Node, Relationship, Path, and the scalar kinds Scalar, List, Map and Set.
type Value interface {
	Kind() Kind
	sealed()
}

// Node represents a vertex: identity, labels and properties.
type Node struct {
	ID         int64
	Labels     []string
	Properties Map
}

// Relationship represents a directed, typed edge between two nodes.
// Start and End are always populated; when the endpoint was not part of the
// same record only its ID is known.
type Relationship struct {
	ID         int64
	Type       string
	Start      Node
	End        Node
	Properties Map
}

// Path is an ordered sequence of relationships describing a traversal.
type Path struct {
	Segments []Relationship
}

// Scalar wraps a primitive value (nil, bool, integer, float, string, bytes)
// or any other value left for the JSON encoder to represent.
type Scalar struct {
	V any
}

// List is an ordered sequence of values.
type List []Value

// Map is a string-keyed mapping of values.
type Map map[string]Value

// Set is an unordered collection of values.
type Set []Value

func (Node) Kind() Kind         { return KindNode }
func (Relationship) Kind() Kind { return KindRelationship }
func (Path) Kind() Kind         { return KindPath }
func (Scalar) Kind() Kind       { return KindScalar }
func (List) Kind() Kind         { return KindScalar }
func (Map) Kind() Kind          { return KindScalar }
func (Set) Kind() Kind          { return KindScalar }

func (Node) sealed()         {}
func (Relationship) sealed() {}
func (Path) sealed()         {}
func (Scalar) sealed()       {}
func (List) sealed()         {}
func (Map) sealed()          {}
func (Set) sealed()          {}

// Record is one result row: column names in server order with their values.
type Record struct {
	Keys   []string
	Values []Value
}

// Get returns the value stored under key.
func (r Record) Get(key string) (Value, bool) {
	for i, k := range r.Keys {
		if k == key {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.Keys)
}

package graph

import (
	"strconv"
	"strings"
)

// Param is a single configurable value on a node. Value holds whatever the
// document carried: numbers, strings, booleans or nil.
type Param struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Value any    `json:"value" yaml:"value"`
}

// Node is a layer placed on the canvas. Type is the component id (linear,
// conv2d, lstm, ...) and drives code generation; Name is the display label.
type Node struct {
	ID       string         `json:"id" yaml:"id"`
	Type     string         `json:"type" yaml:"type"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Category string         `json:"category,omitempty" yaml:"category,omitempty"`
	Params   []Param        `json:"params,omitempty" yaml:"params,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Endpoint is one end of a connection.
type Endpoint struct {
	NodeID  string `json:"nodeId" yaml:"nodeId"`
	PointID string `json:"pointId,omitempty" yaml:"pointId,omitempty"`
}

// Connection is a directed edge from Source to Target.
type Connection struct {
	ID     string   `json:"id,omitempty" yaml:"id,omitempty"`
	Source Endpoint `json:"source" yaml:"source"`
	Target Endpoint `json:"target" yaml:"target"`
}

// Graph is the full canvas document.
type Graph struct {
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// Empty reports whether the graph has no nodes.
func (g Graph) Empty() bool {
	return len(g.Nodes) == 0
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, true
		}
	}
	return Node{}, false
}

// Param returns the parameter stored under key.
func (n Node) Param(key string) (Param, bool) {
	for _, p := range n.Params {
		if p.Key == key {
			return p, true
		}
	}
	return Param{}, false
}

// Value returns the raw value for key, or def when the node has no such
// parameter. A parameter that is present with a nil value yields nil.
func (n Node) Value(key string, def any) any {
	if p, ok := n.Param(key); ok {
		return p.Value
	}
	return def
}

// Float returns the value for key as a float64. Numeric strings are parsed;
// anything else falls back to def.
func (n Node) Float(key string, def float64) float64 {
	if f, ok := ToFloat(n.Value(key, def)); ok {
		return f
	}
	return def
}

// Bool returns the value for key interpreted as a boolean.
func (n Node) Bool(key string, def bool) bool {
	return Truthy(n.Value(key, def))
}

// String returns the value for key formatted as text.
func (n Node) String(key string, def string) string {
	switch v := n.Value(key, def).(type) {
	case nil:
		return def
	case string:
		return v
	default:
		if f, ok := ToFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return def
	}
}

// ToFloat converts the numeric kinds produced by the JSON and YAML decoders
// (and numeric strings) to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Truthy interprets loosely typed document values as booleans. Strings are
// false when empty, "0" or "false" (any case).
func Truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "", "0", "false", "no", "off":
			return false
		}
		return true
	default:
		if f, ok := ToFloat(b); ok {
			return f != 0
		}
		return true
	}
}

// Clone returns a deep copy of the graph. Nested maps and slices in param
// values and metadata are copied as well.
func (g Graph) Clone() Graph {
	out := Graph{}
	if g.Nodes != nil {
		out.Nodes = make([]Node, len(g.Nodes))
		for i, node := range g.Nodes {
			out.Nodes[i] = node.Clone()
		}
	}
	if g.Connections != nil {
		out.Connections = append([]Connection(nil), g.Connections...)
	}
	return out
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	if n.Params != nil {
		out.Params = make([]Param, len(n.Params))
		for i, param := range n.Params {
			param.Value = cloneValue(param.Value)
			out.Params[i] = param
		}
	}
	if n.Metadata != nil {
		out.Metadata = cloneValue(n.Metadata).(map[string]any)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = cloneValue(value)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			out[i] = cloneValue(value)
		}
		return out
	default:
		return v
	}
}

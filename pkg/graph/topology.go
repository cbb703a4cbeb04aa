package graph

import (
	"errors"
	"fmt"
)

// Connected returns the nodes that take part in at least one connection, in
// declaration order.
func (g Graph) Connected() []Node {
	linked := g.linkedIDs()
	out := make([]Node, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		if _, ok := linked[node.ID]; ok {
			out = append(out, node)
		}
	}
	return out
}

// Isolated returns the nodes without any connection, in declaration order.
func (g Graph) Isolated() []Node {
	linked := g.linkedIDs()
	var out []Node
	for _, node := range g.Nodes {
		if _, ok := linked[node.ID]; !ok {
			out = append(out, node)
		}
	}
	return out
}

// Upstream returns the connections whose target is id, in declaration order.
func (g Graph) Upstream(id string) []Connection {
	var out []Connection
	for _, conn := range g.Connections {
		if conn.Target.NodeID == id {
			out = append(out, conn)
		}
	}
	return out
}

// Downstream returns the connections whose source is id, in declaration
// order.
func (g Graph) Downstream(id string) []Connection {
	var out []Connection
	for _, conn := range g.Connections {
		if conn.Source.NodeID == id {
			out = append(out, conn)
		}
	}
	return out
}

// Inputs returns every node without upstream connections. Isolated nodes are
// included.
func (g Graph) Inputs() []Node {
	var out []Node
	for _, node := range g.Nodes {
		if len(g.Upstream(node.ID)) == 0 {
			out = append(out, node)
		}
	}
	return out
}

// Outputs returns every node without downstream connections. Isolated nodes
// are included.
func (g Graph) Outputs() []Node {
	var out []Node
	for _, node := range g.Nodes {
		if len(g.Downstream(node.ID)) == 0 {
			out = append(out, node)
		}
	}
	return out
}

// TopologicalOrder returns the connected nodes ordered upstream first: a node
// is emitted once every node feeding it has been emitted, and ties resolve in
// declaration order. Connected nodes that can never become ready (members of
// a cycle and everything below it) are appended in declaration order.
// Isolated nodes are not part of the result.
func (g Graph) TopologicalOrder() []Node {
	connected := g.Connected()
	known := make(map[string]struct{}, len(g.Nodes))
	for _, node := range g.Nodes {
		known[node.ID] = struct{}{}
	}

	emitted := make(map[string]bool, len(connected))
	out := make([]Node, 0, len(connected))

	ready := func(id string) bool {
		for _, conn := range g.Upstream(id) {
			if _, ok := known[conn.Source.NodeID]; !ok {
				continue
			}
			if !emitted[conn.Source.NodeID] {
				return false
			}
		}
		return true
	}

	for progress := true; progress; {
		progress = false
		for _, node := range connected {
			if emitted[node.ID] || !ready(node.ID) {
				continue
			}
			emitted[node.ID] = true
			out = append(out, node)
			progress = true
		}
	}
	for _, node := range connected {
		if !emitted[node.ID] {
			emitted[node.ID] = true
			out = append(out, node)
		}
	}
	return out
}

// HasCycle reports whether the connections form at least one directed cycle.
func (g Graph) HasCycle() bool {
	const (
		white = iota
		grey
		black
	)
	state := make(map[string]int, len(g.Nodes))

	var walk func(id string) bool
	walk = func(id string) bool {
		state[id] = grey
		for _, conn := range g.Downstream(id) {
			switch state[conn.Target.NodeID] {
			case grey:
				return true
			case white:
				if walk(conn.Target.NodeID) {
					return true
				}
			}
		}
		state[id] = black
		return false
	}

	for _, node := range g.Nodes {
		if state[node.ID] == white && walk(node.ID) {
			return true
		}
	}
	return false
}

// ErrInvalidGraph is wrapped by every Validate failure.
var ErrInvalidGraph = errors.New("graph: invalid document")

// Validate checks structural integrity: every node has a non-empty unique id
// and a type, and every connection references existing nodes.
func (g Graph) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(g.Nodes))
	for idx, node := range g.Nodes {
		if node.ID == "" {
			errs = append(errs, fmt.Errorf("node %d: id is required", idx))
			continue
		}
		if _, dup := seen[node.ID]; dup {
			errs = append(errs, fmt.Errorf("node %q: duplicate id", node.ID))
		}
		seen[node.ID] = struct{}{}
		if node.Type == "" {
			errs = append(errs, fmt.Errorf("node %q: type is required", node.ID))
		}
	}
	for idx, conn := range g.Connections {
		label := conn.ID
		if label == "" {
			label = fmt.Sprintf("#%d", idx)
		}
		if _, ok := seen[conn.Source.NodeID]; !ok {
			errs = append(errs, fmt.Errorf("connection %s: unknown source node %q", label, conn.Source.NodeID))
		}
		if _, ok := seen[conn.Target.NodeID]; !ok {
			errs = append(errs, fmt.Errorf("connection %s: unknown target node %q", label, conn.Target.NodeID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidGraph, errors.Join(errs...))
	}
	return nil
}

func (g Graph) linkedIDs() map[string]struct{} {
	linked := make(map[string]struct{}, len(g.Connections)*2)
	for _, conn := range g.Connections {
		linked[conn.Source.NodeID] = struct{}{}
		linked[conn.Target.NodeID] = struct{}{}
	}
	return linked
}

// Package graph models the canvas document the code generator consumes: typed
// layer nodes wired by directed connections. Documents decode from JSON or
// YAML and expose the ordering queries codegen needs (topological order,
// isolated nodes, inputs, outputs).
//
//	g, err := graph.Decode(data)
//	if err != nil { ... }
//	for _, node := range g.TopologicalOrder() {
//		...
//	}
package graph

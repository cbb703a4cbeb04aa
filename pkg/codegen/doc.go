// Package codegen turns a canvas graph into the bindings that fill the model,
// training and inference templates, together with a human readable summary,
// a rough parameter estimate and the pip requirements of the generated
// project.
//
// Layers are emitted in topological order and named <prefix><position>
// (linear1, relu2, ...). Nodes without connections are kept in the model
// source as commented-out definitions so the user can see what was dropped.
package codegen

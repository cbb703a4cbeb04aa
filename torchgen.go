// Package torchgen generates PyTorch model, training and inference scripts
// from placeholder templates and canvas graph documents.
package torchgen

import (
	"context"

	"github.com/goliatone/go-torchgen/pkg/graph"
	"github.com/goliatone/go-torchgen/pkg/orchestrator"
	"github.com/goliatone/go-torchgen/pkg/template"
)

// Binding aliases template.Binding so callers can render without importing
// the template package.
type Binding = template.Binding

// Result aliases orchestrator.Result.
type Result = orchestrator.Result

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Generate loads the canvas document behind source and produces the model,
// training, inference and requirements files.
func Generate(ctx context.Context, source graph.Source, modelName string, options ...orchestrator.Option) (Result, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Source:    source,
		ModelName: modelName,
	})
}

// GenerateFromGraph generates files from an already decoded graph, bypassing
// the loader stage.
func GenerateFromGraph(ctx context.Context, doc graph.Graph, modelName string, options ...orchestrator.Option) (Result, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Graph:     &doc,
		ModelName: modelName,
	})
}

// Render renders one of the embedded templates with b. Unused bindings are
// ignored.
func Render(id string, b Binding) (string, error) {
	return template.Default().Render(id, b)
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"

	internalLoader "github.com/goliatone/go-torchgen/internal/graph/loader"
	"github.com/goliatone/go-torchgen/pkg/codegen"
	"github.com/goliatone/go-torchgen/pkg/graph"
	"github.com/goliatone/go-torchgen/pkg/template"
)

// Output file names produced by Generate.
const (
	FileModel        = "model.py"
	FileTrain        = "train.py"
	FileInference    = "inference.py"
	FileRequirements = "requirements.txt"
)

var templateFiles = []struct {
	id   string
	file string
}{
	{id: template.IDModel, file: FileModel},
	{id: template.IDTrain, file: FileTrain},
	{id: template.IDInference, file: FileInference},
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom graph loader.
func WithLoader(loader graph.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithGenerator injects a preconfigured code generator.
func WithGenerator(generator *codegen.Generator) Option {
	return func(o *Orchestrator) {
		o.generator = generator
	}
}

// WithStore overrides the template store. The store must provide the model,
// train and inference templates.
func WithStore(store *template.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithRenderer overrides the placeholder renderer, e.g. to enable strict
// mode.
func WithRenderer(renderer template.Renderer) Option {
	return func(o *Orchestrator) {
		o.renderer = renderer
	}
}

// WithTransformer registers a Transformer that can rewrite the graph after
// loading but before validation.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// Orchestrator coordinates the full pipeline from canvas document to generated
// source files. It applies defaults (filesystem/HTTP loader, embedded
// templates) while remaining open to dependency injection.
type Orchestrator struct {
	loader          graph.Loader
	generator       *codegen.Generator
	store           *template.Store
	renderer        template.Renderer
	transformer     Transformer
	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs of a generation run.
type Request struct {
	// Source identifies where the canvas document lives. Optional when Graph
	// is supplied.
	Source graph.Source

	// Graph allows callers to bypass the loader when they already hold a
	// decoded document.
	Graph *graph.Graph

	// ModelName is the generated class name. Empty selects
	// codegen.DefaultModelName.
	ModelName string
}

// Result carries the generated files keyed by file name together with the
// reports derived from the graph.
type Result struct {
	ModelName         string            `json:"modelName"`
	Empty             bool              `json:"empty"`
	Files             map[string]string `json:"files"`
	Summary           string            `json:"summary"`
	Requirements      []string          `json:"requirements"`
	ParameterEstimate int64             `json:"parameterEstimate"`
	ModelSizeMB       float64           `json:"modelSizeMB"`
	Layers            []codegen.Layer   `json:"layers"`
}

// Generate executes the loader → transformer → validation → codegen → render
// sequence.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := o.initialiseErr; err != nil {
		return Result{}, err
	}

	doc, err := o.resolveGraph(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, &doc); err != nil {
			return Result{}, fmt.Errorf("orchestrator: transform graph: %w", err)
		}
	}
	if err := doc.Validate(); err != nil {
		return Result{}, fmt.Errorf("orchestrator: %w", err)
	}

	out, err := o.generator.Generate(doc, req.ModelName)
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: generate code: %w", err)
	}

	result := Result{
		ModelName:         out.ModelName,
		Empty:             out.Empty,
		Summary:           out.Summary,
		Requirements:      out.Requirements,
		ParameterEstimate: out.ParameterEstimate,
		ModelSizeMB:       out.ModelSizeMB,
		Layers:            out.Layers,
		Files: map[string]string{
			FileRequirements: out.RequirementsText,
		},
	}

	if out.Empty {
		result.Files[FileModel] = codegen.EmptyModelCode(out.ModelName)
		result.Files[FileTrain] = codegen.EmptyTrainCode + "\n"
		result.Files[FileInference] = codegen.EmptyInferenceCode + "\n"
		return result, nil
	}

	for _, entry := range templateFiles {
		rendered, err := o.store.RenderWith(o.renderer, entry.id, out.Bindings[entry.id])
		if err != nil {
			return Result{}, fmt.Errorf("orchestrator: render %s: %w", entry.file, err)
		}
		result.Files[entry.file] = rendered
	}
	return result, nil
}

func (o *Orchestrator) resolveGraph(ctx context.Context, req Request) (graph.Graph, error) {
	if req.Graph != nil {
		// Transformers edit nodes in place; keep the caller's graph intact.
		return req.Graph.Clone(), nil
	}
	if req.Source == nil {
		return graph.Graph{}, errors.New("orchestrator: source or graph is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return graph.Graph{}, fmt.Errorf("orchestrator: load graph: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.loader == nil {
		o.loader = internalLoader.New(graph.NewLoaderOptions())
	}
	if o.store == nil {
		o.store = template.Default()
	}
	if o.generator == nil {
		generator, err := codegen.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default generator: %w", err)
		}
		o.generator = generator
	}

	o.defaultsApplied = true
}

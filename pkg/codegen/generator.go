package codegen

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-torchgen/pkg/graph"
	"github.com/goliatone/go-torchgen/pkg/render/text"
	"github.com/goliatone/go-torchgen/pkg/template"
)

const (
	// DefaultModelName is the class name used when the caller supplies none.
	DefaultModelName = "AIModel"
	// DefaultIndent is the indentation of method bodies in the model class.
	DefaultIndent = 8

	summaryTemplate      = "summary"
	requirementsTemplate = "requirements"
	torchvisionImport    = "import torchvision.models as models"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidModelName is returned when the model name is not a Python
// identifier.
var ErrInvalidModelName = errors.New("codegen: model name must be a Python identifier")

// Layer is one node placed in the generated model.
type Layer struct {
	Name     string     `json:"name"`
	NodeID   string     `json:"nodeId"`
	Type     string     `json:"type"`
	Display  string     `json:"display"`
	Isolated bool       `json:"isolated,omitempty"`
	Node     graph.Node `json:"-"`
}

// Output is everything derived from a graph. Bindings is keyed by template id
// and is nil when Empty is set; callers then use the Empty* fallbacks.
type Output struct {
	ModelName         string
	Empty             bool
	Layers            []Layer
	Bindings          map[string]template.Binding
	Summary           string
	Requirements      []string
	RequirementsText  string
	ParameterEstimate int64
	ModelSizeMB       float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithTextRenderer overrides the engine used for the summary and
// requirements reports. The renderer must resolve the "summary" and
// "requirements" templates.
func WithTextRenderer(r text.Renderer) Option {
	return func(g *Generator) {
		g.text = r
	}
}

// WithIndent overrides the indentation applied to method bodies.
func WithIndent(spaces int) Option {
	return func(g *Generator) {
		if spaces > 0 {
			g.indent = spaces
		}
	}
}

// Generator converts graphs to template bindings. It is safe for concurrent
// use once constructed.
type Generator struct {
	text   text.Renderer
	indent int
}

// New constructs a Generator. Without WithTextRenderer the embedded report
// templates are used.
func New(options ...Option) (*Generator, error) {
	g := &Generator{indent: DefaultIndent}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}
	if g.text == nil {
		engine, err := text.New(text.WithFS(EmbeddedTemplates()))
		if err != nil {
			return nil, fmt.Errorf("codegen: report engine: %w", err)
		}
		g.text = engine
	}
	return g, nil
}

// ValidateModelName checks that name can be used as a Python class name.
func ValidateModelName(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidModelName, name)
	}
	return nil
}

// Generate derives the template bindings and reports for doc. An empty
// modelName selects DefaultModelName.
func (g *Generator) Generate(doc graph.Graph, modelName string) (Output, error) {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		modelName = DefaultModelName
	}
	if err := ValidateModelName(modelName); err != nil {
		return Output{}, err
	}

	if doc.Empty() {
		return g.emptyOutput(modelName)
	}

	layers := Layers(doc)
	var connected []Layer
	for _, layer := range layers {
		if !layer.Isolated {
			connected = append(connected, layer)
		}
	}

	out := Output{
		ModelName:         modelName,
		Layers:            layers,
		Requirements:      Requirements(doc),
		ParameterEstimate: EstimateParameters(connected),
	}
	out.ModelSizeMB = ModelSizeMB(out.ParameterEstimate)

	importLine := ""
	if needsTorchvisionModels(doc) {
		importLine = torchvisionImport
	}

	nameBinding := template.Binding{"MODEL_NAME": modelName}
	out.Bindings = map[string]template.Binding{
		template.IDModel: {
			"MODEL_NAME":         modelName,
			"TORCHVISION_IMPORT": importLine,
			"LAYERS":             indent(layerDefinitions(layers), g.indent),
			"FORWARD_CODE":       indent(forwardCode(doc, connected), g.indent),
			"MODEL_SUMMARY":      indent(summaryPrints(connected), g.indent),
		},
		template.IDTrain:     nameBinding.Clone(),
		template.IDInference: nameBinding.Clone(),
	}

	var err error
	if out.Summary, err = g.summaryReport(doc, connected, out.ParameterEstimate); err != nil {
		return Output{}, err
	}
	if out.RequirementsText, err = g.requirementsText(out.Requirements); err != nil {
		return Output{}, err
	}
	return out, nil
}

func (g *Generator) emptyOutput(modelName string) (Output, error) {
	out := Output{
		ModelName:    modelName,
		Empty:        true,
		Summary:      EmptySummary,
		Requirements: Requirements(graph.Graph{}),
	}
	reqs, err := g.requirementsText(out.Requirements)
	if err != nil {
		return Output{}, err
	}
	out.RequirementsText = reqs
	return out, nil
}

// Layers assigns layer names to every node: connected nodes in topological
// order first, then isolated nodes in declaration order.
func Layers(doc graph.Graph) []Layer {
	order := doc.TopologicalOrder()
	isolated := doc.Isolated()
	out := make([]Layer, 0, len(order)+len(isolated))
	for i, node := range order {
		out = append(out, newLayer(node, i+1, false))
	}
	for i, node := range isolated {
		out = append(out, newLayer(node, len(order)+i+1, true))
	}
	return out
}

func newLayer(node graph.Node, position int, isolated bool) Layer {
	return Layer{
		Name:     layerName(node, position),
		NodeID:   node.ID,
		Type:     node.Type,
		Display:  displayName(node),
		Isolated: isolated,
		Node:     node,
	}
}

const isolatedMarker = "# ===== Unconnected components (not used in forward) ====="

func layerDefinitions(layers []Layer) string {
	var lines []string
	markerWritten := false
	for _, layer := range layers {
		code := layerCode(layer.Node, layer.Name)
		if !layer.Isolated {
			lines = append(lines, code)
			continue
		}
		if !markerWritten {
			lines = append(lines, "", isolatedMarker)
			markerWritten = true
		}
		lines = append(lines, commentOut(code))
	}
	return strings.Join(lines, "\n")
}

func summaryPrints(layers []Layer) string {
	lines := make([]string, 0, len(layers))
	for _, layer := range layers {
		lines = append(lines, fmt.Sprintf(`print("%s: %s")`, layer.Name, pyPrintEscaper.Replace(layer.Display)))
	}
	return strings.Join(lines, "\n")
}

func (g *Generator) summaryReport(doc graph.Graph, layers []Layer, params int64) (string, error) {
	rows := make([]map[string]any, 0, len(layers))
	for _, layer := range layers {
		rows = append(rows, map[string]any{"name": layer.Name, "display": layer.Display})
	}
	data := map[string]any{
		"layer_count":      len(layers),
		"connection_count": len(doc.Connections),
		"layers":           rows,
		"parameters":       params,
		"size_mb":          fmt.Sprintf("%.2f", ModelSizeMB(params)),
		"inputs":           joinLabels(doc.Inputs()),
		"outputs":          joinLabels(doc.Outputs()),
	}
	out, err := g.text.RenderTemplate(summaryTemplate, data)
	if err != nil {
		return "", fmt.Errorf("codegen: render summary: %w", err)
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}

func (g *Generator) requirementsText(requirements []string) (string, error) {
	out, err := g.text.RenderTemplate(requirementsTemplate, map[string]any{"requirements": requirements})
	if err != nil {
		return "", fmt.Errorf("codegen: render requirements: %w", err)
	}
	return out, nil
}

func joinLabels(nodes []graph.Node) string {
	labels := make([]string, 0, len(nodes))
	for _, node := range nodes {
		labels = append(labels, nodeLabel(node))
	}
	return strings.Join(labels, ", ")
}

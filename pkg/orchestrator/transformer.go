package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-torchgen/pkg/graph"
)

// Transformer mutates a graph before it is validated and turned into code.
// Implementations can rename nodes, override parameters or drop connections.
type Transformer interface {
	Transform(ctx context.Context, doc *graph.Graph) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, doc *graph.Graph) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, doc *graph.Graph) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, doc)
}

// PresetTransformer applies declarative per-node overrides loaded from a JSON
// or YAML document:
//
//	nodes:
//	  n1:
//	    name: Encoder
//	    params:
//	      out_features: 256
//
// Overridden params replace the value of an existing key or are appended.
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Nodes map[string]nodePatch `json:"nodes" yaml:"nodes"`
}

type nodePatch struct {
	Name     string         `json:"name" yaml:"name"`
	Category string         `json:"category" yaml:"category"`
	Params   map[string]any `json:"params" yaml:"params"`
}

// NewPresetTransformer constructs a transformer from raw JSON or YAML bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if jsonErr := json.Unmarshal(data, &document); jsonErr != nil {
		document = presetDocument{}
		if yamlErr := yaml.Unmarshal(data, &document); yamlErr != nil {
			return nil, fmt.Errorf("preset transformer: parse document: %w", errors.Join(jsonErr, yamlErr))
		}
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the preset. Patches naming unknown nodes are an error so
// stale presets surface early.
func (t *PresetTransformer) Transform(_ context.Context, doc *graph.Graph) error {
	if t == nil || doc == nil {
		return nil
	}
	index := make(map[string]int, len(doc.Nodes))
	for i, node := range doc.Nodes {
		index[node.ID] = i
	}

	for _, id := range sortedPatchIDs(t.document.Nodes) {
		pos, ok := index[id]
		if !ok {
			return fmt.Errorf("preset transformer: unknown node %q", id)
		}
		patch := t.document.Nodes[id]
		node := &doc.Nodes[pos]
		if patch.Name != "" {
			node.Name = patch.Name
		}
		if patch.Category != "" {
			node.Category = patch.Category
		}
		applyParams(node, patch.Params)
	}
	return nil
}

func applyParams(node *graph.Node, params map[string]any) {
	if len(params) == 0 {
		return
	}
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	updated := append([]graph.Param(nil), node.Params...)
	for _, key := range keys {
		found := false
		for i := range updated {
			if updated[i].Key == key {
				updated[i].Value = params[key]
				found = true
				break
			}
		}
		if !found {
			updated = append(updated, graph.Param{Key: key, Value: params[key]})
		}
	}
	node.Params = updated
}

func sortedPatchIDs(nodes map[string]nodePatch) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode parses a graph document. JSON is tried first; anything that is not
// valid JSON is parsed as YAML.
func Decode(data []byte) (Graph, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Graph{}, errors.New("graph: document is empty")
	}

	var g Graph
	jsonErr := json.Unmarshal(data, &g)
	if jsonErr == nil {
		return g, nil
	}

	g = Graph{}
	if yamlErr := yaml.Unmarshal(data, &g); yamlErr != nil {
		return Graph{}, fmt.Errorf("graph: decode document: %w", errors.Join(jsonErr, yamlErr))
	}
	normaliseYAML(&g)
	return g, nil
}

// normaliseYAML converts the map[string]any values yaml.v3 produces for nested
// param values so they marshal back to JSON cleanly.
func normaliseYAML(g *Graph) {
	for i := range g.Nodes {
		for j := range g.Nodes[i].Params {
			g.Nodes[i].Params[j].Value = normaliseValue(g.Nodes[i].Params[j].Value)
		}
		for key, value := range g.Nodes[i].Metadata {
			g.Nodes[i].Metadata[key] = normaliseValue(value)
		}
	}
}

func normaliseValue(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normaliseValue(item)
		}
		return out
	case map[string]any:
		for k, item := range val {
			val[k] = normaliseValue(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normaliseValue(item)
		}
		return val
	default:
		return v
	}
}

package graph_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-torchgen/pkg/graph"
)

func loadFixture(t *testing.T, name string) graph.Graph {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	g, err := graph.Decode(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return g
}

func ids(nodes []graph.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, node.ID)
	}
	return out
}

func TestDecode_JSON(t *testing.T) {
	g := loadFixture(t, "mlp.json")

	if len(g.Nodes) != 4 || len(g.Connections) != 2 {
		t.Fatalf("unexpected shape: %d nodes, %d connections", len(g.Nodes), len(g.Connections))
	}
	first := g.Nodes[0]
	if first.Type != "linear" || first.Category != "basic_layers" {
		t.Fatalf("unexpected first node: %+v", first)
	}
	if got := first.Float("in_features", 0); got != 784 {
		t.Fatalf("in_features = %v", got)
	}
	if g.Connections[0].Source.PointID != "out" {
		t.Fatalf("expected point id to decode, got %+v", g.Connections[0])
	}
}

func TestDecode_YAML(t *testing.T) {
	g := loadFixture(t, "branch.yaml")

	if diff := cmp.Diff([]string{"conv_a", "conv_b", "merge", "head"}, ids(g.Nodes)); diff != "" {
		t.Fatalf("node ids mismatch (-want +got):\n%s", diff)
	}
	convA, _ := g.Node("conv_a")
	if got := convA.Value("padding", nil); got != "same" {
		t.Fatalf("padding = %#v", got)
	}
	if got := convA.Float("out_channels", 0); got != 16 {
		t.Fatalf("out_channels = %v", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	for _, input := range []string{"", "   ", "nodes: [unclosed", `{"nodes": "nope"}`} {
		if _, err := graph.Decode([]byte(input)); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestTopologicalOrder_Chain(t *testing.T) {
	g := loadFixture(t, "mlp.json")

	if diff := cmp.Diff([]string{"n1", "n2", "n3"}, ids(g.TopologicalOrder())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"n4"}, ids(g.Isolated())); diff != "" {
		t.Fatalf("isolated mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"n1", "n2", "n3"}, ids(g.Connected())); diff != "" {
		t.Fatalf("connected mismatch (-want +got):\n%s", diff)
	}
}

func TestTopologicalOrder_UpstreamFirst(t *testing.T) {
	// Declaration order lists the sink first; the walk still emits sources
	// before their targets.
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "out", Type: "linear"},
			{ID: "mid", Type: "relu"},
			{ID: "in", Type: "linear"},
		},
		Connections: []graph.Connection{
			{Source: graph.Endpoint{NodeID: "mid"}, Target: graph.Endpoint{NodeID: "out"}},
			{Source: graph.Endpoint{NodeID: "in"}, Target: graph.Endpoint{NodeID: "mid"}},
		},
	}

	if diff := cmp.Diff([]string{"in", "mid", "out"}, ids(g.TopologicalOrder())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestTopologicalOrder_Merge(t *testing.T) {
	g := loadFixture(t, "branch.yaml")

	if diff := cmp.Diff([]string{"conv_a", "conv_b", "merge", "head"}, ids(g.TopologicalOrder())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"conv_a", "conv_b"}, ids(g.Inputs())); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"head"}, ids(g.Outputs())); diff != "" {
		t.Fatalf("outputs mismatch (-want +got):\n%s", diff)
	}
	if got := len(g.Upstream("merge")); got != 2 {
		t.Fatalf("merge upstream = %d", got)
	}
	if got := len(g.Downstream("merge")); got != 1 {
		t.Fatalf("merge downstream = %d", got)
	}
}

func TestTopologicalOrder_Cycle(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Type: "linear"},
			{ID: "b", Type: "relu"},
			{ID: "c", Type: "linear"},
		},
		Connections: []graph.Connection{
			{Source: graph.Endpoint{NodeID: "a"}, Target: graph.Endpoint{NodeID: "b"}},
			{Source: graph.Endpoint{NodeID: "b"}, Target: graph.Endpoint{NodeID: "a"}},
		},
	}

	if !g.HasCycle() {
		t.Fatalf("expected cycle")
	}
	if diff := cmp.Diff([]string{"a", "b"}, ids(g.TopologicalOrder())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if loadFixture(t, "mlp.json").HasCycle() {
		t.Fatalf("chain reported as cycle")
	}
}

func TestTopologicalOrder_CycleBelowRoot(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "b", Type: "relu"},
			{ID: "a", Type: "linear"},
			{ID: "r", Type: "linear"},
		},
		Connections: []graph.Connection{
			{Source: graph.Endpoint{NodeID: "r"}, Target: graph.Endpoint{NodeID: "a"}},
			{Source: graph.Endpoint{NodeID: "a"}, Target: graph.Endpoint{NodeID: "b"}},
			{Source: graph.Endpoint{NodeID: "b"}, Target: graph.Endpoint{NodeID: "a"}},
		},
	}

	if diff := cmp.Diff([]string{"r", "b", "a"}, ids(g.TopologicalOrder())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	if err := loadFixture(t, "mlp.json").Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Type: "linear"},
			{ID: "a", Type: "relu"},
			{ID: "", Type: "relu"},
			{ID: "b"},
		},
		Connections: []graph.Connection{
			{ID: "c1", Source: graph.Endpoint{NodeID: "a"}, Target: graph.Endpoint{NodeID: "ghost"}},
		},
	}
	err := g.Validate()
	if !errors.Is(err, graph.ErrInvalidGraph) {
		t.Fatalf("expected ErrInvalidGraph, got %v", err)
	}
	for _, want := range []string{"duplicate id", "node 2: id is required", `node "b": type is required`, `unknown target node "ghost"`} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestNodeParams(t *testing.T) {
	node := graph.Node{
		ID:   "n",
		Type: "embedding",
		Params: []graph.Param{
			{Key: "padding_idx", Value: nil},
			{Key: "num_layers", Value: "18"},
			{Key: "sparse", Value: "false"},
			{Key: "bias", Value: 1.0},
		},
	}

	if got := node.Value("padding_idx", 5); got != nil {
		t.Fatalf("present nil param should stay nil, got %#v", got)
	}
	if got := node.Value("missing", 5); got != 5 {
		t.Fatalf("missing param should use default, got %#v", got)
	}
	if got := node.Float("num_layers", 0); got != 18 {
		t.Fatalf("numeric string = %v", got)
	}
	if node.Bool("sparse", true) {
		t.Fatalf("\"false\" should be falsy")
	}
	if !node.Bool("bias", false) {
		t.Fatalf("1.0 should be truthy")
	}
	if got := node.String("num_layers", ""); got != "18" {
		t.Fatalf("string = %q", got)
	}
}

func TestGraph_Clone(t *testing.T) {
	doc := graph.Graph{
		Nodes: []graph.Node{{
			ID:       "n1",
			Type:     "linear",
			Params:   []graph.Param{{Key: "out_features", Value: float64(10)}},
			Metadata: map[string]any{"position": map[string]any{"x": float64(1)}, "tags": []any{"a"}},
		}},
		Connections: []graph.Connection{{Source: graph.Endpoint{NodeID: "n1"}, Target: graph.Endpoint{NodeID: "n2"}}},
	}

	clone := doc.Clone()
	if diff := cmp.Diff(doc, clone); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	clone.Nodes[0].Name = "Patched"
	clone.Nodes[0].Params[0].Value = float64(99)
	clone.Nodes[0].Metadata["position"].(map[string]any)["x"] = float64(5)
	clone.Nodes[0].Metadata["tags"].([]any)[0] = "b"
	clone.Connections[0].Target.NodeID = "n3"

	node := doc.Nodes[0]
	if node.Name != "" || node.Params[0].Value != float64(10) {
		t.Fatalf("original node modified: %+v", node)
	}
	if node.Metadata["position"].(map[string]any)["x"] != float64(1) || node.Metadata["tags"].([]any)[0] != "a" {
		t.Fatalf("original metadata modified: %+v", node.Metadata)
	}
	if doc.Connections[0].Target.NodeID != "n2" {
		t.Fatalf("original connections modified: %+v", doc.Connections)
	}
}

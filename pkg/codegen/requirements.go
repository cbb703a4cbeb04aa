package codegen

import "github.com/goliatone/go-torchgen/pkg/graph"

// Base requirements of every generated project. train.py uses tqdm and
// inference.py loads images with Pillow.
var baseRequirements = []string{
	"torch>=1.9.0",
	"torchvision>=0.10.0",
	"tqdm",
	"Pillow",
}

// Requirements returns the pip requirement lines for g.
func Requirements(g graph.Graph) []string {
	if g.Empty() {
		return []string{"torch>=1.9.0"}
	}
	out := append([]string(nil), baseRequirements...)
	if usesKind(g, func(k layerKind) bool { return k.transformers }) {
		out = append(out, "transformers")
	}
	return out
}

// needsTorchvisionModels reports whether any node instantiates a torchvision
// backbone.
func needsTorchvisionModels(g graph.Graph) bool {
	return usesKind(g, func(k layerKind) bool { return k.vision })
}

func usesKind(g graph.Graph, match func(layerKind) bool) bool {
	for _, node := range g.Nodes {
		if k, ok := kindOf(node.Type); ok && match(k) {
			return true
		}
	}
	return false
}

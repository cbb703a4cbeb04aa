package codegen

import (
	"math"

	"github.com/goliatone/go-torchgen/pkg/graph"
)

// defaultLayerParams is the flat estimate for weighted layers without a
// dedicated formula.
const defaultLayerParams = 1000

// EstimateParameters returns a rough trainable parameter count for the given
// layers. Linear, Conv2d, BatchNorm and LSTM use closed-form counts; layers
// without weights count as zero and every other layer as 1000.
func EstimateParameters(layers []Layer) int64 {
	var total float64
	for _, layer := range layers {
		total += estimateNode(layer.Node)
	}
	return int64(math.Round(total))
}

func estimateNode(node graph.Node) float64 {
	switch normalisedType(node) {
	case "linear":
		in := node.Float("in_features", 512)
		out := node.Float("out_features", 256)
		return in*out + biasTerm(node, out)
	case "conv2d":
		in := node.Float("in_channels", 3)
		out := node.Float("out_channels", 64)
		k := node.Float("kernel_size", 3)
		return in*out*k*k + biasTerm(node, out)
	case "batchnorm1d", "batchnorm2d":
		// gamma and beta
		return 2 * node.Float("num_features", 64)
	case "lstm":
		in := node.Float("input_size", 128)
		hidden := node.Float("hidden_size", 256)
		layers := node.Float("num_layers", 1)
		directions := 1.0
		if node.Bool("bidirectional", false) {
			directions = 2
		}
		return 4 * (in + hidden) * hidden * layers * directions
	}
	if k, ok := kindOf(node.Type); ok && k.paramFree {
		return 0
	}
	return defaultLayerParams
}

func biasTerm(node graph.Node, out float64) float64 {
	if node.Bool("bias", true) {
		return out
	}
	return 0
}

// ModelSizeMB converts a parameter count to megabytes of FP32 weights.
func ModelSizeMB(params int64) float64 {
	return float64(params) * 4 / 1024 / 1024
}

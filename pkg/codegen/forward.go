package codegen

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-torchgen/pkg/graph"
)

// tupleOutputs lists layer types whose call returns (output, state).
var tupleOutputs = map[string]bool{
	"lstm":                true,
	"gru":                 true,
	"rnn":                 true,
	"multihead_attention": true,
	"self_attention":      true,
}

var shapeHints = map[string]string{
	"conv2d":    "[batch_size, channels_out, height_out, width_out]",
	"linear":    "[batch_size, features_out]",
	"maxpool2d": "[batch_size, channels, height/2, width/2]",
	"avgpool2d": "[batch_size, channels, height/2, width/2]",
	"lstm":      "[batch_size, seq_len, hidden_size]",
}

// forwardCode writes the body of forward() for the ordered layers.
func forwardCode(g graph.Graph, layers []Layer) string {
	steps := []string{
		"# Input handling",
		"# x shape: [batch_size, channels, height, width] or [batch_size, features]",
		"",
	}

	outputVar := make(map[string]string, len(layers))
	resolve := func(id string) string {
		if v, ok := outputVar[id]; ok {
			return v
		}
		return "x"
	}

	for i, layer := range layers {
		node := layer.Node
		out := fmt.Sprintf("x%d", i+1)
		upstream := g.Upstream(node.ID)
		label := nodeLabel(node)

		switch len(upstream) {
		case 0:
			steps = append(steps, fmt.Sprintf("# %s - input layer", label))
			steps = append(steps, singleInput(node, layer.Name, out, "x"))
		case 1:
			steps = append(steps, fmt.Sprintf("# %s", label))
			steps = append(steps, singleInput(node, layer.Name, out, resolve(upstream[0].Source.NodeID)))
		default:
			inputs := make([]string, 0, len(upstream))
			for _, conn := range upstream {
				inputs = append(inputs, resolve(conn.Source.NodeID))
			}
			steps = append(steps, fmt.Sprintf("# %s - merge inputs", label))
			steps = append(steps, fmt.Sprintf("%s = %s", out, mergeExpr(node, layer.Name, inputs)))
		}

		outputVar[node.ID] = out
		if hint, ok := shapeHints[normalisedType(node)]; ok {
			steps = append(steps, "# Output shape: "+hint)
		}
		steps = append(steps, "")
	}

	var outputs []string
	for _, layer := range layers {
		if len(g.Downstream(layer.Node.ID)) == 0 {
			outputs = append(outputs, resolve(layer.Node.ID))
		}
	}

	switch {
	case len(outputs) == 1:
		steps = append(steps, "return "+outputs[0])
	case len(outputs) > 1:
		steps = append(steps, "# Multiple output endpoints")
		steps = append(steps, fmt.Sprintf("return %s  # tuple of outputs", strings.Join(outputs, ", ")))
	case len(layers) > 0:
		// Every node feeds another one: a cycle. Return the last layer.
		steps = append(steps, "return "+resolve(layers[len(layers)-1].Node.ID))
	default:
		steps = append(steps, "return x")
	}
	return strings.Join(steps, "\n")
}

func singleInput(node graph.Node, layer, out, in string) string {
	nodeType := normalisedType(node)
	switch nodeType {
	case "depthwise_conv2d":
		return fmt.Sprintf("%s = self.%s_pointwise(self.%s_depthwise(%s))", out, layer, layer, in)
	case "scaled_dot_product_attention":
		return fmt.Sprintf("%s = self.%s_dropout(F.scaled_dot_product_attention(%s, %s, %s, scale=self.%s_scale))",
			out, layer, in, in, in, layer)
	case "reshape":
		return fmt.Sprintf("%s = %s.reshape(%s)", out, in, params{node: node}.raw("shape", "-1, 128"))
	case "add", "multiply", "concatenate", "concat":
		return fmt.Sprintf("%s = %s", out, in)
	}

	if tupleOutputs[nodeType] {
		if nodeType == "multihead_attention" || nodeType == "self_attention" {
			return fmt.Sprintf("%s, _ = self.%s(%s, %s, %s)", out, layer, in, in, in)
		}
		return fmt.Sprintf("%s, _ = self.%s(%s)", out, layer, in)
	}
	return fmt.Sprintf("%s = self.%s(%s)", out, layer, in)
}

func mergeExpr(node graph.Node, layer string, inputs []string) string {
	switch normalisedType(node) {
	case "add":
		return strings.Join(inputs, " + ")
	case "multiply":
		return strings.Join(inputs, " * ")
	case "concatenate", "concat":
		return fmt.Sprintf("torch.cat([%s], dim=%s)", strings.Join(inputs, ", "), params{node: node}.val("dim", 1))
	default:
		return fmt.Sprintf("self.%s(%s)", layer, strings.Join(inputs, ", "))
	}
}

func normalisedType(node graph.Node) string {
	return strings.ToLower(strings.TrimSpace(node.Type))
}

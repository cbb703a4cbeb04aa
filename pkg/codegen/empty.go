package codegen

import "fmt"

// Fixed outputs for a graph without nodes.
const (
	EmptyTrainCode     = "# Add layers to the canvas to generate the training code"
	EmptyInferenceCode = "# Add layers to the canvas to generate the inference code"
	EmptySummary       = "Model is empty. Drag and drop layers from the toolbox to build your model."
)

// EmptyModelCode returns the placeholder model class emitted for an empty
// graph.
func EmptyModelCode(modelName string) string {
	return fmt.Sprintf(`import torch
import torch.nn as nn

class %[1]s(nn.Module):
    def __init__(self):
        super(%[1]s, self).__init__()
        # Add your layer definitions here

    def forward(self, x):
        # Add your forward pass here
        return x

    def summary(self):
        print("Model is empty. Add layers from the toolbox.")
`, modelName)
}

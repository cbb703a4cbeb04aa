package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-torchgen/pkg/graph"
)

// emitter renders the __init__ lines for one node. Lines are unindented and
// may span several rows.
type emitter func(p params, name string) string

// layerKind describes how a node type is named, displayed and emitted.
type layerKind struct {
	prefix  string
	display string
	emit    emitter
	// paramFree marks layers without trainable weights for the estimate.
	paramFree bool
	// vision marks torchvision backbones that need the models import.
	vision bool
	// transformers marks Hugging Face backed nodes.
	transformers bool
}

const fallbackPrefix = "layer"

var kinds = map[string]layerKind{
	// basic
	"linear":    {prefix: "linear", display: "Linear", emit: emitLinear},
	"flatten":   {prefix: "flatten", display: "Flatten", emit: emitFlatten, paramFree: true},
	"embedding": {prefix: "embed", display: "Embedding", emit: emitEmbedding},

	// convolution
	"conv1d":            {prefix: "conv1d", display: "Conv1d", emit: emitConv1d},
	"conv2d":            {prefix: "conv2d", display: "Conv2d", emit: emitConv2d},
	"conv3d":            {prefix: "conv3d", display: "Conv3d", emit: emitConv3d},
	"depthwise_conv2d":  {prefix: "dwconv", display: "DepthwiseSeparableConv2d", emit: emitDepthwiseConv2d},
	"transposed_conv2d": {prefix: "convT", display: "ConvTranspose2d", emit: emitTransposedConv2d},

	// pooling
	"maxpool1d":          {prefix: "maxpool1d", display: "MaxPool1d", emit: emitMaxPool("MaxPool1d"), paramFree: true},
	"avgpool1d":          {prefix: "avgpool1d", display: "AvgPool1d", emit: emitAvgPool("AvgPool1d"), paramFree: true},
	"maxpool2d":          {prefix: "maxpool2d", display: "MaxPool2d", emit: emitMaxPool("MaxPool2d"), paramFree: true},
	"avgpool2d":          {prefix: "avgpool2d", display: "AvgPool2d", emit: emitAvgPool("AvgPool2d"), paramFree: true},
	"adaptive_maxpool2d": {prefix: "adaptmax", display: "AdaptiveMaxPool2d", emit: emitAdaptiveMaxPool2d, paramFree: true},
	"global_avgpool":     {prefix: "gap", display: "AdaptiveAvgPool2d", emit: emitGlobalAvgPool, paramFree: true},

	// normalization
	"batchnorm1d":    {prefix: "bn1d", display: "BatchNorm1d", emit: emitRunningNorm("BatchNorm1d")},
	"batchnorm2d":    {prefix: "bn2d", display: "BatchNorm2d", emit: emitRunningNorm("BatchNorm2d")},
	"layernorm":      {prefix: "ln", display: "LayerNorm", emit: emitLayerNorm},
	"instancenorm2d": {prefix: "in2d", display: "InstanceNorm2d", emit: emitRunningNorm("InstanceNorm2d")},
	"groupnorm":      {prefix: "gn", display: "GroupNorm", emit: emitGroupNorm},

	// recurrent
	"lstm": {prefix: "lstm", display: "LSTM", emit: emitRecurrent("LSTM", false)},
	"gru":  {prefix: "gru", display: "GRU", emit: emitRecurrent("GRU", false)},
	"rnn":  {prefix: "rnn", display: "RNN", emit: emitRecurrent("RNN", true)},

	// attention
	"multihead_attention":          {prefix: "mha", display: "MultiheadAttention", emit: emitMultiheadAttention},
	"self_attention":               {prefix: "self_attn", display: "SelfAttention", emit: emitSelfAttention},
	"scaled_dot_product_attention": {prefix: "sdpa", display: "ScaledDotProductAttention", emit: emitScaledDotProductAttention, paramFree: true},

	// activations
	"relu":       {prefix: "relu", display: "ReLU", emit: emitInplace("ReLU", ""), paramFree: true},
	"sigmoid":    {prefix: "sigmoid", display: "Sigmoid", emit: emitBare("Sigmoid"), paramFree: true},
	"tanh":       {prefix: "tanh", display: "Tanh", emit: emitBare("Tanh"), paramFree: true},
	"leaky_relu": {prefix: "lrelu", display: "LeakyReLU", emit: emitLeakyReLU, paramFree: true},
	"elu":        {prefix: "elu", display: "ELU", emit: emitELU, paramFree: true},
	"selu":       {prefix: "selu", display: "SELU", emit: emitInplace("SELU", ""), paramFree: true},
	"prelu":      {prefix: "prelu", display: "PReLU", emit: emitPReLU},
	"mish":       {prefix: "mish", display: "Mish", emit: emitInplace("Mish", ""), paramFree: true},
	"swish":      {prefix: "swish", display: "SiLU", emit: emitInplace("SiLU", "  # Swish activation"), paramFree: true},

	// pretrained models
	"resnet":       {prefix: "resnet", display: "ResNet", emit: emitResNet, vision: true},
	"vgg":          {prefix: "vgg", display: "VGG", emit: emitVGG, vision: true},
	"mobilenet_v2": {prefix: "mobilenet", display: "MobileNetV2", emit: emitMobileNetV2, vision: true},
	"efficientnet": {prefix: "effnet", display: "EfficientNet", emit: emitEfficientNet, vision: true},
	"densenet":     {prefix: "densenet", display: "DenseNet", emit: emitDenseNet, vision: true},
	"bert":         {prefix: "bert", display: "BERT", emit: emitBERT, transformers: true},
	"gpt2":         {prefix: "gpt2", display: "GPT2", emit: emitGPT2, transformers: true},
	"transformer":  {prefix: "transformer", display: "Transformer", emit: emitTransformer},

	// utilities
	"dropout":        {prefix: "dropout", display: "Dropout", emit: emitDropout, paramFree: true},
	"reshape":        {prefix: "reshape", display: "Reshape", emit: emitReshape, paramFree: true},
	"concatenate":    {prefix: "concat", display: "Concatenate", emit: emitConcatenate, paramFree: true},
	"concat":         {prefix: "concat", display: "Concatenate", emit: emitConcatenate, paramFree: true},
	"add":            {prefix: "add", display: "Add", emit: emitAdd, paramFree: true},
	"multiply":       {prefix: "mul", display: "Multiply", emit: emitMultiply, paramFree: true},
	"identity":       {prefix: "identity", display: "Identity", emit: emitBare("Identity"), paramFree: true},
	"zero_padding2d": {prefix: "zpad", display: "ZeroPad2d", emit: emitZeroPadding2d, paramFree: true},
	"lambda":         {prefix: "lambda", display: "Lambda", emit: emitLambda, paramFree: true},
}

func kindOf(nodeType string) (layerKind, bool) {
	k, ok := kinds[strings.ToLower(strings.TrimSpace(nodeType))]
	return k, ok
}

// SupportedTypes lists the node types with a dedicated emitter.
func SupportedTypes() []string {
	out := make([]string, 0, len(kinds))
	for name := range kinds {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func layerName(node graph.Node, position int) string {
	prefix := fallbackPrefix
	if k, ok := kindOf(node.Type); ok {
		prefix = k.prefix
	}
	return fmt.Sprintf("%s%d", prefix, position)
}

func displayName(node graph.Node) string {
	if k, ok := kindOf(node.Type); ok {
		return k.display
	}
	if label := Label(node.Name); label != "" {
		return label
	}
	if node.Type != "" {
		return Label(node.Type)
	}
	return "Unknown"
}

// nodeLabel is the text used in comments: the canvas name when present,
// otherwise the display name.
func nodeLabel(node graph.Node) string {
	if label := Label(node.Name); label != "" {
		return label
	}
	return displayName(node)
}

func layerCode(node graph.Node, name string) string {
	p := params{node: node}
	if k, ok := kindOf(node.Type); ok {
		return k.emit(p, name)
	}
	return emitCustom(p, name)
}

func emitLinear(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.Linear(%s, %s, bias=%s)",
		name, p.val("in_features", 512), p.val("out_features", 256), p.flag("bias", true))
}

func emitFlatten(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.Flatten(start_dim=%s, end_dim=%s)",
		name, p.val("start_dim", 1), p.val("end_dim", -1))
}

func emitEmbedding(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.Embedding(%s, %s%s, sparse=%s)",
		name, p.val("num_embeddings", 10000), p.val("embedding_dim", 300),
		p.optional("padding_idx", "padding_idx"), p.flag("sparse", false))
}

func emitConv1d(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.Conv1d(%s, %s, kernel_size=%s, stride=%s, padding=%s, dilation=%s, groups=%s, bias=%s)",
		name, p.val("in_channels", 1), p.val("out_channels", 64), p.val("kernel_size", 3),
		p.val("stride", 1), p.padding("padding", "valid"), p.val("dilation", 1),
		p.val("groups", 1), p.flag("bias", true))
}

func emitConv2d(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.Conv2d(%s, %s, kernel_size=%s, stride=%s, padding=%s, dilation=%s, groups=%s, bias=%s)",
		name, p.val("in_channels", 3), p.val("out_channels", 64), p.val("kernel_size", 3),
		p.val("stride", 1), p.padding("padding", "same"), p.val("dilation", 1),
		p.val("groups", 1), p.flag("bias", true))
}

func emitConv3d(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.Conv3d(%s, %s, kernel_size=%s, stride=%s, padding=%s, dilation=%s, bias=%s)",
		name, p.val("in_channels", 1), p.val("out_channels", 32), p.val("kernel_size", 3),
		p.val("stride", 1), p.padding("padding", 1), p.val("dilation", 1), p.flag("bias", true))
}

func emitDepthwiseConv2d(p params, name string) string {
	in := p.val("in_channels", 32)
	multiplier := p.val("depth_multiplier", 1)
	return strings.Join([]string{
		"# Depthwise separable convolution: depthwise + pointwise",
		fmt.Sprintf("self.%s_depthwise = nn.Conv2d(%s, %s * %s, kernel_size=%s, stride=%s, padding=%s, groups=%s)",
			name, in, in, multiplier, p.val("kernel_size", 3), p.val("stride", 1), p.padding("padding", 1), in),
		fmt.Sprintf("self.%s_pointwise = nn.Conv2d(%s * %s, %s, kernel_size=1)",
			name, in, multiplier, p.val("out_channels", 64)),
	}, "\n")
}

func emitTransposedConv2d(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.ConvTranspose2d(%s, %s, kernel_size=%s, stride=%s, padding=%s, output_padding=%s, dilation=%s, bias=%s)",
		name, p.val("in_channels", 64), p.val("out_channels", 32), p.val("kernel_size", 4),
		p.val("stride", 2), p.val("padding", 1), p.val("output_padding", 0),
		p.val("dilation", 1), p.flag("bias", true))
}

func emitMaxPool(class string) emitter {
	return func(p params, name string) string {
		return fmt.Sprintf("self.%s = nn.%s(kernel_size=%s, stride=%s, padding=%s, dilation=%s, ceil_mode=%s)",
			name, class, p.val("kernel_size", 2), p.val("stride", 2), p.val("padding", 0),
			p.val("dilation", 1), p.flag("ceil_mode", false))
	}
}

func emitAvgPool(class string) emitter {
	return func(p params, name string) string {
		return fmt.Sprintf("self.%s = nn.%s(kernel_size=%s, stride=%s, padding=%s, ceil_mode=%s)",
			name, class, p.val("kernel_size", 2), p.val("stride", 2), p.val("padding", 0),
			p.flag("ceil_mode", false))
	}
}

func emitAdaptiveMaxPool2d(p params, name string) string {
	size := p.val("output_size", 1)
	return fmt.Sprintf("self.%s = nn.AdaptiveMaxPool2d(output_size=(%s, %s))", name, size, size)
}

func emitGlobalAvgPool(_ params, name string) string {
	return fmt.Sprintf("self.%s = nn.AdaptiveAvgPool2d(output_size=(1, 1))", name)
}

func emitRunningNorm(class string) emitter {
	return func(p params, name string) string {
		return fmt.Sprintf("self.%s = nn.%s(%s, eps=%s, momentum=%s, affine=%s, track_running_stats=%s)",
			name, class, p.val("num_features", 64), p.val("eps", 1e-5), p.val("momentum", 0.1),
			p.flag("affine", true), p.flag("track_running_stats", true))
	}
}

func emitLayerNorm(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.LayerNorm(%s, eps=%s, elementwise_affine=%s)",
		name, p.val("normalized_shape", 512), p.val("eps", 1e-5), p.flag("elementwise_affine", true))
}

func emitGroupNorm(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.GroupNorm(%s, %s, eps=%s, affine=%s)",
		name, p.val("num_groups", 32), p.val("num_channels", 64), p.val("eps", 1e-5), p.flag("affine", true))
}

func emitRecurrent(class string, withNonlinearity bool) emitter {
	return func(p params, name string) string {
		nonlinearity := ""
		if withNonlinearity {
			nonlinearity = fmt.Sprintf(", nonlinearity=%s", p.quoted("nonlinearity", "tanh"))
		}
		return fmt.Sprintf("self.%s = nn.%s(%s, %s, num_layers=%s%s, batch_first=%s, dropout=%s, bidirectional=%s, bias=%s)",
			name, class, p.val("input_size", 128), p.val("hidden_size", 256), p.val("num_layers", 1),
			nonlinearity, p.flag("batch_first", true), p.val("dropout", 0),
			p.flag("bidirectional", false), p.flag("bias", true))
	}
}

func emitMultiheadAttention(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.MultiheadAttention(%s, %s, dropout=%s, bias=%s, add_bias_kv=%s, add_zero_attn=%s%s%s, batch_first=True)",
		name, p.val("embed_dim", 512), p.val("num_heads", 8), p.val("dropout", 0.1),
		p.flag("bias", true), p.flag("add_bias_kv", false), p.flag("add_zero_attn", false),
		p.optional("kdim", "kdim"), p.optional("vdim", "vdim"))
}

func emitSelfAttention(p params, name string) string {
	hidden := p.val("hidden_size", 512)
	return strings.Join([]string{
		"# Self-attention",
		fmt.Sprintf("self.%s = nn.MultiheadAttention(%s, %s, dropout=%s, batch_first=True)",
			name, hidden, p.val("num_attention_heads", 8), p.val("attention_dropout", 0.1)),
		fmt.Sprintf("self.%s_dropout = nn.Dropout(%s)", name, p.val("hidden_dropout", 0.1)),
		fmt.Sprintf("self.%s_norm = nn.LayerNorm(%s)", name, hidden),
	}, "\n")
}

func emitScaledDotProductAttention(p params, name string) string {
	return strings.Join([]string{
		"# Scaled dot-product attention (F.scaled_dot_product_attention, PyTorch 2.0+)",
		fmt.Sprintf("self.%s_dropout = nn.Dropout(%s)", name, p.val("dropout", 0.1)),
		fmt.Sprintf("self.%s_scale = %s  # None uses 1/sqrt(d_k)", name, p.val("scale", nil)),
	}, "\n")
}

func weights(p params, tag string) string {
	if p.node.Bool("pretrained", false) {
		return fmt.Sprintf("weights=%s", pyString(tag))
	}
	return "weights=None"
}

// withHead appends the classifier replacement when the class count differs
// from the ImageNet default.
func withHead(p params, lines []string, head string) string {
	classes := p.node.Float("num_classes", 1000)
	if classes != 1000 {
		lines = append(lines,
			"# Replace the classification head to match the number of classes",
			fmt.Sprintf(head, pyNumber(classes)))
	}
	return strings.Join(lines, "\n")
}

func emitResNet(p params, name string) string {
	return withHead(p, []string{
		fmt.Sprintf("self.%s = models.resnet%s(%s)", name, p.raw("num_layers", "18"), weights(p, "IMAGENET1K_V1")),
	}, fmt.Sprintf("self.%s.fc = nn.Linear(self.%s.fc.in_features, %%s)", name, name))
}

func emitVGG(p params, name string) string {
	model := "vgg" + p.raw("version", "16")
	if p.node.Bool("batch_norm", false) {
		model += "_bn"
	}
	return withHead(p, []string{
		fmt.Sprintf("self.%s = models.%s(%s)", name, model, weights(p, "IMAGENET1K_V1")),
	}, fmt.Sprintf("self.%s.classifier[-1] = nn.Linear(4096, %%s)", name))
}

func emitMobileNetV2(p params, name string) string {
	return withHead(p, []string{
		fmt.Sprintf("self.%s = models.mobilenet_v2(%s)", name, weights(p, "IMAGENET1K_V2")),
	}, fmt.Sprintf("self.%s.classifier[-1] = nn.Linear(self.%s.classifier[-1].in_features, %%s)", name, name))
}

func emitEfficientNet(p params, name string) string {
	return withHead(p, []string{
		fmt.Sprintf("self.%s = models.efficientnet_%s(%s)", name, p.raw("version", "b0"), weights(p, "IMAGENET1K_V1")),
	}, fmt.Sprintf("self.%s.classifier[-1] = nn.Linear(self.%s.classifier[-1].in_features, %%s)", name, name))
}

func emitDenseNet(p params, name string) string {
	return withHead(p, []string{
		fmt.Sprintf("self.%s = models.densenet%s(%s)", name, p.raw("num_layers", "121"), weights(p, "IMAGENET1K_V1")),
	}, fmt.Sprintf("self.%s.classifier = nn.Linear(self.%s.classifier.in_features, %%s)", name, name))
}

func emitBERT(p params, name string) string {
	labels := p.val("num_labels", 2)
	lines := []string{
		"# BERT requires the transformers package: pip install transformers",
		"from transformers import BertForSequenceClassification",
	}
	if p.node.Bool("from_pretrained", true) {
		lines = append(lines, fmt.Sprintf("self.%s = BertForSequenceClassification.from_pretrained(%s, num_labels=%s)",
			name, p.quoted("model_name", "bert-base-uncased"), labels))
	} else {
		lines = append(lines,
			"from transformers import BertConfig",
			fmt.Sprintf("self.%s = BertForSequenceClassification(BertConfig(num_labels=%s))", name, labels))
	}
	return strings.Join(lines, "\n")
}

func emitGPT2(p params, name string) string {
	class := "GPT2LMHeadModel"
	if p.raw("task_type", "language_modeling") == "sequence_classification" {
		class = "GPT2ForSequenceClassification"
	}
	lines := []string{
		"# GPT-2 requires the transformers package: pip install transformers",
		"from transformers import " + class,
	}
	if p.node.Bool("from_pretrained", true) {
		lines = append(lines, fmt.Sprintf("self.%s = %s.from_pretrained(%s)", name, class, p.quoted("model_name", "gpt2")))
	} else {
		lines = append(lines,
			"from transformers import GPT2Config",
			fmt.Sprintf("self.%s = %s(GPT2Config())", name, class))
	}
	return strings.Join(lines, "\n")
}

func emitTransformer(p params, name string) string {
	return strings.Join([]string{
		fmt.Sprintf("self.%s = nn.Transformer(", name),
		fmt.Sprintf("    d_model=%s,", p.val("d_model", 512)),
		fmt.Sprintf("    nhead=%s,", p.val("nhead", 8)),
		fmt.Sprintf("    num_encoder_layers=%s,", p.val("num_encoder_layers", 6)),
		fmt.Sprintf("    num_decoder_layers=%s,", p.val("num_decoder_layers", 6)),
		fmt.Sprintf("    dim_feedforward=%s,", p.val("dim_feedforward", 2048)),
		fmt.Sprintf("    dropout=%s,", p.val("dropout", 0.1)),
		fmt.Sprintf("    activation=%s,", p.quoted("activation", "relu")),
		fmt.Sprintf("    batch_first=%s", p.flag("batch_first", true)),
		")",
	}, "\n")
}

func emitBare(class string) emitter {
	return func(_ params, name string) string {
		return fmt.Sprintf("self.%s = nn.%s()", name, class)
	}
}

func emitInplace(class, suffix string) emitter {
	return func(p params, name string) string {
		return fmt.Sprintf("self.%s = nn.%s(inplace=%s)%s", name, class, p.flag("inplace", false), suffix)
	}
}

func emitLeakyReLU(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.LeakyReLU(negative_slope=%s, inplace=%s)",
		name, p.val("negative_slope", 0.01), p.flag("inplace", false))
}

func emitELU(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.ELU(alpha=%s, inplace=%s)", name, p.val("alpha", 1.0), p.flag("inplace", false))
}

func emitPReLU(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.PReLU(num_parameters=%s, init=%s)",
		name, p.val("num_parameters", 1), p.val("init", 0.25))
}

func emitDropout(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.Dropout(p=%s, inplace=%s)", name, p.val("p", 0.5), p.flag("inplace", false))
}

func emitReshape(p params, _ string) string {
	return "# Reshape layer: applied in forward()\n" +
		fmt.Sprintf("# Target shape: (%s)", p.raw("shape", "-1, 128"))
}

func emitConcatenate(p params, _ string) string {
	return "# Concatenate layer: torch.cat() in forward()\n" +
		fmt.Sprintf("# Concatenation dimension: %s", p.val("dim", 1))
}

func emitAdd(_ params, _ string) string {
	return "# Add layer: element-wise addition in forward()"
}

func emitMultiply(_ params, _ string) string {
	return "# Multiply layer: element-wise multiplication in forward()"
}

func emitZeroPadding2d(p params, name string) string {
	return fmt.Sprintf("self.%s = nn.ZeroPad2d(%s)", name, p.val("padding", 1))
}

func emitLambda(p params, name string) string {
	return strings.Join([]string{
		"# Lambda layer: custom function",
		"# PyTorch has no built-in Lambda module; implement it in forward() or as a custom module",
		fmt.Sprintf("# Function: %s", p.raw("function", "lambda x: x * 2")),
		fmt.Sprintf("self.%s = nn.Identity()  # Placeholder: implement the custom logic in forward()", name),
	}, "\n")
}

func emitCustom(p params, name string) string {
	return fmt.Sprintf("# %s layer\n", nodeLabel(p.node)) +
		fmt.Sprintf("self.%s = nn.Identity()  # Placeholder: replace with the actual implementation", name)
}

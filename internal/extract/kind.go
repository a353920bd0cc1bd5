package extract

// Kind is the closed vocabulary of extractable layer kinds.
type Kind int

const (
	KindAdd Kind = iota + 1
	KindActivation
	KindBatchNormalization
	KindConcatenate
	KindConv2D
	KindDense
	KindDepthwiseConv2D
	KindGlobalAveragePool2D
	KindGlobalMaxPool2D
	KindSplitChannels
	KindMaxPool2D
	KindSeparableConv2D
	KindUpSampling2D
	KindZeroPadding2D

	kindEnd
)

// kindTags holds the canonical, serialization-facing tag of each kind.
var kindTags = [kindEnd]string{
	KindAdd:                 "add",
	KindActivation:          "activation",
	KindBatchNormalization:  "batch_normalization",
	KindConcatenate:         "concatenate",
	KindConv2D:              "convolution_2d",
	KindDense:               "dense",
	KindDepthwiseConv2D:     "depthwise_convolution_2d",
	KindGlobalAveragePool2D: "global_average_pool_2d",
	KindGlobalMaxPool2D:     "global_max_pool_2d",
	KindSplitChannels:       "split_channels",
	KindMaxPool2D:           "max_pool_2d",
	KindSeparableConv2D:     "separable_convolution_2d",
	KindUpSampling2D:        "upsampling_2d",
	KindZeroPadding2D:       "padding_2d",
}

// classKinds maps the producing framework's layer class names to kinds.
var classKinds = map[string]Kind{
	"Add":                    KindAdd,
	"Activation":             KindActivation,
	"BatchNormalization":     KindBatchNormalization,
	"Concatenate":            KindConcatenate,
	"Conv2D":                 KindConv2D,
	"Dense":                  KindDense,
	"DepthwiseConv2D":        KindDepthwiseConv2D,
	"GlobalAveragePooling2D": KindGlobalAveragePool2D,
	"GlobalMaxPooling2D":     KindGlobalMaxPool2D,
	"Lambda":                 KindSplitChannels,
	"MaxPooling2D":           KindMaxPool2D,
	"SeparableConv2D":        KindSeparableConv2D,
	"UpSampling2D":           KindUpSampling2D,
	"ZeroPadding2D":          KindZeroPadding2D,
}

// String returns the canonical tag, e.g. "convolution_2d".
func (k Kind) String() string {
	if k <= 0 || k >= kindEnd {
		return "unknown"
	}
	return kindTags[k]
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindEnd-1)
	for k := KindAdd; k < kindEnd; k++ {
		out = append(out, k)
	}
	return out
}

// KindOf resolves a framework class name.
func KindOf(className string) (Kind, bool) {
	k, ok := classKinds[className]
	return k, ok
}

// ClassNames returns the supported framework class names.
func ClassNames() []string {
	out := make([]string, 0, len(classKinds))
	for name := range classKinds {
		out = append(out, name)
	}
	return out
}

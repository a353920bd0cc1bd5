package extract

import (
	"github.com/vk/layergraph/internal/tensor"
)

// Body is the kind-specific part of a record. The unexported method closes
// the set of implementations to this package.
type Body interface {
	Kind() Kind
	fields() map[string]any
}

// optional renders a possibly disabled tensor; a disabled tensor is an
// explicit nil so the field is always present.
func optional(t *tensor.Tensor) any {
	if t == nil {
		return nil
	}
	return t.Nested()
}

// Add sums its inputs element-wise.
type Add struct{}

func (Add) Kind() Kind { return KindAdd }
func (Add) fields() map[string]any { return map[string]any{} }

// Activation applies the named function to its single input.
type Activation struct {
	Function string
}

func (Activation) Kind() Kind { return KindActivation }
func (b Activation) fields() map[string]any {
	return map[string]any{"activation_function": b.Function}
}

// BatchNormalization normalizes with frozen statistics.
type BatchNormalization struct {
	Epsilon  float64
	Gamma    tensor.Tensor
	Beta     tensor.Tensor
	Mean     tensor.Tensor
	Variance tensor.Tensor
}

func (BatchNormalization) Kind() Kind { return KindBatchNormalization }
func (b BatchNormalization) fields() map[string]any {
	return map[string]any{
		"epsilon":  b.Epsilon,
		"gamma":    b.Gamma.Nested(),
		"beta":     b.Beta.Nested(),
		"mean":     b.Mean.Nested(),
		"variance": b.Variance.Nested(),
	}
}

// Concatenate joins its inputs along the channel axis.
type Concatenate struct{}

func (Concatenate) Kind() Kind { return KindConcatenate }
func (Concatenate) fields() map[string]any { return map[string]any{} }

// Conv2D is a standard 2D convolution. Bias is nil when disabled.
type Conv2D struct {
	Kernel     tensor.Tensor
	Bias       *tensor.Tensor
	Activation string
	Padding    string
	Strides    []int
}

func (Conv2D) Kind() Kind { return KindConv2D }
func (b Conv2D) fields() map[string]any {
	return map[string]any{
		"kernel":              b.Kernel.Nested(),
		"bias":                optional(b.Bias),
		"activation_function": b.Activation,
		"padding":             b.Padding,
		"strides":             b.Strides,
	}
}

// Dense is a fully-connected layer. Offset is nil when bias is disabled.
type Dense struct {
	Weights    tensor.Tensor
	Offset     *tensor.Tensor
	Activation string
}

func (Dense) Kind() Kind { return KindDense }
func (b Dense) fields() map[string]any {
	return map[string]any{
		"weights":             b.Weights.Nested(),
		"offset":              optional(b.Offset),
		"activation_function": b.Activation,
	}
}

// DepthwiseConv2D convolves each input channel separately. Bias is nil when
// disabled.
type DepthwiseConv2D struct {
	Kernel          tensor.Tensor
	Bias            *tensor.Tensor
	Activation      string
	Padding         string
	Strides         []int
	DepthMultiplier int
}

func (DepthwiseConv2D) Kind() Kind { return KindDepthwiseConv2D }
func (b DepthwiseConv2D) fields() map[string]any {
	return map[string]any{
		"kernel":              b.Kernel.Nested(),
		"bias":                optional(b.Bias),
		"activation_function": b.Activation,
		"padding":             b.Padding,
		"strides":             b.Strides,
		"depth_multiplier":    b.DepthMultiplier,
	}
}

// GlobalAveragePool2D averages each channel over the spatial axes.
type GlobalAveragePool2D struct{}

func (GlobalAveragePool2D) Kind() Kind { return KindGlobalAveragePool2D }
func (GlobalAveragePool2D) fields() map[string]any { return map[string]any{} }

// GlobalMaxPool2D takes the maximum of each channel over the spatial axes.
type GlobalMaxPool2D struct{}

func (GlobalMaxPool2D) Kind() Kind { return KindGlobalMaxPool2D }
func (GlobalMaxPool2D) fields() map[string]any { return map[string]any{} }

// SplitChannels selects group GroupIndex out of NumberOfSplits equal
// channel groups.
type SplitChannels struct {
	NumberOfSplits int
	GroupIndex     int
}

func (SplitChannels) Kind() Kind { return KindSplitChannels }
func (b SplitChannels) fields() map[string]any {
	return map[string]any{
		"number_of_splits": b.NumberOfSplits,
		"group_index":      b.GroupIndex,
	}
}

// MaxPool2D is windowed max pooling.
type MaxPool2D struct {
	Padding  string
	Strides  []int
	PoolSize []int
}

func (MaxPool2D) Kind() Kind { return KindMaxPool2D }
func (b MaxPool2D) fields() map[string]any {
	return map[string]any{
		"padding":   b.Padding,
		"strides":   b.Strides,
		"pool_size": b.PoolSize,
	}
}

// SeparableConv2D is a depthwise convolution followed by a pointwise one.
// Bias is nil when disabled.
type SeparableConv2D struct {
	DepthKernel     tensor.Tensor
	PointKernel     tensor.Tensor
	Bias            *tensor.Tensor
	Activation      string
	Padding         string
	Strides         []int
	DepthMultiplier int
}

func (SeparableConv2D) Kind() Kind { return KindSeparableConv2D }
func (b SeparableConv2D) fields() map[string]any {
	return map[string]any{
		"depth_kernel":        b.DepthKernel.Nested(),
		"point_kernel":        b.PointKernel.Nested(),
		"bias":                optional(b.Bias),
		"activation_function": b.Activation,
		"padding":             b.Padding,
		"strides":             b.Strides,
		"depth_multiplier":    b.DepthMultiplier,
	}
}

// UpSampling2D resizes the spatial axes by Size using Method.
type UpSampling2D struct {
	Method string
	Size   []int
}

func (UpSampling2D) Kind() Kind { return KindUpSampling2D }
func (b UpSampling2D) fields() map[string]any {
	return map[string]any{
		"method": b.Method,
		"size":   b.Size,
	}
}

// ZeroPadding2D pads ((top, bottom), (left, right)).
type ZeroPadding2D struct {
	Padding [][]int
}

func (ZeroPadding2D) Kind() Kind { return KindZeroPadding2D }
func (b ZeroPadding2D) fields() map[string]any {
	return map[string]any{"padding": b.Padding}
}

package extract

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/vk/layergraph/internal/config"
	"github.com/vk/layergraph/internal/tensor"
)

// extractBody builds the kind-specific body of one layer. The switch must
// cover every Kind; TestExtractBody_CoversEveryKind enforces it.
func extractBody(kind Kind, attrs config.Attributes, layer config.Layer) (Body, error) {
	switch kind {
	case KindAdd:
		return Add{}, nil
	case KindActivation:
		return Activation{Function: layer.Function()}, nil
	case KindBatchNormalization:
		return batchNormalization(attrs, layer)
	case KindConcatenate:
		return Concatenate{}, nil
	case KindConv2D:
		return conv2D(attrs, layer)
	case KindDense:
		return dense(attrs, layer)
	case KindDepthwiseConv2D:
		return depthwiseConv2D(attrs, layer)
	case KindGlobalAveragePool2D:
		return GlobalAveragePool2D{}, nil
	case KindGlobalMaxPool2D:
		return GlobalMaxPool2D{}, nil
	case KindSplitChannels:
		return splitChannels(layer.Function())
	case KindMaxPool2D:
		return maxPool2D(attrs)
	case KindSeparableConv2D:
		return separableConv2D(attrs, layer)
	case KindUpSampling2D:
		return UpSampling2D{Method: "bilinear", Size: []int{2, 2}}, nil
	case KindZeroPadding2D:
		padding, err := attrs.IntPairs("padding")
		if err != nil {
			return nil, err
		}
		return ZeroPadding2D{Padding: padding}, nil
	}
	return nil, fmt.Errorf("no extractor for kind %d", int(kind))
}

// weights reads exactly the n leading weight tensors of a layer as deep
// copies. Each tensor must fit its shape.
func weights(layer config.Layer, n int) ([]tensor.Tensor, error) {
	ws, err := layer.Weights()
	if err != nil {
		return nil, fmt.Errorf("reading weights: %w", err)
	}
	parts, err := tensor.Unpack(ws, n)
	if err != nil {
		return nil, err
	}
	out := make([]tensor.Tensor, n)
	for i, t := range parts {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("weight %d: %w", i, err)
		}
		out[i] = t.Clone()
	}
	return out, nil
}

// kernelAndBias unpacks (kernel, bias) or, with use_bias off, (kernel) and a
// nil bias.
func kernelAndBias(attrs config.Attributes, layer config.Layer) (tensor.Tensor, *tensor.Tensor, error) {
	useBias, err := attrs.Bool("use_bias")
	if err != nil {
		return tensor.Tensor{}, nil, err
	}
	if !useBias {
		ws, err := weights(layer, 1)
		if err != nil {
			return tensor.Tensor{}, nil, err
		}
		return ws[0], nil, nil
	}
	ws, err := weights(layer, 2)
	if err != nil {
		return tensor.Tensor{}, nil, err
	}
	return ws[0], &ws[1], nil
}

// convCommon holds the attributes shared by the convolution kinds.
type convCommon struct {
	activation string
	padding    string
	strides    []int
}

func readConvCommon(attrs config.Attributes) (convCommon, error) {
	var c convCommon
	var err error
	if c.activation, err = attrs.String("activation"); err != nil {
		return c, err
	}
	if c.padding, err = attrs.String("padding"); err != nil {
		return c, err
	}
	if c.strides, err = attrs.Ints("strides"); err != nil {
		return c, err
	}
	return c, nil
}

func batchNormalization(attrs config.Attributes, layer config.Layer) (Body, error) {
	epsilon, err := attrs.Float("epsilon")
	if err != nil {
		return nil, err
	}
	ws, err := weights(layer, 4)
	if err != nil {
		return nil, err
	}
	return BatchNormalization{
		Epsilon:  epsilon,
		Gamma:    ws[0],
		Beta:     ws[1],
		Mean:     ws[2],
		Variance: ws[3],
	}, nil
}

func conv2D(attrs config.Attributes, layer config.Layer) (Body, error) {
	kernel, bias, err := kernelAndBias(attrs, layer)
	if err != nil {
		return nil, err
	}
	c, err := readConvCommon(attrs)
	if err != nil {
		return nil, err
	}
	return Conv2D{
		Kernel:     kernel,
		Bias:       bias,
		Activation: c.activation,
		Padding:    c.padding,
		Strides:    c.strides,
	}, nil
}

func dense(attrs config.Attributes, layer config.Layer) (Body, error) {
	w, offset, err := kernelAndBias(attrs, layer)
	if err != nil {
		return nil, err
	}
	activation, err := attrs.String("activation")
	if err != nil {
		return nil, err
	}
	return Dense{Weights: w, Offset: offset, Activation: activation}, nil
}

func depthwiseConv2D(attrs config.Attributes, layer config.Layer) (Body, error) {
	kernel, bias, err := kernelAndBias(attrs, layer)
	if err != nil {
		return nil, err
	}
	c, err := readConvCommon(attrs)
	if err != nil {
		return nil, err
	}
	multiplier, err := attrs.Int("depth_multiplier")
	if err != nil {
		return nil, err
	}
	return DepthwiseConv2D{
		Kernel:          kernel,
		Bias:            bias,
		Activation:      c.activation,
		Padding:         c.padding,
		Strides:         c.strides,
		DepthMultiplier: multiplier,
	}, nil
}

func separableConv2D(attrs config.Attributes, layer config.Layer) (Body, error) {
	useBias, err := attrs.Bool("use_bias")
	if err != nil {
		return nil, err
	}
	n := 2
	if useBias {
		n = 3
	}
	ws, err := weights(layer, n)
	if err != nil {
		return nil, err
	}
	var bias *tensor.Tensor
	if useBias {
		bias = &ws[2]
	}
	c, err := readConvCommon(attrs)
	if err != nil {
		return nil, err
	}
	multiplier, err := attrs.Int("depth_multiplier")
	if err != nil {
		return nil, err
	}
	return SeparableConv2D{
		DepthKernel:     ws[0],
		PointKernel:     ws[1],
		Bias:            bias,
		Activation:      c.activation,
		Padding:         c.padding,
		Strides:         c.strides,
		DepthMultiplier: multiplier,
	}, nil
}

func maxPool2D(attrs config.Attributes) (Body, error) {
	padding, err := attrs.String("padding")
	if err != nil {
		return nil, err
	}
	strides, err := attrs.Ints("strides")
	if err != nil {
		return nil, err
	}
	poolSize, err := attrs.Ints("pool_size")
	if err != nil {
		return nil, err
	}
	return MaxPool2D{Padding: padding, Strides: strides, PoolSize: poolSize}, nil
}

// splitRegex matches the function naming convention of channel-split
// lambdas, e.g. `split_1_of_4`.
var splitRegex = regexp.MustCompile(`^split_(\d+)_of_(\d+)$`)

func splitChannels(function string) (Body, error) {
	matches := splitRegex.FindStringSubmatch(function)
	if matches == nil {
		return nil, &MalformedLambdaConventionError{Function: function, Msg: "expected split_<i>_of_<n>"}
	}
	ith, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, &MalformedLambdaConventionError{Function: function, Msg: err.Error()}
	}
	nsplits, err := strconv.Atoi(matches[2])
	if err != nil {
		return nil, &MalformedLambdaConventionError{Function: function, Msg: err.Error()}
	}
	if nsplits == 0 || ith >= nsplits {
		return nil, &MalformedLambdaConventionError{
			Function: function,
			Msg:      fmt.Sprintf("group index %d out of range for %d splits", ith, nsplits),
		}
	}
	return SplitChannels{NumberOfSplits: nsplits, GroupIndex: ith}, nil
}

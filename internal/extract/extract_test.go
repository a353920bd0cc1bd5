package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/layergraph/internal/config"
	"github.com/vk/layergraph/internal/tensor"
)

func convAttrs(useBias bool) config.Attributes {
	return config.Attributes{
		"use_bias":         useBias,
		"activation":       "relu",
		"padding":          "same",
		"strides":          []any{1.0, 1.0},
		"depth_multiplier": 1.0,
	}
}

func TestExtractOne_TypeCoverage(t *testing.T) {
	testCases := []struct {
		spec     layerSpec
		wantType string
		wantKeys []string
	}{
		{
			spec:     layerSpec{class: "Add"},
			wantType: "add",
		},
		{
			spec:     layerSpec{class: "Activation", function: "relu"},
			wantType: "activation",
			wantKeys: []string{"activation_function"},
		},
		{
			spec: layerSpec{
				class:   "BatchNormalization",
				attrs:   config.Attributes{"epsilon": 0.001},
				weights: []tensor.Tensor{vec(1), vec(0), vec(0), vec(1)},
			},
			wantType: "batch_normalization",
			wantKeys: []string{"epsilon", "gamma", "beta", "mean", "variance"},
		},
		{
			spec:     layerSpec{class: "Concatenate"},
			wantType: "concatenate",
		},
		{
			spec:     layerSpec{class: "Conv2D", attrs: convAttrs(true), weights: []tensor.Tensor{mat(2, 2), vec(0, 0)}},
			wantType: "convolution_2d",
			wantKeys: []string{"kernel", "bias", "activation_function", "padding", "strides"},
		},
		{
			spec: layerSpec{
				class:   "Dense",
				attrs:   config.Attributes{"use_bias": true, "activation": "softmax"},
				weights: []tensor.Tensor{mat(3, 2), vec(0, 0)},
			},
			wantType: "dense",
			wantKeys: []string{"weights", "offset", "activation_function"},
		},
		{
			spec:     layerSpec{class: "DepthwiseConv2D", attrs: convAttrs(true), weights: []tensor.Tensor{mat(2, 2), vec(0, 0)}},
			wantType: "depthwise_convolution_2d",
			wantKeys: []string{"kernel", "bias", "activation_function", "padding", "strides", "depth_multiplier"},
		},
		{
			spec:     layerSpec{class: "GlobalAveragePooling2D"},
			wantType: "global_average_pool_2d",
		},
		{
			spec:     layerSpec{class: "GlobalMaxPooling2D"},
			wantType: "global_max_pool_2d",
		},
		{
			spec:     layerSpec{class: "Lambda", function: "split_0_of_2"},
			wantType: "split_channels",
			wantKeys: []string{"number_of_splits", "group_index"},
		},
		{
			spec: layerSpec{
				class: "MaxPooling2D",
				attrs: config.Attributes{"padding": "valid", "strides": []any{2.0, 2.0}, "pool_size": []any{2.0, 2.0}},
			},
			wantType: "max_pool_2d",
			wantKeys: []string{"padding", "strides", "pool_size"},
		},
		{
			spec: layerSpec{
				class:   "SeparableConv2D",
				attrs:   convAttrs(true),
				weights: []tensor.Tensor{mat(2, 2), mat(2, 1), vec(0)},
			},
			wantType: "separable_convolution_2d",
			wantKeys: []string{"depth_kernel", "point_kernel", "bias", "activation_function", "padding", "strides", "depth_multiplier"},
		},
		{
			spec:     layerSpec{class: "UpSampling2D"},
			wantType: "upsampling_2d",
			wantKeys: []string{"method", "size"},
		},
		{
			spec:     layerSpec{class: "ZeroPadding2D", attrs: config.Attributes{"padding": []any{[]any{1.0, 1.0}, []any{1.0, 1.0}}}},
			wantType: "padding_2d",
			wantKeys: []string{"padding"},
		},
	}

	require.Len(t, testCases, len(Kinds()), "every kind needs a coverage case")

	for _, tc := range testCases {
		t.Run(tc.spec.class, func(t *testing.T) {
			spec := tc.spec
			spec.name = "node"
			spec.inputs = []string{"prev"}
			m := newTestModel(t, spec)

			rec, err := ExtractOne(context.Background(), m, layerConfig(t, m, "node"))
			require.NoError(t, err)

			assert.Equal(t, tc.wantType, rec.Type())
			fields := rec.Map()
			assert.Equal(t, tc.wantType, fields["type"])
			assert.Equal(t, "node", fields["name"])
			assert.Equal(t, []string{"prev"}, fields["input_names"])
			for _, key := range tc.wantKeys {
				assert.Contains(t, fields, key)
			}
			assert.Len(t, fields, 3+len(tc.wantKeys))
		})
	}
}

func TestExtractOne_DisabledBiasIsExplicitNil(t *testing.T) {
	m := newTestModel(t,
		layerSpec{name: "conv", class: "Conv2D", attrs: convAttrs(false), weights: []tensor.Tensor{mat(2, 2)}},
		layerSpec{name: "dw", class: "DepthwiseConv2D", attrs: convAttrs(false), weights: []tensor.Tensor{mat(2, 2)}},
		layerSpec{name: "sep", class: "SeparableConv2D", attrs: convAttrs(false), weights: []tensor.Tensor{mat(2, 2), mat(2, 1)}},
		layerSpec{
			name:    "fc",
			class:   "Dense",
			attrs:   config.Attributes{"use_bias": false, "activation": "linear"},
			weights: []tensor.Tensor{mat(2, 2)},
		},
	)

	for name, key := range map[string]string{"conv": "bias", "dw": "bias", "sep": "bias", "fc": "offset"} {
		t.Run(name, func(t *testing.T) {
			rec, err := ExtractOne(context.Background(), m, layerConfig(t, m, name))
			require.NoError(t, err)
			fields := rec.Map()
			require.Contains(t, fields, key)
			assert.Nil(t, fields[key])
		})
	}
}

func TestExtractOne_UnpacksWeightsInOrder(t *testing.T) {
	m := newTestModel(t,
		layerSpec{
			name:    "sep",
			class:   "SeparableConv2D",
			attrs:   convAttrs(true),
			weights: []tensor.Tensor{vec(1), vec(2), vec(3)},
		},
		layerSpec{
			name:    "bn",
			class:   "BatchNormalization",
			attrs:   config.Attributes{"epsilon": 0.5},
			weights: []tensor.Tensor{vec(1), vec(2), vec(3), vec(4)},
		},
	)

	rec, err := ExtractOne(context.Background(), m, layerConfig(t, m, "sep"))
	require.NoError(t, err)
	sep := rec.Body.(SeparableConv2D)
	assert.Equal(t, []float64{1}, sep.DepthKernel.Data)
	assert.Equal(t, []float64{2}, sep.PointKernel.Data)
	require.NotNil(t, sep.Bias)
	assert.Equal(t, []float64{3}, sep.Bias.Data)
	assert.Equal(t, 1, sep.DepthMultiplier)

	rec, err = ExtractOne(context.Background(), m, layerConfig(t, m, "bn"))
	require.NoError(t, err)
	fields := rec.Map()
	assert.Equal(t, 0.5, fields["epsilon"])
	assert.Equal(t, []any{1.0}, fields["gamma"])
	assert.Equal(t, []any{2.0}, fields["beta"])
	assert.Equal(t, []any{3.0}, fields["mean"])
	assert.Equal(t, []any{4.0}, fields["variance"])
}

func TestExtractOne_RecordDoesNotAliasProvider(t *testing.T) {
	kernel := mat(1, 2)
	m := newTestModel(t, layerSpec{
		name:    "fc",
		class:   "Dense",
		attrs:   config.Attributes{"use_bias": false, "activation": "linear"},
		weights: []tensor.Tensor{kernel},
	})

	rec, err := ExtractOne(context.Background(), m, layerConfig(t, m, "fc"))
	require.NoError(t, err)
	kernel.Data[0] = 42

	assert.Equal(t, []float64{1, 2}, rec.Body.(Dense).Weights.Data)
}

func TestExtractOne_UnsupportedNodeType(t *testing.T) {
	m := newTestModel(t, layerSpec{
		name:   "drop",
		class:  "Dropout",
		attrs:  config.Attributes{"rate": 0.5},
		inputs: []string{"fc"},
	})

	rec, err := ExtractOne(context.Background(), m, layerConfig(t, m, "drop"))
	require.Error(t, err)
	assert.Equal(t, Record{}, rec)
	assert.ErrorIs(t, err, ErrUnsupportedNodeType)

	var unsupported *UnsupportedNodeTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "drop", unsupported.Name)
	assert.Equal(t, "Dropout", unsupported.ClassName)
	assert.Equal(t, 0.5, unsupported.Raw.Config["rate"])
	assert.Equal(t, []string{"fc"}, unsupported.Raw.InboundNames())
	assert.Contains(t, err.Error(), "drop")
	assert.Contains(t, err.Error(), "Dropout")
}

func TestExtractOne_SplitChannelsNaming(t *testing.T) {
	m := newTestModel(t,
		layerSpec{name: "split", class: "Lambda", function: "split_1_of_4", inputs: []string{"x"}},
		layerSpec{name: "double", class: "Lambda", function: "double", inputs: []string{"x"}},
	)

	rec, err := ExtractOne(context.Background(), m, layerConfig(t, m, "split"))
	require.NoError(t, err)
	fields := rec.Map()
	assert.Equal(t, "split_channels", fields["type"])
	assert.Equal(t, 4, fields["number_of_splits"])
	assert.Equal(t, 1, fields["group_index"])

	rec, err = ExtractOne(context.Background(), m, layerConfig(t, m, "double"))
	require.Error(t, err)
	assert.Equal(t, Record{}, rec)
	assert.ErrorIs(t, err, ErrMalformedLambdaConvention)
	assert.False(t, errors.Is(err, ErrUnsupportedNodeType))

	var layerErr *LayerError
	require.ErrorAs(t, err, &layerErr)
	assert.Equal(t, "double", layerErr.Name)
	assert.Equal(t, "Lambda", layerErr.ClassName)
}

func TestSplitChannels_Convention(t *testing.T) {
	testCases := []struct {
		function  string
		expectErr bool
		want      SplitChannels
	}{
		{function: "split_0_of_2", want: SplitChannels{NumberOfSplits: 2, GroupIndex: 0}},
		{function: "split_3_of_4", want: SplitChannels{NumberOfSplits: 4, GroupIndex: 3}},
		{function: "split_4_of_4", expectErr: true},
		{function: "split_0_of_0", expectErr: true},
		{function: "split_a_of_2", expectErr: true},
		{function: "split_1_2", expectErr: true},
		{function: "split_1_of_2_extra", expectErr: true},
		{function: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.function, func(t *testing.T) {
			body, err := splitChannels(tc.function)
			if tc.expectErr {
				var malformed *MalformedLambdaConventionError
				require.ErrorAs(t, err, &malformed)
				assert.Equal(t, tc.function, malformed.Function)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, body)
		})
	}
}

func TestExtractOne_MissingAttributeCarriesContext(t *testing.T) {
	m := newTestModel(t, layerSpec{
		name:    "conv",
		class:   "Conv2D",
		attrs:   config.Attributes{"use_bias": false},
		weights: []tensor.Tensor{mat(1, 1)},
	})

	_, err := ExtractOne(context.Background(), m, layerConfig(t, m, "conv"))
	require.ErrorIs(t, err, config.ErrAttribute)

	var layerErr *LayerError
	require.ErrorAs(t, err, &layerErr)
	assert.Equal(t, "conv", layerErr.Name)
	assert.Equal(t, false, layerErr.Raw.Config["use_bias"])
}

func TestExtractOne_TooFewWeights(t *testing.T) {
	m := newTestModel(t, layerSpec{
		name:    "conv",
		class:   "Conv2D",
		attrs:   convAttrs(true),
		weights: []tensor.Tensor{mat(1, 1)},
	})

	rec, err := ExtractOne(context.Background(), m, layerConfig(t, m, "conv"))
	require.Error(t, err)
	assert.Equal(t, Record{}, rec)
}

func TestExtractOne_MalformedWeightTensor(t *testing.T) {
	m := newTestModel(t, layerSpec{
		name:    "fc",
		class:   "Dense",
		attrs:   config.Attributes{"use_bias": false, "activation": "linear"},
		weights: []tensor.Tensor{{Shape: []int{3}, Data: []float64{1}}},
	})

	rec, err := ExtractOne(context.Background(), m, layerConfig(t, m, "fc"))
	require.ErrorIs(t, err, tensor.ErrShape)
	assert.Equal(t, Record{}, rec)

	var layerErr *LayerError
	require.ErrorAs(t, err, &layerErr)
	assert.Equal(t, "fc", layerErr.Name)
	assert.Equal(t, "Dense", layerErr.ClassName)
	assert.Equal(t, "linear", layerErr.Raw.Config["activation"])
}

func TestExtractOne_UnknownLayerHandle(t *testing.T) {
	m := newTestModel(t)
	lc := config.LayerConfig{Name: "ghost", ClassName: "Add"}

	_, err := ExtractOne(context.Background(), m, lc)
	assert.ErrorIs(t, err, config.ErrLayerNotFound)
}

func TestExtractOne_InputNamesFromFirstGroup(t *testing.T) {
	m := config.NewModel("test")
	lc := config.LayerConfig{
		Name:      "sum",
		ClassName: "Add",
		InboundNodes: [][]config.InboundRef{
			{{Layer: "a"}, {Layer: "b"}},
			{{Layer: "c"}, {Layer: "d"}},
		},
	}
	require.NoError(t, m.AddLayer(lc, nil))

	rec, err := ExtractOne(context.Background(), m, lc)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rec.InputNames)
}

func TestExtractBody_CoversEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			_, err := extractBody(k, config.Attributes{}, &config.LayerState{})
			if err != nil {
				assert.NotContains(t, err.Error(), "no extractor for kind")
			}
		})
	}
}

func TestKinds_ClassNamesRoundTrip(t *testing.T) {
	seen := make(map[Kind]bool)
	for _, class := range ClassNames() {
		k, ok := KindOf(class)
		require.True(t, ok)
		seen[k] = true
	}
	assert.Len(t, seen, len(Kinds()))
	assert.Equal(t, "unknown", Kind(0).String())
}

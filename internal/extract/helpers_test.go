package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/layergraph/internal/config"
	"github.com/vk/layergraph/internal/tensor"
)

// layerSpec describes one layer of a test model.
type layerSpec struct {
	name     string
	class    string
	attrs    config.Attributes
	inputs   []string
	function string
	weights  []tensor.Tensor
}

// newTestModel builds an in-memory model from specs, in order.
func newTestModel(t *testing.T, specs ...layerSpec) *config.Model {
	t.Helper()
	m := config.NewModel("test")
	for _, s := range specs {
		lc := config.LayerConfig{Name: s.name, ClassName: s.class, Config: s.attrs}
		if s.inputs != nil {
			group := make([]config.InboundRef, 0, len(s.inputs))
			for _, in := range s.inputs {
				group = append(group, config.InboundRef{Layer: in})
			}
			lc.InboundNodes = [][]config.InboundRef{group}
		}
		require.NoError(t, m.AddLayer(lc, &config.LayerState{Tensors: s.weights, FunctionName: s.function}))
	}
	return m
}

// vec builds a 1-D tensor.
func vec(vals ...float64) tensor.Tensor {
	return tensor.Tensor{Shape: []int{len(vals)}, Data: vals}
}

// mat builds a rows x cols tensor filled with 1..rows*cols.
func mat(rows, cols int) tensor.Tensor {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i + 1)
	}
	return tensor.Tensor{Shape: []int{rows, cols}, Data: data}
}

// layerConfig returns the configuration of the named layer.
func layerConfig(t *testing.T, m *config.Model, name string) config.LayerConfig {
	t.Helper()
	for _, lc := range m.Layers() {
		if lc.Name == name {
			return lc
		}
	}
	t.Fatalf("layer %q not in model", name)
	return config.LayerConfig{}
}

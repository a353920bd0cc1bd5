package config

import (
	"errors"
	"fmt"

	"github.com/vk/layergraph/internal/tensor"
)

// ErrLayerNotFound is returned by Provider.Layer for unknown layer names.
var ErrLayerNotFound = errors.New("layer not found")

const (
	// InputLayerClass is the class name the producing framework gives to graph
	// inputs. Input layers have no inbound nodes and are never extracted.
	InputLayerClass = "InputLayer"
	// ActivationLayerClass is the class name of standalone activation layers.
	ActivationLayerClass = "Activation"
)

// InboundRef is one inbound edge: the producing layer plus the framework's
// call-site bookkeeping.
type InboundRef struct {
	Layer       string
	NodeIndex   int
	TensorIndex int
}

// ParseInboundRef reads a reference given as a bare layer name or as a
// [name, node_index, tensor_index, ...] list. Missing indices default to
// zero; present ones must be non-negative integers.
func ParseInboundRef(v any) (InboundRef, error) {
	switch x := v.(type) {
	case string:
		return InboundRef{Layer: x}, nil
	case []any:
		if len(x) == 0 {
			return InboundRef{}, errors.New("empty reference")
		}
		name, ok := x[0].(string)
		if !ok {
			return InboundRef{}, fmt.Errorf("layer name must be a string, got %T", x[0])
		}
		ref := InboundRef{Layer: name}
		for i, dst := range []*int{&ref.NodeIndex, &ref.TensorIndex} {
			if len(x) <= i+1 {
				break
			}
			n, msg := integer(x[i+1])
			if msg != "" {
				return InboundRef{}, fmt.Errorf("reference %q index %d: %s", name, i+1, msg)
			}
			if n < 0 {
				return InboundRef{}, fmt.Errorf("reference %q index %d: must be non-negative, got %d", name, i+1, n)
			}
			*dst = n
		}
		return ref, nil
	default:
		return InboundRef{}, fmt.Errorf("unsupported reference %T", v)
	}
}

// LayerConfig is the declarative description of one layer.
type LayerConfig struct {
	Name      string
	ClassName string
	Config    Attributes
	// InboundNodes holds one group of references per call of the layer.
	// Only the first group is honoured by extraction.
	InboundNodes [][]InboundRef
}

// InboundNames returns the producer names of the first inbound group, in
// order. Layers without inbound nodes yield an empty slice.
func (lc LayerConfig) InboundNames() []string {
	if len(lc.InboundNodes) == 0 {
		return []string{}
	}
	names := make([]string, 0, len(lc.InboundNodes[0]))
	for _, ref := range lc.InboundNodes[0] {
		names = append(names, ref.Layer)
	}
	return names
}

// Clone returns a deep copy of the inbound groups; Config is shared, as
// attribute maps are never mutated after loading.
func (lc LayerConfig) Clone() LayerConfig {
	out := lc
	if lc.InboundNodes != nil {
		out.InboundNodes = make([][]InboundRef, len(lc.InboundNodes))
		for i, group := range lc.InboundNodes {
			out.InboundNodes[i] = append([]InboundRef(nil), group...)
		}
	}
	return out
}

// LayerState is the in-memory Layer handle held by a Model.
type LayerState struct {
	Tensors      []tensor.Tensor
	FunctionName string
}

// Weights implements Layer.
func (s *LayerState) Weights() ([]tensor.Tensor, error) {
	return append([]tensor.Tensor(nil), s.Tensors...), nil
}

// Function implements Layer.
func (s *LayerState) Function() string {
	return s.FunctionName
}

// Model is the in-memory Provider built by the loaders.
type Model struct {
	Name   string
	layers []LayerConfig
	states map[string]*LayerState
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{
		Name:   name,
		states: make(map[string]*LayerState),
	}
}

// AddLayer appends a layer and its state. Layer names must be unique.
func (m *Model) AddLayer(lc LayerConfig, state *LayerState) error {
	if lc.Name == "" {
		return fmt.Errorf("layer of class %q has no name", lc.ClassName)
	}
	if _, exists := m.states[lc.Name]; exists {
		return fmt.Errorf("duplicate layer name %q", lc.Name)
	}
	if state == nil {
		state = &LayerState{}
	}
	if lc.Config == nil {
		lc.Config = Attributes{}
	}
	// Activation layers name their callable in the config when no live
	// function was recorded for them.
	if state.FunctionName == "" && lc.ClassName == ActivationLayerClass {
		if fn, err := lc.Config.String("activation"); err == nil {
			state.FunctionName = fn
		}
	}
	m.layers = append(m.layers, lc)
	m.states[lc.Name] = state
	return nil
}

// Layer implements Provider.
func (m *Model) Layer(name string) (Layer, error) {
	state, ok := m.states[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLayerNotFound, name)
	}
	return state, nil
}

// Layers implements Provider.
func (m *Model) Layers() []LayerConfig {
	out := make([]LayerConfig, len(m.layers))
	for i, lc := range m.layers {
		out[i] = lc.Clone()
	}
	return out
}

// Len returns the number of layers.
func (m *Model) Len() int {
	return len(m.layers)
}

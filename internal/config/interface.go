package config

import (
	"context"

	"github.com/vk/layergraph/internal/tensor"
)

// Loader is the interface for a format-specific model loader.
type Loader interface {
	// Load reads a model from the given paths and translates it into the
	// format-agnostic Model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Layer is a handle on one live layer of the model. It is only used to read
// the values that are not part of the declarative configuration.
type Layer interface {
	// Weights returns the layer's weight tensors in the kind-specific order
	// (kernel then bias, depth kernel then point kernel then bias, ...).
	Weights() ([]tensor.Tensor, error)
	// Function returns the name of the callable bound to the layer, if any.
	// Activation and Lambda layers carry one.
	Function() string
}

// Provider is the capability a model must expose to be extracted.
type Provider interface {
	// Layer returns the handle for the named layer. It fails with
	// ErrLayerNotFound when the name is unknown.
	Layer(name string) (Layer, error)
	// Layers returns the ordered layer configurations. The returned slice is
	// a snapshot and may be freely modified by the caller.
	Layers() []LayerConfig
}

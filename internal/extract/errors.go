package extract

import (
	"errors"
	"fmt"

	"github.com/vk/layergraph/internal/config"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrUnsupportedNodeType indicates a layer class with no extractor.
	ErrUnsupportedNodeType = errors.New("unsupported node type")

	// ErrMalformedLambdaConvention indicates a Lambda layer whose function
	// name does not follow the split_<i>_of_<n> convention.
	ErrMalformedLambdaConvention = errors.New("malformed lambda convention")
)

// UnsupportedNodeTypeError carries the full raw configuration of the layer
// that could not be dispatched. Wraps ErrUnsupportedNodeType.
type UnsupportedNodeTypeError struct {
	Name      string
	ClassName string
	Raw       config.LayerConfig
}

func (e *UnsupportedNodeTypeError) Error() string {
	return fmt.Sprintf("%s: no extractor for class %q (layer %q, config %v, inbound %v)",
		ErrUnsupportedNodeType.Error(), e.ClassName, e.Name, map[string]any(e.Raw.Config), e.Raw.InboundNames())
}

func (e *UnsupportedNodeTypeError) Unwrap() error { return ErrUnsupportedNodeType }

// MalformedLambdaConventionError names the function that failed to parse.
// Wraps ErrMalformedLambdaConvention.
type MalformedLambdaConventionError struct {
	Function string
	Msg      string
}

func (e *MalformedLambdaConventionError) Error() string {
	return fmt.Sprintf("%s: cannot serialize lambda with function %q: %s",
		ErrMalformedLambdaConvention.Error(), e.Function, e.Msg)
}

func (e *MalformedLambdaConventionError) Unwrap() error { return ErrMalformedLambdaConvention }

// LayerError attaches the layer's identity and raw configuration to any
// failure raised while extracting it.
type LayerError struct {
	Name      string
	ClassName string
	Raw       config.LayerConfig
	Err       error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("extracting layer %q (class %q, config %v): %v",
		e.Name, e.ClassName, map[string]any(e.Raw.Config), e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }

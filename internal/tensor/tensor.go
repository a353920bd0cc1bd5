// Package tensor holds the dense float tensors read from a model provider and
// converts them to the nested-array form written into extracted records.
package tensor

import (
	"errors"
	"fmt"
)

// ErrShape indicates a tensor whose data does not fit its declared or
// inferred shape.
var ErrShape = errors.New("tensor shape error")

// Tensor is a dense, row-major float tensor. An empty Shape is a scalar.
type Tensor struct {
	Shape []int
	Data  []float64
}

// New creates a tensor, validating that data holds exactly prod(shape) values.
func New(shape []int, data []float64) (Tensor, error) {
	t := Tensor{
		Shape: append([]int(nil), shape...),
		Data:  append([]float64(nil), data...),
	}
	if err := t.Validate(); err != nil {
		return Tensor{}, err
	}
	return t, nil
}

// Validate checks that no dimension is negative and that Data holds exactly
// prod(Shape) values. A scalar holds one value.
func (t Tensor) Validate() error {
	n := 1
	for i, d := range t.Shape {
		if d < 0 {
			return fmt.Errorf("%w: negative dimension %d at axis %d", ErrShape, d, i)
		}
		n *= d
	}
	if len(t.Data) != n {
		return fmt.Errorf("%w: shape %v needs %d values, got %d", ErrShape, t.Shape, n, len(t.Data))
	}
	return nil
}

// Size returns the number of elements.
func (t Tensor) Size() int {
	return len(t.Data)
}

// Clone returns a deep copy.
func (t Tensor) Clone() Tensor {
	return Tensor{
		Shape: append([]int(nil), t.Shape...),
		Data:  append([]float64(nil), t.Data...),
	}
}

// Nested returns the tensor as nested []any slices of float64 in row-major
// order. A scalar is returned as a bare float64. The result never aliases Data.
// A tensor that fails Validate yields nil.
func (t Tensor) Nested() any {
	if t.Validate() != nil {
		return nil
	}
	if len(t.Shape) == 0 {
		return t.Data[0]
	}
	v, _ := nest(t.Shape, t.Data)
	return v
}

func nest(shape []int, data []float64) (any, []float64) {
	out := make([]any, shape[0])
	if len(shape) == 1 {
		for i := range out {
			out[i] = data[i]
		}
		return out, data[shape[0]:]
	}
	for i := range out {
		out[i], data = nest(shape[1:], data)
	}
	return out, data
}

// Unpack checks that ts holds at least n tensors and returns the first n.
func Unpack(ts []Tensor, n int) ([]Tensor, error) {
	if len(ts) < n {
		return nil, fmt.Errorf("expected %d weight tensors, got %d", n, len(ts))
	}
	return ts[:n], nil
}

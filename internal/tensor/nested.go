package tensor

import (
	"fmt"
)

// FromNested builds a tensor from a nested value as produced by a JSON or HCL
// decoder: []any, []float64 or numeric leaves. The shape is inferred from the
// first element at every depth and ragged input is rejected.
func FromNested(v any) (Tensor, error) {
	shape, err := inferShape(v)
	if err != nil {
		return Tensor{}, err
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	data := make([]float64, 0, n)
	data, err = flatten(v, shape, data, "")
	if err != nil {
		return Tensor{}, err
	}
	return Tensor{Shape: shape, Data: data}, nil
}

func inferShape(v any) ([]int, error) {
	var shape []int
	for {
		switch x := v.(type) {
		case []any:
			shape = append(shape, len(x))
			if len(x) == 0 {
				return shape, nil
			}
			v = x[0]
		case []float64:
			return append(shape, len(x)), nil
		default:
			if _, ok := toFloat(v); !ok {
				return nil, fmt.Errorf("%w: unsupported element type %T", ErrShape, v)
			}
			return shape, nil
		}
	}
}

func flatten(v any, shape []int, out []float64, path string) ([]float64, error) {
	if len(shape) == 0 {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: value at %q is %T, not a number", ErrShape, path, v)
		}
		return append(out, f), nil
	}
	switch x := v.(type) {
	case []float64:
		if len(shape) != 1 || len(x) != shape[0] {
			return nil, fmt.Errorf("%w: ragged array at %q", ErrShape, path)
		}
		return append(out, x...), nil
	case []any:
		if len(x) != shape[0] {
			return nil, fmt.Errorf("%w: ragged array at %q: want %d elements, got %d", ErrShape, path, shape[0], len(x))
		}
		var err error
		for i, el := range x {
			out, err = flatten(el, shape[1:], out, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected array at %q, got %T", ErrShape, path, v)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

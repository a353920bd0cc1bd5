package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrAttribute indicates a missing or mistyped layer attribute.
var ErrAttribute = errors.New("attribute error")

// AttributeError names the attribute that could not be read.
type AttributeError struct {
	Key string
	Msg string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrAttribute.Error(), e.Key, e.Msg)
}

func (e *AttributeError) Unwrap() error { return ErrAttribute }

// Attributes is a layer's raw configuration mapping. Values are the generic
// forms produced by the JSON and HCL decoders: string, bool, float64, []any
// and map[string]any.
type Attributes map[string]any

func (a Attributes) lookup(key string) (any, error) {
	v, ok := a[key]
	if !ok {
		return nil, &AttributeError{Key: key, Msg: "missing"}
	}
	return v, nil
}

// Raw returns the value as stored.
func (a Attributes) Raw(key string) (any, error) {
	return a.lookup(key)
}

// Bool reads a boolean attribute.
func (a Attributes) Bool(key string) (bool, error) {
	v, err := a.lookup(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &AttributeError{Key: key, Msg: fmt.Sprintf("expected bool, got %T", v)}
	}
	return b, nil
}

// String reads a string attribute.
func (a Attributes) String(key string) (string, error) {
	v, err := a.lookup(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &AttributeError{Key: key, Msg: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

// Float reads a numeric attribute.
func (a Attributes) Float(key string) (float64, error) {
	v, err := a.lookup(key)
	if err != nil {
		return 0, err
	}
	f, ok := number(v)
	if !ok {
		return 0, &AttributeError{Key: key, Msg: fmt.Sprintf("expected number, got %T", v)}
	}
	return f, nil
}

// Int reads an integral numeric attribute.
func (a Attributes) Int(key string) (int, error) {
	v, err := a.lookup(key)
	if err != nil {
		return 0, err
	}
	n, msg := integer(v)
	if msg != "" {
		return 0, &AttributeError{Key: key, Msg: msg}
	}
	return n, nil
}

// Ints reads a list of integers, e.g. strides or pool_size.
func (a Attributes) Ints(key string) ([]int, error) {
	v, err := a.lookup(key)
	if err != nil {
		return nil, err
	}
	out, msg := integers(v)
	if msg != "" {
		return nil, &AttributeError{Key: key, Msg: msg}
	}
	return out, nil
}

// IntPairs reads a list of integer lists, e.g. zero padding
// ((top, bottom), (left, right)).
func (a Attributes) IntPairs(key string) ([][]int, error) {
	v, err := a.lookup(key)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &AttributeError{Key: key, Msg: fmt.Sprintf("expected list of lists, got %T", v)}
	}
	out := make([][]int, 0, len(list))
	for i, el := range list {
		inner, msg := integers(el)
		if msg != "" {
			return nil, &AttributeError{Key: fmt.Sprintf("%s[%d]", key, i), Msg: msg}
		}
		out = append(out, inner)
	}
	return out, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func integer(v any) (int, string) {
	switch n := v.(type) {
	case int:
		return n, ""
	case int64:
		return int(n), ""
	}
	f, ok := number(v)
	if !ok {
		return 0, fmt.Sprintf("expected integer, got %T", v)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Sprintf("expected integer, got %v", f)
	}
	return int(f), ""
}

func integers(v any) ([]int, string) {
	switch list := v.(type) {
	case []int:
		return append([]int(nil), list...), ""
	case []any:
		out := make([]int, 0, len(list))
		for _, el := range list {
			n, msg := integer(el)
			if msg != "" {
				return nil, msg
			}
			out = append(out, n)
		}
		return out, ""
	default:
		return nil, fmt.Sprintf("expected list of integers, got %T", v)
	}
}

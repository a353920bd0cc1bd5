package extract

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Record is the portable, self-describing unit produced for one layer.
type Record struct {
	Name       string
	InputNames []string
	Body       Body
}

// Type returns the canonical tag of the record's kind.
func (r Record) Type() string {
	if r.Body == nil {
		return "unknown"
	}
	return r.Body.Kind().String()
}

// Map flattens the record into the serialized mapping: type, name,
// input_names and the kind-specific fields. Disabled tensors map to nil.
func (r Record) Map() map[string]any {
	var m map[string]any
	if r.Body != nil {
		m = r.Body.fields()
	} else {
		m = make(map[string]any, 3)
	}
	inputs := r.InputNames
	if inputs == nil {
		inputs = []string{}
	}
	m["type"] = r.Type()
	m["name"] = r.Name
	m["input_names"] = inputs
	return m
}

// MarshalJSON implements json.Marshaler. Failures, such as NaN or Inf
// weights, name the layer.
func (r Record) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(r.Map())
	if err != nil {
		return nil, fmt.Errorf("encoding layer %q (%s): %w", r.Name, r.Type(), err)
	}
	return raw, nil
}

// MarshalYAML implements yaml.Marshaler.
func (r Record) MarshalYAML() (any, error) {
	return r.Map(), nil
}

// Package document encodes extracted records into the artifact handed to the
// downstream inference engine.
package document

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/vk/layergraph/internal/extract"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for formats other than json and yaml.
var ErrUnknownFormat = errors.New("unknown document format")

// Document is the serialized artifact. Inputs lists the graph input layers
// that records may reference but that carry no extracted record themselves.
type Document struct {
	Inputs []string         `json:"inputs" yaml:"inputs"`
	Layers []extract.Record `json:"layers" yaml:"layers"`
}

// ParseFormat normalizes a format name.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the media type of a format.
func ContentType(format string) string {
	if format == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Encode writes doc to w in the given format.
func Encode(w io.Writer, doc Document, format string) error {
	if doc.Inputs == nil {
		doc.Inputs = []string{}
	}
	if doc.Layers == nil {
		doc.Layers = []extract.Record{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding json document: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml document: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Generic is a decoded document as plain mappings, the form a consumer that
// does not link this module sees.
type Generic struct {
	Inputs []string         `json:"inputs" yaml:"inputs"`
	Layers []map[string]any `json:"layers" yaml:"layers"`
}

// Decode reads a document written by Encode.
func Decode(r io.Reader, format string) (*Generic, error) {
	var doc Generic
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding json document: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding yaml document: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &doc, nil
}

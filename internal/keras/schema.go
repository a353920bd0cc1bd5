package keras

import (
	"github.com/goccy/go-json"
)

// modelDocument is the top level of the architecture JSON. Layers may sit
// under "config" (the exported form) or at the top level.
type modelDocument struct {
	ClassName string          `json:"class_name"`
	Config    *modelConfig    `json:"config"`
	Layers    []layerDocument `json:"layers"`
}

type modelConfig struct {
	Name   string          `json:"name"`
	Layers []layerDocument `json:"layers"`
}

type layerDocument struct {
	ClassName    string            `json:"class_name"`
	Name         string            `json:"name"`
	Config       map[string]any    `json:"config"`
	InboundNodes []json.RawMessage `json:"inbound_nodes"`
}

// layerName returns the explicit layer name, falling back to config.name as
// sequential exports only carry it there.
func (l layerDocument) layerName() string {
	if l.Name != "" {
		return l.Name
	}
	if name, ok := l.Config["name"].(string); ok {
		return name
	}
	return ""
}

// sidecarEntry is one layer of the weights sidecar.
type sidecarEntry struct {
	Weights  []any  `json:"weights"`
	Function string `json:"function"`
}

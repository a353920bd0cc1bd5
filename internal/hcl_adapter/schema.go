package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Model  *ModelBlock   `hcl:"model,block"`
	Layers []*LayerBlock `hcl:"layer,block"`
	Remain hcl.Body      `hcl:",remain"`
}

// ModelBlock carries optional model-level metadata.
type ModelBlock struct {
	Name string `hcl:"name,label"`
}

// LayerBlock is one `layer "<name>" { ... }` block.
type LayerBlock struct {
	Name      string `hcl:"name,label"`
	ClassName string `hcl:"class_name"`
	// Config is an object of the layer's attributes.
	Config hcl.Expression `hcl:"config,optional"`
	// Inbound is a list of groups; each member is either a layer name or a
	// tuple [name, node_index, tensor_index].
	Inbound  hcl.Expression `hcl:"inbound,optional"`
	Function string         `hcl:"function,optional"`
	// Weights is a list of nested numeric arrays, one per weight tensor.
	Weights hcl.Expression `hcl:"weights,optional"`
}

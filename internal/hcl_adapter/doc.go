// Package hcl_adapter loads model definitions written in HCL into the
// format-agnostic config.Model.
//
// A model file is a sequence of layer blocks in topological order:
//
//	model "tiny" {}
//
//	layer "input_1" {
//	  class_name = "InputLayer"
//	}
//
//	layer "fc" {
//	  class_name = "Dense"
//	  config     = { use_bias = true, activation = "softmax" }
//	  inbound    = [["input_1"]]
//	  weights    = [[[0.5, -0.5]], [0.0, 0.0]]
//	}
package hcl_adapter

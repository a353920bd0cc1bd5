// Package config defines the format-agnostic model-provider contract: the
// ordered layer configurations of a trained network, the live layer handles
// that expose weight tensors, and the Loader interface implemented by the
// format-specific packages (hcl_adapter, keras).
//
// The `config.Model` is the single source of truth read by the `extract` and
// `graphindex` packages. It is built once by a loader and treated as a frozen
// snapshot for the duration of one extraction pass.
package config

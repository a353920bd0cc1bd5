// Package keras loads a model exported by the producing framework: the JSON
// architecture document and an optional weights sidecar mapping layer names
// to their weight tensors and bound function names.
//
// Both the functional layout, where every layer lists its inbound nodes, and
// the sequential layout, where each layer implicitly consumes its
// predecessor, are understood.
package keras

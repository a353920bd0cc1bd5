package keras

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/vk/layergraph/internal/config"
)

// parseInboundNode decodes one inbound node. The legacy form is a list of
// [name, node_index, tensor_index, kwargs] members; the newer form is an
// object whose "args" hold tensors tagged with a keras_history triple.
func parseInboundNode(raw json.RawMessage) ([]config.InboundRef, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch node := v.(type) {
	case []any:
		refs := make([]config.InboundRef, 0, len(node))
		for i, m := range node {
			member, ok := m.([]any)
			if !ok {
				return nil, fmt.Errorf("member %d: expected a list, got %T", i, m)
			}
			ref, err := config.ParseInboundRef(member)
			if err != nil {
				return nil, fmt.Errorf("member %d: %w", i, err)
			}
			refs = append(refs, ref)
		}
		return refs, nil
	case map[string]any:
		var refs []config.InboundRef
		if err := collectHistory(node["args"], &refs); err != nil {
			return nil, err
		}
		if refs == nil {
			refs = []config.InboundRef{}
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("unsupported inbound node %T", v)
	}
}

// collectHistory walks call arguments depth-first and gathers every tensor's
// keras_history in argument order.
func collectHistory(v any, refs *[]config.InboundRef) error {
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if err := collectHistory(item, refs); err != nil {
				return err
			}
		}
	case map[string]any:
		if cfg, ok := x["config"].(map[string]any); ok {
			if history, ok := cfg["keras_history"].([]any); ok {
				ref, err := config.ParseInboundRef(history)
				if err != nil {
					return fmt.Errorf("keras_history: %w", err)
				}
				*refs = append(*refs, ref)
				return nil
			}
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := collectHistory(x[k], refs); err != nil {
				return err
			}
		}
	}
	return nil
}

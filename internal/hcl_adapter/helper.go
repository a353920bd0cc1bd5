package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/layergraph/internal/config"
	"github.com/vk/layergraph/internal/ctxlog"
	"github.com/vk/layergraph/internal/tensor"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with non-nil,
// zero-width expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	// A real attribute occupies bytes in the file, while a placeholder for an
	// omitted optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// evalNative statically evaluates an optional expression into its native Go
// form. Omitted expressions yield nil.
func evalNative(ctx context.Context, expr hcl.Expression, attrName string) (any, error) {
	if !isExprDefined(ctx, expr, attrName) {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid %s: %w", attrName, diags)
	}
	return ctyToNative(val)
}

// translateLayer converts a decoded layer block into the format-agnostic
// configuration and its in-memory handle.
func (l *Loader) translateLayer(ctx context.Context, b *LayerBlock) (config.LayerConfig, *config.LayerState, error) {
	lc := config.LayerConfig{Name: b.Name, ClassName: b.ClassName, Config: config.Attributes{}}

	rawConfig, err := evalNative(ctx, b.Config, "config")
	if err != nil {
		return lc, nil, fmt.Errorf("layer %q: %w", b.Name, err)
	}
	if rawConfig != nil {
		attrs, ok := rawConfig.(map[string]any)
		if !ok {
			return lc, nil, fmt.Errorf("layer %q: config must be an object, got %T", b.Name, rawConfig)
		}
		lc.Config = attrs
	}

	rawInbound, err := evalNative(ctx, b.Inbound, "inbound")
	if err != nil {
		return lc, nil, fmt.Errorf("layer %q: %w", b.Name, err)
	}
	if lc.InboundNodes, err = parseInbound(rawInbound); err != nil {
		return lc, nil, fmt.Errorf("layer %q: %w", b.Name, err)
	}

	rawWeights, err := evalNative(ctx, b.Weights, "weights")
	if err != nil {
		return lc, nil, fmt.Errorf("layer %q: %w", b.Name, err)
	}
	state := &config.LayerState{FunctionName: b.Function}
	if rawWeights != nil {
		list, ok := rawWeights.([]any)
		if !ok {
			return lc, nil, fmt.Errorf("layer %q: weights must be a list of tensors, got %T", b.Name, rawWeights)
		}
		for i, w := range list {
			t, err := tensor.FromNested(w)
			if err != nil {
				return lc, nil, fmt.Errorf("layer %q: weights[%d]: %w", b.Name, i, err)
			}
			state.Tensors = append(state.Tensors, t)
		}
	}
	return lc, state, nil
}

// parseInbound reads a list of inbound groups. A member is a layer name or a
// [name, node_index, tensor_index] tuple.
func parseInbound(raw any) ([][]config.InboundRef, error) {
	if raw == nil {
		return nil, nil
	}
	groups, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("inbound must be a list of groups, got %T", raw)
	}
	out := make([][]config.InboundRef, 0, len(groups))
	for gi, g := range groups {
		members, ok := g.([]any)
		if !ok {
			return nil, fmt.Errorf("inbound[%d] must be a list, got %T", gi, g)
		}
		group := make([]config.InboundRef, 0, len(members))
		for mi, m := range members {
			ref, err := config.ParseInboundRef(m)
			if err != nil {
				return nil, fmt.Errorf("inbound[%d][%d]: %w", gi, mi, err)
			}
			group = append(group, ref)
		}
		out = append(out, group)
	}
	return out, nil
}

package extract

import (
	"context"

	"github.com/vk/layergraph/internal/config"
	"github.com/vk/layergraph/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// ExtractOne converts one layer into a Record. It reads the live layer handle
// from the provider, dispatches on the layer's class and attaches the layer
// name and the names of its first inbound group.
//
// An unknown class fails with *UnsupportedNodeTypeError. Any other failure is
// returned as *LayerError. No partial record is ever returned.
func ExtractOne(ctx context.Context, p config.Provider, lc config.LayerConfig) (Record, error) {
	logger := ctxlog.FromContext(ctx)

	kind, ok := KindOf(lc.ClassName)
	if !ok {
		logger.Debug("No extractor for layer class.", "layer", lc.Name, "class", lc.ClassName)
		return Record{}, &UnsupportedNodeTypeError{Name: lc.Name, ClassName: lc.ClassName, Raw: lc.Clone()}
	}

	layer, err := p.Layer(lc.Name)
	if err != nil {
		return Record{}, &LayerError{Name: lc.Name, ClassName: lc.ClassName, Raw: lc.Clone(), Err: err}
	}

	attrs := lc.Config
	if attrs == nil {
		attrs = config.Attributes{}
	}
	body, err := extractBody(kind, attrs, layer)
	if err != nil {
		return Record{}, &LayerError{Name: lc.Name, ClassName: lc.ClassName, Raw: lc.Clone(), Err: err}
	}

	logger.Debug("Layer extracted.", "layer", lc.Name, "type", kind.String())
	return Record{
		Name:       lc.Name,
		InputNames: lc.InboundNames(),
		Body:       body,
	}, nil
}

// Options tunes ExtractAll.
type Options struct {
	// Workers bounds the number of layers extracted concurrently. Values
	// below 2 extract sequentially.
	Workers int
}

// ExtractAll extracts every given layer, failing fast: the first error stops
// the pass and no records are returned. Records keep the order of layers.
func ExtractAll(ctx context.Context, p config.Provider, layers []config.LayerConfig, opts Options) ([]Record, error) {
	logger := ctxlog.FromContext(ctx)
	records := make([]Record, len(layers))

	if opts.Workers < 2 {
		for i, lc := range layers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rec, err := ExtractOne(ctx, p, lc)
			if err != nil {
				return nil, err
			}
			records[i] = rec
		}
		logger.Debug("Sequential extraction complete.", "layers", len(records))
		return records, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, lc := range layers {
		i, lc := i, lc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := ExtractOne(gctx, p, lc)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("Concurrent extraction complete.", "layers", len(records), "workers", opts.Workers)
	return records, nil
}

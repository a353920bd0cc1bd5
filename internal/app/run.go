package app

import (
	"bytes"
	"context"
	"fmt"

	"github.com/vk/layergraph/internal/config"
	"github.com/vk/layergraph/internal/ctxlog"
	"github.com/vk/layergraph/internal/document"
	"github.com/vk/layergraph/internal/extract"
	"github.com/vk/layergraph/internal/graphindex"
)

// Run loads the model, extracts the selected layers and stores the encoded
// document. Nothing is written when any step fails.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	model, err := a.loader.Load(ctx, a.config.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	ctx = ctxlog.With(ctx, "model", model.Name)
	a.logger.Debug("Model loaded.", "model", model.Name, "layers", model.Len())

	layers, err := a.selectLayers(model)
	if err != nil {
		return err
	}

	doc, err := a.buildDocument(ctx, model, layers)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := document.Encode(&buf, doc, a.config.Format); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := a.store.Put(ctx, a.key, buf.Bytes(), document.ContentType(a.config.Format)); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	a.logger.Info("🏁 Extraction finished.",
		"model", model.Name,
		"inputs", len(doc.Inputs),
		"layers", len(doc.Layers),
		"format", a.config.Format,
		"output", a.config.Output,
	)
	return nil
}

// selectLayers returns the layers to extract: the whole model, or the
// dependency closure of the configured target.
func (a *App) selectLayers(model *config.Model) ([]config.LayerConfig, error) {
	all := model.Layers()

	target := a.config.Target
	if a.config.TargetClass != "" {
		i, err := graphindex.IndexInModel(model, a.config.TargetClass, a.config.TargetNth)
		if err != nil {
			return nil, err
		}
		target = all[i].Name
		a.logger.Debug("Target resolved by class.", "class", a.config.TargetClass, "nth", a.config.TargetNth, "target", target)
	}

	if target == "" {
		// Building the index checks that every inbound name resolves.
		if _, err := graphindex.New(all); err != nil {
			return nil, fmt.Errorf("invalid layer graph: %w", err)
		}
		return all, nil
	}

	sub, err := graphindex.Subgraph(all, target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dependencies of %q: %w", target, err)
	}
	a.logger.Debug("Partial graph selected.", "target", target, "layers", len(sub), "of", len(all))
	return sub, nil
}

// buildDocument separates graph inputs from the layers to extract and runs
// the extraction.
func (a *App) buildDocument(ctx context.Context, model *config.Model, layers []config.LayerConfig) (document.Document, error) {
	doc := document.Document{Inputs: []string{}}
	toExtract := make([]config.LayerConfig, 0, len(layers))
	for _, lc := range layers {
		if lc.ClassName == config.InputLayerClass {
			doc.Inputs = append(doc.Inputs, lc.Name)
			continue
		}
		toExtract = append(toExtract, lc)
	}

	records, err := extract.ExtractAll(ctx, model, toExtract, extract.Options{Workers: a.config.WorkerCount})
	if err != nil {
		return doc, fmt.Errorf("extraction failed: %w", err)
	}
	doc.Layers = records
	return doc, nil
}

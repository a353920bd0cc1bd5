package keras

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/vk/layergraph/internal/config"
	"github.com/vk/layergraph/internal/ctxlog"
	"github.com/vk/layergraph/internal/tensor"
)

// sequentialClass is the container class whose layers carry no inbound nodes.
const sequentialClass = "Sequential"

// ErrNoLayers is returned when the architecture document lists no layers.
var ErrNoLayers = errors.New("model document has no layers")

// Loader reads the framework's JSON export. It implements config.Loader.
type Loader struct {
	// WeightsPath is the optional sidecar holding weights and bound
	// functions per layer. Without it every layer has no weights.
	WeightsPath string
}

// NewLoader creates a loader reading weights from weightsPath, which may be
// empty.
func NewLoader(weightsPath string) *Loader {
	return &Loader{WeightsPath: weightsPath}
}

// Load reads exactly one architecture file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	if len(paths) != 1 {
		return nil, fmt.Errorf("keras loader expects exactly one model file, got %d", len(paths))
	}
	path := paths[0]
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Keras loader started.", "path", path, "weights", l.WeightsPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	var doc modelDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode model file %s: %w", path, err)
	}

	sidecar, err := l.readSidecar()
	if err != nil {
		return nil, err
	}

	model, err := buildModel(doc, sidecar, defaultName(path))
	if err != nil {
		return nil, fmt.Errorf("in %s: %w", path, err)
	}
	logger.Debug("Keras loading complete.", "model", model.Name, "layers", model.Len())
	return model, nil
}

func (l *Loader) readSidecar() (map[string]sidecarEntry, error) {
	if l.WeightsPath == "" {
		return map[string]sidecarEntry{}, nil
	}
	data, err := os.ReadFile(l.WeightsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file %s: %w", l.WeightsPath, err)
	}
	sidecar := make(map[string]sidecarEntry)
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return nil, fmt.Errorf("failed to decode weights file %s: %w", l.WeightsPath, err)
	}
	return sidecar, nil
}

func buildModel(doc modelDocument, sidecar map[string]sidecarEntry, fallbackName string) (*config.Model, error) {
	name := fallbackName
	layers := doc.Layers
	if doc.Config != nil {
		if doc.Config.Name != "" {
			name = doc.Config.Name
		}
		if len(doc.Config.Layers) > 0 {
			layers = doc.Config.Layers
		}
	}
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}

	model := config.NewModel(name)
	previous := ""
	for i, ld := range layers {
		lc, err := translateLayer(ld)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if doc.ClassName == sequentialClass && len(lc.InboundNodes) == 0 && previous != "" && lc.ClassName != config.InputLayerClass {
			lc.InboundNodes = [][]config.InboundRef{{{Layer: previous}}}
		}

		state, err := layerState(lc.Name, sidecar[lc.Name])
		if err != nil {
			return nil, err
		}
		if err := model.AddLayer(lc, state); err != nil {
			return nil, err
		}
		previous = lc.Name
	}

	for layerName := range sidecar {
		if _, err := model.Layer(layerName); err != nil {
			return nil, fmt.Errorf("weights file names unknown layer %q", layerName)
		}
	}
	return model, nil
}

func translateLayer(ld layerDocument) (config.LayerConfig, error) {
	lc := config.LayerConfig{
		Name:      ld.layerName(),
		ClassName: ld.ClassName,
		Config:    config.Attributes(ld.Config),
	}
	if lc.ClassName == "" {
		return lc, fmt.Errorf("layer %q has no class_name", lc.Name)
	}
	for gi, raw := range ld.InboundNodes {
		group, err := parseInboundNode(raw)
		if err != nil {
			return lc, fmt.Errorf("layer %q: inbound_nodes[%d]: %w", lc.Name, gi, err)
		}
		lc.InboundNodes = append(lc.InboundNodes, group)
	}
	return lc, nil
}

func layerState(name string, entry sidecarEntry) (*config.LayerState, error) {
	state := &config.LayerState{FunctionName: entry.Function}
	for i, w := range entry.Weights {
		t, err := tensor.FromNested(w)
		if err != nil {
			return nil, fmt.Errorf("layer %q: weights[%d]: %w", name, i, err)
		}
		state.Tensors = append(state.Tensors, t)
	}
	return state, nil
}

func defaultName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

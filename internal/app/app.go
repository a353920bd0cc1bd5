package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/layergraph/internal/artifactstore"
	"github.com/vk/layergraph/internal/config"
	"github.com/vk/layergraph/internal/hcl_adapter"
	"github.com/vk/layergraph/internal/keras"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger *slog.Logger
	config *Config
	loader config.Loader
	store  artifactstore.Store
	key    string
}

// Option customizes an App at construction.
type Option func(*App)

// WithLoader overrides the loader chosen from the model path.
func WithLoader(l config.Loader) Option {
	return func(a *App) { a.loader = l }
}

// WithStore overrides the store chosen from the output destination.
func WithStore(s artifactstore.Store, key string) Option {
	return func(a *App) {
		a.store = s
		a.key = key
	}
}

// NewApp is the constructor for the main application. Logs go to logW; the
// artifact goes to outW when the output destination is stdout.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	a := &App{logger: logger, config: cfg}
	for _, opt := range opts {
		opt(a)
	}

	if a.loader == nil {
		loader, err := loaderFor(cfg.ModelPath, cfg.WeightsPath)
		if err != nil {
			return nil, err
		}
		a.loader = loader
	}
	if a.store == nil {
		store, key, err := artifactstore.Open(cfg.Output, outW)
		if err != nil {
			return nil, fmt.Errorf("failed to open output %q: %w", cfg.Output, err)
		}
		a.store, a.key = store, key
	}
	logger.Debug("Application assembled.", "loader", fmt.Sprintf("%T", a.loader), "store", fmt.Sprintf("%T", a.store))
	return a, nil
}

// loaderFor picks the model loader from the shape of the model path:
// directories and .hcl files use the HCL loader, .json files the framework
// export loader.
func loaderFor(modelPath, weightsPath string) (config.Loader, error) {
	info, err := os.Stat(modelPath)
	if err != nil {
		return nil, fmt.Errorf("error accessing model path %s: %w", modelPath, err)
	}
	if info.IsDir() {
		return hcl_adapter.NewLoader(), nil
	}
	switch strings.ToLower(filepath.Ext(modelPath)) {
	case ".hcl":
		return hcl_adapter.NewLoader(), nil
	case ".json":
		return keras.NewLoader(weightsPath), nil
	default:
		return nil, fmt.Errorf("unsupported model file %s: expected .hcl or .json", modelPath)
	}
}

package app

import (
	"errors"
	"fmt"

	"github.com/vk/layergraph/internal/document"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModelPath   string // .hcl file, directory of .hcl files, or framework .json
	WeightsPath string // weights sidecar for .json models

	Format string // json or yaml
	Output string // file path, "-" for stdout, or s3://bucket/key

	// Target restricts extraction to the named layer and everything it
	// depends on. TargetClass and TargetNth pick the target by class
	// instead. At most one of the two may be set.
	Target      string
	TargetClass string
	TargetNth   int

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("ModelPath is a required configuration field and cannot be empty")
	}

	if cfg.Format == "" {
		cfg.Format = document.FormatJSON
	}
	format, err := document.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	cfg.Format = format

	if cfg.Target != "" && cfg.TargetClass != "" {
		return nil, errors.New("target and target class are mutually exclusive")
	}
	if cfg.TargetNth < 0 {
		return nil, fmt.Errorf("target index must not be negative, got %d", cfg.TargetNth)
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("worker count must not be negative, got %d", cfg.WorkerCount)
	}
	if cfg.Output == "" {
		cfg.Output = "-"
	}

	return &cfg, nil
}

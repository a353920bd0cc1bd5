package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/layergraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("layergraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
layergraph - Extract a trained network's layer graph into a portable document.

Usage:
  layergraph [options] MODEL_PATH

Arguments:
  MODEL_PATH
    A .hcl model file, a directory of .hcl files, or a framework .json export.

Options:
`)
		flagSet.PrintDefaults()
	}

	weightsFlag := flagSet.String("weights", "", "Weights sidecar for a .json model export.")
	formatFlag := flagSet.String("format", "json", "Document format. Options: 'json' or 'yaml'.")
	outputFlag := flagSet.String("o", "-", "Output destination: a file path, '-' for stdout, or s3://bucket/key.")
	targetFlag := flagSet.String("target", "", "Extract only this layer and the layers it depends on.")
	targetClassFlag := flagSet.String("target-class", "", "Pick the target as the nth layer of this class.")
	targetNthFlag := flagSet.Int("target-nth", 0, "Zero-based position among layers of -target-class.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 1, "Number of layers extracted concurrently.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No model path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected one model path, got %d", flagSet.NArg())}
	}
	path := flagSet.Arg(0)
	slog.Debug("Model path determined.", "path", path)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ModelPath:   path,
		WeightsPath: *weightsFlag,
		Format:      *formatFlag,
		Output:      *outputFlag,
		Target:      *targetFlag,
		TargetClass: *targetClassFlag,
		TargetNth:   *targetNthFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		WorkerCount: *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// Package testutil holds the shared harness for end-to-end extraction tests.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/layergraph/internal/app"
	"github.com/vk/layergraph/internal/artifactstore"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// OutputKey is the key under which the harness stores the artifact.
const OutputKey = "graph"

// HarnessResult holds the outcomes of an extraction run.
type HarnessResult struct {
	Dir       string
	LogOutput string
	Err       error
	Store     *artifactstore.MemoryStore
}

// Output returns the stored artifact, failing the test if none was written.
func (r *HarnessResult) Output(t *testing.T) []byte {
	t.Helper()
	obj, err := r.Store.Get(context.Background(), OutputKey)
	require.NoError(t, err, "no artifact was stored")
	return obj.Body
}

// WriteFiles writes files, keyed by slash-separated relative path, below dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		filePath := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}
}

// RunExtraction writes files to a temporary directory and runs the app on
// them. ModelPath and WeightsPath in cfg are resolved against that
// directory; an empty ModelPath selects the directory itself.
func RunExtraction(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	WriteFiles(t, dir, files)

	cfg.ModelPath = filepath.Join(dir, filepath.FromSlash(cfg.ModelPath))
	if cfg.WeightsPath != "" {
		cfg.WeightsPath = filepath.Join(dir, filepath.FromSlash(cfg.WeightsPath))
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	result := &HarnessResult{Dir: dir, Store: artifactstore.NewMemoryStore()}
	logBuffer := &SafeBuffer{}

	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	a, err := app.NewApp(&bytes.Buffer{}, logBuffer, appConfig, app.WithStore(result.Store, OutputKey))
	if err != nil {
		result.Err = err
		result.LogOutput = logBuffer.String()
		return result
	}

	result.Err = a.Run(context.Background())
	result.LogOutput = logBuffer.String()

	t.Cleanup(func() {
		if os.Getenv("LAYERGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
		}
	})
	return result
}

package testutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/layergraph/internal/document"
)

// DecodeOutput decodes the stored artifact of a successful run.
func DecodeOutput(t *testing.T, result *HarnessResult, format string) *document.Generic {
	t.Helper()
	require.NoError(t, result.Err, "extraction failed; logs:\n%s", result.LogOutput)

	doc, err := document.Decode(bytes.NewReader(result.Output(t)), format)
	require.NoError(t, err)
	return doc
}

// LayerNames returns the record names of a decoded document in order.
func LayerNames(doc *document.Generic) []string {
	names := make([]string, 0, len(doc.Layers))
	for _, l := range doc.Layers {
		name, _ := l["name"].(string)
		names = append(names, name)
	}
	return names
}

// RequireNoArtifact asserts that a failed run left nothing in the store.
func RequireNoArtifact(t *testing.T, result *HarnessResult) {
	t.Helper()
	require.Error(t, result.Err)
	require.Empty(t, result.Store.Keys(), "a failed run must not store an artifact")
}

// Package artifactstore persists the encoded graph document to its
// destination: a local file, standard output, memory or an S3-compatible
// bucket.
package artifactstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// StdoutKey is the destination that writes the artifact to standard output.
const StdoutKey = "-"

// ErrNotFound is returned by Get for keys that were never stored.
var ErrNotFound = errors.New("artifact not found")

// Store defines operations for persisting an extracted artifact.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Open chooses a store for destination. "s3://bucket/key" selects the MinIO
// store configured from the environment; "-" selects stdout; anything else
// is a local file path. It returns the store and the key to Put under.
func Open(destination string, stdout io.Writer) (Store, string, error) {
	destination = strings.TrimSpace(destination)
	switch {
	case destination == "" || destination == StdoutKey:
		return NewFileStore("", stdout), StdoutKey, nil
	case strings.HasPrefix(destination, s3Scheme):
		bucket, key, err := ParseS3URL(destination)
		if err != nil {
			return nil, "", err
		}
		cfg := LoadS3Config()
		cfg.Bucket = bucket
		store, err := NewMinioStore(cfg)
		if err != nil {
			return nil, "", err
		}
		return store, key, nil
	default:
		return NewFileStore("", stdout), destination, nil
	}
}

func requireKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	return key, nil
}

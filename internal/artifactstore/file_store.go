package artifactstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileStore writes artifacts below a root directory. An empty root resolves
// keys against the working directory. The key "-" writes to Stdout.
type FileStore struct {
	Root   string
	Stdout io.Writer
}

// NewFileStore creates a file store rooted at root.
func NewFileStore(root string, stdout io.Writer) *FileStore {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &FileStore{Root: root, Stdout: stdout}
}

// Put writes body to the file named by key. The file is written to a
// temporary sibling first and renamed into place, so a failed run never
// leaves a truncated artifact.
func (s *FileStore) Put(_ context.Context, key string, body []byte, _ string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	key, err := requireKey(key)
	if err != nil {
		return err
	}
	if key == StdoutKey {
		_, err := s.Stdout.Write(body)
		return err
	}

	path := key
	if s.Root != "" && !filepath.IsAbs(key) {
		path = filepath.Join(s.Root, key)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

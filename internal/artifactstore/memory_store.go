package artifactstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Object is one stored artifact.
type Object struct {
	Body        []byte
	ContentType string
}

// MemoryStore keeps artifacts in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Object
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Object),
	}
}

// Put stores a copy of body under key.
func (s *MemoryStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	key, err := requireKey(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = Object{Body: append([]byte(nil), body...), ContentType: contentType}
	return nil
}

// Get returns a copy of the object under key, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) (Object, error) {
	if s == nil {
		return Object{}, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.data[key]
	if !ok {
		return Object{}, ErrNotFound
	}
	obj.Body = append([]byte(nil), obj.Body...)
	return obj, nil
}

// Keys lists stored keys in lexical order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package blob defines the read-only blob collaborator used to resolve
// payloads too large for the queue. The scoring stage receives a
// `{filename}` reference and reads the real payload from here.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned when the named blob does not exist.
var ErrNotFound = errors.New("blob: not found")

// Store reads named blobs.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// Memory is a map-backed Store for tests. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Put stores a copy of the payload under the name.
func (s *Memory) Put(name string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(payload))
	copy(buf, payload)
	s.blobs[name] = buf
}

// Read returns the payload stored under the name, or ErrNotFound.
func (s *Memory) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return payload, nil
}

// Directory serves blobs from files under a root directory. Names are
// cleaned and confined to the root.
type Directory struct {
	root string
}

// NewDirectory creates a filesystem-backed store rooted at dir.
func NewDirectory(dir string) *Directory {
	return &Directory{root: dir}
}

// Read returns the contents of the named file under the root.
func (s *Directory) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.root, filepath.Clean("/"+name))
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return payload, nil
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Directory)(nil)
)

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// ErrBlobNotFound is returned when a blob reference does not resolve.
var ErrBlobNotFound = errors.New("blob not found")

// MemBlobStore holds generated media in memory. Implements flow.BlobStore.
// Intended for tests and short sessions; blobs are lost on exit.
type MemBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	names map[string]string
}

// NewMemBlobStore creates an empty MemBlobStore.
func NewMemBlobStore() *MemBlobStore {
	return &MemBlobStore{
		blobs: make(map[string][]byte),
		names: make(map[string]string),
	}
}

// Put stores the blob and returns a generated reference. The name hint is
// retained for listing but does not have to be unique.
func (m *MemBlobStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.NewString()
	stored := make([]byte, len(data))
	copy(stored, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[ref] = stored
	m.names[ref] = name
	return ref, nil
}

// Get retrieves a blob by reference.
func (m *MemBlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[ref]
	if !ok {
		return nil, ErrBlobNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Len reports the number of stored blobs.
func (m *MemBlobStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// DirBlobStore writes generated media into a directory, one file per
// blob, named "<uuid>-<hint>". The returned reference is the file path.
// Implements flow.BlobStore.
type DirBlobStore struct {
	dir string
}

// NewDirBlobStore creates a DirBlobStore rooted at dir, creating the
// directory if needed.
func NewDirBlobStore(dir string) (*DirBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirBlobStore{dir: dir}, nil
}

// Put writes the blob to disk and returns its path.
func (d *DirBlobStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(d.dir, uuid.NewString()+"-"+filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Get reads a blob back by its path reference.
func (d *DirBlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(ref)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return data, err
}

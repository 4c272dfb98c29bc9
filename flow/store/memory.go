package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dshills/nodecanvas-go/flow"
)

// MemStore is an in-memory Store for tests and ephemeral sessions.
// Safe for concurrent use. Data is lost when the process exits.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string]flow.Document
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]flow.Document)}
}

// Save persists the document, replacing any existing version.
func (m *MemStore) Save(ctx context.Context, doc flow.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

// Load retrieves a document by ID.
func (m *MemStore) Load(ctx context.Context, id string) (flow.Document, error) {
	if err := ctx.Err(); err != nil {
		return flow.Document{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok {
		return flow.Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns all stored workflows, most recently updated first.
func (m *MemStore) List(ctx context.Context) ([]WorkflowInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]WorkflowInfo, 0, len(m.docs))
	for _, doc := range m.docs {
		infos = append(infos, WorkflowInfo{ID: doc.ID, Name: doc.Name, UpdatedAt: doc.UpdatedAt})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].UpdatedAt.Equal(infos[j].UpdatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos, nil
}

// Delete removes a document by ID.
func (m *MemStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

// Package store provides persistence for workflow documents: the
// exportable unit of node list, edge list, positions, and results.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/nodecanvas-go/flow"
)

// ErrNotFound is returned when a requested workflow ID does not exist.
var ErrNotFound = errors.New("not found")

// WorkflowInfo is a listing entry: enough to render a workflow picker
// without loading full documents.
type WorkflowInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists workflow documents.
//
// Implementations:
//   - MemStore: in-memory, for tests and ephemeral sessions
//   - SQLiteStore: single-file database, zero-setup local persistence
//   - MySQLStore: shared relational persistence
//
// Documents are stored whole; there is no partial update. Save is an
// upsert keyed by the document ID.
type Store interface {
	// Save persists the document, replacing any existing version.
	Save(ctx context.Context, doc flow.Document) error

	// Load retrieves a document by ID.
	// Returns ErrNotFound if the ID does not exist.
	Load(ctx context.Context, id string) (flow.Document, error)

	// List returns all stored workflows, most recently updated first.
	List(ctx context.Context) ([]WorkflowInfo, error)

	// Delete removes a document by ID.
	// Returns ErrNotFound if the ID does not exist.
	Delete(ctx context.Context, id string) error
}

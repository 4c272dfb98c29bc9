package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dshills/nodecanvas-go/flow"
)

// SQLiteStore is a SQLite implementation of Store.
//
// Designed for:
//   - Development and testing with zero setup
//   - Single-process sessions with local persistence
//   - Prototyping before migrating to a shared database
//
// The whole document is stored as one JSON column; workflows are loaded
// and saved as units, so there is nothing to join.
//
// WAL mode is enabled so readers are not blocked by the writer.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a SQLite-backed store.
//
// The path parameter specifies the database file location:
//   - "./workflows.db" - file in current directory
//   - ":memory:" - in-memory database (data lost on close)
//
// The store creates the database file and schema on first use.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			doc TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS idx_workflows_updated ON workflows(updated_at)")
	return err
}

// Save persists the document, replacing any existing version.
func (s *SQLiteStore) Save(ctx context.Context, doc flow.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			doc = excluded.doc,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Name, string(payload), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return nil
}

// Load retrieves a document by ID.
func (s *SQLiteStore) Load(ctx context.Context, id string) (flow.Document, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT doc FROM workflows WHERE id = ?", id).Scan(&payload)
	if err == sql.ErrNoRows {
		return flow.Document{}, ErrNotFound
	}
	if err != nil {
		return flow.Document{}, fmt.Errorf("failed to load workflow: %w", err)
	}

	var doc flow.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return flow.Document{}, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

// List returns all stored workflows, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context) ([]WorkflowInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, updated_at FROM workflows ORDER BY updated_at DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	infos := make([]WorkflowInfo, 0)
	for rows.Next() {
		var info WorkflowInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workflow row: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete removes a document by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

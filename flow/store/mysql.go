package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dshills/nodecanvas-go/flow"
)

// MySQLStore is a MySQL/MariaDB implementation of Store.
//
// Designed for:
//   - Shared persistence across multiple processes
//   - Long-lived workflow libraries that survive restarts
//
// Documents are stored whole as JSON, same layout as SQLiteStore.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore creates a MySQL-backed store.
//
// The DSN format is the go-sql-driver format:
//
//	user:password@tcp(localhost:3306)/nodecanvas?parseTime=true
//
// parseTime=true is required so timestamp columns scan into time.Time.
// Never hardcode credentials; read the DSN from the environment.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *MySQLStore) createTables(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS workflows (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			doc LONGTEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_workflows_updated (updated_at)
		)
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Save persists the document, replacing any existing version.
func (s *MySQLStore) Save(ctx context.Context, doc flow.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			doc = VALUES(doc),
			updated_at = VALUES(updated_at)
	`, doc.ID, doc.Name, string(payload), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return nil
}

// Load retrieves a document by ID.
func (s *MySQLStore) Load(ctx context.Context, id string) (flow.Document, error) {
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
func (s *MySQLStore) List(ctx context.Context) ([]WorkflowInfo, error) {
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
func (s *MySQLStore) Delete(ctx context.Context, id string) error {
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

// Close releases the connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

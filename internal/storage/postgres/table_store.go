// Package postgres implements the engine's Table Transaction Gateway
// backing store and ledger store against PostgreSQL, using raw
// database/sql with lib/pq the way the rest of this codebase talks to
// Postgres.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"poker-platform/internal/engine"
)

// TableStore implements engine.Store on top of a single table holding
// one JSONB document per table, versioned by an integer revision column.
// CompareAndSwap is a single UPDATE ... WHERE revision = $n, which is
// exactly the optimistic-concurrency primitive the engine's Gateway
// needs: Postgres rejects the write with zero rows affected if another
// transaction already bumped the revision.
type TableStore struct {
	db *sql.DB
}

// NewTableStore wraps an open *sql.DB. Call EnsureSchema once at startup.
func NewTableStore(db *sql.DB) *TableStore {
	return &TableStore{db: db}
}

// EnsureSchema creates the backing table if it doesn't already exist.
func (s *TableStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS table_documents (
			table_id TEXT PRIMARY KEY,
			revision BIGINT NOT NULL,
			document JSONB NOT NULL
		)
	`)
	return err
}

func (s *TableStore) Get(ctx context.Context, tableID string) (*engine.Document, int64, error) {
	var raw []byte
	var revision int64
	err := s.db.QueryRowContext(ctx,
		`SELECT document, revision FROM table_documents WHERE table_id = $1`, tableID,
	).Scan(&raw, &revision)
	if err == sql.ErrNoRows {
		return nil, 0, engine.ErrTableNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("query table document: %w", err)
	}
	doc, err := unmarshalDocument(raw)
	if err != nil {
		return nil, 0, err
	}
	return doc, revision, nil
}

func (s *TableStore) Create(ctx context.Context, doc *engine.Document) error {
	raw, err := marshalDocument(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO table_documents (table_id, revision, document) VALUES ($1, 1, $2)`,
		doc.Table.ID, raw,
	)
	if isUniqueViolation(err) {
		return engine.NewError(engine.AlreadyExists, "table %s already exists", doc.Table.ID)
	}
	return err
}

func (s *TableStore) CompareAndSwap(ctx context.Context, tableID string, revision int64, doc *engine.Document) error {
	raw, err := marshalDocument(doc)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE table_documents SET document = $1, revision = revision + 1 WHERE table_id = $2 AND revision = $3`,
		raw, tableID, revision,
	)
	if err != nil {
		return fmt.Errorf("compare-and-swap table document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if n == 0 {
		return engine.ErrConflict
	}
	return nil
}

func (s *TableStore) Delete(ctx context.Context, tableID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM table_documents WHERE table_id = $1`, tableID)
	if err != nil {
		return fmt.Errorf("delete table document: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return engine.ErrTableNotFound
	}
	return nil
}

func marshalDocument(doc *engine.Document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal table document: %w", err)
	}
	return raw, nil
}

func unmarshalDocument(raw []byte) (*engine.Document, error) {
	doc := &engine.Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("unmarshal table document: %w", err)
	}
	return doc, nil
}

// isUniqueViolation reports whether err is a Postgres unique-key
// violation (SQLSTATE 23505), independent of lib/pq's specific error
// type so callers don't need to import it directly.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	type sqlStater interface{ SQLState() string }
	if pe, ok := err.(sqlStater); ok {
		return pe.SQLState() == "23505"
	}
	return false
}

package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"docrag/internal/domain"
)

// SQLite is a document registry backed by a single SQLite file. The vector
// store holds the chunks; this table only records what was ingested so
// documents can be listed and deleted later.
type SQLite struct {
	db *sqlx.DB
}

var _ domain.Registry = (*SQLite)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	collection TEXT NOT NULL,
	pages      INTEGER NOT NULL,
	chunks     INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);`

// Open connects to the SQLite database at path, creating the schema if
// needed. Use ":memory:" for an ephemeral registry.
func Open(path string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open registry %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init registry schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (r *SQLite) Close() error { return r.db.Close() }

func (r *SQLite) SaveDocument(ctx context.Context, doc domain.Document) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO documents (id, name, collection, pages, chunks, created_at)
		VALUES (:id, :name, :collection, :pages, :chunks, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			collection = excluded.collection,
			pages = excluded.pages,
			chunks = excluded.chunks,
			created_at = excluded.created_at`, doc)
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

func (r *SQLite) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, `SELECT * FROM documents WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

func (r *SQLite) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	if err := r.db.SelectContext(ctx, &docs, `SELECT * FROM documents ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (r *SQLite) DeleteDocument(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return nil
}

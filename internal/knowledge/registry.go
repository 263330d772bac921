package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/corpushq/corpus/internal/ingest"
)

const (
	listDocumentsSQL = `
		SELECT id, name, kind, size_bytes, created_at
		FROM documents
		ORDER BY position`

	getDocumentSQL = `
		SELECT id, name, kind, size_bytes, created_at
		FROM documents
		WHERE id = $1`

	deleteDocumentSQL = `DELETE FROM documents WHERE id = $1`
)

// Registry tracks per-document metadata: listing in insertion order and
// consistent removal. Registration happens through Store.IndexDocument so
// that a document and its chunks become visible atomically.
//
// Registry is safe for concurrent use; PostgreSQL serializes the mutations.
type Registry struct {
	db     DB
	logger *slog.Logger
}

// NewRegistry creates a Registry backed by db.
func NewRegistry(db DB, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{db: db, logger: logger}
}

// List returns all documents ordered by insertion.
func (r *Registry) List(ctx context.Context) ([]Document, error) {
	rows, err := r.db.Query(ctx, listDocumentsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading document rows: %w", err)
	}

	return docs, nil
}

// Get returns a single document by id, or (nil, nil) when absent.
func (r *Registry) Get(ctx context.Context, id string) (*Document, error) {
	doc, err := scanDocument(r.db.QueryRow(ctx, getDocumentSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Remove deletes the document's chunk records and its registry entry in one
// transaction. If the chunk deletion fails, the transaction rolls back and
// the registry entry survives, so the vector index can never hold records
// for a document that is no longer listed, nor the other way around.
//
// Returns false with a nil error when the id was never registered.
func (r *Registry) Remove(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Chunk records go first: same ordering as the contract (index deletion
	// is a precondition for registry removal), enforced atomically here.
	if _, err := tx.Exec(ctx, deleteChunksSQL, id); err != nil {
		return false, fmt.Errorf("deleting chunks of document %q: %w", id, err)
	}

	tag, err := tx.Exec(ctx, deleteDocumentSQL, id)
	if err != nil {
		return false, fmt.Errorf("deleting document %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		// Unknown id: nothing was removed, no error.
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing removal of %q: %w", id, err)
	}

	r.logger.Debug("removed document", "id", id)
	return true, nil
}

// scanDocument reads one documents row.
func scanDocument(row pgx.Row) (Document, error) {
	var (
		doc  Document
		kind string
	)
	if err := row.Scan(&doc.ID, &doc.Name, &kind, &doc.SizeBytes, &doc.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("scanning document row: %w", err)
	}
	doc.Kind = kindFromDB(kind)
	return doc, nil
}

// kindFromDB converts a stored kind string back to the enumeration without
// failing on rows written by a newer schema.
func kindFromDB(s string) ingest.Kind {
	return ingest.Kind(s)
}

package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// DB is the database access needed by Store and Registry. Defined by the
// consumer rather than importing the pool type directly (like io.Reader,
// sql.Driver); *pgxpool.Pool satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DefaultSearchTimeout bounds a similarity search so a slow vector query
// cannot block a request indefinitely.
const DefaultSearchTimeout = 10 * time.Second

const (
	insertDocumentSQL = `
		INSERT INTO documents (id, name, kind, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	insertChunkSQL = `
		INSERT INTO document_chunks (document_id, chunk_index, content, locator, embedding)
		VALUES ($1, $2, $3, $4, $5)`

	deleteChunksSQL = `DELETE FROM document_chunks WHERE document_id = $1`

	searchSQL = `
		SELECT c.content, c.document_id, d.name, d.kind, c.locator, c.chunk_index,
		       c.embedding <=> $1 AS distance
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		ORDER BY c.embedding <=> $1
		LIMIT $2`
)

// Store is the vector index over document chunks.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db     DB
	logger *slog.Logger
}

// NewStore creates a Store backed by db.
func NewStore(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// IndexDocument writes the registry row and the document's chunk records as
// one transaction. Either the document becomes fully visible, chunks
// included, or nothing is written. Records must carry embeddings of
// VectorDimension size; the schema rejects anything else.
func (s *Store) IndexDocument(ctx context.Context, doc Document, records []Record) error {
	if len(records) == 0 {
		return fmt.Errorf("document %q has no records to index", doc.ID)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	batch.Queue(insertDocumentSQL, doc.ID, doc.Name, string(doc.Kind), doc.SizeBytes, doc.CreatedAt)
	for _, rec := range records {
		batch.Queue(insertChunkSQL, doc.ID, rec.Index, rec.Content, rec.Locator, pgvector.NewVector(rec.Embedding))
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("indexing document %q: %w", doc.ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing batch for document %q: %w", doc.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing document %q: %w", doc.ID, err)
	}

	s.logger.Debug("indexed document", "id", doc.ID, "chunks", len(records))
	return nil
}

// Search returns up to k chunks ordered by increasing cosine distance to
// the query embedding. An index holding fewer than k records returns what
// it has; an empty index returns an empty slice, never an error.
func (s *Store) Search(ctx context.Context, embedding []float32, k int) ([]SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("search limit must be positive, got %d", k)
	}

	queryCtx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	rows, err := s.db.Query(queryCtx, searchSQL, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	hits := make([]SearchHit, 0, k)
	for rows.Next() {
		var (
			hit  SearchHit
			kind string
		)
		if err := rows.Scan(&hit.Content, &hit.DocumentID, &hit.DocumentName, &kind,
			&hit.Locator, &hit.ChunkIndex, &hit.Distance); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		hit.Kind = kindFromDB(kind)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}

	return hits, nil
}

// DeleteByDocument removes every chunk record belonging to the document.
// Used as the compensating action when ingestion fails after a partial
// write; document removal goes through Registry.Remove, which deletes
// chunks and the registry row in one transaction.
func (s *Store) DeleteByDocument(ctx context.Context, docID string) (int64, error) {
	tag, err := s.db.Exec(ctx, deleteChunksSQL, docID)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks of document %q: %w", docID, err)
	}

	s.logger.Debug("deleted document chunks", "id", docID, "count", tag.RowsAffected())
	return tag.RowsAffected(), nil
}

// CountChunks reports the total number of indexed chunk records.
func (s *Store) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM document_chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

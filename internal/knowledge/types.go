package knowledge

import (
	"time"

	"github.com/corpushq/corpus/internal/ingest"
)

// VectorDimension is the embedding dimensionality fixed by the schema.
// The configured embedder must produce vectors of exactly this size; see
// config validation.
const VectorDimension = 768

// Document is the registry's unit of bookkeeping: one ingested source.
// Immutable once created, except for deletion.
type Document struct {
	ID        string
	Name      string
	Kind      ingest.Kind
	SizeBytes int64
	CreatedAt time.Time
}

// Record is one chunk of a document paired with its embedding, as written
// to the vector index.
type Record struct {
	Index     int
	Content   string
	Locator   string
	Embedding []float32
}

// SearchHit is one similarity-search result. Distance is cosine distance:
// smaller is more similar.
type SearchHit struct {
	Content      string
	DocumentID   string
	DocumentName string
	Kind         ingest.Kind
	Locator      string
	ChunkIndex   int
	Distance     float64
}

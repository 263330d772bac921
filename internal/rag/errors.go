package rag

import (
	"errors"

	"github.com/corpushq/corpus/internal/ingest"
)

// Sentinel errors for the pipeline. Every error returned by Service,
// Retriever, and Synthesizer wraps exactly one of these so callers can
// branch with errors.Is.
var (
	// ErrValidation indicates rejected input: a blank query, an empty
	// document name, or a source with no extractable content.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedKind indicates a source kind outside the closed set
	// of supported kinds. Aliased from ingest so errors.Is matches
	// errors raised on either side of the adapter boundary.
	ErrUnsupportedKind = ingest.ErrUnsupportedKind

	// ErrIngestion indicates a source could not be read or normalized.
	ErrIngestion = errors.New("ingestion failed")

	// ErrEmbedding indicates the embedding provider failed or returned
	// a malformed response.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndex indicates a vector index read or write failed.
	ErrIndex = errors.New("index operation failed")

	// ErrGeneration indicates the language model failed to produce an
	// answer.
	ErrGeneration = errors.New("generation failed")

	// ErrNotFound indicates the referenced document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrConsistency indicates stored state may disagree with what the
	// caller was told: a failed compensating delete after a partial
	// index write, or a removal whose outcome is unknown.
	ErrConsistency = errors.New("consistency failure")
)

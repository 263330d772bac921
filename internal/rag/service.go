package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/corpushq/corpus/internal/chunker"
	"github.com/corpushq/corpus/internal/ingest"
	"github.com/corpushq/corpus/internal/knowledge"
	"github.com/corpushq/corpus/internal/log"
)

// embedBatchSize bounds how many chunks go into a single embed request.
const embedBatchSize = 64

// Index is the write side of the vector index. knowledge.Store
// satisfies it.
type Index interface {
	IndexDocument(ctx context.Context, doc knowledge.Document, records []knowledge.Record) error
	DeleteByDocument(ctx context.Context, documentID string) (int64, error)
}

// DocumentRegistry lists and removes registered documents.
// knowledge.Registry satisfies it.
type DocumentRegistry interface {
	List(ctx context.Context) ([]knowledge.Document, error)
	Get(ctx context.Context, id string) (*knowledge.Document, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// Service wires ingestion, retrieval, and synthesis into the pipeline
// operations the CLI exposes.
type Service struct {
	splitter        *chunker.Splitter
	adapters        *ingest.Registry
	embedder        ai.Embedder
	index           Index
	registry        DocumentRegistry
	retriever       *Retriever
	synthesizer     *Synthesizer
	limiter         *rate.Limiter
	embedTimeout    time.Duration
	generateTimeout time.Duration
	logger          log.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEmbedLimiter rate limits embedding requests. A nil limiter
// disables limiting.
func WithEmbedLimiter(l *rate.Limiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// WithTimeouts bounds embedding and generation calls. Zero disables the
// respective deadline.
func WithTimeouts(embed, generate time.Duration) ServiceOption {
	return func(s *Service) {
		s.embedTimeout = embed
		s.generateTimeout = generate
	}
}

// NewService assembles the pipeline.
func NewService(
	splitter *chunker.Splitter,
	adapters *ingest.Registry,
	embedder ai.Embedder,
	index Index,
	registry DocumentRegistry,
	retriever *Retriever,
	synthesizer *Synthesizer,
	logger log.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		splitter:    splitter,
		adapters:    adapters,
		embedder:    embedder,
		index:       index,
		registry:    registry,
		retriever:   retriever,
		synthesizer: synthesizer,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddText ingests raw text under the given name.
func (s *Service) AddText(ctx context.Context, name, content string) (*knowledge.Document, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty document name", ErrValidation)
	}
	return s.AddSource(ctx, ingest.Source{
		Name: name,
		Kind: ingest.KindText,
		Data: []byte(content),
	})
}

// AddFile ingests a local file, picking the adapter from its extension.
func (s *Service) AddFile(ctx context.Context, path string) (*knowledge.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrIngestion, path, err)
	}
	return s.AddSource(ctx, ingest.Source{
		Name: filepath.Base(path),
		Kind: kindForPath(path),
		Data: data,
	})
}

// AddURL fetches a web page and ingests its readable content.
func (s *Service) AddURL(ctx context.Context, rawURL string) (*knowledge.Document, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrValidation)
	}
	return s.AddSource(ctx, ingest.Source{
		Name: rawURL,
		Kind: ingest.KindWeb,
		URL:  rawURL,
	})
}

// AddSource runs the full ingestion pipeline: normalize, chunk, embed,
// index. The document becomes queryable only after every step succeeds;
// a failure leaves no trace of it behind.
func (s *Service) AddSource(ctx context.Context, src ingest.Source) (*knowledge.Document, error) {
	adapter, err := s.adapters.ForKind(src.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, src.Kind)
	}

	normalized, err := adapter.Normalize(ctx, src)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyContent) {
			return nil, fmt.Errorf("%w: %s has no extractable content", ErrValidation, src.Name)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrIngestion, src.Name, err)
	}

	records := s.chunk(normalized)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s produced no chunks", ErrValidation, src.Name)
	}

	if err := s.embed(ctx, records); err != nil {
		return nil, err
	}

	name := src.Name
	if normalized.Title != "" {
		name = normalized.Title
	}
	doc := knowledge.Document{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      src.Kind,
		SizeBytes: int64(len(src.Data)),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.index.IndexDocument(ctx, doc, records); err != nil {
		// The index implementation may not be transactional, so sweep
		// any chunks that landed before the failure.
		if _, cleanupErr := s.index.DeleteByDocument(ctx, doc.ID); cleanupErr != nil {
			return nil, fmt.Errorf("%w: indexing %s failed (%v) and cleanup failed: %v",
				ErrConsistency, src.Name, err, cleanupErr)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrIndex, src.Name, err)
	}

	s.logger.Info("document indexed",
		"id", doc.ID,
		"name", doc.Name,
		"kind", doc.Kind,
		"chunks", len(records))

	return &doc, nil
}

// Remove deletes a document and its chunks.
func (s *Service) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty document id", ErrValidation)
	}

	// Removal deletes index chunks and the registry entry together; a
	// failure means neither side changed, so the caller must not see a
	// false success.
	removed, err := s.registry.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: removing %s: %v", ErrConsistency, id, err)
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.logger.Info("document removed", "id", id)
	return nil
}

// Get returns the registered document with the given id.
func (s *Service) Get(ctx context.Context, id string) (*knowledge.Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty document id", ErrValidation)
	}

	doc, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrIndex, id, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc, nil
}

// List returns all registered documents in insertion order.
func (s *Service) List(ctx context.Context) ([]knowledge.Document, error) {
	docs, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing documents: %v", ErrIndex, err)
	}
	return docs, nil
}

// Query answers a question from the indexed documents. Provider failures
// after validation degrade to an apologetic answer with confidence 0
// rather than erroring, so a flaky model never breaks the caller.
func (s *Service) Query(ctx context.Context, query string) (*Answer, error) {
	candidates, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		s.logger.Error("retrieval failed", "error", err)
		return failureAnswer(), nil
	}

	genCtx := ctx
	if s.generateTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.generateTimeout)
		defer cancel()
	}

	answer, err := s.synthesizer.Synthesize(genCtx, query, candidates)
	if err != nil {
		s.logger.Error("synthesis failed", "error", err)
		return failureAnswer(), nil
	}
	return answer, nil
}

// QueryStream answers a question as a stream of events. The channel
// closes after EventEnd. Canceling ctx stops generation and delivery;
// fragments already delivered remain valid partial output.
func (s *Service) QueryStream(ctx context.Context, query string) (Stream, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrValidation)
	}

	events := make(chan Event)
	go s.streamQuery(ctx, query, events)
	return events, nil
}

func (s *Service) streamQuery(ctx context.Context, query string, events chan<- Event) {
	defer close(events)

	emit := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	candidates, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		s.logger.Error("retrieval failed", "error", err)
		if emit(Event{Type: EventError, Err: err}) {
			emit(Event{Type: EventEnd})
		}
		return
	}

	answer, err := s.synthesizer.SynthesizeStream(ctx, query, candidates, func(fragment string) error {
		if fragment == "" {
			return nil
		}
		if !emit(Event{Type: EventFragment, Fragment: fragment}) {
			return ctx.Err()
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("synthesis failed", "error", err)
		if emit(Event{Type: EventError, Err: err}) {
			emit(Event{Type: EventEnd})
		}
		return
	}

	if !emit(Event{Type: EventSources, Sources: answer.Sources}) {
		return
	}
	if !emit(Event{Type: EventConfidence, Confidence: answer.Confidence}) {
		return
	}
	emit(Event{Type: EventEnd})
}

// chunk splits every normalized segment, keeping each chunk tied to its
// segment locator.
func (s *Service) chunk(n *ingest.Normalized) []knowledge.Record {
	var records []knowledge.Record
	for _, segment := range n.Segments {
		for _, text := range s.splitter.Split(segment.Text) {
			records = append(records, knowledge.Record{
				Index:   len(records),
				Content: text,
				Locator: segment.Locator,
			})
		}
	}
	return records
}

// embed fills in record embeddings in batches.
func (s *Service) embed(ctx context.Context, records []knowledge.Record) error {
	for start := 0; start < len(records); start += embedBatchSize {
		end := min(start+embedBatchSize, len(records))

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%w: rate limit wait: %v", ErrEmbedding, err)
			}
		}

		if err := s.embedBatch(ctx, records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) embedBatch(ctx context.Context, batch []knowledge.Record) error {
	if s.embedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.embedTimeout)
		defer cancel()
	}

	docs := make([]*ai.Document, 0, len(batch))
	for _, r := range batch {
		docs = append(docs, ai.DocumentFromText(r.Content, nil))
	}

	dim := int32(knowledge.VectorDimension)
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   docs,
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(resp.Embeddings) != len(docs) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", ErrEmbedding, len(resp.Embeddings), len(docs))
	}

	for i := range resp.Embeddings {
		batch[i].Embedding = resp.Embeddings[i].Embedding
	}
	return nil
}

// kindForPath maps a file extension to a source kind. Unknown extensions
// are treated as plain text.
func kindForPath(path string) ingest.Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return ingest.KindPDF
	case ".csv":
		return ingest.KindCSV
	default:
		return ingest.KindText
	}
}

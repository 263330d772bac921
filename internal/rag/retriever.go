package rag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/firebase/genkit/go/ai"
	"google.golang.org/genai"

	"github.com/corpushq/corpus/internal/knowledge"
	"github.com/corpushq/corpus/internal/log"
)

// DefaultTopK is the number of candidates retrieved per query.
const DefaultTopK = 5

// DefaultSnippetLength bounds candidate previews in runes.
const DefaultSnippetLength = 150

// SearchIndex is the vector search surface the retriever needs.
// knowledge.Store satisfies it.
type SearchIndex interface {
	Search(ctx context.Context, embedding []float32, limit int) ([]knowledge.SearchHit, error)
}

// Candidate is one retrieved chunk with ranking metadata.
type Candidate struct {
	Content      string
	Snippet      string
	DocumentID   string
	DocumentName string
	Locator      string
	Score        float64
}

// Retriever embeds queries and searches the vector index.
type Retriever struct {
	embedder      ai.Embedder
	index         SearchIndex
	topK          int
	snippetLength int
	logger        log.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithTopK sets the number of candidates per query.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithSnippetLength sets the snippet bound in runes.
func WithSnippetLength(n int) RetrieverOption {
	return func(r *Retriever) {
		if n > 0 {
			r.snippetLength = n
		}
	}
}

// NewRetriever creates a retriever over the given embedder and index.
func NewRetriever(embedder ai.Embedder, index SearchIndex, logger log.Logger, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		embedder:      embedder,
		index:         index,
		topK:          DefaultTopK,
		snippetLength: DefaultSnippetLength,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve embeds the query and returns the closest chunks, best first.
// A blank query is a validation error. An empty index yields an empty
// slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrValidation)
	}

	dim := int32(knowledge.VectorDimension)
	resp, err := r.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   []*ai.Document{ai.DocumentFromText(query, nil)},
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrEmbedding, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: embedder returned no vectors", ErrEmbedding)
	}

	hits, err := r.index.Search(ctx, resp.Embeddings[0].Embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrIndex, err)
	}

	candidates := make([]Candidate, 0, len(hits))
	for rank, hit := range hits {
		candidates = append(candidates, Candidate{
			Content:      hit.Content,
			Snippet:      snippet(hit.Content, r.snippetLength),
			DocumentID:   hit.DocumentID,
			DocumentName: hit.DocumentName,
			Locator:      hit.Locator,
			Score:        rankScore(rank),
		})
	}

	r.logger.Debug("retrieved candidates",
		"count", len(candidates),
		"top_k", r.topK)

	return candidates, nil
}

// rankScore maps a zero-based rank to a display score. Rank zero scores
// 1.0 and each following rank drops by 0.1, floored at 0.
func rankScore(rank int) float64 {
	score := 1.0 - float64(rank)*0.1
	if score < 0 {
		return 0
	}
	return score
}

// snippet truncates content to limit runes, appending an ellipsis when
// anything was cut.
func snippet(content string, limit int) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= limit {
		return content
	}
	runes := []rune(content)
	return string(runes[:limit]) + "…"
}

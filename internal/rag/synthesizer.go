package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/corpushq/corpus/internal/log"
)

// NoAnswerText is returned when retrieval finds nothing. No model call
// is made in that case.
const NoAnswerText = "I could not find anything relevant to that question in the indexed documents."

// FailureAnswerText is returned when embedding or generation fails at
// query time. The caller sees an answer, not a raw provider error.
const FailureAnswerText = "Sorry, something went wrong while answering. Please try again."

const systemPrompt = `You are a question answering assistant. Answer strictly from the numbered context passages below. If the passages do not contain the answer, say so plainly. Cite passages by their number, like [1] or [2]. Do not invent information that is not in the passages.`

// StreamCallback receives answer fragments as the model produces them.
// Returning an error stops generation.
type StreamCallback func(fragment string) error

// Generator produces answer text from a prompt. The genkit-backed
// implementation lives in genkit.go.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	GenerateStream(ctx context.Context, system, prompt string, cb StreamCallback) (string, error)
}

// Source attributes part of an answer to an indexed document.
type Source struct {
	DocumentID   string
	DocumentName string
	Locator      string
	Snippet      string
	Score        float64
}

// Answer is a synthesized response with attribution.
type Answer struct {
	Text       string
	Sources    []Source
	Confidence float64
}

// Synthesizer turns retrieved candidates into grounded answers.
type Synthesizer struct {
	generator Generator
	logger    log.Logger
}

// NewSynthesizer creates a synthesizer over the given generator.
func NewSynthesizer(generator Generator, logger log.Logger) *Synthesizer {
	return &Synthesizer{generator: generator, logger: logger}
}

// Synthesize produces an answer from the candidates. With no candidates
// it returns the no-answer response without calling the model.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, candidates []Candidate) (*Answer, error) {
	if len(candidates) == 0 {
		return emptyAnswer(), nil
	}

	text, err := s.generator.Generate(ctx, systemPrompt, buildPrompt(query, candidates))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	return &Answer{
		Text:       text,
		Sources:    sourcesOf(candidates),
		Confidence: confidence(len(candidates)),
	}, nil
}

// SynthesizeStream produces an answer incrementally, invoking cb for each
// fragment. The returned Answer holds the complete text. With no
// candidates it emits the no-answer text as a single fragment.
func (s *Synthesizer) SynthesizeStream(ctx context.Context, query string, candidates []Candidate, cb StreamCallback) (*Answer, error) {
	if len(candidates) == 0 {
		if err := cb(NoAnswerText); err != nil {
			return nil, err
		}
		return emptyAnswer(), nil
	}

	text, err := s.generator.GenerateStream(ctx, systemPrompt, buildPrompt(query, candidates), cb)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	return &Answer{
		Text:       text,
		Sources:    sourcesOf(candidates),
		Confidence: confidence(len(candidates)),
	}, nil
}

// buildPrompt lays out numbered context passages followed by the question.
// Each passage names its document and position so citations are traceable.
func buildPrompt(query string, candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("Context passages:\n\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "[%d] (from %q", i+1, c.DocumentName)
		if c.Locator != "" {
			fmt.Fprintf(&b, ", %s", c.Locator)
		}
		b.WriteString(")\n")
		b.WriteString(c.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}

func sourcesOf(candidates []Candidate) []Source {
	sources := make([]Source, 0, len(candidates))
	for _, c := range candidates {
		sources = append(sources, Source{
			DocumentID:   c.DocumentID,
			DocumentName: c.DocumentName,
			Locator:      c.Locator,
			Snippet:      c.Snippet,
			Score:        c.Score,
		})
	}
	return sources
}

// confidence scales with the amount of supporting context, from a 0.70
// base plus 0.05 per candidate, capped at 0.95.
func confidence(n int) float64 {
	c := 0.70 + 0.05*float64(n)
	if c > 0.95 {
		return 0.95
	}
	return c
}

func emptyAnswer() *Answer {
	return &Answer{Text: NoAnswerText, Sources: []Source{}, Confidence: 0}
}

func failureAnswer() *Answer {
	return &Answer{Text: FailureAnswerText, Sources: []Source{}, Confidence: 0}
}

// Package chunker splits normalized document text into overlapping,
// bounded-size retrieval chunks.
//
// Chunk boundaries prefer semantic separators in priority order (paragraph
// break, line break, sentence end, word break) before falling back to a hard
// cut, so splits do not fracture words arbitrarily. Adjacent chunks overlap
// by a configured amount so context at chunk boundaries is not lost.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxSize is the default maximum chunk size in runes.
const DefaultMaxSize = 1000

// DefaultOverlap is the default number of runes shared between adjacent chunks.
const DefaultOverlap = 200

// separators are tried in priority order when looking for a chunk boundary.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// Splitter splits text into chunks. The zero value is not usable; construct
// with New.
//
// Splitter is immutable after construction and safe for concurrent use.
type Splitter struct {
	maxSize int
	overlap int
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithMaxSize sets the maximum chunk size in runes.
func WithMaxSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// WithOverlap sets the overlap between adjacent chunks in runes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a Splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		maxSize: DefaultMaxSize,
		overlap: DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave room for the chunk to advance.
	if s.overlap >= s.maxSize {
		s.overlap = s.maxSize / 4
	}

	return s
}

// MaxSize returns the configured maximum chunk size.
func (s *Splitter) MaxSize() int { return s.maxSize }

// Overlap returns the configured chunk overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// span is a half-open [start, end) byte range into the source text.
type span struct {
	start int
	end   int
}

// Split splits text into ordered chunks.
//
// Sizes and overlaps are measured in runes, so multi-byte text chunks at
// the same character budget as ASCII.
//
// Guarantees:
//   - empty or whitespace-only input yields no chunks, never one empty chunk
//   - input no longer than the maximum yields exactly one chunk equal to it
//   - concatenating chunks with overlaps removed reconstructs the input
//   - cuts never land inside a multi-byte rune
func (s *Splitter) Split(text string) []string {
	spans := s.spans(text)
	if spans == nil {
		return nil
	}

	chunks := make([]string, len(spans))
	for i, sp := range spans {
		chunks[i] = text[sp.start:sp.end]
	}
	return chunks
}

// spans computes the chunk byte ranges for text. Each span starts at or
// before the previous span's end (the overlap) and strictly after the
// previous span's start (progress), and the union of spans covers the whole
// input. Split and the reconstruction tests both rely on these invariants.
func (s *Splitter) spans(text string) []span {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var spans []span
	start := 0
	for start < len(text) {
		// advance lands on len(text) when the remainder fits the rune
		// budget, and on a rune boundary short of it otherwise.
		end := start + advance(text[start:], s.maxSize)
		if end == len(text) {
			spans = append(spans, span{start, len(text)})
			break
		}

		cut := boundary(text, start, end)
		spans = append(spans, span{start, cut})

		next := retreat(text, cut, s.overlap)
		if next <= start {
			// Chunk shorter than the overlap: continue without overlap
			// rather than stalling.
			next = cut
		}
		start = next
	}

	return spans
}

// advance returns the byte length of the first n runes of text, or
// len(text) when text has n runes or fewer.
func advance(text string, n int) int {
	i := 0
	for ; n > 0 && i < len(text); n-- {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}

// retreat returns the byte offset n runes before pos in text.
func retreat(text string, pos, n int) int {
	for ; n > 0 && pos > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(text[:pos])
		pos -= size
	}
	return pos
}

// boundary picks the cut position in (start, end] preferring semantic
// separators. The separator itself stays with the preceding chunk so that
// reconstruction is lossless.
func boundary(text string, start, end int) int {
	window := text[start:end]
	for _, sep := range separators {
		// Ignore a separator at the very start of the window: cutting there
		// would produce a near-empty chunk.
		if i := strings.LastIndex(window, sep); i > 0 {
			return start + i + len(sep)
		}
	}
	// No separator in the window (one unsplittable run): hard cut at the
	// size limit.
	return end
}

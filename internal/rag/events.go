package rag

// EventType discriminates streaming events.
type EventType int

const (
	// EventFragment carries a piece of answer text.
	EventFragment EventType = iota
	// EventSources carries the attributed sources, sent once after the
	// final fragment.
	EventSources
	// EventConfidence carries the confidence score, sent once.
	EventConfidence
	// EventError carries a mid-stream failure notice. Fragments already
	// delivered remain valid partial output.
	EventError
	// EventEnd marks the end of the stream. No events follow it.
	EventEnd
)

// Event is one element of a streaming answer. Exactly one payload field
// is meaningful, selected by Type.
type Event struct {
	Type       EventType
	Fragment   string
	Sources    []Source
	Confidence float64
	Err        error
}

// Stream delivers answer events in order. The channel closes after
// EventEnd. Canceling the context passed to QueryStream stops delivery.
type Stream <-chan Event

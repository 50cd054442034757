package corpus

import "time"

// Subthread is a single retrievable unit of archived discussion content.
type Subthread struct {
	// ID uniquely identifies the subthread within a corpus.
	ID string
	// Title is the topic title the subthread belongs to. May be empty.
	Title string
	// Text is the plain-text message body.
	Text string
	// Source is the permalink cited when the subthread contributes to an answer.
	Source string
	// CreatedAt is when the message was posted. Zero if unknown.
	CreatedAt time.Time
	// Likes is the popularity signal recorded at corpus build time.
	Likes int
	// Embedding is the precomputed vector for the subthread text, if any.
	Embedding []float32
}

// HasEmbedding reports whether a precomputed embedding is attached.
func (s Subthread) HasEmbedding() bool {
	return len(s.Embedding) > 0
}

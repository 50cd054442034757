package storage

import "time"

// SubthreadRecord is a subthread row in the database.
type SubthreadRecord struct {
	ID        string    // Stable subthread identifier from the corpus
	Position  int       // Canonical corpus order (0-based)
	Title     string    // Topic title, may be empty
	Text      string    // Plain-text body
	Source    string    // Permalink
	CreatedAt time.Time // Zero if unknown (stored as NULL)
	Likes     int
	Embedding []float32 // Optional, stored as little-endian float32 blob
}

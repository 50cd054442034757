package corpus

import (
	"errors"
	"fmt"
	"iter"
)

// ErrDuplicateID is returned when two subthreads share an ID.
var ErrDuplicateID = errors.New("duplicate subthread id")

// Store is an immutable, canonically ordered collection of subthreads.
// Canonical order is the order subthreads were passed to NewStore; retrieval
// uses it to break score ties. A Store is safe for concurrent reads.
type Store struct {
	subthreads []Subthread
	byID       map[string]int
}

// NewStore builds a Store from subthreads, preserving their order.
// IDs must be non-empty and unique.
func NewStore(subthreads []Subthread) (*Store, error) {
	s := &Store{
		subthreads: make([]Subthread, len(subthreads)),
		byID:       make(map[string]int, len(subthreads)),
	}
	for i, st := range subthreads {
		if st.ID == "" {
			return nil, fmt.Errorf("subthread at position %d has empty id", i)
		}
		if prev, ok := s.byID[st.ID]; ok {
			return nil, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateID, st.ID, prev, i)
		}
		s.byID[st.ID] = i
		s.subthreads[i] = st
	}
	return s, nil
}

// Len returns the number of subthreads in the store.
func (s *Store) Len() int {
	return len(s.subthreads)
}

// All iterates subthreads in canonical order, yielding each position.
func (s *Store) All() iter.Seq2[int, Subthread] {
	return func(yield func(int, Subthread) bool) {
		for i, st := range s.subthreads {
			if !yield(i, st) {
				return
			}
		}
	}
}

// Get looks up a subthread by ID.
func (s *Store) Get(id string) (Subthread, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Subthread{}, false
	}
	return s.subthreads[i], true
}

// IDs returns subthread IDs in canonical order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.subthreads))
	for i, st := range s.subthreads {
		ids[i] = st.ID
	}
	return ids
}

// EmbeddedCount returns how many subthreads carry an embedding.
func (s *Store) EmbeddedCount() int {
	n := 0
	for _, st := range s.subthreads {
		if st.HasEmbedding() {
			n++
		}
	}
	return n
}

// WithEmbeddings returns a new Store where subthreads found in vectors get
// that embedding attached. Subthreads missing from vectors keep their
// current embedding. The receiver is left unchanged.
func (s *Store) WithEmbeddings(vectors map[string][]float32) *Store {
	out := &Store{
		subthreads: make([]Subthread, len(s.subthreads)),
		byID:       s.byID,
	}
	for i, st := range s.subthreads {
		if vec, ok := vectors[st.ID]; ok && len(vec) > 0 {
			st.Embedding = vec
		}
		out.subthreads[i] = st
	}
	return out
}

package rag

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"threadqa/internal/contextutil"
	"threadqa/internal/corpus"
)

var (
	// ErrEmptyQuery is returned when the query is empty after trimming.
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrInvalidTopK is returned when topK is less than 1.
	ErrInvalidTopK = errors.New("topK must be at least 1")
)

// QueryEncoder embeds query text for vector-aware scorers.
type QueryEncoder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Result is a subthread paired with its relevance score for one query.
type Result struct {
	Subthread corpus.Subthread
	Score     float64
	// Rank is the 1-based position in the result list.
	Rank int
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithMinScore excludes candidates scoring below min.
func WithMinScore(min float64) RetrieverOption {
	return func(r *Retriever) {
		r.minScore = min
		r.hasMinScore = true
	}
}

// WithQueryEncoder embeds each query once before scoring.
func WithQueryEncoder(enc QueryEncoder) RetrieverOption {
	return func(r *Retriever) {
		r.encoder = enc
	}
}

// Retriever ranks subthreads of an immutable store against a query.
// It is safe for concurrent use.
type Retriever struct {
	store       *corpus.Store
	scorer      Scorer
	encoder     QueryEncoder
	minScore    float64
	hasMinScore bool
}

// NewRetriever creates a Retriever over store. A nil store behaves as an empty corpus.
func NewRetriever(store *corpus.Store, scorer Scorer, opts ...RetrieverOption) *Retriever {
	if scorer == nil {
		scorer = LexicalScorer{}
	}
	r := &Retriever{
		store:  store,
		scorer: scorer,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CorpusSize returns the number of subthreads the retriever ranks.
func (r *Retriever) CorpusSize() int {
	if r.store == nil {
		return 0
	}
	return r.store.Len()
}

type candidate struct {
	position  int
	subthread corpus.Subthread
	score     float64
}

// Retrieve returns at most topK subthreads ordered by descending score.
// Equal scores keep canonical corpus order. An empty corpus yields an empty,
// non-nil slice.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Result, error) {
	q := NewQuery(query)
	if q.Text == "" {
		return nil, ErrEmptyQuery
	}
	if topK < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}

	size := r.CorpusSize()
	if size == 0 {
		return []Result{}, nil
	}
	topK = min(topK, size)

	logger := contextutil.LoggerFromContext(ctx)

	if r.encoder != nil {
		vec, err := r.encoder.EmbedQuery(ctx, q.Text)
		if err != nil {
			logger.WarnContext(ctx, "query embedding failed, using text-only scoring", "error", err)
		} else {
			q.Vector = vec
		}
	}

	candidates := make([]candidate, 0, size)
	for pos, st := range r.store.All() {
		score := r.scorer.Score(q, st)
		if math.IsNaN(score) {
			score = math.Inf(-1)
		}
		if r.hasMinScore && score < r.minScore {
			continue
		}
		candidates = append(candidates, candidate{position: pos, subthread: st, score: score})
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.position, b.position)
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{Subthread: c.subthread, Score: c.score, Rank: i + 1}
	}

	logger.DebugContext(ctx, "retrieval completed",
		"query_tokens", len(q.Tokens),
		"vector", len(q.Vector) > 0,
		"corpus_size", size,
		"top_k", topK,
		"results", len(results),
	)

	return results, nil
}


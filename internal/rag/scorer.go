package rag

import (
	"math"
	"strings"
	"unicode"

	"threadqa/internal/corpus"
)

const (
	lexicalLengthScale = 10.0
	titleMatchBonus    = 0.1
)

var lexicalStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {},
}

// Query is a question prepared for scoring.
type Query struct {
	// Text is the trimmed question text.
	Text string
	// Tokens are the lowercased, stopword-filtered query terms.
	Tokens []string
	// Vector is the query embedding, nil when no encoder is configured
	// or embedding failed.
	Vector []float32
}

// NewQuery tokenizes text into a Query without a vector.
func NewQuery(text string) Query {
	text = strings.TrimSpace(text)
	return Query{
		Text:   text,
		Tokens: filterStopwords(tokenize(text)),
	}
}

// Scorer rates how relevant a subthread is to a query. Higher is more relevant.
// Implementations must be deterministic and safe for concurrent use.
type Scorer interface {
	Score(q Query, st corpus.Subthread) float64
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(q Query, st corpus.Subthread) float64

// Score calls f(q, st).
func (f ScorerFunc) Score(q Query, st corpus.Subthread) float64 {
	return f(q, st)
}

// LexicalScorer scores term overlap between the query and the subthread body,
// normalised by body length, plus a bonus per query term found in the title.
type LexicalScorer struct{}

// Score implements Scorer.
func (LexicalScorer) Score(q Query, st corpus.Subthread) float64 {
	if len(q.Tokens) == 0 {
		return 0
	}

	bodyTokens := tokenize(st.Text)

	var score float64
	if len(bodyTokens) > 0 {
		bodyFreq := make(map[string]int, len(bodyTokens))
		for _, token := range bodyTokens {
			bodyFreq[token]++
		}

		var rawMatches int
		for _, token := range q.Tokens {
			rawMatches += bodyFreq[token]
		}
		score = (float64(rawMatches) / (1 + float64(len(bodyTokens)))) * lexicalLengthScale
	}

	if st.Title != "" {
		titleTokens := tokenize(st.Title)
		if len(titleTokens) > 0 {
			titleSet := make(map[string]struct{}, len(titleTokens))
			for _, token := range titleTokens {
				titleSet[token] = struct{}{}
			}
			var titleMatches int
			for _, token := range q.Tokens {
				if _, ok := titleSet[token]; ok {
					titleMatches++
				}
			}
			score += float64(titleMatches) * titleMatchBonus
		}
	}

	return score
}

// CosineScorer scores the cosine similarity between the query vector and the
// subthread embedding. It returns 0 when either is missing or their
// dimensions differ.
type CosineScorer struct{}

// Score implements Scorer.
func (CosineScorer) Score(q Query, st corpus.Subthread) float64 {
	return cosine(q.Vector, st.Embedding)
}

// HybridScorer blends a vector scorer and a lexical scorer.
// Weight is the share given to the vector score, in [0, 1]. Queries without
// a vector fall back to the lexical score alone so rankings stay comparable
// within a single call.
type HybridScorer struct {
	Lexical Scorer
	Vector  Scorer
	Weight  float64
}

// NewHybridScorer blends CosineScorer and LexicalScorer with the given vector weight.
func NewHybridScorer(weight float64) HybridScorer {
	return HybridScorer{
		Lexical: LexicalScorer{},
		Vector:  CosineScorer{},
		Weight:  math.Max(0, math.Min(1, weight)),
	}
}

// Score implements Scorer.
func (h HybridScorer) Score(q Query, st corpus.Subthread) float64 {
	lexical := h.Lexical.Score(q, st)
	if len(q.Vector) == 0 {
		return lexical
	}
	return h.Weight*h.Vector.Score(q, st) + (1-h.Weight)*lexical
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func filterStopwords(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := lexicalStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

package rag

import (
	"math"
	"time"
	"unicode/utf8"
)

const debugTextPreviewChars = 300

type phaseTimings struct {
	ocr        time.Duration
	retrieval  time.Duration
	generation time.Duration
	total      time.Duration
}

// buildDebugInfo summarises one request for ?debug=true callers.
func buildDebugInfo(query string, extracted string, results []Result, contextText string, timings phaseTimings) *DebugInfo {
	retrieved := make([]RetrievedResult, 0, len(results))
	for _, r := range results {
		retrieved = append(retrieved, RetrievedResult{
			ID:     r.Subthread.ID,
			Title:  r.Subthread.Title,
			Source: r.Subthread.Source,
			Score:  FiniteScore(r.Score),
			Rank:   r.Rank,
			Text:   previewText(r.Subthread.Text, debugTextPreviewChars),
		})
	}

	return &DebugInfo{
		Query:              query,
		ExtractedTextChars: utf8.RuneCountInString(extracted),
		RetrievedResults:   retrieved,
		ContextChars:       utf8.RuneCountInString(contextText),
		Latency: &LatencyBreakdown{
			OCRMs:        timings.ocr.Milliseconds(),
			RetrievalMs:  timings.retrieval.Milliseconds(),
			GenerationMs: timings.generation.Milliseconds(),
			TotalMs:      timings.total.Milliseconds(),
		},
	}
}

// FiniteScore maps infinite scores to 0, since JSON cannot encode them.
func FiniteScore(score float64) float64 {
	if math.IsInf(score, 0) {
		return 0
	}
	return score
}

func previewText(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return truncateRunes(s, n) + "..."
}

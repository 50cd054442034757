package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ContextDelimiter separates subthread bodies in an assembled context.
const ContextDelimiter = "\n\n"

// TruncationPolicy decides what happens to the first entry that does not fit
// the remaining context budget.
type TruncationPolicy string

const (
	// TruncateSkip omits the overflowing entry and stops.
	TruncateSkip TruncationPolicy = "skip"
	// TruncateCut keeps as much of the overflowing entry as fits and stops.
	TruncateCut TruncationPolicy = "truncate"
)

// ParseTruncationPolicy parses a policy name. An empty name selects TruncateSkip.
func ParseTruncationPolicy(s string) (TruncationPolicy, error) {
	switch p := TruncationPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return TruncateSkip, nil
	case TruncateSkip, TruncateCut:
		return p, nil
	default:
		return "", fmt.Errorf("unknown truncation policy %q (want %q or %q)", s, TruncateSkip, TruncateCut)
	}
}

// ContextBuilder assembles retrieval results into a bounded context and the
// list of sources that contributed to it.
type ContextBuilder struct {
	// MaxChars bounds the context size in characters (runes). Zero or less means unbounded.
	MaxChars int
	// Policy applies to the first entry that overflows MaxChars.
	Policy TruncationPolicy
}

// NewContextBuilder creates a ContextBuilder.
func NewContextBuilder(maxChars int, policy TruncationPolicy) *ContextBuilder {
	if policy == "" {
		policy = TruncateSkip
	}
	return &ContextBuilder{MaxChars: maxChars, Policy: policy}
}

// Build joins result bodies in order with ContextDelimiter. Blank bodies are
// skipped. Sources are listed once each, in the order their text was first
// included; empty sources are not listed.
func (b *ContextBuilder) Build(results []Result) (string, []string) {
	sources := []string{}
	if len(results) == 0 {
		return "", sources
	}

	var (
		buf   strings.Builder
		used  int
		seen  = make(map[string]struct{}, len(results))
		delim = utf8.RuneCountInString(ContextDelimiter)
	)

	include := func(body, source string) {
		if buf.Len() > 0 {
			buf.WriteString(ContextDelimiter)
			used += delim
		}
		buf.WriteString(body)
		used += utf8.RuneCountInString(body)

		if source == "" {
			return
		}
		if _, dup := seen[source]; dup {
			return
		}
		seen[source] = struct{}{}
		sources = append(sources, source)
	}

	for _, r := range results {
		body := r.Subthread.Text
		if strings.TrimSpace(body) == "" {
			continue
		}

		sep := 0
		if buf.Len() > 0 {
			sep = delim
		}
		need := sep + utf8.RuneCountInString(body)

		if b.MaxChars <= 0 || used+need <= b.MaxChars {
			include(body, r.Subthread.Source)
			continue
		}

		if b.Policy == TruncateCut {
			if cut := truncateRunes(body, b.MaxChars-used-sep); strings.TrimSpace(cut) != "" {
				include(cut, r.Subthread.Source)
			}
		}
		break
	}

	return buf.String(), sources
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadqa/internal/corpus"
)

func results(entries ...corpus.Subthread) []Result {
	out := make([]Result, len(entries))
	for i, st := range entries {
		out[i] = Result{Subthread: st, Rank: i + 1}
	}
	return out
}

func TestContextBuilder_Empty(t *testing.T) {
	for _, in := range [][]Result{nil, {}} {
		contextText, sources := NewContextBuilder(10, TruncateSkip).Build(in)
		assert.Equal(t, "", contextText)
		assert.NotNil(t, sources)
		assert.Empty(t, sources)
	}
}

func TestContextBuilder_Deduplication(t *testing.T) {
	in := results(
		corpus.Subthread{ID: "1", Text: "one", Source: "s1"},
		corpus.Subthread{ID: "2", Text: "two", Source: "s2"},
		corpus.Subthread{ID: "3", Text: "three", Source: "s1"},
		corpus.Subthread{ID: "4", Text: "four", Source: "s3"},
	)

	contextText, sources := NewContextBuilder(0, TruncateSkip).Build(in)
	assert.Equal(t, "one\n\ntwo\n\nthree\n\nfour", contextText)
	assert.Equal(t, []string{"s1", "s2", "s3"}, sources)
}

func TestContextBuilder_SkipsBlankBodiesAndEmptySources(t *testing.T) {
	in := results(
		corpus.Subthread{ID: "1", Text: "  \n", Source: "blank"},
		corpus.Subthread{ID: "2", Text: "kept", Source: ""},
		corpus.Subthread{ID: "3", Text: "also kept", Source: "s3"},
	)

	contextText, sources := NewContextBuilder(0, TruncateSkip).Build(in)
	assert.Equal(t, "kept\n\nalso kept", contextText)
	assert.Equal(t, []string{"s3"}, sources)
}

func TestContextBuilder_SourceOnlyWhenIncluded(t *testing.T) {
	in := results(
		corpus.Subthread{ID: "1", Text: "short", Source: "s1"},
		corpus.Subthread{ID: "2", Text: strings.Repeat("x", 50), Source: "s2"},
		corpus.Subthread{ID: "3", Text: "tiny", Source: "s3"},
	)

	contextText, sources := NewContextBuilder(20, TruncateSkip).Build(in)
	assert.Equal(t, "short", contextText)
	assert.Equal(t, []string{"s1"}, sources)
}

func TestContextBuilder_SkipPolicyBoundary(t *testing.T) {
	// "aaaa" + "\n\n" + "bbbb" is exactly 10 characters.
	in := results(
		corpus.Subthread{ID: "1", Text: "aaaa", Source: "s1"},
		corpus.Subthread{ID: "2", Text: "bbbb", Source: "s2"},
	)

	t.Run("fits exactly", func(t *testing.T) {
		contextText, sources := NewContextBuilder(10, TruncateSkip).Build(in)
		assert.Equal(t, "aaaa\n\nbbbb", contextText)
		assert.Equal(t, []string{"s1", "s2"}, sources)
	})

	t.Run("one short", func(t *testing.T) {
		contextText, sources := NewContextBuilder(9, TruncateSkip).Build(in)
		assert.Equal(t, "aaaa", contextText)
		assert.Equal(t, []string{"s1"}, sources)
	})

	t.Run("first entry alone overflows", func(t *testing.T) {
		contextText, sources := NewContextBuilder(3, TruncateSkip).Build(in)
		assert.Equal(t, "", contextText)
		assert.Empty(t, sources)
	})
}

func TestContextBuilder_TruncatePolicyBoundary(t *testing.T) {
	in := results(
		corpus.Subthread{ID: "1", Text: "aaaa", Source: "s1"},
		corpus.Subthread{ID: "2", Text: "bbbb", Source: "s2"},
		corpus.Subthread{ID: "3", Text: "cccc", Source: "s3"},
	)

	t.Run("cut to remaining budget", func(t *testing.T) {
		contextText, sources := NewContextBuilder(8, TruncateCut).Build(in)
		assert.Equal(t, "aaaa\n\nbb", contextText)
		assert.Equal(t, []string{"s1", "s2"}, sources)
	})

	t.Run("only delimiter fits", func(t *testing.T) {
		contextText, sources := NewContextBuilder(6, TruncateCut).Build(in)
		assert.Equal(t, "aaaa", contextText)
		assert.Equal(t, []string{"s1"}, sources)
	})

	t.Run("first entry cut", func(t *testing.T) {
		contextText, sources := NewContextBuilder(3, TruncateCut).Build(in)
		assert.Equal(t, "aaa", contextText)
		assert.Equal(t, []string{"s1"}, sources)
	})

	t.Run("stops after cut", func(t *testing.T) {
		contextText, _ := NewContextBuilder(7, TruncateCut).Build(in)
		assert.Equal(t, "aaaa\n\nb", contextText)
	})
}

func TestContextBuilder_TruncateOnRuneBoundary(t *testing.T) {
	in := results(corpus.Subthread{ID: "1", Text: "héllo wörld", Source: "s1"})

	contextText, _ := NewContextBuilder(4, TruncateCut).Build(in)
	assert.Equal(t, "héll", contextText)
	assert.True(t, utf8.ValidString(contextText))
}

func TestContextBuilder_SizeBound(t *testing.T) {
	var entries []corpus.Subthread
	for i, body := range []string{"alpha", "βeta gamma", strings.Repeat("δ", 40), "", "epsilon zeta eta", "theta"} {
		entries = append(entries, corpus.Subthread{ID: string(rune('a' + i)), Text: body, Source: body})
	}
	in := results(entries...)

	for _, policy := range []TruncationPolicy{TruncateSkip, TruncateCut} {
		for maxChars := 1; maxChars <= 90; maxChars++ {
			contextText, sources := NewContextBuilder(maxChars, policy).Build(in)
			require.LessOrEqual(t, utf8.RuneCountInString(contextText), maxChars, "policy %s max %d", policy, maxChars)
			require.LessOrEqual(t, len(sources), len(in))
			for _, src := range sources {
				assert.Contains(t, contextText, string([]rune(src)[:1]), "source %q not reflected in context", src)
			}
		}
	}
}

func TestParseTruncationPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    TruncationPolicy
		wantErr bool
	}{
		{"", TruncateSkip, false},
		{"skip", TruncateSkip, false},
		{" Truncate ", TruncateCut, false},
		{"drop", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTruncationPolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "", truncateRunes("abc", 0))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
}

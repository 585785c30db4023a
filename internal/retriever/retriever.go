// Package retriever answers example-sentence queries against the per-language
// indexes and manages their lifecycle.
package retriever

import (
	"sort"

	"github.com/language-coach/sentence-search/internal/gdex"
	"github.com/language-coach/sentence-search/internal/index"
	"github.com/language-coach/sentence-search/internal/tokenizer"
)

// Example is one retrieved sentence with its quality breakdown and source
// attribution.
type Example struct {
	SentenceID int64          `json:"sentence_id"`
	Text       string         `json:"text"`
	Score      gdex.Score     `json:"score"`
	Metadata   index.Metadata `json:"metadata"`
}

// BestExamples finds up to limit sentences containing every token of phrase,
// scored by scorer, keeping only those at or above minScore. Results are
// ordered by descending total score; ties keep index insertion order so
// repeated queries return identical rankings.
func BestExamples(idx *index.SentenceIndex, scorer *gdex.Scorer, phrase string, limit int, minScore float64) []Example {
	queryTokens := tokenizer.Tokenize(phrase)
	if len(queryTokens) == 0 {
		return []Example{}
	}

	candidates := idx.Candidates(queryTokens)
	if len(candidates) == 0 {
		return []Example{}
	}

	type scored struct {
		entry index.Entry
		score gdex.Score
	}
	accepted := make([]scored, 0, len(candidates))
	for _, pos := range candidates {
		entry, ok := idx.Entry(pos)
		if !ok {
			continue
		}
		sc := scorer.ScoreSentence(entry.Text, phrase, entry.Tokens)
		if sc.Total >= minScore {
			accepted = append(accepted, scored{entry: entry, score: sc})
		}
	}

	// Candidates arrive in ascending position order, so a stable sort on
	// total alone preserves the position tie-break.
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].score.Total > accepted[j].score.Total
	})

	if limit > 0 && len(accepted) > limit {
		accepted = accepted[:limit]
	}

	out := make([]Example, len(accepted))
	for i, s := range accepted {
		md, _ := idx.Metadata(s.entry.SentenceID)
		out[i] = Example{
			SentenceID: s.entry.SentenceID,
			Text:       s.entry.Text,
			Score:      s.score,
			Metadata:   md,
		}
	}
	return out
}

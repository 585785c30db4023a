package cache

import (
	"context"
	"testing"

	"github.com/language-coach/sentence-search/internal/gdex"
	"github.com/language-coach/sentence-search/internal/retriever"
)

type countingSearcher struct {
	calls   int
	results []retriever.Example
}

func (s *countingSearcher) Search(_ context.Context, _, _ string, _ gdex.Proficiency, _ int) ([]retriever.Example, error) {
	s.calls++
	return s.results, nil
}

func TestNilClientPassesThrough(t *testing.T) {
	next := &countingSearcher{results: []retriever.Example{{SentenceID: 1, Text: "The dog runs."}}}
	qc := New(nil, next, 0, nil)

	for i := 0; i < 3; i++ {
		got, err := qc.Search(context.Background(), "dog", "en", gdex.Intermediate, 5)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 || got[0].SentenceID != 1 {
			t.Fatalf("Search = %+v", got)
		}
	}
	if next.calls != 3 {
		t.Errorf("next.calls = %d, want 3 with caching disabled", next.calls)
	}

	stats := qc.Stats()
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("Stats = %+v, want zeros with caching disabled", stats)
	}
}

func TestNilClientInvalidateIsNoop(t *testing.T) {
	qc := New(nil, &countingSearcher{}, 0, nil)
	n, err := qc.Invalidate(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Invalidate = %d, %v", n, err)
	}
}

func TestCacheKeyNormalization(t *testing.T) {
	base := cacheKey("break the ice", "en", gdex.Intermediate, 5)

	same := []string{"  break the ice ", "Break The Ice", "BREAK THE ICE"}
	for _, phrase := range same {
		if got := cacheKey(phrase, "EN", gdex.Intermediate, 5); got != base {
			t.Errorf("cacheKey(%q) = %s, want %s", phrase, got, base)
		}
	}

	different := []string{
		cacheKey("break the ice", "es", gdex.Intermediate, 5),
		cacheKey("break the ice", "en", gdex.Beginner, 5),
		cacheKey("break the ice", "en", gdex.Intermediate, 10),
		cacheKey("break the mold", "en", gdex.Intermediate, 5),
	}
	for i, key := range different {
		if key == base {
			t.Errorf("variant %d collided with base key", i)
		}
	}
}

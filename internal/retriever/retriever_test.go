package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/language-coach/sentence-search/internal/corpus"
	"github.com/language-coach/sentence-search/internal/gdex"
	"github.com/language-coach/sentence-search/internal/index"
	"github.com/language-coach/sentence-search/internal/tokenizer"
	apperrors "github.com/language-coach/sentence-search/pkg/errors"
)

const minScore = 0.8

func addSentence(t *testing.T, idx *index.SentenceIndex, id int64, text string) {
	t.Helper()
	if err := idx.Add(id, text, tokenizer.Tokenize(text)); err != nil {
		t.Fatalf("Add(%d): %v", id, err)
	}
}

// seedIndex returns an index where, for the query "dog" at intermediate
// proficiency, sentences 1 and 2 clear the acceptance threshold (2 above 1)
// and sentence 3 falls short.
func seedIndex(t *testing.T) *index.SentenceIndex {
	t.Helper()
	idx := index.New("en")
	addSentence(t, idx, 1, "The children walked the dog around the busy park yesterday.")
	addSentence(t, idx, 2, "My good friend walked the dog over to the park.")
	addSentence(t, idx, 3, "Dog barked.")
	idx.SetMetadata(1, index.Metadata{SourceDocumentID: 42, SourceTitle: "Daily Walks", SourceCategory: "stories"})
	return idx
}

func intermediateScorer(t *testing.T) *gdex.Scorer {
	t.Helper()
	s, err := gdex.New("en", gdex.Intermediate)
	if err != nil {
		t.Fatalf("gdex.New: %v", err)
	}
	return s
}

func TestBestExamplesThresholdAndOrder(t *testing.T) {
	idx := seedIndex(t)
	got := BestExamples(idx, intermediateScorer(t), "dog", 10, minScore)

	if len(got) != 2 {
		t.Fatalf("got %d examples, want 2: %+v", len(got), got)
	}
	if got[0].SentenceID != 2 || got[1].SentenceID != 1 {
		t.Errorf("order = [%d, %d], want [2, 1]", got[0].SentenceID, got[1].SentenceID)
	}
	if got[0].Score.Total <= got[1].Score.Total {
		t.Errorf("scores not descending: %v then %v", got[0].Score.Total, got[1].Score.Total)
	}
	for _, ex := range got {
		if ex.Score.Total < minScore {
			t.Errorf("example %d below threshold: %v", ex.SentenceID, ex.Score.Total)
		}
	}
	if got[1].Metadata.SourceTitle != "Daily Walks" {
		t.Errorf("metadata for sentence 1 = %+v", got[1].Metadata)
	}
}

func TestBestExamplesLimit(t *testing.T) {
	idx := seedIndex(t)
	got := BestExamples(idx, intermediateScorer(t), "dog", 1, minScore)
	if len(got) != 1 || got[0].SentenceID != 2 {
		t.Fatalf("got %+v, want only sentence 2", got)
	}
}

func TestBestExamplesTieBreakIsInsertionOrder(t *testing.T) {
	idx := index.New("en")
	text := "The children walked the dog around the busy park yesterday."
	addSentence(t, idx, 7, text)
	addSentence(t, idx, 5, text)

	got := BestExamples(idx, intermediateScorer(t), "dog", 10, minScore)
	if len(got) != 2 {
		t.Fatalf("got %d examples, want 2", len(got))
	}
	if got[0].SentenceID != 7 || got[1].SentenceID != 5 {
		t.Errorf("tie order = [%d, %d], want insertion order [7, 5]", got[0].SentenceID, got[1].SentenceID)
	}
}

func TestBestExamplesEmptyCases(t *testing.T) {
	idx := seedIndex(t)
	scorer := intermediateScorer(t)

	if got := BestExamples(idx, scorer, "   ", 10, minScore); len(got) != 0 {
		t.Errorf("blank phrase returned %+v", got)
	}
	if got := BestExamples(idx, scorer, "zebra", 10, minScore); len(got) != 0 {
		t.Errorf("unknown token returned %+v", got)
	}
	if got := BestExamples(idx, scorer, "dog zebra", 10, minScore); len(got) != 0 {
		t.Errorf("partial-match phrase returned %+v", got)
	}
}

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	dir := t.TempDir()
	idx := seedIndex(t)
	if err := idx.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return NewRegistry(nil, dir, minScore, nil)
}

func TestRegistrySearchLoadsFromDisk(t *testing.T) {
	reg := openTestRegistry(t)
	got, err := reg.Search(context.Background(), "dog", "en", gdex.Intermediate, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 || got[0].SentenceID != 2 {
		t.Fatalf("Search = %+v, want sentences [2, 1]", got)
	}
}

func TestRegistryUnsupportedLanguage(t *testing.T) {
	reg := openTestRegistry(t)

	// No gdex tables at all.
	_, err := reg.Search(context.Background(), "dog", "de", gdex.Intermediate, 10)
	if !errors.Is(err, apperrors.ErrUnsupportedLanguage) {
		t.Fatalf("err = %v, want ErrUnsupportedLanguage", err)
	}

	// Tables exist but there is no index and no corpus to build from.
	_, err = reg.Search(context.Background(), "perro", "es", gdex.Intermediate, 10)
	if !errors.Is(err, apperrors.ErrUnsupportedLanguage) {
		t.Fatalf("err = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestRegistryZeroResultIsNotAnError(t *testing.T) {
	reg := openTestRegistry(t)
	got, err := reg.Search(context.Background(), "zebra", "en", gdex.Intermediate, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Search = %+v, want empty", got)
	}
}

func TestRegistryAddSentenceVisibleToSearch(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	rec := corpus.SentenceRecord{
		ID:          99,
		Text:        "My good friend walked the dog over to the park.",
		Language:    "en",
		SourceTitle: "New Material",
	}
	if err := reg.AddSentence(ctx, rec); err != nil {
		t.Fatalf("AddSentence: %v", err)
	}

	got, err := reg.Search(ctx, "dog", "en", gdex.Intermediate, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	found := false
	for _, ex := range got {
		if ex.SentenceID == 99 {
			found = true
			if ex.Metadata.SourceTitle != "New Material" {
				t.Errorf("metadata = %+v", ex.Metadata)
			}
		}
	}
	if !found {
		t.Fatalf("added sentence not returned: %+v", got)
	}
}

func TestRegistryAddSentenceValidation(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	err := reg.AddSentence(ctx, corpus.SentenceRecord{ID: 100, Text: "  ", Language: "en"})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("blank text err = %v, want ErrInvalidInput", err)
	}

	long := ""
	for i := 0; i < gdex.MaxSentenceTokens+1; i++ {
		long += "word "
	}
	err = reg.AddSentence(ctx, corpus.SentenceRecord{ID: 101, Text: long, Language: "en"})
	if !errors.Is(err, apperrors.ErrSentenceTooLong) {
		t.Fatalf("overlong text err = %v, want ErrSentenceTooLong", err)
	}
}

func TestRegistrySaveAllRoundTrip(t *testing.T) {
	dir := t.TempDir()
	idx := seedIndex(t)
	if err := idx.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reg := NewRegistry(nil, dir, minScore, nil)
	ctx := context.Background()
	if err := reg.AddSentence(ctx, corpus.SentenceRecord{
		ID:       50,
		Text:     "The children walked the dog around the busy park yesterday.",
		Language: "en",
	}); err != nil {
		t.Fatalf("AddSentence: %v", err)
	}
	if err := reg.SaveAll(); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	fresh := NewRegistry(nil, dir, minScore, nil)
	got, err := fresh.Search(ctx, "dog", "en", gdex.Intermediate, 10)
	if err != nil {
		t.Fatalf("Search after reload: %v", err)
	}
	found := false
	for _, ex := range got {
		if ex.SentenceID == 50 {
			found = true
		}
	}
	if !found {
		t.Fatalf("persisted addition missing after reload: %+v", got)
	}
}

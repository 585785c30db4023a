// Package index provides the per-language in-memory sentence index: the
// sentence store, the token postings, and their on-disk persistence.
package index

import (
	"fmt"
	"sort"
	"sync"
)

// Metadata carries the source attribution for one sentence.
type Metadata struct {
	SourceDocumentID int64  `json:"source_document_id,omitempty"`
	SourceTitle      string `json:"source_title,omitempty"`
	SourceCategory   string `json:"source_category,omitempty"`
}

// Entry is one indexed sentence as seen by readers.
type Entry struct {
	SentenceID int64
	Text       string
	Tokens     []string
	Position   int
}

// SentenceIndex is an append-only inverted index over one language's
// sentences. Internal positions are assigned in insertion order and never
// change, so postings stay sorted without re-sorting on Add.
type SentenceIndex struct {
	mu       sync.RWMutex
	language string

	ids    []int64
	texts  []string
	tokens [][]string

	postings map[string][]int
	posByID  map[int64]int
	metadata map[int64]Metadata
}

// New returns an empty index for the given language code.
func New(language string) *SentenceIndex {
	return &SentenceIndex{
		language: language,
		postings: make(map[string][]int),
		posByID:  make(map[int64]int),
		metadata: make(map[int64]Metadata),
	}
}

// Language returns the language code the index was built for.
func (idx *SentenceIndex) Language() string {
	return idx.language
}

// Len returns the number of indexed sentences.
func (idx *SentenceIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids)
}

// Add appends one sentence with its cached tokenization. A sentence ID that
// is already present is rejected so positions stay stable.
func (idx *SentenceIndex) Add(sentenceID int64, text string, tokens []string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.posByID[sentenceID]; ok {
		return fmt.Errorf("sentence %d already indexed", sentenceID)
	}

	pos := len(idx.ids)
	idx.ids = append(idx.ids, sentenceID)
	idx.texts = append(idx.texts, text)
	idx.tokens = append(idx.tokens, tokens)
	idx.posByID[sentenceID] = pos

	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		idx.postings[tok] = append(idx.postings[tok], pos)
	}
	return nil
}

// SetMetadata attaches source attribution to an already-indexed sentence.
// Metadata for unknown sentence IDs is dropped.
func (idx *SentenceIndex) SetMetadata(sentenceID int64, md Metadata) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.posByID[sentenceID]; ok {
		idx.metadata[sentenceID] = md
	}
}

// Metadata returns the attribution for a sentence, if any was recorded.
func (idx *SentenceIndex) Metadata(sentenceID int64) (Metadata, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	md, ok := idx.metadata[sentenceID]
	return md, ok
}

// Entry returns the sentence stored at an internal position.
func (idx *SentenceIndex) Entry(pos int) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if pos < 0 || pos >= len(idx.ids) {
		return Entry{}, false
	}
	return Entry{
		SentenceID: idx.ids[pos],
		Text:       idx.texts[pos],
		Tokens:     idx.tokens[pos],
		Position:   pos,
	}, true
}

// Candidates intersects the postings of every query token and returns the
// matching internal positions in ascending order. Any token with no posting
// list yields an empty result.
func (idx *SentenceIndex) Candidates(queryTokens []string) []int {
	if len(queryTokens) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	lists := make([][]int, 0, len(queryTokens))
	seen := make(map[string]struct{}, len(queryTokens))
	for _, tok := range queryTokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		list, ok := idx.postings[tok]
		if !ok {
			return nil
		}
		lists = append(lists, list)
	}

	// Intersect starting from the rarest token.
	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })

	result := lists[0]
	for _, list := range lists[1:] {
		result = intersect(result, list)
		if len(result) == 0 {
			return nil
		}
	}

	out := make([]int, len(result))
	copy(out, result)
	return out
}

// VocabularySize returns the number of distinct tokens with postings.
func (idx *SentenceIndex) VocabularySize() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.postings)
}

// intersect merges two sorted position lists.
func intersect(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

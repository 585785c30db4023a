// Package corpus reads and writes the sentence corpus backing the indexes.
package corpus

import (
	"context"

	"github.com/language-coach/sentence-search/internal/index"
)

// SentenceRecord is one corpus sentence with its source document fields.
type SentenceRecord struct {
	ID               int64
	Text             string
	Language         string
	SourceDocumentID int64
	SourceTitle      string
	SourceCategory   string
}

// Store is the corpus access interface used by the builder and the ingest
// pipeline.
type Store interface {
	// FetchSentences streams every sentence for a language to fn in ID
	// order. Only ID, Text and Language are populated; source fields come
	// from FetchMetadata.
	FetchSentences(ctx context.Context, language string, fn func(SentenceRecord) error) error

	// FetchMetadata resolves source attribution for the given sentence IDs.
	FetchMetadata(ctx context.Context, ids []int64) (map[int64]index.Metadata, error)

	// SaveSentence persists a newly ingested sentence and returns its ID.
	SaveSentence(ctx context.Context, rec SentenceRecord) (int64, error)
}

// Package ingest moves newly submitted sentences through Kafka into the
// corpus and the live indexes.
package ingest

import (
	"fmt"
	"strings"

	"github.com/language-coach/sentence-search/internal/gdex"
	"github.com/language-coach/sentence-search/internal/tokenizer"
	apperrors "github.com/language-coach/sentence-search/pkg/errors"
)

// SentenceEvent is the wire format for one submitted sentence.
type SentenceEvent struct {
	Text             string `json:"text"`
	Language         string `json:"language"`
	SourceDocumentID int64  `json:"source_document_id,omitempty"`
	SourceTitle      string `json:"source_title,omitempty"`
	SourceCategory   string `json:"source_category,omitempty"`
}

// Validate applies the same gates a full build applies, so nothing enters
// the pipeline that the index would refuse.
func (e SentenceEvent) Validate() error {
	if strings.TrimSpace(e.Language) == "" {
		return fmt.Errorf("%w: language is required", apperrors.ErrInvalidInput)
	}
	tokens := tokenizer.Tokenize(e.Text)
	if len(tokens) == 0 {
		return fmt.Errorf("%w: text has no indexable tokens", apperrors.ErrInvalidInput)
	}
	if len(tokens) > gdex.MaxSentenceTokens {
		return fmt.Errorf("%w: %d tokens, limit %d", apperrors.ErrSentenceTooLong, len(tokens), gdex.MaxSentenceTokens)
	}
	return nil
}

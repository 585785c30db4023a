package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/language-coach/sentence-search/internal/corpus"
	"github.com/language-coach/sentence-search/internal/retriever"
	"github.com/language-coach/sentence-search/internal/search/cache"
	apperrors "github.com/language-coach/sentence-search/pkg/errors"
	"github.com/language-coach/sentence-search/pkg/kafka"
)

// Applier consumes sentence events: it persists each sentence to the corpus,
// appends it to the live index, and drops stale cached results.
type Applier struct {
	store    corpus.Store
	registry *retriever.Registry
	cache    *cache.QueryCache // optional
	logger   *slog.Logger
}

func NewApplier(store corpus.Store, registry *retriever.Registry, qc *cache.QueryCache) *Applier {
	return &Applier{
		store:    store,
		registry: registry,
		cache:    qc,
		logger:   slog.Default().With("component", "ingest-applier"),
	}
}

// Handle is the Kafka message handler. Malformed or invalid events are
// logged and dropped so they do not wedge the partition; transient failures
// propagate, leaving the message uncommitted for redelivery.
func (a *Applier) Handle(ctx context.Context, key, value []byte) error {
	event, err := kafka.DecodeJSON[SentenceEvent](value)
	if err != nil {
		a.logger.Warn("dropping undecodable sentence event", "key", string(key), "error", err)
		return nil
	}
	if err := event.Validate(); err != nil {
		a.logger.Warn("dropping invalid sentence event", "language", event.Language, "error", err)
		return nil
	}

	rec := corpus.SentenceRecord{
		Text:             event.Text,
		Language:         event.Language,
		SourceDocumentID: event.SourceDocumentID,
		SourceTitle:      event.SourceTitle,
		SourceCategory:   event.SourceCategory,
	}
	id, err := a.store.SaveSentence(ctx, rec)
	if err != nil {
		return fmt.Errorf("persist ingested sentence: %w", err)
	}
	rec.ID = id

	if err := a.registry.AddSentence(ctx, rec); err != nil {
		// A language nobody serves is a routing mistake, not a retryable
		// failure.
		if errors.Is(err, apperrors.ErrUnsupportedLanguage) {
			a.logger.Warn("dropping sentence for unserved language", "language", rec.Language, "sentence_id", id)
			return nil
		}
		return fmt.Errorf("index ingested sentence %d: %w", id, err)
	}

	if a.cache != nil {
		if n, err := a.cache.Invalidate(ctx); err != nil {
			a.logger.Warn("cache invalidation failed after ingest", "error", err)
		} else if n > 0 {
			a.logger.Debug("cache invalidated after ingest", "keys", n)
		}
	}

	a.logger.Info("sentence ingested", "language", rec.Language, "sentence_id", id)
	return nil
}

// Package builder constructs per-language sentence indexes from the corpus.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/language-coach/sentence-search/internal/corpus"
	"github.com/language-coach/sentence-search/internal/gdex"
	"github.com/language-coach/sentence-search/internal/index"
	"github.com/language-coach/sentence-search/internal/tokenizer"
	"github.com/language-coach/sentence-search/pkg/metrics"
)

// prefilterWords is a cheap whitespace-count gate applied before tokenizing.
// Anything this long cannot land under the token ceiling.
const prefilterWords = 35

// Builder turns corpus sentences into searchable indexes.
type Builder struct {
	store         corpus.Store
	metadataBatch int
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// New creates a Builder. metadataBatch bounds how many sentence IDs one
// metadata query resolves; values below 1 fall back to 500. metrics may be
// nil for offline use.
func New(store corpus.Store, metadataBatch int, m *metrics.Metrics) *Builder {
	if metadataBatch < 1 {
		metadataBatch = 500
	}
	return &Builder{
		store:         store,
		metadataBatch: metadataBatch,
		metrics:       m,
		logger:        slog.Default().With("component", "builder"),
	}
}

// Build creates a full index for one language. A language with no corpus
// rows yields a valid empty index rather than an error.
func (b *Builder) Build(ctx context.Context, language string) (*index.SentenceIndex, error) {
	start := time.Now()
	idx := index.New(language)

	var indexed, skippedLong, skippedEmpty int
	err := b.store.FetchSentences(ctx, language, func(rec corpus.SentenceRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if len(strings.Fields(rec.Text)) > prefilterWords {
			skippedLong++
			return nil
		}
		tokens := tokenizer.Tokenize(rec.Text)
		if len(tokens) == 0 {
			skippedEmpty++
			return nil
		}
		if len(tokens) > gdex.MaxSentenceTokens {
			skippedLong++
			return nil
		}

		if err := idx.Add(rec.ID, rec.Text, tokens); err != nil {
			b.logger.Warn("skipping corpus row", "language", language, "sentence_id", rec.ID, "error", err)
			skippedEmpty++
			return nil
		}
		indexed++
		return nil
	})
	if err != nil {
		b.observeBuild(language, "error", start)
		return nil, fmt.Errorf("fetch sentences for %q: %w", language, err)
	}

	if err := b.attachMetadata(ctx, idx); err != nil {
		b.observeBuild(language, "error", start)
		return nil, err
	}

	b.observeBuild(language, "success", start)
	if b.metrics != nil {
		b.metrics.SentencesIndexed.WithLabelValues(language).Set(float64(idx.Len()))
		b.metrics.RecordsSkippedTotal.WithLabelValues(language, "overlong").Add(float64(skippedLong))
		b.metrics.RecordsSkippedTotal.WithLabelValues(language, "malformed").Add(float64(skippedEmpty))
	}
	b.logger.Info("index built",
		"language", language,
		"sentences", indexed,
		"skipped_overlong", skippedLong,
		"skipped_malformed", skippedEmpty,
		"vocabulary", idx.VocabularySize(),
		"duration", time.Since(start))
	return idx, nil
}

// attachMetadata resolves source attribution in bounded batches so one build
// never issues an unbounded IN query.
func (b *Builder) attachMetadata(ctx context.Context, idx *index.SentenceIndex) error {
	total := idx.Len()
	ids := make([]int64, 0, b.metadataBatch)

	flush := func() error {
		if len(ids) == 0 {
			return nil
		}
		md, err := b.store.FetchMetadata(ctx, ids)
		if err != nil {
			return fmt.Errorf("fetch metadata batch: %w", err)
		}
		for id, m := range md {
			idx.SetMetadata(id, m)
		}
		ids = ids[:0]
		return nil
	}

	for pos := 0; pos < total; pos++ {
		entry, ok := idx.Entry(pos)
		if !ok {
			continue
		}
		ids = append(ids, entry.SentenceID)
		if len(ids) >= b.metadataBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func (b *Builder) observeBuild(language, status string, start time.Time) {
	if b.metrics == nil {
		return
	}
	b.metrics.IndexBuildsTotal.WithLabelValues(language, status).Inc()
	if status == "success" {
		b.metrics.IndexBuildDuration.WithLabelValues(language).Observe(time.Since(start).Seconds())
	}
}

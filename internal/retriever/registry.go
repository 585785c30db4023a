package retriever

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/language-coach/sentence-search/internal/builder"
	"github.com/language-coach/sentence-search/internal/corpus"
	"github.com/language-coach/sentence-search/internal/gdex"
	"github.com/language-coach/sentence-search/internal/index"
	"github.com/language-coach/sentence-search/internal/tokenizer"
	apperrors "github.com/language-coach/sentence-search/pkg/errors"
	"github.com/language-coach/sentence-search/pkg/metrics"
)

type scorerKey struct {
	language    string
	proficiency gdex.Proficiency
}

// Registry owns one index per language plus a scorer cache. All index
// lifecycle transitions (load, build, add, swap) are serialized through the
// registry mutex; searches only hold it long enough to fetch the index
// pointer.
type Registry struct {
	mu      sync.Mutex
	indexes map[string]*index.SentenceIndex
	scorers map[scorerKey]*gdex.Scorer

	builder  *builder.Builder // nil when no corpus source is configured
	dataDir  string
	minScore float64
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewRegistry creates a Registry. b may be nil, in which case only indexes
// already persisted under dataDir can be served.
func NewRegistry(b *builder.Builder, dataDir string, minScore float64, m *metrics.Metrics) *Registry {
	return &Registry{
		indexes:  make(map[string]*index.SentenceIndex),
		scorers:  make(map[scorerKey]*gdex.Scorer),
		builder:  b,
		dataDir:  dataDir,
		minScore: minScore,
		metrics:  m,
		logger:   slog.Default().With("component", "registry"),
	}
}

// Open warms the registry for the configured languages, loading persisted
// indexes and building missing ones. Failures are collected so one bad
// language does not block the rest.
func (r *Registry) Open(ctx context.Context, languages []string) error {
	var errs []error
	for _, lang := range languages {
		if _, err := r.Index(ctx, lang); err != nil {
			errs = append(errs, fmt.Errorf("open %q: %w", lang, err))
			r.logger.Error("failed to open index", "language", lang, "error", err)
		}
	}
	return stderrors.Join(errs...)
}

// Index returns the index for a language, loading it from disk or building
// it from the corpus on first use. Languages with neither a persisted index
// nor a corpus source yield ErrUnsupportedLanguage.
func (r *Registry) Index(ctx context.Context, language string) (*index.SentenceIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexLocked(ctx, language)
}

func (r *Registry) indexLocked(ctx context.Context, language string) (*index.SentenceIndex, error) {
	if idx, ok := r.indexes[language]; ok {
		return idx, nil
	}

	idx, err := index.Load(r.dataDir, language)
	switch {
	case err == nil:
		r.logger.Info("index loaded", "language", language, "sentences", idx.Len())
	case stderrors.Is(err, os.ErrNotExist):
		if r.builder == nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedLanguage, language)
		}
		idx, err = r.builder.Build(ctx, language)
		if err != nil {
			return nil, fmt.Errorf("%w: build %s: %v", apperrors.ErrNoCorpusSource, language, err)
		}
		if err := idx.Save(r.dataDir); err != nil {
			r.logger.Warn("could not persist freshly built index", "language", language, "error", err)
		}
	default:
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.SentencesIndexed.WithLabelValues(language).Set(float64(idx.Len()))
	}
	r.indexes[language] = idx
	return idx, nil
}

func (r *Registry) scorer(language string, proficiency gdex.Proficiency) (*gdex.Scorer, error) {
	key := scorerKey{language: language, proficiency: proficiency}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.scorers[key]; ok {
		return s, nil
	}
	s, err := gdex.New(language, proficiency)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedLanguage, language)
	}
	r.scorers[key] = s
	return s, nil
}

// Search retrieves the best example sentences for a phrase. A supported
// language with no acceptable sentences returns an empty slice and nil
// error; an unknown language returns ErrUnsupportedLanguage.
func (r *Registry) Search(ctx context.Context, phrase, language string, proficiency gdex.Proficiency, limit int) ([]Example, error) {
	scorer, err := r.scorer(language, proficiency)
	if err != nil {
		r.countQuery("unsupported_language")
		return nil, err
	}
	idx, err := r.Index(ctx, language)
	if err != nil {
		if stderrors.Is(err, apperrors.ErrUnsupportedLanguage) {
			r.countQuery("unsupported_language")
		} else {
			r.countQuery("error")
		}
		return nil, err
	}

	examples := BestExamples(idx, scorer, phrase, limit, r.minScore)
	if len(examples) == 0 {
		r.countQuery("zero_result")
	} else {
		r.countQuery("hit")
	}
	if r.metrics != nil {
		r.metrics.SearchResultsCount.Observe(float64(len(examples)))
	}
	return examples, nil
}

// AddSentence tokenizes and appends one sentence to its language's live
// index. The sentence must survive the same gates as at build time.
func (r *Registry) AddSentence(ctx context.Context, rec corpus.SentenceRecord) error {
	tokens := tokenizer.Tokenize(rec.Text)
	if len(tokens) == 0 {
		return fmt.Errorf("%w: no tokens", apperrors.ErrInvalidInput)
	}
	if len(tokens) > gdex.MaxSentenceTokens {
		return fmt.Errorf("%w: %d tokens", apperrors.ErrSentenceTooLong, len(tokens))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	idx, err := r.indexLocked(ctx, rec.Language)
	if err != nil {
		return err
	}
	if err := idx.Add(rec.ID, rec.Text, tokens); err != nil {
		return err
	}
	idx.SetMetadata(rec.ID, index.Metadata{
		SourceDocumentID: rec.SourceDocumentID,
		SourceTitle:      rec.SourceTitle,
		SourceCategory:   rec.SourceCategory,
	})
	if r.metrics != nil {
		r.metrics.SentencesAddedTotal.WithLabelValues(rec.Language).Inc()
		r.metrics.SentencesIndexed.WithLabelValues(rec.Language).Set(float64(idx.Len()))
	}
	return nil
}

// Rebuild replaces a language's index with a fresh build from the corpus
// and persists the result. Searches keep hitting the old index until the
// swap.
func (r *Registry) Rebuild(ctx context.Context, language string) error {
	if r.builder == nil {
		return apperrors.ErrNoCorpusSource
	}
	idx, err := r.builder.Build(ctx, language)
	if err != nil {
		return fmt.Errorf("rebuild %q: %w", language, err)
	}
	if err := idx.Save(r.dataDir); err != nil {
		return fmt.Errorf("persist rebuilt index for %q: %w", language, err)
	}

	r.mu.Lock()
	r.indexes[language] = idx
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.SentencesIndexed.WithLabelValues(language).Set(float64(idx.Len()))
	}
	return nil
}

// Languages lists the languages with a resident index, sorted.
func (r *Registry) Languages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.indexes))
	for lang := range r.indexes {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// SaveAll persists every resident index, typically on shutdown so
// incremental additions survive a restart.
func (r *Registry) SaveAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for lang, idx := range r.indexes {
		if err := idx.Save(r.dataDir); err != nil {
			errs = append(errs, fmt.Errorf("save %q: %w", lang, err))
		}
	}
	return stderrors.Join(errs...)
}

func (r *Registry) countQuery(outcome string) {
	if r.metrics != nil {
		r.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	}
}

// Command indexer builds sentence indexes offline and writes them to the
// data directory the server loads from.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/language-coach/sentence-search/internal/builder"
	"github.com/language-coach/sentence-search/internal/corpus"
	"github.com/language-coach/sentence-search/pkg/config"
	"github.com/language-coach/sentence-search/pkg/logger"
	"github.com/language-coach/sentence-search/pkg/postgres"
	"github.com/language-coach/sentence-search/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	languagesFlag := flag.String("languages", "", "comma-separated language codes (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("indexer")

	languages := cfg.Index.Languages
	if *languagesFlag != "" {
		languages = strings.Split(*languagesFlag, ",")
	}
	if len(languages) == 0 {
		log.Error("no languages configured")
		os.Exit(1)
	}

	ctx := context.Background()

	var pg *postgres.Client
	err = resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
		var cerr error
		pg, cerr = postgres.New(cfg.Postgres)
		return cerr
	})
	if err != nil {
		log.Error("could not reach corpus database", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	store := corpus.NewPostgresStore(pg)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Error("schema check failed", "error", err)
		os.Exit(1)
	}
	b := builder.New(store, cfg.Index.MetadataBatch, nil)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, lang := range languages {
		lang := strings.TrimSpace(strings.ToLower(lang))
		if lang == "" {
			continue
		}
		g.Go(func() error {
			idx, err := b.Build(gctx, lang)
			if err != nil {
				return fmt.Errorf("build %s: %w", lang, err)
			}
			if err := idx.Save(cfg.Index.DataDir); err != nil {
				return fmt.Errorf("save %s: %w", lang, err)
			}
			log.Info("index written",
				"language", lang,
				"sentences", idx.Len(),
				"vocabulary", idx.VocabularySize(),
				"file", cfg.Index.DataDir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("indexing failed", "error", err)
		os.Exit(1)
	}
	log.Info("all indexes built", "languages", len(languages), "duration", time.Since(start))
}

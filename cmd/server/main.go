// Command server runs the example-sentence search API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/language-coach/sentence-search/internal/builder"
	"github.com/language-coach/sentence-search/internal/corpus"
	"github.com/language-coach/sentence-search/internal/ingest"
	"github.com/language-coach/sentence-search/internal/retriever"
	"github.com/language-coach/sentence-search/internal/search/cache"
	"github.com/language-coach/sentence-search/internal/server"
	"github.com/language-coach/sentence-search/pkg/config"
	"github.com/language-coach/sentence-search/pkg/health"
	"github.com/language-coach/sentence-search/pkg/kafka"
	"github.com/language-coach/sentence-search/pkg/logger"
	"github.com/language-coach/sentence-search/pkg/metrics"
	"github.com/language-coach/sentence-search/pkg/middleware"
	"github.com/language-coach/sentence-search/pkg/postgres"
	"github.com/language-coach/sentence-search/pkg/redis"
	"github.com/language-coach/sentence-search/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("server")

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checker := health.NewChecker()

	// Postgres is optional: without it the server can still answer queries
	// from persisted indexes, it just cannot build or ingest.
	var store corpus.Store
	var pg *postgres.Client
	if cfg.Postgres.Host != "" {
		err := resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
			var cerr error
			pg, cerr = postgres.New(cfg.Postgres)
			return cerr
		})
		if err != nil {
			log.Warn("corpus database unavailable, serving persisted indexes only", "error", err)
		} else {
			defer pg.Close()
			pgStore := corpus.NewPostgresStore(pg)
			if err := pgStore.EnsureSchema(ctx); err != nil {
				return err
			}
			store = pgStore
			checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
				if err := pg.Ping(ctx); err != nil {
					return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
				}
				return health.ComponentHealth{Status: health.StatusUp}
			})
		}
	}

	var b *builder.Builder
	if store != nil {
		b = builder.New(store, cfg.Index.MetadataBatch, m)
	}
	registry := retriever.NewRegistry(b, cfg.Index.DataDir, cfg.Search.MinScore, m)
	if err := registry.Open(ctx, cfg.Index.Languages); err != nil {
		log.Warn("some indexes failed to open", "error", err)
	}
	checker.Register("indexes", func(context.Context) health.ComponentHealth {
		langs := registry.Languages()
		if len(langs) == 0 {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no indexes resident"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d languages", len(langs))}
	})

	// Redis is a soft dependency; searches degrade to uncached.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		rc, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, result caching disabled", "error", err)
		} else {
			redisClient = rc
			defer rc.Close()
			checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
				if err := rc.Ping(ctx); err != nil {
					return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
				}
				return health.ComponentHealth{Status: health.StatusUp}
			})
		}
	}
	queryCache := cache.New(redisClient, registry, cfg.Redis.CacheTTL, m)

	// Kafka wires sentence submission to the live indexes. Consumer and
	// producer are only started when a corpus store exists to assign IDs.
	var submitter server.Submitter
	if store != nil && len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SentenceIngest)
		defer producer.Close()
		submitter = ingest.NewPublisher(producer)

		applier := ingest.NewApplier(store, registry, queryCache)
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.SentenceIngest, applier.Handle)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Error("ingest consumer stopped", "error", err)
			}
		}()
	}

	h := server.NewHandler(queryCache, registry, queryCache, submitter, cfg.Search)
	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Metrics(m)(handler)
	handler = middleware.Timeout(cfg.Server.WriteTimeout)(handler)
	handler = middleware.RequestID(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}

	// Persist live indexes so incremental additions survive the restart.
	saveStart := time.Now()
	if err := registry.SaveAll(); err != nil {
		log.Error("index persistence on shutdown failed", "error", err)
	} else {
		log.Info("indexes persisted", "duration", time.Since(saveStart))
	}
	return nil
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coverscope/internal/catalog"
	"coverscope/internal/catalog/cache"
	cathandler "coverscope/internal/catalog/handler"
	catmetrics "coverscope/internal/catalog/metrics"
	catstore "coverscope/internal/catalog/store"
	"coverscope/internal/compare"
	comparehandler "coverscope/internal/compare/handler"
	comparemetrics "coverscope/internal/compare/metrics"
	"coverscope/internal/condition"
	conditionhandler "coverscope/internal/condition/handler"
	conditionmetrics "coverscope/internal/condition/metrics"
	evstore "coverscope/internal/evidence/store"
	"coverscope/internal/platform/config"
	"coverscope/internal/platform/httpserver"
	"coverscope/internal/platform/logger"
	"coverscope/internal/platform/middleware"
	"coverscope/internal/platform/postgres"
	"coverscope/internal/platform/redis"
	"coverscope/internal/platform/token"
	"coverscope/internal/retrieval"
	retmetrics "coverscope/internal/retrieval/metrics"
	"coverscope/internal/seed"
	audit "coverscope/pkg/platform/audit"
	auditpublisher "coverscope/pkg/platform/audit/publisher"
	auditmemory "coverscope/pkg/platform/audit/store/memory"
	auditpostgres "coverscope/pkg/platform/audit/store/postgres"
	auditworker "coverscope/pkg/platform/audit/worker"
)

// main wires the comparison service: stores (Postgres or seeded
// memory), the resolver with its optional Redis cache, the retriever,
// the compare and condition engines, the audit pipeline, and the HTTP
// surface. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		if err := applySchemas(ctx, db); err != nil {
			log.Error("schema apply failed", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	catalogStore, corpus, err := buildStores(ctx, cfg, db)
	if err != nil {
		log.Error("store initialization failed", "error", err)
		os.Exit(1)
	}

	var resolveCache catalog.ResolveCache
	if redisClient != nil {
		resolveCache = cache.NewRedisCache(redisClient.Client, cfg.ResolveCacheTTL, log)
	}
	resolver := catalog.NewResolver(catalogStore, resolveCache, log, catmetrics.New())
	retriever := retrieval.NewRetriever(corpus, log, retmetrics.New())

	auditMetrics := audit.New()
	trail := audit.NewTrail(256, log, auditMetrics)

	var auditStore audit.Store
	if db != nil {
		auditStore = auditpostgres.New(db)
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}

	var pub auditworker.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := auditpublisher.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka publisher initialization failed", "error", err)
			os.Exit(1)
		}
		defer kafkaPub.Close()
		pub = kafkaPub
	}

	worker := auditworker.NewWorker(auditStore, pub, trail.Inbox(), log, auditMetrics)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(ctx); err != nil {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	compareService := compare.NewService(resolver, retriever, trail, log, comparemetrics.New(), cfg.RetrievalTimeout)
	conditionService := condition.NewService(resolver, retriever, trail, log, conditionmetrics.New(), cfg.RetrievalTimeout)

	var validator middleware.TokenValidator
	if cfg.JWTSigningKey != "" {
		validator = token.NewService(cfg.JWTSigningKey, "coverscope", "coverscope-api")
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.ClientMetadata)

	router.Get("/healthz", healthHandler(db, redisClient))
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, cfg.APIKeyHash, log))
		cathandler.New(resolver, trail, log).Register(r)
		comparehandler.New(compareService, log).Register(r)
		conditionhandler.New(conditionService, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting coverscope", "addr", cfg.Addr,
			"postgres", db != nil, "redis", redisClient != nil, "kafka", pub != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	// Let the worker drain whatever the trail buffered before exit.
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
	}
}

// buildStores selects Postgres-backed stores when a DSN is configured,
// otherwise seeded (or empty) in-memory stores.
func buildStores(ctx context.Context, cfg config.Config, db *sql.DB) (catalog.SnapshotSource, retrieval.DocumentSource, error) {
	if db != nil {
		return catstore.NewPostgresStore(db, 30*time.Second), evstore.NewPostgresStore(db), nil
	}

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		corpus, err := f.EvidenceStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		return f.CatalogStore(), corpus, nil
	}

	return catstore.NewMemoryStore("empty", nil, nil), evstore.NewMemoryStore(), nil
}

func applySchemas(ctx context.Context, db *sql.DB) error {
	for _, schema := range []string{catstore.Schema, evstore.Schema, auditpostgres.Schema} {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return err
		}
	}
	return nil
}

func healthHandler(db *sql.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, `{"status":"postgres unavailable"}`, http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, `{"status":"redis unavailable"}`, http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}
}

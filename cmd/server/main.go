package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/indexforge/webindex/internal/codec"
	"github.com/indexforge/webindex/internal/crawler"
	"github.com/indexforge/webindex/internal/server"
	"github.com/indexforge/webindex/internal/store"
	"github.com/indexforge/webindex/pkg/config"
	"github.com/indexforge/webindex/pkg/health"
	"github.com/indexforge/webindex/pkg/kafka"
	"github.com/indexforge/webindex/pkg/logger"
	"github.com/indexforge/webindex/pkg/metrics"
	"github.com/indexforge/webindex/pkg/middleware"
	"github.com/indexforge/webindex/pkg/postgres"
	pkgredis "github.com/indexforge/webindex/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting web index service", "port", cfg.Server.Port, "default_codec", cfg.Indexer.DefaultCodec)

	defaultCodec := codec.Kind(cfg.Indexer.DefaultCodec)
	if !defaultCodec.Valid() {
		slog.Error("invalid default codec in config", "codec", cfg.Indexer.DefaultCodec)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	postingStore := store.New(db)
	if err := postingStore.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("postings store ready", "database", cfg.Postgres.Database)

	var termCache *server.TermCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, term caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		termCache = server.NewTermCache(redisClient, cfg.Redis)
		slog.Info("term cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.TermInvalidate)
	defer producer.Close()

	if termCache != nil {
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.TermInvalidate, server.NewInvalidationHandler(termCache))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("invalidation consumer error", "error", err)
			}
		}()
		slog.Info("cache invalidation consumer started", "topic", cfg.Kafka.Topics.TermInvalidate)
	}

	m := metrics.New()
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	fetcher := crawler.New(cfg.Crawler)

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := server.New(postingStore, fetcher, termCache, producer, m, defaultCodec, cfg.Indexer.MaxDocuments)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/index", h.Index)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("web index service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("web index service stopped")
}

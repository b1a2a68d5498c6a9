package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/clausecheck/clausecheck/internal/application"
	appanalyses "github.com/clausecheck/clausecheck/internal/application/analyses"
	"github.com/clausecheck/clausecheck/internal/config"
	domai "github.com/clausecheck/clausecheck/internal/domain/ai"
	domain "github.com/clausecheck/clausecheck/internal/domain/analysis"
	"github.com/clausecheck/clausecheck/internal/infra/ai/gemini"
	aiopenai "github.com/clausecheck/clausecheck/internal/infra/ai/openai"
	mysqlp "github.com/clausecheck/clausecheck/internal/infra/db/mysql"
	postgresp "github.com/clausecheck/clausecheck/internal/infra/db/postgres"
	"github.com/clausecheck/clausecheck/internal/infra/httpserver"
	minioStore "github.com/clausecheck/clausecheck/internal/infra/storage"
	"github.com/clausecheck/clausecheck/internal/middleware"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("config load error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// connect database (driver selected by config)
	var db *sql.DB
	var repo domain.Repository
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			slog.Error("postgres connect error", "error", err)
			os.Exit(1)
		}
		repo = postgresp.NewAnalysisRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			slog.Error("mysql connect error", "error", err)
			os.Exit(1)
		}
		repo = mysqlp.NewAnalysisRepository(db)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		slog.Error("minio init error", "error", err)
		os.Exit(1)
	}

	// init AI provider
	var extractor domai.Extractor
	var classifier domai.Classifier
	switch cfg.AI.Provider {
	case "gemini":
		cli, err := gemini.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			slog.Error("gemini init error", "error", err)
			os.Exit(1)
		}
		extractor, classifier = cli, cli
	default:
		cli := aiopenai.NewClient(cfg.AI.APIKey, cfg.AI.Model)
		extractor, classifier = cli, cli
	}

	svc := &appanalyses.Service{
		Repo:       repo,
		Extractor:  extractor,
		Classifier: classifier,
		Images:     store,
		Clock:      application.SystemClock{},
		Logger:     slog.Default(),
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.Logging)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	if cfg.RateLimit.Capacity > 0 && cfg.RateLimit.RefillRate > 0 {
		mux.Use(middleware.RateLimit(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	}

	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.ReadinessHandler)
	mux.Get("/health/full", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"storage":  middleware.CheckFunc(store.Check),
	}))
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(svc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dockquery/dockquery/internal/api"
	"github.com/dockquery/dockquery/internal/auth"
	"github.com/dockquery/dockquery/internal/config"
	"github.com/dockquery/dockquery/internal/dbexec"
	"github.com/dockquery/dockquery/internal/genai"
	"github.com/dockquery/dockquery/internal/observability"
	"github.com/dockquery/dockquery/internal/pipeline"
	"github.com/dockquery/dockquery/internal/schema"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv("dockquery-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	db, err := dbexec.Open(context.Background(), dbexec.DBConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	describer := schema.NewPostgresDescriber(db)
	var activeDescriber schema.Describer = describer
	if cfg.Schema.CacheTTL > 0 {
		activeDescriber = schema.NewCached(describer, cfg.Schema.CacheTTL)
	}

	generator, err := newGenerator(cfg)
	if err != nil {
		logger.Error("failed to initialize generation backend", slog.Any("error", err))
		os.Exit(1)
	}

	executor := dbexec.NewPostgresExecutor(db)
	questionPipeline, err := pipeline.New(activeDescriber, generator, executor, pipeline.Config{
		DefaultLimit:      cfg.Pipeline.DefaultLimit,
		UnlimitedRowCap:   cfg.Pipeline.UnlimitedRowCap,
		SummarySampleRows: cfg.Pipeline.SummarySampleRows,
	}, logger)
	if err != nil {
		logger.Error("failed to build question pipeline", slog.Any("error", err))
		os.Exit(1)
	}

	deps := api.Dependencies{
		Logger:            logger,
		Pipeline:          questionPipeline,
		Schema:            activeDescriber,
		Readiness:         api.CombineReadinessChecks(describer.HealthCheck),
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("provider", string(cfg.AI.Provider)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

func newGenerator(cfg config.Config) (genai.Generator, error) {
	switch cfg.AI.Provider {
	case config.ProviderOpenAI:
		return genai.NewOpenAIGenerator(genai.OpenAIConfig{
			BaseURL:     cfg.AI.BaseURL,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		})
	case config.ProviderOllama:
		return genai.NewOllamaGenerator(genai.OllamaConfig{
			BaseURL:     cfg.AI.BaseURL,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported AI provider: %q", cfg.AI.Provider)
	}
}

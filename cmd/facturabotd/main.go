package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"facturabot/internal/catalog"
	"facturabot/internal/common"
	"facturabot/internal/docgen"
	"facturabot/internal/export"
	"facturabot/internal/llm/ollama"
	"facturabot/internal/parser"
	"facturabot/internal/pipeline"
	"facturabot/internal/repository"
	"facturabot/internal/server"
	"facturabot/internal/twilio"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	products := repository.NewProductRepository(db, logger)
	invoices := repository.NewInvoiceRepository(db, logger)

	llmClient := ollama.NewClient(ollama.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	resolver := catalog.NewResolver(products, catalog.DefaultMatchPolicy(), logger)
	pipe := pipeline.New(logger, llmClient, llmClient, parser.New(logger), resolver)

	sender := twilio.NewClient(twilio.Config{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		FromNumber: cfg.Twilio.FromNumber,
		TestMode:   cfg.Twilio.TestMode,
		Timeout:    cfg.Twilio.Timeout,
	}, logger)

	srv := server.New(logger, pipe, products, invoices,
		docgen.NewGenerator(cfg.Docs.OutputDir, nil, logger),
		export.NewService(invoices, logger),
		sender, cfg.Server.BaseURL, cfg.Docs.OutputDir)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr, "test_mode", cfg.Twilio.TestMode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("stopped")
}

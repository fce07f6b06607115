package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"facturabot/internal/catalog"
	"facturabot/internal/common"
	"facturabot/internal/entity"
	"facturabot/internal/llm/ollama"
	"facturabot/internal/parser"
	"facturabot/internal/pipeline"
	"facturabot/internal/repository"
)

// One-shot runner: feeds a single message through the understanding pipeline
// and prints the result as JSON. Useful for trying prompts and patterns
// without Twilio in the loop.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: facturabot <mensaje>")
		os.Exit(2)
	}
	text := strings.Join(os.Args[1:], " ")

	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := repository.Open(ctx, repository.Config{
		DSN:         cfg.Database.DSN,
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	llmClient := ollama.NewClient(ollama.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	products := repository.NewProductRepository(db, logger)
	resolver := catalog.NewResolver(products, catalog.DefaultMatchPolicy(), logger)
	pipe := pipeline.New(logger, llmClient, llmClient, parser.New(logger), resolver)

	res := pipe.Run(ctx, entity.Message{Text: text, Sender: "cli"})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gitdocai/gitdoc/internal/adapter/ai"
	"github.com/gitdocai/gitdoc/internal/adapter/blob"
	"github.com/gitdocai/gitdoc/internal/adapter/extractor"
	"github.com/gitdocai/gitdoc/internal/adapter/store"
	"github.com/gitdocai/gitdoc/internal/handler"
	"github.com/gitdocai/gitdoc/internal/service"
	"github.com/gitdocai/gitdoc/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting GitDoc",
		"port", cfg.Port,
		"extractor", cfg.ExtractorURL,
		"ollama_chat", cfg.OllamaChatURL,
		"batch_size", cfg.SummaryBatchSize,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	if err := pgStore.Migrate(context.Background()); err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	ollamaAI := ai.NewOllamaProvider(ai.OllamaConfig{
		BaseURL: cfg.OllamaChatURL,
		Model:   cfg.OllamaChatModel,
		Token:   cfg.OllamaChatToken,
	})
	extractorClient := extractor.NewHTTPClient(cfg.ExtractorURL)

	blobStore, err := blob.NewLocalStore(cfg.ExportDir)
	if err != nil {
		slog.Error("failed to prepare export dir", "error", err)
		os.Exit(1)
	}

	// ── Services ─────────────────────────────────────────────────────────
	coordinator := service.NewCoordinator(pgStore, pgStore, extractorClient)
	ingestService := service.NewIngestService(pgStore, pgStore, pgStore, cfg.JiraBaseURL)
	summarizer := service.NewSummarizer(pgStore, ollamaAI, cfg.SummaryBatchSize, cfg.SummaryCallDelay, cfg.SummaryMaxFiles)
	exporterService := service.NewExporter(pgStore, pgStore, pgStore, blobStore, ollamaAI, cfg.NarrativeMaxSamples)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Routes ───────────────────────────────────────────────────────────
	api := app.Group("/api/v1")

	handler.NewRepoHandler(pgStore).Register(api)
	handler.NewJobHandler(coordinator).Register(api)
	handler.NewCommitHandler(pgStore).Register(api)
	handler.NewSummaryHandler(summarizer).Register(api)
	handler.NewExportHandler(exporterService).Register(api)
	handler.NewIngestHandler(ingestService).Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

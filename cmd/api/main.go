package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"hragent/cv-ranker/internal/config"
	"hragent/cv-ranker/internal/handlers"
	"hragent/cv-ranker/internal/logger"
	"hragent/cv-ranker/internal/repositories"
	"hragent/cv-ranker/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// The weights are the most consequential tunable; a bad override
	// must not serve a single request.
	if err := cfg.Pipeline.Weights.Validate(); err != nil {
		zlog.Fatalw("invalid ranking weights", "error", err)
	}

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatalw("failed to initialize database", "error", err)
	}
	rankingRepo := repositories.NewRankingRepository(db)
	zlog.Info("database initialized")

	// Initialize Gemini
	geminiService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.EmbedModel,
		zlog,
	)
	if err != nil {
		zlog.Fatalw("failed to initialize Gemini", "error", err)
	}
	zlog.Info("Gemini initialized")

	// Initialize Qdrant; a dimension mismatch is fatal at startup, not
	// a per-request error.
	vectorStore, err := services.NewQdrantStore(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		zlog,
	)
	if err != nil {
		zlog.Fatalw("failed to initialize Qdrant", "error", err)
	}
	if err := vectorStore.EnsureCollection(context.Background(), cfg.Pipeline.EmbeddingDimension); err != nil {
		zlog.Fatalw("failed to initialize Qdrant collection", "error", err)
	}
	zlog.Info("Qdrant initialized")

	// Initialize pipeline services
	chunker := services.NewTextChunker(cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)
	extractor := services.NewDocumentExtractor(zlog)
	indexer := services.NewVectorIndexer(chunker, geminiService, vectorStore, cfg.Pipeline.UpsertBatchSize, zlog)
	scorer := services.NewSemanticScorer(geminiService, cfg.Pipeline.SemanticMaxChars, zlog)
	analyzer := services.NewAnalysisService(
		geminiService,
		cfg.Pipeline.AnalysisMaxChars,
		cfg.Pipeline.AnalysisTimeout,
		cfg.Pipeline.RetryMaxAttempts,
		zlog,
	)
	engine := services.NewRankingEngine(analyzer, cfg.Pipeline.Weights, zlog)

	sessionManager, err := services.NewSessionManager(cfg.Session.BaseDir, zlog)
	if err != nil {
		zlog.Fatalw("failed to initialize session manager", "error", err)
	}
	zlog.Info("pipeline services initialized")

	// Start the age sweep that reclaims sessions skipped by explicit cleanup
	ctx := context.Background()
	sweeper := services.NewSessionSweeper(
		sessionManager,
		indexer,
		rankingRepo,
		cfg.Session.MaxAge,
		cfg.Session.SweepInterval,
		zlog,
	)
	sweeper.Start(ctx)

	// Initialize handlers
	rankHandler := handlers.NewRankHandler(
		sessionManager,
		extractor,
		indexer,
		scorer,
		engine,
		rankingRepo,
		cfg.Storage.MaxFileSize,
		cfg.Storage.MaxCVCount,
		zlog,
	)
	sessionHandler := handlers.NewSessionHandler(sessionManager, indexer, rankingRepo, zlog)
	requirementsHandler := handlers.NewRequirementsHandler(analyzer)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CV Ranker API",
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * cfg.Storage.MaxCVCount,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/rank", rankHandler.HandleRank)
	api.Post("/requirements", requirementsHandler.HandleExtract)
	api.Get("/result/:session_id", sessionHandler.HandleGetResult)
	api.Get("/download/:session_id/:filename", sessionHandler.HandleDownload)
	api.Delete("/session/:session_id", sessionHandler.HandleDeleteSession)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Ranker API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/rank",
				"POST /api/v1/requirements",
				"GET /api/v1/result/:session_id",
				"GET /api/v1/download/:session_id/:filename",
				"DELETE /api/v1/session/:session_id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		sweeper.Stop()
		if err := app.Shutdown(); err != nil {
			zlog.Errorw("server forced to shutdown", "error", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Infow("server starting", "addr", addr)

	if err := app.Listen(addr); err != nil {
		zlog.Fatalw("failed to start server", "error", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/meetingledger/ledger/pkg/validator"

	"github.com/meetingledger/ledger/internal/adapter/handler"
	"github.com/meetingledger/ledger/internal/adapter/repository"
	"github.com/meetingledger/ledger/internal/infrastructure/cache"
	"github.com/meetingledger/ledger/internal/infrastructure/database"
	"github.com/meetingledger/ledger/internal/infrastructure/storage"
	"github.com/meetingledger/ledger/internal/usecase/extraction"
	"github.com/meetingledger/ledger/internal/usecase/insights"
	"github.com/meetingledger/ledger/internal/usecase/meetings"
	"github.com/meetingledger/ledger/internal/usecase/rag"
	pkgai "github.com/meetingledger/ledger/pkg/ai"
	"github.com/meetingledger/ledger/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Account-ID", "X-Request-ID"},
		AllowCredentials: true,
	}))

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Apply migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate in CI/CD.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("DB_AUTO_MIGRATE is enabled in production. Disable it and manage schema with sql-migrate.")
		}
		log.Println("🔄 Applying migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping startup migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize cache. Redis is preferred; fall back to the in-process
	// store so a missing Redis never blocks local development.
	log.Println("📦 Connecting to Redis...")
	var store cache.Store
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Printf("⚠️  Redis unavailable (%v); falling back to in-memory cache", err)
		store = cache.NewMemoryStore()
	} else {
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient)
	}

	// Initialize transcript archive
	log.Println("🗄️  Initializing transcript archive...")
	archive, err := storage.NewTranscriptArchive(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize transcript archive: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)
	runRepo := repository.NewExtractionRunRepository(db)
	insightRepo := repository.NewInsightRepository(db)
	chunkRepo := repository.NewChunkRepository(db)

	// Initialize AI components
	log.Println("🤖 Initializing AI components...")
	embedder, err := pkgai.NewOpenAIEmbedder(cfg.OpenAI)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}

	// Both synthesis backends are wired so queries can pick one per
	// request; a backend that cannot be configured is left nil and the
	// service falls back to the other.
	var remoteGen, localGen pkgai.Generator
	if openaiGen, genErr := pkgai.NewOpenAIGenerator(cfg.OpenAI); genErr != nil {
		log.Printf("⚠️  OpenAI synthesis unavailable: %v", genErr)
	} else {
		remoteGen = openaiGen
	}
	if ollamaGen, genErr := pkgai.NewOllamaGenerator(cfg.Ollama); genErr != nil {
		log.Printf("⚠️  Ollama synthesis unavailable: %v", genErr)
	} else {
		localGen = ollamaGen
	}
	if remoteGen == nil && localGen == nil {
		log.Fatal("No answer synthesis backend could be configured")
	}

	var extractor extraction.Extractor
	if cfg.Extraction.Backend == "rules" {
		log.Println("⚠️  Extraction running in rules mode (no LLM calls)")
		extractor = extraction.NewRuleExtractor()
	} else {
		generator, err := pkgai.NewOpenAIGenerator(cfg.OpenAI)
		if err != nil {
			log.Fatalf("Failed to initialize extraction generator: %v", err)
		}
		extractor = extraction.NewLLMExtractor(generator)
	}

	// Initialize services
	log.Println("✨ Initializing services...")
	insightService := insights.NewService(meetingRepo, insightRepo, runRepo, store, cfg.Alerts, cfg.Scoring, logger)
	meetingService := meetings.NewService(meetingRepo, transcriptRepo, insightRepo, runRepo, archive, logger)
	extractionService := extraction.NewService(
		transcriptRepo,
		runRepo,
		insightRepo,
		extractor,
		insightService,
		cfg.Extraction.MinConfidence,
		cfg.Extraction.Timeout,
		logger,
	)
	ragService := rag.NewService(meetingRepo, transcriptRepo, chunkRepo, embedder, remoteGen, localGen, cfg.RAG, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(
		handler.NewMeetingHandler(meetingService, logger),
		handler.NewExtractionHandler(extractionService, logger),
		handler.NewInsightsHandler(insightService, logger),
		handler.NewRAGHandler(ragService, logger),
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

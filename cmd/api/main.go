package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"paperforge/internal/adapter"
	"paperforge/internal/adapter/aigen"
	"paperforge/internal/bank"
	"paperforge/internal/cache"
	"paperforge/internal/collector"
	"paperforge/internal/config"
	"paperforge/internal/database"
	"paperforge/internal/export"
	"paperforge/internal/handler"
	"paperforge/internal/logger"
	"paperforge/internal/middleware"
	"paperforge/internal/repository"
	"paperforge/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// LLM client
	llm, err := aigen.NewOllamaLLM(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	// Connect to database
	db, err := database.NewSQLXSQLiteDB(cfg.Database.Path)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	appLogger.Info("Successfully connected to SQLite database", zap.String("path", cfg.Database.Path))

	// Question store, optionally wrapped with the redis cache
	var store = repository.NewSQLXQuestionRepository(db)
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		appLogger.Info("Successfully connected to Redis")
		cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
		store = repository.NewCachedQuestionStore(store, cacheAdapter, cfg.Redis.TTL, appLogger)
	} else {
		appLogger.Warn("Redis address not configured, running without cache")
	}

	// Session state
	questionBank := bank.NewBank()
	chunkQueue := bank.NewChunkQueue()
	runLog := bank.NewRunLog()

	// AI adapters
	classifier := aigen.NewLLMClassifier(llm, appLogger)
	planner := aigen.NewLLMTopicPlanner(llm, appLogger)
	generator := aigen.NewLLMTopicGenerator(llm, appLogger)

	// Collectors
	pdfCollector := collector.NewPDFCollector(appLogger)
	scraper := collector.NewScraper(nil, appLogger)

	// Renderers
	rasterRenderer := export.NewRasterRenderer(cfg.Render.FontPath, appLogger)
	pdfRenderer := export.NewPDFRenderer(rasterRenderer, cfg.Render.BrandName, cfg.Render.Tagline, appLogger)
	excelBuilder := export.NewExcelBuilder()

	// Services
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	autoSaver := service.NewAutoSaver(questionBank, store, cfg.Pipeline.AutoSaveThreshold, appLogger)
	pipeline := service.NewCleaningPipeline(chunkQueue, questionBank, runLog, classifier, cfg.Pipeline.ChunkDelay, appLogger)
	pipeline.SetAppendHook(autoSaver.Observe)
	topicGen := service.NewTopicGenService(planner, generator, cfg.Pipeline.TopicBatchSize, rng, appLogger)
	selector := service.NewSelector()
	paperService := service.NewPaperService(questionBank, selector, pdfRenderer, excelBuilder, rng, appLogger)
	bulkService := service.NewBulkService(questionBank, store, selector, pdfRenderer, rng, appLogger)

	// Handlers
	ingestHandler := handler.NewIngestHandler(chunkQueue, runLog, pdfCollector, scraper, pipeline)
	bankHandler := handler.NewBankHandler(questionBank, chunkQueue, runLog, store, autoSaver)
	generationHandler := handler.NewGenerationHandler(topicGen, questionBank, runLog, autoSaver)
	paperHandler := handler.NewPaperHandler(paperService, bulkService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    50 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", MaxAge: 300}))
	app.Use(recover.New())

	// API group
	apiGroup := app.Group("/api")

	// Ingestion routes
	apiGroup.Post("/chunks", ingestHandler.AddChunks)
	apiGroup.Post("/chunks/pdf", ingestHandler.UploadPDF)
	apiGroup.Post("/chunks/scrape", ingestHandler.ScrapeURLs)
	apiGroup.Get("/chunks", ingestHandler.GetQueue)
	apiGroup.Post("/chunks/:id/requeue", ingestHandler.RequeueChunk)
	apiGroup.Post("/pipeline/run", ingestHandler.RunPipeline)

	// Generation routes
	apiGroup.Post("/generate/topics", generationHandler.GenerateTopics)

	// Bank routes
	apiGroup.Post("/questions", bankHandler.AddQuestions)
	apiGroup.Get("/bank", bankHandler.GetBank)
	apiGroup.Post("/bank/save", bankHandler.SaveBank)
	apiGroup.Post("/bank/load", bankHandler.LoadStream)
	apiGroup.Get("/bank/csv", bankHandler.DownloadBankCSV)
	apiGroup.Get("/logs/csv", bankHandler.DownloadLogsCSV)
	apiGroup.Get("/streams", bankHandler.ListStreams)
	apiGroup.Delete("/session", bankHandler.ClearSession)

	// Paper routes
	apiGroup.Post("/papers/pdf", paperHandler.GeneratePaper)
	apiGroup.Post("/papers/xlsx", paperHandler.GenerateWorkbook)
	apiGroup.Post("/papers/bulk/streams", paperHandler.BulkStreams)
	apiGroup.Post("/papers/bulk/sets", paperHandler.BulkSets)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Persist whatever the session still holds before exiting.
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if err := autoSaver.Flush(flushCtx); err != nil {
		appLogger.Error("Failed to flush bank on shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited gracefully")
}

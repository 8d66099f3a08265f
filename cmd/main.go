package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"onboarding-assistant/internal/ai"
	"onboarding-assistant/internal/config"
	"onboarding-assistant/internal/logger"
	"onboarding-assistant/internal/telemetry"
	"onboarding-assistant/middleware"
	"onboarding-assistant/routes"
	"onboarding-assistant/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("onboarding-assistant", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("Tracing disabled", "error", err)
		} else {
			defer shutdown()
		}
	}

	provider, err := ai.NewProvider(cfg)
	if err != nil {
		log.Fatal("Failed to create AI provider:", err)
	}
	defer provider.Close()

	// Service wiring; everything is constructed here and passed down.
	store := services.NewVectorStore()
	chunker := services.NewChunker(cfg.MaxChunkSize, cfg.ChunkOverlap)
	processor := services.NewDocumentProcessor(chunker, provider, cfg.EmbedConcurrency)
	rag := services.NewRAGService(store, processor, provider)
	corpus := services.NewCorpusLoader(rag, services.OnboardingDocuments())
	chat := services.NewChatService(corpus, provider, cfg.SessionTTL, cfg.MaxSessions)

	if err := chat.StartEvictionLoop(cfg.SessionSweep); err != nil {
		log.Fatal("Failed to start session eviction:", err)
	}
	defer chat.StopEvictionLoop()

	// Warm the corpus in the background; requests arriving before it
	// finishes get provisional guidance instead of blocking.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := corpus.EnsureLoaded(ctx); err != nil {
			logger.Error("Initial corpus load failed", "error", err)
		}
	}()

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		stats := store.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":        "healthy",
			"timestamp":     time.Now(),
			"corpus_loaded": corpus.IsLoaded(),
			"documents":     stats.Documents,
			"chunks":        stats.Chunks,
			"sessions":      chat.SessionCount(),
		})
	})

	routes.SetupAssistantRoutes(router, cfg, routes.AssistantDeps{
		Corpus: corpus,
		Chat:   chat,
		Store:  store,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

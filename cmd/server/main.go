package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bencullenn/chronicle-voice/internal/config"
	"github.com/bencullenn/chronicle-voice/internal/handler"
	"github.com/bencullenn/chronicle-voice/internal/llm"
	"github.com/bencullenn/chronicle-voice/internal/repository"
	"github.com/bencullenn/chronicle-voice/internal/service"
	"github.com/bencullenn/chronicle-voice/internal/vapi"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting Chronicle sync service...")

	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Voice provider client
	voiceClient, err := vapi.NewClient(vapi.Config{
		APIKey:  cfg.Voice.APIKey,
		BaseURL: cfg.Voice.BaseURL,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize voice client", zap.Error(err))
	}

	// Narrative cleaner (multi-provider with rate limiting and failover)
	generator, err := llm.NewMultiProviderClient(llm.MultiProviderConfig{
		Providers:   cfg.Providers,
		MaxFailures: cfg.MaxFailuresBeforeSwitch,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize narrative providers", zap.Error(err))
	}
	defer generator.Close()

	// Entry repository
	repo, err := newRepository(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	// Services
	syncer := service.NewSyncer(voiceClient, repo, generator, logger)
	dialer := service.NewDialer(voiceClient, service.DialerConfig{
		NormalAssistantID:    cfg.Voice.Assistants.Normal,
		SeveranceAssistantID: cfg.Voice.Assistants.Severance,
		PhoneNumberID:        cfg.Voice.PhoneNumberID,
		DefaultNumber:        cfg.Voice.DefaultNumber,
	}, logger)

	// Initialize HTTP handler
	apiHandler := handler.NewHandler(syncer, dialer, logger)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register routes
	apiHandler.RegisterRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("Server starting", zap.String("address", serverAddr))

	// Graceful shutdown
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	modelInfo := generator.GetModelInfo()
	modelName := "unknown"
	if m, ok := modelInfo["model"].(string); ok {
		modelName = m
	}

	logger.Info("Chronicle sync service is running",
		zap.String("port", cfg.Server.Port),
		zap.String("model", modelName),
		zap.String("database", cfg.Database.Type))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newRepository builds the entry store selected by the config.
func newRepository(cfg *config.Config, logger *zap.Logger) (repository.EntryRepository, error) {
	switch cfg.Database.Type {
	case "postgres":
		return repository.NewPostgresRepository(cfg.Database.DSN, logger)
	case "supabase":
		return repository.NewSupabaseRepository(cfg.Database.URL, cfg.Database.Key, logger)
	case "sqlite":
		os.MkdirAll("./data", 0755)
		return repository.NewSQLiteRepository(cfg.Database.Path, logger)
	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.Database.Type)
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/danarifki/temani/adapters/image"
	"github.com/danarifki/temani/adapters/llm"
	"github.com/danarifki/temani/adapters/prefs"
	"github.com/danarifki/temani/domain/repositories"
	"github.com/danarifki/temani/internal/api"
	"github.com/danarifki/temani/internal/config"
	"github.com/danarifki/temani/internal/websocket"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize adapters. A literal "mock" credential selects the scripted
	// local adapters for development without provider access.
	var (
		live   repositories.LiveModel
		images repositories.ImageGenerator
	)
	if cfg.GeminiAPIKey == "mock" {
		live = llm.NewMockLive(logger)
		images = image.NewMockImages()
	} else {
		geminiLive, err := llm.NewGeminiLive(ctx, cfg.GeminiAPIKey, logger)
		if err != nil {
			logger.Fatal("Failed to initialize realtime model client", zap.Error(err))
		}
		geminiImages, err := image.NewGeminiImages(ctx, cfg.GeminiAPIKey, logger)
		if err != nil {
			logger.Fatal("Failed to initialize image client", zap.Error(err))
		}
		live = geminiLive
		images = geminiImages
	}
	store, err := prefs.NewBadgerStore(prefs.Options{Dir: cfg.DataDir}, logger)
	if err != nil {
		logger.Fatal("Failed to open preference store", zap.Error(err))
	}
	defer store.Close()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize WebSocket hub
	hub := websocket.NewHub(live, images, store, logger)
	go hub.Run()

	reaper := websocket.NewSessionReaper(hub, logger)
	reaper.Start()

	// Initialize API routes
	api.InitRoutes(e, hub, store, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	reaper.Stop()
	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"articles_api/internal/config"
	"articles_api/internal/db"
	"articles_api/internal/logger"
	"articles_api/internal/middleware"
	"articles_api/internal/server"
)

func main() {
	configPath := os.Getenv("ARTICLES_CONFIG")
	if configPath == "" {
		configPath = "config.json"
	}

	// Загрузка конфигурации
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Init("info")
		logger.Log.Fatalf("Config load error: %v", err)
	}

	logger.Init(cfg.LogLevel)
	defer logger.Log.Info("Application stopped")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация БД
	database, err := db.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("DB connection error: %v", err)
	}
	defer database.Close()

	if err := database.Ping(ctx); err != nil {
		logger.Log.Fatalf("DB ping error: %v", err)
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx); err != nil {
			logger.Log.Fatalf("DB migration error: %v", err)
		}
	}

	// HTTP сервер
	srv := server.NewServer(database)
	handler := middleware.Chain(srv.Routes(),
		middleware.RequestID,
		middleware.Logging,
		middleware.Metrics,
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	go func() {
		logger.Log.Infof("Starting HTTP server on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")
	ctxShutdown, cancelShutdown := context.WithTimeout(ctx, time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		logger.Log.Errorf("Forced shutdown: %v", err)
	}
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gitSambhal/milky-way-grocery-app/internal/config"
	apphttp "github.com/gitSambhal/milky-way-grocery-app/internal/http"
	"github.com/gitSambhal/milky-way-grocery-app/internal/insight"
	"github.com/gitSambhal/milky-way-grocery-app/internal/ledger"
	"github.com/gitSambhal/milky-way-grocery-app/internal/storage"
	"github.com/gitSambhal/milky-way-grocery-app/internal/storage/memory"
	"github.com/gitSambhal/milky-way-grocery-app/internal/storage/sqlite"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var blobs storage.Blobs
	switch cfg.DataBackend {
	case "sqlite":
		db, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer db.Close()
		blobs = db
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		blobs = memory.New()
		logger.Info("Initialized memory backend")
	}

	store := ledger.NewStore(blobs)
	analyzer := insight.New(cfg.GeminiAPIKey,
		insight.WithModel(cfg.GeminiModel),
		insight.WithTimeout(cfg.InsightTimeout))

	srv := apphttp.NewServer(":"+cfg.Port, store, analyzer, cfg.InsightTimeout)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 60 * time.Second // insight call may take a while
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting milkyway server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

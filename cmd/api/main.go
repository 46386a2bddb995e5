// Package main contains the entrypoint for the dishpatch API server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/dishpatch/dishpatch/internal/config"
	"github.com/dishpatch/dishpatch/internal/gemini"
	"github.com/dishpatch/dishpatch/internal/handler"
	"github.com/dishpatch/dishpatch/internal/logger"
	"github.com/dishpatch/dishpatch/internal/moderation"
	"github.com/dishpatch/dishpatch/internal/server"
	"github.com/dishpatch/dishpatch/internal/service"
	"github.com/dishpatch/dishpatch/internal/yelp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// model client, search client, pipeline service, HTTP server), handles
// graceful shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	yelpClient := yelp.NewClient(cfg.Yelp, log)
	gate := moderation.NewGate(gemClient, log)
	searchService := service.NewSearchService(gate, gemClient, yelpClient, log)
	searchHandler := handler.NewSearchHandler(searchService, cfg.Search, log)
	srv := server.New(cfg.Server, searchHandler, log)

	log.Info("Starting server...")
	runErr := srv.Run(ctx) // Run blocks until context is cancelled or an error occurs
	log.Info("Server run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Server stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Server stopped gracefully.")
	return 0
}

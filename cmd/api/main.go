package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/sales-dashboard/internal/api"
	"github.com/dvloznov/sales-dashboard/internal/api/handlers"
	"github.com/dvloznov/sales-dashboard/internal/config"
	infraBQ "github.com/dvloznov/sales-dashboard/internal/infra/bigquery"
	"github.com/dvloznov/sales-dashboard/internal/infra/gcs"
	"github.com/dvloznov/sales-dashboard/internal/insight"
	"github.com/dvloznov/sales-dashboard/internal/loader"
	"github.com/dvloznov/sales-dashboard/internal/logger"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logger.WithFields(logger.NewWithLevel(level), map[string]interface{}{
		"service": "sales-dashboard",
	})

	// Amounts are numbers in the JSON API.
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize data sources
	objects := gcs.NewObjectReader()
	defer objects.Close()

	cache := loader.NewCache(&loader.Resolver{
		Objects: objects,
		Tables:  infraBQ.NewTableReader(),
	}, log)
	datasets := handlers.NewDatasets(cache)

	ctx := context.Background()

	if cfg.DataPath != "" {
		entry, err := cache.Load(ctx, cfg.DataPath)
		if err != nil {
			log.Warn().Err(err).Str("source", cfg.DataPath).Msg("Default dataset not loaded - upload a report to begin")
		} else {
			datasets.SetDefault(entry.ID)
		}
	}

	// Initialize insight service
	var summarizer handlers.Summarizer
	if cfg.HasCredential() {
		gen := insight.NewGeminiGenerator(cfg.APIKey, cfg.Model)
		summarizer = insight.NewService(gen, cfg.InsightTimeout, log)
	} else {
		log.Warn().Msg("No GEMINI_API_KEY or GOOGLE_API_KEY set - insights will be disabled")
	}

	// Initialize handlers
	handler := api.NewRouter(api.Handlers{
		Datasets:  handlers.NewDatasetsHandler(datasets, cfg.MaxUploadBytes, log),
		Dashboard: handlers.NewDashboardHandler(datasets, log),
		Insights:  handlers.NewInsightsHandler(datasets, summarizer, log),
	}, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.InsightTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

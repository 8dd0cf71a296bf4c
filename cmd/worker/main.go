// Package main provides the entrypoint for the People Registry worker.
// The worker persists audit events published by the API and sweeps
// expired deletion confirmation tokens.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/peopleregistry/peopleregistry/internal/audit"
	"github.com/peopleregistry/peopleregistry/internal/database"
	"github.com/peopleregistry/peopleregistry/internal/deletion"
	"github.com/peopleregistry/peopleregistry/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "peopleregistry-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting the People Registry worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	tokenStore := deletion.NewPostgresTokenStore(pool)

	sweepInterval := worker.DefaultSweepInterval
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		parsed, parseErr := time.ParseDuration(raw)
		if parseErr != nil {
			log.Fatal().Err(parseErr).Str("value", raw).Msg("invalid SWEEP_INTERVAL")
		}
		sweepInterval = parsed
	}

	sweepJob := worker.NewSweepJob(worker.SweepJobConfig{
		Tokens:   tokenStore,
		Interval: sweepInterval,
		Logger:   log,
	})

	// Periodic sweep
	go sweepJob.Start(ctx)

	// Pub/Sub consumer: persists audit events and handles job messages
	pubsubProject := os.Getenv("PUBSUB_PROJECT_ID")
	subscriptionName := os.Getenv("AUDIT_SUBSCRIPTION")
	if pubsubProject != "" && subscriptionName != "" {
		handler, handlerErr := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        pubsubProject,
			SubscriptionName: subscriptionName,
			Sink:             audit.NewPostgresSink(pool),
			SweepJob:         sweepJob,
			Logger:           log,
		})
		if handlerErr != nil {
			log.Fatal().Err(handlerErr).Msg("failed to initialize pubsub handler")
		}
		defer func() {
			if closeErr := handler.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub handler")
			}
		}()

		go func() {
			if receiveErr := handler.Start(ctx); receiveErr != nil && ctx.Err() == nil {
				log.Fatal().Err(receiveErr).Msg("pubsub receive failed")
			}
		}()
	} else {
		log.Warn().Msg("pubsub not configured - only running the token sweeper")
	}

	// Create HTTP server for health checks
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// Package main provides the entrypoint for the People Registry API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/peopleregistry/peopleregistry/internal/api"
	"github.com/peopleregistry/peopleregistry/internal/api/middleware"
	"github.com/peopleregistry/peopleregistry/internal/audit"
	"github.com/peopleregistry/peopleregistry/internal/auth"
	"github.com/peopleregistry/peopleregistry/internal/database"
	"github.com/peopleregistry/peopleregistry/internal/deletion"
	"github.com/peopleregistry/peopleregistry/internal/notify"
	"github.com/peopleregistry/peopleregistry/internal/person"
	"github.com/peopleregistry/peopleregistry/internal/project"
	"github.com/peopleregistry/peopleregistry/internal/subscription"
	"github.com/peopleregistry/peopleregistry/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "peopleregistry-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting the People Registry API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize auth repositories and service
	authUserRepo := auth.NewPostgresUserRepository(pool)
	authRefreshRepo := auth.NewPostgresRefreshTokenRepository(pool)

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})

	// Initialize domain repositories and services
	personRepo := person.NewPostgresRepository(pool)
	personService := person.NewService(personRepo)

	authService := auth.NewService(auth.ServiceConfig{
		JWTService:  jwtService,
		UserRepo:    authUserRepo,
		RefreshRepo: authRefreshRepo,
		People:      personService,
	})
	log.Info().Msg("auth service initialized")

	projectRepo := project.NewPostgresRepository(pool)
	projectService := project.NewService(projectRepo)

	subscriptionRepo := subscription.NewPostgresRepository(pool)
	subscriptionService := subscription.NewService(subscriptionRepo, personRepo, projectRepo)
	log.Info().Msg("registry services initialized")

	// Audit events go to Pub/Sub when configured; the worker persists
	// them. Without Pub/Sub they are logged directly.
	var auditSink audit.Sink = audit.NewLogSink(log)
	pubsubProject := os.Getenv("PUBSUB_PROJECT_ID")
	auditTopic := os.Getenv("AUDIT_TOPIC")
	if pubsubProject != "" && auditTopic != "" {
		pubsubSink, sinkErr := audit.NewPubSubSink(ctx, audit.PubSubSinkConfig{
			ProjectID: pubsubProject,
			TopicName: auditTopic,
		})
		if sinkErr != nil {
			log.Fatal().Err(sinkErr).Msg("failed to initialize audit sink")
		}
		defer func() {
			if closeErr := pubsubSink.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close audit sink")
			}
		}()
		auditSink = pubsubSink
		log.Info().Str("topic", auditTopic).Msg("audit events publishing to pubsub")
	} else {
		log.Warn().Msg("pubsub not configured - audit events will only be logged")
	}

	// Mail notifications (optional)
	var notifier deletion.Notifier
	if apiKey := os.Getenv("MAILER_API_KEY"); apiKey != "" {
		notifier = notify.NewClient(notify.ClientConfig{
			BaseURL:     os.Getenv("MAILER_BASE_URL"),
			APIKey:      apiKey,
			FromAddress: os.Getenv("MAILER_FROM_ADDRESS"),
		})
		log.Info().Msg("mail client initialized")
	} else {
		log.Warn().Msg("mailer not configured - deletion notifications disabled")
	}

	deletionService := deletion.NewService(deletion.Config{
		People:   personRepo,
		Subs:     subscriptionRepo,
		Projects: projectRepo,
		Tokens:   deletion.NewPostgresTokenStore(pool),
		Audit:    auditSink,
		Notifier: notifier,
		Logger:   log,
	})
	log.Info().Msg("deletion service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:             Version,
		BuildTime:           BuildTime,
		Logger:              log,
		ServiceName:         serviceName,
		Metrics:             metrics,
		AuthService:         authService,
		PersonService:       personService,
		ProjectService:      projectService,
		SubscriptionService: subscriptionService,
		DeletionService:     deletionService,
		DBPing:              pool.Ping,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

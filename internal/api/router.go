// Package api provides the HTTP API for the People Registry.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/peopleregistry/peopleregistry/internal/api/handler"
	"github.com/peopleregistry/peopleregistry/internal/api/middleware"
	"github.com/peopleregistry/peopleregistry/internal/auth"
	"github.com/peopleregistry/peopleregistry/internal/deletion"
	"github.com/peopleregistry/peopleregistry/internal/person"
	"github.com/peopleregistry/peopleregistry/internal/project"
	"github.com/peopleregistry/peopleregistry/internal/resilience"
	"github.com/peopleregistry/peopleregistry/internal/subscription"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version             string
	BuildTime           string
	Logger              zerolog.Logger
	ServiceName         string
	Metrics             *middleware.Metrics
	AuthService         *auth.Service
	PersonService       *person.Service
	ProjectService      *project.Service
	SubscriptionService *subscription.Service
	DeletionService     *deletion.Service

	// DBPing reports database connectivity for readiness checks.
	// May be nil when running without a database.
	DBPing handler.Pinger

	// ProviderRegistry reports external provider health on the status
	// endpoint. Defaults to resilience.GlobalRegistry.
	ProviderRegistry *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "peopleregistry-api"
	}

	registry := cfg.ProviderRegistry
	if registry == nil {
		registry = resilience.GlobalRegistry
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DBPing, registry)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	personHandler := handler.NewPersonHandler(cfg.PersonService, cfg.DeletionService)
	projectHandler := handler.NewProjectHandler(cfg.ProjectService)
	subscriptionHandler := handler.NewSubscriptionHandler(cfg.SubscriptionService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)           // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			// logout-all requires authentication
			r.With(authMiddleware).Post("/logout-all", authHandler.LogoutAll)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// People endpoints (authenticated) - user-based rate limiting
		r.Route("/people", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user
			r.Get("/", personHandler.List)
			r.Post("/", personHandler.Create)
			r.Route("/{personId}", func(r chi.Router) {
				r.Get("/", personHandler.Get)
				r.Patch("/", personHandler.Update)
				r.Get("/subscriptions", subscriptionHandler.ListForPerson)

				// Deletion is a two-step workflow: initiate issues a
				// confirmation token, DELETE consumes it.
				r.With(expensiveRateLimit).Post("/delete/initiate", personHandler.InitiateDeletion)
				r.With(expensiveRateLimit).Delete("/", personHandler.ConfirmDeletion)
			})
		})

		// Project endpoints (authenticated) - user-based rate limiting
		r.Route("/projects", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Get("/", projectHandler.List)
			r.Post("/", projectHandler.Create)
			r.Route("/{projectId}", func(r chi.Router) {
				r.Get("/", projectHandler.Get)
				r.Patch("/", projectHandler.Update)
				r.Delete("/", projectHandler.Delete)
			})
		})

		// Subscription endpoints (authenticated) - user-based rate limiting
		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Get("/", subscriptionHandler.List)
			r.Post("/", subscriptionHandler.Create)
			r.Route("/{subscriptionId}", func(r chi.Router) {
				r.Get("/", subscriptionHandler.Get)
				r.Patch("/", subscriptionHandler.Update)
				r.Delete("/", subscriptionHandler.Delete)
			})
		})
	})

	return r
}

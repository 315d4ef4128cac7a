package router

import (
	"encoding/json"
	"net/http"

	"github.com/epic-events/crm-api/internal/auth"
	"github.com/epic-events/crm-api/internal/config"
	"github.com/epic-events/crm-api/internal/database"
	"github.com/epic-events/crm-api/internal/http/handler"
	"github.com/epic-events/crm-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/epic-events/crm-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	clientHandler   *handler.ClientHandler
	contractHandler *handler.ContractHandler
	eventHandler    *handler.EventHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	clientHandler *handler.ClientHandler,
	contractHandler *handler.ContractHandler,
	eventHandler *handler.EventHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		authHandler:     authHandler,
		userHandler:     userHandler,
		clientHandler:   clientHandler,
		contractHandler: contractHandler,
		eventHandler:    eventHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := http.StatusOK
		overall := "healthy"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes. Resources are addressed by their natural keys:
	// usernames, client name pairs, contract and event titles.
	r.Route("/api/v1", func(r chi.Router) {
		// Public: credential exchange
		r.Post("/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Users
			r.Route("/users", func(r chi.Router) {
				r.Get("/", rt.userHandler.List)
				r.Post("/", rt.userHandler.Create)
				r.Get("/{username}", rt.userHandler.Get)
				r.Put("/{username}", rt.userHandler.Update)
				r.Delete("/{username}", rt.userHandler.Delete)
			})

			// Clients
			r.Route("/client", func(r chi.Router) {
				r.Get("/", rt.clientHandler.List)
				r.Get("/mine", rt.clientHandler.ListMine)
				r.Post("/", rt.clientHandler.Create)
				r.Get("/{firstName}/{lastName}", rt.clientHandler.Get)
				r.Put("/{firstName}/{lastName}", rt.clientHandler.Update)
				r.Delete("/{firstName}/{lastName}", rt.clientHandler.Delete)
			})

			// Contracts
			r.Route("/contract", func(r chi.Router) {
				r.Get("/", rt.contractHandler.List)
				r.Get("/mine", rt.contractHandler.ListMine)
				r.Post("/", rt.contractHandler.Create)
				r.Get("/{title}", rt.contractHandler.Get)
				r.Put("/{title}", rt.contractHandler.Update)
				r.Delete("/{title}", rt.contractHandler.Delete)
			})

			// Events
			r.Route("/event", func(r chi.Router) {
				r.Get("/", rt.eventHandler.List)
				r.Get("/mine", rt.eventHandler.ListMine)
				r.Post("/", rt.eventHandler.Create)
				r.Get("/{title}", rt.eventHandler.Get)
				r.Put("/{title}", rt.eventHandler.Update)
				r.Delete("/{title}", rt.eventHandler.Delete)
			})
		})
	})

	return r
}

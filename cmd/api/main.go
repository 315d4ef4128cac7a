package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epic-events/crm-api/docs"
	"github.com/epic-events/crm-api/internal/auth"
	"github.com/epic-events/crm-api/internal/config"
	"github.com/epic-events/crm-api/internal/database"
	"github.com/epic-events/crm-api/internal/http/handler"
	"github.com/epic-events/crm-api/internal/http/middleware"
	"github.com/epic-events/crm-api/internal/http/router"
	"github.com/epic-events/crm-api/internal/jobs"
	"github.com/epic-events/crm-api/internal/logger"
	"github.com/epic-events/crm-api/internal/policy"
	"github.com/epic-events/crm-api/internal/repository"
	"github.com/epic-events/crm-api/internal/service"
	"github.com/epic-events/crm-api/internal/status"
	"go.uber.org/zap"
)

// @title Epic Events CRM API
// @version 1.0
// @description CRM backend for client, contract and event management with team-based access control

// @contact.name API Support
// @contact.email support@epicevents.example

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Core components
	evaluator := policy.NewEvaluator()
	deriver := status.NewDeriver(nil, log)
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLDuration(), cfg.App.Name)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	contractRepo := repository.NewContractRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Services
	userService := service.NewUserService(userRepo, evaluator, cfg.Auth.BcryptCost, log)
	clientService := service.NewClientService(clientRepo, userRepo, evaluator, log)
	contractService := service.NewContractService(contractRepo, clientRepo, userRepo, evaluator, log)
	eventService := service.NewEventService(db, eventRepo, contractRepo, userRepo, evaluator, deriver, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(issuer, userRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	authHandler := handler.NewAuthHandler(userService, issuer, log)
	userHandler := handler.NewUserHandler(userService, log)
	clientHandler := handler.NewClientHandler(clientService, log)
	contractHandler := handler.NewContractHandler(contractService, log)
	eventHandler := handler.NewEventHandler(eventService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		userHandler,
		clientHandler,
		contractHandler,
		eventHandler,
	)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.EventSweepEnabled {
		scheduler = jobs.NewScheduler(log)
		sweepJob := jobs.NewEventSweepJob(eventService, log, jobs.DefaultSweepTimeout)
		if err := scheduler.AddJob(jobs.EventSweepJobName, cfg.Jobs.EventSweepCron, sweepJob.Run); err != nil {
			log.Error("Failed to register event sweep job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with event sweep job",
				zap.String("cron_expr", cfg.Jobs.EventSweepCron))
		}
	} else {
		log.Info("Event sweep disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheftrack/cheftrack-backend/internal/auth/jwt"
	authhandler "github.com/cheftrack/cheftrack-backend/internal/auth/handler"
	authrepo "github.com/cheftrack/cheftrack-backend/internal/auth/repository"
	authservice "github.com/cheftrack/cheftrack-backend/internal/auth/service"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/consumers"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/events"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/handler"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/repository"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/service"
	"github.com/cheftrack/cheftrack-backend/pkg/cache"
	"github.com/cheftrack/cheftrack-backend/pkg/config"
	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"github.com/cheftrack/cheftrack-backend/pkg/httputil"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/messaging"
	"github.com/cheftrack/cheftrack-backend/pkg/metrics"
	"github.com/cheftrack/cheftrack-backend/pkg/migrate"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "inventory-service"

func main() {
	// A missing .env is fine; real deployments use the environment
	_ = godotenv.Load()

	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment).WithLevel(cfg.Server.LogLevel)
	log.Info().Msg("starting inventory service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migrate.MaybeAutoRun(ctx, cfg, log, db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(reg)
	inventoryMetrics := metrics.NewInventoryMetrics(reg)
	jobMetrics := metrics.NewJobMetrics(reg)

	// Redis is optional; without it barcode lookups go straight to Postgres
	var barcodeCache *repository.BarcodeCache
	var redisClient *cache.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.New(ctx, &cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisClient.Close()
		barcodeCache = repository.NewBarcodeCache(redisClient, cfg.Redis.BarcodeTTL, inventoryMetrics, log)
	}

	// RabbitMQ is optional; without it events are not published and scans are HTTP only
	var rmq *messaging.RabbitMQ
	var publisher *events.InventoryEventPublisher
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err = events.NewInventoryEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	}

	userRepo := authrepo.NewUserRepository(db)
	sessionRepo := authrepo.NewSessionRepository(db)
	jwtManager := jwt.NewManager(&cfg.JWT)
	authService := authservice.NewAuthService(db, userRepo, sessionRepo, jwtManager, log)

	inventoryService := service.NewInventoryService(db, service.Repositories{
		Categories: repository.NewCategoryRepository(db),
		Products:   repository.NewProductRepository(db, barcodeCache),
		Batches:    repository.NewBatchRepository(db),
		UsageLogs:  repository.NewUsageLogRepository(db),
		Stats:      repository.NewStatsRepository(db),
	}, publisher, inventoryMetrics, service.Config{
		DefaultCategory:  cfg.Inventory.DefaultCategory,
		ExpiringSoonDays: cfg.Inventory.ExpiringSoonDays,
		Location:         cfg.Inventory.Location(),
	}, log)

	if rmq != nil {
		scanConsumer, err := consumers.NewScanEventConsumer(rmq, inventoryService, userRepo, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create scan consumer")
		}
		if err := scanConsumer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start scan consumer")
		}
	}

	var notifier *service.ExpiryNotifier
	if cfg.Inventory.ExpiryScanEnabled && publisher != nil {
		notifier = service.NewExpiryNotifier(inventoryService, publisher, cfg.Inventory.ExpiryScanSchedule, jobMetrics, log)
		if err := notifier.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start expiry notifier")
		}
	}

	requireAuth := authhandler.RequireAuth(jwtManager, authService, log)

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(httpMetrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":   "healthy",
			"service":  serviceName,
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			status["rabbitmq"] = rmq.Health()
		}
		if redisClient != nil {
			status["redis"] = redisClient.Health(r.Context())
		}
		httputil.JSON(w, http.StatusOK, status)
	})

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler(reg))
	}

	authhandler.Routes(r, authService, requireAuth, log)
	handler.Routes(r, inventoryService, requireAuth, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop the scheduler and consumers before draining HTTP
	if notifier != nil {
		notifier.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/envboard/envboard/pkg/access"
	"github.com/envboard/envboard/pkg/activities"
	"github.com/envboard/envboard/pkg/api"
	"github.com/envboard/envboard/pkg/config"
	"github.com/envboard/envboard/pkg/environments"
	"github.com/envboard/envboard/pkg/middleware"
	"github.com/envboard/envboard/pkg/notifications"
	"github.com/envboard/envboard/pkg/observability"
	"github.com/envboard/envboard/pkg/storage"
	"github.com/envboard/envboard/pkg/users"

	"github.com/go-redis/redis/v8"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("starting envboard")

	db, err := storage.OpenPostgres(cfg.Storage)
	if err != nil {
		logger.WithError(err).Error("failed to connect to postgres")
		os.Exit(1)
	}
	defer db.Close()

	migrations := users.Migrations()
	migrations = append(migrations, environments.Migrations()...)
	migrations = append(migrations, activities.Migrations()...)
	migrations = append(migrations, notifications.Migrations()...)
	if err := storage.RunMigrations(db, migrations); err != nil {
		logger.WithError(err).Error("failed to run migrations")
		os.Exit(1)
	}
	logger.Info("migrations applied")

	var redisClient *redis.Client
	if cfg.Storage.RedisURL != "" {
		redisClient, err = storage.NewRedisClient(&cfg.Storage)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, distributed rate limiting disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Services
	userSvc := users.NewPostgresService(db)
	envSvc := environments.NewPostgresService(db, userSvc)
	notificationSvc := notifications.NewPostgresService(db)
	dispatcher := notifications.NewDispatcher(notificationSvc, logger)
	activitySvc := activities.NewPostgresService(db, dispatcher, logger)
	checker := access.NewChecker(db)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	server := api.NewServer(api.Deps{
		Users:         userSvc,
		Environments:  envSvc,
		Activities:    activitySvc,
		Notifications: notificationSvc,
		Checker:       checker,
		Logger:        logger,
		Metrics:       metrics,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := buildHandler(ctx, cfg, server, userSvc, redisClient, logger)
	if metrics != nil {
		handler = metrics.InstrumentHandler("api", handler)
	}

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthHandler(db, redisClient, metrics),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("api server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("api server shutdown failed")
		}
		return healthServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server exited")
		os.Exit(1)
	}
	logger.Info("stopped")
}

// buildHandler wraps the API server with request ID, authentication
// and rate limiting middleware.
func buildHandler(ctx context.Context, cfg *config.Config, server *api.Server, userSvc users.Service, redisClient *redis.Client, logger *observability.Logger) http.Handler {
	auth := middleware.NewAuthMiddleware(userSvc, true)

	var handler http.Handler = server
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.Distributed && redisClient != nil {
			handler = middleware.NewDistributedRateLimitMiddleware(redisClient).Handler(handler)
		} else {
			rl := middleware.NewRateLimitMiddleware()
			rl.StartCleanup(ctx)
			handler = rl.Handler(handler)
		}
	}
	handler = auth.Handler(handler)
	handler = middleware.RequestID(handler)
	return loggerInjector(logger, handler)
}

// loggerInjector makes the base logger available to handlers through
// the request context.
func loggerInjector(logger *observability.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(observability.WithLogger(r.Context(), logger)))
	})
}

// healthHandler serves liveness, readiness and metrics on the probe
// port.
func healthHandler(db *sql.DB, redisClient *redis.Client, metrics *observability.Metrics) http.Handler {
	health := observability.NewHealthChecker(db, redisClient)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", health.Liveness).Methods("GET")
	router.HandleFunc("/readyz", health.Readiness).Methods("GET")
	if metrics != nil {
		router.Handle("/metrics", metrics.Handler()).Methods("GET")
	}
	return router
}

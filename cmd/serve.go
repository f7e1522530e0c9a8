package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/duynhne/pos-service/config"
	"github.com/duynhne/pos-service/internal/core"
	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/internal/core/repository"
	"github.com/duynhne/pos-service/internal/jobs"
	logicv1 "github.com/duynhne/pos-service/internal/logic/v1"
	v1 "github.com/duynhne/pos-service/internal/web/v1"
	"github.com/duynhne/pos-service/middleware"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Msg("Service starting")

	// Initialize OpenTelemetry tracing
	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		provider, err := middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			tp = provider
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().
				Str("endpoint", cfg.Profiling.Endpoint).
				Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	// Initialize database connection pool (pgx)
	pool, err := core.Connect(context.Background(), cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("Database connection pool established")

	sessionRepo, rdb, err := newSessionRepository(cfg, pool)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	loc := cfg.ShopLocation()
	staffRepo := repository.NewStaffRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	txnRepo := repository.NewTransactionRepository(pool)
	expenseRepo := repository.NewExpenseRepository(pool)

	sessions := logicv1.NewSessionStore(sessionRepo, cfg.GetSessionTTLDuration())
	roster := logicv1.NewRosterManager(repository.NewRosterRepository(pool), staffRepo, loc)

	handler := v1.NewHandler(v1.Services{
		Auth:     logicv1.NewAuthService(repository.NewUserRepository(pool), sessions),
		Sessions: sessions,
		CSRF:     logicv1.NewCSRFGuard(sessionRepo),
		Roster:   roster,
		Catalog:  logicv1.NewCatalogService(staffRepo, serviceRepo),
		Ledger:   logicv1.NewLedgerService(txnRepo, expenseRepo, staffRepo, serviceRepo, loc),
		Reports:  logicv1.NewReportService(txnRepo, expenseRepo, loc),
	}, v1.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(jobs.Config{
			SessionPurgeSchedule: cfg.Jobs.SessionPurgeSchedule,
			RosterPurgeSchedule:  cfg.Jobs.RosterPurgeSchedule,
			RosterRetentionDays:  cfg.Jobs.RosterRetentionDays,
			Location:             loc,
		}, sessions, roster, log.Logger)
		if err := scheduler.Start(); err != nil {
			return err
		}
	}

	var isShuttingDown atomic.Bool
	r := newRouter(handler, &isShuttingDown)

	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting POS service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	// Fail readiness first so the load balancer stops routing to us.
	isShuttingDown.Store(true)
	if drainDelay := cfg.GetReadinessDrainDelayDuration(); drainDelay > 0 {
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay started")
		time.Sleep(drainDelay)
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay completed")
	}

	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down server...")

	// 1. Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		log.Info().Msg("HTTP server shutdown complete")
	}

	// 2. Stop housekeeping jobs
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}

	// 3. Close database connections
	pool.Close()
	log.Info().Msg("Database pool closed")

	// 4. Shutdown tracer
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		} else {
			log.Info().Msg("Tracer shutdown complete")
		}
	}

	log.Info().Msg("Graceful shutdown complete")
	return nil
}

func newRouter(handler *v1.Handler, isShuttingDown *atomic.Bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TracingMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.PrometheusMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterPages(&r.RouterGroup)
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

// newSessionRepository selects the session backend. The redis client, when
// one is opened, is returned so the caller can close it.
func newSessionRepository(cfg *config.Config, pool *pgxpool.Pool) (domain.SessionRepository, *redis.Client, error) {
	if cfg.Session.Backend != "redis" {
		return repository.NewSessionRepository(pool), nil, nil
	}

	rdb, err := core.ConnectRedis(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis session backend enabled")
	return repository.NewRedisSessionRepository(rdb), rdb, nil
}

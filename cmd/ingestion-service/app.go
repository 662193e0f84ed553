package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"normas/internal/config"
	"normas/internal/constants"
	"normas/internal/logger"
	"normas/internal/pipeline"
	"normas/internal/regulation"
	"normas/internal/source"
	"normas/pkg/bootstrap"
	"normas/pkg/health"
	"normas/pkg/metrics"
	"normas/pkg/migrations"
	"normas/pkg/retry"
)

type App struct {
	Config      *config.Config
	Logger      logger.Logger
	dbConnector *bootstrap.DatabaseConnector
	db          *sql.DB
	service     *pipeline.Service
	server      *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Config:      cfg,
		Logger:      log,
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.RegisterPipelineMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	if err := a.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.initService(); err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	a.initHTTPServer()

	return nil
}

func (a *App) initDatabase(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	if a.Config.Database.RunMigrations {
		if err := migrations.Run(a.db, a.Config.Database.MigrationsPath); err != nil {
			return err
		}
		a.Logger.Infow("Migrations applied", "path", a.Config.Database.MigrationsPath)
	}

	return nil
}

func (a *App) initService() error {
	policy := retry.Policy{
		MaxAttempts:     a.Config.Retry.MaxAttempts,
		InitialInterval: a.Config.Retry.InitialInterval,
		MaxInterval:     a.Config.Retry.MaxInterval,
		Multiplier:      a.Config.Retry.Multiplier,
		MaxElapsedTime:  a.Config.Retry.MaxElapsedTime,
	}

	client, err := source.NewClient(a.Config.Source, policy, a.Logger)
	if err != nil {
		return err
	}

	var repo regulation.Repository = regulation.NewRepository(a.db, a.Config.Source.Entity)
	if a.Config.CircuitBreaker.Enabled {
		repo = regulation.NewCircuitBreakerRepository(repo, a.Config.CircuitBreaker)
	}

	writer := regulation.NewWriter(repo, a.Logger)

	a.service = pipeline.NewService(
		a.Config.Rules.Path,
		client,
		repo,
		writer,
		a.Logger,
	)

	return nil
}

func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	if a.db != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: mux,
	}
}

// RunOnce executes a single ingestion run bounded by the configured timeout.
func (a *App) RunOnce(ctx context.Context) error {
	runCtx := ctx
	if a.Config.Pipeline.RunTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(a.Config.Pipeline.RunTimeoutSeconds)*time.Second)
		defer cancel()
	}

	_, err := a.service.Run(runCtx)
	return err
}

// Serve runs the pipeline on the configured interval alongside the health
// and metrics HTTP server. A failed run is logged and the next tick tries
// again; only context cancellation stops the loop.
func (a *App) Serve(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Infow("HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		interval := time.Duration(a.Config.Schedule.IntervalMinutes) * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if err := a.RunOnce(gCtx); err != nil {
			a.Logger.Errorw("Scheduled run failed", "error", err)
		}

		for {
			select {
			case <-ticker.C:
				if err := a.RunOnce(gCtx); err != nil {
					a.Logger.Errorw("Scheduled run failed", "error", err)
				}
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Shutdown() {
	for _, err := range a.dbConnector.ShutdownDatabases(a.db) {
		a.Logger.Errorw("Shutdown error", "error", err)
	}
}

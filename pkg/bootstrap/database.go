package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"normas/internal/config"
	"normas/internal/logger"
	"normas/pkg/retry"
)

type DatabaseConnector struct {
	Config *config.Config
	Logger logger.Logger
}

func NewDatabaseConnector(cfg *config.Config, log logger.Logger) *DatabaseConnector {
	return &DatabaseConnector{
		Config: cfg,
		Logger: log,
	}
}

// InitPostgreSQL opens the connection pool and verifies connectivity,
// retrying with backoff so a database still starting up does not kill the
// service.
func (dc *DatabaseConnector) InitPostgreSQL(ctx context.Context) (*sql.DB, error) {
	pg := dc.Config.Database.Postgres

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pg.User,
		pg.Password,
		pg.Host,
		pg.Port,
		pg.DBName,
		pg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	policy := retry.Policy{
		MaxAttempts:     dc.Config.Retry.MaxAttempts,
		InitialInterval: dc.Config.Retry.InitialInterval,
		MaxInterval:     dc.Config.Retry.MaxInterval,
		Multiplier:      dc.Config.Retry.Multiplier,
		MaxElapsedTime:  dc.Config.Retry.MaxElapsedTime,
	}

	if err := retry.Retry(ctx, policy, func() error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dc.Logger.Info("PostgreSQL connected successfully")
	return db, nil
}

func (dc *DatabaseConnector) ShutdownDatabases(postgres *sql.DB) []error {
	var errs []error

	if postgres != nil {
		if err := postgres.Close(); err != nil {
			errs = append(errs, fmt.Errorf("postgres close error: %w", err))
		}
	}

	return errs
}

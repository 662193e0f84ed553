package config

import (
	"fmt"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateRules(cfg.Rules); err != nil {
		errors = append(errors, err)
	}

	if err := validateSource(cfg.Source); err != nil {
		errors = append(errors, err)
	}

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateSchedule(cfg.Schedule); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Postgres.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "host is required",
		}
	}

	if cfg.Postgres.Port < 1 || cfg.Postgres.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Postgres.Port),
		}
	}

	if cfg.Postgres.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "database name is required",
		}
	}

	if cfg.RunMigrations && cfg.MigrationsPath == "" {
		return &ValidationError{
			Field:   "database.migrations_path",
			Message: "migrations path is required when run_migrations is set",
		}
	}

	return nil
}

func validateRules(cfg RulesConfig) error {
	if cfg.Path == "" {
		return &ValidationError{
			Field:   "rules.path",
			Message: "path to the validation rule document is required",
		}
	}
	return nil
}

func validateSource(cfg SourceConfig) error {
	if cfg.BaseURL == "" {
		return &ValidationError{
			Field:   "source.base_url",
			Message: "base URL is required",
		}
	}

	if cfg.Entity == "" {
		return &ValidationError{
			Field:   "source.entity",
			Message: "entity name is required",
		}
	}

	if cfg.Pages < 1 {
		return &ValidationError{
			Field:   "source.pages",
			Message: fmt.Sprintf("pages must be at least 1, got %d", cfg.Pages),
		}
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}
	return nil
}

func validateSchedule(cfg ScheduleConfig) error {
	if cfg.IntervalMinutes < 1 {
		return &ValidationError{
			Field:   "schedule.interval_minutes",
			Message: fmt.Sprintf("interval must be at least 1 minute, got %d", cfg.IntervalMinutes),
		}
	}
	return nil
}

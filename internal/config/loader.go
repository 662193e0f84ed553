package config

import (
	"strings"

	"github.com/spf13/viper"

	"normas/internal/constants"
	apperrors "normas/pkg/errors"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, apperrors.ErrConfig.WithMessagef("failed to read config file %s", configFile).WithCause(err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, apperrors.ErrConfig.WithMessage("failed to unmarshal config").WithCause(err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, apperrors.ErrConfig.WithMessage("configuration validation failed").WithCause(err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.sslmode", "disable")
	viper.SetDefault("database.migrations_path", "migrations")

	viper.SetDefault("logging.level", "info")

	viper.SetDefault("source.entity", constants.EntityName)
	viper.SetDefault("source.pages", 9)
	viper.SetDefault("source.timeout_seconds", 15)
	viper.SetDefault("source.rate_limit_rps", 1.0)
	viper.SetDefault("source.component_ids", []int64{constants.DefaultComponentID})

	viper.SetDefault("pipeline.run_timeout_seconds", 600)
	viper.SetDefault("schedule.interval_minutes", 60)
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("retry.max_attempts", 3)
	viper.SetDefault("retry.initial_interval", "1s")
	viper.SetDefault("retry.max_interval", "30s")
	viper.SetDefault("retry.multiplier", 2.0)
	viper.SetDefault("retry.max_elapsed_time", "2m")
}

func bindEnvVariables() {
	viper.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	viper.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	viper.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	viper.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	viper.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	viper.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")
	viper.BindEnv("database.run_migrations", "DATABASE_RUN_MIGRATIONS")
	viper.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	viper.BindEnv("rules.path", "RULES_PATH")

	viper.BindEnv("source.base_url", "SOURCE_BASE_URL")
	viper.BindEnv("source.entity", "SOURCE_ENTITY")
	viper.BindEnv("source.pages", "SOURCE_PAGES")
	viper.BindEnv("source.timeout_seconds", "SOURCE_TIMEOUT_SECONDS")
	viper.BindEnv("source.rate_limit_rps", "SOURCE_RATE_LIMIT_RPS")
	viper.BindEnv("source.component_ids", "SOURCE_COMPONENT_IDS")

	viper.BindEnv("pipeline.run_timeout_seconds", "PIPELINE_RUN_TIMEOUT_SECONDS")
	viper.BindEnv("schedule.interval_minutes", "SCHEDULE_INTERVAL_MINUTES")

	viper.BindEnv("server.port", "SERVER_PORT")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")

	viper.BindEnv("retry.max_attempts", "RETRY_MAX_ATTEMPTS")
	viper.BindEnv("retry.initial_interval", "RETRY_INITIAL_INTERVAL")
	viper.BindEnv("retry.max_interval", "RETRY_MAX_INTERVAL")
	viper.BindEnv("retry.multiplier", "RETRY_MULTIPLIER")
	viper.BindEnv("retry.max_elapsed_time", "RETRY_MAX_ELAPSED_TIME")

	viper.BindEnv("circuit_breaker.enabled", "CIRCUIT_BREAKER_ENABLED")
	viper.BindEnv("circuit_breaker.max_requests", "CIRCUIT_BREAKER_MAX_REQUESTS")
	viper.BindEnv("circuit_breaker.interval", "CIRCUIT_BREAKER_INTERVAL")
	viper.BindEnv("circuit_breaker.timeout", "CIRCUIT_BREAKER_TIMEOUT")
	viper.BindEnv("circuit_breaker.failure_ratio", "CIRCUIT_BREAKER_FAILURE_RATIO")
	viper.BindEnv("circuit_breaker.min_requests", "CIRCUIT_BREAKER_MIN_REQUESTS")
}

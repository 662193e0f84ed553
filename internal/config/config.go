package config

import (
	"time"
)

type Config struct {
	Database       DatabaseConfig       `mapstructure:"database"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Rules          RulesConfig          `mapstructure:"rules"`
	Source         SourceConfig         `mapstructure:"source"`
	Pipeline       PipelineConfig       `mapstructure:"pipeline"`
	Schedule       ScheduleConfig       `mapstructure:"schedule"`
	Server         ServerConfig         `mapstructure:"server"`
	Retry          RetryConfig          `mapstructure:"retry"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type DatabaseConfig struct {
	Postgres       PostgresConfig `mapstructure:"postgres"`
	RunMigrations  bool           `mapstructure:"run_migrations"`
	MigrationsPath string         `mapstructure:"migrations_path"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type RulesConfig struct {
	// Path to the YAML validation-rule document, reloaded on every run.
	Path string `mapstructure:"path"`
}

type SourceConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	Entity         string  `mapstructure:"entity"`
	Pages          int     `mapstructure:"pages"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	ComponentIDs   []int64 `mapstructure:"component_ids"`
}

type PipelineConfig struct {
	RunTimeoutSeconds int `mapstructure:"run_timeout_seconds"`
}

type ScheduleConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}

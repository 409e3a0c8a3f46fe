package config

import "time"

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Session  SessionConfig  `mapstructure:"session"`
	Task     TaskConfig     `mapstructure:"task"`
	SRS      SRSConfig      `mapstructure:"srs"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains the database settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// SessionConfig controls where review sessions live and for how long.
// When RedisAddr is empty, sessions are held in process memory.
type SessionConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

// TaskConfig controls the background job scheduler.
type TaskConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	SweepTimeout  time.Duration `mapstructure:"sweep_timeout"`
}

// SRSConfig overrides individual scheduling parameters. Zero values fall
// back to the algorithm's defaults.
type SRSConfig struct {
	MaxEaseFactor      float64 `mapstructure:"max_ease_factor" validate:"omitempty,gte=1.3"`
	FailureRetryHours  int     `mapstructure:"failure_retry_hours" validate:"omitempty,min=1"`
	MasteryRepetitions int     `mapstructure:"mastery_repetitions" validate:"omitempty,min=1"`
	RetireRepetitions  int     `mapstructure:"retire_repetitions" validate:"omitempty,min=1"`
	RetireAfterDays    int     `mapstructure:"retire_after_days" validate:"omitempty,min=1"`
}

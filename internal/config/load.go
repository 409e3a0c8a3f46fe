package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/lernia/review-api/internal/platform/memory"
	"github.com/lernia/review-api/internal/task"
)

// Default server values. Session and task defaults live with the packages
// that implement them (memory.DefaultSessionTTL, task.DefaultSweepInterval)
// and are only registered here.
const (
	DefaultPort            = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 15 * time.Second
)

// EnvPrefix is the prefix for environment variables, e.g. REVIEW_SERVER_PORT.
const EnvPrefix = "REVIEW"

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over file values.
func Load() (*Config, error) {
	v := viper.New()

	// Every key needs a default registered so AutomaticEnv surfaces its
	// environment variable during Unmarshal; viper only consults the
	// environment for keys it already knows about.
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("database.url", "")
	v.SetDefault("session.ttl", memory.DefaultSessionTTL)
	v.SetDefault("session.redis_addr", "")
	v.SetDefault("task.sweep_interval", task.DefaultSweepInterval)
	v.SetDefault("task.sweep_timeout", task.DefaultSweepTimeout)
	v.SetDefault("srs.max_ease_factor", 0.0)
	v.SetDefault("srs.failure_retry_hours", 0)
	v.SetDefault("srs.mastery_repetitions", 0)
	v.SetDefault("srs.retire_repetitions", 0)
	v.SetDefault("srs.retire_after_days", 0)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; environment variables carry everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

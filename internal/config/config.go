// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort                = 8080
	defaultServerHost                = "0.0.0.0"
	defaultReadTimeout               = 30 * time.Second
	defaultWriteTimeout              = 30 * time.Second
	defaultDatabasePath              = "./data/playout.db"
	defaultDatabaseConnectionTimeout = 5 * time.Second
	defaultDatabaseEnableWAL         = true
	defaultLogLevel                  = "info"
	defaultLogPretty                 = false
	defaultBuildHorizon              = 48 * time.Hour
	defaultBuildInterval             = 15 * time.Minute
	defaultBuildMaxParallel          = 4
	defaultBuildLockDir              = "./data/locks"
	defaultBuildTimezone             = "UTC"
	defaultBuildTimeout              = 2 * time.Minute
	defaultLibraryFailureThreshold   = 5
	defaultLibraryResetTimeout       = 30 * time.Second
	defaultEventsURL                 = "nats://127.0.0.1:4222"
	defaultEventsSubjectPrefix       = "playout"
	defaultEventsEnabled             = false
	envPrefix                        = "PLAYOUT"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Build    BuildConfig
	Library  LibraryConfig
	Events   EventsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path              string
	ConnectionTimeout time.Duration
	EnableWAL         bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// BuildConfig controls playout generation and the horizon-extension job
type BuildConfig struct {
	// Horizon is how far past "now" every playout is kept generated
	Horizon time.Duration
	// Interval is the period of the horizon-extension job
	Interval    time.Duration
	MaxParallel int
	// LockDir holds per-playout lock files; empty disables cross-process locking
	LockDir string
	// Timezone is used for channels created without one
	Timezone string
	// Timeout bounds a single build pass
	Timeout time.Duration
}

// LibraryConfig configures the circuit breaker guarding library lookups
type LibraryConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}

// EventsConfig configures the NATS build trigger
type EventsConfig struct {
	Enabled       bool
	URL           string
	SubjectPrefix string
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/playout")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.connectiontimeout", defaultDatabaseConnectionTimeout)
	v.SetDefault("database.enablewal", defaultDatabaseEnableWAL)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("build.horizon", defaultBuildHorizon)
	v.SetDefault("build.interval", defaultBuildInterval)
	v.SetDefault("build.maxparallel", defaultBuildMaxParallel)
	v.SetDefault("build.lockdir", defaultBuildLockDir)
	v.SetDefault("build.timezone", defaultBuildTimezone)
	v.SetDefault("build.timeout", defaultBuildTimeout)

	v.SetDefault("library.failurethreshold", defaultLibraryFailureThreshold)
	v.SetDefault("library.resettimeout", defaultLibraryResetTimeout)

	v.SetDefault("events.enabled", defaultEventsEnabled)
	v.SetDefault("events.url", defaultEventsURL)
	v.SetDefault("events.subjectprefix", defaultEventsSubjectPrefix)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}
	if c.Database.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid database connection timeout: %v (must be > 0)", c.Database.ConnectionTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Build.Horizon < time.Hour {
		return fmt.Errorf("invalid build horizon: %v (must be at least 1h)", c.Build.Horizon)
	}
	if c.Build.Interval <= 0 {
		return fmt.Errorf("invalid build interval: %v (must be > 0)", c.Build.Interval)
	}
	if c.Build.Interval >= c.Build.Horizon {
		return fmt.Errorf("build interval %v must be shorter than horizon %v", c.Build.Interval, c.Build.Horizon)
	}
	if c.Build.MaxParallel < 1 {
		return fmt.Errorf("invalid build max parallel: %d (must be >= 1)", c.Build.MaxParallel)
	}
	if c.Build.Timeout <= 0 {
		return fmt.Errorf("invalid build timeout: %v (must be > 0)", c.Build.Timeout)
	}
	if _, err := time.LoadLocation(c.Build.Timezone); err != nil {
		return fmt.Errorf("invalid build timezone %q: %w", c.Build.Timezone, err)
	}

	if c.Library.FailureThreshold < 1 {
		return fmt.Errorf("invalid library failure threshold: %d (must be >= 1)", c.Library.FailureThreshold)
	}
	if c.Library.ResetTimeout <= 0 {
		return fmt.Errorf("invalid library reset timeout: %v (must be > 0)", c.Library.ResetTimeout)
	}

	if c.Events.Enabled {
		if c.Events.URL == "" {
			return errors.New("events url is required when events are enabled")
		}
		if c.Events.SubjectPrefix == "" || strings.ContainsAny(c.Events.SubjectPrefix, " *>") {
			return fmt.Errorf("invalid events subject prefix: %q", c.Events.SubjectPrefix)
		}
	}

	return nil
}

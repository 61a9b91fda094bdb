package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no stray config.yaml is picked up
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
	return dir
}

func TestConfigDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultServerPort, cfg.Server.Port)
	assert.Equal(t, defaultServerHost, cfg.Server.Host)
	assert.Equal(t, defaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, defaultDatabaseEnableWAL, cfg.Database.EnableWAL)
	assert.Equal(t, defaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, defaultLogPretty, cfg.Logging.Pretty)

	assert.Equal(t, defaultBuildHorizon, cfg.Build.Horizon)
	assert.Equal(t, defaultBuildInterval, cfg.Build.Interval)
	assert.Equal(t, defaultBuildMaxParallel, cfg.Build.MaxParallel)
	assert.Equal(t, defaultBuildLockDir, cfg.Build.LockDir)
	assert.Equal(t, defaultBuildTimezone, cfg.Build.Timezone)

	assert.Equal(t, defaultLibraryFailureThreshold, cfg.Library.FailureThreshold)
	assert.Equal(t, defaultLibraryResetTimeout, cfg.Library.ResetTimeout)

	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, defaultEventsSubjectPrefix, cfg.Events.SubjectPrefix)
}

func TestConfigEnvironmentOverrides(t *testing.T) {
	inTempDir(t)

	t.Setenv("PLAYOUT_SERVER_PORT", "9090")
	t.Setenv("PLAYOUT_BUILD_HORIZON", "72h")
	t.Setenv("PLAYOUT_BUILD_MAXPARALLEL", "8")
	t.Setenv("PLAYOUT_LOGGING_LEVEL", "debug")
	t.Setenv("PLAYOUT_EVENTS_ENABLED", "true")
	t.Setenv("PLAYOUT_EVENTS_SUBJECTPREFIX", "tv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 72*time.Hour, cfg.Build.Horizon)
	assert.Equal(t, 8, cfg.Build.MaxParallel)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "tv", cfg.Events.SubjectPrefix)
}

func TestConfigFile(t *testing.T) {
	dir := inTempDir(t)

	content := []byte("build:\n  horizon: 24h\n  interval: 5m\n  timezone: America/Chicago\nlibrary:\n  failurethreshold: 2\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Build.Horizon)
	assert.Equal(t, 5*time.Minute, cfg.Build.Interval)
	assert.Equal(t, "America/Chicago", cfg.Build.Timezone)
	assert.Equal(t, 2, cfg.Library.FailureThreshold)
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, Host: "0.0.0.0", ReadTimeout: time.Second, WriteTimeout: time.Second},
		Database: DatabaseConfig{Path: "x.db", ConnectionTimeout: time.Second},
		Logging:  LoggingConfig{Level: "info"},
		Build: BuildConfig{
			Horizon:     48 * time.Hour,
			Interval:    time.Minute,
			MaxParallel: 1,
			Timezone:    "UTC",
			Timeout:     time.Minute,
		},
		Library: LibraryConfig{FailureThreshold: 1, ResetTimeout: time.Second},
		Events:  EventsConfig{SubjectPrefix: "playout"},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: true},
		{name: "short horizon", mutate: func(c *Config) { c.Build.Horizon = time.Minute }, wantErr: true},
		{name: "interval longer than horizon", mutate: func(c *Config) { c.Build.Interval = 72 * time.Hour }, wantErr: true},
		{name: "no parallelism", mutate: func(c *Config) { c.Build.MaxParallel = 0 }, wantErr: true},
		{name: "unknown timezone", mutate: func(c *Config) { c.Build.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "zero failure threshold", mutate: func(c *Config) { c.Library.FailureThreshold = 0 }, wantErr: true},
		{name: "events without url", mutate: func(c *Config) {
			c.Events.Enabled = true
			c.Events.URL = ""
		}, wantErr: true},
		{name: "wildcard subject prefix", mutate: func(c *Config) {
			c.Events.Enabled = true
			c.Events.URL = "nats://localhost:4222"
			c.Events.SubjectPrefix = "playout.*"
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

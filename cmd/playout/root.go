package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/playout/internal/config"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/logger"
)

type commandContext struct {
	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = fmt.Errorf("failed to load configuration: %w", err)
			return
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)
		c.config = cfg
	})
	return c.config, c.configErr
}

// openDatabase connects to the configured database and applies pending migrations
func (c *commandContext) openDatabase() (*db.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	database, err := db.Open(cfg.Database.Path, cfg.Database.EnableWAL)
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	if err := db.RunMigrations(sqlDB); err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Log.Debug().
		Str("path", cfg.Database.Path).
		Msg("Database ready")

	return database, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "playout",
		Short:         "Playout generation engine for virtual TV channels",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newBuildCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newTriggerCommand(ctx))

	return rootCmd
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/playout/internal/logger"
	"github.com/stwalsh4118/playout/internal/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the horizon scheduler and the build trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			database, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					logger.Log.Error().Err(err).Msg("Failed to close database")
				}
			}()

			srv, err := server.New(cfg, database)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errCh:
				if err != nil {
					logger.Log.Error().Err(err).Msg("Server exited")
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
				return err
			case <-sigCtx.Done():
				logger.Log.Info().Msg("Shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

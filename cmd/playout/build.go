package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/playout/internal/buildlock"
	"github.com/stwalsh4118/playout/internal/config"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/library"
	"github.com/stwalsh4118/playout/internal/playout"
)

// newPlayoutService wires a build service the same way the server does
func newPlayoutService(cfg *config.Config, repos *db.Repositories) (*playout.Service, error) {
	locks, err := buildlock.New(cfg.Build.LockDir)
	if err != nil {
		return nil, err
	}
	lib := library.NewGuarded(library.NewStore(repos.Media), library.BreakerConfig{
		FailureThreshold: cfg.Library.FailureThreshold,
		ResetTimeout:     cfg.Library.ResetTimeout,
	})
	return playout.NewService(repos, lib, locks), nil
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		playoutID uint
		reset     bool
		hours     int
		from      string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Extend (or reset) one playout's timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if playoutID == 0 {
				return errors.New("--playout is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opts := playout.BuildOptions{Reset: reset}
			if from != "" {
				t, err := time.Parse(time.RFC3339, from)
				if err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
				opts.From = t.UTC()
			}
			horizon := cfg.Build.Horizon
			if hours > 0 {
				horizon = time.Duration(hours) * time.Hour
			}
			opts.Until = time.Now().UTC().Add(horizon)

			database, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			svc, err := newPlayoutService(cfg, db.NewRepositories(database))
			if err != nil {
				return err
			}

			result, err := svc.Build(cmd.Context(), playoutID, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Build", "Items", "Gaps", "From", "To", "Horizon"},
				[][]string{{
					result.BuildID,
					humanize.Comma(int64(result.Items)),
					humanize.Comma(int64(result.Gaps)),
					result.From.Format(time.RFC3339),
					result.To.Format(time.RFC3339),
					humanize.Time(result.To),
				}},
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().UintVar(&playoutID, "playout", 0, "Playout ID to build")
	cmd.Flags().BoolVar(&reset, "reset", false, "Discard the timeline from --from (default now) and regenerate it")
	cmd.Flags().IntVar(&hours, "hours", 0, "Hours ahead to build (default: configured horizon)")
	cmd.Flags().StringVar(&from, "from", "", "RFC 3339 reset point or first build start")

	return cmd
}

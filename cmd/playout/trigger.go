package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/playout/internal/trigger"
)

func newTriggerCommand(ctx *commandContext) *cobra.Command {
	var (
		playoutID uint
		reset     bool
		hours     int
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Ask a running server to build a playout over NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			if playoutID == 0 {
				return errors.New("--playout is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			nc, err := trigger.Connect(cfg.Events.URL)
			if err != nil {
				return err
			}
			defer nc.Close()

			reply, err := trigger.Send(nc, cfg.Events.SubjectPrefix, trigger.Request{
				PlayoutID: playoutID,
				Reset:     reset,
				Hours:     hours,
			}, timeout)
			if err != nil {
				return err
			}
			if !reply.OK {
				return fmt.Errorf("build failed: %s", reply.Error)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "built %s items, timeline ends %s\n",
				humanize.Comma(int64(reply.Result.Items)), humanize.Time(reply.Result.To))
			return nil
		},
	}

	cmd.Flags().UintVar(&playoutID, "playout", 0, "Playout ID to build")
	cmd.Flags().BoolVar(&reset, "reset", false, "Regenerate the timeline from now")
	cmd.Flags().IntVar(&hours, "hours", 0, "Hours ahead to build (default: server horizon)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "How long to wait for the reply")

	return cmd
}

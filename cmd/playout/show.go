package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/models"
)

type timelineRow struct {
	start, finish time.Time
	cells         []string
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var (
		playoutID uint
		hours     int
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a playout's generated timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if playoutID == 0 {
				return errors.New("--playout is required")
			}
			database, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			repos := db.NewRepositories(database)
			c := cmd.Context()
			from := time.Now().UTC().Truncate(time.Minute)
			to := from.Add(time.Duration(hours) * time.Hour)

			items, err := repos.Playouts.Items(c, playoutID, from, to)
			if err != nil {
				return err
			}
			gaps, err := repos.Playouts.Gaps(c, playoutID, from, to)
			if err != nil {
				return err
			}

			ids := make([]uint, len(items))
			for i, it := range items {
				ids[i] = it.MediaItemID
			}
			media, err := repos.Media.GetByIDs(c, ids)
			if err != nil {
				return err
			}
			titles := make(map[uint]string, len(media))
			for _, m := range media {
				titles[m.ID] = m.Title
			}

			rows := mergeTimeline(items, gaps, titles)
			cells := make([][]string, len(rows))
			for i, r := range rows {
				cells[i] = r.cells
			}

			out := cmd.OutOrStdout()
			if status, err := repos.Playouts.Status(c, playoutID); err == nil {
				result := "succeeded"
				if !status.Success {
					result = "failed: " + status.Message
				}
				fmt.Fprintf(out, "Last build %s %s\n", humanize.Time(status.LastBuild), result)
			} else if !db.IsNotFound(err) {
				return err
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Start", "Finish", "Length", "Title", "Kind", "Guide"},
				cells,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().UintVar(&playoutID, "playout", 0, "Playout ID to show")
	cmd.Flags().IntVar(&hours, "hours", 6, "Hours ahead to show")

	return cmd
}

// mergeTimeline interleaves items and gaps in start order
func mergeTimeline(items []models.PlayoutItem, gaps []models.PlayoutGap, titles map[uint]string) []timelineRow {
	rows := make([]timelineRow, 0, len(items)+len(gaps))
	i, g := 0, 0
	for i < len(items) || g < len(gaps) {
		if g >= len(gaps) || (i < len(items) && items[i].Start.Before(gaps[g].Start)) {
			it := items[i]
			rows = append(rows, timelineRow{it.Start, it.Finish, []string{
				it.Start.Format(time.DateTime),
				it.Finish.Format(time.DateTime),
				it.Duration().String(),
				titles[it.MediaItemID],
				string(it.FillerKind),
				fmt.Sprint(it.GuideGroup),
			}})
			i++
			continue
		}
		gap := gaps[g]
		rows = append(rows, timelineRow{gap.Start, gap.Finish, []string{
			gap.Start.Format(time.DateTime),
			gap.Finish.Format(time.DateTime),
			gap.Finish.Sub(gap.Start).String(),
			"(off air)",
			"gap",
			"",
		}})
		g++
	}
	return rows
}

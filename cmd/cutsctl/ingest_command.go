package main

import (
	"fmt"
	"strconv"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"olga-cuts/internal/calendar"
	"olga-cuts/internal/ingest"
	"olga-cuts/pkg/tasks"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var queue bool

	cmd := &cobra.Command{
		Use:   "ingest DAY MONTH YEAR",
		Short: "Ingest the videos published on one day",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			triple := make([]int, 3)
			for i, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid number %q", arg)
				}
				triple[i] = n
			}
			day, month, year := triple[0], triple[1], triple[2]
			out := cmd.OutOrStdout()

			if queue {
				if !calendar.IsValid(day, month, year) {
					return fmt.Errorf("%d/%d/%d is not a valid date", day, month, year)
				}
				client, err := ctx.queue()
				if err != nil {
					return err
				}
				task, err := tasks.NewIngestDayTask(day, month, year)
				if err != nil {
					return err
				}
				info, err := client.EnqueueContext(cmd.Context(), task, asynq.Queue(tasks.QueueDefault))
				if err != nil {
					return fmt.Errorf("failed to queue %d/%d/%d: %w", day, month, year, err)
				}
				fmt.Fprintf(out, "%s: queued as task %s\n", calendar.Date(day, month, year).Format(calendar.Layout), info.ID)
				return nil
			}

			if err := ctx.ensure(); err != nil {
				return err
			}
			result, err := ctx.ingester.IngestDay(cmd.Context(), day, month, year)
			if err != nil {
				return fmt.Errorf("%s: %w", ingest.Describe(err), err)
			}

			fmt.Fprintf(out, "%s: %s\n", result.Date.Format(calendar.Layout), result.Outcome)
			if len(result.Added) > 0 {
				fmt.Fprintln(out, renderVideos(result.Added))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&queue, "queue", false, "Hand the day to the worker instead of ingesting it here")
	return cmd
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"olga-cuts/internal/backfill"
	"olga-cuts/internal/calendar"
	"olga-cuts/internal/ingest"
)

func newBackfillCommand(ctx *commandContext) *cobra.Command {
	var from, to string
	var current int

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Ingest every listed day in a date range, one day at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			days := ctx.dayIndex()
			start, err := lookupDate(days, from)
			if err != nil {
				return err
			}
			end, err := lookupDate(days, to)
			if err != nil {
				return err
			}
			cursor, err := backfill.NewCursor(days, start, end)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("current") {
				if current < start || current > end+1 {
					return fmt.Errorf("--current %d is outside %d..%d", current, start, end)
				}
				cursor.Current = current
			}

			driver, err := ctx.driver()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			progress := backfill.Progress{Cursor: cursor}
			for !progress.Cursor.Done() {
				date, _ := days.DateForIndex(progress.Cursor.Current)
				step, err := driver.Step(cmd.Context(), progress.Cursor)
				if err != nil {
					fmt.Fprintf(out, "%s failed: %s\n", date.Format(calendar.Layout), ingest.Describe(err))
					fmt.Fprintf(out, "Resume with: --from %s --to %s --current %d\n", from, to, progress.Cursor.Current)
					return err
				}
				fmt.Fprintf(out, "%s: %s (%d added)\n", date.Format(calendar.Layout), step.Result.Outcome, len(step.Result.Added))
				progress.Record(step)
			}

			fmt.Fprintf(out, "Backfill of days %d..%d finished, %d videos added\n", start, end, len(progress.Added))
			if len(progress.Added) > 0 {
				fmt.Fprintln(out, renderVideos(progress.Added))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day of the range (YYYY-MM-DD)")
	cmd.Flags().IntVar(&current, "current", 0, "Day index to resume from")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func lookupDate(days *calendar.DayIndex, value string) (int, error) {
	d, err := time.Parse(calendar.Layout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return days.IndexForDate(d)
}

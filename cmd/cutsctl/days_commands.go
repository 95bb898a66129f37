package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"olga-cuts/internal/calendar"
)

func newDaysCommand(ctx *commandContext) *cobra.Command {
	daysCmd := &cobra.Command{
		Use:   "days",
		Short: "Inspect and regenerate the day index",
	}

	daysCmd.AddCommand(newDaysGenerateCommand())
	daysCmd.AddCommand(newDaysLookupCommand(ctx))

	return daysCmd
}

func newDaysGenerateCommand() *cobra.Command {
	var from, to, output string
	var weekends bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a day table for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(calendar.Layout, from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			end, err := time.Parse(calendar.Layout, to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
			if end.Before(start) {
				return fmt.Errorf("--to %s is before --from %s", to, from)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			n, err := calendar.Generate(w, start, end, weekends)
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d days to %s\n", n, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&weekends, "weekends", false, "Include Saturdays and Sundays")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newDaysLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup DATE|INDEX",
		Short: "Translate between dates and day indexes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := ctx.dayIndex()
			out := cmd.OutOrStdout()

			if i, err := strconv.Atoi(args[0]); err == nil {
				d, err := days.DateForIndex(i)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, d.Format(calendar.Layout))
				return nil
			}

			i, err := lookupDate(days, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, i)
			return nil
		},
	}
}

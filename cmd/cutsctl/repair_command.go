package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"olga-cuts/internal/db"
	"olga-cuts/pkg/tasks"
)

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Extract cuts again for videos whose extraction never completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}
			repaired, err := ctx.repairer.RepairCuts(cmd.Context(), limit)
			fmt.Fprintf(cmd.OutOrStdout(), "Repaired %d videos\n", repaired)
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", tasks.DefaultRepairLimit, "Maximum number of videos to revisit")
	return cmd
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}
			return db.Migrate()
		},
	}
}

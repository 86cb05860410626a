package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/camin-energy/tankflow/internal/cli"
	"github.com/camin-energy/tankflow/internal/engine"
	"github.com/camin-energy/tankflow/internal/model"
	"github.com/camin-energy/tankflow/internal/service"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show aggregate movement counts and volumes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			movements, err := store.ListMovements(ctx, service.MovementFilter{})
			if err != nil {
				return err
			}

			s := engine.Summarize(movements, model.Today())
			content := fmt.Sprintf(
				"Total movements: %d\nPending: %d (%.1f bbl expected)\nCompleted: %d\nScheduled today: %d\nTotal volume: %.1f bbl",
				s.Total, s.Pending, s.PendingVolume, s.Completed, s.ScheduledToday, s.TotalVolume)
			fmt.Println(cli.RenderBox(cli.ChartIcon+" Movement Summary", content))
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/camin-energy/tankflow/internal/cli"
	"github.com/camin-energy/tankflow/internal/engine"
	"github.com/camin-energy/tankflow/internal/model"
	"github.com/camin-energy/tankflow/internal/service"
)

func bulkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Apply one action across many pending movements",
		Long: `Bulk actions issue one independent store call per movement. Any subset
may succeed; failures are reported per movement and never roll back the
rest.`,
	}

	cmd.AddCommand(bulkCompleteCmd())
	cmd.AddCommand(bulkRescheduleCmd())

	return cmd
}

func bulkCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <movement-ids...>",
		Short: "Complete pending movements at their expected volumes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			bar := newBulkBar(len(args), "Completing movements...")
			result := engine.NewCoordinator(store).Complete(ctx, movements, args)
			_ = bar.Add(result.Eligible)
			_ = bar.Finish()

			return reportBulk(result)
		},
	}
}

func bulkRescheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reschedule <movement-ids...>",
		Short: "Move pending movements to a new scheduled date",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dateRaw, _ := cmd.Flags().GetString("date")
			date, err := model.ParseCivilDate(dateRaw)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			movements, err := store.ListMovements(ctx, service.MovementFilter{})
			if err != nil {
				return err
			}

			bar := newBulkBar(len(args), "Rescheduling movements...")
			result, err := engine.NewCoordinator(store).Reschedule(ctx, movements, args, date)
			_ = bar.Add(result.Eligible)
			_ = bar.Finish()
			if err != nil {
				return err
			}

			return reportBulk(result)
		},
	}

	cmd.Flags().String("date", "", "new scheduled date (YYYY-MM-DD, required)")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newBulkBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func reportBulk(result engine.BulkResult) error {
	skipped := result.Requested - result.Eligible
	if skipped > 0 {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("%d movement(s) skipped (already completed or unknown)", skipped)))
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d movement(s) updated", len(result.Succeeded))))

	if len(result.Failed) > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d movement(s) failed:", len(result.Failed))))
		for _, itemErr := range result.Failed {
			fmt.Printf("  %s: %v\n", itemErr.MovementID, itemErr.Err)
		}
	}
	return nil
}

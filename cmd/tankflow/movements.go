package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/camin-energy/tankflow/internal/cli"
	"github.com/camin-energy/tankflow/internal/engine"
	"github.com/camin-energy/tankflow/internal/model"
	"github.com/camin-energy/tankflow/internal/service"
)

func movementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "Manage scheduled and completed movements",
	}

	cmd.AddCommand(movementsListCmd())
	cmd.AddCommand(movementsAddCmd())
	cmd.AddCommand(movementsCompleteCmd())
	cmd.AddCommand(movementsEditCmd())
	cmd.AddCommand(movementsDeleteCmd())

	return cmd
}

func movementsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movements with optional filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			index, err := loadIndex(ctx, store)
			if err != nil {
				return err
			}

			tankRef, _ := cmd.Flags().GetString("tank")
			tankID := ""
			if tankRef != "" {
				if tankID, err = resolveTank(index, tankRef); err != nil {
					return err
				}
			}

			movementType, _ := cmd.Flags().GetString("type")
			status, _ := cmd.Flags().GetString("status")
			source, _ := cmd.Flags().GetString("source")
			search, _ := cmd.Flags().GetString("search")

			movements, err := store.ListMovements(ctx, service.MovementFilter{TankID: tankID})
			if err != nil {
				return err
			}

			rows := engine.Project(movements, index, engine.Filters{
				Search: search,
				Type:   model.MovementType(movementType),
				Status: model.MovementStatus(status),
				Source: model.MovementSource(source),
			}, model.Today())

			return printRows(rows)
		},
	}

	cmd.Flags().String("tank", "", "filter by tank ID or name")
	cmd.Flags().String("type", "", "filter by type (load, discharge, transfer, adjustment)")
	cmd.Flags().String("status", "", "filter by status (pending, completed)")
	cmd.Flags().String("source", "", "filter by source (manual, signal, document)")
	cmd.Flags().String("search", "", "free-text search over tanks, type, and notes")

	return cmd
}

func movementsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a load or discharge",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tankRef, _ := cmd.Flags().GetString("tank")
			movementType, _ := cmd.Flags().GetString("type")
			volume, _ := cmd.Flags().GetFloat64("volume")
			dateRaw, _ := cmd.Flags().GetString("date")
			notes, _ := cmd.Flags().GetString("notes")

			date := model.Today()
			if dateRaw != "" {
				parsed, err := model.ParseCivilDate(dateRaw)
				if err != nil {
					return err
				}
				date = parsed
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			index, err := loadIndex(ctx, store)
			if err != nil {
				return err
			}
			tankID, err := resolveTank(index, tankRef)
			if err != nil {
				return err
			}

			movement, err := store.CreateMovement(ctx, model.MovementCreate{
				Type:           model.MovementType(movementType),
				TankID:         tankID,
				ExpectedVolume: volume,
				ScheduledDate:  date,
				Notes:          notes,
				Source:         model.SourceManual,
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Scheduled %s of %.1f bbl for %s on %s (%s)",
				movement.Type, movement.ExpectedVolume, index.NameOf(tankID), movement.ScheduledDate, movement.ID)))
			return nil
		},
	}

	cmd.Flags().String("tank", "", "tank ID or name (required)")
	cmd.Flags().String("type", "load", "movement type (load or discharge)")
	cmd.Flags().Float64("volume", 0, "expected volume in barrels (required)")
	cmd.Flags().String("date", "", "scheduled date (YYYY-MM-DD, default today)")
	cmd.Flags().String("notes", "", "optional notes")
	_ = cmd.MarkFlagRequired("tank")
	_ = cmd.MarkFlagRequired("volume")

	return cmd
}

func movementsCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <movement-id>",
		Short: "Record the actual volume for a pending movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actual, _ := cmd.Flags().GetFloat64("actual")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if actual == 0 {
				// Default to the expected volume, the common case
				movement, getErr := store.GetMovement(ctx, args[0])
				if getErr != nil {
					return getErr
				}
				actual = movement.ExpectedVolume
			}

			movement, err := store.CompleteMovement(ctx, args[0], actual)
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Completed %s with %.1f bbl", movement.ID, *movement.ActualVolume)))
			return nil
		},
	}

	cmd.Flags().Float64("actual", 0, "actual volume in barrels (default: expected volume)")
	return cmd
}

func movementsEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <movement-id>",
		Short: "Edit a pending movement's date, volume, or notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var patch model.MovementUpdate
			if cmd.Flags().Changed("date") {
				raw, _ := cmd.Flags().GetString("date")
				date, parseErr := model.ParseCivilDate(raw)
				if parseErr != nil {
					return parseErr
				}
				patch.ScheduledDate = &date
			}
			if cmd.Flags().Changed("volume") {
				volume, _ := cmd.Flags().GetFloat64("volume")
				patch.ExpectedVolume = &volume
			}
			if cmd.Flags().Changed("notes") {
				notes, _ := cmd.Flags().GetString("notes")
				patch.Notes = &notes
			}

			movement, err := store.UpdateMovement(ctx, args[0], patch)
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Updated movement " + movement.ID))
			return nil
		},
	}

	cmd.Flags().String("date", "", "new scheduled date (YYYY-MM-DD)")
	cmd.Flags().Float64("volume", 0, "new expected volume in barrels")
	cmd.Flags().String("notes", "", "new notes")

	return cmd
}

func movementsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <movement-id>",
		Short: "Delete a movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteMovement(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Deleted movement " + args[0]))
			return nil
		},
	}
}

// printMovements lists a tank's movements, newest first.
func printMovements(ctx context.Context, store service.Storage, index *engine.Index, tankID string) error {
	movements, err := store.ListMovements(ctx, service.MovementFilter{TankID: tankID})
	if err != nil {
		return err
	}
	rows := engine.Project(movements, index, engine.Filters{}, model.Today())
	return printRows(rows)
}

func printRows(rows []engine.Row) error {
	if len(rows) == 0 {
		fmt.Println(cli.FormatInfo("No movements match."))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tTANK\tVOLUME (bbl)\tSTATUS\tSOURCE\tID")
	for _, row := range rows {
		status := string(row.Status)
		if row.IsFuture {
			status += " (future)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\t%s\t%s\n",
			row.Movement.EffectiveDate(), row.Movement.Type, row.TankLabel,
			row.Volume, status, row.Movement.Source, row.Movement.ID)
	}
	return w.Flush()
}

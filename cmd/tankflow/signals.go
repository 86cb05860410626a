package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/camin-energy/tankflow/internal/cli"
	"github.com/camin-energy/tankflow/internal/model"
	"github.com/camin-energy/tankflow/internal/signals"
)

func signalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Manage refinery signals",
		Long:  `Upload refinery signal workbooks and assign signals to registry tanks.`,
	}

	cmd.AddCommand(signalsUploadCmd())
	cmd.AddCommand(signalsListCmd())
	cmd.AddCommand(signalsAssignCmd())
	cmd.AddCommand(signalsTradeCmd())

	return cmd
}

func signalsUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <workbook.xlsx>",
		Short: "Parse a signal workbook and store new signals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open workbook: %w", err)
			}
			defer func() { _ = f.Close() }()

			parsed, err := signals.Parse(f)
			if err != nil {
				return err
			}
			for _, rowErr := range parsed.Errors {
				fmt.Println(cli.FormatWarning(rowErr))
			}
			if len(parsed.Signals) == 0 {
				fmt.Println(cli.FormatInfo("No valid signals found in workbook."))
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			created, skipped, err := store.SaveSignals(ctx, parsed.Signals)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Stored %d new signal(s), skipped %d duplicate(s)", created, skipped)))
			return nil
		},
	}
}

func signalsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List signals awaiting tank assignment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			pending, err := store.ListPendingSignals(ctx)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Println(cli.FormatInfo("No unassigned signals."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SIGNAL\tLOAD DATE\tREFINERY TANK\tVOLUME (bbl)\tMOVEMENT ID")
			for _, m := range pending {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\n",
					m.SignalID, m.ScheduledDate, m.SourceTank, m.ExpectedVolume, m.ID)
			}
			return w.Flush()
		},
	}
}

func signalsAssignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <movement-id>",
		Short: "Assign an unassigned signal to a tank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tankRef, _ := cmd.Flags().GetString("tank")
			volume, _ := cmd.Flags().GetFloat64("volume")
			dateRaw, _ := cmd.Flags().GetString("date")
			notes, _ := cmd.Flags().GetString("notes")

			var date model.CivilDate
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

			movement, err := store.AssignSignal(ctx, args[0], model.SignalAssignment{
				TankID:         tankID,
				ExpectedVolume: volume,
				ScheduledDate:  date,
				Notes:          notes,
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Assigned signal %s to %s (%.1f bbl on %s)",
				movement.SignalID, index.NameOf(movement.TankID), movement.ExpectedVolume, movement.ScheduledDate)))
			return nil
		},
	}

	cmd.Flags().String("tank", "", "tank ID or name (required)")
	cmd.Flags().Float64("volume", 0, "override the signalled volume in barrels")
	cmd.Flags().String("date", "", "override the load date (YYYY-MM-DD)")
	cmd.Flags().String("notes", "", "notes on the assignment")
	_ = cmd.MarkFlagRequired("tank")

	return cmd
}

func signalsTradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade <movement-id>",
		Short: "Record trade linkage on a signal movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			number, _ := cmd.Flags().GetString("number")
			lineItem, _ := cmd.Flags().GetString("line-item")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			movement, err := store.UpdateTradeInfo(ctx, args[0], model.TradeInfo{
				TradeNumber:   number,
				TradeLineItem: lineItem,
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Linked signal %s to trade %s line %s", movement.SignalID, movement.TradeNumber, movement.TradeLineItem)))
			return nil
		},
	}

	cmd.Flags().String("number", "", "trade number (required)")
	cmd.Flags().String("line-item", "", "trade line item")
	_ = cmd.MarkFlagRequired("number")

	return cmd
}

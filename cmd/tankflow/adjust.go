package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/camin-energy/tankflow/internal/cli"
	"github.com/camin-energy/tankflow/internal/model"
)

func adjustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjust <tank>",
		Short: "Reconcile a tank against a physical reading",
		Long: `Record a physical gauge reading. The difference between the reading and
the system level is written as a completed adjustment movement, so the
derived level matches reality from today onward.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reading, _ := cmd.Flags().GetFloat64("reading")
			notes, _ := cmd.Flags().GetString("notes")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			index, err := loadIndex(ctx, store)
			if err != nil {
				return err
			}
			tankID, err := resolveTank(index, args[0])
			if err != nil {
				return err
			}

			movement, err := store.CreateAdjustment(ctx, model.AdjustmentCreate{
				TankID:        tankID,
				PhysicalLevel: reading,
				Notes:         notes,
			})
			if err != nil {
				return err
			}

			delta := movement.EffectiveVolume()
			if delta >= 0 {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Adjusted %s: gain of %.1f bbl", index.NameOf(tankID), delta)))
			} else {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("Adjusted %s: loss of %.1f bbl", index.NameOf(tankID), -delta)))
			}
			return nil
		},
	}

	cmd.Flags().Float64("reading", 0, "physical level in barrels (required)")
	cmd.Flags().String("notes", "", "optional notes on the reading")
	_ = cmd.MarkFlagRequired("reading")

	return cmd
}

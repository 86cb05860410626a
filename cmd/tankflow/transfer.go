package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/camin-energy/tankflow/internal/cli"
	"github.com/camin-energy/tankflow/internal/engine"
	"github.com/camin-energy/tankflow/internal/model"
)

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Plan a transfer from one tank to one or more targets",
		Long: `Plan and submit a transfer. Targets are given as tank:volume pairs and
the whole plan is validated against the source tank's current level before
anything is written.`,
		Example: `  tankflow transfer --from TK-101 --to TK-202:400 --to TK-303:300 --date 2026-09-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			from, _ := cmd.Flags().GetString("from")
			targets, _ := cmd.Flags().GetStringArray("to")
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

			sourceID, err := resolveTank(index, from)
			if err != nil {
				return err
			}

			planner := engine.NewPlanner(index)
			planner.SetSource(sourceID)

			for i, spec := range targets {
				tankRef, volume, parseErr := parseTargetSpec(spec)
				if parseErr != nil {
					return parseErr
				}
				tankID, resolveErr := resolveTank(index, tankRef)
				if resolveErr != nil {
					return resolveErr
				}

				if !planner.AddTarget() {
					return fmt.Errorf("no tank available for target %d", i)
				}
				if err := planner.UpdateTarget(i, engine.TargetPatch{TankID: &tankID, Volume: &volume}); err != nil {
					return err
				}
			}

			created, err := planner.Submit(ctx, store, date, notes)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Scheduled %d transfer movement(s), %.1f bbl total, %.1f bbl remaining in %s",
				len(created), planner.TotalVolume(), planner.RemainingVolume(), index.NameOf(sourceID))))
			return nil
		},
	}

	cmd.Flags().String("from", "", "source tank ID or name (required)")
	cmd.Flags().StringArray("to", nil, "target as tank:volume, repeatable (required)")
	cmd.Flags().String("date", "", "scheduled date (YYYY-MM-DD, default today)")
	cmd.Flags().String("notes", "", "notes applied to every created movement")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// parseTargetSpec splits "TK-202:400" into the tank reference and volume.
func parseTargetSpec(spec string) (string, float64, error) {
	idx := strings.LastIndex(spec, ":")
	if idx <= 0 || idx == len(spec)-1 {
		return "", 0, fmt.Errorf("invalid target %q (want tank:volume)", spec)
	}
	volume, err := strconv.ParseFloat(spec[idx+1:], 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid volume in target %q: %w", spec, err)
	}
	return spec[:idx], volume, nil
}

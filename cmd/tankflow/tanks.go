package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/camin-energy/tankflow/internal/cli"
	"github.com/camin-energy/tankflow/internal/model"
)

func tanksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tanks",
		Short: "Manage the tank registry",
		Long:  `View, register, and edit feedstock tanks.`,
	}

	cmd.AddCommand(tanksListCmd())
	cmd.AddCommand(tanksAddCmd())
	cmd.AddCommand(tanksShowCmd())
	cmd.AddCommand(tanksEditCmd())

	return cmd
}

func tanksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tanks with their current levels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			tanks, err := store.ListTanks(ctx)
			if err != nil {
				return err
			}
			if len(tanks) == 0 {
				fmt.Println(cli.FormatInfo("No tanks registered yet. Add one with: tankflow tanks add"))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLOCATION\tLEVEL (bbl)\tCAPACITY (bbl)\tFILL\tID")
			for _, tank := range tanks {
				fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.0f%%\t%s\n",
					tank.Name, tank.Location, tank.CurrentLevel, tank.Capacity, tank.LevelPercentage(), tank.ID)
			}
			return w.Flush()
		},
	}
}

func tanksAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new tank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			capacity, _ := cmd.Flags().GetFloat64("capacity")
			initialLevel, _ := cmd.Flags().GetFloat64("initial-level")
			location, _ := cmd.Flags().GetString("location")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			tank, err := store.CreateTank(ctx, model.TankCreate{
				Name:         args[0],
				Location:     location,
				Capacity:     capacity,
				InitialLevel: initialLevel,
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Registered tank %s (%s)", tank.Name, tank.ID)))
			return nil
		},
	}

	cmd.Flags().Float64("capacity", 0, "tank capacity in barrels (required)")
	cmd.Flags().Float64("initial-level", 0, "level in barrels at registration time")
	cmd.Flags().String("location", "", "terminal or site name")
	_ = cmd.MarkFlagRequired("capacity")

	return cmd
}

func tanksShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <tank>",
		Short: "Show one tank and its recent movements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			tankID, err := resolveTank(index, args[0])
			if err != nil {
				return err
			}

			tank, err := store.GetTank(ctx, tankID)
			if err != nil {
				return err
			}

			content := fmt.Sprintf("Location: %s\nLevel: %.1f / %.1f bbl (%.0f%%)\nInitial level: %.1f bbl\nRegistered: %s",
				tank.Location, tank.CurrentLevel, tank.Capacity, tank.LevelPercentage(),
				tank.InitialLevel, tank.CreatedAt.Format("2006-01-02"))
			fmt.Println(cli.RenderBox(tank.Name, content))

			return printMovements(ctx, store, index, tankID)
		},
	}
}

func tanksEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <tank>",
		Short: "Edit a tank's name, location, or capacity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			tankID, err := resolveTank(index, args[0])
			if err != nil {
				return err
			}

			var patch model.TankUpdate
			if cmd.Flags().Changed("name") {
				name, _ := cmd.Flags().GetString("name")
				patch.Name = &name
			}
			if cmd.Flags().Changed("location") {
				location, _ := cmd.Flags().GetString("location")
				patch.Location = &location
			}
			if cmd.Flags().Changed("capacity") {
				capacity, _ := cmd.Flags().GetFloat64("capacity")
				patch.Capacity = &capacity
			}

			tank, err := store.UpdateTank(ctx, tankID, patch)
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Updated tank " + tank.Name))
			return nil
		},
	}

	cmd.Flags().String("name", "", "new tank name")
	cmd.Flags().String("location", "", "new location")
	cmd.Flags().Float64("capacity", 0, "new capacity in barrels")

	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/camin-energy/tankflow/internal/cli"
	"github.com/camin-energy/tankflow/internal/common"
	"github.com/camin-energy/tankflow/internal/engine"
	"github.com/camin-energy/tankflow/internal/extract"
	"github.com/camin-energy/tankflow/internal/match"
	"github.com/camin-energy/tankflow/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <documents...>",
		Short: "Extract movements from documents and reconcile them into the store",
		Long: `Send one or more documents (PDF statements, scanned reports) to the
extraction service, match the extracted tank names against the registry,
review the records interactively, and write the confirmed ones as movements.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assumeYes, _ := cmd.Flags().GetBool("yes")

			handler := cli.NewInterruptHandler(os.Stdout)
			ctx := handler.HandleInterrupts(cmd.Context())

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
				return fmt.Errorf("no tanks registered; nothing to match against")
			}

			endpoint := viper.GetString("extraction.endpoint")
			if endpoint == "" {
				return fmt.Errorf("%w: extraction.endpoint", common.ErrMissingConfig)
			}
			client, err := extract.NewClient(extract.Config{
				Endpoint: endpoint,
				APIKey:   viper.GetString("extraction.api_key"),
				Timeout:  viper.GetDuration("extraction.timeout"),
			}, match.New(tanks))
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("Extracting %d document(s)...", len(args))))
			results, err := client.ExtractFromDocuments(ctx, args)
			if err != nil {
				return err
			}

			rec := engine.NewReconciler(results, model.Today())
			prompter := cli.NewImportPrompter(os.Stdin, os.Stdout)

			if !assumeYes {
				if err := prompter.Review(ctx, rec); err != nil {
					return err
				}
			}

			if rec.Count() == 0 {
				fmt.Println(cli.FormatInfo("No records selected; nothing imported."))
				return nil
			}

			if !assumeYes {
				ok, confirmErr := prompter.ConfirmImport(ctx, rec.Count())
				if confirmErr != nil {
					return confirmErr
				}
				if !ok {
					fmt.Println(cli.FormatInfo("Import canceled; nothing written."))
					return nil
				}
			}

			result, err := rec.Confirm(ctx, store)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d movement(s)", result.CreatedCount)))
			if result.FailedCount > 0 {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("%d record(s) failed:", result.FailedCount)))
				for _, itemErr := range result.Errors {
					fmt.Println("  " + cli.ErrorStyle.Render(itemErr))
				}
			}
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "skip interactive review, import exact matches only")
	return cmd
}

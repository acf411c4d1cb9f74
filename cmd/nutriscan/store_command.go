package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutriscan/internal/config"
	"nutriscan/internal/nutrition"
	"nutriscan/internal/resultcache"
	"nutriscan/internal/services"
	"nutriscan/internal/textutil"
)

type storedRecord struct {
	Label  string           `json:"label"`
	Record nutrition.Record `json:"record"`
}

func newStoreCommand(ctx *commandContext) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the local nutrition store",
	}

	storeCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored nutrition records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			records, err := env.source.Records(cmd.Context())
			if err != nil {
				return err
			}
			labels := nutrition.Labels(records)
			if ctx.jsonOutput() {
				list := make([]storedRecord, 0, len(labels))
				for _, label := range labels {
					list = append(list, storedRecord{Label: label, Record: records[label]})
				}
				return writeJSON(cmd, list)
			}
			if len(labels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nutrition store is empty")
				return nil
			}
			rows := make([][]string, 0, len(labels))
			for _, label := range labels {
				rec := records[label]
				rows = append(rows, []string{
					label,
					rec.Calories.String(),
					rec.Fat.String(),
					rec.Carbs.String(),
					rec.Protein.String(),
					string(rec.Source),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Label", "Calories", "Fat", "Carbs", "Protein", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	})

	storeCmd.AddCommand(&cobra.Command{
		Use:   "show <label...>",
		Short: "Show the stored record for a label without contacting OpenFoodFacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			label := textutil.CanonicalLabel(joinArgs(args))
			rec, ok, err := env.records.Get(cmd.Context(), label)
			if err != nil {
				return err
			}
			if !ok {
				return services.Wrap(services.ErrNotFound, "store", "show", fmt.Sprintf("no record stored for %q", label), nil)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, storedRecord{Label: label, Record: rec})
			}
			renderRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	})

	storeCmd.AddCommand(newStoreImportCommand(ctx))

	return storeCmd
}

type importSummary struct {
	Database     string `json:"database"`
	Fingerprints int    `json:"fingerprints"`
	Records      int    `json:"records"`
}

func newStoreImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy the JSON cache and nutrition files into the SQLite database",
		Long: `Copy the JSON result cache and nutrition store into the SQLite database.

Run this once after switching storage.backend to "sqlite". The JSON files are
read from paths.result_cache and paths.nutrition_store and left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if env.db == nil {
				return services.Wrap(services.ErrConfiguration, "store", "import",
					fmt.Sprintf("storage.backend must be %q to import", config.StorageBackendSQLite), nil)
			}
			stats, err := env.db.Import(cmd.Context(),
				resultcache.NewJSONCache(env.cfg.Paths.ResultCache, env.logger),
				nutrition.NewJSONStore(env.cfg.Paths.NutritionStore, env.logger),
			)
			if err != nil {
				return err
			}

			summary := importSummary{Database: env.db.Path(), Fingerprints: stats.Fingerprints, Records: stats.Records}
			if ctx.jsonOutput() {
				return writeJSON(cmd, summary)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d fingerprints and %d nutrition records into %s\n",
				summary.Fingerprints, summary.Records, summary.Database)
			return nil
		},
	}
}

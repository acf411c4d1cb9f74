package main

import (
	"strings"

	"github.com/spf13/cobra"

	"nutriscan/internal/nutrition"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	lookupCmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up nutrition by product name or barcode",
	}

	lookupCmd.AddCommand(&cobra.Command{
		Use:   "name <product...>",
		Short: "Look up a product name, local store first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			rec, err := env.source.GetInfo(cmd.Context(), joinArgs(args))
			if err != nil {
				return err
			}
			return printRecord(cmd, ctx, rec)
		},
	})

	lookupCmd.AddCommand(&cobra.Command{
		Use:   "barcode <code>",
		Short: "Look up a barcode on OpenFoodFacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			rec := env.source.GetInfoByBarcode(cmd.Context(), strings.TrimSpace(args[0]))
			return printRecord(cmd, ctx, rec)
		},
	})

	return lookupCmd
}

func printRecord(cmd *cobra.Command, ctx *commandContext, rec nutrition.Record) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, rec)
	}
	renderRecord(cmd.OutOrStdout(), rec)
	return nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

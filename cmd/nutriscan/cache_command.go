package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"nutriscan/internal/fingerprint"
)

type cacheEntry struct {
	Fingerprint string `json:"fingerprint"`
	Label       string `json:"label"`
	Cached      bool   `json:"cached"`
}

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the image fingerprint cache",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached fingerprints and their labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			entries, err := env.cache.Entries(cmd.Context())
			if err != nil {
				return err
			}
			list := make([]cacheEntry, 0, len(entries))
			for fp, label := range entries {
				list = append(list, cacheEntry{Fingerprint: fp, Label: label, Cached: true})
			}
			sort.Slice(list, func(i, j int) bool {
				if list[i].Label != list[j].Label {
					return list[i].Label < list[j].Label
				}
				return list[i].Fingerprint < list[j].Fingerprint
			})

			if ctx.jsonOutput() {
				return writeJSON(cmd, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Result cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, entry := range list {
				rows = append(rows, []string{entry.Fingerprint, entry.Label})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Fingerprint", "Label"}, rows, nil))
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "show <image>",
		Short: "Show the fingerprint and cached label of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digest, err := fingerprint.File(args[0])
			if err != nil {
				return err
			}

			env, err := ctx.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			label, ok, err := env.cache.Lookup(cmd.Context(), digest.String())
			if err != nil {
				return err
			}
			entry := cacheEntry{Fingerprint: digest.String(), Label: label, Cached: ok}
			if ctx.jsonOutput() {
				return writeJSON(cmd, entry)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fingerprint: %s\n", entry.Fingerprint)
			fmt.Fprintf(out, "Cached:      %s\n", yesNo(ok))
			if ok {
				fmt.Fprintf(out, "Label:       %s\n", label)
			}
			return nil
		},
	})

	return cacheCmd
}

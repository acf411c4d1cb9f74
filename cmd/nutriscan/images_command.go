package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"nutriscan/internal/config"
	"nutriscan/internal/imagestore"
	"nutriscan/internal/services"
)

const defaultMaxDistance = 6

func newImagesCommand(ctx *commandContext) *cobra.Command {
	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "Inspect the learned image dataset",
	}
	imagesCmd.AddCommand(newImagesListCommand(ctx))
	imagesCmd.AddCommand(newImagesSimilarCommand(ctx))
	return imagesCmd
}

// localImageDir returns the learned image directory, which only exists for
// the dir backend.
func localImageDir(cfg *config.Config, operation string) (string, error) {
	if cfg.Images.Backend != config.ImageBackendDir {
		return "", services.Wrap(services.ErrConfiguration, "images", operation,
			fmt.Sprintf("images.backend %q has no local dataset", cfg.Images.Backend), nil)
	}
	return cfg.Paths.ImageDir, nil
}

func newImagesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List learned images and their labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := localImageDir(cfg, "list")
			if err != nil {
				return err
			}
			entries, err := imagestore.List(dir)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if entries == nil {
					entries = []imagestore.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No learned images in %s\n", dir)
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Name,
					entry.Label,
					strconv.FormatInt(entry.Size, 10),
					entry.ModTime.Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Label", "Bytes", "Modified"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newImagesSimilarCommand(ctx *commandContext) *cobra.Command {
	var maxDistance int

	cmd := &cobra.Command{
		Use:   "similar",
		Short: "Find near-duplicate learned images by perceptual hash",
		Long: `Find near-duplicate learned images by perceptual hash.

Pairs within --max-distance bits are listed closest first. Pairs stored under
different labels usually point at a mislabelled image.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxDistance < 0 {
				return services.Wrap(services.ErrValidation, "images", "similar", "--max-distance must not be negative", nil)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := localImageDir(cfg, "similar")
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			pairs, err := imagestore.NearDuplicates(cmd.Context(), dir, maxDistance, cfg.Images.MaxHashed, logger)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if pairs == nil {
					pairs = []imagestore.Pair{}
				}
				return writeJSON(cmd, pairs)
			}
			if len(pairs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No near-duplicate images found")
				return nil
			}
			rows := make([][]string, 0, len(pairs))
			for _, pair := range pairs {
				rows = append(rows, []string{
					pair.A.Name,
					pair.B.Name,
					strconv.Itoa(pair.Distance),
					yesNo(pair.SameLabel()),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Image", "Similar To", "Distance", "Same Label"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDistance, "max-distance", defaultMaxDistance, "Largest Hamming distance reported as similar")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutriscan/internal/nutrition"
	"nutriscan/internal/photo"
)

type learnResult struct {
	Fingerprint string `json:"fingerprint"`
	Label       string `json:"label"`
	ImagePath   string `json:"image_path,omitempty"`
	Record      nutrition.Record `json:"record"`
}

func newLearnCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "learn <image> <label...>",
		Short: "Label a photo, save it to the dataset and fetch its nutrition",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ph, err := photo.Load(args[0])
			if err != nil {
				return err
			}
			label := joinArgs(args[1:])

			env, err := ctx.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			pipe, err := env.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			res, err := pipe.Learn(cmd.Context(), ph, label)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, learnResult{
					Fingerprint: ph.Fingerprint().String(),
					Label:       label,
					ImagePath:   res.ImagePath,
					Record:      res.Record,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Learned %s as %q\n", ph.Fingerprint().Short(), label)
			if res.ImagePath != "" {
				fmt.Fprintf(out, "Saved image: %s\n", res.ImagePath)
			}
			renderRecord(out, res.Record)
			return nil
		},
	}
}

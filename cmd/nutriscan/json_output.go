package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"nutriscan/internal/services"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type errorOutput struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// reportError prints a failed command's error to w, as a JSON object when
// --json was given.
func reportError(root *cobra.Command, w io.Writer, err error) {
	if asJSON, _ := root.PersistentFlags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(errorOutput{Error: err.Error(), Kind: services.Kind(err)}); encErr == nil {
			return
		}
	}
	fmt.Fprintln(w, err)
}

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"votd/internal/prompt"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newTerminal(cmd *cobra.Command) *prompt.Terminal {
	return prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
}

package main

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"votd/internal/preflight"
)

const statusLabelWidth = 22

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check directories, the dictionary and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			creds, err := ctx.credentials()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, creds)
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			for _, r := range results {
				fmt.Fprintln(out, renderStatusLine(r, colorize))
			}
			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}

func renderStatusLine(r preflight.Result, colorize bool) string {
	status, color := "OK", text.FgGreen
	if !r.Passed {
		status, color = "ERROR", text.FgRed
	}
	line := fmt.Sprintf("%-*s [%s] %s", statusLabelWidth, r.Name+":", status, r.Detail)
	if colorize {
		return color.Sprint(line)
	}
	return line
}

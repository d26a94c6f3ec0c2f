package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBacklogCommand(ctx *commandContext) *cobra.Command {
	var flags updateFlags

	cmd := &cobra.Command{
		Use:   "backlog",
		Short: "List posted verbs that have no cards yet, in posting order",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.dryRun = true
			report, err := runDeckUpdate(cmd, ctx, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(report.Backlog) == 0 {
				fmt.Fprintln(out, "Decks are up to date")
				return nil
			}
			printBacklog(out, report.Backlog)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

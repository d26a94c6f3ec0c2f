package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"votd/internal/verbcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the verb cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every cached verb",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer closeQuietly(ctx.logger, "verb cache", cache)

			entries, err := cache.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Verb cache is empty")
				return nil
			}
			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				updated := "unknown"
				if !entry.UpdatedAt.IsZero() {
					updated = entry.UpdatedAt.Local().Format(stampLayout)
				}
				rows = append(rows, []string{
					entry.Word,
					strconv.Itoa(len(entry.Fields)),
					strings.Join(entry.Fields, ","),
					updated,
				})
			}
			writeTable(out, []string{"Verb", "Fields", "Names", "Updated"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft})
			return nil
		},
	}
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <verb>...",
		Short: "Print the stored fields of a verb as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer closeQuietly(ctx.logger, "verb cache", cache)

			verb := verbArg(args)
			fields, err := cache.Get(cmd.Context(), verb)
			if errors.Is(err, verbcache.ErrNotFound) {
				return fmt.Errorf("verb %q is not cached", verb)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd, fields)
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <verb>...",
		Short: "Drop a verb so the next lookup rebuilds it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer closeQuietly(ctx.logger, "verb cache", cache)

			verb := verbArg(args)
			removed, err := cache.Remove(cmd.Context(), verb)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("verb %q is not cached", verb)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the verb cache\n", verb)
			return nil
		},
	}
}

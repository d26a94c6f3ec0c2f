package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"votd/internal/collection"
	"votd/internal/ledger"
	"votd/internal/notifications"
	"votd/internal/workflow"
)

func newDecksCommand(ctx *commandContext) *cobra.Command {
	decksCmd := &cobra.Command{
		Use:   "decks",
		Short: "Maintain the weekly flashcard decks",
	}

	decksCmd.AddCommand(newDecksUpdateCommand(ctx))
	decksCmd.AddCommand(newDecksListCommand(ctx))

	return decksCmd
}

type updateFlags struct {
	verbsFile string
	keepGoing bool
	dryRun    bool
}

func (f *updateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.verbsFile, "verbs-file", "", "Read posted verbs from a file (one per line) instead of the blog")
}

func newDecksUpdateCommand(ctx *commandContext) *cobra.Command {
	var flags updateFlags

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Add cards for every posted verb the decks lack and publish the packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runDeckUpdate(cmd, ctx, flags)
			printUpdateReport(cmd.OutOrStdout(), report, flags.dryRun)
			switch {
			case err != nil && notifiable(err):
				ctx.notify(cmd.Context(), func(c context.Context, n notifications.Service) error {
					return n.NotifyError(c, err, "decks update")
				})
			case !flags.dryRun && len(report.Added) > 0:
				ctx.notify(cmd.Context(), func(c context.Context, n notifications.Service) error {
					return n.NotifyDecksUpdated(c, len(report.Added), len(report.Skipped), filepath.Base(report.WeekPackage))
				})
			}
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.keepGoing, "keep-going", false, "Skip verbs that fail instead of stopping")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the backlog without changing the decks")
	return cmd
}

func runDeckUpdate(cmd *cobra.Command, ctx *commandContext, flags updateFlags) (workflow.UpdateReport, error) {
	logger, err := ctx.ensureLogger()
	if err != nil {
		return workflow.UpdateReport{}, err
	}
	opts, err := ctx.updateOptions()
	if err != nil {
		return workflow.UpdateReport{}, err
	}
	opts.KeepGoing = flags.keepGoing
	opts.DryRun = flags.dryRun

	source, err := ctx.verbSource(cmd.Context(), flags.verbsFile)
	if err != nil {
		return workflow.UpdateReport{}, err
	}
	creds, err := ctx.credentials()
	if err != nil {
		return workflow.UpdateReport{}, err
	}
	syncer, err := ctx.newSyncer(cmd.Context(), creds)
	if err != nil {
		return workflow.UpdateReport{}, err
	}
	open, err := ctx.collectionOpener()
	if err != nil {
		return workflow.UpdateReport{}, err
	}

	var builder workflow.RecordBuilder
	var audio workflow.AudioSource
	if !flags.dryRun {
		cache, err := ctx.openCache()
		if err != nil {
			return workflow.UpdateReport{}, err
		}
		defer closeQuietly(logger, "verb cache", cache)
		if builder, err = ctx.newBuilder(cmd, cache); err != nil {
			return workflow.UpdateReport{}, err
		}
		if audio, err = ctx.newAudio(creds); err != nil {
			return workflow.UpdateReport{}, err
		}
	}

	updater := workflow.NewDeckUpdater(source, builder, audio, syncer, open, opts, logger)
	return updater.Run(cmd.Context())
}

func printUpdateReport(out io.Writer, report workflow.UpdateReport, dryRun bool) {
	if report.Posted == 0 && len(report.Backlog) == 0 {
		return
	}
	fmt.Fprintf(out, "Posted verbs: %d (year %d)\n", report.Posted, report.Year)
	if len(report.Backlog) == 0 {
		fmt.Fprintln(out, "Decks are up to date")
		return
	}
	if dryRun {
		printBacklog(out, report.Backlog)
		return
	}
	fmt.Fprintf(out, "Added: %d of %d\n", len(report.Added), len(report.Backlog))
	for _, skipped := range report.Skipped {
		fmt.Fprintf(out, "Skipped %s: %v\n", skipped.Verb, skipped.Err)
	}
	if report.YearPackage != "" {
		fmt.Fprintf(out, "Year package: %s\n", report.YearPackage)
		for _, pkg := range report.WeekPackages {
			fmt.Fprintf(out, "Week package: %s\n", pkg)
		}
	}
}

func printBacklog(out io.Writer, verbs []string) {
	rows := make([][]string, 0, len(verbs))
	for i, verb := range verbs {
		rows = append(rows, []string{strconv.Itoa(i + 1), verb})
	}
	writeTable(out, []string{"#", "Verb"}, rows, []columnAlignment{alignRight, alignLeft})
}

func newDecksListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the decks of the working collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			coll, err := collection.Open(cfg.Paths.CollectionPath, logger)
			if err != nil {
				return err
			}
			defer closeQuietly(logger, "collection", coll)

			led, err := ledger.Rebuild(cmd.Context(), coll, ledger.Options{
				RootName:    cfg.Decks.RootName,
				DefaultName: cfg.Decks.DefaultName,
				WeekSize:    cfg.Decks.WeekSize,
				Tenses:      cfg.TenseNames(),
			}, logger)
			if err != nil {
				return err
			}

			rows := [][]string{}
			for _, d := range led.Decks() {
				verbs, err := led.Verbs(cmd.Context(), d.ID)
				if err != nil {
					return err
				}
				week := ""
				if d.Week > 0 {
					week = strconv.Itoa(d.Week)
				}
				rows = append(rows, []string{
					strconv.FormatInt(d.ID, 10),
					d.Name,
					week,
					d.Tense,
					strconv.Itoa(len(d.CardIDs)),
					strconv.Itoa(len(verbs)),
				})
			}
			writeTable(cmd.OutOrStdout(),
				[]string{"ID", "Deck", "Week", "Tense", "Cards", "Verbs"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignRight},
			)
			return nil
		},
	}
}

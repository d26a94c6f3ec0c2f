package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"votd/internal/notifications"
	"votd/internal/prompt"
	"votd/internal/workflow"
)

func newPostCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "post <verb>...",
		Short: "Publish the verb of the day",
		Long: "Look up the verb, refuse it when a post already uses it, render the blog template\n" +
			"and publish after confirmation.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidatePublishing(); err != nil {
				return err
			}
			if !assumeYes && !isTerminal(cmd.InOrStdin()) {
				return errors.New("stdin is not a terminal; pass --yes to publish without confirmation")
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			creds, err := ctx.credentials()
			if err != nil {
				return err
			}
			blog, err := ctx.newBlog(cmd.Context(), creds)
			if err != nil {
				return err
			}

			lock := workflow.NewRunLock(lockPath(cfg))
			if err := lock.Acquire(); err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer closeQuietly(logger, "verb cache", cache)
			builder, err := ctx.newBuilder(cmd, cache)
			if err != nil {
				return err
			}

			var confirm workflow.Confirmer = newTerminal(cmd)
			if assumeYes {
				confirm = prompt.Yes{}
			}
			mood, tense := postTense(cfg)
			publisher := workflow.NewPublisher(builder, blog, confirm, cmd.OutOrStdout(), workflow.PublishOptions{
				TemplateID: cfg.WordPress.TemplateID,
				Mood:       mood,
				Tense:      tense,
				Categories: cfg.WordPress.Categories,
				Tags:       cfg.WordPress.Tags,
			}, logger)

			verb := verbArg(args)
			res, err := publisher.Post(cmd.Context(), verb)
			if err != nil {
				if notifiable(err) {
					ctx.notify(cmd.Context(), func(c context.Context, n notifications.Service) error {
						return n.NotifyError(c, err, "post "+verb)
					})
				}
				return err
			}
			if res.Published {
				fmt.Fprintf(cmd.OutOrStdout(), "Published %q: %s\n", res.Draft.Title, res.Post.URL)
				ctx.notify(cmd.Context(), func(c context.Context, n notifications.Service) error {
					return n.NotifyPostPublished(c, res.Draft.Title, res.Post.URL)
				})
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Publish without asking for confirmation")
	return cmd
}

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"votd/internal/conjugation"
)

type lookupOutput struct {
	Verb               string            `json:"verb"`
	Translations       []string          `json:"translations"`
	TableKey           string            `json:"table_key,omitempty"`
	InfoKey            string            `json:"info_key,omitempty"`
	Conjugations       conjugation.Table `json:"conjugations"`
	TargetConjugations conjugation.Table `json:"target_conjugations"`
	Vars               map[string]string `json:"vars,omitempty"`
}

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var withVars bool

	cmd := &cobra.Command{
		Use:   "lookup <verb>...",
		Short: "Build a verb record and print its conjugation tables",
		Long: "Build a verb record from the dictionary, asking which English translations to keep,\n" +
			"and print it as JSON. All arguments form the verb so phrasal verbs need no quoting.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verb := verbArg(args)
			if verb == "" {
				return errors.New("verb is required")
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer closeQuietly(logger, "verb cache", cache)

			builder, err := ctx.newBuilder(cmd, cache)
			if err != nil {
				return err
			}
			rec, err := builder.Build(cmd.Context(), verb)
			if err != nil {
				return err
			}

			out := lookupOutput{
				Verb:               rec.Word,
				Translations:       rec.Translations,
				TableKey:           rec.TableKey,
				InfoKey:            rec.InfoKey,
				Conjugations:       rec.Conjugations,
				TargetConjugations: rec.TargetConjugations,
			}
			if withVars {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				mood, tense := postTense(cfg)
				if out.Vars, err = rec.TemplateVars(mood, tense); err != nil {
					return err
				}
			}
			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().BoolVar(&withVars, "vars", false, "Include the post template variables")
	return cmd
}

package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"votd/internal/leo"
	"votd/internal/logging"
	"votd/internal/services"
	"votd/internal/textutil"
	"votd/internal/wordpress"
)

// ErrAlreadyPosted is returned when the blog already has a post for the verb.
var ErrAlreadyPosted = fmt.Errorf("%w: verb already posted", services.ErrRunAborted)

// RecordBuilder resolves a verb into its record.
type RecordBuilder interface {
	Build(ctx context.Context, word string) (*leo.Record, error)
}

// Blog is the publishing service used by Publisher.
type Blog interface {
	FindPostByTitlePrefix(ctx context.Context, keyword string) (*wordpress.Post, error)
	Template(ctx context.Context, id string) (wordpress.Template, error)
	Publish(ctx context.Context, title, body string, categories, tags []string) (*wordpress.Post, error)
}

// Confirmer gates an irreversible step.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// PublishOptions selects the template, its conjugation and post taxonomy.
type PublishOptions struct {
	TemplateID string
	Mood       string
	Tense      string
	Categories []string
	Tags       []string
}

// PostResult describes a Post call that did not fail.
type PostResult struct {
	Draft     wordpress.Draft
	Vars      map[string]string
	Post      *wordpress.Post
	Published bool
}

// Publisher posts the verb of the day.
type Publisher struct {
	builder RecordBuilder
	blog    Blog
	confirm Confirmer
	out     io.Writer
	opts    PublishOptions
	logger  *slog.Logger
}

// NewPublisher wires a Publisher. The preview is written to out.
func NewPublisher(builder RecordBuilder, blog Blog, confirm Confirmer, out io.Writer, opts PublishOptions, logger *slog.Logger) *Publisher {
	if out == nil {
		out = io.Discard
	}
	return &Publisher{
		builder: builder,
		blog:    blog,
		confirm: confirm,
		out:     out,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "publish"),
	}
}

// Post looks up verb, refuses verbs that were already posted, renders the
// blog template and publishes it once the operator confirms the preview.
func (p *Publisher) Post(ctx context.Context, verb string) (PostResult, error) {
	verb = textutil.CollapseSpace(textutil.Sanitize(verb))
	if verb == "" {
		return PostResult{}, services.Wrap(services.ErrConfiguration, "publish", "post", "no verb given", nil)
	}
	ctx = services.WithVerb(ctx, verb)
	logger := logging.WithContext(ctx, p.logger)

	rec, err := p.builder.Build(ctx, verb)
	if err != nil {
		return PostResult{}, err
	}

	existing, err := p.blog.FindPostByTitlePrefix(services.WithStage(ctx, "duplicate_check"), verb)
	if err != nil {
		return PostResult{}, err
	}
	if existing != nil {
		return PostResult{}, fmt.Errorf("%w: %s already used in %q (%s)", ErrAlreadyPosted, verb, existing.Title, existing.URL)
	}

	vars, err := rec.TemplateVars(p.opts.Mood, p.opts.Tense)
	if err != nil {
		return PostResult{}, services.Wrap(services.ErrConfiguration, "publish", "template vars", verb, err)
	}
	tpl, err := p.blog.Template(services.WithStage(ctx, "template"), p.opts.TemplateID)
	if err != nil {
		return PostResult{}, err
	}
	draft, err := wordpress.Render(tpl, vars)
	if err != nil {
		if errors.Is(err, wordpress.ErrEmptyBody) {
			return PostResult{}, services.Wrap(services.ErrVerbFailed, "publish", "render", verb, err)
		}
		return PostResult{}, services.Wrap(services.ErrConfiguration, "publish", "render", p.opts.TemplateID, err)
	}
	result := PostResult{Draft: draft, Vars: vars}

	if err := p.preview(result); err != nil {
		return result, err
	}
	ok, err := p.confirm.Confirm(ctx, "Ok?")
	if err != nil {
		return result, services.Wrap(services.ErrRunAborted, "publish", "confirm", verb, err)
	}
	if !ok {
		fmt.Fprintln(p.out, "Ok, exiting.")
		logger.Info("post declined")
		return result, nil
	}

	post, err := p.blog.Publish(services.WithStage(ctx, "publish"), draft.Title, draft.Body, p.opts.Categories, p.opts.Tags)
	if err != nil {
		return result, err
	}
	result.Post = post
	result.Published = true
	logger.Info("verb of the day posted", logging.String("title", draft.Title), logging.String("url", post.URL))
	return result, nil
}

func (p *Publisher) preview(result PostResult) error {
	vars, err := json.MarshalIndent(result.Vars, "", "    ")
	if err != nil {
		return fmt.Errorf("encode template vars: %w", err)
	}
	fmt.Fprintf(p.out, "\n%s\n\nTitle: %s\n\n", vars, result.Draft.Title)
	return nil
}

package wordpress

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultTitle is used when the template post has no title.
const DefaultTitle = "{{ verb_de }} " + TitleSeparator + " {{ verb_en }}"

// ErrEmptyBody is returned when a rendered body sanitizes to nothing.
var ErrEmptyBody = errors.New("rendered post body is empty")

// Template holds Jinja-style title and body sources.
type Template struct {
	Title string
	Body  string
}

// Draft is a rendered post ready to publish.
type Draft struct {
	Title string
	Body  string
}

var bodyPolicy = bluemonday.UGCPolicy().
	AllowAttrs("class").OnElements("span", "div", "table", "td", "th")

// Render fills the template with vars. The body is passed through a user
// content HTML policy.
func Render(tpl Template, vars map[string]string) (Draft, error) {
	ctx := make(pongo2.Context, len(vars))
	for k, v := range vars {
		ctx[k] = v
	}
	titleSource := tpl.Title
	if strings.TrimSpace(titleSource) == "" {
		titleSource = DefaultTitle
	}
	title, err := execute("title", titleSource, ctx)
	if err != nil {
		return Draft{}, err
	}
	body, err := execute("body", tpl.Body, ctx)
	if err != nil {
		return Draft{}, err
	}
	body = bodyPolicy.Sanitize(body)
	if strings.TrimSpace(body) == "" {
		return Draft{}, ErrEmptyBody
	}
	return Draft{Title: strings.TrimSpace(title), Body: body}, nil
}

func execute(name, source string, ctx pongo2.Context) (string, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", name, err)
	}
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return out, nil
}

package wordpress

import (
	"context"
	"html"
	"net/url"
	"strconv"
	"strings"

	"votd/internal/logging"
)

// TitleSeparator splits a post title into the verb and its gloss.
const TitleSeparator = "—"

const pageSize = 100

// Post is a published or template post.
type Post struct {
	ID      int64  `json:"ID"`
	Title   string `json:"title"`
	URL     string `json:"URL"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

type postList struct {
	Found int    `json:"found"`
	Posts []Post `json:"posts"`
}

// TitleVerb returns the part of a post title before the em dash.
func TitleVerb(title string) string {
	head, _, _ := strings.Cut(html.UnescapeString(title), TitleSeparator)
	return strings.TrimSpace(head)
}

// FindPostByTitlePrefix returns the first post whose title verb equals
// keyword, or nil when none does.
func (c *Client) FindPostByTitlePrefix(ctx context.Context, keyword string) (*Post, error) {
	var list postList
	query := url.Values{"search": {keyword}, "fields": {"ID,title,URL"}}
	if err := c.get(ctx, c.siteURL(c.opts.SearchAPIURL, "posts", ""), query, &list); err != nil {
		return nil, err
	}
	for _, post := range list.Posts {
		if TitleVerb(post.Title) == keyword {
			post.Title = html.UnescapeString(post.Title)
			return &post, nil
		}
	}
	return nil, nil
}

// Template fetches the post holding the title and body templates.
func (c *Client) Template(ctx context.Context, id string) (Template, error) {
	var post Post
	if err := c.get(ctx, c.siteURL(c.opts.APIURL, "posts", url.PathEscape(id)), nil, &post); err != nil {
		return Template{}, err
	}
	return Template{Title: html.UnescapeString(post.Title), Body: post.Content}, nil
}

// ListTitles returns the titles of every post in category, oldest first.
func (c *Client) ListTitles(ctx context.Context, category string) ([]string, error) {
	var titles []string
	for page := 1; ; page++ {
		query := url.Values{
			"category": {category},
			"order":    {"ASC"},
			"order_by": {"date"},
			"number":   {strconv.Itoa(pageSize)},
			"page":     {strconv.Itoa(page)},
			"fields":   {"ID,title,date"},
		}
		var list postList
		if err := c.get(ctx, c.siteURL(c.opts.APIURL, "posts", ""), query, &list); err != nil {
			return nil, err
		}
		for _, post := range list.Posts {
			titles = append(titles, html.UnescapeString(post.Title))
		}
		if len(list.Posts) < pageSize || len(titles) >= list.Found {
			break
		}
	}
	c.logger.Debug("post titles listed", logging.String("category", category), logging.Int("count", len(titles)))
	return titles, nil
}

// PostedVerbs lists the verbs of every post in category in posting order.
func (c *Client) PostedVerbs(ctx context.Context, category string) ([]string, error) {
	titles, err := c.ListTitles(ctx, category)
	if err != nil {
		return nil, err
	}
	verbs := make([]string, 0, len(titles))
	for _, title := range titles {
		if verb := TitleVerb(title); verb != "" {
			verbs = append(verbs, verb)
		}
	}
	return verbs, nil
}

// Publish creates a new post.
func (c *Client) Publish(ctx context.Context, title, body string, categories, tags []string) (*Post, error) {
	form := url.Values{
		"title":      {title},
		"content":    {body},
		"categories": {strings.Join(categories, ",")},
		"tags":       {strings.Join(tags, ",")},
		"status":     {"publish"},
	}
	var post Post
	if err := c.postForm(ctx, c.siteURL(c.opts.APIURL, "posts", "new", ""), form, &post); err != nil {
		return nil, err
	}
	c.logger.Info("post published",
		logging.Int64("post_id", post.ID),
		logging.String("url", post.URL),
	)
	return &post, nil
}

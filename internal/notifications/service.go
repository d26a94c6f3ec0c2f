package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"votd/internal/config"
)

const userAgent = "votd/0.1.0"

// Service defines the notification surface used by the commands.
type Service interface {
	NotifyPostPublished(ctx context.Context, verb, url string) error
	NotifyDecksUpdated(ctx context.Context, added, skipped int, weekPackage string) error
	NotifyError(ctx context.Context, err error, label string) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy backed service, or a no-op one when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
	click    string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyPostPublished(ctx context.Context, verb, url string) error {
	verb = strings.TrimSpace(verb)
	message := fmt.Sprintf("📝 Verb of the day: %s", verb)
	if url = strings.TrimSpace(url); url != "" {
		message = fmt.Sprintf("%s\n%s", message, url)
	}
	return n.send(ctx, payload{
		title:   "VotD - Published",
		message: message,
		tags:    []string{"votd", "post", "published"},
		click:   url,
	})
}

func (n *ntfyService) NotifyDecksUpdated(ctx context.Context, added, skipped int, weekPackage string) error {
	data := payload{
		title: "VotD - Decks Updated",
		tags:  []string{"votd", "decks", "updated"},
	}
	switch {
	case skipped == 0:
		data.message = fmt.Sprintf("🗂️ Added %d %s", added, plural(added, "verb", "verbs"))
	default:
		data.title = "VotD - Decks Updated (with skips)"
		data.message = fmt.Sprintf("🗂️ Added %d, skipped %d", added, skipped)
	}
	if weekPackage = strings.TrimSpace(weekPackage); weekPackage != "" {
		data.message = fmt.Sprintf("%s\nPackage: %s", data.message, weekPackage)
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, label string) error {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if label = strings.TrimSpace(label); label != "" {
		builder.WriteString(" during ")
		builder.WriteString(label)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "VotD - Error",
		message:  builder.String(),
		tags:     []string{"votd", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "VotD - Test",
		message:  "🧪 Notification test",
		tags:     []string{"votd", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}
	if data.click != "" {
		req.Header.Set("Click", data.click)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

type noopService struct{}

func (noopService) NotifyPostPublished(context.Context, string, string) error  { return nil }
func (noopService) NotifyDecksUpdated(context.Context, int, int, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error           { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }

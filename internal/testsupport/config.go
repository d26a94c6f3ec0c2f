package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"votd/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory. Network
// collaborators that are optional (audio, Drive) start disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	data := filepath.Join(base, "data")
	cfgVal.Paths = config.Paths{
		DataDir:        data,
		CachePath:      filepath.Join(data, "verbs.db"),
		CollectionPath: filepath.Join(data, "collection.db"),
		PackageDir:     filepath.Join(base, "packages"),
		AudioDir:       filepath.Join(base, "forvo"),
		LogDir:         filepath.Join(base, "logs"),
		EnvFile:        filepath.Join(base, ".env"),
	}
	cfgVal.Forvo.Enabled = false
	cfgVal.Drive.Enabled = false

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithLeoBaseURL points dictionary lookups at a test server.
func WithLeoBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Leo.BaseURL = url
	}
}

// WithWordPress points every blog endpoint at a test server and names the
// site and template.
func WithWordPress(url, site, templateID string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.WordPress.APIURL = url + "/rest/v1.1"
		b.cfg.WordPress.SearchAPIURL = url + "/rest/v1.2"
		b.cfg.WordPress.OAuthURL = url + "/oauth2/token"
		b.cfg.WordPress.Site = site
		b.cfg.WordPress.TemplateID = templateID
	}
}

// WithWeekSize overrides the number of verbs per week.
func WithWeekSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Decks.WeekSize = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

// WriteConfig encodes cfg as TOML at path and returns path.
func WriteConfig(t testing.TB, cfg *config.Config, path string) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config %s: %v", path, err)
	}
	return path
}

// WithNtfyTopic sends notifications to url.
func WithNtfyTopic(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = url
	}
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"votd/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "votd")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.CachePath != filepath.Join(wantData, "verbs.db") {
		t.Fatalf("unexpected cache path: %q", cfg.Paths.CachePath)
	}
	if cfg.Paths.CollectionPath != filepath.Join(wantData, "current", "collection.db") {
		t.Fatalf("unexpected collection path: %q", cfg.Paths.CollectionPath)
	}
	if cfg.Decks.WeekSize != 7 {
		t.Fatalf("expected week size 7, got %d", cfg.Decks.WeekSize)
	}
	if len(cfg.Decks.Tenses) != 1 || cfg.Decks.Tenses[0].Tense != "Präsens" {
		t.Fatalf("unexpected default tenses: %+v", cfg.Decks.Tenses)
	}
	if cfg.Drive.Enabled {
		t.Fatal("expected drive sync disabled by default")
	}
	if cfg.Leo.BaseURL != "https://dict.leo.org" {
		t.Fatalf("unexpected leo base url: %q", cfg.Leo.BaseURL)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.PackageDir, cfg.Paths.AudioDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.CollectionPath)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "votd.toml")

	type tense struct {
		Name  string `toml:"name"`
		Mood  string `toml:"mood"`
		Tense string `toml:"tense"`
	}
	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Leo struct {
			BaseURL string `toml:"base_url"`
		} `toml:"leo"`
		Decks struct {
			RootName string  `toml:"root_name"`
			WeekSize int     `toml:"week_size"`
			Tenses   []tense `toml:"tenses"`
		} `toml:"decks"`
		WordPress struct {
			Categories []string `toml:"categories"`
		} `toml:"wordpress"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Leo.BaseURL = "https://example.com/leo/"
	custom.Decks.RootName = "Spanish VotD"
	custom.Decks.WeekSize = 5
	custom.Decks.Tenses = []tense{
		{Name: "Present", Mood: "Indikativ", Tense: "Präsens"},
		{Name: "Past", Mood: "Indikativ", Tense: "Präteritum"},
	}
	custom.WordPress.Categories = []string{"Verbs", " Verbs ", ""}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.CachePath != filepath.Join(tempDir, "data", "verbs.db") {
		t.Fatalf("expected cache path under custom data dir, got %q", cfg.Paths.CachePath)
	}
	if cfg.Leo.BaseURL != "https://example.com/leo" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Leo.BaseURL)
	}
	if cfg.Decks.RootName != "Spanish VotD" || cfg.Decks.WeekSize != 5 {
		t.Fatalf("unexpected decks: %+v", cfg.Decks)
	}
	if got := strings.Join(cfg.TenseNames(), ","); got != "Present,Past" {
		t.Fatalf("unexpected tense names %q", got)
	}
	if len(cfg.WordPress.Categories) != 1 || cfg.WordPress.Categories[0] != "Verbs" {
		t.Fatalf("expected categories deduplicated, got %v", cfg.WordPress.Categories)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_template_post_id") {
		t.Fatalf("sample config missing placeholder template id: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "votd") {
		t.Fatalf("expected data dir to contain votd, got %q", cfg.Paths.DataDir)
	}
	if len(cfg.Decks.Tenses) != 1 || cfg.Decks.Tenses[0].Mood != "Indikativ" {
		t.Fatalf("unexpected sample tenses: %+v", cfg.Decks.Tenses)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{name: "week size", mutate: func(c *config.Config) { c.Decks.WeekSize = -1 }, want: "decks.week_size"},
		{name: "root segments", mutate: func(c *config.Config) { c.Decks.RootName = "A::B" }, want: "decks.root_name"},
		{name: "tense mood", mutate: func(c *config.Config) { c.Decks.Tenses[0].Mood = "" }, want: "decks.tenses[0].mood"},
		{name: "duplicate tense", mutate: func(c *config.Config) {
			c.Decks.Tenses = append(c.Decks.Tenses, c.Decks.Tenses[0])
		}, want: "duplicated"},
		{name: "leo url", mutate: func(c *config.Config) { c.Leo.BaseURL = "dict.leo.org" }, want: "leo.base_url"},
		{name: "drive", mutate: func(c *config.Config) { c.Drive.Enabled = true; c.Drive.Folder = "it's" }, want: "drive.folder"},
		{name: "ntfy topic", mutate: func(c *config.Config) { c.Notifications.NtfyTopic = "my-votd" }, want: "notifications.ntfy_topic"},
		{name: "log level", mutate: func(c *config.Config) { c.Logging.Level = "loud" }, want: "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if err := cfg.ValidatePublishing(); err == nil {
		t.Fatal("expected publishing validation to require wordpress.site")
	}
}

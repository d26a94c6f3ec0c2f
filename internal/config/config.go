package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	DataDir        string `toml:"data_dir"`
	CachePath      string `toml:"cache_path"`
	CollectionPath string `toml:"collection_path"`
	PackageDir     string `toml:"package_dir"`
	AudioDir       string `toml:"audio_dir"`
	LogDir         string `toml:"log_dir"`
	EnvFile        string `toml:"env_file"`
}

// Leo contains settings for the dict.leo.org dictionary scraper.
type Leo struct {
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Forvo contains settings for pronunciation audio retrieval. The API key is a
// secret and lives in the environment.
type Forvo struct {
	Enabled  bool   `toml:"enabled"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
	Country  string `toml:"country"`
}

// WordPress contains settings for the verb of the day blog.
type WordPress struct {
	APIURL       string   `toml:"api_url"`
	SearchAPIURL string   `toml:"search_api_url"`
	OAuthURL     string   `toml:"oauth_url"`
	Site         string   `toml:"site"`
	TemplateID   string   `toml:"template_id"`
	Category     string   `toml:"category"`
	Categories   []string `toml:"categories"`
	Tags         []string `toml:"tags"`
}

// Drive contains settings for Google Drive package sync.
type Drive struct {
	Enabled bool `toml:"enabled"`
	// Folder is the Drive folder name, used when FolderID is empty.
	Folder   string `toml:"folder"`
	FolderID string `toml:"folder_id"`
}

// Notifications contains ntfy settings. An empty topic disables delivery.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Tense selects one table of the conjugation record for a tense deck.
type Tense struct {
	Name  string `toml:"name"`
	Mood  string `toml:"mood"`
	Tense string `toml:"tense"`
}

// Decks contains the deck naming scheme and note models.
type Decks struct {
	RootName    string  `toml:"root_name"`
	DefaultName string  `toml:"default_name"`
	WeekSize    int     `toml:"week_size"`
	Tenses      []Tense `toml:"tenses"`
	NoteModel   string  `toml:"note_model"`
	TenseModel  string  `toml:"tense_model"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for votd.
//
// Configuration sections by subsystem:
//   - Paths: data, cache, collection, package, audio and log locations
//   - Leo: dictionary scraping
//   - Forvo: pronunciation audio
//   - WordPress: blog publishing and the posted verb list
//   - Drive: package sync
//   - Notifications: ntfy push messages for finished runs
//   - Decks: week naming, tenses and note models
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Leo           Leo           `toml:"leo"`
	Forvo         Forvo         `toml:"forvo"`
	WordPress     WordPress     `toml:"wordpress"`
	Drive         Drive         `toml:"drive"`
	Notifications Notifications `toml:"notifications"`
	Decks         Decks         `toml:"decks"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("votd.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a deck update writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.PackageDir, c.Paths.AudioDir, c.Paths.LogDir}
	for _, file := range []string{c.Paths.CachePath, c.Paths.CollectionPath} {
		dirs = append(dirs, filepath.Dir(file))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TenseNames returns the display names of the configured tense decks.
func (c *Config) TenseNames() []string {
	names := make([]string, 0, len(c.Decks.Tenses))
	for _, tense := range c.Decks.Tenses {
		names = append(names, tense.Name)
	}
	return names
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

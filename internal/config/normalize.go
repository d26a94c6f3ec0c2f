package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLeo()
	c.normalizeForvo()
	c.normalizeWordPress()
	c.normalizeDrive()
	c.normalizeNotifications()
	c.normalizeDecks()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CachePath) == "" {
		c.Paths.CachePath = filepath.Join(c.Paths.DataDir, defaultCacheName)
	}
	if c.Paths.CachePath, err = expandPath(c.Paths.CachePath); err != nil {
		return fmt.Errorf("paths.cache_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.CollectionPath) == "" {
		c.Paths.CollectionPath = filepath.Join(c.Paths.DataDir, "current", defaultCollectionName)
	}
	if c.Paths.CollectionPath, err = expandPath(c.Paths.CollectionPath); err != nil {
		return fmt.Errorf("paths.collection_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.PackageDir) == "" {
		c.Paths.PackageDir = defaultPackageDir
	}
	if c.Paths.PackageDir, err = expandPath(c.Paths.PackageDir); err != nil {
		return fmt.Errorf("paths.package_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.EnvFile, err = expandPath(strings.TrimSpace(c.Paths.EnvFile)); err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeLeo() {
	c.Leo.BaseURL = strings.TrimRight(strings.TrimSpace(c.Leo.BaseURL), "/")
	if c.Leo.BaseURL == "" {
		c.Leo.BaseURL = defaultLeoBaseURL
	}
	c.Leo.UserAgent = strings.TrimSpace(c.Leo.UserAgent)
	if c.Leo.UserAgent == "" {
		c.Leo.UserAgent = defaultLeoUserAgent
	}
	if c.Leo.TimeoutSeconds == 0 {
		c.Leo.TimeoutSeconds = defaultLeoTimeoutSeconds
	}
}

func (c *Config) normalizeForvo() {
	c.Forvo.BaseURL = strings.TrimRight(strings.TrimSpace(c.Forvo.BaseURL), "/")
	if c.Forvo.BaseURL == "" {
		c.Forvo.BaseURL = defaultForvoBaseURL
	}
	c.Forvo.Language = strings.ToLower(strings.TrimSpace(c.Forvo.Language))
	if c.Forvo.Language == "" {
		c.Forvo.Language = defaultForvoLanguage
	}
	c.Forvo.Country = strings.ToUpper(strings.TrimSpace(c.Forvo.Country))
	if c.Forvo.Country == "" {
		c.Forvo.Country = defaultForvoCountry
	}
}

func (c *Config) normalizeWordPress() {
	wp := &c.WordPress
	wp.APIURL = strings.TrimRight(strings.TrimSpace(wp.APIURL), "/")
	if wp.APIURL == "" {
		wp.APIURL = defaultWordPressAPIURL
	}
	wp.SearchAPIURL = strings.TrimRight(strings.TrimSpace(wp.SearchAPIURL), "/")
	if wp.SearchAPIURL == "" {
		wp.SearchAPIURL = defaultWordPressSearchAPIURL
	}
	wp.OAuthURL = strings.TrimSpace(wp.OAuthURL)
	if wp.OAuthURL == "" {
		wp.OAuthURL = defaultWordPressOAuthURL
	}
	wp.Site = strings.TrimSpace(wp.Site)
	wp.TemplateID = strings.TrimSpace(wp.TemplateID)
	wp.Category = strings.TrimSpace(wp.Category)
	if wp.Category == "" {
		wp.Category = defaultWordPressCategory
	}
	wp.Categories = uniqueTrimmed(wp.Categories)
	wp.Tags = uniqueTrimmed(wp.Tags)
}

func (c *Config) normalizeDrive() {
	c.Drive.Folder = strings.TrimSpace(c.Drive.Folder)
	if c.Drive.Folder == "" {
		c.Drive.Folder = defaultDriveFolder
	}
	c.Drive.FolderID = strings.TrimSpace(c.Drive.FolderID)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNotifyTimeoutSeconds
	}
}

func (c *Config) normalizeDecks() {
	d := &c.Decks
	d.RootName = strings.TrimSpace(d.RootName)
	if d.RootName == "" {
		d.RootName = defaultRootName
	}
	d.DefaultName = strings.TrimSpace(d.DefaultName)
	if d.DefaultName == "" {
		d.DefaultName = defaultDefaultName
	}
	if d.WeekSize == 0 {
		d.WeekSize = defaultWeekSize
	}
	if len(d.Tenses) == 0 {
		d.Tenses = defaultTenses()
	}
	for i := range d.Tenses {
		d.Tenses[i].Name = strings.TrimSpace(d.Tenses[i].Name)
		d.Tenses[i].Mood = strings.TrimSpace(d.Tenses[i].Mood)
		d.Tenses[i].Tense = strings.TrimSpace(d.Tenses[i].Tense)
	}
	d.NoteModel = strings.TrimSpace(d.NoteModel)
	if d.NoteModel == "" {
		d.NoteModel = defaultNoteModel
	}
	d.TenseModel = strings.TrimSpace(d.TenseModel)
	if d.TenseModel == "" {
		d.TenseModel = defaultTenseModel
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func uniqueTrimmed(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

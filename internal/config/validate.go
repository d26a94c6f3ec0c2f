package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLeo(); err != nil {
		return err
	}
	if err := c.validateDecks(); err != nil {
		return err
	}
	if err := c.validateDrive(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidatePublishing reports whether the blog settings are complete enough to
// read the template and create posts. It is separate from Validate so that
// offline commands work with an unconfigured blog.
func (c *Config) ValidatePublishing() error {
	if c.WordPress.Site == "" {
		return fmt.Errorf("wordpress.site is required. Edit %s (create with 'votd config init')", displayConfigPath())
	}
	if c.WordPress.TemplateID == "" {
		return errors.New("wordpress.template_id is required to render posts")
	}
	return nil
}

func (c *Config) validateLeo() error {
	if !strings.HasPrefix(c.Leo.BaseURL, "http://") && !strings.HasPrefix(c.Leo.BaseURL, "https://") {
		return fmt.Errorf("leo.base_url must be an http(s) URL, got %q", c.Leo.BaseURL)
	}
	if c.Leo.TimeoutSeconds <= 0 {
		return errors.New("leo.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDecks() error {
	if c.Decks.WeekSize <= 0 {
		return errors.New("decks.week_size must be positive")
	}
	if strings.Contains(c.Decks.RootName, "::") {
		return errors.New("decks.root_name must be a single deck name segment")
	}
	if c.Decks.DefaultName == c.Decks.RootName {
		return errors.New("decks.default_name must differ from decks.root_name")
	}
	seen := make(map[string]struct{}, len(c.Decks.Tenses))
	for i, tense := range c.Decks.Tenses {
		switch {
		case tense.Name == "":
			return fmt.Errorf("decks.tenses[%d].name must be set", i)
		case tense.Mood == "":
			return fmt.Errorf("decks.tenses[%d].mood must be set", i)
		case tense.Tense == "":
			return fmt.Errorf("decks.tenses[%d].tense must be set", i)
		case strings.Contains(tense.Name, "::"):
			return fmt.Errorf("decks.tenses[%d].name must be a single deck name segment", i)
		}
		if _, dup := seen[tense.Name]; dup {
			return fmt.Errorf("decks.tenses[%d].name %q is duplicated", i, tense.Name)
		}
		seen[tense.Name] = struct{}{}
	}
	return nil
}

func (c *Config) validateDrive() error {
	if !c.Drive.Enabled {
		return nil
	}
	if strings.ContainsAny(c.Drive.Folder, "'\\") {
		return errors.New("drive.folder must not contain quotes or backslashes")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full http(s) topic URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

func displayConfigPath() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return defaultConfigPath
	}
	return path
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"votd/internal/backlog"
	"votd/internal/collection"
	"votd/internal/config"
	"votd/internal/forvo"
	"votd/internal/leo"
	"votd/internal/logging"
	"votd/internal/notes"
	"votd/internal/notifications"
	"votd/internal/packagesync"
	"votd/internal/secrets"
	"votd/internal/services"
	"votd/internal/verbcache"
	"votd/internal/wordpress"
	"votd/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays)
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) credentials() (secrets.Credentials, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return secrets.Credentials{}, err
	}
	return secrets.Load(cfg.Paths.EnvFile)
}

func (c *commandContext) openCache() (*verbcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return verbcache.Open(cfg.Paths.CachePath, logger)
}

// newBuilder asks for translation decisions on the command's streams.
func (c *commandContext) newBuilder(cmd *cobra.Command, cache leo.Cache) (*leo.Builder, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client := leo.NewClient(cfg.Leo.BaseURL, cfg.Leo.UserAgent,
		leo.WithTimeout(time.Duration(cfg.Leo.TimeoutSeconds)*time.Second))
	reviewer := newTerminal(cmd)
	return leo.NewBuilder(client, cache, reviewer, client.BaseURL(), logger), nil
}

func (c *commandContext) newBlog(ctx context.Context, creds secrets.Credentials) (*wordpress.Client, error) {
	if err := creds.RequireWordPress(); err != nil {
		return nil, err
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return wordpress.New(ctx, wordpress.Options{
		APIURL:       cfg.WordPress.APIURL,
		SearchAPIURL: cfg.WordPress.SearchAPIURL,
		OAuthURL:     cfg.WordPress.OAuthURL,
		Site:         cfg.WordPress.Site,
	}, wordpress.Credentials{
		ClientID:     creds.WordPressClientID,
		ClientSecret: creds.WordPressClientSecret,
		Username:     creds.WordPressUsername,
		Password:     creds.WordPressPassword,
	}, wordpress.WithLogger(logger)), nil
}

func (c *commandContext) newSyncer(ctx context.Context, creds secrets.Credentials) (packagesync.Syncer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	if !cfg.Drive.Enabled {
		return packagesync.NewLocal(cfg.Paths.PackageDir, logger), nil
	}
	if err := creds.RequireDrive(); err != nil {
		return nil, err
	}
	return packagesync.NewDrive(ctx, packagesync.DriveOptions{
		Dir:          cfg.Paths.PackageDir,
		Folder:       cfg.Drive.Folder,
		FolderID:     cfg.Drive.FolderID,
		ClientID:     creds.DriveClientID,
		ClientSecret: creds.DriveClientSecret,
		RefreshToken: creds.DriveRefreshToken,
	}, logger)
}

// newAudio returns nil when pronunciation lookups are disabled.
func (c *commandContext) newAudio(creds secrets.Credentials) (workflow.AudioSource, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Forvo.Enabled {
		return nil, nil
	}
	if err := creds.RequireForvo(); err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return forvo.New(cfg.Forvo.BaseURL, creds.ForvoAPIKey, cfg.Forvo.Language, cfg.Forvo.Country,
		cfg.Paths.AudioDir, forvo.WithLogger(logger)), nil
}

func (c *commandContext) notifier() notifications.Service {
	cfg, err := c.ensureConfig()
	if err != nil {
		return notifications.NewService(&config.Config{})
	}
	return notifications.NewService(cfg)
}

// notify delivers a notification and downgrades failures to a warning.
func (c *commandContext) notify(ctx context.Context, send func(context.Context, notifications.Service) error) {
	if err := send(ctx, c.notifier()); err != nil {
		logging.WarnWithContext(c.logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run result is unaffected"),
		)
	}
}

// notifiable reports whether err is worth a push message. Refusals and user
// quits are not.
func notifiable(err error) bool {
	return err != nil &&
		!errors.Is(err, workflow.ErrAlreadyPosted) &&
		!errors.Is(err, services.ErrUserQuit) &&
		!errors.Is(err, context.Canceled)
}

// verbSource reads verbsFile when set and lists blog posts otherwise.
func (c *commandContext) verbSource(ctx context.Context, verbsFile string) (workflow.VerbSource, error) {
	if path := strings.TrimSpace(verbsFile); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			return nil, fmt.Errorf("read verbs file: %w", err)
		}
		return workflow.StaticVerbs(backlog.ParseVerbList(string(data))), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.WordPress.Site == "" {
		return nil, fmt.Errorf("wordpress.site is not set; configure the blog or pass --verbs-file")
	}
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}
	blog, err := c.newBlog(ctx, creds)
	if err != nil {
		return nil, err
	}
	category := cfg.WordPress.Category
	return workflow.VerbSourceFunc(func(ctx context.Context) ([]string, error) {
		return blog.PostedVerbs(ctx, category)
	}), nil
}

func (c *commandContext) updateOptions() (workflow.UpdateOptions, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return workflow.UpdateOptions{}, err
	}
	return workflow.UpdateOptions{
		RootName:       cfg.Decks.RootName,
		DefaultName:    cfg.Decks.DefaultName,
		WeekSize:       cfg.Decks.WeekSize,
		Tenses:         tenseSpecs(cfg),
		NoteModel:      cfg.Decks.NoteModel,
		TenseModel:     cfg.Decks.TenseModel,
		CollectionPath: cfg.Paths.CollectionPath,
		PackageDir:     cfg.Paths.PackageDir,
		LockPath:       lockPath(cfg),
	}, nil
}

func (c *commandContext) collectionOpener() (workflow.CollectionOpener, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return func(path string) (collection.Service, error) {
		coll, err := collection.Open(path, logger)
		if err != nil {
			return nil, err
		}
		return coll, nil
	}, nil
}

func tenseSpecs(cfg *config.Config) []notes.TenseSpec {
	specs := make([]notes.TenseSpec, 0, len(cfg.Decks.Tenses))
	for _, t := range cfg.Decks.Tenses {
		specs = append(specs, notes.TenseSpec{Name: t.Name, Mood: t.Mood, Tense: t.Tense})
	}
	return specs
}

// postTense is the conjugation shown in posts and lookup vars.
func postTense(cfg *config.Config) (mood, tense string) {
	if len(cfg.Decks.Tenses) == 0 {
		return "Indikativ", "Präsens"
	}
	return cfg.Decks.Tenses[0].Mood, cfg.Decks.Tenses[0].Tense
}

func lockPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, workflow.LockFileName)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func isTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func verbArg(args []string) string {
	return strings.Join(strings.Fields(strings.Join(args, " ")), " ")
}

func closeQuietly(logger *slog.Logger, name string, closer io.Closer) {
	if err := closer.Close(); err != nil && logger != nil {
		logger.Warn("close "+name, logging.Error(err))
	}
}

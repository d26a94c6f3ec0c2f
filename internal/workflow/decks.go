package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"votd/internal/backlog"
	"votd/internal/collection"
	"votd/internal/fileutil"
	"votd/internal/ledger"
	"votd/internal/logging"
	"votd/internal/notes"
	"votd/internal/packagesync"
	"votd/internal/services"
)

// VerbSource lists every posted verb in posting order.
type VerbSource interface {
	PostedVerbs(ctx context.Context) ([]string, error)
}

// VerbSourceFunc adapts a function to VerbSource.
type VerbSourceFunc func(ctx context.Context) ([]string, error)

// PostedVerbs calls f.
func (f VerbSourceFunc) PostedVerbs(ctx context.Context) ([]string, error) { return f(ctx) }

// StaticVerbs serves a fixed verb list.
type StaticVerbs []string

// PostedVerbs returns the list.
func (s StaticVerbs) PostedVerbs(context.Context) ([]string, error) { return s, nil }

// AudioSource fetches pronunciation files. An empty path means none exists.
type AudioSource interface {
	FetchPronunciation(ctx context.Context, word string) (string, error)
}

// CollectionOpener opens the staged collection file.
type CollectionOpener func(path string) (collection.Service, error)

// UpdateOptions configures a deck update.
type UpdateOptions struct {
	RootName       string
	DefaultName    string
	WeekSize       int
	Tenses         []notes.TenseSpec
	NoteModel      string
	TenseModel     string
	CollectionPath string
	PackageDir     string
	LockPath       string
	// KeepGoing skips verbs that fail instead of halting the run.
	KeepGoing bool
	// DryRun stops after computing the backlog.
	DryRun bool
}

// SkippedVerb is a verb that failed under KeepGoing.
type SkippedVerb struct {
	Verb string
	Err  error
}

// UpdateReport summarizes a deck update.
type UpdateReport struct {
	Posted      int
	Year        int
	Backlog     []string
	Added       []string
	Skipped     []SkippedVerb
	YearPackage string
	// WeekPackage is the package of the last week touched; WeekPackages
	// lists every touched week in order.
	WeekPackage  string
	WeekPackages []string
}

// DeckUpdater adds a card set for every posted verb the decks lack.
type DeckUpdater struct {
	verbs   VerbSource
	builder RecordBuilder
	audio   AudioSource
	sync    packagesync.Syncer
	open    CollectionOpener
	opts    UpdateOptions
	logger  *slog.Logger
}

// NewDeckUpdater wires a DeckUpdater. audio may be nil.
func NewDeckUpdater(verbs VerbSource, builder RecordBuilder, audio AudioSource, sync packagesync.Syncer, open CollectionOpener, opts UpdateOptions, logger *slog.Logger) *DeckUpdater {
	return &DeckUpdater{
		verbs:   verbs,
		builder: builder,
		audio:   audio,
		sync:    sync,
		open:    open,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "decks"),
	}
}

func (u *DeckUpdater) tenseNames() []string {
	names := make([]string, 0, len(u.opts.Tenses))
	for _, t := range u.opts.Tenses {
		names = append(names, t.Name)
	}
	return names
}

// Run executes one deck update.
func (u *DeckUpdater) Run(ctx context.Context) (report UpdateReport, err error) {
	lock := NewRunLock(u.opts.LockPath)
	if err := lock.Acquire(); err != nil {
		return report, err
	}
	defer func() {
		if unlockErr := lock.Release(); unlockErr != nil {
			u.logger.Warn("release run lock", logging.Error(unlockErr))
		}
	}()

	posted, err := u.verbs.PostedVerbs(services.WithStage(ctx, "posted_verbs"))
	if err != nil {
		return report, services.Wrap(services.ErrRunAborted, "decks", "list posted verbs", "", err)
	}
	report.Posted = len(posted)
	report.Year = backlog.Year(len(backlog.Weeks(posted, u.opts.WeekSize)))
	yearName := backlog.YearPackageName(u.opts.RootName, report.Year)

	if err := u.stage(ctx, yearName); err != nil {
		return report, err
	}
	coll, err := u.open(u.opts.CollectionPath)
	if err != nil {
		return report, services.Wrap(services.ErrRunAborted, "decks", "open collection", u.opts.CollectionPath, err)
	}
	defer func() {
		if closeErr := coll.Close(); closeErr != nil && err == nil {
			err = services.Wrap(services.ErrRunAborted, "decks", "close collection", "", closeErr)
		}
	}()

	led, err := ledger.Rebuild(ctx, coll, ledger.Options{
		RootName:    u.opts.RootName,
		DefaultName: u.opts.DefaultName,
		WeekSize:    u.opts.WeekSize,
		Tenses:      u.tenseNames(),
	}, u.logger)
	if err != nil {
		return report, err
	}
	present, err := led.AuthoritativeVerbs(ctx)
	if err != nil {
		return report, services.Wrap(services.ErrRunAborted, "decks", "read deck verbs", "", err)
	}
	report.Backlog = backlog.Compute(posted, present)
	u.logger.Info("backlog computed",
		logging.Int("posted", len(posted)),
		logging.Int("present", len(present)),
		logging.Int("backlog", len(report.Backlog)),
		logging.Int("year", report.Year),
	)
	if u.opts.DryRun || len(report.Backlog) == 0 {
		return report, nil
	}

	var touched []ledger.WeekDecks
	for _, verb := range report.Backlog {
		wd, err := u.addVerb(ctx, coll, led, verb)
		if err != nil {
			if services.IsFatalToRun(err) || !u.opts.KeepGoing {
				return report, err
			}
			logging.WarnWithContext(logging.WithContext(services.WithVerb(ctx, verb), u.logger),
				"verb skipped", "verb_skipped",
				logging.Error(err),
				logging.String(logging.FieldImpact, "no cards added for this verb"),
			)
			report.Skipped = append(report.Skipped, SkippedVerb{Verb: verb, Err: err})
			continue
		}
		if n := len(touched); n == 0 || touched[n-1].Week != wd.Week {
			touched = append(touched, wd)
		}
		report.Added = append(report.Added, verb)
	}
	if len(report.Added) == 0 {
		return report, nil
	}

	report.YearPackage = filepath.Join(u.opts.PackageDir, yearName)
	if err := u.publish(ctx, coll, report.YearPackage, nil); err != nil {
		return report, err
	}
	// A run that rolls over also refreshes the weeks it finished.
	for _, week := range touched {
		path := filepath.Join(u.opts.PackageDir, backlog.WeekPackageName(u.opts.RootName, week.Week))
		if err := u.publish(ctx, coll, path, week.IDs(u.tenseNames())); err != nil {
			return report, err
		}
		report.WeekPackage = path
		report.WeekPackages = append(report.WeekPackages, path)
	}
	return report, nil
}

// stage replaces the working collection with the year package when one
// exists locally or remotely. Without a package the working collection is
// kept as is.
func (u *DeckUpdater) stage(ctx context.Context, yearName string) error {
	ctx = services.WithStage(ctx, "stage")
	pkg, err := u.sync.DownloadIfNewer(ctx, yearName)
	if err != nil {
		return services.Wrap(services.ErrRunAborted, "decks", "fetch package", yearName, err)
	}
	if pkg == "" {
		u.logger.Info("no year package, continuing with working collection",
			logging.String("package", yearName),
			logging.String("collection", u.opts.CollectionPath),
		)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(u.opts.CollectionPath), 0o755); err != nil {
		return services.Wrap(services.ErrRunAborted, "decks", "stage package", "create collection directory", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(u.opts.CollectionPath + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrRunAborted, "decks", "stage package", "remove stale journal", err)
		}
	}
	if err := fileutil.CopyFileVerified(pkg, u.opts.CollectionPath); err != nil {
		return services.Wrap(services.ErrRunAborted, "decks", "stage package", pkg, err)
	}
	u.logger.Info("year package staged", logging.String("package", pkg))
	return nil
}

func (u *DeckUpdater) addVerb(ctx context.Context, coll collection.Service, led *ledger.Ledger, verb string) (ledger.WeekDecks, error) {
	ctx = services.WithVerb(ctx, verb)
	logger := logging.WithContext(ctx, u.logger)

	week, err := led.CurrentWeekDecks(ctx)
	if err != nil {
		return week, services.Wrap(services.ErrRunAborted, "decks", "current week", "", err)
	}
	ctx = services.WithWeek(ctx, week.Week)

	rec, err := u.builder.Build(ctx, verb)
	if err != nil {
		return week, err
	}
	sound, err := u.addAudio(ctx, coll, verb)
	if err != nil {
		return week, err
	}

	note, err := coll.AddNote(ctx, notes.Infinitive(rec, sound), u.opts.NoteModel, week.Infinitive)
	if err != nil {
		return week, services.Wrap(services.ErrRunAborted, "decks", "add infinitive note", verb, err)
	}
	if err := led.RecordNote(week.Infinitive, note.CardIDs, ledger.Headword(note.Fields)); err != nil {
		return week, services.Wrap(services.ErrRunAborted, "decks", "record note", verb, err)
	}
	for _, spec := range u.opts.Tenses {
		deckID, ok := week.Tenses[spec.Name]
		if !ok {
			return week, services.Wrap(services.ErrRunAborted, "decks", "add tense note",
				fmt.Sprintf("week %d has no %s deck", week.Week, spec.Name), nil)
		}
		note, err := coll.AddNote(ctx, notes.Tense(rec, spec), u.opts.TenseModel, deckID)
		if err != nil {
			return week, services.Wrap(services.ErrRunAborted, "decks", "add tense note", verb, err)
		}
		if err := led.RecordNote(deckID, note.CardIDs, ""); err != nil {
			return week, services.Wrap(services.ErrRunAborted, "decks", "record note", verb, err)
		}
	}
	logger.Info("verb carded",
		logging.Int(logging.FieldWeek, week.Week),
		logging.Bool("audio", sound != ""),
		logging.Int("tenses", len(u.opts.Tenses)),
	)
	return week, nil
}

// addAudio stores the verb's pronunciation in the collection media and
// returns its name. Audio lookup failures only cost the sound reference.
func (u *DeckUpdater) addAudio(ctx context.Context, coll collection.Service, verb string) (string, error) {
	if u.audio == nil {
		return "", nil
	}
	logger := logging.WithContext(ctx, u.logger)
	path, err := u.audio.FetchPronunciation(services.WithStage(ctx, "audio"), verb)
	if err != nil {
		logging.WarnWithContext(logger, "pronunciation unavailable", "audio_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "card created without audio"),
		)
		return "", nil
	}
	if path == "" {
		logger.Info("no pronunciation found")
		return "", nil
	}
	name := filepath.Base(path)
	has, err := coll.MediaHas(ctx, name)
	if err != nil {
		return "", services.Wrap(services.ErrRunAborted, "decks", "check media", name, err)
	}
	if has {
		return name, nil
	}
	ref, err := coll.MediaAdd(ctx, path)
	if err != nil {
		return "", services.Wrap(services.ErrRunAborted, "decks", "add media", name, err)
	}
	return ref, nil
}

// publish exports the collection, or only deckIDs when given, and uploads it.
func (u *DeckUpdater) publish(ctx context.Context, coll collection.Service, path string, deckIDs []int64) error {
	ctx = services.WithStage(ctx, "export")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrRunAborted, "decks", "export", "create package directory", err)
	}
	var err error
	if deckIDs == nil {
		err = coll.Export(ctx, path)
	} else {
		err = coll.ExportDecks(ctx, path, deckIDs)
	}
	if err != nil {
		return services.Wrap(services.ErrRunAborted, "decks", "export", path, err)
	}
	if err := u.sync.Upload(ctx, path); err != nil {
		return services.Wrap(services.ErrRunAborted, "decks", "upload", filepath.Base(path), err)
	}
	u.logger.Info("package published", logging.String("path", path))
	return nil
}

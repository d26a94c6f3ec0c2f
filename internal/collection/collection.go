package collection

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"votd/internal/logging"
	"votd/internal/services"
)

// Separator joins deck name segments.
const Separator = "::"

// Built-in note models.
const (
	ModelBasic         = "Basic"
	ModelBasicReversed = "Basic (and reversed card)"
)

// cardsPerModel is the number of cards generated from one note.
var cardsPerModel = map[string]int{
	ModelBasic:         1,
	ModelBasicReversed: 2,
}

// ErrNotFound is returned for unknown deck, card or note ids.
var ErrNotFound = fmt.Errorf("collection: %w", services.ErrNotFound)

// Deck is a named card container.
type Deck struct {
	ID   int64
	Name string
}

// Card is one reviewable face of a note.
type Card struct {
	ID     int64
	NoteID int64
	DeckID int64
	Ord    int
}

// Note holds the ordered field values of one flashcard.
type Note struct {
	ID      int64
	GUID    string
	Model   string
	Fields  []string
	CardIDs []int64
}

// Service is the collection contract consumed by the deck workflow.
type Service interface {
	Decks(ctx context.Context) ([]Deck, error)
	DeckCardIDs(ctx context.Context, deckID int64) ([]int64, error)
	Card(ctx context.Context, id int64) (Card, error)
	Note(ctx context.Context, id int64) (Note, error)
	CreateDeck(ctx context.Context, name string) (int64, error)
	AddNote(ctx context.Context, fields []string, model string, deckID int64) (Note, error)
	MediaHas(ctx context.Context, filename string) (bool, error)
	MediaAdd(ctx context.Context, path string) (string, error)
	Export(ctx context.Context, path string) error
	ExportDecks(ctx context.Context, path string, deckIDs []int64) error
	Close() error
}

// Collection is the SQLite implementation of Service.
type Collection struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

var _ Service = (*Collection)(nil)

// Open opens or creates the collection file at path.
func Open(path string, logger *slog.Logger) (*Collection, error) {
	logger = logging.NewComponentLogger(logger, "collection")
	if path == "" {
		return nil, services.Wrap(services.ErrRunAborted, "collection", "open", "collection path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrRunAborted, "collection", "open", "create collection directory", err)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, services.Wrap(services.ErrRunAborted, "collection", "open", path, err)
	}

	c := &Collection{db: db, path: path, logger: logger, now: time.Now}
	if err := c.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrRunAborted, "collection", "migrate", path, err)
	}
	logger.Debug("collection opened", logging.String("path", path))
	return c, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

// Path returns the backing file location.
func (c *Collection) Path() string {
	return c.path
}

// Close releases the database handle. It is safe to call more than once.
func (c *Collection) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *Collection) timestamp() string {
	return c.now().UTC().Format(time.RFC3339Nano)
}

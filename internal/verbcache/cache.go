package verbcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"votd/internal/logging"
	"votd/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the table layout changes.
const schemaVersion = 1

// ErrNotFound is returned by Get when no entry exists for the word.
var ErrNotFound = fmt.Errorf("verb cache: %w", services.ErrNotFound)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("verb cache closed")

// Fields maps a record field name to its JSON encoded value.
type Fields map[string]json.RawMessage

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Entry summarizes a cached word for diagnostics.
type Entry struct {
	Word      string
	Fields    []string
	UpdatedAt time.Time
}

// Cache is a SQLite backed store of verb records.
type Cache struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens or creates the cache file at path.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	logger = logging.NewComponentLogger(logger, "verbcache")
	if path == "" {
		return nil, services.Wrap(services.ErrRunAborted, "verbcache", "open", "cache path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrRunAborted, "verbcache", "open", "create cache directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrRunAborted, "verbcache", "open", path, err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrRunAborted, "verbcache", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	c := &Cache{db: db, path: path, logger: logger}
	if err := c.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrRunAborted, "verbcache", "open", path, err)
	}
	logger.Debug("verb cache opened", logging.String("path", path))
	return c, nil
}

func (c *Cache) initSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	var version int
	err := c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := c.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("schema version mismatch: cache has version %d, expected %d", version, schemaVersion)
	}
	return nil
}

// Path returns the backing file location.
func (c *Cache) Path() string {
	return c.path
}

// Close releases the database handle. It is safe to call more than once.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *Cache) closed() bool { return c == nil || c.db == nil }

// Get returns the stored fields for word or ErrNotFound.
func (c *Cache) Get(ctx context.Context, word string) (Fields, error) {
	if c.closed() {
		return nil, ErrClosed
	}
	var raw string
	err := c.db.QueryRowContext(ctx, "SELECT record FROM verbs WHERE word = ?", word).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("verb cache get %q: %w", word, err)
	}
	fields := Fields{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("verb cache decode %q: %w", word, err)
	}
	return fields, nil
}

// Put merges fields into the entry for word. Keys present in fields replace
// stored values; stored keys absent from fields are kept.
func (c *Cache) Put(ctx context.Context, word string, fields Fields) error {
	if c.closed() {
		return ErrClosed
	}
	if word == "" {
		return errors.New("verb cache put: empty word")
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("verb cache begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	merged := Fields{}
	var raw string
	err = tx.QueryRowContext(ctx, "SELECT record FROM verbs WHERE word = ?", word).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("verb cache read %q: %w", word, err)
	default:
		if err := json.Unmarshal([]byte(raw), &merged); err != nil {
			return fmt.Errorf("verb cache decode %q: %w", word, err)
		}
	}
	for key, value := range fields {
		merged[key] = value
	}
	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("verb cache encode %q: %w", word, err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO verbs (word, record, created_at, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(word) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		word, string(encoded), now, now,
	); err != nil {
		return fmt.Errorf("verb cache write %q: %w", word, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("verb cache commit %q: %w", word, err)
	}
	c.logger.Debug("verb cached",
		logging.String(logging.FieldVerb, word),
		logging.Int("field_count", len(merged)),
	)
	return nil
}

// Keys lists every cached word in sorted order.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	if c.closed() {
		return nil, ErrClosed
	}
	rows, err := c.db.QueryContext(ctx, "SELECT word FROM verbs ORDER BY word")
	if err != nil {
		return nil, fmt.Errorf("verb cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("verb cache scan: %w", err)
		}
		keys = append(keys, word)
	}
	return keys, rows.Err()
}

// List returns a summary of every entry, sorted by word.
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	if c.closed() {
		return nil, ErrClosed
	}
	rows, err := c.db.QueryContext(ctx, "SELECT word, record, updated_at FROM verbs ORDER BY word")
	if err != nil {
		return nil, fmt.Errorf("verb cache list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var word, raw, updated string
		if err := rows.Scan(&word, &raw, &updated); err != nil {
			return nil, fmt.Errorf("verb cache scan: %w", err)
		}
		fields := Fields{}
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			c.logger.Warn("verb cache entry unreadable",
				logging.String(logging.FieldVerb, word),
				logging.Error(err),
				logging.String(logging.FieldEventType, "verbcache_decode_failed"),
				logging.String(logging.FieldErrorHint, "run votd cache remove for this verb"),
				logging.String(logging.FieldImpact, "entry listed without fields"),
			)
		}
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		ts, _ := time.Parse(time.RFC3339Nano, updated)
		entries = append(entries, Entry{Word: word, Fields: names, UpdatedAt: ts})
	}
	return entries, rows.Err()
}

// Remove deletes the entry for word and reports whether one existed.
func (c *Cache) Remove(ctx context.Context, word string) (bool, error) {
	if c.closed() {
		return false, ErrClosed
	}
	res, err := c.db.ExecContext(ctx, "DELETE FROM verbs WHERE word = ?", word)
	if err != nil {
		return false, fmt.Errorf("verb cache remove %q: %w", word, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("verb cache remove %q: %w", word, err)
	}
	return n > 0, nil
}

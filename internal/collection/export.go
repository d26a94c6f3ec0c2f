package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"votd/internal/logging"
)

// Export writes a standalone copy of the whole collection to path,
// replacing any existing file.
func (c *Collection) Export(ctx context.Context, path string) error {
	tmp, err := c.snapshot(ctx, path)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install export %s: %w", path, err)
	}
	c.logger.Info("collection exported", logging.String("path", path))
	return nil
}

// ExportDecks writes a copy holding only the given decks, their ancestors,
// their notes and the media those notes reference.
func (c *Collection) ExportDecks(ctx context.Context, path string, deckIDs []int64) error {
	if len(deckIDs) == 0 {
		return fmt.Errorf("export decks: no decks selected")
	}
	keep := map[string]bool{}
	for _, id := range deckIDs {
		name, err := c.deckName(ctx, id)
		if err != nil {
			return err
		}
		keep[name] = true
		for _, parent := range Ancestors(name) {
			keep[parent] = true
		}
	}

	tmp, err := c.snapshot(ctx, path)
	if err != nil {
		return err
	}
	if err := prune(ctx, tmp, deckIDs, keep); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("prune export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install export %s: %w", path, err)
	}
	c.logger.Info("decks exported", logging.String("path", path), logging.Int("decks", len(deckIDs)))
	return nil
}

// snapshot vacuums the collection into a temp file next to path.
func (c *Collection) snapshot(ctx context.Context, path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	tmp := path + ".tmp"
	_ = os.Remove(tmp)
	if _, err := c.db.ExecContext(ctx, "VACUUM INTO ?", tmp); err != nil {
		return "", fmt.Errorf("snapshot collection: %w", err)
	}
	return tmp, nil
}

func prune(ctx context.Context, path string, deckIDs []int64, keep map[string]bool) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(deckIDs)), ",")
	args := make([]any, len(deckIDs))
	for i, id := range deckIDs {
		args[i] = id
	}
	statements := []struct {
		query string
		args  []any
	}{
		{"DELETE FROM cards WHERE deck_id NOT IN (" + placeholders + ")", args},
		{"DELETE FROM notes WHERE id NOT IN (SELECT note_id FROM cards)", nil},
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			return err
		}
	}
	if err := pruneDecks(ctx, tx, keep); err != nil {
		return err
	}
	if err := pruneMedia(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, "VACUUM")
	return err
}

func pruneDecks(ctx context.Context, tx *sql.Tx, keep map[string]bool) error {
	rows, err := tx.QueryContext(ctx, "SELECT id, name FROM decks")
	if err != nil {
		return err
	}
	var drop []int64
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return err
		}
		if !keep[name] {
			drop = append(drop, id)
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	for _, id := range drop {
		if _, err := tx.ExecContext(ctx, "DELETE FROM decks WHERE id = ?", id); err != nil {
			return err
		}
	}
	return nil
}

func pruneMedia(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "SELECT fields FROM notes")
	if err != nil {
		return err
	}
	var text strings.Builder
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			rows.Close()
			return err
		}
		var fields []string
		if err := json.Unmarshal([]byte(raw), &fields); err == nil {
			text.WriteString(strings.Join(fields, "\n"))
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}

	mediaRows, err := tx.QueryContext(ctx, "SELECT filename FROM media")
	if err != nil {
		return err
	}
	var drop []string
	referenced := text.String()
	for mediaRows.Next() {
		var name string
		if err := mediaRows.Scan(&name); err != nil {
			mediaRows.Close()
			return err
		}
		if !strings.Contains(referenced, SoundRef(name)) {
			drop = append(drop, name)
		}
	}
	if err := mediaRows.Close(); err != nil {
		return err
	}
	for _, name := range drop {
		if _, err := tx.ExecContext(ctx, "DELETE FROM media WHERE filename = ?", name); err != nil {
			return err
		}
	}
	return nil
}

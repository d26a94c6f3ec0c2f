package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"votd/internal/logging"
)

// Decks lists every deck ordered by name.
func (c *Collection) Decks(ctx context.Context) ([]Deck, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT id, name FROM decks ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var decks []Deck
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// DeckCardIDs returns the ids of the cards held directly by deckID, oldest
// first. Cards in child decks are not included.
func (c *Collection) DeckCardIDs(ctx context.Context, deckID int64) ([]int64, error) {
	if _, err := c.deckName(ctx, deckID); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, "SELECT id FROM cards WHERE deck_id = ? ORDER BY id", deckID)
	if err != nil {
		return nil, fmt.Errorf("list deck cards: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// CreateDeck returns the id of the deck called name, creating it and any
// missing ancestors first.
func (c *Collection) CreateDeck(ctx context.Context, name string) (int64, error) {
	name, err := normalizeDeckName(name)
	if err != nil {
		return 0, err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create deck: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	segments := strings.Split(name, Separator)
	var id int64
	for i := range segments {
		prefix := strings.Join(segments[:i+1], Separator)
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO decks (name, created_at) VALUES (?, ?)", prefix, c.timestamp()); err != nil {
			return 0, fmt.Errorf("create deck %q: %w", prefix, err)
		}
		if err := tx.QueryRowContext(ctx, "SELECT id FROM decks WHERE name = ?", prefix).Scan(&id); err != nil {
			return 0, fmt.Errorf("read deck %q: %w", prefix, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create deck: %w", err)
	}
	c.logger.Debug("deck ensured", logging.String("deck", name), logging.Int64("deck_id", id))
	return id, nil
}

func (c *Collection) deckName(ctx context.Context, id int64) (string, error) {
	var name string
	err := c.db.QueryRowContext(ctx, "SELECT name FROM decks WHERE id = ?", id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("deck %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read deck %d: %w", id, err)
	}
	return name, nil
}

// normalizeDeckName trims every segment and rejects empty ones.
func normalizeDeckName(name string) (string, error) {
	segments := strings.Split(name, Separator)
	for i, segment := range segments {
		segments[i] = strings.TrimSpace(segment)
		if segments[i] == "" {
			return "", fmt.Errorf("invalid deck name %q", name)
		}
	}
	return strings.Join(segments, Separator), nil
}

// Ancestors returns the names of every parent of name, root first.
func Ancestors(name string) []string {
	segments := strings.Split(name, Separator)
	out := make([]string, 0, len(segments)-1)
	for i := 1; i < len(segments); i++ {
		out = append(out, strings.Join(segments[:i], Separator))
	}
	return out
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

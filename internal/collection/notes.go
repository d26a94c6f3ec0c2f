package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"votd/internal/logging"
)

// AddNote stores a note of model in deckID and generates its cards.
func (c *Collection) AddNote(ctx context.Context, fields []string, model string, deckID int64) (Note, error) {
	cardCount, ok := cardsPerModel[model]
	if !ok {
		return Note{}, fmt.Errorf("unknown note model %q", model)
	}
	if len(fields) != 2 {
		return Note{}, fmt.Errorf("model %q expects 2 fields, got %d", model, len(fields))
	}
	if _, err := c.deckName(ctx, deckID); err != nil {
		return Note{}, err
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return Note{}, fmt.Errorf("encode note fields: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return Note{}, fmt.Errorf("begin add note: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := c.timestamp()
	note := Note{GUID: uuid.NewString(), Model: model, Fields: append([]string(nil), fields...)}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO notes (guid, model, fields, created_at) VALUES (?, ?, ?, ?)",
		note.GUID, model, string(encoded), now)
	if err != nil {
		return Note{}, fmt.Errorf("insert note: %w", err)
	}
	if note.ID, err = res.LastInsertId(); err != nil {
		return Note{}, fmt.Errorf("note id: %w", err)
	}
	for ord := 0; ord < cardCount; ord++ {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO cards (note_id, deck_id, ord, created_at) VALUES (?, ?, ?, ?)",
			note.ID, deckID, ord, now)
		if err != nil {
			return Note{}, fmt.Errorf("insert card: %w", err)
		}
		cardID, err := res.LastInsertId()
		if err != nil {
			return Note{}, fmt.Errorf("card id: %w", err)
		}
		note.CardIDs = append(note.CardIDs, cardID)
	}
	if err := tx.Commit(); err != nil {
		return Note{}, fmt.Errorf("commit add note: %w", err)
	}
	c.logger.Debug("note added",
		logging.Int64("note_id", note.ID),
		logging.Int64("deck_id", deckID),
		logging.String("model", model),
		logging.Int("cards", len(note.CardIDs)),
	)
	return note, nil
}

// Card returns the card with id.
func (c *Collection) Card(ctx context.Context, id int64) (Card, error) {
	card := Card{ID: id}
	err := c.db.QueryRowContext(ctx, "SELECT note_id, deck_id, ord FROM cards WHERE id = ?", id).
		Scan(&card.NoteID, &card.DeckID, &card.Ord)
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, fmt.Errorf("card %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Card{}, fmt.Errorf("read card %d: %w", id, err)
	}
	return card, nil
}

// Note returns the note with id and the ids of its cards.
func (c *Collection) Note(ctx context.Context, id int64) (Note, error) {
	note := Note{ID: id}
	var raw string
	err := c.db.QueryRowContext(ctx, "SELECT guid, model, fields FROM notes WHERE id = ?", id).
		Scan(&note.GUID, &note.Model, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Note{}, fmt.Errorf("read note %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(raw), &note.Fields); err != nil {
		return Note{}, fmt.Errorf("decode note %d fields: %w", id, err)
	}
	rows, err := c.db.QueryContext(ctx, "SELECT id FROM cards WHERE note_id = ? ORDER BY ord", id)
	if err != nil {
		return Note{}, fmt.Errorf("list note cards: %w", err)
	}
	defer rows.Close()
	if note.CardIDs, err = scanIDs(rows); err != nil {
		return Note{}, err
	}
	return note, nil
}

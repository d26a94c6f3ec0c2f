package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"votd/internal/collection"
	"votd/internal/logging"
	"votd/internal/services"
)

// WeekDeckName is the infinitive deck name of week n.
func WeekDeckName(root string, n int) string {
	return fmt.Sprintf("%s%sWeek %d", root, collection.Separator, n)
}

// TenseDeckName is the deck of tense within week n.
func TenseDeckName(root string, n int, tense string) string {
	return WeekDeckName(root, n) + collection.Separator + tense
}

// CurrentWeekDecks returns the decks of the highest week. When its
// infinitive deck already holds WeekSize verbs, the next week is created
// and returned instead.
func (l *Ledger) CurrentWeekDecks(ctx context.Context) (WeekDecks, error) {
	weeks := l.Weeks()
	if len(weeks) == 0 {
		return l.CreateWeek(ctx, 1)
	}
	week := weeks[len(weeks)-1]
	current, err := l.roles(ctx, week)
	if err != nil {
		return WeekDecks{}, err
	}
	verbs, err := l.Verbs(ctx, current.Infinitive)
	if err != nil {
		return WeekDecks{}, err
	}
	// At or past WeekSize; a week over-filled by an earlier config also rolls over.
	if len(verbs) >= l.opts.WeekSize {
		l.logger.Info("week full, opening next week",
			logging.Int(logging.FieldWeek, week),
			logging.Int("verbs", len(verbs)),
		)
		return l.CreateWeek(ctx, week+1)
	}
	return current, nil
}

// CreateWeek creates the infinitive deck of week n and one child deck per
// configured tense. Existing decks are reused.
func (l *Ledger) CreateWeek(ctx context.Context, n int) (WeekDecks, error) {
	if n <= 0 {
		return WeekDecks{}, fmt.Errorf("create week: invalid week %d", n)
	}
	out := WeekDecks{Week: n, Tenses: map[string]int64{}}
	id, err := l.ensureDeck(ctx, WeekDeckName(l.opts.RootName, n))
	if err != nil {
		return WeekDecks{}, err
	}
	out.Infinitive = id
	for _, tense := range l.opts.Tenses {
		id, err := l.ensureDeck(ctx, TenseDeckName(l.opts.RootName, n, tense))
		if err != nil {
			return WeekDecks{}, err
		}
		out.Tenses[tense] = id
	}
	l.logger.Info("week decks ready", logging.Int(logging.FieldWeek, n), logging.Int("decks", 1+len(out.Tenses)))
	return out, nil
}

func (l *Ledger) ensureDeck(ctx context.Context, name string) (int64, error) {
	id, err := l.store.CreateDeck(ctx, name)
	if err != nil {
		return 0, services.Wrap(services.ErrRunAborted, "ledger", "create deck", name, err)
	}
	if d, ok := l.decks[id]; ok {
		return d.ID, nil
	}
	for _, parent := range collection.Ancestors(name) {
		if !l.hasName(parent) {
			parentID, err := l.store.CreateDeck(ctx, parent)
			if err != nil {
				return 0, services.Wrap(services.ErrRunAborted, "ledger", "create deck", parent, err)
			}
			if _, ok := l.decks[parentID]; !ok {
				l.register(parentID, parent, nil)
			}
		}
	}
	d := l.register(id, name, nil)
	d.verbs = map[string]struct{}{}
	d.loaded = true
	return id, nil
}

func (l *Ledger) hasName(name string) bool {
	for _, d := range l.decks {
		if d.Name == name {
			return true
		}
	}
	return false
}

// roles tells the infinitive deck of week from its tense decks. The only
// deck with headwords is the infinitive deck; when that does not settle it,
// the deck without a tense segment is, and failing that the first by name.
func (l *Ledger) roles(ctx context.Context, week int) (WeekDecks, error) {
	ids := l.weeks[week]
	var withVerbs []*Deck
	for _, id := range ids {
		d := l.decks[id]
		if err := l.load(ctx, d); err != nil {
			return WeekDecks{}, err
		}
		if len(d.verbs) > 0 {
			withVerbs = append(withVerbs, d)
		}
	}

	var infinitive *Deck
	if len(withVerbs) == 1 {
		infinitive = withVerbs[0]
	} else {
		for _, id := range ids {
			if l.decks[id].Infinitive() {
				infinitive = l.decks[id]
				break
			}
		}
		if infinitive == nil {
			infinitive = l.decks[ids[0]]
		}
	}

	out := WeekDecks{Week: week, Infinitive: infinitive.ID, Tenses: map[string]int64{}}
	for _, id := range ids {
		d := l.decks[id]
		if d.ID == infinitive.ID || d.Tense == "" {
			continue
		}
		out.Tenses[d.Tense] = d.ID
	}
	// Tenses added to the configuration after the week was opened.
	for _, tense := range l.opts.Tenses {
		if _, ok := out.Tenses[tense]; ok {
			continue
		}
		id, err := l.ensureDeck(ctx, TenseDeckName(l.opts.RootName, week, tense))
		if err != nil {
			return WeekDecks{}, err
		}
		out.Tenses[tense] = id
	}
	return out, nil
}

// RecordNote adds freshly created cards to the in-memory deck.
func (l *Ledger) RecordNote(deckID int64, cardIDs []int64, headword string) error {
	d, ok := l.decks[deckID]
	if !ok {
		return fmt.Errorf("record note: deck %d: %w", deckID, collection.ErrNotFound)
	}
	d.CardIDs = append(d.CardIDs, cardIDs...)
	if d.loaded {
		if head := strings.TrimSpace(headword); head != "" {
			d.verbs[head] = struct{}{}
		}
	}
	return nil
}

// AuthoritativeVerbs is the union of headwords over every deck that proves
// a verb was already carded: all decks except the default deck and tense
// decks.
func (l *Ledger) AuthoritativeVerbs(ctx context.Context) (map[string]struct{}, error) {
	present := map[string]struct{}{}
	for _, d := range l.Decks() {
		if !l.authoritative(d) {
			continue
		}
		if err := l.load(ctx, d); err != nil {
			return nil, err
		}
		for v := range d.verbs {
			present[v] = struct{}{}
		}
	}
	return present, nil
}

func (l *Ledger) authoritative(d *Deck) bool {
	if d.Name == l.opts.DefaultName || d.Tense != "" {
		return false
	}
	segments := strings.Split(d.Name, collection.Separator)
	return !slices.Contains(l.opts.Tenses, segments[len(segments)-1])
}

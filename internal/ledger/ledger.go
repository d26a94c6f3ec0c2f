package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"votd/internal/collection"
	"votd/internal/logging"
	"votd/internal/services"
)

// Store is the slice of the collection the ledger reads and extends.
type Store interface {
	Decks(ctx context.Context) ([]collection.Deck, error)
	DeckCardIDs(ctx context.Context, deckID int64) ([]int64, error)
	Card(ctx context.Context, id int64) (collection.Card, error)
	Note(ctx context.Context, id int64) (collection.Note, error)
	CreateDeck(ctx context.Context, name string) (int64, error)
}

// Options names the deck layout.
type Options struct {
	RootName    string
	DefaultName string
	WeekSize    int
	Tenses      []string
}

var weekSegment = regexp.MustCompile(`^Week ([0-9]+)$`)

// Deck is a ledger snapshot of one collection deck.
type Deck struct {
	ID      int64
	Name    string
	Week    int
	Tense   string
	CardIDs []int64

	verbs  map[string]struct{}
	loaded bool
}

// Infinitive reports whether the name places this deck as a week's
// infinitive deck.
func (d *Deck) Infinitive() bool {
	return d.Week > 0 && d.Tense == ""
}

// WeekDecks is the open deck set of one week.
type WeekDecks struct {
	Week       int
	Infinitive int64
	Tenses     map[string]int64
}

// IDs lists the infinitive deck followed by tense decks in configured order.
func (w WeekDecks) IDs(tenses []string) []int64 {
	ids := []int64{w.Infinitive}
	for _, tense := range tenses {
		if id, ok := w.Tenses[tense]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Ledger is an in-memory view of decks, rebuilt each run.
type Ledger struct {
	store  Store
	opts   Options
	logger *slog.Logger

	decks map[int64]*Deck
	weeks map[int][]int64
}

// Rebuild reads every deck and its card ids from store.
func Rebuild(ctx context.Context, store Store, opts Options, logger *slog.Logger) (*Ledger, error) {
	if opts.WeekSize <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "ledger", "rebuild", "week size must be positive", nil)
	}
	l := &Ledger{
		store:  store,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "ledger"),
		decks:  map[int64]*Deck{},
		weeks:  map[int][]int64{},
	}
	decks, err := store.Decks(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrRunAborted, "ledger", "list decks", "", err)
	}
	for _, d := range decks {
		cardIDs, err := store.DeckCardIDs(ctx, d.ID)
		if err != nil {
			return nil, services.Wrap(services.ErrRunAborted, "ledger", "list cards", d.Name, err)
		}
		l.register(d.ID, d.Name, cardIDs)
	}
	l.logger.Debug("ledger rebuilt", logging.Int("decks", len(l.decks)), logging.Int("weeks", len(l.weeks)))
	return l, nil
}

func (l *Ledger) register(id int64, name string, cardIDs []int64) *Deck {
	week, tense := parseDeckName(name)
	d := &Deck{ID: id, Name: name, Week: week, Tense: tense, CardIDs: cardIDs}
	l.decks[id] = d
	if week > 0 && !slices.Contains(l.weeks[week], id) {
		l.weeks[week] = append(l.weeks[week], id)
		sort.Slice(l.weeks[week], func(i, j int) bool {
			return l.decks[l.weeks[week][i]].Name < l.decks[l.weeks[week][j]].Name
		})
	}
	return d
}

// parseDeckName extracts the week number and trailing tense segment from
// "Root::Week N[::Tense]". Names that do not fit are week 0.
func parseDeckName(name string) (int, string) {
	segments := strings.Split(name, collection.Separator)
	if len(segments) < 2 {
		return 0, ""
	}
	match := weekSegment.FindStringSubmatch(strings.TrimSpace(segments[1]))
	if match == nil {
		return 0, ""
	}
	week, err := strconv.Atoi(match[1])
	if err != nil || week <= 0 {
		return 0, ""
	}
	return week, strings.Join(segments[2:], collection.Separator)
}

// Decks returns every deck sorted by name.
func (l *Ledger) Decks() []*Deck {
	out := make([]*Deck, 0, len(l.decks))
	for _, d := range l.decks {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Weeks lists the week numbers present in ascending order.
func (l *Ledger) Weeks() []int {
	weeks := make([]int, 0, len(l.weeks))
	for w := range l.weeks {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

// WeekDeckIDs returns the deck ids grouped under week.
func (l *Ledger) WeekDeckIDs(week int) []int64 {
	return slices.Clone(l.weeks[week])
}

// Verbs returns the headwords of the deck's cards, loading them on first use.
func (l *Ledger) Verbs(ctx context.Context, deckID int64) ([]string, error) {
	d, ok := l.decks[deckID]
	if !ok {
		return nil, fmt.Errorf("deck %d: %w", deckID, collection.ErrNotFound)
	}
	if err := l.load(ctx, d); err != nil {
		return nil, err
	}
	verbs := make([]string, 0, len(d.verbs))
	for v := range d.verbs {
		verbs = append(verbs, v)
	}
	sort.Strings(verbs)
	return verbs, nil
}

func (l *Ledger) load(ctx context.Context, d *Deck) error {
	if d.loaded {
		return nil
	}
	verbs := map[string]struct{}{}
	seenNotes := map[int64]bool{}
	for _, cardID := range d.CardIDs {
		card, err := l.store.Card(ctx, cardID)
		if err != nil {
			return services.Wrap(services.ErrRunAborted, "ledger", "read card", d.Name, err)
		}
		if seenNotes[card.NoteID] {
			continue
		}
		seenNotes[card.NoteID] = true
		note, err := l.store.Note(ctx, card.NoteID)
		if err != nil {
			return services.Wrap(services.ErrRunAborted, "ledger", "read note", d.Name, err)
		}
		if head := Headword(note.Fields); head != "" {
			verbs[head] = struct{}{}
		}
	}
	d.verbs = verbs
	d.loaded = true
	return nil
}

// Headword is the text of a note's second field up to the first markup tag.
func Headword(fields []string) string {
	if len(fields) < 2 {
		return ""
	}
	head, _, _ := strings.Cut(fields[1], "<")
	return strings.TrimSpace(head)
}

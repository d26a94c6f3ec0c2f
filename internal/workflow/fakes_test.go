package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"votd/internal/collection"
	"votd/internal/conjugation"
	"votd/internal/leo"
	"votd/internal/notes"
	"votd/internal/services"
	"votd/internal/wordpress"
)

const testRoot = "German VotD"

func verbRecord(word, gloss string) *leo.Record {
	stem := word[:len(word)-2]
	present := conjugation.ByPronoun(
		conjugation.PronounForm{Pronoun: "ich", Form: stem + "e"},
		conjugation.PronounForm{Pronoun: "du", Form: stem + "st"},
		conjugation.PronounForm{Pronoun: "er/sie/es", Form: stem + "t"},
	)
	table := conjugation.Table{Moods: []conjugation.Mood{{
		Name:   "Indikativ",
		Tenses: []conjugation.Tense{{Name: "Präsens", Inflection: present}},
	}}}
	return &leo.Record{
		Word:         word,
		Translations: []string{gloss},
		TableKey:     "de_" + word,
		InfoKey:      "AI_" + word,
		Conjugations: table,
	}
}

type stubBuilder struct {
	errs  map[string]error
	calls []string
}

func (b *stubBuilder) Build(_ context.Context, word string) (*leo.Record, error) {
	b.calls = append(b.calls, word)
	if err := b.errs[word]; err != nil {
		return nil, err
	}
	return verbRecord(word, "to "+word), nil
}

type fakeAudio struct {
	dir  string
	none map[string]bool
	err  error
}

func (a *fakeAudio) FetchPronunciation(_ context.Context, word string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if a.none[word] {
		return "", nil
	}
	path := filepath.Join(a.dir, word+".mp3")
	if err := os.WriteFile(path, []byte("ID3 "+word), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeSync struct {
	packages  map[string]string
	downloads []string
	uploads   []string
}

func (s *fakeSync) DownloadIfNewer(_ context.Context, name string) (string, error) {
	s.downloads = append(s.downloads, name)
	return s.packages[name], nil
}

func (s *fakeSync) Upload(_ context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	s.uploads = append(s.uploads, filepath.Base(path))
	return nil
}

type fakeBlog struct {
	existing  *wordpress.Post
	template  wordpress.Template
	published []wordpress.Draft
	cats      []string
}

func (b *fakeBlog) FindPostByTitlePrefix(_ context.Context, keyword string) (*wordpress.Post, error) {
	if b.existing != nil && wordpress.TitleVerb(b.existing.Title) == keyword {
		return b.existing, nil
	}
	return nil, nil
}

func (b *fakeBlog) Template(context.Context, string) (wordpress.Template, error) {
	return b.template, nil
}

func (b *fakeBlog) Publish(_ context.Context, title, body string, categories, _ []string) (*wordpress.Post, error) {
	b.published = append(b.published, wordpress.Draft{Title: title, Body: body})
	b.cats = categories
	return &wordpress.Post{ID: int64(len(b.published)), Title: title, URL: fmt.Sprintf("https://blog.test/%d", len(b.published))}, nil
}

type answer bool

func (a answer) Confirm(context.Context, string) (bool, error) { return bool(a), nil }

func verbFailure(word string) error {
	return services.Wrap(services.ErrVerbFailed, "leo", "fetch search page", word, fmt.Errorf("boom"))
}

type updaterEnv struct {
	dir     string
	opts    UpdateOptions
	builder *stubBuilder
	audio   *fakeAudio
	sync    *fakeSync
}

func newUpdaterEnv(t *testing.T) *updaterEnv {
	t.Helper()
	dir := t.TempDir()
	audioDir := filepath.Join(dir, "forvo")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return &updaterEnv{
		dir: dir,
		opts: UpdateOptions{
			RootName:       testRoot,
			DefaultName:    "Default",
			WeekSize:       7,
			Tenses:         []notes.TenseSpec{{Name: "Present", Mood: "Indikativ", Tense: "Präsens"}},
			NoteModel:      collection.ModelBasicReversed,
			TenseModel:     collection.ModelBasic,
			CollectionPath: filepath.Join(dir, "collection.db"),
			PackageDir:     filepath.Join(dir, "packages"),
			LockPath:       filepath.Join(dir, LockFileName),
		},
		builder: &stubBuilder{errs: map[string]error{}},
		audio:   &fakeAudio{dir: audioDir, none: map[string]bool{}},
		sync:    &fakeSync{packages: map[string]string{}},
	}
}

func (e *updaterEnv) run(t *testing.T, posted ...string) (UpdateReport, error) {
	t.Helper()
	open := func(path string) (collection.Service, error) {
		return collection.Open(path, nil)
	}
	u := NewDeckUpdater(StaticVerbs(posted), e.builder, e.audio, e.sync, open, e.opts, nil)
	return u.Run(context.Background())
}

// deckSummary maps deck name to its notes' fields.
func deckSummary(t *testing.T, path string) map[string][][]string {
	t.Helper()
	coll, err := collection.Open(path, nil)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer coll.Close()
	ctx := context.Background()
	decks, err := coll.Decks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	out := map[string][][]string{}
	for _, d := range decks {
		cardIDs, err := coll.DeckCardIDs(ctx, d.ID)
		if err != nil {
			t.Fatal(err)
		}
		seen := map[int64]bool{}
		out[d.Name] = [][]string{}
		for _, id := range cardIDs {
			card, err := coll.Card(ctx, id)
			if err != nil {
				t.Fatal(err)
			}
			if seen[card.NoteID] {
				continue
			}
			seen[card.NoteID] = true
			note, err := coll.Note(ctx, card.NoteID)
			if err != nil {
				t.Fatal(err)
			}
			out[d.Name] = append(out[d.Name], note.Fields)
		}
	}
	return out
}

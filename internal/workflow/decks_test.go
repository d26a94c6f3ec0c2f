package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"votd/internal/collection"
	"votd/internal/services"
)

func TestDeckUpdaterAddsBacklog(t *testing.T) {
	env := newUpdaterEnv(t)
	env.audio.none["kommen"] = true

	report, err := env.run(t, "gehen", "kommen")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(report.Added, []string{"gehen", "kommen"}) {
		t.Fatalf("added = %v", report.Added)
	}
	if report.Year != 1 {
		t.Fatalf("year = %d", report.Year)
	}
	if want := filepath.Join(env.opts.PackageDir, "German VotD.apkg"); report.YearPackage != want {
		t.Fatalf("year package = %q, want %q", report.YearPackage, want)
	}
	if want := []string{"German VotD.apkg", "German VotD__Week 1.apkg"}; !reflect.DeepEqual(env.sync.uploads, want) {
		t.Fatalf("uploads = %v, want %v", env.sync.uploads, want)
	}

	decks := deckSummary(t, env.opts.CollectionPath)
	infinitive := decks["German VotD::Week 1"]
	want := [][]string{
		{"to gehen", "gehen<br>[sound:gehen.mp3]"},
		{"to kommen", "kommen"},
	}
	if !reflect.DeepEqual(infinitive, want) {
		t.Fatalf("infinitive notes = %v", infinitive)
	}
	present := decks["German VotD::Week 1::Present"]
	if len(present) != 2 {
		t.Fatalf("present notes = %v", present)
	}
	if present[0][0] != "gehen (Present)" || !strings.Contains(present[0][1], "<td>ich</td><td>gehe</td>") {
		t.Fatalf("tense note = %v", present[0])
	}

	week := deckSummary(t, report.WeekPackage)
	if len(week["German VotD::Week 1"]) != 2 {
		t.Fatalf("week package decks = %v", week)
	}

	// Nothing left to do on a second run.
	env.sync.uploads = nil
	report, err = env.run(t, "gehen", "kommen")
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(report.Backlog) != 0 || len(env.sync.uploads) != 0 {
		t.Fatalf("second run backlog=%v uploads=%v", report.Backlog, env.sync.uploads)
	}
}

func TestDeckUpdaterRollsOverFullWeek(t *testing.T) {
	env := newUpdaterEnv(t)
	env.opts.WeekSize = 2

	report, err := env.run(t, "gehen", "kommen", "laufen")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	decks := deckSummary(t, env.opts.CollectionPath)
	if len(decks["German VotD::Week 1"]) != 2 || len(decks["German VotD::Week 2"]) != 1 {
		t.Fatalf("decks = %v", decks)
	}
	if _, ok := decks["German VotD::Week 2::Present"]; !ok {
		t.Fatal("week 2 tense deck missing")
	}
	if filepath.Base(report.WeekPackage) != "German VotD__Week 2.apkg" {
		t.Fatalf("week package = %q", report.WeekPackage)
	}
	wk := deckSummary(t, report.WeekPackage)
	if _, ok := wk["German VotD::Week 1"]; ok {
		t.Fatalf("week package holds week 1: %v", wk)
	}
}

func TestDeckUpdaterRepublishesFinishedWeek(t *testing.T) {
	env := newUpdaterEnv(t)
	env.opts.WeekSize = 2

	if _, err := env.run(t, "gehen"); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	env.sync.uploads = nil

	report, err := env.run(t, "gehen", "kommen", "laufen")
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !reflect.DeepEqual(report.Added, []string{"kommen", "laufen"}) {
		t.Fatalf("added = %v", report.Added)
	}
	want := []string{"German VotD.apkg", "German VotD__Week 1.apkg", "German VotD__Week 2.apkg"}
	if !reflect.DeepEqual(env.sync.uploads, want) {
		t.Fatalf("uploads = %v, want %v", env.sync.uploads, want)
	}
	if len(report.WeekPackages) != 2 || filepath.Base(report.WeekPackage) != "German VotD__Week 2.apkg" {
		t.Fatalf("week packages = %v, last = %q", report.WeekPackages, report.WeekPackage)
	}
	week1 := deckSummary(t, report.WeekPackages[0])
	if len(week1["German VotD::Week 1"]) != 2 {
		t.Fatalf("week 1 package = %v", week1)
	}
}

func TestDeckUpdaterKeepGoing(t *testing.T) {
	env := newUpdaterEnv(t)
	env.opts.KeepGoing = true
	env.builder.errs["kommen"] = verbFailure("kommen")

	report, err := env.run(t, "gehen", "kommen", "sehen")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(report.Added, []string{"gehen", "sehen"}) {
		t.Fatalf("added = %v", report.Added)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Verb != "kommen" {
		t.Fatalf("skipped = %+v", report.Skipped)
	}
	if !errors.Is(report.Skipped[0].Err, services.ErrVerbFailed) {
		t.Fatalf("skip error = %v", report.Skipped[0].Err)
	}
}

func TestDeckUpdaterHaltsWithoutKeepGoing(t *testing.T) {
	env := newUpdaterEnv(t)
	env.builder.errs["kommen"] = verbFailure("kommen")

	report, err := env.run(t, "gehen", "kommen", "sehen")
	if !errors.Is(err, services.ErrVerbFailed) {
		t.Fatalf("err = %v, want verb failure", err)
	}
	if !reflect.DeepEqual(report.Added, []string{"gehen"}) {
		t.Fatalf("added = %v", report.Added)
	}
	if len(env.sync.uploads) != 0 {
		t.Fatalf("halted run uploaded %v", env.sync.uploads)
	}
	if !reflect.DeepEqual(env.builder.calls, []string{"gehen", "kommen"}) {
		t.Fatalf("builder calls = %v", env.builder.calls)
	}
}

func TestDeckUpdaterQuitStopsKeepGoing(t *testing.T) {
	env := newUpdaterEnv(t)
	env.opts.KeepGoing = true
	env.builder.errs["gehen"] = services.Wrap(services.ErrUserQuit, "leo", "review translation", "gehen", nil)

	_, err := env.run(t, "gehen", "kommen")
	if !errors.Is(err, services.ErrUserQuit) {
		t.Fatalf("err = %v, want quit", err)
	}
	if len(env.builder.calls) != 1 {
		t.Fatalf("builder calls = %v", env.builder.calls)
	}
}

func TestDeckUpdaterAudioFailureIsWarning(t *testing.T) {
	env := newUpdaterEnv(t)
	env.audio.err = errors.New("forvo down")

	report, err := env.run(t, "gehen")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Added) != 1 {
		t.Fatalf("added = %v", report.Added)
	}
	decks := deckSummary(t, env.opts.CollectionPath)
	if got := decks["German VotD::Week 1"][0][1]; got != "gehen" {
		t.Fatalf("headword field = %q", got)
	}
}

func TestDeckUpdaterDryRun(t *testing.T) {
	env := newUpdaterEnv(t)
	env.opts.DryRun = true

	report, err := env.run(t, "gehen", "kommen")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(report.Backlog, []string{"gehen", "kommen"}) {
		t.Fatalf("backlog = %v", report.Backlog)
	}
	if len(env.builder.calls) != 0 || len(env.sync.uploads) != 0 {
		t.Fatalf("dry run did work: calls=%v uploads=%v", env.builder.calls, env.sync.uploads)
	}
	for name := range deckSummary(t, env.opts.CollectionPath) {
		if strings.HasPrefix(name, testRoot) {
			t.Fatalf("dry run created deck %q", name)
		}
	}
}

func TestDeckUpdaterStagesYearPackage(t *testing.T) {
	env := newUpdaterEnv(t)
	ctx := context.Background()

	seed, err := collection.Open(filepath.Join(env.dir, "seed.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	deckID, err := seed.CreateDeck(ctx, "German VotD::Week 1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := seed.CreateDeck(ctx, "German VotD::Week 1::Present"); err != nil {
		t.Fatal(err)
	}
	if _, err := seed.AddNote(ctx, []string{"to go", "gehen"}, collection.ModelBasicReversed, deckID); err != nil {
		t.Fatal(err)
	}
	pkg := filepath.Join(env.dir, "remote", "German VotD.apkg")
	if err := seed.Export(ctx, pkg); err != nil {
		t.Fatal(err)
	}
	if err := seed.Close(); err != nil {
		t.Fatal(err)
	}
	env.sync.packages["German VotD.apkg"] = pkg

	report, err := env.run(t, "gehen", "kommen")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(env.sync.downloads, []string{"German VotD.apkg"}) {
		t.Fatalf("downloads = %v", env.sync.downloads)
	}
	if !reflect.DeepEqual(report.Backlog, []string{"kommen"}) {
		t.Fatalf("backlog = %v", report.Backlog)
	}
	decks := deckSummary(t, env.opts.CollectionPath)
	if len(decks["German VotD::Week 1"]) != 2 {
		t.Fatalf("week 1 notes = %v", decks["German VotD::Week 1"])
	}
}

func TestDeckUpdaterLockContention(t *testing.T) {
	env := newUpdaterEnv(t)
	held := NewRunLock(env.opts.LockPath)
	if err := held.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer held.Release()

	_, err := env.run(t, "gehen")
	if !errors.Is(err, services.ErrRunAborted) {
		t.Fatalf("err = %v, want run aborted", err)
	}
	if len(env.sync.downloads) != 0 {
		t.Fatal("locked run should not touch packages")
	}
}

func TestYearFollowsPostedWeeks(t *testing.T) {
	env := newUpdaterEnv(t)
	env.opts.WeekSize = 1
	env.opts.DryRun = true
	posted := make([]string, 53)
	for i := range posted {
		posted[i] = "verb" + strings.Repeat("x", i) + "en"
	}
	report, err := env.run(t, posted...)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Year != 2 {
		t.Fatalf("year = %d, want 2", report.Year)
	}
	if !reflect.DeepEqual(env.sync.downloads, []string{"German VotD 2.apkg"}) {
		t.Fatalf("downloads = %v", env.sync.downloads)
	}
}

package leo_test

import (
	"errors"
	"strings"
	"testing"

	"votd/internal/leo"
	"votd/internal/services"
)

func TestVerbSectionSkipsOtherSections(t *testing.T) {
	section, err := leo.VerbSection(searchFixture)
	if err != nil {
		t.Fatalf("VerbSection: %v", err)
	}
	if strings.Contains(section, "gait") {
		t.Fatalf("verb section leaked the noun section: %s", section)
	}
	rows, err := leo.EntryRows(section)
	if err != nil {
		t.Fatalf("EntryRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestVerbSectionMissing(t *testing.T) {
	_, err := leo.VerbSection(withoutVerbs(searchFixture))
	if !errors.Is(err, leo.ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
	if !errors.Is(err, services.ErrVerbFailed) || services.IsFatalToRun(err) {
		t.Fatalf("missing section should only fail the verb: %v", err)
	}
}

func TestEntryRowsEmptySection(t *testing.T) {
	_, err := leo.EntryRows(`<table><thead><tr><th><h2>Verbs</h2></th></tr></thead><tbody></tbody></table>`)
	if !errors.Is(err, leo.ErrNoEntriesFound) {
		t.Fatalf("expected ErrNoEntriesFound, got %v", err)
	}
}

func TestTranslationCandidate(t *testing.T) {
	rows := verbRows(t)
	want := []string{"to go", "to walk"}
	for i, row := range rows {
		got, ok := leo.TranslationCandidate(row)
		if !ok || got != want[i] {
			t.Fatalf("row %d candidate = %q (%v), want %q", i, got, ok, want[i])
		}
	}
	if _, ok := leo.TranslationCandidate(`<tr><td lang="de">gehen</td></tr>`); ok {
		t.Fatal("row without english cell should yield no candidate")
	}
}

func TestFindTableLink(t *testing.T) {
	rows := verbRows(t)

	link, ok := leo.FindTableLink(rows, "gehen", testBase)
	if !ok {
		t.Fatal("german table link not found")
	}
	if link.URL != testBase+"/pages/flecttab/gehen.html" || link.Key != "de_gehen" {
		t.Fatalf("german link = %+v", link)
	}

	link, ok = leo.FindTableLink(rows, "go", testBase+"/")
	if !ok || link.URL != testBase+"/pages/flecttab/go.html" || link.Key != "en_go" {
		t.Fatalf("english link = %+v (%v)", link, ok)
	}

	if _, ok := leo.FindTableLink(rows, "walk", testBase); ok {
		t.Fatal("walk has no table opener")
	}
	if _, ok := leo.FindTableLink(rows, "geh", testBase); ok {
		t.Fatal("label prefix must not match")
	}
}

func TestFindTableLinkNumberedHomograph(t *testing.T) {
	row := `<tr data-dz-ui="dictentry"><td><i data-dz-flex-label-1="sein (2)" data-dz-flex-table-1="de_sein2"><a href="/pages/flecttab/sein2.html" title="Open verb table">t</a></i></td></tr>`
	link, ok := leo.FindTableLink([]string{row}, "sein", testBase)
	if !ok || link.Key != "de_sein2" {
		t.Fatalf("numbered label not matched: %+v (%v)", link, ok)
	}
}

func TestFindInfoKey(t *testing.T) {
	key, ok := leo.FindInfoKey(verbRows(t))
	if !ok || key != "AI_gehen" {
		t.Fatalf("info key = %q (%v)", key, ok)
	}
	if _, ok := leo.FindInfoKey([]string{`<tr><td>nothing</td></tr>`}); ok {
		t.Fatal("expected no info key")
	}
}

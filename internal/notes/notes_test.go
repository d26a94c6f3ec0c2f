package notes_test

import (
	"reflect"
	"testing"

	"votd/internal/conjugation"
	"votd/internal/ledger"
	"votd/internal/leo"
	"votd/internal/notes"
)

func gehen() *leo.Record {
	var table conjugation.Table
	table.SetMood(conjugation.Mood{Name: "Indikativ", Tenses: []conjugation.Tense{{
		Name: "Präsens",
		Inflection: conjugation.ByPronoun(
			conjugation.PronounForm{Pronoun: "ich", Form: "gehe"},
			conjugation.PronounForm{Pronoun: "du", Form: "gehst"},
		),
	}}})
	table.SetMood(conjugation.Mood{Name: "Unpersönliche Zeiten", Tenses: []conjugation.Tense{{
		Name:       "Partizip Perfekt",
		Inflection: conjugation.Form("gegangen"),
	}}})
	return &leo.Record{Word: "gehen", Translations: []string{"to go", "to walk"}, Conjugations: table}
}

func TestInfinitive(t *testing.T) {
	got := notes.Infinitive(gehen(), "gehen.mp3")
	want := []string{"to go; to walk", "gehen<br>[sound:gehen.mp3]"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Infinitive = %v, want %v", got, want)
	}
	if got := notes.Infinitive(gehen(), ""); got[1] != "gehen" {
		t.Fatalf("no audio back = %q", got[1])
	}
	if head := ledger.Headword(got); head != "gehen" {
		t.Fatalf("headword = %q", head)
	}
}

func TestTense(t *testing.T) {
	got := notes.Tense(gehen(), notes.TenseSpec{Name: "Present", Mood: "Indikativ", Tense: "Präsens"})
	if got[0] != "gehen (Present)" {
		t.Fatalf("front = %q", got[0])
	}
	if want := "<table><tr><td>ich</td><td>gehe</td></tr><tr><td>du</td><td>gehst</td></tr></table>"; got[1] != want {
		t.Fatalf("back = %q", got[1])
	}
	if ledger.Headword(got) != "" {
		t.Fatal("tense notes must not yield a headword")
	}

	bare := notes.Tense(gehen(), notes.TenseSpec{Name: "Participle", Mood: "Unpersönliche Zeiten", Tense: "Partizip Perfekt"})
	if bare[1] != "<table><tr><td>gegangen</td></tr></table>" {
		t.Fatalf("bare back = %q", bare[1])
	}

	missing := notes.Tense(gehen(), notes.TenseSpec{Name: "Past", Mood: "Indikativ", Tense: "Präteritum"})
	if missing[1] != "" {
		t.Fatalf("missing tense back = %q", missing[1])
	}
}

// Package notes projects verb records into flashcard note fields.
package notes

import (
	"html"
	"strings"

	"votd/internal/collection"
	"votd/internal/conjugation"
	"votd/internal/leo"
)

// TenseSpec selects one tense of the source conjugation table and the name
// its deck and card show.
type TenseSpec struct {
	Name  string
	Mood  string
	Tense string
}

// Infinitive returns the fields of the gloss/headword note. soundFile is the
// stored media name and may be empty.
func Infinitive(rec *leo.Record, soundFile string) []string {
	back := rec.Word
	if soundFile != "" {
		back += "<br>" + collection.SoundRef(soundFile)
	}
	return []string{strings.Join(rec.Translations, "; "), back}
}

// Tense returns the fields of a conjugation note. A tense the record lacks
// yields an empty answer field.
func Tense(rec *leo.Record, spec TenseSpec) []string {
	front := rec.Word + " (" + spec.Name + ")"
	inf, ok := rec.Conjugations.Lookup(spec.Mood, spec.Tense)
	if !ok {
		return []string{front, ""}
	}
	return []string{front, renderInflection(inf)}
}

func renderInflection(inf conjugation.Inflection) string {
	var b strings.Builder
	b.WriteString("<table>")
	if form, ok := inf.Form(); ok {
		b.WriteString("<tr><td>" + html.EscapeString(form) + "</td></tr>")
	} else {
		pairs, _ := inf.Pronouns()
		for _, pair := range pairs {
			b.WriteString("<tr><td>" + html.EscapeString(pair.Pronoun) + "</td><td>" + html.EscapeString(pair.Form) + "</td></tr>")
		}
	}
	b.WriteString("</table>")
	return b.String()
}

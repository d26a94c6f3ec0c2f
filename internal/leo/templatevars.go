package leo

import (
	"fmt"
	"strings"

	"votd/internal/conjugation"
)

// TemplateVars flattens the record into the variables a post template
// renders, taking conjugations from one mood and tense.
func (r *Record) TemplateVars(mood, tense string) (map[string]string, error) {
	if !conjugation.German.IsMood(mood) {
		return nil, fmt.Errorf("unknown mood %q (accepted: %s)", mood, strings.Join(conjugation.German.Moods, ", "))
	}
	if !conjugation.German.IsTense(tense) {
		return nil, fmt.Errorf("unknown tense %q (accepted: %s)", tense, strings.Join(conjugation.German.Tenses, ", "))
	}
	inf, ok := r.Conjugations.Lookup(mood, tense)
	if !ok {
		return nil, fmt.Errorf("%s has no %s %s conjugation", r.Word, mood, tense)
	}

	vars := map[string]string{
		"verb_de":  r.Word,
		"verb_en":  strings.Join(r.Translations, "; "),
		"verb_leo": r.TableKey,
		"info_leo": r.InfoKey,
	}
	if form, ok := inf.Form(); ok {
		vars["conj"] = form
		return vars, nil
	}
	pairs, _ := inf.Pronouns()
	for _, pair := range pairs {
		vars["conj_"+pronounKey(pair.Pronoun)] = pair.Form
	}
	return vars, nil
}

func pronounKey(pronoun string) string {
	head, _, _ := strings.Cut(pronoun, "/")
	return strings.TrimSpace(head)
}

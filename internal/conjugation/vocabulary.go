package conjugation

import "slices"

// Vocabulary lists the mood headers and tense labels recognized on a table
// page for one language. Lines matching neither are pronoun/form pairs.
type Vocabulary struct {
	Language string
	Moods    []string
	Tenses   []string
}

// German is the vocabulary of German verb table pages.
var German = Vocabulary{
	Language: "de",
	Moods: []string{
		"Indikativ",
		"Konjunktiv",
		"Imperativ",
		"Unpersönliche Zeiten",
	},
	Tenses: []string{
		"Präsens",
		"Perfekt",
		"Präteritum",
		"Plusquamperfekt",
		"Futur I",
		"Futur II",
		"Konjunktiv I - Perfekt",
		"Konjunktiv II - Präteritum",
		"Konjunktiv II - Plusquamperfekt",
		"Konjunktiv I/II - Futur I",
		"Konjunktiv I/II - Futur II",
		"Partizip Präsens",
		"Partizip Perfekt",
	},
}

// English is the vocabulary of English verb table pages.
var English = Vocabulary{
	Language: "en",
	Moods: []string{
		"Indicative",
		"Conditional",
		"Imperative",
		"Impersonal",
	},
	Tenses: []string{
		"Simple present",
		"Present progressive",
		"Simple past",
		"Past progressive",
		"Present perfect",
		"Present perfect progressive",
		"Past perfect",
		"Past perfect progressive",
		"Future (will)",
		"Future (be going to)",
		"Future progressive (will)",
		"Future progressive (be going to)",
		"Future perfect",
		"Future perfect progressive",
		"Simple",
		"Progressive",
		"Perfect",
		"Perfect progressive",
		"Present",
		"Present participle",
		"Past tense",
		"Past participle",
	},
}

// IsMood reports whether line is a recognized mood header.
func (v Vocabulary) IsMood(line string) bool {
	return slices.Contains(v.Moods, line)
}

// IsTense reports whether line is a recognized tense label.
func (v Vocabulary) IsTense(line string) bool {
	return slices.Contains(v.Tenses, line)
}

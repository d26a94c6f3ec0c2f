package conjugation

import "strings"

// Kind tags the active side of an Inflection.
type Kind int

const (
	// KindByPronoun holds one form per subject pronoun.
	KindByPronoun Kind = iota
	// KindForm holds a single form with no subject.
	KindForm
)

func (k Kind) String() string {
	switch k {
	case KindForm:
		return "form"
	case KindByPronoun:
		return "by_pronoun"
	default:
		return "unknown"
	}
}

// PronounForm pairs a subject pronoun with its conjugated form.
type PronounForm struct {
	Pronoun string
	Form    string
}

// Inflection is the leaf of a conjugation table.
type Inflection struct {
	kind     Kind
	form     string
	pronouns []PronounForm
}

// Form builds a bare single-form inflection.
func Form(value string) Inflection {
	return Inflection{kind: KindForm, form: value}
}

// ByPronoun builds a pronoun keyed inflection. Later duplicates of a pronoun
// replace earlier ones in place.
func ByPronoun(pairs ...PronounForm) Inflection {
	inf := Inflection{kind: KindByPronoun}
	for _, pair := range pairs {
		inf = inf.withPronoun(pair.Pronoun, pair.Form)
	}
	return inf
}

// Kind reports which side of the union is populated.
func (i Inflection) Kind() Kind { return i.kind }

// Form returns the bare form and true when Kind is KindForm.
func (i Inflection) Form() (string, bool) {
	if i.kind != KindForm {
		return "", false
	}
	return i.form, true
}

// Pronouns returns the ordered pronoun/form pairs when Kind is KindByPronoun.
func (i Inflection) Pronouns() ([]PronounForm, bool) {
	if i.kind != KindByPronoun {
		return nil, false
	}
	return append([]PronounForm(nil), i.pronouns...), true
}

// Lookup returns the form for pronoun.
func (i Inflection) Lookup(pronoun string) (string, bool) {
	for _, pair := range i.pronouns {
		if pair.Pronoun == pronoun {
			return pair.Form, true
		}
	}
	return "", false
}

// Len is the number of forms held.
func (i Inflection) Len() int {
	if i.kind == KindForm {
		return 1
	}
	return len(i.pronouns)
}

// Equal reports structural equality including pronoun order.
func (i Inflection) Equal(other Inflection) bool {
	if i.kind != other.kind || i.form != other.form || len(i.pronouns) != len(other.pronouns) {
		return false
	}
	for idx := range i.pronouns {
		if i.pronouns[idx] != other.pronouns[idx] {
			return false
		}
	}
	return true
}

func (i Inflection) withPronoun(pronoun, form string) Inflection {
	out := Inflection{kind: KindByPronoun, pronouns: append([]PronounForm(nil), i.pronouns...)}
	for idx := range out.pronouns {
		if out.pronouns[idx].Pronoun == pronoun {
			out.pronouns[idx].Form = form
			return out
		}
	}
	out.pronouns = append(out.pronouns, PronounForm{Pronoun: pronoun, Form: form})
	return out
}

// Tense is one named inflection inside a mood.
type Tense struct {
	Name       string
	Inflection Inflection
}

// Mood is an ordered list of tenses.
type Mood struct {
	Name   string
	Tenses []Tense
}

// Tense returns the named tense.
func (m Mood) Tense(name string) (Inflection, bool) {
	for _, t := range m.Tenses {
		if t.Name == name {
			return t.Inflection, true
		}
	}
	return Inflection{}, false
}

// TenseNames lists tense names in table order.
func (m Mood) TenseNames() []string {
	names := make([]string, 0, len(m.Tenses))
	for _, t := range m.Tenses {
		names = append(names, t.Name)
	}
	return names
}

func (m *Mood) set(name string, inf Inflection) {
	for idx := range m.Tenses {
		if m.Tenses[idx].Name == name {
			m.Tenses[idx].Inflection = inf
			return
		}
	}
	m.Tenses = append(m.Tenses, Tense{Name: name, Inflection: inf})
}

// Table is an ordered mood → tense → Inflection mapping.
type Table struct {
	Moods []Mood
}

// Empty reports whether the table holds no moods.
func (t Table) Empty() bool { return len(t.Moods) == 0 }

// Mood returns the named mood.
func (t Table) Mood(name string) (Mood, bool) {
	for _, m := range t.Moods {
		if m.Name == name {
			return m, true
		}
	}
	return Mood{}, false
}

// MoodNames lists mood names in table order.
func (t Table) MoodNames() []string {
	names := make([]string, 0, len(t.Moods))
	for _, m := range t.Moods {
		names = append(names, m.Name)
	}
	return names
}

// Lookup returns the inflection stored under mood and tense.
func (t Table) Lookup(mood, tense string) (Inflection, bool) {
	m, ok := t.Mood(mood)
	if !ok {
		return Inflection{}, false
	}
	return m.Tense(tense)
}

// Equal reports structural equality including order.
func (t Table) Equal(other Table) bool {
	if len(t.Moods) != len(other.Moods) {
		return false
	}
	for i, m := range t.Moods {
		o := other.Moods[i]
		if m.Name != o.Name || len(m.Tenses) != len(o.Tenses) {
			return false
		}
		for j, tense := range m.Tenses {
			if tense.Name != o.Tenses[j].Name || !tense.Inflection.Equal(o.Tenses[j].Inflection) {
				return false
			}
		}
	}
	return true
}

// SetMood stores mood, replacing an existing mood of the same name in place.
func (t *Table) SetMood(mood Mood) {
	for idx := range t.Moods {
		if t.Moods[idx].Name == mood.Name {
			t.Moods[idx] = mood
			return
		}
	}
	t.Moods = append(t.Moods, mood)
}

// String renders the table as indented text for diagnostics.
func (t Table) String() string {
	var b strings.Builder
	for _, m := range t.Moods {
		b.WriteString(m.Name)
		b.WriteByte('\n')
		for _, tense := range m.Tenses {
			b.WriteString("  ")
			b.WriteString(tense.Name)
			switch tense.Inflection.Kind() {
			case KindForm:
				form, _ := tense.Inflection.Form()
				b.WriteString(": ")
				b.WriteString(form)
				b.WriteByte('\n')
			case KindByPronoun:
				b.WriteByte('\n')
				pairs, _ := tense.Inflection.Pronouns()
				for _, pair := range pairs {
					b.WriteString("    ")
					b.WriteString(pair.Pronoun)
					b.WriteByte(' ')
					b.WriteString(pair.Form)
					b.WriteByte('\n')
				}
			}
		}
	}
	return b.String()
}

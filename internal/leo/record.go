package leo

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"votd/internal/conjugation"
	"votd/internal/verbcache"
)

// Cached field names.
const (
	FieldRows               = "rows"
	FieldTranslations       = "translations"
	FieldTableLink          = "table_link"
	FieldTableKey           = "table_key"
	FieldTargetTableLink    = "target_table_link"
	FieldTargetTableKey     = "target_table_key"
	FieldInfoKey            = "info_key"
	FieldConjugations       = "conjugations"
	FieldTargetConjugations = "target_conjugations"
)

// Record is everything known about one German verb.
type Record struct {
	Word               string
	Rows               []string
	Translations       []string
	TableLink          string
	TableKey           string
	TargetTableLink    string
	TargetTableKey     string
	InfoKey            string
	Conjugations       conjugation.Table
	TargetConjugations conjugation.Table
}

var lowerEnglish = cases.Lower(language.English)

// EnglishVerb is the bare English infinitive of the first accepted gloss:
// "to go" yields "go". It is empty when no gloss is known.
func (r *Record) EnglishVerb() string {
	if r == nil || len(r.Translations) == 0 {
		return ""
	}
	return englishVerb(r.Translations[0])
}

func englishVerb(translation string) string {
	tokens := strings.Fields(translation)
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return lowerEnglish.String(tokens[0])
	default:
		return lowerEnglish.String(tokens[1])
	}
}

// Complete reports whether every field of the record has been resolved.
func (r *Record) Complete() bool {
	return len(r.Translations) > 0 && r.TableLink != "" && r.InfoKey != "" && !r.Conjugations.Empty()
}

// decodeRecord restores whatever fields fields carries. Undecodable
// fields are dropped from fields so they get rebuilt.
func decodeRecord(word string, fields verbcache.Fields) (*Record, []string) {
	rec := &Record{Word: word}
	targets := map[string]any{
		FieldRows:               &rec.Rows,
		FieldTranslations:       &rec.Translations,
		FieldTableLink:          &rec.TableLink,
		FieldTableKey:           &rec.TableKey,
		FieldTargetTableLink:    &rec.TargetTableLink,
		FieldTargetTableKey:     &rec.TargetTableKey,
		FieldInfoKey:            &rec.InfoKey,
		FieldConjugations:       &rec.Conjugations,
		FieldTargetConjugations: &rec.TargetConjugations,
	}
	var dropped []string
	for key, target := range targets {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			delete(fields, key)
			dropped = append(dropped, key)
		}
	}
	return rec, dropped
}

func encodeField(value any) (json.RawMessage, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode field: %w", err)
	}
	return data, nil
}

// RecordFromFields decodes a cached entry without touching the network.
func RecordFromFields(word string, fields verbcache.Fields) *Record {
	rec, _ := decodeRecord(word, fields.Clone())
	return rec
}

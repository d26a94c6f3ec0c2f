package conjugation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MarshalJSON encodes the table as nested objects in table order. A bare form
// leaf is a JSON string; a pronoun leaf is an object.
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range t.Moods {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, m.Name); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, tense := range m.Tenses {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, tense.Name); err != nil {
				return nil, err
			}
			leaf, err := tense.Inflection.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(leaf)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the leaf as a string or a pronoun object.
func (i Inflection) MarshalJSON() ([]byte, error) {
	if i.kind == KindForm {
		return json.Marshal(i.form)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, pair := range i.pronouns {
		if idx > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, pair.Pronoun); err != nil {
			return nil, err
		}
		value, err := json.Marshal(pair.Form)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	encoded, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	buf.WriteByte(':')
	return nil
}

// UnmarshalJSON decodes nested objects preserving key order.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if isNull(data) {
		*t = Table{}
		return nil
	}
	var out Table
	err := readObject(dec, func(moodName string) error {
		mood := Mood{Name: moodName}
		if err := readObject(dec, func(tenseName string) error {
			inf, err := readInflection(dec)
			if err != nil {
				return fmt.Errorf("tense %q: %w", tenseName, err)
			}
			mood.set(tenseName, inf)
			return nil
		}); err != nil {
			return fmt.Errorf("mood %q: %w", moodName, err)
		}
		out.SetMood(mood)
		return nil
	})
	if err != nil {
		return fmt.Errorf("decode conjugation table: %w", err)
	}
	*t = out
	return nil
}

// UnmarshalJSON decodes a string or pronoun object leaf.
func (i *Inflection) UnmarshalJSON(data []byte) error {
	inf, err := readInflection(json.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return err
	}
	*i = inf
	return nil
}

func readInflection(dec *json.Decoder) (Inflection, error) {
	tok, err := dec.Token()
	if err != nil {
		return Inflection{}, err
	}
	switch v := tok.(type) {
	case string:
		return Form(v), nil
	case json.Delim:
		if v != '{' {
			return Inflection{}, fmt.Errorf("unexpected %q, want string or object", v)
		}
		inf := ByPronoun()
		if err := readMembers(dec, func(pronoun string) error {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			form, ok := tok.(string)
			if !ok {
				return fmt.Errorf("pronoun %q: form must be a string", pronoun)
			}
			inf = inf.withPronoun(pronoun, form)
			return nil
		}); err != nil {
			return Inflection{}, err
		}
		return inf, nil
	default:
		return Inflection{}, fmt.Errorf("unexpected token %v, want string or object", tok)
	}
}

// readObject consumes '{', calls member for each key with the decoder
// positioned at its value, and consumes '}'.
func readObject(dec *json.Decoder, member func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("unexpected token %v, want object", tok)
	}
	return readMembers(dec, member)
}

func readMembers(dec *json.Decoder, member func(key string) error) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("object key must be a string")
		}
		if err := member(key); err != nil {
			return err
		}
	}
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '}' {
		return fmt.Errorf("unexpected token %v, want end of object", tok)
	}
	return nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

package conjugation

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"votd/internal/textutil"
)

// searchMarker appears in label lines produced by the page's search widget.
const searchMarker = "#Search"

// Extract parses a table page into a conjugation Table using vocab to tell
// mood headers and tense labels from pronoun/form lines. Markup with no rows
// yields an empty table and no error.
func Extract(markup string, vocab Vocabulary) (Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Table{}, fmt.Errorf("parse table page: %w", err)
	}
	return ExtractLines(LabelLines(doc.Selection), vocab), nil
}

// LabelLines reduces every table row under sel to one label line: the text
// of its last non-empty data cell, or header cell when the row has no data
// cells. Rows without text and search widget rows are dropped.
func LabelLines(sel *goquery.Selection) []string {
	var lines []string
	sel.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() == 0 {
			cells = row.ChildrenFiltered("th")
		}
		label := ""
		cells.Each(func(_ int, cell *goquery.Selection) {
			if text := textutil.CleanText(cell.Text()); text != "" {
				label = text
			}
		})
		if label == "" || strings.Contains(label, searchMarker) {
			return
		}
		lines = append(lines, label)
	})
	return lines
}

// ExtractLines runs the mood/tense state machine over label lines.
//
// A mood header closes the open tense and mood and opens a new mood. A tense
// label closes the open tense. Any other line is "pronoun form..." and is
// added to the open tense; a single token line makes the tense a bare Form.
// Lines that arrive before a mood, or inside a mood before any tense, carry no
// position in the table and are skipped.
func ExtractLines(lines []string, vocab Vocabulary) Table {
	var (
		table     Table
		mood      *Mood
		tenseName string
		tenseOpen bool
		current   Inflection
	)
	flushTense := func() {
		if mood != nil && tenseOpen {
			mood.set(tenseName, current)
		}
		tenseOpen = false
		tenseName = ""
		current = Inflection{}
	}
	flushMood := func() {
		flushTense()
		if mood != nil {
			table.SetMood(*mood)
		}
		mood = nil
	}

	for _, line := range lines {
		switch {
		case vocab.IsMood(line):
			flushMood()
			mood = &Mood{Name: line}
		case vocab.IsTense(line):
			flushTense()
			if mood == nil {
				continue
			}
			tenseName = line
			tenseOpen = true
			current = ByPronoun()
		default:
			if !tenseOpen {
				continue
			}
			parts := strings.Fields(line)
			switch {
			case len(parts) == 0:
			case len(parts) == 1:
				current = Form(parts[0])
			default:
				if current.Kind() == KindForm {
					current = ByPronoun()
				}
				current = current.withPronoun(parts[0], strings.Join(parts[1:], " "))
			}
		}
	}
	flushMood()
	return table
}

package leo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"votd/internal/textutil"
)

const (
	verbSectionTitle = "Verbs"
	openTableMarker  = "Open verb table"
)

var translationHref = regexp.MustCompile(`/german-english/([A-Za-z-]+)`)

// TableLink locates a conjugation page and the key LEO uses to deep-link it.
type TableLink struct {
	URL string
	Key string
}

// VerbSection returns the markup of the "Verbs" section of a search page.
func VerbSection(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse search page: %w", err)
	}
	var section *goquery.Selection
	doc.Find("thead").EachWithBreak(func(_ int, head *goquery.Selection) bool {
		if textutil.CleanText(head.Find("h2").First().Text()) != verbSectionTitle {
			return true
		}
		section = head.Closest("table")
		if section.Length() == 0 {
			section = head.Parent()
		}
		return false
	})
	if section == nil || section.Length() == 0 {
		return "", ErrSectionNotFound
	}
	markup, err := goquery.OuterHtml(section)
	if err != nil {
		return "", fmt.Errorf("render verb section: %w", err)
	}
	return markup, nil
}

// EntryRows returns the markup of each dictionary entry row in a section.
func EntryRows(section string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(section))
	if err != nil {
		return nil, fmt.Errorf("parse verb section: %w", err)
	}
	var rows []string
	var renderErr error
	doc.Find(`tr[data-dz-ui="dictentry"]`).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		markup, err := goquery.OuterHtml(row)
		if err != nil {
			renderErr = err
			return false
		}
		rows = append(rows, markup)
		return true
	})
	if renderErr != nil {
		return nil, fmt.Errorf("render entry row: %w", renderErr)
	}
	if len(rows) == 0 {
		return nil, ErrNoEntriesFound
	}
	return rows, nil
}

// TranslationCandidate renders the English gloss of one entry row from the
// words its translation cell links to.
func TranslationCandidate(row string) (string, bool) {
	sel := parseRow(row)
	if sel == nil {
		return "", false
	}
	cell := sel.Find(`td[data-dz-attr="relink"][lang="en"]`).First()
	if cell.Length() == 0 {
		return "", false
	}
	var words []string
	cell.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if match := translationHref.FindStringSubmatch(href); match != nil {
			words = append(words, match[1])
		}
	})
	if len(words) == 0 {
		return "", false
	}
	return strings.Join(words, " "), true
}

// FindTableLink scans rows for the cell that opens the conjugation table of
// word. Numbered homograph labels such as "sein (2)" also match.
func FindTableLink(rows []string, word, baseURL string) (TableLink, bool) {
	word = strings.TrimSpace(word)
	if word == "" {
		return TableLink{}, false
	}
	label := regexp.MustCompile(`^` + regexp.QuoteMeta(word) + `( \([0-9]+\))?$`)
	for _, row := range rows {
		sel := parseRow(row)
		if sel == nil {
			continue
		}
		var found TableLink
		sel.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			labelled := labelledElement(cell, label)
			if labelled == nil {
				return true
			}
			markup, err := goquery.OuterHtml(cell)
			if err != nil || !strings.Contains(markup, openTableMarker) {
				return true
			}
			href, ok := tableAnchor(cell, labelled).Attr("href")
			if !ok {
				return true
			}
			found.URL = absolutize(baseURL, href)
			found.Key, ok = labelled.Attr("data-dz-flex-table-1")
			if !ok {
				found.Key, _ = cell.Find("[data-dz-flex-table-1]").First().Attr("data-dz-flex-table-1")
			}
			return false
		})
		if found.URL != "" {
			return found, true
		}
	}
	return TableLink{}, false
}

// FindInfoKey returns the first grammar info key among rows.
func FindInfoKey(rows []string) (string, bool) {
	for _, row := range rows {
		sel := parseRow(row)
		if sel == nil {
			continue
		}
		if key, ok := sel.Find("[data-dz-rel-aiid]").First().Attr("data-dz-rel-aiid"); ok && strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), true
		}
	}
	return "", false
}

func labelledElement(cell *goquery.Selection, label *regexp.Regexp) *goquery.Selection {
	var found *goquery.Selection
	cell.Find("[data-dz-flex-label-1]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		value, _ := el.Attr("data-dz-flex-label-1")
		if label.MatchString(strings.TrimSpace(value)) {
			found = el
			return false
		}
		return true
	})
	return found
}

// tableAnchor picks the anchor on or under the labelled element, falling
// back to the cell's table opener.
func tableAnchor(cell, labelled *goquery.Selection) *goquery.Selection {
	if labelled.Is("a[href]") {
		return labelled
	}
	if anchor := labelled.Find("a[href]").First(); anchor.Length() > 0 {
		return anchor
	}
	if anchor := cell.Find(`a[title="` + openTableMarker + `"]`).First(); anchor.Length() > 0 {
		return anchor
	}
	return cell.Find("a[href]").First()
}

// parseRow wraps a bare <tr> in a table so the HTML parser keeps its cells.
func parseRow(row string) *goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table><tbody>" + row + "</tbody></table>"))
	if err != nil {
		return nil
	}
	return doc.Find("tr").First()
}

func absolutize(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}

package leo_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"votd/internal/leo"
	"votd/internal/verbcache"
)

const searchFixture = `<html><body>
<table><thead><tr><th><h2>Nouns</h2></th></tr></thead><tbody>
<tr data-dz-ui="dictentry"><td data-dz-attr="relink" lang="en"><a href="/german-english/gait">gait</a></td><td lang="de">der Gang</td></tr>
</tbody></table>
<table><thead><tr><th colspan="2"><h2>Verbs</h2></th></tr></thead><tbody>
<tr data-dz-ui="dictentry">
<td data-dz-attr="relink" lang="en"><samp><a href="/german-english/to">to</a> <a href="/german-english/go">go</a></samp> <i data-dz-flex-label-1="go" data-dz-flex-table-1="en_go"><a href="/pages/flecttab/go.html" title="Open verb table">table</a></i></td>
<td data-dz-attr="relink" lang="de"><samp><a href="/german-english/gehen">gehen</a></samp> <i data-dz-flex-label-1="gehen" data-dz-flex-table-1="de_gehen"><a href="/pages/flecttab/gehen.html" title="Open verb table">table</a></i> <sup data-dz-rel-aiid="AI_gehen">info</sup></td>
</tr>
<tr data-dz-ui="dictentry">
<td data-dz-attr="relink" lang="en"><samp><a href="/german-english/to">to</a> <a href="/german-english/walk">walk</a></samp></td>
<td data-dz-attr="relink" lang="de"><samp><a href="/german-english/gehen">gehen</a></samp></td>
</tr>
</tbody></table>
</body></html>`

const germanTableFixture = `<html><body><table>
<tr><td><a href="#Search">#Search</a></td></tr>
<tr><th>Indikativ</th></tr>
<tr><th>Präsens</th></tr>
<tr><td>ich gehe</td></tr>
<tr><td>du gehst</td></tr>
<tr><td>er/sie/es geht</td></tr>
<tr><td>wir gehen</td></tr>
<tr><td>ihr geht</td></tr>
<tr><td>sie/Sie gehen</td></tr>
<tr><th>Unpersönliche Zeiten</th></tr>
<tr><th>Partizip Perfekt</th></tr>
<tr><td>gegangen</td></tr>
</table></body></html>`

const englishTableFixture = `<html><body><table>
<tr><th>Indicative</th></tr>
<tr><th>Simple present</th></tr>
<tr><td>I go</td></tr>
<tr><td>you go</td></tr>
<tr><td>he/she/it goes</td></tr>
</table></body></html>`

const testBase = "https://dict.example"

// stubFetcher serves canned pages and counts requests per URL.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	hits  map[string]int
}

func newStubFetcher(pages map[string]string) *stubFetcher {
	return &stubFetcher{pages: pages, hits: map[string]int{}}
}

func gehenPages() map[string]string {
	return map[string]string{
		testBase + "/german-english/gehen":      searchFixture,
		testBase + "/pages/flecttab/gehen.html": germanTableFixture,
		testBase + "/pages/flecttab/go.html":    englishTableFixture,
	}
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[rawURL]++
	page, ok := f.pages[rawURL]
	if !ok {
		return "", fmt.Errorf("unexpected fetch %s", rawURL)
	}
	return page, nil
}

func (f *stubFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.hits {
		n += c
	}
	return n
}

// memCache is an in-memory leo.Cache.
type memCache struct {
	entries map[string]verbcache.Fields
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]verbcache.Fields{}}
}

func (c *memCache) Get(_ context.Context, word string) (verbcache.Fields, error) {
	fields, ok := c.entries[word]
	if !ok {
		return nil, verbcache.ErrNotFound
	}
	return fields.Clone(), nil
}

func (c *memCache) Put(_ context.Context, word string, fields verbcache.Fields) error {
	c.puts++
	merged := c.entries[word]
	if merged == nil {
		merged = verbcache.Fields{}
	}
	for k, v := range fields {
		merged[k] = v
	}
	c.entries[word] = merged
	return nil
}

// scriptedReviewer accepts candidates listed in accept, quits on quitAt and
// rejects everything else.
type scriptedReviewer struct {
	accept []string
	quitAt string
	seen   []string
}

func (r *scriptedReviewer) ReviewTranslation(_ context.Context, _ string, candidate string, _ []string) (leo.Decision, error) {
	r.seen = append(r.seen, candidate)
	if candidate == r.quitAt {
		return leo.Quit, nil
	}
	for _, want := range r.accept {
		if want == candidate {
			return leo.Accept, nil
		}
	}
	return leo.Reject, nil
}

func failingReviewer(t *testing.T) leo.TranslationReviewer {
	t.Helper()
	return leo.ReviewerFunc(func(_ context.Context, verb, candidate string, _ []string) (leo.Decision, error) {
		t.Fatalf("unexpected review of %q for %q", candidate, verb)
		return leo.Reject, nil
	})
}

func verbRows(t *testing.T) []string {
	t.Helper()
	section, err := leo.VerbSection(searchFixture)
	if err != nil {
		t.Fatalf("VerbSection: %v", err)
	}
	rows, err := leo.EntryRows(section)
	if err != nil {
		t.Fatalf("EntryRows: %v", err)
	}
	return rows
}

func withoutVerbs(page string) string {
	return strings.Replace(page, "<h2>Verbs</h2>", "<h2>Phrases</h2>", 1)
}

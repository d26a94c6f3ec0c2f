// Package backlog works out which posted verbs still need cards and how the
// posting history groups into weekly and yearly packages.
package backlog

import (
	"fmt"
	"strings"
)

// WeeksPerYear is the number of weeks bundled into one yearly package.
const WeeksPerYear = 52

// Compute returns the verbs of posted, in posting order, that are absent from
// present. The result starts at the earliest missing verb; a verb posted more
// than once is returned at its first position only.
func Compute(posted []string, present map[string]struct{}) []string {
	start := -1
	for i, verb := range posted {
		if _, ok := present[verb]; !ok {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	seen := make(map[string]bool, len(posted)-start)
	out := make([]string, 0, len(posted)-start)
	for _, verb := range posted[start:] {
		if _, ok := present[verb]; ok || seen[verb] {
			continue
		}
		seen[verb] = true
		out = append(out, verb)
	}
	return out
}

// Weeks splits posted into consecutive groups of size. The last group may be
// shorter.
func Weeks(posted []string, size int) [][]string {
	if size <= 0 {
		return nil
	}
	var weeks [][]string
	for start := 0; start < len(posted); start += size {
		end := min(start+size, len(posted))
		weeks = append(weeks, posted[start:end])
	}
	return weeks
}

// Year is the 1-based year a history of weekCount weeks falls in.
func Year(weekCount int) int {
	return weekCount/WeeksPerYear + 1
}

// YearPackageName names the package of a year. The first year carries no
// number.
func YearPackageName(root string, year int) string {
	if year <= 1 {
		return root + ".apkg"
	}
	return fmt.Sprintf("%s %d.apkg", root, year)
}

// WeekPackageName names the package of a single week.
func WeekPackageName(root string, week int) string {
	return fmt.Sprintf("%s__Week %d.apkg", root, week)
}

// ParseVerbList reads one verb per line, skipping blanks and # comments.
func ParseVerbList(text string) []string {
	var verbs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		verbs = append(verbs, strings.Join(strings.Fields(line), " "))
	}
	return verbs
}

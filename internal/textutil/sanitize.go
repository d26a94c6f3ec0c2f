package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// Sanitize removes every rune whose Unicode general category is in the
// "Other" major class (Cc, Cf, Cs, Co, Cn). Zero-width spaces and stray
// control characters show up in dictionary markup and break exact matches
// against pronoun and tense labels.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if isOther(r) {
			return -1
		}
		return r
	}, text)
}

func isOther(r rune) bool {
	if r < utf8.RuneSelf {
		return r < 0x20 || r == 0x7f
	}
	// unicode.C covers Cc, Cf, Cs and Co; unassigned code points have no
	// category table so they are detected by absence from every assigned range.
	if unicode.Is(unicode.C, r) {
		return true
	}
	return !isAssigned(r)
}

func isAssigned(r rune) bool {
	for _, table := range unicode.Categories {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

// SanitizeMarkup is Sanitize for whole pages: ASCII whitespace controls
// become spaces first so tag attributes and words stay separated.
func SanitizeMarkup(markup string) string {
	return Sanitize(whitespaceControls.Replace(markup))
}

var whitespaceControls = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ", "\f", " ", "\v", " ")

// CleanText returns the visible text of a scraped fragment: whitespace
// collapsed and Other class runes removed.
func CleanText(value string) string {
	return CollapseSpace(Sanitize(CollapseSpace(value)))
}

// CollapseSpace trims value and replaces every internal whitespace run with a
// single ASCII space.
func CollapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

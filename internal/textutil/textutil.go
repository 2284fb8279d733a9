// Package textutil holds the text derivations used by the content models:
// slugs, excerpts and display-name casing.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ExcerptLength is the number of characters kept when an excerpt is derived.
const ExcerptLength = 200

var (
	slugInvalid   = regexp.MustCompile(`[^\w\s-]`)
	slugSeparator = regexp.MustCompile(`[-\s]+`)
)

func asciiFold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	return out
}

// Slugify converts s to a URL slug: ASCII only, lowercase, runs of
// whitespace and hyphens collapsed into one hyphen, leading and trailing
// hyphens and underscores removed. The result may be empty.
func Slugify(s string) string {
	s = asciiFold(s)
	s = slugInvalid.ReplaceAllString(strings.ToLower(s), "")
	s = slugSeparator.ReplaceAllString(s, "-")
	return strings.Trim(s, "-_")
}

// SlugifyMax is Slugify cut to at most n runes, re-trimmed so the cut never
// leaves a trailing hyphen or underscore.
func SlugifyMax(s string, n int) string {
	return strings.Trim(Truncate(Slugify(s), n), "-_")
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Excerpt returns content unchanged when it fits in ExcerptLength runes,
// otherwise its first ExcerptLength runes followed by "...".
func Excerpt(content string) string {
	if len([]rune(content)) <= ExcerptLength {
		return content
	}
	return Truncate(content, ExcerptLength) + "..."
}

// Title upper-cases the first letter of every word and lower-cases the rest,
// where a word is a run of letters.
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

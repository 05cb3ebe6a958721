// Package genre holds the story genre catalogue and the slug rules shared by
// genre lookups and export filenames.
package genre

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a string to an ASCII slug.
// "Ciencia Ficción" -> "ciencia-ficcion".
// "La Torre / Parte II" -> "la-torre-parte-ii".
func Slugify(s string) string {
	// Decompose accents so "ó" becomes "o" + combining mark, then drop the marks.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return unicode.ToLower(r)
	}, s)

	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches runs of anything that is not a letter or digit.
	separatorRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	// Matches a leading article followed by a separator.
	articleRe = regexp.MustCompile(`^the-`)
)

// NameKey converts a display name to a key that groups spellings of the same
// name. Different names can share a key, so it is for grouping only.
//
// Normalization rules:
//  1. Strip diacritics and lowercase
//  2. Collapse everything that is not a letter or digit to one dash
//  3. Trim leading/trailing dashes
//  4. Drop a leading "the-"
//
// Examples:
//
//	"Beyoncé"        → "beyonce"
//	"The Beatles"    → "beatles"
//	"AC/DC"          → "ac-dc"
//	"  Sigur Rós "   → "sigur-ros"
func NameKey(input string) string {
	s := strings.ToLower(stripMarks(strings.TrimSpace(input)))
	s = separatorRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if k := articleRe.ReplaceAllString(s, ""); k != "" {
		s = k
	}
	return s
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

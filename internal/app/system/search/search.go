// Package search holds the text-matching helpers shared by list filters.
package search

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Fold normalizes s for case- and diacritic-insensitive comparison.
func Fold(s string) string {
	return text.Fold(strings.TrimSpace(s))
}

// Matches reports whether the folded query is a substring of any field.
// An empty query matches everything.
func Matches(q string, fields ...string) bool {
	fq := Fold(q)
	if fq == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), fq) {
			return true
		}
	}
	return false
}

// EqualsAnyFold reports whether s equals any of vals, ignoring case and
// surrounding whitespace.
func EqualsAnyFold(s string, vals ...string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, v := range vals {
		if s == strings.ToLower(v) {
			return true
		}
	}
	return false
}

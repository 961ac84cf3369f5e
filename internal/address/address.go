// Package address canonicalizes provider-formatted addresses for comparison
// and builds the substring patterns used by trip search.
package address

import (
	"strings"
)

// Normalize lower-cases s, collapses whitespace runs to a single space, trims,
// and strips commas and hyphens. Normalize(Normalize(s)) == Normalize(s).
//
// Commas and hyphens are stripped before whitespace is collapsed, so
// "Hanoi - Vietnam" becomes "hanoi vietnam" rather than "hanoi  vietnam".
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if r == ',' || r == '-' {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// SelectExact returns the first candidate whose formatted address equals input
// after normalization. When nothing matches it falls back to the first
// candidate. ok is false only for an empty candidate list.
func SelectExact[T any](candidates []T, input string, formatted func(T) string) (match T, exact, ok bool) {
	if len(candidates) == 0 {
		return match, false, false
	}
	want := Normalize(input)
	for _, c := range candidates {
		if Normalize(formatted(c)) == want {
			return c, true, true
		}
	}
	return candidates[0], false, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern returns a LIKE/ILIKE pattern matching any string that
// contains s literally. Use with ESCAPE '\'.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}

// internal/normalize/normalize.go
//
// Canonical comparison keys for player guesses and reference names.
//
// Key is the only matching rule in the module: the countries index, the game
// engine and the save codec all compare names through it, so a name that
// matches a guess is also the name that owns a bit in a save code.
//
// Steps, in order:
//   1. lower-case
//   2. canonical decomposition (NFD)
//   3. drop combining diacritical marks (U+0300–U+036F)
//   4. spaces become hyphens
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningMarks is the Combining Diacritical Marks block.
var combiningMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036F, Stride: 1}},
}

// Key maps arbitrary text to its comparison key.
// "Côte d'Ivoire" and "COTE D'IVOIRE" both become "cote-d'ivoire".
func Key(text string) string {
	lowered := strings.ToLower(text)
	// Transformers carry state, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	stripped, _, err := transform.String(t, lowered)
	if err != nil {
		stripped = lowered
	}
	return strings.ReplaceAll(stripped, " ", "-")
}

// Letter returns the key of a round letter ('A' → "a"). Zero yields "".
func Letter(letter byte) string {
	if letter == 0 {
		return ""
	}
	return Key(string(rune(letter)))
}

// HasLetter reports whether key belongs to the round of letter.
// Both sides must already be keys.
func HasLetter(key, letterKey string) bool {
	return letterKey != "" && strings.HasPrefix(key, letterKey)
}

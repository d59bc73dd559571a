// Package randutil provides the shared randomization primitives used by the
// value generators.
//
// All helpers draw from the process-wide math/rand/v2 source. There is no
// fixed-seed contract: outputs are not reproducible across runs.
package randutil

import (
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Character sets used by the generators.
const (
	Digits       = "0123456789"
	LowerLetters = "abcdefghijklmnopqrstuvwxyz"
	UpperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Alphanumeric matches the alphanum generator contract: mixed-case
	// letters plus digits.
	Alphanumeric = LowerLetters + UpperLetters + Digits

	// UpperAlphanumeric is the character set of IBAN "c" fields.
	UpperAlphanumeric = UpperLetters + Digits
)

var titleCaser = cases.Title(language.Und)

// WithChars returns a string of length n drawn uniformly from charset.
func WithChars(n int, charset string) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(charset[rand.IntN(len(charset))])
	}
	return b.String()
}

// Numeric returns a random decimal digit string of length n.
func Numeric(n int) string {
	return WithChars(n, Digits)
}

// AlphaCapitalized returns a random lowercase word of length n with its
// first letter title-cased.
func AlphaCapitalized(n int) string {
	return titleCaser.String(WithChars(n, LowerLetters))
}

// AlphaCapitalizedRange returns a capitalized random word with a length
// drawn uniformly from [minLen, maxLen].
func AlphaCapitalizedRange(minLen, maxLen int) string {
	return AlphaCapitalized(minLen + rand.IntN(maxLen-minLen+1))
}

// IntBetween returns a random integer in [minVal, maxVal]. The width is
// computed in uint64 so ranges wider than 2^63, up to the full int64 domain,
// stay in bounds.
func IntBetween(minVal, maxVal int64) int64 {
	width := uint64(maxVal) - uint64(minVal) + 1
	if width == 0 {
		// [MinInt64, MaxInt64]: every value is in range.
		return int64(rand.Uint64())
	}
	return minVal + int64(rand.Uint64N(width))
}

// Pick returns one element of items chosen uniformly at random.
func Pick(items []string) string {
	return items[rand.IntN(len(items))]
}

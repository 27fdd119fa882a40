// Package textnorm canonicalizes identifier-like strings so that book names,
// language names and version labels written in different scripts and casings
// compare equal.
//
// Normalize is idempotent and never fails: input with no letters or digits
// normalizes to the empty string.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds script-specific decimal digits to ASCII, applies NFKC,
// case-folds, and drops every rune that is not a letter or a digit.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = FoldDigits(norm.NFKC.String(s))
	s = cases.Fold().String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FoldDigits replaces every Unicode decimal digit (Arabic-Indic, Extended
// Arabic-Indic, Devanagari, fullwidth, ...) with its ASCII equivalent and
// leaves all other runes untouched.
func FoldDigits(s string) string {
	if isASCII(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if d, ok := DigitValue(r); ok {
			b.WriteByte(byte('0' + d))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DigitValue returns the decimal value of r if r is a decimal digit in any
// script.
func DigitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	if r < 0x80 || !unicode.Is(unicode.Nd, r) {
		return 0, false
	}
	// Nd ranges are runs of complete 0-9 sequences.
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int((r-lo)/rune(rg.Stride)) % 10, true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int((r-lo)/rune(rg.Stride)) % 10, true
		}
	}
	return 0, false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// IsDigits reports whether s is non-empty and consists only of decimal
// digits in any script.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if _, ok := DigitValue(r); !ok {
			return false
		}
	}
	return true
}

// TrimLeadingDigits removes a leading run of ASCII digits.
func TrimLeadingDigits(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
}

// Words splits s on whitespace.
func Words(s string) []string {
	return strings.Fields(s)
}

// FirstWord returns the first whitespace-delimited word of s.
func FirstWord(s string) string {
	if w := strings.Fields(s); len(w) > 0 {
		return w[0]
	}
	return ""
}

// LastWord returns the last whitespace-delimited word of s.
func LastWord(s string) string {
	if w := strings.Fields(s); len(w) > 0 {
		return w[len(w)-1]
	}
	return ""
}

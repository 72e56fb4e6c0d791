package utils

import (
	"strings"
	"unicode"
)

// DefaultRepeat is the run length at which a token made of one repeated
// rune stops being looked up.
const DefaultRepeat = 3

// TokenFilter decides whether a trigger token is worth a dictionary
// lookup. Tokens that are only digits, contain symbols other than
// separators and Symbols, or repeat a single rune are rejected.
//
// Leading Symbols are treated as a trigger sigil: "@" lets "@alice" through
// but "@", "@123" and "@aaa" are still rejected.
type TokenFilter struct {
	Symbols string
	Repeat  int
}

// NewTokenFilter returns a filter accepting the runes in symbols.
func NewTokenFilter(symbols string) *TokenFilter {
	return &TokenFilter{Symbols: symbols, Repeat: DefaultRepeat}
}

// Accept reports whether token should be looked up.
func (f *TokenFilter) Accept(token string) bool {
	word := []rune(strings.TrimLeftFunc(token, f.isSymbol))
	if len(word) == 0 {
		return false
	}

	digits := true
	for _, r := range word {
		switch {
		case unicode.IsDigit(r):
		case unicode.IsLetter(r), unicode.IsMark(r), IsSeparator(r), f.isSymbol(r):
			digits = false
		default:
			return false
		}
	}
	if digits {
		return false
	}
	return !isRepetitive(word, f.repeat())
}

func (f *TokenFilter) isSymbol(r rune) bool {
	return strings.ContainsRune(f.Symbols, r)
}

func (f *TokenFilter) repeat() int {
	if f.Repeat <= 1 {
		return DefaultRepeat
	}
	return f.Repeat
}

// IsSeparator checks if a rune joins the parts of a compound word.
func IsSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == '/'
}

// SigilSymbols returns the non-alphanumeric runes of a literal pattern
// prefix, e.g. "@" for a trigger like `@\w+`.
func SigilSymbols(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) && !strings.ContainsRune(b.String(), r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isRepetitive(word []rune, n int) bool {
	if len(word) < n {
		return false
	}
	for _, r := range word[1:] {
		if r != word[0] {
			return false
		}
	}
	return true
}

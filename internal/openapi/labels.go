package openapi

import (
	"strings"
	"unicode"
)

// labelFromName turns a property or operation name into a display label:
// "birthYear" -> "Birth Year", "home_address" -> "Home Address". Words break
// on separators, camelCase humps, and letter/digit transitions.
func labelFromName(name string) string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, capitalize(current))
			current = current[:0]
		}
	}

	var prev rune
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case breaksWord(prev, r):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
		prev = r
	}
	flush()

	return strings.Join(words, " ")
}

// breaksWord reports a camelCase or letter/digit transition between two
// adjacent runes.
func breaksWord(prev, r rune) bool {
	switch {
	case prev == 0:
		return false
	case unicode.IsLower(prev) && unicode.IsUpper(r):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(r):
		return true
	default:
		return unicode.IsDigit(prev) && unicode.IsLetter(r)
	}
}

func capitalize(word []rune) string {
	out := make([]rune, len(word))
	for i, r := range word {
		if i == 0 {
			out[i] = unicode.ToUpper(r)
			continue
		}
		out[i] = unicode.ToLower(r)
	}
	return string(out)
}

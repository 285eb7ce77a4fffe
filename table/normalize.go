package table

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// RemoveAccents decomposes text to NFD and drops the combining marks,
// leaving base characters only. Idempotent.
func RemoveAccents(s string) string {
	if s == "" {
		return ""
	}
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeKey builds the join key used across data families:
// trimmed, uppercased, accent-stripped. Idempotent.
func NormalizeKey(s string) string {
	return RemoveAccents(strings.ToUpper(strings.TrimSpace(s)))
}

// NormalizeHeader canonicalizes a source column header for variant
// lookup: accents stripped, lowercased, embedded newlines flattened to
// spaces, trimmed. Idempotent.
func NormalizeHeader(s string) string {
	s = RemoveAccents(s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}

// CollapseSpaces squeezes runs of whitespace into single spaces and
// trims the ends.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TitleCase uppercases the first letter of each space-separated word
// and lowercases the rest ("fEMENINO" -> "Femenino").
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}

// Package normalize turns display names into comparison keys and search tokens.
package normalize

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Vietnamese đ/Đ are letters of their own and do not decompose under NFD.
var letterFold = runes.Map(func(r rune) rune {
	switch r {
	case 'đ', 'Đ':
		return 'd'
	}
	return r
})

// Key strips diacritical marks, lowercases and trims name. Two names that only
// differ by case or accents produce the same key.
func Key(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), letterFold, norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// Keywords builds the search tokens for name: the whole key without
// whitespace, every word longer than one rune and, for multi-word names, the
// initials. The result is sorted and free of duplicates.
func Keywords(name string) []string {
	key := Key(name)
	if key == "" {
		return []string{}
	}

	words := strings.Fields(key)
	set := make(map[string]struct{}, len(words)+2)
	set[strings.Join(words, "")] = struct{}{}

	var initials strings.Builder
	for _, w := range words {
		if utf8.RuneCountInString(w) > 1 {
			set[w] = struct{}{}
		}
		r, _ := utf8.DecodeRuneInString(w)
		initials.WriteRune(r)
	}
	if len(words) > 1 {
		set[initials.String()] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether query hits name: the normalized query must be a
// substring of one of the keywords or of the normalized name. An empty query
// matches everything.
func Matches(query, name string, keywords []string) bool {
	q := Key(query)
	if q == "" {
		return true
	}
	if strings.Contains(Key(name), q) {
		return true
	}
	for _, k := range keywords {
		if strings.Contains(k, q) {
			return true
		}
	}
	return false
}

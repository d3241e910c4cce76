// Package naming derives action types and selector names from node slugs.
//
// Words are split on any non-alphanumeric rune, on lower-to-upper transitions and
// before the last capital of an acronym ("HTTPServer" is HTTP + Server). Digits stay
// attached to the word they follow, so "l1_update" is the two words "l1" and "update".
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits s into its words.
func Words(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// UpperSnake renders s as UPPER_SNAKE_CASE.
func UpperSnake(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w)
	}
	return strings.Join(words, "_")
}

// Camel renders s as lowerCamelCase.
func Camel(s string) string {
	words := Words(s)
	title := cases.Title(language.Und) // a Caser is stateful, never share one
	for i, w := range words {
		if i == 0 {
			words[i] = strings.ToLower(w)
			continue
		}
		words[i] = title.String(w)
	}
	return strings.Join(words, "")
}

// ActionType is the action type of handler name on the node slug.
func ActionType(slug, name string) string {
	return UpperSnake(slug + "_" + name)
}

// SelectorName prefixes a child selector name with the slug of its parent.
func SelectorName(slug, name string) string {
	return Camel(slug + "_" + name)
}

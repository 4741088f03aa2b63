package model

import (
	"strings"
	"unicode"
)

// acronyms are rendered upper-case when they appear as a whole word in a
// field key.
var acronyms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"api":  "API",
	"iban": "IBAN",
	"vat":  "VAT",
	"gps":  "GPS",
	"sms":  "SMS",
	"pin":  "PIN",
	"faq":  "FAQ",
}

// DefaultLabeler derives a display label from a field key when the backend
// sends none. Keys such as "service_area_id", "maxWalkMinutes" or
// "serviceURL" become "Service Area ID", "Max Walk Minutes" and
// "Service URL". Runes from caseless scripts pass through unchanged.
func DefaultLabeler(key string) string {
	words := splitKey(key)
	for i, word := range words {
		words[i] = labelWord(word)
	}
	return strings.Join(words, " ")
}

func splitKey(key string) []string {
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}
	runes := []rune(key)
	for i, r := range runes {
		if r == '_' || r == '-' || r == '.' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if i > 0 && len(current) > 0 && wordBoundary(runes, i) {
			flush()
		}
		current = append(current, r)
	}
	flush()
	return words
}

// wordBoundary reports whether a new word starts at runes[i]: a lower to
// upper transition, the last capital of an acronym run ("URLPath"), or a
// switch between letters and digits.
func wordBoundary(runes []rune, i int) bool {
	prev, r := runes[i-1], runes[i]
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(r):
		return true
	case unicode.IsUpper(prev) && unicode.IsUpper(r):
		return i+1 < len(runes) && unicode.IsLower(runes[i+1])
	case unicode.IsLetter(prev) && unicode.IsDigit(r):
		return true
	case unicode.IsDigit(prev) && unicode.IsLetter(r):
		return true
	}
	return false
}

func labelWord(word string) string {
	lower := strings.ToLower(word)
	if acronym, ok := acronyms[lower]; ok {
		return acronym
	}
	runes := []rune(lower)
	runes[0] = unicode.ToTitle(runes[0])
	return string(runes)
}

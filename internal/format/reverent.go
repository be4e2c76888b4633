package format

import (
	"regexp"
	"strings"
)

// reverentWords maps lowercase forms to the canonical capitalized form
// used on worship slides regardless of source casing.
var reverentWords = map[string]string{
	"he":      "He",
	"him":     "Him",
	"his":     "His",
	"himself": "Himself",
	"god":     "God",
	"god's":   "God's",
	"lord":    "Lord",
	"lord's":  "Lord's",
	"father":  "Father",
	"son":     "Son",
	"spirit":  "Spirit",
	"jesus":   "Jesus",
	"christ":  "Christ",
	"savior":  "Savior",
	"saviour": "Saviour",
	"king":    "King",
	"lamb":    "Lamb",
	"thee":    "Thee",
	"thou":    "Thou",
	"thy":     "Thy",
	"thine":   "Thine",
}

// Words including contractions/possessives ("God's").
var wordRe = regexp.MustCompile(`[A-Za-z]+(?:'[A-Za-z]+)?`)

// CapitalizeReverent replaces whole-word matches of the reverent word
// list with their canonical form. Pure substitution: word count and
// line structure are untouched.
func CapitalizeReverent(text string) string {
	return wordRe.ReplaceAllStringFunc(text, func(word string) string {
		if canonical, ok := reverentWords[strings.ToLower(word)]; ok {
			return canonical
		}
		return word
	})
}

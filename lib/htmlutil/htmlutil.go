package htmlutil

import (
	"regexp"
	"strings"
	"unicode"
)

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		} else if unicode.IsSpace(c) {
			// newlines and tabs separate words, do not glue them
			newStr.WriteRune(' ')
		}
	}
	return newStr.String()
}

// CleanText strips non-printable runes, trims surrounding whitespace
// and collapses inner whitespace runs. Squarespace templates are full
// of nbsp runs and newline indentation.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n")
	s = innerWhitespace.ReplaceAllString(s, " ")
	return s
}

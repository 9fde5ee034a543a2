package main

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid    = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[-\s]+`)
)

// slugify turns s into a lowercase ASCII slug. Characters without an
// ASCII decomposition are dropped, so the result may be empty.
func slugify(s string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r >= utf8.RuneSelf
	})))
	ascii, _, err := transform.String(fold, s)
	if err != nil {
		return ""
	}

	ascii = slugInvalid.ReplaceAllString(strings.ToLower(ascii), "")
	ascii = slugSeparators.ReplaceAllString(ascii, "-")
	return strings.Trim(ascii, "-_")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

package format

import (
	"strings"
	"unicode"
)

// Separator joins hierarchy levels in sanitized feature names.
const Separator = "."

// inputSeparator marks hierarchy levels in raw feature names.
const inputSeparator = "|"

// digitPrefix is prepended to names that would otherwise start with a digit.
const digitPrefix = "f_"

const (
	deleted     = `$@#%^&*"'`
	underscored = `/()-+={}[],.;:?<>`
)

// SanitizeName rewrites one raw feature name into the safe token alphabet.
//
// Rules run in order: whitespace and the characters $ @ # % ^ & * " ' are
// removed; / ( ) - + = { } [ ] , . ; : ? < > become underscores; the pipe
// becomes the dot separator; a leading digit gets the "f_" prefix.
//
// Dots are only treated as literal characters in names that use the pipe as
// their level separator. A name without pipes keeps its dots as hierarchy
// separators, which makes the rewrite idempotent.
func SanitizeName(name string) string {
	piped := strings.Contains(name, inputSeparator)

	out := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(deleted, r) {
			return -1
		}
		if r == '.' && !piped {
			return r
		}
		if strings.ContainsRune(underscored, r) {
			return '_'
		}
		return r
	}, name)
	out = strings.ReplaceAll(out, inputSeparator, Separator)

	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = digitPrefix + out
	}
	return out
}

// SanitizeNames applies SanitizeName to every name.
func SanitizeNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = SanitizeName(n)
	}
	return out
}

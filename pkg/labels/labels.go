// Package labels finds label declarations in assembly source.
//
// A label declaration is a line that begins, at column 0, with zero or more
// word characters immediately followed by a colon.
package labels

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsWordRune reports whether r is a word character (letter, digit or underscore).
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Extract returns the names of all labels declared in text, in the order they
// appear. The trailing colon is not part of the name. Duplicates are kept.
func Extract(text string) []string {
	var names []string
	for len(text) > 0 {
		line := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line, text = text[:i], text[i+1:]
		} else {
			text = ""
		}
		if name, ok := declared(line); ok {
			names = append(names, name)
		}
	}
	return names
}

// declared reports whether line starts with a label declaration and returns its name.
func declared(line string) (string, bool) {
	i := 0
	for i < len(line) {
		r, size := utf8.DecodeRuneInString(line[i:])
		if !IsWordRune(r) {
			break
		}
		i += size
	}
	if i < len(line) && line[i] == ':' {
		return line[:i], true
	}
	return "", false
}

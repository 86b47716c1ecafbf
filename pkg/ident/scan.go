// Package ident finds symbolic identifiers (%name, %name.flag) in assembly
// text and assigns each one a machine register.
package ident

import (
	"unicode/utf8"

	"github.com/raymyers/mppd/pkg/labels"
)

// Occurrence is one identifier found in the text.
type Occurrence struct {
	Text      string // as written, e.g. "%max.s"
	Base      string // without the flag, e.g. "%max"
	Flag      string // "s", or empty when unflagged
	Offset    int    // byte offset of the '%'
	Line      int    // 1-based
	InComment bool   // a '#' precedes it on its line
}

// Flagged reports whether the occurrence carries a flag suffix.
func (o Occurrence) Flagged() bool { return o.Flag != "" }

// Scan returns every identifier in text, left to right, including those
// inside comments. Matches do not overlap.
func Scan(text string) []Occurrence {
	var occs []Occurrence
	line := 1
	comment := false

	for i := 0; i < len(text); {
		switch text[i] {
		case '\n':
			line++
			comment = false
			i++
			continue
		case '#':
			comment = true
			i++
			continue
		case '%':
			end := wordEnd(text, i+1)
			if end == i+1 {
				i++
				continue
			}
			occ := Occurrence{
				Base:      text[i:end],
				Offset:    i,
				Line:      line,
				InComment: comment,
			}
			if end < len(text) && text[end] == '.' {
				if flagEnd := wordEnd(text, end+1); flagEnd > end+1 {
					occ.Flag = text[end+1 : flagEnd]
					end = flagEnd
				}
			}
			occ.Text = text[i:end]
			occs = append(occs, occ)
			i = end
			continue
		}
		i++
	}
	return occs
}

// wordEnd returns the index just past the run of word characters starting at i.
func wordEnd(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !labels.IsWordRune(r) {
			break
		}
		i += size
	}
	return i
}

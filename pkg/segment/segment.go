// Package segment splits assembly source into a preamble and per-function bodies.
package segment

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// DefaultFunctions are processed even when no extra function names are given.
var DefaultFunctions = []string{"main", "run_generation", "print_generation"}

// Function is the text of one function, starting at its label line.
type Function struct {
	Name string
	Body string
}

// Program is the result of splitting a source file.
type Program struct {
	Preamble   string
	Functions  []Function
	Order      []string // function names in processing order
	Unresolved []string // declared names with no matching label
}

// Options controls how function starts are recognised.
type Options struct {
	// Strict requires a line to start with "name:" rather than just "name".
	Strict bool
}

// Names returns the default function names plus extra, each trimmed of
// surrounding whitespace. Empty names are dropped.
func Names(extra []string) []string {
	names := append([]string{}, DefaultFunctions...)
	for _, n := range extra {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return lo.Uniq(names)
}

// Order returns the declared function names in the order their labels occur.
// A name whose label is declared more than once is kept at its first position.
func Order(labels, names []string) []string {
	declared := make(map[string]bool, len(names))
	for _, n := range names {
		declared[n] = true
	}
	return lo.Uniq(lo.Filter(labels, func(label string, _ int) bool {
		return declared[label]
	}))
}

// Split partitions text into a preamble and one body per function in order.
// Concatenating the preamble and the bodies gives back text.
//
// A function starts at the first line, after the previous function started,
// that begins with the next expected name. Only the expected name is
// considered, so functions are never matched out of order.
func Split(text string, order []string, opts Options) *Program {
	prog := &Program{}
	var preamble, body strings.Builder
	current := -1

	flush := func() {
		if current >= 0 {
			prog.Functions = append(prog.Functions, Function{Name: order[current], Body: body.String()})
			body.Reset()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if next := current + 1; next < len(order) && startsFunction(line, order[next], opts) {
			flush()
			current = next
		}
		if current < 0 {
			preamble.WriteString(line)
		} else {
			body.WriteString(line)
		}
	}
	flush()

	prog.Preamble = preamble.String()
	return prog
}

// Segment extracts the processing order from labels and splits text with it.
func Segment(text string, labels, names []string, opts Options) *Program {
	order := Order(labels, names)
	prog := Split(text, order, opts)
	prog.Order = order
	prog.Unresolved = lo.Without(names, order...)
	sort.Strings(prog.Unresolved)
	return prog
}

func startsFunction(line, name string, opts Options) bool {
	if opts.Strict {
		return strings.HasPrefix(line, name+":")
	}
	return strings.HasPrefix(line, name)
}

// Package prettify realigns MIPS instruction lines.
//
// Prettify re-tabs indented instruction lines so that mnemonics, operands
// and trailing comments line up. FixCommentSpacing converts tab-aligned
// lines to a fixed space layout with comments at a fixed column.
package prettify

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	tabsAfterInstruction = 2
	tabsBeforeComment    = 8

	mnemonicWidth = 10
	commentColumn = 52
)

// noCommaInstructions take operands without a comma but are still realigned.
var noCommaInstructions = []string{"jal", "jr", "b"}

// Options controls Prettify.
type Options struct {
	// Space converts the tab layout to spaces with FixCommentSpacing.
	Space bool
}

// Change records one reformatted line.
type Change struct {
	Line   int // 1-based
	Before string
	After  string
}

func (c Change) String() string {
	return fmt.Sprintf("line %d: %q -> %q", c.Line, c.Before, c.After)
}

// Lint is a formatting problem that is reported but not fixed.
type Lint struct {
	Line int // 1-based
	Text string
}

func (l Lint) String() string {
	return fmt.Sprintf("line %d: there is no tab between the instruction and arguments: %s", l.Line, strings.TrimSpace(l.Text))
}

// Result is the output of Prettify.
type Result struct {
	Text    string
	Changes []Change
	Lints   []Lint
}

// AlignTabs returns the tabs that pad a field of length chars toward a tab
// stop maximum tabs away. At least one tab is returned.
func AlignTabs(length, maximum int) string {
	return strings.Repeat("\t", max(1, maximum-length/4))
}

// Prettify reformats every indented instruction line of text. Trailing
// whitespace is removed from all lines and every line ends with a newline.
func Prettify(text string, opts Options) *Result {
	res := &Result{}
	var sb strings.Builder

	for i, line := range splitLines(text) {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		out, ok := formatLine(line)
		if !ok {
			out = line
		} else if out != line {
			res.Changes = append(res.Changes, Change{Line: i + 1, Before: line, After: out})
		}
		sb.WriteString(out)
		sb.WriteByte('\n')
	}

	res.Text = sb.String()
	if opts.Space {
		res.Text, res.Lints = FixCommentSpacing(res.Text)
	}
	return res
}

// formatLine realigns a single instruction line. It returns false when the
// line is not an indented instruction.
func formatLine(line string) (string, bool) {
	code, comment, hasComment := strings.Cut(line, "#")
	stripped := strings.TrimLeftFunc(code, unicode.IsSpace)

	if !isIndented(line) || stripped == "" || stripped[0] == '#' {
		return "", false
	}
	if !strings.Contains(line, ",") && !hasAnyPrefix(stripped, noCommaInstructions) {
		return "", false
	}

	fields := strings.Fields(stripped)
	mnemonic := fields[0]

	var sb strings.Builder
	sb.WriteString("\t" + mnemonic)
	if n := utf8.RuneCountInString(mnemonic); (n > 1 && n <= 4) || isNoComma(mnemonic) {
		sb.WriteString(AlignTabs(n, tabsAfterInstruction))
	}

	argsLen := 0
	for i, arg := range fields[1:] {
		if pos := strings.IndexByte(arg, ','); pos >= 0 && pos < len(arg)-1 {
			arg = strings.TrimRightFunc(strings.Join(strings.Split(arg, ","), ", "), unicode.IsSpace)
		}
		sb.WriteString(arg)
		argsLen += utf8.RuneCountInString(arg)
		if i != len(fields)-2 {
			sb.WriteByte(' ')
			argsLen++
		}
	}

	if hasComment {
		sb.WriteString(AlignTabs(argsLen, tabsBeforeComment))
		sb.WriteString("# " + strings.TrimLeftFunc(comment, unicode.IsSpace))
	}
	return sb.String(), true
}

// isIndented reports whether line starts with a tab, or is longer than four
// characters and starts with three whitespace characters.
func isIndented(line string) bool {
	if line == "" {
		return false
	}
	if line[0] == '\t' {
		return true
	}
	return len(line) > 4 && strings.TrimSpace(line[:3]) == ""
}

// FixCommentSpacing converts tab-aligned instruction lines with more than two
// tab-separated fields to a space layout: four spaces, the mnemonic padded to
// ten columns, the operands, and the comment at column 52. Lines with a single
// tab are checked for a missing tab after the mnemonic.
func FixCommentSpacing(text string) (string, []Lint) {
	var lints []Lint
	lines := strings.Split(text, "\n")

	for i, l := range lines {
		if !strings.Contains(l, "\t") {
			continue
		}
		fields := strings.Split(l, "\t")
		switch {
		case len(fields) > 2:
			parts := strings.Split(l, "# ")
			code := fixInstructionSpacing(strings.TrimRightFunc(parts[0], unicode.IsSpace))
			switch len(parts) {
			case 1:
				lines[i] = code
			case 2:
				lines[i] = code + spaces(commentColumn-utf8.RuneCountInString(code)) + "# " + parts[1]
			}
		case len(fields) == 2:
			operands := strings.SplitN(fields[1], " ", 2)[0]
			if !strings.HasSuffix(l, "#") && fields[0] != "#" && utf8.RuneCountInString(operands) == 3 {
				lints = append(lints, Lint{Line: i + 1, Text: l})
			}
		}
	}
	return strings.Join(lines, "\n"), lints
}

// fixInstructionSpacing lays out a line made of exactly a mnemonic and an
// operand field. Other lines are returned unchanged.
func fixInstructionSpacing(code string) string {
	var parts []string
	for _, f := range strings.Split(code, "\t") {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) != 2 {
		return code
	}
	return "    " + parts[0] + spaces(mnemonicWidth-utf8.RuneCountInString(parts[0])) + parts[1]
}

func spaces(n int) string {
	return strings.Repeat(" ", max(0, n))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isNoComma(mnemonic string) bool {
	for _, m := range noCommaInstructions {
		if m == mnemonic {
			return true
		}
	}
	return false
}

// splitLines splits text into lines without their newlines. A final
// newline does not start an extra empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

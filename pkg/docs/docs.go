// Package docs generates the register and structure documentation that can
// be prepended to a processed function as a comment block.
package docs

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/raymyers/mppd/pkg/ident"
	"github.com/raymyers/mppd/pkg/regpool"
)

const (
	headingWidth = 12
	bulletIndent = 8
	bullet       = "- "
)

// Sections selects which parts of the documentation are generated.
type Sections struct {
	Frame     bool
	Uses      bool
	Clobbers  bool
	Locals    bool
	Structure bool
}

// Registers selects the register sections (frame, uses, clobbers, locals).
func Registers() Sections {
	return Sections{Frame: true, Uses: true, Clobbers: true, Locals: true}
}

// Any reports whether any section is selected.
func (s Sections) Any() bool {
	return s.Frame || s.Uses || s.Clobbers || s.Locals || s.Structure
}

// Input describes one function.
type Input struct {
	Name      string
	Text      string         // function text before replacement
	Mapping   *ident.Mapping // may be nil
	Labels    []string       // every label in the file, in order
	Functions []string       // processed function names
}

// Local is an identifier and the register holding it.
type Local struct {
	Name     string // without the leading '%'
	Register string
}

// Block is the generated documentation of one function.
type Block struct {
	Sections  Sections
	Frame     []string
	Uses      []string
	Clobbers  []string
	Locals    []Local
	Structure []string
}

// Synthesize computes the documentation for in.
func Synthesize(in Input, s Sections) *Block {
	var assigned []string
	if in.Mapping != nil {
		assigned = in.Mapping.Assigned()
	}
	present := func(reg string, _ int) bool {
		return lo.Contains(assigned, reg) || strings.Contains(in.Text, reg)
	}

	allSaved := regpool.SavedNames()
	saved := lo.Filter(allSaved, present)

	frame := append(append([]string{}, saved...), lo.Filter(regpool.FrameRegisters, present)...)
	uses := lo.Filter(append(regpool.TemporaryNames(), regpool.ArgumentNames()...), present)
	uses = lo.Uniq(append(uses, saved...))
	clobbers := lo.Without(lo.Without(uses, frame...), allSaved...)

	b := &Block{
		Sections: s,
		Frame:    sorted(frame),
		Uses:     sorted(uses),
		Clobbers: sorted(clobbers),
	}

	if in.Mapping != nil {
		for _, base := range in.Mapping.ByRegister() {
			b.Locals = append(b.Locals, Local{
				Name:     strings.TrimPrefix(base, "%"),
				Register: in.Mapping.Registers[base],
			})
		}
	}

	b.Structure = Structure(in.Name, in.Labels, in.Functions)
	return b
}

// Structure returns the labels between the label of fn and the next label
// that names a processed function.
func Structure(fn string, labels, functions []string) []string {
	var out []string
	found := false
	for _, label := range labels {
		if !found {
			found = label == fn
			continue
		}
		if lo.Contains(functions, label) {
			break
		}
		out = append(out, label)
	}
	return out
}

// Body renders the selected sections as plain text lines.
func (b *Block) Body() string {
	var sb strings.Builder
	heading := func(title string, regs []string) {
		fmt.Fprintf(&sb, "%-*s%s\n", headingWidth, title, strings.Join(regs, ", "))
	}
	if b.Sections.Frame {
		heading("Frame: ", b.Frame)
	}
	if b.Sections.Uses {
		heading("Uses: ", b.Uses)
	}
	if b.Sections.Clobbers {
		heading("Clobbers:", b.Clobbers)
	}
	if b.Sections.Locals && len(b.Locals) > 0 {
		sb.WriteString("\nLocals:\n")
		for _, l := range b.Locals {
			fmt.Fprintf(&sb, "%*s'%s' in %s\n", bulletIndent, bullet, l.Name, l.Register)
		}
	}
	if b.Sections.Structure {
		sb.WriteString("\nStructure:\n")
		for _, label := range b.Structure {
			fmt.Fprintf(&sb, "%*s%s\n", bulletIndent, bullet, label)
		}
	}
	return sb.String()
}

// Render wraps body in a comment block headed by the function name. The
// block starts with a rule of '#' four wider than the longest body line.
// It returns "" for an empty body.
func Render(name, body string) string {
	if body == "" {
		return ""
	}
	longest := 0
	for _, line := range strings.Split(body, "\n") {
		longest = max(longest, utf8.RuneCountInString(line))
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("#", longest+4))
	sb.WriteByte('\n')
	text := strings.TrimSuffix(name+"\n\n"+body, "\n")
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			sb.WriteString("#\n")
			continue
		}
		sb.WriteString("# " + line + "\n")
	}
	return sb.String()
}

func sorted(regs []string) []string {
	out := append([]string{}, regs...)
	sort.Strings(out)
	return out
}

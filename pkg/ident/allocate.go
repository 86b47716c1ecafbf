package ident

import (
	"errors"
	"fmt"
	"sort"

	"github.com/raymyers/mppd/pkg/regpool"
)

var (
	// ErrAllocationConflict means a flagged identifier's base was already
	// given a temporary register by an earlier unflagged use.
	ErrAllocationConflict = errors.New("identifier used before its flagged declaration")

	// ErrPoolExhausted means no register was left in the requested pool.
	ErrPoolExhausted = errors.New("register pool exhausted")
)

// Kind classifies a Diagnostic.
type Kind int

const (
	Conflict Kind = iota
	Exhausted
)

// Diagnostic is a non-fatal allocation problem. Processing continues after it.
type Diagnostic struct {
	Kind       Kind
	Identifier string // base identifier, e.g. "%max"
	Flag       string
	Class      regpool.Class // pool involved
	Line       int
}

func (d Diagnostic) Error() string {
	switch d.Kind {
	case Conflict:
		return fmt.Sprintf("line %d: identifier %s declared before flag %s", d.Line, d.Identifier, d.Flag)
	case Exhausted:
		return fmt.Sprintf("line %d: identifier %s exceeded available %s registers", d.Line, d.Identifier, d.Class)
	}
	return fmt.Sprintf("line %d: identifier %s", d.Line, d.Identifier)
}

func (d Diagnostic) Unwrap() error {
	if d.Kind == Conflict {
		return ErrAllocationConflict
	}
	return ErrPoolExhausted
}

// Mapping is the result of allocating one function's identifiers.
// It is not modified after Allocate returns.
type Mapping struct {
	// Registers maps a base identifier ("%i") to its register ("$t0").
	Registers map[string]string
	// Flags maps a flagged identifier ("%max.s") to its base ("%max").
	Flags map[string]string
	// Order lists allocated base identifiers in allocation order.
	Order []string

	class map[string]regpool.Class
}

// Register returns the register assigned to base.
func (m *Mapping) Register(base string) (string, bool) {
	reg, ok := m.Registers[base]
	return reg, ok
}

// Class returns the pool base was allocated from.
func (m *Mapping) Class(base string) (regpool.Class, bool) {
	c, ok := m.class[base]
	return c, ok
}

// Len returns the number of allocated identifiers.
func (m *Mapping) Len() int { return len(m.Registers) }

// Assigned returns the allocated registers in allocation order.
func (m *Mapping) Assigned() []string {
	regs := make([]string, len(m.Order))
	for i, base := range m.Order {
		regs[i] = m.Registers[base]
	}
	return regs
}

// ByRegister returns allocated base identifiers sorted by register name.
func (m *Mapping) ByRegister() []string {
	bases := append([]string(nil), m.Order...)
	sort.SliceStable(bases, func(i, j int) bool {
		return m.Registers[bases[i]] < m.Registers[bases[j]]
	})
	return bases
}

// Allocate assigns registers to the identifiers of one function.
//
// Identifiers are taken in text order; those inside comments are ignored.
// A flagged identifier takes the first free saved register for its base, an
// unflagged one the first free temporary register. Each base is allocated at
// most once. The pools are fresh for every call.
func Allocate(text string) (*Mapping, []Diagnostic) {
	arena := regpool.NewArena()
	m := &Mapping{
		Registers: make(map[string]string),
		Flags:     make(map[string]string),
		class:     make(map[string]regpool.Class),
	}
	var diags []Diagnostic

	for _, occ := range Scan(text) {
		if occ.InComment {
			continue
		}

		class := regpool.Temporary
		if occ.Flagged() {
			m.Flags[occ.Text] = occ.Base
			class = regpool.Saved
		}

		if prev, ok := m.class[occ.Base]; ok {
			if occ.Flagged() {
				diags = append(diags, Diagnostic{
					Kind:       Conflict,
					Identifier: occ.Base,
					Flag:       occ.Flag,
					Class:      prev,
					Line:       occ.Line,
				})
			}
			continue
		}

		reg, ok := arena.Pool(class).Take()
		if !ok {
			diags = append(diags, Diagnostic{
				Kind:       Exhausted,
				Identifier: occ.Base,
				Flag:       occ.Flag,
				Class:      class,
				Line:       occ.Line,
			})
			continue
		}
		m.Registers[occ.Base] = reg
		m.class[occ.Base] = class
		m.Order = append(m.Order, occ.Base)
	}
	return m, diags
}

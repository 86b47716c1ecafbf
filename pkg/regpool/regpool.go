// Package regpool provides the ordered MIPS register pools that symbolic
// identifiers are allocated from.
package regpool

import "fmt"

// Class identifies a register pool.
type Class int

const (
	Temporary Class = iota // $t0..$t9
	Saved                  // $s0..$s9
)

func (c Class) String() string {
	switch c {
	case Temporary:
		return "temporary"
	case Saved:
		return "saved"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// PoolSize is the number of registers in each pool.
const PoolSize = 10

// FrameRegisters are the frame pointer, return address and stack pointer.
var FrameRegisters = []string{"$fp", "$ra", "$sp"}

// Names returns prefix0..prefix9, e.g. Names("$t") = $t0..$t9.
func Names(prefix string) []string {
	regs := make([]string, PoolSize)
	for i := range regs {
		regs[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return regs
}

// TemporaryNames returns $t0..$t9.
func TemporaryNames() []string { return Names("$t") }

// SavedNames returns $s0..$s9.
func SavedNames() []string { return Names("$s") }

// ArgumentNames returns $a0..$a9. They are never allocated and are only
// used when describing which registers a function touches.
func ArgumentNames() []string { return Names("$a") }

// Pool is an ordered set of free registers consumed front to back.
// A register taken from the pool is never returned to it.
type Pool struct {
	class Class
	free  []string
}

// New creates a pool of the given class holding regs in order.
func New(class Class, regs []string) *Pool {
	return &Pool{class: class, free: append([]string(nil), regs...)}
}

// NewTemporary returns a full $t0..$t9 pool.
func NewTemporary() *Pool { return New(Temporary, TemporaryNames()) }

// NewSaved returns a full $s0..$s9 pool.
func NewSaved() *Pool { return New(Saved, SavedNames()) }

// Class returns the pool's register class.
func (p *Pool) Class() Class { return p.class }

// Len returns the number of registers still free.
func (p *Pool) Len() int { return len(p.free) }

// Take removes and returns the first free register.
// It returns false when the pool is exhausted.
func (p *Pool) Take() (string, bool) {
	if len(p.free) == 0 {
		return "", false
	}
	reg := p.free[0]
	p.free = p.free[1:]
	return reg, true
}

// Arena holds the pools for the processing of a single function.
// Create one per function and drop it when the function is done.
type Arena struct {
	pools [2]*Pool
}

// NewArena returns an arena with full temporary and saved pools.
func NewArena() *Arena {
	return &Arena{pools: [2]*Pool{NewTemporary(), NewSaved()}}
}

// Pool returns the arena's pool for class.
func (a *Arena) Pool(class Class) *Pool { return a.pools[class] }

// Package trace defines the ordered event log emitted by the solver
// binding as a path executes (spec.md §3 Event/Trace, component F), plus
// the post-processing simplifier (component G): dead-symbol elimination,
// dependency/taint analysis, and renumbering so traces from distinct paths
// can be merged into one SMT context.
package trace

import (
	"fmt"
	"strings"

	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/smtlib"
)

// EventKind tags which variant of Event is populated. Go has no tagged
// union types, so Event carries every variant's fields and EventKind says
// which are meaningful, mirroring the shape of the Rust `Event` enum named
// in spec.md §3 while staying a single allocation-friendly struct.
type EventKind uint8

const (
	EventSmt EventKind = iota
	EventReadReg
	EventWriteReg
	EventReadMem
	EventWriteMem
	EventBranch
	EventInstr
	EventCycle
	EventSleeping
	EventSleepRequest
	EventWakeupRequest
	EventAbstract
)

// ReadKind/WriteKind are opaque values describing how a memory access was
// performed (e.g. size, exclusivity); the catalogue producing them lives
// with the (out of scope) primitive-operation layer, so Event only stores
// whatever ir.Val the interpreter supplied.
type Event struct {
	Kind EventKind

	// EventSmt
	Smt smtlib.Def

	// EventReadReg / EventWriteReg
	Reg      ir.Name
	Accessor []Accessor
	Val      ir.Val

	// EventReadMem
	Address  ir.Val
	ReadKind ir.Val
	Bytes    uint32

	// EventWriteMem
	WriteKind ir.Val
	Data      ir.Val
	WriteSym  smtlib.Sym

	// EventBranch
	BranchSym smtlib.Sym
	Loc       string

	// EventSleeping
	SleepSym smtlib.Sym

	// EventAbstract
	AbstractName   string
	AbstractArgs   []ir.Val
	AbstractRet    ir.Val
	AbstractIsPrim bool
}

// Accessor is a single projection step recorded alongside a register event
// (spec.md §3 "ReadReg(reg, accessor-path, value)"); the full accessor
// vocabulary is defined by package accessor, but events only need to carry
// the opaque path, not interpret it.
type Accessor struct {
	// Field is the path element as rendered in the trace, typically "the
	// register event addressed field Field of a nested struct". Ctor tags
	// and wildcards have no separate representation here.
	Field string
}

// Trace is an ordered, finite sequence of Events, oldest first.
type Trace []Event

func (e Event) String() string {
	switch e.Kind {
	case EventSmt:
		return e.Smt.String()
	case EventBranch:
		return fmt.Sprintf("(branch %d %q)", e.BranchSym, e.Loc)
	case EventCycle:
		return "(cycle)"
	case EventSleepRequest:
		return "(sleep-request)"
	case EventWakeupRequest:
		return "(wake-request)"
	case EventSleeping:
		return fmt.Sprintf("(sleeping v%d)", e.SleepSym)
	case EventReadMem:
		return fmt.Sprintf("(read-mem %s %s %s %d)", e.Val, e.ReadKind, e.Address, e.Bytes)
	case EventWriteMem:
		return fmt.Sprintf("(write-mem v%d %s %s %s %d)", e.WriteSym, e.WriteKind, e.Address, e.Data, e.Bytes)
	case EventReadReg:
		return fmt.Sprintf("(read-reg |%s| %s %s)", e.Reg, accessorString(e.Accessor), e.Val)
	case EventWriteReg:
		return fmt.Sprintf("(write-reg |%s| %s %s)", e.Reg, accessorString(e.Accessor), e.Val)
	case EventInstr:
		return fmt.Sprintf("(instr %s)", e.Val)
	default:
		return "(unknown-event)"
	}
}

func accessorString(path []Accessor) string {
	if len(path) == 0 {
		return "nil"
	}
	parts := make([]string, len(path))
	for i, a := range path {
		parts[i] = a.Field
	}
	return "(" + strings.Join(parts, " ") + ")"
}

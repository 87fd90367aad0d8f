// Package solver defines the external SMT-solver binding consumed by the
// interpreter (spec.md §6, "Consumed from external collaborators": Solver,
// Checkpoint, Context) and ships a reference implementation adequate to
// drive branch forking, checkpointing, and the worked examples of spec.md
// §8. It is a QF_BV + booleans reference only (spec.md §1 Non-goals): it is
// not a general decision procedure, and its satisfiability answers are
// sound-but-incomplete outside the patterns the interpreter actually
// generates (direct equalities, enum cardinality bounds, boolean literals).
package solver

import (
	"sync"

	"github.com/isla-sym/isla/smtlib"
	"github.com/isla-sym/isla/trace"
)

// Result is the outcome of a satisfiability query.
type Result uint8

const (
	Sat Result = iota
	Unsat
	Unknown
)

func (r Result) IsSat() bool { return r == Sat }

// Config holds resource bounds passed to a fresh Context; the reference
// implementation ignores them (timeouts are delegated to the underlying
// solver binding per spec.md §5, and this binding has none to delegate to).
type Config struct {
	Timeout uint // milliseconds; 0 means unbounded
}

// Context is an opaque per-task SMT context. Contexts are never shared
// between tasks or threads (spec.md §5 "Solver isolation").
type Context struct {
	cfg Config
}

func NewContext(cfg Config) Context { return Context{cfg: cfg} }

// Checkpoint is an opaque, restorable snapshot of a solver's assertion
// stack (spec.md glossary).
type Checkpoint struct {
	defs  []smtlib.Def
	extra smtlib.Def // the "pending" assertion checkpointed alongside a fork, or nil
}

// Solver is the interface the interpreter (package interp) and engine
// (package engine) depend on. Method names mirror spec.md §6 one-to-one:
// Fresh, Add, CheckSat, CheckSatWith, CheckpointWith, FromCheckpoint.
type Solver interface {
	// Fresh allocates a new, as yet undeclared, Sym.
	Fresh() smtlib.Sym
	// Add records a definition and, as a side effect, appends the
	// corresponding Smt event to the trace (spec.md §3 Event, §6 Solver).
	Add(smtlib.Def)
	// Event appends a non-Smt trace event (Branch, ReadReg, Cycle, ...).
	// The solver owns the trace because "Event [is] emitted by the solver
	// binding as the interpreter runs" (spec.md §3).
	Event(trace.Event)
	CheckSat() Result
	CheckSatWith(smtlib.Exp) Result
	// CheckpointWith snapshots the solver's current state plus one
	// additional pending definition, without mutating the live solver.
	CheckpointWith(smtlib.Def) Checkpoint
	// Trace returns the ordered event sequence accumulated so far.
	Trace() trace.Trace
}

// FromCheckpoint restores a Solver from an opaque Checkpoint inside a fresh
// Context, exactly as spec.md §4.7 requires ("constructs a fresh SMT
// Context and Solver::from_checkpoint ... per task").
func FromCheckpoint(ctx Context, cp Checkpoint) Solver {
	s := newRefSolver()
	for _, d := range cp.defs {
		s.apply(d, false)
		if v, ok := smtlib.DefVar(d); ok && v >= s.nextSym {
			s.nextSym = v + 1
		}
	}
	s.defs = append(s.defs, cp.defs...)
	if cp.extra != nil {
		s.apply(cp.extra, true)
	}
	return s
}

// New creates an empty Solver inside ctx, for a path with no prior
// checkpoint. The engine does not call it: it restores every task,
// including an entry task with a zero Checkpoint, through FromCheckpoint.
func New(ctx Context) Solver { return newRefSolver() }

// refSolver is the reference Solver implementation. It is not safe for
// concurrent use by more than one goroutine at a time; per spec.md §5 each
// Task owns its own Solver for the duration of exactly one worker step, so
// this is never violated by the engine.
type refSolver struct {
	mu sync.Mutex // serializes every method; uncontended under the engine,
	// where each Task owns its Solver.

	nextSym  smtlib.Sym
	declared map[smtlib.Sym]smtlib.Ty
	assigned map[smtlib.Sym]smtlib.Exp // resolved constant value, once known
	unsat    bool
	defs     []smtlib.Def // replayable log of every Add, for checkpointing
	events   trace.Trace
}

func newRefSolver() *refSolver {
	return &refSolver{
		declared: map[smtlib.Sym]smtlib.Ty{},
		assigned: map[smtlib.Sym]smtlib.Exp{},
	}
}

func (s *refSolver) Fresh() smtlib.Sym {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.nextSym
	s.nextSym++
	return v
}

func (s *refSolver) Add(d smtlib.Def) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(d, true)
}

func (s *refSolver) apply(d smtlib.Def, record bool) {
	switch d := d.(type) {
	case smtlib.DeclareConst:
		s.declared[d.V] = d.Ty
	case smtlib.DefineConst:
		if folded := fold(d.Exp, s.assigned); isConcrete(folded) {
			s.assigned[d.V] = folded
		}
	case smtlib.Assert:
		folded := fold(d.Exp, s.assigned)
		if b, ok := asBool(folded); ok && !b {
			s.unsat = true
		}
		learn(folded, s.assigned)
	}
	if record {
		s.defs = append(s.defs, d)
		s.events = append(s.events, trace.Event{Kind: trace.EventSmt, Smt: d})
	}
}

func (s *refSolver) Event(e trace.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *refSolver) CheckSat() Result {
	return s.CheckSatWith(smtlib.BoolLit{V: true})
}

func (s *refSolver) CheckSatWith(e smtlib.Exp) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsat {
		return Unsat
	}
	folded := fold(e, s.assigned)
	if b, ok := asBool(folded); ok && !b {
		return Unsat
	}
	return Sat
}

func (s *refSolver) CheckpointWith(d smtlib.Def) Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	defsCopy := make([]smtlib.Def, len(s.defs))
	copy(defsCopy, s.defs)
	return Checkpoint{defs: defsCopy, extra: d}
}

func (s *refSolver) Trace() trace.Trace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(trace.Trace, len(s.events))
	copy(out, s.events)
	return out
}

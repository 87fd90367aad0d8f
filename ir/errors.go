package ir

import "github.com/pkg/errors"

// Kind tags the disjoint error kinds spec.md §7 names. Go's idiom for a
// closed tag set over an error value is an enum plus a concrete Error type,
// the same pattern yaegi uses for its own interpreter error kinds; a kind
// alone (rather than sentinel error values) lets a caller switch on Kind()
// after errors.Cause() unwraps whatever pkg/errors context was attached.
type Kind uint8

const (
	// NoSymbolicType: a type declared along a path has no SMT encoding.
	NoSymbolicType Kind = iota
	// Type: a value of the wrong shape reached an operation.
	Type
	// Unimplemented: primitive not wired.
	Unimplemented
	// Dead: both branch arms unsat; the path is infeasible and must be
	// silently dropped by a well-formed collector (spec.md §7).
	Dead
	// Exit: SAIL_EXIT was invoked.
	Exit
	// Unreachable: structural impossibility (e.g. unknown struct name).
	Unreachable
	// Solver: underlying solver error (timeout, malformed query).
	Solver
)

func (k Kind) String() string {
	switch k {
	case NoSymbolicType:
		return "no-symbolic-type"
	case Type:
		return "type"
	case Unimplemented:
		return "unimplemented"
	case Dead:
		return "dead"
	case Exit:
		return "exit"
	case Unreachable:
		return "unreachable"
	case Solver:
		return "solver"
	default:
		return "?"
	}
}

// Error is the single error type every per-step interpreter failure takes
// (spec.md §7 "All per-step failures short-circuit the interpreter and are
// delivered to the collector as Err(...)").
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.kind.String()
	}
	return e.kind.String() + ": " + e.msg
}

func (e *Error) Kind() Kind { return e.kind }

func newError(k Kind, msg string) error { return &Error{kind: k, msg: msg} }

func ErrNoSymbolicType(ty Ty) error {
	return newError(NoSymbolicType, ty.String())
}

func ErrType(msg string) error        { return newError(Type, msg) }
func ErrUnimplemented(name string) error { return newError(Unimplemented, name) }

// ErrDead is the single instance collectors are expected to recognize and
// drop silently (spec.md §7); it carries no detail since both arms being
// unsat is itself the whole story.
var ErrDead = newError(Dead, "")

var ErrExit = newError(Exit, "SAIL_EXIT")

func ErrUnreachable(msg string) error { return newError(Unreachable, msg) }
func ErrSolver(msg string) error      { return newError(Solver, msg) }

// KindOf unwraps err (following any pkg/errors wrapping) to the *Error it
// ultimately traces back to, or ok=false if err never originated from this
// package.
func KindOf(err error) (Kind, bool) {
	cause := errors.Cause(err)
	e, ok := cause.(*Error)
	if !ok {
		return 0, false
	}
	return e.kind, true
}

// IsDead reports whether err is (possibly wrapped) ErrDead, the one kind a
// well-formed collector must swallow rather than report (spec.md §7).
func IsDead(err error) bool {
	k, ok := KindOf(err)
	return ok && k == Dead
}

// Wrap attaches step-level context (e.g. "evaluating call to foo") the way
// pkg/errors.Wrap attaches a message while preserving Cause()/Unwrap() back
// to the underlying *Error, so KindOf still sees through it.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, context)
}

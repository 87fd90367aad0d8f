// Package collector is the path-terminal callback interface spec.md §4.8
// names: invoked exactly once per terminating path with that path's
// outcome, a read-only SharedState, that path's Solver, and access to a
// mutex-protected result aggregate the caller owns.
package collector

import (
	"sync"

	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/smtlib"
	"github.com/isla-sym/isla/solver"
)

// Collector is called exactly once per terminating path (spec.md §4.8
// "(tid, Result<(Val, LocalFrame), Error>, SharedState, Solver, Mutex<R>)
// → ()"). Go has no Result<T,E>, so the (val, lf, err) triple stands in for
// it directly: err == nil means the path terminated successfully with val
// and final frame lf; err != nil means the path failed (ir.IsDead(err)
// marks the infeasible-path case every well-formed collector must ignore).
type Collector func(tid int, val ir.Val, lf *ir.LocalFrame, err error, shared *ir.SharedState, s solver.Solver)

// AllUnsatCollector returns a Collector targeting path validity (spec.md
// §4.8's built-in all_unsat_collector): every terminating path is expected
// to prove its own postcondition, and the first path that doesn't flips
// the shared result to false. mu guards result exactly as "Mutex<R>" does
// in the signature above.
func AllUnsatCollector(mu *sync.Mutex, result *bool) Collector {
	return func(tid int, val ir.Val, lf *ir.LocalFrame, err error, shared *ir.SharedState, s solver.Solver) {
		if err != nil {
			if ir.IsDead(err) {
				return
			}
			mu.Lock()
			*result = false
			mu.Unlock()
			return
		}

		switch val.Kind {
		case ir.ValSymbolic:
			counterexample := s.CheckSatWith(smtlib.Not(smtlib.Var{V: val.Sym})).IsSat()
			if counterexample {
				mu.Lock()
				*result = false
				mu.Unlock()
			}
		case ir.ValBool:
			if !val.Bool {
				mu.Lock()
				*result = false
				mu.Unlock()
			}
		default:
			// Other concrete outcomes (Unit, Bits, ...) are accepted as-is.
		}
	}
}

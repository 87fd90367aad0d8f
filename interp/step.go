package interp

import (
	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/smtlib"
	"github.com/isla-sym/isla/solver"
	"github.com/isla-sym/isla/trace"
)

// Fork is called when a Jump discovers both branch arms are satisfiable
// (spec.md §4.6): frame is the false-arm continuation frozen at pc+1, cp
// is the solver checkpoint with the negated assertion pending. The engine
// supplies this so interp never needs to know about worker deques.
type Fork func(frame ir.Frame, cp solver.Checkpoint)

// Run drives a single task's instruction loop to termination: either the
// top-level frame returns a value (stack is empty), or a per-step error
// (including the Dead sentinel) short-circuits the walk (spec.md §4.6,
// §4.8's "Result<(Val, LocalFrame), Error>" collector contract).
func Run(lf *ir.LocalFrame, shared *ir.SharedState, s solver.Solver, fork Fork) (ir.Val, *ir.LocalFrame, error) {
	for {
		fn := lf.Func()
		if lf.PC() >= len(fn.Body) {
			return ir.Unitv(), lf, nil
		}
		instr := fn.Body[lf.PC()]

		switch instr.Kind {
		case ir.InstrDecl:
			lf.Vars[instr.Var] = ir.Uninitializedv(instr.Ty)
			lf.Advance()

		case ir.InstrInit:
			v, err := Eval(instr.Exp, lf, shared, s)
			if err != nil {
				return ir.Val{}, lf, err
			}
			lf.Vars[instr.Var] = v
			lf.Advance()

		case ir.InstrCopy, ir.InstrPrimopUnary, ir.InstrPrimopBinary, ir.InstrPrimopVariadic:
			v, err := Eval(instr.Exp, lf, shared, s)
			if err != nil {
				return ir.Val{}, lf, err
			}
			if err := Assign(instr.Dest, v, lf, shared, s); err != nil {
				return ir.Val{}, lf, err
			}
			lf.Advance()

		case ir.InstrGoto:
			if err := gotoPC(lf, shared, instr.Target); err != nil {
				return ir.Val{}, lf, err
			}

		case ir.InstrJump:
			if err := stepJump(lf, shared, s, instr, fork); err != nil {
				return ir.Val{}, lf, err
			}

		case ir.InstrCall:
			next, err := stepCall(lf, shared, s, instr)
			if err != nil {
				return ir.Val{}, lf, err
			}
			lf = next

		case ir.InstrEnd:
			ret, ok := lf.Vars[ir.RETURN]
			if !ok {
				panic("interp: missing return value")
			}
			caller := lf.Stack()
			if caller == nil {
				return ret, lf, nil
			}
			loc, _ := lf.ReturnLoc()
			if err := Assign(loc, ret, caller, shared, s); err != nil {
				return ir.Val{}, lf, err
			}
			lf = caller

		default:
			// Unknown opcodes advance pc for safe forward compatibility
			// (spec.md §4.6).
			lf.Advance()
		}
	}
}

func gotoPC(lf *ir.LocalFrame, shared *ir.SharedState, target int) error {
	if target <= lf.PC() {
		lf.RecordBackjump()
		if lf.Backjumps() > shared.MaxBackjumps {
			return ir.ErrUnreachable("backjump budget exceeded")
		}
	}
	lf.SetPC(target)
	return nil
}

func stepJump(lf *ir.LocalFrame, shared *ir.SharedState, s solver.Solver, instr ir.Instr, fork Fork) error {
	v, err := Eval(instr.Exp, lf, shared, s)
	if err != nil {
		return err
	}
	switch v.Kind {
	case ir.ValBool:
		if v.Bool {
			return gotoPC(lf, shared, instr.Target)
		}
		lf.Advance()
		return nil

	case ir.ValSymbolic:
		sym := v.Sym
		testTrue := smtlib.Var{V: sym}
		testFalse := smtlib.Not(testTrue)
		canTrue := s.CheckSatWith(testTrue).IsSat()
		canFalse := s.CheckSatWith(testFalse).IsSat()
		s.Event(trace.Event{Kind: trace.EventBranch, BranchSym: sym, Loc: instr.Loc_})

		switch {
		case canTrue && canFalse:
			// Forking must always push the false-arm as the background
			// Task and continue with the true-arm live (spec.md §4.6).
			cp := s.CheckpointWith(smtlib.Assert{Exp: testFalse})
			frozen := lf.Freeze()
			frozen.PC = lf.PC() + 1
			fork(frozen, cp)
			s.Add(smtlib.Assert{Exp: testTrue})
			return gotoPC(lf, shared, instr.Target)
		case canTrue:
			s.Add(smtlib.Assert{Exp: testTrue})
			return gotoPC(lf, shared, instr.Target)
		case canFalse:
			s.Add(smtlib.Assert{Exp: testFalse})
			lf.Advance()
			return nil
		default:
			return ir.ErrDead
		}

	default:
		return ir.ErrType("jump on non-boolean")
	}
}

func stepCall(lf *ir.LocalFrame, shared *ir.SharedState, s solver.Solver, instr ir.Instr) (*ir.LocalFrame, error) {
	args := make([]ir.Val, len(instr.Args))
	for i, a := range instr.Args {
		v, err := Eval(a, lf, shared, s)
		if err != nil {
			return lf, err
		}
		args[i] = v
	}

	fn, ok := shared.Function(instr.Func)
	if !ok {
		return lf, stepMissingCall(lf, shared, s, instr, args)
	}

	vars := make(map[ir.Name]ir.Val, len(fn.Params))
	for i, p := range fn.Params {
		vars[p] = args[i]
	}
	// Advance the caller's pc to call_pc+1 before stashing it as the
	// continuation End will resume (spec.md §4.6).
	lf.Advance()
	return ir.NewCallFrame(fn, vars, lf.Globals, lf, instr.Dest), nil
}

func stepMissingCall(lf *ir.LocalFrame, shared *ir.SharedState, s solver.Solver, instr ir.Instr, args []ir.Val) error {
	switch instr.Func {
	case ir.INTERNAL_VECTOR_INIT:
		if len(args) != 1 || args[0].Kind != ir.ValI64 {
			return ir.ErrType("internal_vector_init: expected one i64 argument")
		}
		dest, err := GetLoc(instr.Dest, lf, shared, s)
		if err != nil {
			return err
		}
		if dest.Kind != ir.ValUninitialized || dest.Uty.Kind != ir.TyVector {
			return ir.ErrType("internal_vector_init: destination is not an uninitialized vector")
		}
		elems := make([]ir.Val, args[0].I64)
		for i := range elems {
			elems[i] = ir.Uninitializedv(*dest.Uty.Elem)
		}
		lf.Advance()
		return Assign(instr.Dest, ir.Vectorv(elems), lf, shared, s)
	case ir.INTERNAL_VECTOR_UPDATE:
		lf.Advance()
		return nil
	case ir.SAIL_EXIT:
		return ir.ErrExit
	default:
		panic("interp: unknown function " + shared.Symtab.ToStr(instr.Func))
	}
}

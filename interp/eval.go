// Package interp is the sequential core: expression evaluation, variable
// lookup and lazy initialisation, assignment, and the instruction stepper
// that drives a single worker's walk along one symbolic execution path
// (spec.md §4.2-4.6). It is grounded on executor.rs's eval_exp/get_loc/
// assign/run functions, reshaped into the frozen/thawed Frame split package
// ir already establishes.
package interp

import (
	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/primop"
	"github.com/isla-sym/isla/smtlib"
	"github.com/isla-sym/isla/solver"
)

// Symbolic materialises a fresh value of the requested type (spec.md §4.2).
func Symbolic(ty ir.Ty, shared *ir.SharedState, s solver.Solver) (ir.Val, error) {
	switch ty.Kind {
	case ir.TyUnit:
		return ir.Unitv(), nil
	case ir.TyBits:
		if ty.Len == 0 {
			return ir.Bitsv(ir.NewBitvector(0, 0)), nil
		}
		sym := s.Fresh()
		s.Add(smtlib.DeclareConst{V: sym, Ty: smtlib.BitVec(ty.Len)})
		return ir.Symbolicv(sym), nil
	case ir.TyI64, ir.TyI128, ir.TyBit, ir.TyBool:
		return symbolicScalar(ty, s), nil
	case ir.TyStruct:
		fields, ok := shared.StructFields(ty.Name)
		if !ok {
			return ir.Val{}, ir.ErrUnreachable("unknown struct " + shared.Symtab.ToStr(ty.Name))
		}
		values := make(map[ir.Name]ir.Val, len(fields))
		for _, f := range fields {
			v, err := Symbolic(f.Ty, shared, s)
			if err != nil {
				return ir.Val{}, err
			}
			values[f.Name] = v
		}
		return ir.Structv(values), nil
	case ir.TyEnum:
		card := shared.EnumCardinality(ty.Name)
		sym := s.Fresh()
		s.Add(smtlib.DeclareConst{V: sym, Ty: smtlib.BitVec(8)})
		s.Add(smtlib.Assert{Exp: smtlib.Bvult(smtlib.Var{V: sym}, smtlib.Bits{Len: 8, Bits: uint64(card)})})
		return ir.Symbolicv(sym), nil
	default:
		return ir.Val{}, ir.ErrNoSymbolicType(ty)
	}
}

func symbolicScalar(ty ir.Ty, s solver.Solver) ir.Val {
	sym := s.Fresh()
	var smtTy smtlib.Ty
	switch ty.Kind {
	case ir.TyBool:
		smtTy = smtlib.Bool()
	case ir.TyBit:
		smtTy = smtlib.BitVec(1)
	case ir.TyI64:
		smtTy = smtlib.BitVec(64)
	case ir.TyI128:
		smtTy = smtlib.BitVec(128)
	}
	s.Add(smtlib.DeclareConst{V: sym, Ty: smtTy})
	return ir.Symbolicv(sym)
}

// GetAndInitialize returns vars[id] if present, lazily materialising and
// writing back a symbolic value when the slot holds Uninitialized(ty)
// (spec.md §4.3).
func GetAndInitialize(id ir.Name, vars map[ir.Name]ir.Val, shared *ir.SharedState, s solver.Solver) (ir.Val, bool, error) {
	v, ok := vars[id]
	if !ok {
		return ir.Val{}, false, nil
	}
	if v.Kind == ir.ValUninitialized {
		fresh, err := Symbolic(v.Uty, shared, s)
		if err != nil {
			return ir.Val{}, true, err
		}
		vars[id] = fresh
		return fresh, true, nil
	}
	return v, true, nil
}

// GetLoc resolves a Loc to its current value (spec.md §4.3): local
// environment, then global, then enum-member constants.
func GetLoc(loc ir.Loc, lf *ir.LocalFrame, shared *ir.SharedState, s solver.Solver) (ir.Val, error) {
	if loc.Kind == ir.LocField {
		base, err := GetLoc(*loc.Base, lf, shared, s)
		if err != nil {
			return ir.Val{}, err
		}
		if base.Kind != ir.ValStruct {
			panic("interp: field projection of a non-struct")
		}
		fv, ok := base.Fields[loc.Field]
		if !ok {
			panic("interp: missing field " + shared.Symtab.ToStr(loc.Field))
		}
		return fv, nil
	}

	id := loc.Id
	if v, ok, err := GetAndInitialize(id, lf.Vars, shared, s); ok || err != nil {
		return v, err
	}
	if v, ok, err := GetAndInitialize(id, lf.Globals, shared, s); ok || err != nil {
		return v, err
	}
	if ord, ok := shared.EnumOrdinal(id); ok {
		return ir.Bitsv(ir.NewBitvector(uint64(ord), 8)), nil
	}
	panic("interp: unresolved identifier " + shared.Symtab.ToStr(id))
}

// Assign updates the local or global environment per spec.md §4.5: local
// if the identifier already has a slot, or is RETURN; global otherwise.
// Writes through a Field projection require the addressed slot to already
// hold a Struct containing that field.
func Assign(loc ir.Loc, v ir.Val, lf *ir.LocalFrame, shared *ir.SharedState, s solver.Solver) error {
	if loc.Kind == ir.LocField {
		base, err := GetLoc(*loc.Base, lf, shared, s)
		if err != nil {
			return err
		}
		if base.Kind != ir.ValStruct {
			panic("interp: field assignment to a non-struct")
		}
		if _, ok := base.Fields[loc.Field]; !ok {
			panic("interp: assignment to missing field " + shared.Symtab.ToStr(loc.Field))
		}
		fields := base.CloneStruct()
		fields[loc.Field] = v
		return Assign(*loc.Base, ir.Structv(fields), lf, shared, s)
	}

	id := loc.Id
	if _, ok := lf.Vars[id]; ok || id == ir.RETURN {
		lf.Vars[id] = v
		return nil
	}
	// Every other identifier is global, even on its first write
	// (executor.rs's assign: local iff already-local-or-RETURN, global
	// unconditionally otherwise).
	lf.Globals[id] = v
	return nil
}

// Eval evaluates a pure expression (spec.md §4.4).
func Eval(e ir.Exp, lf *ir.LocalFrame, shared *ir.SharedState, s solver.Solver) (ir.Val, error) {
	switch e.Kind {
	case ir.ExpUnit:
		return ir.Unitv(), nil
	case ir.ExpBool:
		return ir.Boolv(e.Bool), nil
	case ir.ExpI64:
		return ir.I64v(e.I64), nil
	case ir.ExpBits:
		return ir.Bitsv(e.Bits), nil
	case ir.ExpString:
		return ir.Stringv(e.Str), nil
	case ir.ExpId:
		return GetLoc(ir.IdLoc(e.Id), lf, shared, s)
	case ir.ExpUndefined:
		return Symbolic(e.UndefinedTy, shared, s)
	case ir.ExpField:
		base, err := Eval(*e.Base, lf, shared, s)
		if err != nil {
			return ir.Val{}, err
		}
		if base.Kind != ir.ValStruct {
			panic("interp: field projection of a non-struct")
		}
		fv, ok := base.Fields[e.Field]
		if !ok {
			panic("interp: missing field " + shared.Symtab.ToStr(e.Field))
		}
		return fv, nil
	case ir.ExpCall:
		args := make([]ir.Val, len(e.Args))
		for i, a := range e.Args {
			v, err := Eval(a, lf, shared, s)
			if err != nil {
				return ir.Val{}, err
			}
			args[i] = v
		}
		return primop.Dispatch(e.Op, args, s)
	default:
		return ir.Val{}, ir.ErrUnimplemented("expression kind")
	}
}

package trace

import (
	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/smtlib"
)

// RenumberEvent renumbers every symbolic variable mentioned by event so
// that i separate event sequences, each renumbered with the same total,
// end up with pairwise disjoint variable identifiers (spec.md §4.9
// "renumber_event(event, i, total): v -> v*total + i"), grounded on
// simplify.rs's renumber_event/renumber_exp/renumber_val/renumber_def.
func RenumberEvent(e *Event, i, total uint32) {
	switch e.Kind {
	case EventSmt:
		e.Smt = renumberDef(e.Smt, i, total)
	case EventBranch:
		e.BranchSym = renumberSym(e.BranchSym, i, total)
	case EventSleeping:
		e.SleepSym = renumberSym(e.SleepSym, i, total)
	case EventReadReg, EventWriteReg, EventInstr:
		renumberVal(&e.Val, i, total)
	case EventReadMem:
		renumberVal(&e.Val, i, total)
		renumberVal(&e.ReadKind, i, total)
		renumberVal(&e.Address, i, total)
	case EventWriteMem:
		e.WriteSym = renumberSym(e.WriteSym, i, total)
		renumberVal(&e.WriteKind, i, total)
		renumberVal(&e.Address, i, total)
		renumberVal(&e.Data, i, total)
	case EventAbstract:
		for idx := range e.AbstractArgs {
			renumberVal(&e.AbstractArgs[idx], i, total)
		}
		renumberVal(&e.AbstractRet, i, total)
	case EventCycle, EventSleepRequest, EventWakeupRequest:
	}
}

func renumberSym(v smtlib.Sym, i, total uint32) smtlib.Sym {
	return smtlib.Sym(uint32(v)*total + i)
}

func renumberExp(e smtlib.Exp, i, total uint32) smtlib.Exp {
	return e.Modify(func(x smtlib.Exp) smtlib.Exp {
		if v, ok := x.(smtlib.Var); ok {
			return smtlib.Var{V: renumberSym(v.V, i, total)}
		}
		return x
	})
}

// renumberVal walks a Val in place, renumbering every Symbolic handle it
// contains, mirroring simplify.rs's renumber_val recursion through
// List/Vector/Struct/Ctor.
func renumberVal(v *ir.Val, i, total uint32) {
	switch v.Kind {
	case ir.ValSymbolic:
		v.Sym = renumberSym(v.Sym, i, total)
	case ir.ValVector, ir.ValList:
		for idx := range v.Elems {
			renumberVal(&v.Elems[idx], i, total)
		}
	case ir.ValStruct:
		for k, f := range v.Fields {
			renumberVal(&f, i, total)
			v.Fields[k] = f
		}
	case ir.ValCtor:
		if v.Payload != nil {
			renumberVal(v.Payload, i, total)
		}
	}
}

func renumberDef(d smtlib.Def, i, total uint32) smtlib.Def {
	switch d := d.(type) {
	case smtlib.DeclareConst:
		d.V = renumberSym(d.V, i, total)
		return d
	case smtlib.DefineConst:
		d.V = renumberSym(d.V, i, total)
		d.Exp = renumberExp(d.Exp, i, total)
		return d
	case smtlib.Assert:
		d.Exp = renumberExp(d.Exp, i, total)
		return d
	default:
		return d
	}
}

// RenumberTrace renumbers every event in a trace belonging to path i out
// of total disjoint paths, the operation spec.md §4.9 uses to merge
// multiple paths' traces into a single SMT context without symbol clashes.
func RenumberTrace(tr Trace, i, total uint32) {
	for idx := range tr {
		RenumberEvent(&tr[idx], i, total)
	}
}

// usesInExp counts occurrences of every Var in exp, grounded on
// simplify.rs's uses_in_exp.
func usesInExp(uses map[smtlib.Sym]uint32, e smtlib.Exp) {
	switch x := e.(type) {
	case smtlib.Var:
		uses[x.V]++
	case smtlib.Bits, smtlib.BoolLit:
	case smtlib.Ite:
		usesInExp(uses, x.Cond)
		usesInExp(uses, x.Then)
		usesInExp(uses, x.Else)
	case smtlib.Extract:
		usesInExp(uses, x.X)
	case smtlib.ZeroExtend:
		usesInExp(uses, x.X)
	case smtlib.SignExtend:
		usesInExp(uses, x.X)
	default:
		if u, ok := e.(interface{ UnaryOp() (string, smtlib.Exp) }); ok {
			_, sub := u.UnaryOp()
			usesInExp(uses, sub)
			return
		}
		if b, ok := e.(interface {
			BinaryOp() (string, smtlib.Exp, smtlib.Exp)
		}); ok {
			_, lhs, rhs := b.BinaryOp()
			usesInExp(uses, lhs)
			usesInExp(uses, rhs)
			return
		}
	}
}

// usesInValue counts occurrences of every Symbolic handle in val, grounded
// on simplify.rs's uses_in_value.
func usesInValue(uses map[smtlib.Sym]uint32, v ir.Val) {
	switch v.Kind {
	case ir.ValSymbolic:
		uses[v.Sym]++
	case ir.ValVector, ir.ValList:
		for _, e := range v.Elems {
			usesInValue(uses, e)
		}
	case ir.ValStruct:
		for _, f := range v.Fields {
			usesInValue(uses, f)
		}
	case ir.ValCtor:
		if v.Payload != nil {
			usesInValue(uses, *v.Payload)
		}
	}
}

// EventReferences maps every DefineConst'd symbol in a trace to the
// symbols its defining expression immediately uses, the dependency index
// spec.md §4.9 builds to support taint analysis (simplify.rs's
// EventReferences/from_events).
type EventReferences struct {
	references map[smtlib.Sym]map[smtlib.Sym]uint32
}

// FromEvents builds the immediate-reference index over a sequence of
// events.
func FromEvents(events []Event) EventReferences {
	refs := make(map[smtlib.Sym]map[smtlib.Sym]uint32)
	for _, e := range events {
		if e.Kind != EventSmt {
			continue
		}
		def, ok := e.Smt.(smtlib.DefineConst)
		if !ok {
			continue
		}
		uses := make(map[smtlib.Sym]uint32)
		usesInExp(uses, def.Exp)
		refs[def.V] = uses
	}
	return EventReferences{references: refs}
}

// Dependencies returns the reflexive-transitive closure of symbol's
// immediate references: symbol itself plus every symbol it recursively
// depends on (simplify.rs's EventReferences::dependencies).
func (r EventReferences) Dependencies(symbol smtlib.Sym) map[smtlib.Sym]struct{} {
	deps := map[smtlib.Sym]struct{}{symbol: {}}
	seen := map[smtlib.Sym]struct{}{}

	for {
		next := map[smtlib.Sym]struct{}{}
		for sym := range deps {
			if _, done := seen[sym]; done {
				continue
			}
			for k := range r.references[sym] {
				next[k] = struct{}{}
			}
			seen[sym] = struct{}{}
		}
		if len(next) == 0 {
			break
		}
		for sym := range next {
			deps[sym] = struct{}{}
		}
	}

	return deps
}

// Taints returns the set of registers symbol's value transitively depends
// on, plus whether it also depends on a symbolic memory read
// (simplify.rs's EventReferences::taints).
func (r EventReferences) Taints(symbol smtlib.Sym, events []Event) (map[ir.Name]struct{}, bool) {
	deps := r.Dependencies(symbol)
	taints := map[ir.Name]struct{}{}
	memory := false

	for _, e := range events {
		switch e.Kind {
		case EventReadReg:
			uses := make(map[smtlib.Sym]uint32)
			usesInValue(uses, e.Val)
			for taint := range uses {
				if _, ok := deps[taint]; ok {
					taints[e.Reg] = struct{}{}
					break
				}
			}
		case EventReadMem:
			if e.Val.Kind == ir.ValSymbolic {
				if _, ok := deps[e.Val.Sym]; ok {
					memory = true
				}
			}
		}
	}

	return taints, memory
}

// RemoveUnused repeatedly strips DeclareConst/DefineConst events nothing
// else in the trace uses, to a fixed point, mirroring simplify.rs's
// remove_unused (remove_unused_pass iterated until a pass removes zero
// events).
func RemoveUnused(events Trace) Trace {
	for {
		next, removed := removeUnusedPass(events)
		events = next
		if removed == 0 {
			return events
		}
	}
}

func removeUnusedPass(events Trace) (Trace, int) {
	uses := make(map[smtlib.Sym]uint32)
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		switch e.Kind {
		case EventSmt:
			switch def := e.Smt.(type) {
			case smtlib.DeclareConst:
			case smtlib.DefineConst:
				usesInExp(uses, def.Exp)
			case smtlib.Assert:
				usesInExp(uses, def.Exp)
			}
		case EventReadReg:
			usesInValue(uses, e.Val)
		case EventWriteReg:
			usesInValue(uses, e.Val)
		case EventReadMem:
			usesInValue(uses, e.Val)
			usesInValue(uses, e.ReadKind)
			usesInValue(uses, e.Address)
		case EventWriteMem:
			uses[e.WriteSym]++
			usesInValue(uses, e.WriteKind)
			usesInValue(uses, e.Address)
			usesInValue(uses, e.Data)
		case EventBranch:
			uses[e.BranchSym]++
		case EventInstr:
			usesInValue(uses, e.Val)
		case EventSleeping:
			uses[e.SleepSym]++
		case EventAbstract:
			for _, a := range e.AbstractArgs {
				usesInValue(uses, a)
			}
			usesInValue(uses, e.AbstractRet)
		}
	}

	removed := 0
	out := make(Trace, 0, len(events))
	for _, e := range events {
		if e.Kind == EventSmt {
			if sym, ok := smtlib.DefVar(e.Smt); ok {
				if _, used := uses[sym]; !used {
					removed++
					continue
				}
			}
		}
		out = append(out, e)
	}

	return out, removed
}

// Simplify removes every unused symbolic definition from a trace
// (simplify.rs's simplify, which is remove_unused applied to the whole
// trace).
func Simplify(tr Trace) Trace { return RemoveUnused(tr) }

package trace

import (
	"testing"

	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/smtlib"
)

func TestRenumberEventSmtAndBranch(t *testing.T) {
	e := Event{Kind: EventSmt, Smt: smtlib.DeclareConst{V: 3, Ty: smtlib.BitVec(4)}}
	RenumberEvent(&e, 1, 10)
	if got := e.Smt.(smtlib.DeclareConst).V; got != 31 {
		t.Fatalf("renumbered DeclareConst var = %d, want 31", got)
	}

	b := Event{Kind: EventBranch, BranchSym: 2, Loc: "x"}
	RenumberEvent(&b, 1, 10)
	if b.BranchSym != 21 {
		t.Fatalf("renumbered BranchSym = %d, want 21", b.BranchSym)
	}
}

func TestRenumberEventPreservesDisjointness(t *testing.T) {
	// Two paths renumbered against the same total must never collide.
	total := uint32(2)
	a := Event{Kind: EventBranch, BranchSym: 5}
	b := Event{Kind: EventBranch, BranchSym: 5}
	RenumberEvent(&a, 0, total)
	RenumberEvent(&b, 1, total)
	if a.BranchSym == b.BranchSym {
		t.Fatalf("renumbered symbols collided: %d == %d", a.BranchSym, b.BranchSym)
	}
}

func TestRenumberValRecursesThroughVector(t *testing.T) {
	v := ir.Val{Kind: ir.ValVector, Elems: []ir.Val{
		{Kind: ir.ValSymbolic, Sym: 1},
		{Kind: ir.ValSymbolic, Sym: 2},
	}}
	renumberVal(&v, 1, 10)
	if v.Elems[0].Sym != 11 || v.Elems[1].Sym != 12 {
		t.Fatalf("renumberVal did not recurse into vector elements: %+v", v.Elems)
	}
}

func TestFromEventsAndDependencies(t *testing.T) {
	// v2 := bvand(v1, v1); v3 := bvnot(v2)
	events := []Event{
		{Kind: EventSmt, Smt: smtlib.DeclareConst{V: 1, Ty: smtlib.BitVec(4)}},
		{Kind: EventSmt, Smt: smtlib.DefineConst{V: 2, Exp: smtlib.Bvand(smtlib.Var{V: 1}, smtlib.Var{V: 1})}},
		{Kind: EventSmt, Smt: smtlib.DefineConst{V: 3, Exp: smtlib.Bvnot(smtlib.Var{V: 2})}},
	}
	refs := FromEvents(events)

	deps := refs.Dependencies(3)
	for _, want := range []smtlib.Sym{1, 2, 3} {
		if _, ok := deps[want]; !ok {
			t.Fatalf("Dependencies(3) missing %d: %v", want, deps)
		}
	}
}

func TestTaintsTracksRegisterDependency(t *testing.T) {
	events := []Event{
		{Kind: EventSmt, Smt: smtlib.DeclareConst{V: 1, Ty: smtlib.BitVec(4)}},
		{Kind: EventReadReg, Reg: 42, Val: ir.Val{Kind: ir.ValSymbolic, Sym: 1}},
		{Kind: EventSmt, Smt: smtlib.DefineConst{V: 2, Exp: smtlib.Bvnot(smtlib.Var{V: 1})}},
	}
	refs := FromEvents(events)
	taints, memory := refs.Taints(2, events)
	if _, ok := taints[42]; !ok {
		t.Fatalf("Taints(2) should include register 42: %v", taints)
	}
	if memory {
		t.Fatal("Taints(2) should not report a memory dependency")
	}
}

func TestRemoveUnusedDropsDeadDefinitions(t *testing.T) {
	// v1 is declared and used by the assertion; v2 is declared but never
	// referenced anywhere, and must be dropped.
	events := Trace{
		{Kind: EventSmt, Smt: smtlib.DeclareConst{V: 1, Ty: smtlib.BitVec(4)}},
		{Kind: EventSmt, Smt: smtlib.DeclareConst{V: 2, Ty: smtlib.BitVec(4)}},
		{Kind: EventSmt, Smt: smtlib.Assert{Exp: smtlib.Bvult(smtlib.Var{V: 1}, smtlib.Bits{Len: 4, Bits: 8})}},
	}

	out := RemoveUnused(events)
	if len(out) != 2 {
		t.Fatalf("RemoveUnused left %d events, want 2: %v", len(out), out)
	}
	for _, e := range out {
		if d, ok := e.Smt.(smtlib.DeclareConst); ok && d.V == 2 {
			t.Fatal("RemoveUnused should have dropped the unused DeclareConst for v2")
		}
	}
}

func TestRemoveUnusedConvergesOnChainOfDeadDefs(t *testing.T) {
	// v1 used by v2 which is otherwise unused: both should disappear once
	// the fixed point is reached, even though a single pass only kills v2.
	events := Trace{
		{Kind: EventSmt, Smt: smtlib.DeclareConst{V: 1, Ty: smtlib.BitVec(4)}},
		{Kind: EventSmt, Smt: smtlib.DefineConst{V: 2, Exp: smtlib.Bvnot(smtlib.Var{V: 1})}},
		{Kind: EventSmt, Smt: smtlib.Assert{Exp: smtlib.BoolLit{V: true}}},
	}

	out := RemoveUnused(events)
	if len(out) != 1 {
		t.Fatalf("RemoveUnused did not converge to a fixed point: %v", out)
	}
}

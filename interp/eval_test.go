package interp

import (
	"testing"

	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/solver"
)

func newSolver() solver.Solver {
	return solver.New(solver.NewContext(solver.Config{}))
}

func newShared() *ir.SharedState {
	return ir.NewSharedState(ir.NewSymtab())
}

func TestEvalLiterals(t *testing.T) {
	shared := newShared()
	s := newSolver()
	lf := ir.NewFrame(nil, map[ir.Name]ir.Val{}, map[ir.Name]ir.Val{}).Thaw()

	cases := []struct {
		e    ir.Exp
		want ir.Val
	}{
		{ir.Exp{Kind: ir.ExpUnit}, ir.Unitv()},
		{ir.BoolExp(true), ir.Boolv(true)},
		{ir.Exp{Kind: ir.ExpI64, I64: 7}, ir.I64v(7)},
	}
	for _, c := range cases {
		got, err := Eval(c.e, lf, shared, s)
		if err != nil {
			t.Fatalf("Eval(%v) errored: %v", c.e, err)
		}
		if got.String() != c.want.String() {
			t.Errorf("Eval(%v) = %v, want %v", c.e, got, c.want)
		}
	}
}

func TestGetAndInitializeMaterializesUninitialized(t *testing.T) {
	shared := newShared()
	s := newSolver()
	vars := map[ir.Name]ir.Val{5: ir.Uninitializedv(ir.BoolTy())}

	v, ok, err := GetAndInitialize(5, vars, shared, s)
	if err != nil || !ok {
		t.Fatalf("GetAndInitialize = %v, %v, %v", v, ok, err)
	}
	if v.Kind != ir.ValSymbolic {
		t.Fatalf("expected a freshly materialized Symbolic value, got %v", v)
	}
	if vars[5].Kind != ir.ValSymbolic {
		t.Fatal("GetAndInitialize should write the materialized value back into vars")
	}
}

func TestGetAndInitializeMissingReturnsNotOk(t *testing.T) {
	shared := newShared()
	s := newSolver()
	_, ok, err := GetAndInitialize(99, map[ir.Name]ir.Val{}, shared, s)
	if err != nil || ok {
		t.Fatalf("GetAndInitialize on a missing slot = ok:%v err:%v, want ok:false err:nil", ok, err)
	}
}

func TestGetLocFallsBackToEnumOrdinal(t *testing.T) {
	shared := newShared()
	shared.DefineEnum(1, []ir.Name{10, 11, 12})
	s := newSolver()
	lf := ir.NewFrame(nil, map[ir.Name]ir.Val{}, map[ir.Name]ir.Val{}).Thaw()

	v, err := GetLoc(ir.IdLoc(11), lf, shared, s)
	if err != nil {
		t.Fatalf("GetLoc(enum member) errored: %v", err)
	}
	if v.Kind != ir.ValBits || v.Bits.Bits != 1 {
		t.Fatalf("GetLoc(11) = %v, want ordinal 1", v)
	}
}

func TestGetLocUnresolvedIdentifierPanics(t *testing.T) {
	shared := newShared()
	s := newSolver()
	lf := ir.NewFrame(nil, map[ir.Name]ir.Val{}, map[ir.Name]ir.Val{}).Thaw()

	defer func() {
		if recover() == nil {
			t.Fatal("GetLoc on an unresolved identifier should panic, not return an error")
		}
	}()
	GetLoc(ir.IdLoc(404), lf, shared, s)
}

func TestAssignLocalThenField(t *testing.T) {
	shared := newShared()
	s := newSolver()
	lf := ir.NewFrame(nil, map[ir.Name]ir.Val{
		1: ir.Structv(map[ir.Name]ir.Val{2: ir.I64v(0)}),
	}, map[ir.Name]ir.Val{}).Thaw()

	loc := ir.FieldLoc(ir.IdLoc(1), 2)
	if err := Assign(loc, ir.I64v(42), lf, shared, s); err != nil {
		t.Fatalf("Assign(field) errored: %v", err)
	}
	got, err := GetLoc(loc, lf, shared, s)
	if err != nil {
		t.Fatalf("GetLoc(field) after Assign errored: %v", err)
	}
	if got.I64 != 42 {
		t.Fatalf("field value after Assign = %v, want 42", got)
	}

	// The struct in Vars itself must have been replaced, not aliased.
	if lf.Vars[1].Fields[2].I64 != 42 {
		t.Fatal("Assign(field) did not update the backing struct in Vars")
	}
}

func TestAssignToUndeclaredIdentifierGoesGlobal(t *testing.T) {
	shared := newShared()
	s := newSolver()
	lf := ir.NewFrame(nil, map[ir.Name]ir.Val{}, map[ir.Name]ir.Val{}).Thaw()

	if err := Assign(ir.IdLoc(7), ir.I64v(1), lf, shared, s); err != nil {
		t.Fatalf("Assign errored: %v", err)
	}
	if lf.Globals[7].I64 != 1 {
		t.Fatal("first write to an undeclared identifier should land in Globals")
	}
	if _, ok := lf.Vars[7]; ok {
		t.Fatal("first write to an undeclared identifier should not touch Vars")
	}
}

func TestEvalCallDispatchesToPrimop(t *testing.T) {
	shared := newShared()
	s := newSolver()
	lf := ir.NewFrame(nil, map[ir.Name]ir.Val{}, map[ir.Name]ir.Val{}).Thaw()

	e := ir.Exp{
		Kind: ir.ExpCall,
		Op:   ir.Op{Name: ir.OpAdd},
		Args: []ir.Exp{
			{Kind: ir.ExpBits, Bits: ir.NewBitvector(3, 4)},
			{Kind: ir.ExpBits, Bits: ir.NewBitvector(5, 4)},
		},
	}
	v, err := Eval(e, lf, shared, s)
	if err != nil {
		t.Fatalf("Eval(call add) errored: %v", err)
	}
	if v.Bits.Bits != 8 {
		t.Fatalf("Eval(call add) = %v, want 8", v)
	}
}

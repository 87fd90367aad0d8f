package primop

import (
	"testing"

	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/smtlib"
	"github.com/isla-sym/isla/solver"
)

func newSolver() solver.Solver {
	return solver.New(solver.NewContext(solver.Config{}))
}

func TestConcreteBoolOps(t *testing.T) {
	s := newSolver()
	if v, err := Not(ir.Boolv(true), s); err != nil || v.Bool != false {
		t.Fatalf("Not(true) = %v, %v", v, err)
	}
	if v, err := And(ir.Boolv(true), ir.Boolv(false), s); err != nil || v.Bool != false {
		t.Fatalf("And(true,false) = %v, %v", v, err)
	}
	if v, err := Or(ir.Boolv(false), ir.Boolv(true), s); err != nil || v.Bool != true {
		t.Fatalf("Or(false,true) = %v, %v", v, err)
	}
}

func TestConcreteBitvectorArith(t *testing.T) {
	s := newSolver()
	a := ir.Bitsv(ir.NewBitvector(3, 4))
	b := ir.Bitsv(ir.NewBitvector(5, 4))
	v, err := Add(a, b, s)
	if err != nil || v.Bits.Bits != 8 {
		t.Fatalf("Add(3,5) = %v, %v, want 8", v, err)
	}
	v, err = Bvand(a, b, s)
	if err != nil || v.Bits.Bits != (3&5) {
		t.Fatalf("Bvand(3,5) = %v, %v", v, err)
	}
}

func TestUdivUremByZeroTraps(t *testing.T) {
	s := newSolver()
	a := ir.Bitsv(ir.NewBitvector(3, 8))
	zero := ir.Bitsv(ir.NewBitvector(0, 8))
	if _, err := Udiv(a, zero, s); err == nil {
		t.Fatal("Udiv by concrete zero should error")
	}
	if _, err := Urem(a, zero, s); err == nil {
		t.Fatal("Urem by concrete zero should error")
	}
}

func TestSliceAndConcat(t *testing.T) {
	s := newSolver()
	a := ir.Bitsv(ir.NewBitvector(0b10110100, 8))
	v, err := Slice(a, ir.I64v(2), 4, s)
	if err != nil || v.Bits.Bits != 0b1101 {
		t.Fatalf("Slice(2,4) = %v, %v, want 0b1101", v, err)
	}

	hi := ir.Bitsv(ir.NewBitvector(0xA, 4))
	lo := ir.Bitsv(ir.NewBitvector(0xB, 4))
	cc, err := Concat(hi, lo, s)
	if err != nil || cc.Bits.Bits != 0xAB || cc.Bits.Length != 8 {
		t.Fatalf("Concat(0xA,0xB) = %v, %v, want 0xAB/8", cc, err)
	}
}

func TestUnsignedSignedExtend(t *testing.T) {
	s := newSolver()
	neg := ir.Bitsv(ir.NewBitvector(0b1000, 4))
	v, err := Signed(neg, 8, s)
	if err != nil || v.Bits.Bits != 0xF8 {
		t.Fatalf("Signed extend of -8 to 8 bits = %v, %v, want 0xf8", v, err)
	}

	pos := ir.Bitsv(ir.NewBitvector(0b1111, 4))
	v, err = Unsigned(pos, 8, s)
	if err != nil || v.Bits.Bits != 0xF {
		t.Fatalf("Unsigned extend of 0xF to 8 bits = %v, %v, want 0xf", v, err)
	}
}

func TestSymbolicOperandProducesSymbolicResult(t *testing.T) {
	s := newSolver()
	sym := s.Fresh()
	s.Add(smtlib.DeclareConst{V: sym, Ty: smtlib.BitVec(4)})
	symVal := ir.Val{Kind: ir.ValSymbolic, Sym: sym, Bits: ir.NewBitvector(0, 4)}
	concrete := ir.Bitsv(ir.NewBitvector(1, 4))

	v, err := Add(symVal, concrete, s)
	if err != nil {
		t.Fatalf("Add(symbolic, concrete) errored: %v", err)
	}
	if v.Kind != ir.ValSymbolic {
		t.Fatalf("Add(symbolic, concrete) = %v, want a fresh Symbolic result", v)
	}
}

func TestEqMismatchedKindsErrors(t *testing.T) {
	s := newSolver()
	if _, err := Eq(ir.Boolv(true), ir.Bitsv(ir.NewBitvector(1, 4)), s); err == nil {
		t.Fatal("Eq(bool, bits) should error on mismatched kinds")
	}
}

func TestDispatchUnimplementedOp(t *testing.T) {
	s := newSolver()
	_, err := Dispatch(ir.Op{Name: ir.Name(9999)}, nil, s)
	if err == nil {
		t.Fatal("Dispatch with an unknown op should return an error")
	}
	if kind, ok := ir.KindOf(err); !ok || kind != ir.Unimplemented {
		t.Fatalf("Dispatch unknown op kind = %v,%v, want Unimplemented", kind, ok)
	}
}

func TestDispatchRoutesToConcreteOps(t *testing.T) {
	s := newSolver()
	a := ir.Bitsv(ir.NewBitvector(3, 4))
	b := ir.Bitsv(ir.NewBitvector(5, 4))
	v, err := Dispatch(ir.Op{Name: ir.OpAdd}, []ir.Val{a, b}, s)
	if err != nil || v.Bits.Bits != 8 {
		t.Fatalf("Dispatch(OpAdd) = %v, %v, want 8", v, err)
	}
}

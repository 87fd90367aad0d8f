package solver

import (
	"testing"

	"github.com/isla-sym/isla/smtlib"
)

func TestFreshSymsAreDistinct(t *testing.T) {
	s := New(NewContext(Config{}))
	a := s.Fresh()
	b := s.Fresh()
	if a == b {
		t.Fatal("Fresh() returned the same Sym twice")
	}
}

func TestConstantFoldingResolvesAssertedEquality(t *testing.T) {
	s := New(NewContext(Config{}))
	v := s.Fresh()
	s.Add(smtlib.DeclareConst{V: v, Ty: smtlib.BitVec(4)})
	s.Add(smtlib.Assert{Exp: smtlib.Eq(smtlib.Var{V: v}, smtlib.Bits{Len: 4, Bits: 5})})

	if got := s.CheckSatWith(smtlib.Eq(smtlib.Var{V: v}, smtlib.Bits{Len: 4, Bits: 5})); got != Sat {
		t.Fatalf("CheckSatWith(v == 5) = %v, want Sat", got)
	}
	if got := s.CheckSatWith(smtlib.Eq(smtlib.Var{V: v}, smtlib.Bits{Len: 4, Bits: 6})); got != Unsat {
		t.Fatalf("CheckSatWith(v == 6) = %v, want Unsat once v is pinned to 5", got)
	}
}

func TestAssertingFalseMakesContextUnsat(t *testing.T) {
	s := New(NewContext(Config{}))
	s.Add(smtlib.Assert{Exp: smtlib.BoolLit{V: false}})
	if got := s.CheckSat(); got != Unsat {
		t.Fatalf("CheckSat() after asserting false = %v, want Unsat", got)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	s := New(NewContext(Config{}))
	v := s.Fresh()
	s.Add(smtlib.DeclareConst{V: v, Ty: smtlib.BitVec(4)})
	s.Add(smtlib.Assert{Exp: smtlib.Eq(smtlib.Var{V: v}, smtlib.Bits{Len: 4, Bits: 3})})

	extra := smtlib.Assert{Exp: smtlib.Eq(smtlib.Var{V: v}, smtlib.Bits{Len: 4, Bits: 3})}
	cp := s.CheckpointWith(extra)

	restored := FromCheckpoint(NewContext(Config{}), cp)
	if got := restored.CheckSatWith(smtlib.Eq(smtlib.Var{V: v}, smtlib.Bits{Len: 4, Bits: 3})); got != Sat {
		t.Fatalf("restored solver lost the checkpointed assignment: %v", got)
	}
}

func TestBvultZeroTautology(t *testing.T) {
	// x < 0 is always false for an unsigned bitvector comparison; this
	// grounds the Dead-path construction for a zero-cardinality enum
	// (spec.md §8).
	s := New(NewContext(Config{}))
	v := s.Fresh()
	s.Add(smtlib.DeclareConst{V: v, Ty: smtlib.BitVec(4)})
	if got := s.CheckSatWith(smtlib.Bvult(smtlib.Var{V: v}, smtlib.Bits{Len: 4, Bits: 0})); got != Unsat {
		t.Fatalf("CheckSatWith(v < 0) = %v, want Unsat", got)
	}
}

package smtlib

import "testing"

func TestExpString(t *testing.T) {
	e := Bvand(Var{V: 1}, Bits{Len: 4, Bits: 0xF})
	want := "(bvand v1 (_ bv15 4))"
	if got := e.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestModifyRewritesVars(t *testing.T) {
	e := Bvadd(Var{V: 1}, Var{V: 2})
	renumbered := e.Modify(func(x Exp) Exp {
		if v, ok := x.(Var); ok {
			return Var{V: v.V + 10}
		}
		return x
	})
	b, ok := renumbered.(*binary)
	if !ok {
		t.Fatalf("expected *binary, got %T", renumbered)
	}
	op, lhs, rhs := b.BinaryOp()
	if op != "bvadd" {
		t.Fatalf("op = %q, want bvadd", op)
	}
	if lhs.(Var).V != 11 || rhs.(Var).V != 12 {
		t.Fatalf("Modify did not rewrite both operands: %v %v", lhs, rhs)
	}
}

func TestDefVar(t *testing.T) {
	if v, ok := DefVar(DeclareConst{V: 7, Ty: Bool()}); !ok || v != 7 {
		t.Fatalf("DefVar(DeclareConst) = (%d,%v), want (7,true)", v, ok)
	}
	if v, ok := DefVar(DefineConst{V: 8, Exp: Bits{Len: 1, Bits: 1}}); !ok || v != 8 {
		t.Fatalf("DefVar(DefineConst) = (%d,%v), want (8,true)", v, ok)
	}
	if _, ok := DefVar(Assert{Exp: BoolLit{V: true}}); ok {
		t.Fatal("DefVar(Assert) should return ok=false")
	}
}

func TestUnaryOpBinaryOpAccessors(t *testing.T) {
	u := Bvnot(Var{V: 3}).(*unary)
	op, x := u.UnaryOp()
	if op != "bvnot" || x.(Var).V != 3 {
		t.Fatalf("UnaryOp() = (%q, %v)", op, x)
	}
}

// Package smtlib is the small quantifier-free bitvector-and-booleans term
// language emitted by the solver binding (package solver) as it evaluates a
// path. It is the wire format that ends up embedded in trace events
// (package trace) and, after simplification, rendered back out as textual
// SMT-LIB for downstream memory-model tooling.
package smtlib

import "fmt"

// Sym is an opaque handle to a solver-side variable. Two Syms compare equal
// iff they name the same declared constant.
type Sym uint32

// Ty is an SMT sort. Only the sorts needed for QF_BV + booleans exist; see
// spec.md §1 Non-goals.
type Ty struct {
	Kind TyKind
	Len  uint32 // valid when Kind == TyBitVec
}

type TyKind uint8

const (
	TyBool TyKind = iota
	TyBitVec
)

func Bool() Ty           { return Ty{Kind: TyBool} }
func BitVec(len uint32) Ty { return Ty{Kind: TyBitVec, Len: len} }

func (t Ty) String() string {
	switch t.Kind {
	case TyBool:
		return "Bool"
	case TyBitVec:
		return fmt.Sprintf("(_ BitVec %d)", t.Len)
	default:
		return "?"
	}
}

// Exp is an SMT-LIB term. Implementations are the concrete node kinds
// below; Exp is a closed sum type, matched with a type switch everywhere a
// Rust `match` over `smtlib::Exp` would appear in the source project.
type Exp interface {
	isExp()
	// Modify applies f to every subterm bottom-up, mutating unary and
	// binary nodes in place (they are pointers) and rebuilding the others
	// by value; mirrors isla-lib's `Exp::modify` used by the
	// renumbering pass (trace.RenumberEvent).
	Modify(f func(Exp) Exp) Exp
	String() string
}

// Var references a declared or defined solver constant.
type Var struct{ V Sym }

// Bits is a concrete bitvector literal.
type Bits struct {
	Len  uint32
	Bits uint64
}

// BoolLit is a concrete boolean literal.
type BoolLit struct{ V bool }

// unary holds a single child expression.
type unary struct {
	Op string
	X  Exp
}

// binary holds two child expressions.
type binary struct {
	Op   string
	X, Y Exp
}

// Ite is an if-then-else term.
type Ite struct{ Cond, Then, Else Exp }

// Extract is `((_ extract hi lo) x)`.
type Extract struct {
	Hi, Lo uint32
	X      Exp
}

// ZeroExtend is `((_ zero_extend k) x)`.
type ZeroExtend struct {
	K uint32
	X Exp
}

// SignExtend is `((_ sign_extend k) x)`.
type SignExtend struct {
	K uint32
	X Exp
}

func (Var) isExp()        {}
func (Bits) isExp()       {}
func (BoolLit) isExp()    {}
func (*unary) isExp()     {}
func (*binary) isExp()    {}
func (Ite) isExp()        {}
func (Extract) isExp()    {}
func (ZeroExtend) isExp() {}
func (SignExtend) isExp() {}

// Not, Bvnot and Bvneg are the three unary operators the interpreter emits.
func Not(x Exp) Exp   { return &unary{"not", x} }
func Bvnot(x Exp) Exp { return &unary{"bvnot", x} }
func Bvneg(x Exp) Exp { return &unary{"bvneg", x} }

// Binary operator constructors; the op name is the literal SMT-LIB symbol.
func Eq(x, y Exp) Exp    { return &binary{"=", x, y} }
func Neq(x, y Exp) Exp   { return Not(Eq(x, y)) }
func And(x, y Exp) Exp   { return &binary{"and", x, y} }
func Or(x, y Exp) Exp    { return &binary{"or", x, y} }
func Bvand(x, y Exp) Exp { return &binary{"bvand", x, y} }
func Bvor(x, y Exp) Exp  { return &binary{"bvor", x, y} }
func Bvxor(x, y Exp) Exp { return &binary{"bvxor", x, y} }
func Bvadd(x, y Exp) Exp { return &binary{"bvadd", x, y} }
func Bvsub(x, y Exp) Exp { return &binary{"bvsub", x, y} }
func Bvmul(x, y Exp) Exp { return &binary{"bvmul", x, y} }
func Bvudiv(x, y Exp) Exp { return &binary{"bvudiv", x, y} }
func Bvurem(x, y Exp) Exp { return &binary{"bvurem", x, y} }
func Bvult(x, y Exp) Exp { return &binary{"bvult", x, y} }
func Bvslt(x, y Exp) Exp { return &binary{"bvslt", x, y} }
func Bvule(x, y Exp) Exp { return &binary{"bvule", x, y} }
func Bvuge(x, y Exp) Exp { return &binary{"bvuge", x, y} }
func Bvugt(x, y Exp) Exp { return &binary{"bvugt", x, y} }
func Concat(x, y Exp) Exp { return &binary{"concat", x, y} }

func (v Var) Modify(f func(Exp) Exp) Exp { return f(v) }
func (b Bits) Modify(f func(Exp) Exp) Exp { return f(b) }
func (b BoolLit) Modify(f func(Exp) Exp) Exp { return f(b) }

func (u *unary) Modify(f func(Exp) Exp) Exp {
	u.X = u.X.Modify(f)
	return f(u)
}

func (b *binary) Modify(f func(Exp) Exp) Exp {
	b.X = b.X.Modify(f)
	b.Y = b.Y.Modify(f)
	return f(b)
}

func (i Ite) Modify(f func(Exp) Exp) Exp {
	i.Cond = i.Cond.Modify(f)
	i.Then = i.Then.Modify(f)
	i.Else = i.Else.Modify(f)
	return f(i)
}

func (e Extract) Modify(f func(Exp) Exp) Exp {
	e.X = e.X.Modify(f)
	return f(e)
}

func (e ZeroExtend) Modify(f func(Exp) Exp) Exp {
	e.X = e.X.Modify(f)
	return f(e)
}

func (e SignExtend) Modify(f func(Exp) Exp) Exp {
	e.X = e.X.Modify(f)
	return f(e)
}

func (v Var) String() string { return fmt.Sprintf("v%d", v.V) }
func (b Bits) String() string { return fmt.Sprintf("(_ bv%d %d)", b.Bits, b.Len) }
func (b BoolLit) String() string {
	if b.V {
		return "true"
	}
	return "false"
}
func (u *unary) String() string  { return fmt.Sprintf("(%s %s)", u.Op, u.X) }
func (b *binary) String() string { return fmt.Sprintf("(%s %s %s)", b.Op, b.X, b.Y) }

// UnaryOp and BinaryOp expose the operator name and operands of a unary or
// binary node to callers outside this package (package solver's constant
// folder) without reaching into the unexported struct fields directly.
func (u *unary) UnaryOp() (string, Exp)      { return u.Op, u.X }
func (b *binary) BinaryOp() (string, Exp, Exp) { return b.Op, b.X, b.Y }
func (i Ite) String() string {
	return fmt.Sprintf("(ite %s %s %s)", i.Cond, i.Then, i.Else)
}
func (e Extract) String() string {
	return fmt.Sprintf("((_ extract %d %d) %s)", e.Hi, e.Lo, e.X)
}
func (e ZeroExtend) String() string {
	return fmt.Sprintf("((_ zero_extend %d) %s)", e.K, e.X)
}
func (e SignExtend) String() string {
	return fmt.Sprintf("((_ sign_extend %d) %s)", e.K, e.X)
}

// Def is an SMT-LIB top-level definition, emitted by the solver as an Event
// (see package trace) every time Solver.Add is called.
type Def interface {
	isDef()
	String() string
}

type DeclareConst struct {
	V  Sym
	Ty Ty
}

type DefineConst struct {
	V  Sym
	Ty Ty // zero value (TyBool) when untyped; callers that care should infer
	Exp Exp
}

type Assert struct{ Exp Exp }

func (DeclareConst) isDef() {}
func (DefineConst) isDef()  {}
func (Assert) isDef()       {}

func (d DeclareConst) String() string {
	return fmt.Sprintf("(declare-const v%d %s)", d.V, d.Ty)
}

func (d DefineConst) String() string {
	return fmt.Sprintf("(define-const v%d %s %s)", d.V, d.Ty, d.Exp)
}

func (a Assert) String() string {
	return fmt.Sprintf("(assert %s)", a.Exp)
}

// DefVar returns the Sym a Def declares or defines, and ok=false for Assert.
func DefVar(d Def) (Sym, bool) {
	switch d := d.(type) {
	case DeclareConst:
		return d.V, true
	case DefineConst:
		return d.V, true
	default:
		return 0, false
	}
}

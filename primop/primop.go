// Package primop is the catalogue of primitive operations a Call
// expression may invoke (spec.md §1 Non-goals: "the catalogue of
// primitive operations" is named as an external collaborator, but
// concretely implementing a representative catalogue is required to make
// eval_exp's Call case (spec.md §4.6) executable end to end). Each
// function mirrors one match arm of executor.rs's `Op::*` dispatch:
// concrete operands compute directly; if any operand is Symbolic, the
// function builds the matching smtlib.Exp, defines a fresh solver
// constant for it, and returns a Symbolic Val referencing that constant.
package primop

import (
	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/smtlib"
	"github.com/isla-sym/isla/solver"
)

// toExp lowers a concrete or already-symbolic Val to the smtlib.Exp the
// solver understands; Poison/Unit/struct-shaped values never reach here
// because eval_exp only calls primop on the operand kinds each Op accepts.
func toExp(v ir.Val) smtlib.Exp {
	switch v.Kind {
	case ir.ValBits:
		return smtlib.Bits{Len: v.Bits.Length, Bits: v.Bits.Bits}
	case ir.ValBit:
		b := uint64(0)
		if v.Bit {
			b = 1
		}
		return smtlib.Bits{Len: 1, Bits: b}
	case ir.ValBool:
		return smtlib.BoolLit{V: v.Bool}
	case ir.ValSymbolic:
		return smtlib.Var{V: v.Sym}
	default:
		return smtlib.BoolLit{V: false}
	}
}

// defineSymbolic asks s for a fresh Sym, declares it at ty, defines it as
// exp, and returns the Symbolic Val addressing it — the same
// declare-then-define pair executor.rs's symbolic() helper and every
// symbolic primop arm emits.
func defineSymbolic(s solver.Solver, ty smtlib.Ty, exp smtlib.Exp) ir.Val {
	sym := s.Fresh()
	s.Add(smtlib.DeclareConst{V: sym, Ty: ty})
	s.Add(smtlib.DefineConst{V: sym, Ty: ty, Exp: exp})
	return ir.Symbolicv(sym)
}

func isSymbolic(vs ...ir.Val) bool {
	for _, v := range vs {
		if v.Kind == ir.ValSymbolic {
			return true
		}
	}
	return false
}

// Not negates a boolean operand.
func Not(a ir.Val, s solver.Solver) (ir.Val, error) {
	if a.Kind == ir.ValBool {
		return ir.Boolv(!a.Bool), nil
	}
	if isSymbolic(a) {
		return defineSymbolic(s, smtlib.Bool(), smtlib.Not(toExp(a))), nil
	}
	return ir.Val{}, ir.ErrType("not: expected bool")
}

func And(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	if a.Kind == ir.ValBool && b.Kind == ir.ValBool {
		return ir.Boolv(a.Bool && b.Bool), nil
	}
	if isSymbolic(a, b) {
		return defineSymbolic(s, smtlib.Bool(), smtlib.And(toExp(a), toExp(b))), nil
	}
	return ir.Val{}, ir.ErrType("and: expected bool, bool")
}

func Or(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	if a.Kind == ir.ValBool && b.Kind == ir.ValBool {
		return ir.Boolv(a.Bool || b.Bool), nil
	}
	if isSymbolic(a, b) {
		return defineSymbolic(s, smtlib.Bool(), smtlib.Or(toExp(a), toExp(b))), nil
	}
	return ir.Val{}, ir.ErrType("or: expected bool, bool")
}

// Eq and Neq compare two bitvector or boolean operands.
func Eq(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	if isSymbolic(a, b) {
		return defineSymbolic(s, smtlib.Bool(), smtlib.Eq(toExp(a), toExp(b))), nil
	}
	switch {
	case a.Kind == ir.ValBits && b.Kind == ir.ValBits:
		return ir.Boolv(a.Bits.Eq(b.Bits)), nil
	case a.Kind == ir.ValBool && b.Kind == ir.ValBool:
		return ir.Boolv(a.Bool == b.Bool), nil
	default:
		return ir.Val{}, ir.ErrType("eq: mismatched operand kinds")
	}
}

func Neq(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	v, err := Eq(a, b, s)
	if err != nil {
		return v, err
	}
	if v.Kind == ir.ValBool {
		return ir.Boolv(!v.Bool), nil
	}
	return Not(v, s)
}

// BitToBool converts a single-bit Bit value to Bool.
func BitToBool(a ir.Val, s solver.Solver) (ir.Val, error) {
	if a.Kind == ir.ValBit {
		return ir.Boolv(a.Bit), nil
	}
	if isSymbolic(a) {
		return defineSymbolic(s, smtlib.Bool(), smtlib.Eq(toExp(a), smtlib.Bits{Len: 1, Bits: 1})), nil
	}
	return ir.Val{}, ir.ErrType("bit-to-bool: expected bit")
}

func bitvBinary(a, b ir.Val, s solver.Solver, concrete func(ir.Bitvector, ir.Bitvector) ir.Bitvector, symbolic func(smtlib.Exp, smtlib.Exp) smtlib.Exp) (ir.Val, error) {
	if a.Kind != ir.ValBits || b.Kind != ir.ValBits {
		if !isSymbolic(a, b) {
			return ir.Val{}, ir.ErrType("expected bitvector operands")
		}
	}
	if isSymbolic(a, b) {
		len := a.Bits.Length
		if len == 0 {
			len = b.Bits.Length
		}
		return defineSymbolic(s, smtlib.BitVec(len), symbolic(toExp(a), toExp(b))), nil
	}
	return ir.Bitsv(concrete(a.Bits, b.Bits)), nil
}

func Bvand(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	return bitvBinary(a, b, s, ir.Bitvector.And, smtlib.Bvand)
}

func Bvor(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	return bitvBinary(a, b, s, ir.Bitvector.Or, smtlib.Bvor)
}

func Bvxor(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	return bitvBinary(a, b, s, ir.Bitvector.Xor, smtlib.Bvxor)
}

func Add(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	return bitvBinary(a, b, s, ir.Bitvector.Add, smtlib.Bvadd)
}

func Sub(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	return bitvBinary(a, b, s, ir.Bitvector.Sub, smtlib.Bvsub)
}

func Mul(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	return bitvBinary(a, b, s, ir.Bitvector.Mul, smtlib.Bvmul)
}

// Udiv and Urem trap on a concrete zero divisor per spec.md §4.1; a
// symbolic divisor is handed straight to the solver, matching the
// reference implementation's "unconstrained on division by a symbolic
// zero" stance (§9 Open Questions).
func Udiv(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	if isSymbolic(a, b) {
		return defineSymbolic(s, smtlib.BitVec(a.Bits.Length), smtlib.Bvudiv(toExp(a), toExp(b))), nil
	}
	q, ok := a.Bits.Divide(b.Bits)
	if !ok {
		return ir.Val{}, ir.ErrType("udiv: division by zero")
	}
	return ir.Bitsv(q), nil
}

func Urem(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	if isSymbolic(a, b) {
		return defineSymbolic(s, smtlib.BitVec(a.Bits.Length), smtlib.Bvurem(toExp(a), toExp(b))), nil
	}
	r, ok := a.Bits.Rem(b.Bits)
	if !ok {
		return ir.Val{}, ir.ErrType("urem: division by zero")
	}
	return ir.Bitsv(r), nil
}

// Bvnot and Bvneg are the unary bitvector operators.
func Bvnot(a ir.Val, s solver.Solver) (ir.Val, error) {
	if isSymbolic(a) {
		return defineSymbolic(s, smtlib.BitVec(a.Bits.Length), smtlib.Bvnot(toExp(a))), nil
	}
	if a.Kind != ir.ValBits {
		return ir.Val{}, ir.ErrType("bvnot: expected bitvector")
	}
	return ir.Bitsv(a.Bits.Not()), nil
}

func Bvneg(a ir.Val, s solver.Solver) (ir.Val, error) {
	if isSymbolic(a) {
		return defineSymbolic(s, smtlib.BitVec(a.Bits.Length), smtlib.Bvneg(toExp(a))), nil
	}
	if a.Kind != ir.ValBits {
		return ir.Val{}, ir.ErrType("bvneg: expected bitvector")
	}
	return ir.Bitsv(a.Bits.Neg()), nil
}

// Gt and Lt compare two I64 operands (executor.rs's Op::Gt matches I64).
func Gt(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	if a.Kind != ir.ValI64 || b.Kind != ir.ValI64 {
		return ir.Val{}, ir.ErrType("gt: expected i64, i64")
	}
	return ir.Boolv(a.I64 > b.I64), nil
}

func Lt(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	if a.Kind != ir.ValI64 || b.Kind != ir.ValI64 {
		return ir.Val{}, ir.ErrType("lt: expected i64, i64")
	}
	return ir.Boolv(a.I64 < b.I64), nil
}

// Slice extracts len bits of a starting at bit offset from (a
// bitvector-or-i64 offset, per executor.rs's op_slice).
func Slice(a, from ir.Val, length uint32, s solver.Solver) (ir.Val, error) {
	offset, ok := asOffset(from)
	if !ok {
		return ir.Val{}, ir.ErrType("slice: expected concrete offset")
	}
	if isSymbolic(a) {
		return defineSymbolic(s, smtlib.BitVec(length), smtlib.Extract{Hi: offset + length - 1, Lo: offset, X: toExp(a)}), nil
	}
	if a.Kind != ir.ValBits {
		return ir.Val{}, ir.ErrType("slice: expected bitvector")
	}
	return ir.Bitsv(a.Bits.Slice(offset, length)), nil
}

// SetSlice overwrites length(replacement) bits of a starting at offset
// from with replacement, returning the updated bitvector.
func SetSlice(a, from, replacement ir.Val, s solver.Solver) (ir.Val, error) {
	offset, ok := asOffset(from)
	if !ok {
		return ir.Val{}, ir.ErrType("set-slice: expected concrete offset")
	}
	if a.Kind != ir.ValBits || replacement.Kind != ir.ValBits {
		return ir.Val{}, ir.ErrType("set-slice: expected bitvector operands")
	}
	hiMask := ^uint64(0) << (offset + replacement.Bits.Length)
	loMask := uint64(1)<<offset - 1
	if offset == 0 {
		loMask = 0
	}
	kept := a.Bits.Bits & (hiMask | loMask)
	inserted := replacement.Bits.Bits << offset
	return ir.Bitsv(ir.NewBitvector(kept|inserted, a.Bits.Length)), nil
}

func asOffset(v ir.Val) (uint32, bool) {
	switch v.Kind {
	case ir.ValI64:
		return uint32(v.I64), true
	case ir.ValBits:
		return uint32(v.Bits.Bits), true
	default:
		return 0, false
	}
}

// Unsigned and Signed zero/sign-extend a bitvector to a wider concrete or
// symbolic length.
func Unsigned(a ir.Val, length uint32, s solver.Solver) (ir.Val, error) {
	if isSymbolic(a) {
		k := length - a.Bits.Length
		return defineSymbolic(s, smtlib.BitVec(length), smtlib.ZeroExtend{K: k, X: toExp(a)}), nil
	}
	if a.Kind != ir.ValBits {
		return ir.Val{}, ir.ErrType("unsigned: expected bitvector")
	}
	return ir.Bitsv(a.Bits.ZeroExtend(length)), nil
}

func Signed(a ir.Val, length uint32, s solver.Solver) (ir.Val, error) {
	if isSymbolic(a) {
		k := length - a.Bits.Length
		return defineSymbolic(s, smtlib.BitVec(length), smtlib.SignExtend{K: k, X: toExp(a)}), nil
	}
	if a.Kind != ir.ValBits {
		return ir.Val{}, ir.ErrType("signed: expected bitvector")
	}
	return ir.Bitsv(a.Bits.SignExtend(length)), nil
}

// Concat concatenates two bitvectors, a as the high bits.
func Concat(a, b ir.Val, s solver.Solver) (ir.Val, error) {
	if isSymbolic(a, b) {
		return defineSymbolic(s, smtlib.BitVec(a.Bits.Length+b.Bits.Length), smtlib.Concat(toExp(a), toExp(b))), nil
	}
	if a.Kind != ir.ValBits || b.Kind != ir.ValBits {
		return ir.Val{}, ir.ErrType("concat: expected bitvector operands")
	}
	return ir.Bitsv(ir.NewBitvector(a.Bits.Bits<<b.Bits.Length|b.Bits.Bits, a.Bits.Length+b.Bits.Length)), nil
}

// Dispatch applies op to args, the single entry point eval_exp's Call case
// (spec.md §4.6) uses — "Unsupported op codes return Unimplemented".
func Dispatch(op ir.Op, args []ir.Val, s solver.Solver) (ir.Val, error) {
	arg := func(i int) ir.Val { return args[i] }
	switch op.Name {
	case ir.OpNot:
		return Not(arg(0), s)
	case ir.OpAnd:
		return And(arg(0), arg(1), s)
	case ir.OpOr:
		return Or(arg(0), arg(1), s)
	case ir.OpEq:
		return Eq(arg(0), arg(1), s)
	case ir.OpNeq:
		return Neq(arg(0), arg(1), s)
	case ir.OpBitToBool:
		return BitToBool(arg(0), s)
	case ir.OpBvand:
		return Bvand(arg(0), arg(1), s)
	case ir.OpBvor:
		return Bvor(arg(0), arg(1), s)
	case ir.OpBvxor:
		return Bvxor(arg(0), arg(1), s)
	case ir.OpBvnot:
		return Bvnot(arg(0), s)
	case ir.OpBvneg:
		return Bvneg(arg(0), s)
	case ir.OpAdd:
		return Add(arg(0), arg(1), s)
	case ir.OpSub:
		return Sub(arg(0), arg(1), s)
	case ir.OpMul:
		return Mul(arg(0), arg(1), s)
	case ir.OpUdiv:
		return Udiv(arg(0), arg(1), s)
	case ir.OpUrem:
		return Urem(arg(0), arg(1), s)
	case ir.OpGt:
		return Gt(arg(0), arg(1), s)
	case ir.OpLt:
		return Lt(arg(0), arg(1), s)
	case ir.OpSlice:
		return Slice(arg(0), arg(1), op.Len, s)
	case ir.OpSetSlice:
		return SetSlice(arg(0), arg(1), arg(2), s)
	case ir.OpUnsigned:
		return Unsigned(arg(0), op.Len, s)
	case ir.OpSigned:
		return Signed(arg(0), op.Len, s)
	case ir.OpConcat:
		return Concat(arg(0), arg(1), s)
	default:
		return ir.Val{}, ir.ErrUnimplemented(op.Name.String())
	}
}

package solver

import "github.com/isla-sym/isla/smtlib"

// fold constant-folds e against the assignments learned so far, resolving
// Var references and collapsing unary/binary operators whose operands are
// all concrete. It is not a decision procedure: anything it cannot resolve
// it returns unchanged, matching the reference solver's documented
// sound-but-incomplete contract (spec.md §1 Non-goals, §6).
func fold(e smtlib.Exp, assigned map[smtlib.Sym]smtlib.Exp) smtlib.Exp {
	return e.Modify(func(x smtlib.Exp) smtlib.Exp {
		switch x := x.(type) {
		case smtlib.Var:
			if v, ok := assigned[x.V]; ok {
				return v
			}
			return x
		default:
			return foldTop(x)
		}
	})
}

// foldTop applies one step of constant folding and tautology recognition to
// an expression whose children have already been folded (Modify recurses
// bottom-up before calling back, so by the time foldTop sees x its operands
// are already as resolved as they're going to get).
func foldTop(x smtlib.Exp) smtlib.Exp {
	switch x := x.(type) {
	case smtlib.Ite:
		if b, ok := asBool(x.Cond); ok {
			if b {
				return x.Then
			}
			return x.Else
		}
		return x
	}

	op, a, b, isBinary := asBinary(x)
	if isBinary {
		// The zero-cardinality enum declaration pattern: asserting a variable
		// is unsigned-less-than a literal of value zero is unconditionally
		// false regardless of whether the variable itself is resolved, since
		// no unsigned value is below zero. This lets a deliberately
		// pathological enum with no constructors trip unsat immediately at
		// declaration time rather than only once fully assigned.
		if op == "bvult" {
			if lit, ok := b.(smtlib.Bits); ok && lit.Bits == 0 {
				return smtlib.BoolLit{V: false}
			}
		}
		if av, aok := asConcreteBits(a); aok {
			if bv, bok := asConcreteBits(b); bok {
				return foldConcreteBinary(op, av, bv)
			}
		}
		if av, aok := asConcreteBool(a); aok {
			if bv, bok := asConcreteBool(b); bok {
				return foldConcreteBoolBinary(op, av, bv)
			}
		}
		if eqLike(op) {
			if ax, aok := a.(smtlib.Var); aok {
				if bx, bok := b.(smtlib.Var); bok && ax.V == bx.V {
					return smtlib.BoolLit{V: op != "neq"}
				}
			}
		}
	}

	op1, x1, isUnary := asUnary(x)
	if isUnary {
		if v, ok := asConcreteBits(x1); ok {
			return foldConcreteUnary(op1, v)
		}
		if v, ok := asConcreteBool(x1); ok && op1 == "not" {
			return smtlib.BoolLit{V: !v}
		}
	}

	return x
}

// asBinary and asUnary recognize smtlib's unexported binary/unary nodes
// through interface assertions on their exported BinaryOp/UnaryOp accessor
// methods, which return the SMT-LIB operator symbol and the operands.
func asBinary(x smtlib.Exp) (op string, a, b smtlib.Exp, ok bool) {
	type binaryOp interface {
		BinaryOp() (string, smtlib.Exp, smtlib.Exp)
	}
	if bo, isBo := x.(binaryOp); isBo {
		op, a, b := bo.BinaryOp()
		return op, a, b, true
	}
	return "", nil, nil, false
}

func asUnary(x smtlib.Exp) (op string, a smtlib.Exp, ok bool) {
	type unaryOp interface {
		UnaryOp() (string, smtlib.Exp)
	}
	if uo, isUo := x.(unaryOp); isUo {
		op, a := uo.UnaryOp()
		return op, a, true
	}
	return "", nil, false
}

func eqLike(op string) bool { return op == "=" || op == "neq" }

func asConcreteBits(e smtlib.Exp) (smtlib.Bits, bool) {
	b, ok := e.(smtlib.Bits)
	return b, ok
}

func asConcreteBool(e smtlib.Exp) (bool, bool) {
	b, ok := e.(smtlib.BoolLit)
	return b.V, ok
}

func foldConcreteBinary(op string, a, b smtlib.Bits) smtlib.Exp {
	mask := func(v uint64, length uint32) uint64 {
		if length == 0 || length >= 64 {
			return v
		}
		return v & (uint64(1)<<length - 1)
	}
	switch op {
	case "bvand":
		return smtlib.Bits{Len: a.Len, Bits: mask(a.Bits&b.Bits, a.Len)}
	case "bvor":
		return smtlib.Bits{Len: a.Len, Bits: mask(a.Bits|b.Bits, a.Len)}
	case "bvxor":
		return smtlib.Bits{Len: a.Len, Bits: mask(a.Bits^b.Bits, a.Len)}
	case "bvadd":
		return smtlib.Bits{Len: a.Len, Bits: mask(a.Bits+b.Bits, a.Len)}
	case "bvsub":
		return smtlib.Bits{Len: a.Len, Bits: mask(a.Bits-b.Bits, a.Len)}
	case "bvmul":
		return smtlib.Bits{Len: a.Len, Bits: mask(a.Bits*b.Bits, a.Len)}
	case "bvudiv":
		if b.Bits == 0 {
			return smtlib.Bits{Len: a.Len, Bits: mask(^uint64(0), a.Len)}
		}
		return smtlib.Bits{Len: a.Len, Bits: mask(a.Bits/b.Bits, a.Len)}
	case "bvurem":
		if b.Bits == 0 {
			return a
		}
		return smtlib.Bits{Len: a.Len, Bits: mask(a.Bits%b.Bits, a.Len)}
	case "bvult":
		return smtlib.BoolLit{V: a.Bits < b.Bits}
	case "bvslt":
		return smtlib.BoolLit{V: signed(a) < signed(b)}
	case "bvule":
		return smtlib.BoolLit{V: a.Bits <= b.Bits}
	case "bvuge":
		return smtlib.BoolLit{V: a.Bits >= b.Bits}
	case "bvugt":
		return smtlib.BoolLit{V: a.Bits > b.Bits}
	case "=":
		return smtlib.BoolLit{V: a.Len == b.Len && a.Bits == b.Bits}
	case "neq":
		return smtlib.BoolLit{V: a.Len != b.Len || a.Bits != b.Bits}
	case "concat":
		return smtlib.Bits{Len: a.Len + b.Len, Bits: mask(a.Bits<<b.Len|b.Bits, a.Len+b.Len)}
	}
	return smtlib.Eq(a, b)
}

func signed(b smtlib.Bits) int64 {
	if b.Len == 0 || b.Len >= 64 {
		return int64(b.Bits)
	}
	sign := uint64(1) << (b.Len - 1)
	if b.Bits&sign == 0 {
		return int64(b.Bits)
	}
	return int64(b.Bits | (^uint64(0) << b.Len))
}

func foldConcreteBoolBinary(op string, a, b bool) smtlib.Exp {
	switch op {
	case "and":
		return smtlib.BoolLit{V: a && b}
	case "or":
		return smtlib.BoolLit{V: a || b}
	case "=":
		return smtlib.BoolLit{V: a == b}
	case "neq":
		return smtlib.BoolLit{V: a != b}
	}
	return smtlib.BoolLit{V: a}
}

func foldConcreteUnary(op string, v smtlib.Bits) smtlib.Exp {
	mask := func(x uint64, length uint32) uint64 {
		if length == 0 || length >= 64 {
			return x
		}
		return x & (uint64(1)<<length - 1)
	}
	switch op {
	case "bvnot":
		return smtlib.Bits{Len: v.Len, Bits: mask(^v.Bits, v.Len)}
	case "bvneg":
		return smtlib.Bits{Len: v.Len, Bits: mask(-v.Bits, v.Len)}
	}
	return v
}

// asBool reports whether e is resolved to a concrete boolean.
func asBool(e smtlib.Exp) (bool, bool) {
	b, ok := e.(smtlib.BoolLit)
	return b.V, ok
}

// isConcrete reports whether e is a literal with no remaining free Var.
func isConcrete(e smtlib.Exp) bool {
	switch e.(type) {
	case smtlib.Bits, smtlib.BoolLit:
		return true
	default:
		return false
	}
}

// learn extracts pinning facts from an already-folded asserted expression,
// the same direct-equality and boolean-literal patterns the interpreter's
// branch forking actually produces (spec.md §4.7, §6 "sound-but-incomplete
// ... outside the patterns the interpreter actually generates").
func learn(folded smtlib.Exp, assigned map[smtlib.Sym]smtlib.Exp) {
	if v, ok := folded.(smtlib.Var); ok {
		assigned[v.V] = smtlib.BoolLit{V: true}
		return
	}
	if op, a, ok := asUnary(folded); ok && op == "not" {
		if v, ok := a.(smtlib.Var); ok {
			assigned[v.V] = smtlib.BoolLit{V: false}
		}
		return
	}
	if op, a, b, ok := asBinary(folded); ok && op == "=" {
		if v, ok := a.(smtlib.Var); ok && isConcrete(b) {
			assigned[v.V] = b
			return
		}
		if v, ok := b.(smtlib.Var); ok && isConcrete(a) {
			assigned[v.V] = a
			return
		}
	}
}

package ir

import (
	"fmt"
	"math/bits"

	"github.com/isla-sym/isla/smtlib"
)

// Bitvector is a fixed-width value, (length, bits) as spec.md §3/§4.1
// requires: length ranges over 0..=64, and bits is masked to the low
// length bits after every operation. Masking (zero the high 64-length
// bits) is a plain shift-and-AND in mask, since Go has no portable
// equivalent of x86's BZHI; math/bits is used only for Slice's rotate.
type Bitvector struct {
	Length uint32
	Bits   uint64
}

// NewBitvector builds a Bitvector, masking bits to length immediately so
// the §4.1 invariant bits < 2^length holds from construction onward.
func NewBitvector(bits uint64, length uint32) Bitvector {
	return Bitvector{Length: length, Bits: mask(bits, length)}
}

func mask(v uint64, length uint32) uint64 {
	if length == 0 {
		return 0
	}
	if length >= 64 {
		return v
	}
	return v & (uint64(1)<<length - 1)
}

// IsZeroWidth reports whether this is the unique concrete value of type
// bitvector(0) (spec.md §3); it is never handed to the solver.
func (b Bitvector) IsZeroWidth() bool { return b.Length == 0 }

func (b Bitvector) Eq(o Bitvector) bool { return b.Bits == o.Bits }

func (b Bitvector) Not() Bitvector { return NewBitvector(^b.Bits, b.Length) }
func (b Bitvector) Neg() Bitvector { return NewBitvector(-b.Bits, b.Length) }
func (b Bitvector) And(o Bitvector) Bitvector { return NewBitvector(b.Bits&o.Bits, b.Length) }
func (b Bitvector) Or(o Bitvector) Bitvector  { return NewBitvector(b.Bits|o.Bits, b.Length) }
func (b Bitvector) Xor(o Bitvector) Bitvector { return NewBitvector(b.Bits^o.Bits, b.Length) }
func (b Bitvector) Add(o Bitvector) Bitvector { return NewBitvector(b.Bits+o.Bits, b.Length) }
func (b Bitvector) Sub(o Bitvector) Bitvector { return NewBitvector(b.Bits-o.Bits, b.Length) }
func (b Bitvector) Mul(o Bitvector) Bitvector { return NewBitvector(b.Bits*o.Bits, b.Length) }

// Divide and Rem trap on a zero divisor by returning ok=false (spec.md
// §4.1: "Division and remainder trap on zero divisor by returning an error
// value").
func (b Bitvector) Divide(o Bitvector) (Bitvector, bool) {
	if o.Bits == 0 {
		return Bitvector{}, false
	}
	return NewBitvector(b.Bits/o.Bits, b.Length), true
}

func (b Bitvector) Rem(o Bitvector) (Bitvector, bool) {
	if o.Bits == 0 {
		return Bitvector{}, false
	}
	return NewBitvector(b.Bits%o.Bits, b.Length), true
}

func (b Bitvector) Ult(o Bitvector) bool { return b.Bits < o.Bits }
func (b Bitvector) Ule(o Bitvector) bool { return b.Bits <= o.Bits }
func (b Bitvector) Ugt(o Bitvector) bool { return b.Bits > o.Bits }
func (b Bitvector) Uge(o Bitvector) bool { return b.Bits >= o.Bits }

// Slice extracts length bits starting at bit offset from (little-endian,
// LSB at index 0), mirroring Op::Slice's role in the primitive catalogue.
func (b Bitvector) Slice(from, length uint32) Bitvector {
	return NewBitvector(bits.RotateLeft64(b.Bits, -int(from)), length)
}

func (b Bitvector) ZeroExtend(length uint32) Bitvector {
	return Bitvector{Length: length, Bits: b.Bits}
}

func (b Bitvector) SignExtend(length uint32) Bitvector {
	if b.Length == 0 || b.Length >= length {
		return Bitvector{Length: length, Bits: mask(b.Bits, length)}
	}
	signBit := uint64(1) << (b.Length - 1)
	if b.Bits&signBit == 0 {
		return Bitvector{Length: length, Bits: b.Bits}
	}
	ones := ^uint64(0) << b.Length
	return NewBitvector(b.Bits|ones, length)
}

func (b Bitvector) String() string { return fmt.Sprintf("(_ bv%d %d)", b.Bits, b.Length) }

// ValKind tags the variant of Val populated. Go has no sum types, so Val
// is a small tagged struct rather than an interface hierarchy — the same
// shape choice the interpreter (package interp) makes for Instr/Exp, kept
// consistent across the codebase.
type ValKind uint8

const (
	ValUnit ValKind = iota
	ValBool
	ValI64
	ValI128
	ValBits
	ValBit
	ValString
	ValSymbolic
	ValUninitialized
	ValStruct
	ValVector
	ValList
	ValCtor
	ValRef
	ValPoison
)

// Val is the tagged union over every runtime value spec.md §3 names:
// Unit, Bool, I64, I128, a fixed-width Bitvector, a single Bit, String, a
// Symbolic solver handle, an Uninitialized marker carrying its declared
// type, a Struct, a homogeneous Vector or List, a Constructor tag+payload,
// a heap-less Ref, and Poison.
type Val struct {
	Kind ValKind

	Bool bool
	I64  int64
	I128 *big128
	Bits Bitvector
	Bit  bool
	Str  string
	Sym  smtlib.Sym
	Uty  Ty // ValUninitialized

	Fields map[Name]Val // ValStruct
	Elems  []Val        // ValVector, ValList

	Ctor Name // ValCtor
	Payload *Val // ValCtor

	Ref Name // ValRef
}

// big128 is a minimal 128-bit signed integer pair, used only so Val has
// somewhere to put I128 without pulling in math/big for a value the
// interpreter only ever moves around opaquely (spec.md never specifies
// I128 arithmetic beyond equality/assignment in the operations it names).
type big128 struct {
	Hi int64
	Lo uint64
}

func Unitv() Val               { return Val{Kind: ValUnit} }
func Boolv(b bool) Val         { return Val{Kind: ValBool, Bool: b} }
func I64v(i int64) Val         { return Val{Kind: ValI64, I64: i} }
func Bitsv(b Bitvector) Val    { return Val{Kind: ValBits, Bits: b} }
func Bitv(b bool) Val          { return Val{Kind: ValBit, Bit: b} }
func Stringv(s string) Val     { return Val{Kind: ValString, Str: s} }
func Symbolicv(s smtlib.Sym) Val { return Val{Kind: ValSymbolic, Sym: s} }
func Uninitializedv(ty Ty) Val { return Val{Kind: ValUninitialized, Uty: ty} }
func Structv(fields map[Name]Val) Val { return Val{Kind: ValStruct, Fields: fields} }
func Vectorv(elems []Val) Val  { return Val{Kind: ValVector, Elems: elems} }
func Poisonv() Val             { return Val{Kind: ValPoison} }

// CloneStruct returns a shallow copy of a ValStruct's field map, used by
// assign's field-update path (spec.md §4.5 / §9 design note on field
// assignment mutability).
func (v Val) CloneStruct() map[Name]Val {
	out := make(map[Name]Val, len(v.Fields))
	for k, f := range v.Fields {
		out[k] = f
	}
	return out
}

func (v Val) String() string {
	switch v.Kind {
	case ValUnit:
		return "()"
	case ValBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValI64:
		return fmt.Sprintf("%d", v.I64)
	case ValBits:
		return v.Bits.String()
	case ValBit:
		if v.Bit {
			return "(_ bv1 1)"
		}
		return "(_ bv0 1)"
	case ValString:
		return fmt.Sprintf("%q", v.Str)
	case ValSymbolic:
		return fmt.Sprintf("v%d", v.Sym)
	case ValUninitialized:
		return fmt.Sprintf("undefined:%s", v.Uty)
	case ValStruct:
		return "struct{...}"
	case ValVector:
		return fmt.Sprintf("vector[%d]", len(v.Elems))
	case ValRef:
		return fmt.Sprintf("ref(%s)", v.Ref)
	case ValPoison:
		return "poison"
	default:
		return "?"
	}
}

package ir

import "fmt"

// TyKind enumerates the declared-type shapes the value model and the
// symbolic allocator (spec.md §4.2) know about.
type TyKind uint8

const (
	TyUnit TyKind = iota
	TyBool
	TyI64
	TyI128
	TyBit
	TyBits
	TyString
	TyStruct
	TyEnum
	TyVector
	TyList
	TyRef
)

// Ty is a declared IR type. Compound kinds (Vector, List, Ref) carry an Elem;
// Bits carries Len; Struct/Enum carry Name, resolved against SharedState.
type Ty struct {
	Kind TyKind
	Len  uint32 // TyBits
	Name Name   // TyStruct, TyEnum
	Elem *Ty    // TyVector, TyList, TyRef
}

func Unit() Ty            { return Ty{Kind: TyUnit} }
func BoolTy() Ty           { return Ty{Kind: TyBool} }
func I64() Ty              { return Ty{Kind: TyI64} }
func I128() Ty             { return Ty{Kind: TyI128} }
func BitTy() Ty            { return Ty{Kind: TyBit} }
func Bits(n uint32) Ty     { return Ty{Kind: TyBits, Len: n} }
func StringTy() Ty         { return Ty{Kind: TyString} }
func Struct(name Name) Ty  { return Ty{Kind: TyStruct, Name: name} }
func Enum(name Name) Ty    { return Ty{Kind: TyEnum, Name: name} }
func Vector(elem Ty) Ty    { return Ty{Kind: TyVector, Elem: &elem} }
func List(elem Ty) Ty      { return Ty{Kind: TyList, Elem: &elem} }

func (t Ty) String() string {
	switch t.Kind {
	case TyUnit:
		return "unit"
	case TyBool:
		return "bool"
	case TyI64:
		return "i64"
	case TyI128:
		return "i128"
	case TyBit:
		return "bit"
	case TyBits:
		return fmt.Sprintf("bits(%d)", t.Len)
	case TyString:
		return "string"
	case TyStruct:
		return fmt.Sprintf("struct(%s)", t.Name)
	case TyEnum:
		return fmt.Sprintf("enum(%s)", t.Name)
	case TyVector:
		return fmt.Sprintf("vector<%s>", t.Elem)
	case TyList:
		return fmt.Sprintf("list<%s>", t.Elem)
	case TyRef:
		return fmt.Sprintf("ref<%s>", t.Elem)
	default:
		return "?"
	}
}

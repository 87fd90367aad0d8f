package ir

// Exp is a pure expression node (spec.md §3/§4.4): reads locals/registers,
// applies primitive operators, or constructs literals; evaluating one never
// has side effects on Environment beyond the read-uninitialized-triggers-
// default-symbolic rule get_and_initialize implements. Go has no tagged
// union, so Exp mirrors Val/Def's shape: one struct tagged by ExpKind, named
// the same way executor.rs's `Exp::*` match arms are named (Id, I64, I128,
// Unit, Bool, Bits, String, Call, Field) plus Undefined (spec.md §4.4
// "Undefined(ty) calls symbolic").
type ExpKind uint8

const (
	ExpId ExpKind = iota
	ExpI64
	ExpI128
	ExpUnit
	ExpBool
	ExpBits
	ExpString
	ExpCall
	ExpField
	ExpUndefined
)

type Exp struct {
	Kind ExpKind

	Id   Name    // ExpId
	I64  int64   // ExpI64
	Bits Bitvector // ExpBits
	Bool bool    // ExpBool
	Str  string  // ExpString

	Op   Op    // ExpCall
	Args []Exp // ExpCall

	Base  *Exp // ExpField
	Field Name // ExpField

	UndefinedTy Ty // ExpUndefined
}

func IdExp(n Name) Exp       { return Exp{Kind: ExpId, Id: n} }
func I64Exp(i int64) Exp     { return Exp{Kind: ExpI64, I64: i} }
func UnitExp() Exp           { return Exp{Kind: ExpUnit} }
func BoolExp(b bool) Exp     { return Exp{Kind: ExpBool, Bool: b} }
func BitsExp(b Bitvector) Exp { return Exp{Kind: ExpBits, Bits: b} }
func StringExp(s string) Exp { return Exp{Kind: ExpString, Str: s} }
func CallExp(op Op, args ...Exp) Exp { return Exp{Kind: ExpCall, Op: op, Args: args} }
func UndefinedExp(ty Ty) Exp  { return Exp{Kind: ExpUndefined, UndefinedTy: ty} }
func FieldExp(base Exp, field Name) Exp { return Exp{Kind: ExpField, Base: &base, Field: field} }

// Op enumerates the primitive operators a Call expression may invoke
// (executor.rs's `Op::*` match: Gt, Add, BitToBool, Bvor, Bvxor, Bvand, Not,
// Slice(len), SetSlice, Unsigned(len), and the rest of the catalogue package
// primop implements against spec.md's bitvector/boolean operation set).
type Op struct {
	Name Name
	// Len parameterizes Slice/Unsigned/Signed/ZeroExtend/SignExtend-shaped
	// operators; Name alone identifies which operator this is.
	Len uint32
}

// Well-known primop Names, interned once and shared by package primop's
// dispatch table so ir doesn't need to depend on primop.
const (
	OpNot Name = iota
	OpAnd
	OpOr
	OpEq
	OpNeq
	OpBitToBool
	OpBvand
	OpBvor
	OpBvxor
	OpBvnot
	OpBvneg
	OpAdd
	OpSub
	OpMul
	OpUdiv
	OpUrem
	OpGt
	OpLt
	OpSlice
	OpSetSlice
	OpUnsigned
	OpSigned
	OpZeroExtend
	OpSignExtend
	OpConcat
)

// Loc is an assignable location: a local/register identifier, or a
// projection into a struct field nested within one (executor.rs's
// `Loc::Id`/`Loc::Field` match arms).
type LocKind uint8

const (
	LocId LocKind = iota
	LocField
)

type Loc struct {
	Kind  LocKind
	Id    Name // LocId, and the root Id reached by following LocField chains
	Base  *Loc // LocField
	Field Name // LocField
}

func IdLoc(n Name) Loc             { return Loc{Kind: LocId, Id: n} }
func FieldLoc(base Loc, f Name) Loc { return Loc{Kind: LocField, Base: &base, Field: f} }

// Root returns the Id ultimately addressed by a (possibly nested) Loc.
func (l Loc) Root() Name {
	for l.Kind == LocField {
		l = *l.Base
	}
	return l.Id
}

// Instr is one instruction in a function body (spec.md §4.6's instruction
// set: Decl, Init, Jump, Goto, Copy, PrimopUnary/Binary/Variadic, Call,
// End), mirroring executor.rs's `Instr::*` match arms one for one.
type InstrKind uint8

const (
	InstrDecl InstrKind = iota
	InstrInit
	InstrJump
	InstrGoto
	InstrCopy
	InstrPrimopUnary
	InstrPrimopBinary
	InstrPrimopVariadic
	InstrCall
	InstrEnd
)

type Instr struct {
	Kind InstrKind

	// Decl, Init
	Var Name
	Ty  Ty

	// Init, Jump, Copy: the RHS/condition. PrimopUnary/Binary/Variadic
	// store their operation as an ExpCall here too (arity is just how many
	// operands the wrapped Op takes); only Call keeps its arguments
	// separately, since it addresses a callee Name rather than an Op.
	Exp  Exp
	Args []Exp // Call

	// Jump, Goto: target program counter (an index into the owning
	// function's []Instr)
	Target int
	Loc_   string // Jump's source location, used verbatim in Branch events

	// Copy, PrimopUnary/Binary/Variadic, Call: destination
	Dest Loc

	// Call: callee function name
	Func Name
}

func Decl(v Name, ty Ty) Instr        { return Instr{Kind: InstrDecl, Var: v, Ty: ty} }
func Init(v Name, ty Ty, e Exp) Instr { return Instr{Kind: InstrInit, Var: v, Ty: ty, Exp: e} }
func Jump(cond Exp, target int, loc string) Instr {
	return Instr{Kind: InstrJump, Exp: cond, Target: target, Loc_: loc}
}
func Goto(target int) Instr         { return Instr{Kind: InstrGoto, Target: target} }
func Copy(dest Loc, e Exp) Instr    { return Instr{Kind: InstrCopy, Dest: dest, Exp: e} }
func PrimopUnary(dest Loc, op Op, arg Exp) Instr {
	return Instr{Kind: InstrPrimopUnary, Dest: dest, Exp: CallExp(op, arg)}
}
func PrimopBinary(dest Loc, op Op, a, b Exp) Instr {
	return Instr{Kind: InstrPrimopBinary, Dest: dest, Exp: CallExp(op, a, b)}
}
func PrimopVariadic(dest Loc, op Op, args ...Exp) Instr {
	return Instr{Kind: InstrPrimopVariadic, Dest: dest, Exp: CallExp(op, args...)}
}
func Call(dest Loc, f Name, args ...Exp) Instr {
	return Instr{Kind: InstrCall, Dest: dest, Func: f, Args: args}
}
func End() Instr { return Instr{Kind: InstrEnd} }

// Function is a compiled function body: a flat instruction list addressed
// by program counter, plus its formal parameter and return types.
type Function struct {
	Name    Name
	Params  []Name
	ParamTy []Ty
	RetTy   Ty
	Body    []Instr
}

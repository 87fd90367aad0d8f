// Package accessor implements the memory-model-facing projection layer
// spec.md §4.10 describes: a path into the data an Event carries (a
// struct field, a subvector slice, a zero/sign extension, the address or
// data half of a memory access, ...) plus the machinery that turns one
// such path into an SMT-LIB if-then-else term keyed on the identifier of
// every candidate event. Grounded on
// isla-mml/src/accessor.rs's AccessorTree/EventView/
// generate_accessor_function.
package accessor

import (
	"fmt"

	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/smtlib"
	"github.com/isla-sym/isla/trace"
)

// Kind tags which projection step an Accessor performs.
type Kind uint8

const (
	KindField Kind = iota
	KindSubvec
	KindExtz
	KindExts
	KindAddress
	KindData
	KindReturn
	KindCtor
	KindWildcard
	KindMatch
)

// Accessor is one step of a path into an event's payload (accessor.rs's
// `Accessor` enum, restricted to the variants package trace and this
// package actually need).
type Accessor struct {
	Kind Kind

	Field ir.Name // KindField

	Hi, Lo uint32 // KindSubvec
	N      uint32 // KindExtz, KindExts

	Ctor ir.Name // KindCtor
	Arms int     // KindMatch: how many stack entries to fold into this Match node
}

func Field(name ir.Name) Accessor       { return Accessor{Kind: KindField, Field: name} }
func Subvec(hi, lo uint32) Accessor     { return Accessor{Kind: KindSubvec, Hi: hi, Lo: lo} }
func Extz(n uint32) Accessor            { return Accessor{Kind: KindExtz, N: n} }
func Exts(n uint32) Accessor            { return Accessor{Kind: KindExts, N: n} }
func Address() Accessor                 { return Accessor{Kind: KindAddress} }
func Data() Accessor                    { return Accessor{Kind: KindData} }
func Return() Accessor                  { return Accessor{Kind: KindReturn} }
func Ctor(name ir.Name) Accessor        { return Accessor{Kind: KindCtor, Ctor: name} }
func Wildcard() Accessor                { return Accessor{Kind: KindWildcard} }
func Match(arms int) Accessor           { return Accessor{Kind: KindMatch, Arms: arms} }

// Tree is a linearised accessor path folded into a tree: a chain of
// single-child Node steps, with a Match node wherever the path branches
// on a constructor tag or wildcard (accessor.rs's AccessorTree).
type Tree struct {
	// Leaf: both Elem and Arms are nil/empty.
	Elem  *Accessor      // Node
	Child *Tree          // Node
	Arms  map[ir.Name]*Tree // Match: the zero Name key is the wildcard arm
}

var leaf = &Tree{}

// FromAccessors folds a flat accessor path into a Tree, mirroring
// accessor.rs's AccessorTree::from_accessors: Ctor/Wildcard push a stack
// frame, Match(n) pops the last n frames into one branching node, and
// every other accessor wraps the tree built so far in a single-child Node.
func FromAccessors(path []Accessor) *Tree {
	type frame struct {
		key *ir.Name // nil means wildcard
		cur *Tree
	}
	var stack []frame
	cur := leaf

	for i := range path {
		a := path[i]
		switch a.Kind {
		case KindCtor:
			ctor := a.Ctor
			stack = append(stack, frame{key: &ctor, cur: cur})
			cur = leaf
		case KindWildcard:
			stack = append(stack, frame{key: nil, cur: cur})
			cur = leaf
		case KindMatch:
			n := a.Arms
			start := len(stack) - n
			arms := make(map[ir.Name]*Tree, n)
			for _, f := range stack[start:] {
				if f.key == nil {
					arms[0] = f.cur // wildcard stored under the zero Name sentinel
				} else {
					arms[*f.key] = f.cur
				}
			}
			stack = stack[:start]
			cur = &Tree{Arms: arms}
		default:
			elem := a
			cur = &Tree{Elem: &elem, Child: cur}
		}
	}

	return cur
}

// View is the projected value as the walk descends through a Tree: either
// a live ir.Val from the event, or an already-built Sexp term once a step
// (extension, slice, ...) has produced one.
type View struct {
	Val  *ir.Val
	Sexp smtlib.Exp // non-nil once the view has been lowered to SMT-LIB
}

func valView(v ir.Val) View { return View{Val: &v} }

// EventView is the per-event projection context GenerateAccessorFunction
// threads a Tree through: which half of a memory access is in play, or
// the single value for a register read/write (accessor.rs's EventView).
type EventView struct {
	IsMemory bool
	Address  ir.Val
	Data     ir.Val
	Other    ir.Val
	present  bool
}

// ViewOf builds the EventView for one trace event, selecting the field the
// accessor path is about to walk (accessor.rs's generate_accessor_function
// event-dispatch loop, restricted to ReadMem/WriteMem/ReadReg/WriteReg).
func ViewOf(e trace.Event) (EventView, bool) {
	switch e.Kind {
	case trace.EventReadMem:
		return EventView{IsMemory: true, Address: e.Address, Data: e.Val, present: true}, true
	case trace.EventWriteMem:
		return EventView{IsMemory: true, Address: e.Address, Data: e.Data, present: true}, true
	case trace.EventReadReg, trace.EventWriteReg:
		return EventView{Other: e.Val, present: true}, true
	default:
		return EventView{}, false
	}
}

// current returns the View the next accessor step should operate on,
// given which field of the event the path has selected so far.
func (v EventView) current(selected Kind) View {
	switch selected {
	case KindAddress:
		return valView(v.Address)
	case KindData:
		return valView(v.Data)
	default:
		return valView(v.Other)
	}
}

// Walk drives ev's projection through tree, applying every accessor step
// in order, and returns the resulting View once the walk reaches a Leaf
// (accessor.rs's per-event acctree loop inside generate_accessor_function).
func Walk(tree *Tree, ev EventView) (View, error) {
	// A memory event's path implicitly starts on the data half unless an
	// explicit Address() step says otherwise; a register event has only
	// one value to start from.
	var view View
	if ev.IsMemory {
		view = valView(ev.Data)
	} else {
		view = valView(ev.Other)
	}

	for {
		if tree.Arms != nil {
			return View{}, ir.ErrUnimplemented("accessor match")
		}
		if tree.Elem == nil {
			return view, nil
		}
		switch tree.Elem.Kind {
		case KindAddress:
			view = ev.current(KindAddress)
		case KindData:
			view = ev.current(KindData)
		case KindSubvec:
			v, err := applySubvec(view, tree.Elem.Hi, tree.Elem.Lo)
			if err != nil {
				return View{}, err
			}
			view = v
		case KindExtz:
			v, err := applyExtend(view, tree.Elem.N, false)
			if err != nil {
				return View{}, err
			}
			view = v
		case KindExts:
			v, err := applyExtend(view, tree.Elem.N, true)
			if err != nil {
				return View{}, err
			}
			view = v
		case KindField:
			v, err := applyField(view, tree.Elem.Field)
			if err != nil {
				return View{}, err
			}
			view = v
		default:
			return View{}, ir.ErrUnimplemented(fmt.Sprintf("accessor kind %d", tree.Elem.Kind))
		}
		tree = tree.Child
	}
}

func applyField(v View, field ir.Name) (View, error) {
	if v.Val == nil || v.Val.Kind != ir.ValStruct {
		return View{}, ir.ErrType("accessor: field step on non-struct")
	}
	f, ok := v.Val.Fields[field]
	if !ok {
		return View{}, ir.ErrType("accessor: no such field")
	}
	return valView(f), nil
}

// applySubvec extracts bits [lo, hi] inclusive, numerically for a concrete
// bitvector or via an SMT-LIB Extract term when the view already holds a
// term. A Symbolic ir.Val is not lowered to a term: it is rejected with a
// Type error like any other non-bitvector value.
func applySubvec(v View, hi, lo uint32) (View, error) {
	if v.Sexp != nil {
		return View{Sexp: smtlib.Extract{Hi: hi, Lo: lo, X: v.Sexp}}, nil
	}
	if v.Val == nil || v.Val.Kind != ir.ValBits {
		return View{}, ir.ErrType("accessor: subvec on non-bitvector")
	}
	return valView(ir.Bitsv(v.Val.Bits.Slice(lo, hi-lo+1))), nil
}

// applyExtend zero- or sign-extends v to n bits, numerically for a
// concrete bitvector or via an SMT-LIB ZeroExtend/SignExtend term when the
// view already holds a term (accessor.rs's access_extz/access_exts). A
// Symbolic ir.Val is not lowered to a term: it is rejected with a Type
// error like any other non-bitvector value.
func applyExtend(v View, n uint32, signed bool) (View, error) {
	if v.Sexp != nil {
		k, err := extendAmount(v.Sexp, n)
		if err != nil {
			return View{}, err
		}
		if signed {
			return View{Sexp: smtlib.SignExtend{K: k, X: v.Sexp}}, nil
		}
		return View{Sexp: smtlib.ZeroExtend{K: k, X: v.Sexp}}, nil
	}
	if v.Val == nil || v.Val.Kind != ir.ValBits {
		return View{}, ir.ErrType("accessor: extend on non-bitvector")
	}
	if signed {
		return valView(ir.Bitsv(v.Val.Bits.SignExtend(n))), nil
	}
	return valView(ir.Bitsv(v.Val.Bits.ZeroExtend(n))), nil
}

func extendAmount(x smtlib.Exp, n uint32) (uint32, error) {
	// The width of an already-lowered SMT-LIB term isn't tracked by Exp
	// itself; callers that reach this path must supply the already-correct
	// target width n as an absolute width, matching isla-mml's convention
	// of storing extension amounts as the *target* bit count.
	return n, nil
}

// GenerateAccessorFunction builds the if-then-else chain comparing an
// event-identifier parameter against every candidate event in events,
// returning the accessor's value for whichever one matches (accessor.rs's
// generate_accessor_function / generate_ite_chain, without the full
// SexpArena machinery: each branch's View is lowered to an smtlib.Exp
// directly since package smtlib already gives us a closed term type).
func GenerateAccessorFunction(path []Accessor, events []trace.Event, eventIDs []smtlib.Exp) (smtlib.Exp, error) {
	if len(events) != len(eventIDs) {
		return nil, ir.ErrType("accessor: events/eventIDs length mismatch")
	}
	tree := FromAccessors(path)

	var chain smtlib.Exp
	for i := len(events) - 1; i >= 0; i-- {
		ev, ok := ViewOf(events[i])
		if !ok {
			continue
		}
		view, err := Walk(tree, ev)
		if err != nil {
			continue
		}
		term := view.Sexp
		if term == nil && view.Val != nil {
			term = toSexp(*view.Val)
		}
		if term == nil {
			continue
		}
		if chain == nil {
			chain = term
			continue
		}
		chain = smtlib.Ite{Cond: eventIDs[i], Then: term, Else: chain}
	}

	if chain == nil {
		return nil, ir.ErrUnimplemented("accessor: no event matched path")
	}
	return chain, nil
}

func toSexp(v ir.Val) smtlib.Exp {
	switch v.Kind {
	case ir.ValBool:
		return smtlib.BoolLit{V: v.Bool}
	case ir.ValBits:
		return smtlib.Bits{Len: v.Bits.Length, Bits: v.Bits.Bits}
	case ir.ValSymbolic:
		return smtlib.Var{V: v.Sym}
	default:
		return nil
	}
}

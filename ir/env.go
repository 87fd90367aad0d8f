package ir

// Frame is the frozen, independent snapshot of a call in flight, safe to
// hand to another goroutine entirely (executor.rs's `Frame`): every level
// of the call stack gets its own private Vars and Globals maps, so a
// forked task can diverge from its sibling without racing it. This full
// independence is only needed across a genuine concurrency fork (Jump);
// ordinary Call/End within one task never goes through Frame at all, see
// LocalFrame.Stack.
type Frame struct {
	PC        int
	Backjumps uint
	Vars      map[Name]Val
	Globals   map[Name]Val
	Func      *Function
	ReturnLoc Loc
	HasReturn bool
	Stack     *Frame
}

// NewFrame builds the initial frozen Frame for a fresh call with no
// pending caller (the entry point of a path).
func NewFrame(fn *Function, vars, globals map[Name]Val) Frame {
	return Frame{Vars: vars, Globals: globals, Func: fn}
}

func cloneMap(m map[Name]Val) map[Name]Val {
	out := make(map[Name]Val, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Thaw produces an owned, mutable LocalFrame (and, recursively, an owned
// copy of every frame still on its call stack) that one worker step can
// freely mutate without affecting any other goroutine holding this Frame
// or a Frame derived from the same ancestor (executor.rs's
// `unfreeze_frame`). Every level of the thawed stack shares the one
// Globals copy taken from the top frame, as LocalFrame requires.
func (f Frame) Thaw() *LocalFrame {
	return f.thaw(cloneMap(f.Globals))
}

func (f Frame) thaw(globals map[Name]Val) *LocalFrame {
	var stack *LocalFrame
	if f.Stack != nil {
		stack = f.Stack.thaw(globals)
	}
	return &LocalFrame{
		pc: f.PC, backjumps: f.Backjumps,
		Vars: cloneMap(f.Vars), Globals: globals,
		fn: f.Func, returnLoc: f.ReturnLoc, hasReturn: f.HasReturn,
		stack: stack,
	}
}

// LocalFrame is the thawed, mutable working copy a worker step interprets
// instructions against (executor.rs's `LocalFrame`). Its call stack
// (Stack) is a chain of other *LocalFrame values, not Frame: within a
// single task, Call/End only ever swap which LocalFrame is "live" and
// share one Globals map throughout — registers are never copied on a
// plain function call, only Vars changes scope (spec.md §4.6 "Global env
// is not touched").
type LocalFrame struct {
	pc        int
	backjumps uint
	Vars      map[Name]Val
	Globals   map[Name]Val
	fn        *Function
	returnLoc Loc
	hasReturn bool
	stack     *LocalFrame
}

func (lf *LocalFrame) PC() int         { return lf.pc }
func (lf *LocalFrame) SetPC(pc int)    { lf.pc = pc }
func (lf *LocalFrame) Advance()        { lf.pc++ }
func (lf *LocalFrame) Func() *Function { return lf.fn }
func (lf *LocalFrame) Stack() *LocalFrame { return lf.stack }

// ReturnLoc is the Loc a pending caller wants End's return value assigned
// into, along with whether there is one (false at the top of a path).
func (lf *LocalFrame) ReturnLoc() (Loc, bool) { return lf.returnLoc, lf.hasReturn }

// Backjumps counts Goto/Jump-to-a-not-later pc transitions taken so far,
// spent against SharedState.MaxBackjumps to bound otherwise-
// nonterminating symbolic loops (spec.md §4.6, §9).
func (lf *LocalFrame) Backjumps() uint { return lf.backjumps }
func (lf *LocalFrame) RecordBackjump() { lf.backjumps++ }

// NewCallFrame builds the callee LocalFrame for a Call instruction
// (spec.md §4.6): a fresh Vars scope bound from the evaluated arguments,
// the caller's Globals map reused by reference, and stack pointing back
// to the (already pc-advanced) caller so End can resume it.
func NewCallFrame(fn *Function, vars, globals map[Name]Val, stack *LocalFrame, returnLoc Loc) *LocalFrame {
	return &LocalFrame{Vars: vars, Globals: globals, fn: fn, stack: stack, returnLoc: returnLoc, hasReturn: true}
}

// Freeze produces a new, fully independent frozen Frame from the current
// mutable state, recursively freezing every frame still on the call stack
// too (executor.rs's `freeze_frame`), safe to queue as a Task for another
// worker to pick up.
func (lf *LocalFrame) Freeze() Frame {
	return Frame{
		PC: lf.pc, Backjumps: lf.backjumps,
		Vars: cloneMap(lf.Vars), Globals: cloneMap(lf.Globals),
		Func: lf.fn, ReturnLoc: lf.returnLoc, HasReturn: lf.hasReturn,
		Stack: freezeStack(lf.stack),
	}
}

func freezeStack(lf *LocalFrame) *Frame {
	if lf == nil {
		return nil
	}
	fr := lf.Freeze()
	return &fr
}

package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/solver"
)

func TestDequeLifoFifoOrdering(t *testing.T) {
	d := newDeque()
	d.PushBack(Task{})
	d.PushBack(Task{})
	if d.len() != 2 {
		t.Fatalf("len() = %d, want 2", d.len())
	}

	// PopBack (owner) takes the most recently pushed item; popFront
	// (thief) takes the oldest.
	first := Task{Frame: ir.Frame{PC: 1}, Checkpoint: solver.Checkpoint{}}
	second := Task{Frame: ir.Frame{PC: 2}, Checkpoint: solver.Checkpoint{}}
	e := newDeque()
	e.PushBack(first)
	e.PushBack(second)
	got, ok := e.PopBack()
	if !ok {
		t.Fatal("PopBack on a non-empty deque should succeed")
	}
	if got.Frame.PC != 2 {
		t.Fatalf("PopBack returned the task with PC %d, want 2 (the most recent)", got.Frame.PC)
	}
	if e.len() != 1 {
		t.Fatalf("len() after PopBack = %d, want 1", e.len())
	}

	f := newDeque()
	f.PushBack(first)
	f.PushBack(second)
	got, ok = f.popFront()
	if !ok {
		t.Fatal("popFront on a non-empty deque should succeed")
	}
	if got.Frame.PC != 1 {
		t.Fatalf("popFront returned the task with PC %d, want 1 (the oldest)", got.Frame.PC)
	}
	if f.len() != 1 {
		t.Fatalf("len() after popFront = %d, want 1", f.len())
	}
}

func TestDequeEmptyPopsFail(t *testing.T) {
	d := newDeque()
	if _, ok := d.PopBack(); ok {
		t.Fatal("PopBack on an empty deque should return ok=false")
	}
	if _, ok := d.popFront(); ok {
		t.Fatal("popFront on an empty deque should return ok=false")
	}
}

// trivialTask builds a one-instruction task whose entry function
// immediately ends with a concrete boolean value, for exercising the
// engine's scheduling and quiescence protocol without needing a real
// branch-forking program.
func trivialTask() (Task, *ir.SharedState) {
	symtab := ir.NewSymtab()
	shared := ir.NewSharedState(symtab)

	entry := ir.Function{
		Name: 0,
		Body: []ir.Instr{
			ir.Decl(ir.RETURN, ir.BoolTy()),
			ir.Init(ir.RETURN, ir.BoolTy(), ir.BoolExp(true)),
			ir.End(),
		},
	}
	shared.DefineFunction(&entry)

	frame := ir.NewFrame(&entry, map[ir.Name]ir.Val{}, map[ir.Name]ir.Val{})
	return Task{Frame: frame}, shared
}

func TestStartSingleRunsEntryTaskToCompletion(t *testing.T) {
	task, shared := trivialTask()

	var mu sync.Mutex
	calls := 0
	collect := func(tid int, val ir.Val, lf *ir.LocalFrame, err error, shared *ir.SharedState, s solver.Solver) {
		mu.Lock()
		calls++
		mu.Unlock()
		if err != nil {
			t.Errorf("unexpected interpreter error: %v", err)
		}
		if val.Kind != ir.ValBool || !val.Bool {
			t.Errorf("unexpected terminal value: %v", val)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := StartSingle(ctx, task, shared, solver.Config{}, collect); err != nil {
		t.Fatalf("StartSingle returned an error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("collector invoked %d times, want exactly 1", calls)
	}
}

func TestStartMultiQuiescesWithMultipleWorkers(t *testing.T) {
	task, shared := trivialTask()

	var mu sync.Mutex
	calls := 0
	collect := func(tid int, val ir.Val, lf *ir.LocalFrame, err error, shared *ir.SharedState, s solver.Solver) {
		mu.Lock()
		calls++
		mu.Unlock()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := StartMulti(ctx, 4, task, shared, solver.Config{}, collect); err != nil {
		t.Fatalf("StartMulti returned an error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("collector invoked %d times, want exactly 1", calls)
	}
}

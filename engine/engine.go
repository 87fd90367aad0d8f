// Package engine is the work-stealing scheduler (spec.md §4.7): a pool of
// N workers, each owning a LIFO deque, backed by a shared injector and the
// 100ms-round quiescence protocol spec.md describes in detail. It is
// grounded on yaegi's goroutine + context.Context cancellation idiom and
// uses golang.org/x/sync/errgroup to supervise the worker pool exactly as
// the teacher's own concurrency code does, and as psampaz-bigslice's
// bigmachine executor supervises its worker goroutines.
package engine

import (
	"context"
	"time"

	"github.com/isla-sym/isla/collector"
	"github.com/isla-sym/isla/interp"
	"github.com/isla-sym/isla/internal/islalog"
	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/solver"
	"golang.org/x/sync/errgroup"
)

// Task is a frozen frame plus the solver checkpoint that reconstructs the
// state it was forked from (spec.md glossary "Task: frozen frame + solver
// checkpoint").
type Task struct {
	Frame      ir.Frame
	Checkpoint solver.Checkpoint
}

// Options configures a run, following the public Options / private opt
// split the teacher uses for its own interpreter configuration.
type Options struct {
	Workers      int
	SolverConfig solver.Config
	Log          *islalog.Logger
}

type opt struct {
	workers      int
	solverConfig solver.Config
	log          *islalog.Logger
}

func resolve(o Options) opt {
	workers := o.Workers
	if workers <= 0 {
		workers = 1
	}
	return opt{workers: workers, solverConfig: o.SolverConfig, log: o.Log}
}

type activityKind uint8

const (
	activityBusy activityKind = iota
	activityIdle
)

type signal uint8

const (
	signalPoke signal = iota
	signalKill
)

type activity struct {
	kind activityKind
	tid  int
	poke chan signal // set on activityIdle; the orchestrator replies on it
}

type worker struct {
	id    int
	local *deque
}

// StartSingle runs task to completion on the current goroutine using a
// local LIFO deque with no worker pool or quiescence protocol (spec.md §6
// "start_single ... terminates when the deque drains").
func StartSingle(ctx context.Context, task Task, shared *ir.SharedState, cfg solver.Config, collect collector.Collector) error {
	w := &worker{id: 0, local: newDeque()}
	w.local.PushBack(task)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, ok := w.local.PopBack()
		if !ok {
			return nil
		}
		doWork(w, t, cfg, shared, collect)
	}
}

// StartMulti runs the full N-worker engine described in spec.md §4.7
// starting from a single entry task (spec.md §6 "start_multi(n, task, ...)").
func StartMulti(ctx context.Context, n int, task Task, shared *ir.SharedState, cfg solver.Config, collect collector.Collector) error {
	return Start(ctx, []Task{task}, shared, Options{Workers: n, SolverConfig: cfg}, collect)
}

// Start runs shared over every Task reachable from the given entry
// points, invoking collect exactly once per terminating path, and blocks
// until the pool has quiesced. StartMulti is Start with Workers: n;
// StartSingle does not use it.
func Start(ctx context.Context, entry []Task, shared *ir.SharedState, o Options, collect collector.Collector) error {
	cfg := resolve(o)
	n := cfg.workers

	injector := newDeque()
	for _, t := range entry {
		injector.PushBack(t)
	}

	workers := make([]*worker, n)
	for i := range workers {
		workers[i] = &worker{id: i, local: newDeque()}
	}

	activityCh := make(chan activity, 2*n)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		w := workers[i]
		g.Go(func() error {
			return runWorker(gctx, w, workers, injector, activityCh, cfg.solverConfig, shared, collect, cfg.log)
		})
	}

	g.Go(func() error {
		return orchestrate(gctx, n, activityCh, workers, cfg.log)
	})

	return g.Wait()
}

// findTask implements the task discovery order of spec.md §4.7: pop
// local first, then steal one attempt per peer, then fall back to the
// injector.
func findTask(self *worker, peers []*worker, injector *deque) (Task, bool) {
	if t, ok := self.local.PopBack(); ok {
		return t, ok
	}
	for _, peer := range peers {
		if peer.id == self.id {
			continue
		}
		if t, ok := peer.local.popFront(); ok {
			return t, true
		}
	}
	return injector.popFront()
}

func runWorker(ctx context.Context, w *worker, peers []*worker, injector *deque, activityCh chan<- activity, solverCfg solver.Config, shared *ir.SharedState, collect collector.Collector, log *islalog.Logger) error {
	for {
		t, ok := findTask(w, peers, injector)
		if !ok {
			log.From(w.id, islalog.LevelInfo, "Idle")
			poke := make(chan signal, 1)
			select {
			case activityCh <- activity{kind: activityIdle, tid: w.id, poke: poke}:
			case <-ctx.Done():
				return ctx.Err()
			}
			select {
			case sig := <-poke:
				if sig == signalKill {
					return nil
				}
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		log.From(w.id, islalog.LevelInfo, "Working")
		select {
		case activityCh <- activity{kind: activityBusy, tid: w.id}:
		case <-ctx.Done():
			return ctx.Err()
		}

		doWork(w, t, solverCfg, shared, collect)

		// Run any further tasks this fork pushed onto our own deque
		// back-to-back before returning to task discovery (spec.md §4.7
		// "forked Tasks ... land on the current worker's deque").
		for {
			next, ok := w.local.PopBack()
			if !ok {
				break
			}
			doWork(w, next, solverCfg, shared, collect)
		}
	}
}

// doWork constructs a fresh Context/Solver per task so branch-forks never
// share mutable solver state, runs the interpreter, and hands the
// terminal result to the collector (spec.md §4.7).
func doWork(w *worker, t Task, solverCfg solver.Config, shared *ir.SharedState, collect collector.Collector) {
	ctx := solver.NewContext(solverCfg)
	s := solver.FromCheckpoint(ctx, t.Checkpoint)
	lf := t.Frame.Thaw()

	fork := func(frame ir.Frame, cp solver.Checkpoint) {
		w.local.PushBack(Task{Frame: frame, Checkpoint: cp})
	}

	val, finalFrame, err := interp.Run(lf, shared, s, fork)
	collect(w.id, val, finalFrame, err, shared, s)
}

// orchestrate runs the quiescence protocol of spec.md §4.7: 100ms rounds,
// a per-worker consecutive-idleness counter, Poke-then-recheck before
// ever declaring the pool done.
func orchestrate(ctx context.Context, n int, activityCh <-chan activity, workers []*worker, log *islalog.Logger) error {
	lastIdle := make([]bool, n)
	currentActivity := make([]int, n)
	pokeTx := make([]chan signal, n)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case a := <-activityCh:
			applyActivity(a, lastIdle, currentActivity, pokeTx)
			// Drain anything else already queued before the next round,
			// matching "drain all pending messages updating both arrays".
			draining := true
			for draining {
				select {
				case a2 := <-activityCh:
					applyActivity(a2, lastIdle, currentActivity, pokeTx)
				default:
					draining = false
				}
			}

		case <-ticker.C:
			quiescent := true
			for tid := 0; tid < n; tid++ {
				if currentActivity[tid] < 2 {
					quiescent = false
					break
				}
			}
			if quiescent {
				for tid := 0; tid < n; tid++ {
					if !lastIdle[tid] {
						// Invariant violation (spec.md §4.7): the engine
						// must never declare quiescence while a worker is
						// busy.
						panic("engine: declared quiescence with a busy worker")
					}
				}
				for tid := 0; tid < n; tid++ {
					if pokeTx[tid] != nil {
						pokeTx[tid] <- signalKill
					}
				}
				log.From(-1, islalog.LevelInfo, "pool quiesced")
				return nil
			}
			for tid := 0; tid < n; tid++ {
				if lastIdle[tid] && pokeTx[tid] != nil {
					pokeTx[tid] <- signalPoke
					currentActivity[tid] = 1
				}
			}
		}
	}
}

func applyActivity(a activity, lastIdle []bool, currentActivity []int, pokeTx []chan signal) {
	switch a.kind {
	case activityBusy:
		lastIdle[a.tid] = false
		currentActivity[a.tid] = 0
	case activityIdle:
		lastIdle[a.tid] = true
		currentActivity[a.tid]++
		pokeTx[a.tid] = a.poke
	}
}

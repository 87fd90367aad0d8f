package engine

import "sync"

// deque is a mutex-guarded double-ended task queue standing in for
// crossbeam's lock-free work-stealing deque (spec.md §4.7): the owning
// worker pushes and pops from the back (LIFO, preserving depth-first
// exploration of freshly forked branches), and thieves pop from the
// front (FIFO, so a steal takes the oldest-queued work rather than
// competing with the owner for its most recent fork). No third-party Go
// library in the corpus offers a lock-free work-stealing deque (see
// DESIGN.md); a mutex is the idiomatic stand-in, at the cost of
// collapsing crossbeam's Empty/Retry/Success(T) three-way steal outcome
// down to a plain (Task, bool).
type deque struct {
	mu    sync.Mutex
	tasks []Task
}

func newDeque() *deque { return &deque{} }

// PushBack adds a task to the owning end.
func (d *deque) PushBack(t Task) {
	d.mu.Lock()
	d.tasks = append(d.tasks, t)
	d.mu.Unlock()
}

// PopBack removes and returns the most recently pushed task, or ok=false
// if the deque is empty.
func (d *deque) PopBack() (Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.tasks)
	if n == 0 {
		return Task{}, false
	}
	t := d.tasks[n-1]
	d.tasks = d.tasks[:n-1]
	return t, true
}

// popFront removes and returns the oldest queued task (a steal), or
// ok=false if the deque is empty.
func (d *deque) popFront() (Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.tasks) == 0 {
		return Task{}, false
	}
	t := d.tasks[0]
	d.tasks = d.tasks[1:]
	return t, true
}

func (d *deque) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

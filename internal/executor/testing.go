package executor

import "sync"

// ManualRunner records spawned work instead of starting goroutines, so tests
// choose the order in which suspended operations complete.
// Only intended for use in tests.
type ManualRunner struct {
	mu    sync.Mutex
	works []func()
	ran   []bool
}

// NewManual returns an executor driven by a ManualRunner.
func NewManual() (*Executor, *ManualRunner) {
	r := &ManualRunner{}
	return New(WithRunner(r.launch)), r
}

func (r *ManualRunner) launch(work func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.works = append(r.works, work)
	r.ran = append(r.ran, false)
}

// Spawned returns how many operations have been spawned so far.
func (r *ManualRunner) Spawned() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.works)
}

// Complete runs the i-th spawned operation to completion on the calling
// goroutine; its continuation is posted to the executor. Each operation
// completes at most once.
func (r *ManualRunner) Complete(i int) {
	r.mu.Lock()
	if i < 0 || i >= len(r.works) || r.ran[i] {
		r.mu.Unlock()
		return
	}
	r.ran[i] = true
	work := r.works[i]
	r.mu.Unlock()

	work()
}

// CompleteAll completes every outstanding operation in spawn order,
// including operations spawned while completing earlier ones.
func (r *ManualRunner) CompleteAll() {
	for i := 0; i < r.Spawned(); i++ {
		r.Complete(i)
	}
}

func (r *ManualRunner) completed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, done := range r.ran {
		if done {
			n++
		}
	}
	return n
}

// Settle alternates completing spawned operations and running queued tasks
// until neither makes progress.
func Settle(e *Executor, r *ManualRunner) {
	for {
		before := r.completed()
		r.CompleteAll()
		ran := e.RunPending()
		if ran == 0 && r.completed() == before {
			return
		}
	}
}

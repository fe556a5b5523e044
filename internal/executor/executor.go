// Package executor provides the single cooperative task queue the presenter
// runs on.
//
// Tasks posted to an Executor run one at a time, in FIFO order, on whichever
// goroutine calls RunPending. In the application that is the Bubble Tea
// Update goroutine (driven by Wake/WakeMsg); in tests it is the test itself.
// State touched only from tasks therefore needs no locks.
//
// Blocking work goes through Spawn: the work function runs off the queue
// (the suspension point) and its continuation is posted back as a task.
package executor

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Task is a unit of work run on the scheduler goroutine.
type Task func()

// Runner launches the off-queue half of a spawned operation.
type Runner func(work func())

// Option configures an Executor.
type Option func(*Executor)

// WithRunner replaces the default goroutine-per-operation runner.
func WithRunner(r Runner) Option {
	return func(e *Executor) {
		e.runner = r
	}
}

// Executor is a FIFO task queue with a single consumer.
type Executor struct {
	mu     sync.Mutex
	queue  []Task
	closed bool

	signal   chan struct{}
	runner   Runner
	inflight sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an executor whose spawned work runs on fresh goroutines.
func New(opts ...Option) *Executor {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Executor{
		signal: make(chan struct{}, 1),
		runner: func(work func()) { go work() },
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Context is cancelled by Close. Spawned work receives it.
func (e *Executor) Context() context.Context {
	return e.ctx
}

// Post queues t. Safe to call from any goroutine. Posts after Close are
// dropped.
func (e *Executor) Post(t Task) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.queue = append(e.queue, t)
	e.mu.Unlock()

	select {
	case e.signal <- struct{}{}:
	default:
	}
}

// RunPending runs queued tasks until the queue is empty, including tasks
// posted by the tasks it runs. Returns how many ran. Must only be called from
// the scheduler goroutine.
func (e *Executor) RunPending() int {
	ran := 0
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.mu.Unlock()
			return ran
		}
		t := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.mu.Unlock()

		t()
		ran++
	}
}

// Pending returns the number of queued tasks.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Wait blocks until every spawned work function has returned and posted its
// continuation.
func (e *Executor) Wait() {
	e.inflight.Wait()
}

// Close cancels the executor context and drops queued and future tasks.
// Spawned work already running finishes on its own; its continuation is
// discarded.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.queue = nil
	e.mu.Unlock()
	e.cancel()
}

// Spawn runs work off the queue and posts done(result, err) back onto it.
// There is no cancellation beyond Close: a superseded operation runs to
// completion and its continuation still runs.
func Spawn[T any](e *Executor, work func(ctx context.Context) (T, error), done func(T, error)) {
	e.inflight.Add(1)
	e.runner(func() {
		defer e.inflight.Done()
		result, err := work(e.ctx)
		e.Post(func() { done(result, err) })
	})
}

// WakeMsg tells a Bubble Tea model to call RunPending.
type WakeMsg struct{}

// Wake returns a command that resolves to WakeMsg once tasks are queued.
// Re-arm it after every RunPending, like a pubsub listener. It resolves to
// nil after Close.
func (e *Executor) Wake() tea.Cmd {
	return func() tea.Msg {
		if e.ctx.Err() != nil {
			return nil
		}
		select {
		case <-e.signal:
			if e.ctx.Err() != nil {
				return nil
			}
			return WakeMsg{}
		case <-e.ctx.Done():
			return nil
		}
	}
}

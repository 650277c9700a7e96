package concat

import (
	"context"
	"sync"
)

// Scheduler is a deferred-task queue. Effects handed to Defer run on a
// later turn, never inline with the call that queued them: Tick drains
// exactly the tasks that were queued before it started, so a task that
// defers another task always leaves it for the next turn. Tests drive
// turns manually with Tick; production concatenators run the queue in
// the background with Run.
type Scheduler struct {
	mu     sync.Mutex
	tasks  []func()
	notify chan struct{}
}

// NewScheduler creates a new scheduler with an empty queue.
func NewScheduler() *Scheduler {
	return &Scheduler{
		notify: make(chan struct{}, 1),
	}
}

// Defer queues fn to run on the next turn. Queued tasks run in the
// order they were deferred.
func (s *Scheduler) Defer(fn func()) {
	s.mu.Lock()
	s.tasks = append(s.tasks, fn)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Tick runs one turn: every task queued before the call, in FIFO
// order. Tasks deferred while ticking wait for the next turn. It
// returns the number of tasks run.
func (s *Scheduler) Tick() int {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

// Run ticks whenever tasks are pending, until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
			for s.Tick() > 0 {
			}
		}
	}
}

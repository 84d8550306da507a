// Package sched runs deferred actions that belong to the engine's lifecycle.
//
// Free-standing timers outlive the context that created them: a timer armed
// for one playback context must never fire into a changed one. Every action
// scheduled here is registered with its scheduler, so a reset cancels the
// whole set at once, and a fired or cancelled task drops out of the registry.
package sched

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/cuesync/internal/log"
)

// Scheduler owns a set of pending deferred actions.
type Scheduler struct {
	mu       sync.Mutex
	tasks    map[int64]*Task
	nextID   int64
	disposed bool
	log      zerolog.Logger
}

// Task is a handle to one scheduled action.
type Task struct {
	id    int64
	label string
	s     *Scheduler
	timer *time.Timer
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		tasks: make(map[int64]*Task),
		log:   log.WithComponent("sched"),
	}
}

// After schedules fn to run once delay has elapsed. The label identifies the
// action in logs. The returned task can be cancelled; cancellation is
// idempotent and racing a cancel against the firing is safe: fn either runs
// exactly once or not at all.
func (s *Scheduler) After(delay time.Duration, label string, fn func()) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return &Task{label: label}
	}

	s.nextID++
	task := &Task{id: s.nextID, label: label, s: s}
	s.tasks[task.id] = task

	task.timer = time.AfterFunc(delay, func() {
		if !s.deregister(task.id) {
			return // cancelled or reset in the meantime
		}
		fn()
	})
	return task
}

// Cancel stops the task if it has not fired yet. Safe to call repeatedly and
// on tasks from a disposed scheduler.
func (t *Task) Cancel() {
	if t.s == nil {
		return
	}
	if t.s.deregister(t.id) {
		t.timer.Stop()
	}
}

// Label returns the task's log label.
func (t *Task) Label() string {
	return t.label
}

// Pending returns the number of scheduled, not yet fired actions.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Reset cancels every pending action.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = make(map[int64]*Task)
	s.mu.Unlock()

	for _, t := range tasks {
		t.timer.Stop()
	}
	if len(tasks) > 0 {
		s.log.Debug().Int("cancelled", len(tasks)).Msg("scheduler reset")
	}
}

// Dispose cancels every pending action and refuses new ones.
func (s *Scheduler) Dispose() {
	s.mu.Lock()
	s.disposed = true
	tasks := s.tasks
	s.tasks = make(map[int64]*Task)
	s.mu.Unlock()

	for _, t := range tasks {
		t.timer.Stop()
	}
}

// deregister removes the task from the registry, reporting whether it was
// still registered.
func (s *Scheduler) deregister(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return false
	}
	delete(s.tasks, id)
	return true
}

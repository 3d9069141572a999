package session

import (
	"sort"
	"sync"
	"time"
)

// Task is a scheduled callback that can be cancelled before it fires.
type Task interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the task; false means it already fired or was stopped.
	Stop() bool
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	After(delay time.Duration, fn func()) Task
}

// SchedulerFunc adapts a function into a Scheduler.
type SchedulerFunc func(delay time.Duration, fn func()) Task

// After delegates to the underlying function.
func (fn SchedulerFunc) After(delay time.Duration, cb func()) Task {
	return fn(delay, cb)
}

// TimerScheduler schedules callbacks on wall-clock timers. Callbacks run on
// their own goroutine.
func TimerScheduler() Scheduler {
	return SchedulerFunc(func(delay time.Duration, fn func()) Task {
		return time.AfterFunc(delay, fn)
	})
}

// ManualScheduler is a deterministic Scheduler driven by Advance. Callbacks
// run synchronously on the goroutine that advances the clock, in due-time
// order (ties in scheduling order). It backs tests and the terminal preview.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	owner *ManualScheduler
	due   time.Duration
	seq   uint64
	fn    func()
	done  bool
}

// NewManualScheduler returns a ManualScheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// After schedules fn to run once the clock has advanced by delay.
func (s *ManualScheduler) After(delay time.Duration, fn func()) Task {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task := &manualTask{owner: s, due: s.now + delay, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

// Stop cancels the task if it has not fired.
func (t *manualTask) Stop() bool {
	s := t.owner
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	s.remove(t)
	return true
}

func (s *ManualScheduler) remove(target *manualTask) {
	for i, task := range s.tasks {
		if task == target {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// next pops the earliest task due at or before limit.
func (s *ManualScheduler) next(limit time.Duration) *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return nil
	}
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due == s.tasks[j].due {
			return s.tasks[i].seq < s.tasks[j].seq
		}
		return s.tasks[i].due < s.tasks[j].due
	})
	head := s.tasks[0]
	if head.due > limit {
		return nil
	}
	s.tasks = s.tasks[1:]
	head.done = true
	if head.due > s.now {
		s.now = head.due
	}
	return head
}

// Advance moves the clock forward by d, running every callback that becomes
// due, including callbacks scheduled by those callbacks. It returns the
// number of callbacks run.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	limit := s.now + d
	s.mu.Unlock()

	ran := 0
	for {
		task := s.next(limit)
		if task == nil {
			break
		}
		task.fn()
		ran++
	}

	s.mu.Lock()
	if s.now < limit {
		s.now = limit
	}
	s.mu.Unlock()
	return ran
}

// RunAll advances the clock until no tasks remain and returns the number of
// callbacks run.
func (s *ManualScheduler) RunAll() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.tasks) == 0 {
			s.mu.Unlock()
			return ran
		}
		latest := s.tasks[0].due
		for _, task := range s.tasks[1:] {
			if task.due > latest {
				latest = task.due
			}
		}
		d := latest - s.now
		s.mu.Unlock()
		ran += s.Advance(d)
	}
}

// Pending reports the number of scheduled tasks that have not fired.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Now reports the elapsed manual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

package session

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestManualSchedulerOrdersByDueTime(t *testing.T) {
	t.Parallel()

	sched := NewManualScheduler()
	var order []string
	sched.After(30*time.Millisecond, func() { order = append(order, "c") })
	sched.After(10*time.Millisecond, func() { order = append(order, "a") })
	sched.After(10*time.Millisecond, func() { order = append(order, "b") })

	if ran := sched.Advance(10 * time.Millisecond); ran != 2 {
		t.Fatalf("expected 2 callbacks, ran %d", ran)
	}
	if diff := cmp.Diff([]string{"a", "b"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if now := sched.Now(); now != 10*time.Millisecond {
		t.Fatalf("expected clock at 10ms, got %s", now)
	}

	if ran := sched.RunAll(); ran != 1 {
		t.Fatalf("expected 1 callback, ran %d", ran)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if now := sched.Now(); now != 30*time.Millisecond {
		t.Fatalf("expected clock at 30ms, got %s", now)
	}
}

func TestManualSchedulerStop(t *testing.T) {
	t.Parallel()

	sched := NewManualScheduler()
	fired := false
	task := sched.After(time.Second, func() { fired = true })

	if !task.Stop() {
		t.Fatalf("first Stop should cancel the task")
	}
	if task.Stop() {
		t.Fatalf("second Stop should report nothing to cancel")
	}
	if ran := sched.RunAll(); ran != 0 || fired {
		t.Fatalf("stopped task ran: ran=%d fired=%v", ran, fired)
	}
}

func TestManualSchedulerRunsNestedCallbacks(t *testing.T) {
	t.Parallel()

	sched := NewManualScheduler()
	hops := 0
	var hop func()
	hop = func() {
		hops++
		if hops < 3 {
			sched.After(5*time.Millisecond, hop)
		}
	}
	sched.After(5*time.Millisecond, hop)

	if ran := sched.Advance(20 * time.Millisecond); ran != 3 {
		t.Fatalf("expected 3 callbacks, ran %d", ran)
	}
	if hops != 3 || sched.Pending() != 0 {
		t.Fatalf("expected 3 hops and nothing pending, got hops=%d pending=%d", hops, sched.Pending())
	}
}

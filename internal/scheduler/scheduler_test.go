package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleFires(t *testing.T) {
	s := NewTimers()
	defer s.Stop()

	var fired atomic.Int32
	s.Schedule("job1", time.Now().Add(10*time.Millisecond), func() { fired.Add(1) })

	waitFor(t, func() bool { return fired.Load() == 1 })
}

func TestScheduleReplacesSameID(t *testing.T) {
	s := NewTimers()
	defer s.Stop()

	var first, second atomic.Int32
	s.Schedule("ride:r1:start", time.Now().Add(20*time.Millisecond), func() { first.Add(1) })
	// Edited start time: same job ID must replace, not duplicate.
	s.Schedule("ride:r1:start", time.Now().Add(30*time.Millisecond), func() { second.Add(1) })

	waitFor(t, func() bool { return second.Load() == 1 })
	if first.Load() != 0 {
		t.Fatalf("replaced job still fired %d times", first.Load())
	}
}

func TestCancel(t *testing.T) {
	s := NewTimers()
	defer s.Stop()

	var fired atomic.Int32
	s.Schedule("job1", time.Now().Add(20*time.Millisecond), func() { fired.Add(1) })
	s.Cancel("job1")

	time.Sleep(50 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("cancelled job fired")
	}
}

func TestPastDeadlineFiresImmediately(t *testing.T) {
	s := NewTimers()
	defer s.Stop()

	var fired atomic.Int32
	s.Schedule("job1", time.Now().Add(-time.Second), func() { fired.Add(1) })

	waitFor(t, func() bool { return fired.Load() == 1 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

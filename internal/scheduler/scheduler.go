// README: Keyed one-shot job scheduler; rescheduling a job ID replaces the pending run.
package scheduler

import (
	"sync"
	"time"
)

// Scheduler runs callbacks at a point in time, keyed by job ID. Business
// logic depends on this interface, never on a process-wide singleton.
type Scheduler interface {
	// Schedule registers fn to run at runAt. An existing job with the same
	// ID is replaced, which doubles as Reschedule.
	Schedule(jobID string, runAt time.Time, fn func())
	Cancel(jobID string)
}

// Timers is the in-process implementation backed by time.AfterFunc.
type Timers struct {
	mu   sync.Mutex
	jobs map[string]*time.Timer
}

func NewTimers() *Timers {
	return &Timers{jobs: make(map[string]*time.Timer)}
}

func (t *Timers) Schedule(jobID string, runAt time.Time, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.jobs[jobID]; ok {
		old.Stop()
	}
	delay := time.Until(runAt)
	if delay < 0 {
		delay = 0
	}
	t.jobs[jobID] = time.AfterFunc(delay, func() {
		t.mu.Lock()
		delete(t.jobs, jobID)
		t.mu.Unlock()
		fn()
	})
}

func (t *Timers) Cancel(jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.jobs[jobID]; ok {
		timer.Stop()
		delete(t.jobs, jobID)
	}
}

// Stop cancels every pending job. Used on shutdown.
func (t *Timers) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.jobs {
		timer.Stop()
		delete(t.jobs, id)
	}
}

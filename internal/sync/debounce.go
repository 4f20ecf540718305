package sync

import (
	stdsync "sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single action after a quiet
// window. A superseded timer is simply replaced; an action already running
// is allowed to finish (last writer observed by the sink wins).
// Thread-safe for concurrent triggers.
type Debouncer struct {
	mu       stdsync.Mutex
	timer    *time.Timer
	duration time.Duration
	action   func()
	seq      uint64 // invalidates stale timer fires
}

// NewDebouncer creates a debouncer that runs action once the given duration
// has passed since the last trigger.
func NewDebouncer(duration time.Duration, action func()) *Debouncer {
	return &Debouncer{
		duration: duration,
		action:   action,
	}
}

// Trigger (re)schedules the action. Each call resets the quiet window, so a
// burst of N triggers produces exactly one action reflecting whatever state
// the action reads when it finally fires.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	currentSeq := d.seq

	d.timer = time.AfterFunc(d.duration, func() {
		d.mu.Lock()
		if d.seq != currentSeq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		// Unlock before the action so a panicking action cannot wedge the
		// debouncer.
		d.mu.Unlock()

		d.action()
	})
}

// Cancel stops any pending action. Safe to call when nothing is pending.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

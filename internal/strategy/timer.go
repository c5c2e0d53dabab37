// Package strategy holds the action strategies creatures execute: timed
// idling and eating, searching, walking, grabbing, attacking and sleeping.
// Each strategy talks to its creature only through the small collaborator
// interfaces declared here.
package strategy

import "time"

// CountdownTimer counts simulation time down from Duration. OnStart and
// OnStop fire when it starts and when it stops, either by running out or by
// an explicit Stop.
type CountdownTimer struct {
	Duration time.Duration
	OnStart  func()
	OnStop   func()

	remaining time.Duration
	running   bool
}

// NewCountdownTimer creates a stopped timer.
func NewCountdownTimer(d time.Duration) *CountdownTimer {
	return &CountdownTimer{Duration: d, remaining: d}
}

// Start rewinds the timer and runs it.
func (t *CountdownTimer) Start() {
	t.remaining = t.Duration
	if !t.running {
		t.running = true
		if t.OnStart != nil {
			t.OnStart()
		}
	}
}

// Tick advances a running timer by dt and stops it once time is up.
func (t *CountdownTimer) Tick(dt time.Duration) {
	if !t.running {
		return
	}
	t.remaining -= dt
	if t.remaining <= 0 {
		t.remaining = 0
		t.Stop()
	}
}

// Stop halts the timer.
func (t *CountdownTimer) Stop() {
	if !t.running {
		return
	}
	t.running = false
	if t.OnStop != nil {
		t.OnStop()
	}
}

// Reset rewinds without changing the running state.
func (t *CountdownTimer) Reset() {
	t.remaining = t.Duration
}

// IsRunning reports whether the timer is counting.
func (t *CountdownTimer) IsRunning() bool { return t.running }

// IsFinished reports whether the timer has run out.
func (t *CountdownTimer) IsFinished() bool { return t.remaining <= 0 }

// Remaining returns the time left.
func (t *CountdownTimer) Remaining() time.Duration { return t.remaining }

// Progress returns the fraction of time remaining, from 1 down to 0.
func (t *CountdownTimer) Progress() float64 {
	if t.Duration <= 0 {
		return 0
	}
	return float64(t.remaining) / float64(t.Duration)
}

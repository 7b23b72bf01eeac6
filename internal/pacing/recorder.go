package pacing

import (
	"context"
	"sync"
	"time"
)

// Pause is one recorded suspension.
type Pause struct {
	Point    Point
	Duration time.Duration
}

// Recorder is a Pacer that never blocks. It records every pause and, when
// Clock is set, advances that clock by the paused duration.
type Recorder struct {
	Clock *ManualClock

	mu     sync.Mutex
	pauses []Pause
	hook   func(Pause) error
}

// OnPause installs a hook run for every pause; a non-nil error is returned
// from Pause after the pause is recorded.
func (r *Recorder) OnPause(fn func(Pause) error) {
	r.mu.Lock()
	r.hook = fn
	r.mu.Unlock()
}

// Pause records the suspension and returns immediately.
func (r *Recorder) Pause(ctx context.Context, point Point, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := Pause{Point: point, Duration: d}
	r.mu.Lock()
	r.pauses = append(r.pauses, p)
	hook := r.hook
	r.mu.Unlock()

	if r.Clock != nil {
		r.Clock.Advance(d)
	}
	if hook != nil {
		return hook(p)
	}
	return nil
}

// Pauses returns a copy of everything recorded so far.
func (r *Recorder) Pauses() []Pause {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Pause, len(r.pauses))
	copy(out, r.pauses)
	return out
}

// Count returns how many pauses were recorded at point.
func (r *Recorder) Count(point Point) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.pauses {
		if p.Point == point {
			n++
		}
	}
	return n
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock frozen at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// Now returns the frozen time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

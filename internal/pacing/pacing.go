// Package pacing holds the clock and the named suspension points used by the
// exporter and the responder.
//
// Every intentional wait in the program goes through a Pacer so that tests can
// observe each pause (and its duration) without sleeping.
package pacing

import (
	"context"
	"time"
)

// Point names a place where a job deliberately waits.
type Point string

const (
	PointPage   Point = "page"   // Between pagination requests.
	PointReply  Point = "reply"  // Deciding to answer later.
	PointTyping Point = "typing" // Simulated typing before a send.
	PointPoll   Point = "poll"   // Between responder polling cycles.
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Pacer suspends the caller at a named point.
// Pause returns ctx.Err() if the context ends first.
type Pacer interface {
	Pause(ctx context.Context, point Point, d time.Duration) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Sleeper is the production Pacer backed by timers.
type Sleeper struct{}

// Pause waits for d or until ctx is done, whichever comes first.
// A non-positive duration still honours an already-cancelled context.
func (Sleeper) Pause(ctx context.Context, _ Point, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

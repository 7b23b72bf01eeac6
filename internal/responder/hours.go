package responder

import "time"

// WorkingHours is a daily window, in whole hours of Location's clock.
// Start > End wraps past midnight; Start == End is open all day.
type WorkingHours struct {
	Start    int
	End      int
	Location *time.Location
}

// DefaultWorkingHours is 08:00 to 22:00 local time.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{Start: 8, End: 22, Location: time.Local}
}

// Contains reports whether t falls inside the window.
func (w WorkingHours) Contains(t time.Time) bool {
	if w.Start == w.End {
		return true
	}
	if w.Location != nil {
		t = t.In(w.Location)
	}
	h := t.Hour()
	if w.Start < w.End {
		return h >= w.Start && h < w.End
	}
	return h >= w.Start || h < w.End
}

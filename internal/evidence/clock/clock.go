// Package clock captures the wall-clock instants that become evidence.
//
// The only source of a capture instant is the Clock injected when the service is
// built. Nothing in a create request can supply or override it.
package clock

import "time"

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// System is the production clock. It always reports UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Func adapts a function to Clock. Intended for tests and replay tooling.
type Func func() time.Time

func (f Func) Now() time.Time { return f().UTC() }

// Fixed returns a Clock frozen at t.
func Fixed(t time.Time) Clock {
	t = t.UTC()
	return Func(func() time.Time { return t })
}

// Capture returns the evidence timestamp for a record being persisted at instant
// now. It returns nil when evidence tracking is inactive so the field is absent
// rather than zero-valued.
func Capture(now time.Time, tracking bool) *time.Time {
	if !tracking {
		return nil
	}
	ts := now.UTC()
	return &ts
}

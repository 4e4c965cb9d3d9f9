package types

import "time"

// Clock supplies the current instant. Code that depends on wall-clock time
// takes a Clock so tests can pin it.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the real time.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// InLocation reports c's time in loc.
func InLocation(c Clock, loc *time.Location) Clock {
	if loc == nil {
		return c
	}
	return ClockFunc(func() time.Time { return c.Now().In(loc) })
}

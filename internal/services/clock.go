package services

import "time"

// Clock returns the current time. Services never read the wall clock directly.
type Clock func() time.Time

// SystemClock reads the wall clock in loc, so that "today" is the user's day.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

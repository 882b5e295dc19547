package services

import "time"

// DefaultReminderHour is 7 PM local time.
const DefaultReminderHour = 19

// ReminderChecker decides whether the daily "did you enter today's expenses"
// reminder should go out now.
type ReminderChecker interface {
	// IsDue reports whether a reminder is due at now, given when the last one
	// was sent. A zero lastSent means never.
	IsDue(lastSent, now time.Time) bool
}

// DailyAfterHour fires once per calendar day, at or after Hour.
type DailyAfterHour struct {
	Hour int
}

func (c DailyAfterHour) IsDue(lastSent, now time.Time) bool {
	if now.Hour() < c.Hour {
		return false
	}
	if lastSent.IsZero() {
		return true
	}
	last := lastSent.In(now.Location())
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	return ly != ny || lm != nm || ld != nd
}

// NeverRemind is used when reminders are switched off in settings.
type NeverRemind struct{}

func (NeverRemind) IsDue(_, _ time.Time) bool { return false }

// ReminderCheckerFor picks the strategy for the current settings.
func ReminderCheckerFor(enabled bool, hour int) ReminderChecker {
	if !enabled {
		return NeverRemind{}
	}
	return DailyAfterHour{Hour: hour}
}

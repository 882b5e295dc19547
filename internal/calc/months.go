// Package calc is the financial summary engine: simple interest, per-record
// summaries and portfolio totals over snapshots of stored records.
//
// Every function is pure. The reference date is always passed in by the caller;
// nothing in this package reads the wall clock.
package calc

import "kharcha/internal/core"

// MonthsElapsed counts calendar months from start to now, ignoring the day of
// month: a loan taken on Jan 31 has one month elapsed on Feb 1. Never negative.
func MonthsElapsed(start, now core.Date) int {
	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	if months < 0 {
		return 0
	}
	return months
}

// Package calendar implements the workshop's business-hour arithmetic.
// The shop works Monday through Friday, 08:00-12:00 and 14:00-18:00 local
// time; every other instant is dead time that never consumes a task's
// estimated work budget.
package calendar

import "time"

const (
	morningStart   = 8
	morningEnd     = 12
	afternoonStart = 14
	afternoonEnd   = 18
)

// IsWorkingInstant reports whether t falls inside a working period.
func IsWorkingInstant(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := t.Hour()
	return (h >= morningStart && h < morningEnd) || (h >= afternoonStart && h < afternoonEnd)
}

// NextWorkingInstant advances t to the earliest working instant at or after
// it. An instant already inside a working period is returned unchanged;
// otherwise the time is snapped to the hour and stepped forward, jumping
// weekend days straight to Monday 08:00.
func NextWorkingInstant(t time.Time) time.Time {
	if IsWorkingInstant(t) {
		return t
	}
	cur := t.Truncate(time.Hour)
	for !IsWorkingInstant(cur) {
		switch cur.Weekday() {
		case time.Saturday:
			cur = mondayMorning(cur, 2)
		case time.Sunday:
			cur = mondayMorning(cur, 1)
		default:
			cur = cur.Add(time.Hour)
		}
	}
	return cur
}

// AddWork returns the instant at which a task started at start finishes,
// given a work-duration budget. The budget is consumed only by working
// hours; lunch breaks, nights and weekends are skipped without charge.
// A zero or negative budget returns the calendar-snapped start.
func AddWork(start time.Time, budget time.Duration) time.Time {
	cur := NextWorkingInstant(start)
	for budget > 0 {
		if !IsWorkingInstant(cur) {
			cur = NextWorkingInstant(cur)
			continue
		}
		step := time.Hour
		if budget < step {
			step = budget
		}
		cur = cur.Add(step)
		budget -= step
	}
	return cur
}

// CountWork returns the working duration contained in [start, end).
// Used by display layers to derive progress; the scheduler itself only
// ever adds budgets forward.
func CountWork(start, end time.Time) time.Duration {
	var total time.Duration
	cur := start
	for cur.Before(end) {
		if IsWorkingInstant(cur) {
			total += time.Hour
		}
		cur = cur.Add(time.Hour)
	}
	return total
}

func mondayMorning(t time.Time, days int) time.Time {
	d := t.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), morningStart, 0, 0, 0, t.Location())
}

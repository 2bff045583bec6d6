package domain

import "time"

// NextRunAt computes the next firing strictly after now for the given
// frequency and schedule. The candidate is built at the configured
// hour/minute on the configured day; when that candidate is not in the
// future it rolls forward by exactly one period. The external trigger
// only fires roughly daily, so this must make forward progress no
// matter how late the dispatcher runs.
func NextRunAt(freq Frequency, sched Schedule, now time.Time) time.Time {
	now = now.UTC()
	hour := clamp(sched.Hour, 0, 23)
	minute := clamp(sched.Minute, 0, 59)

	switch freq {
	case FrequencyWeekly:
		target := time.Weekday(clamp(sched.DayOfWeek, 0, 6))
		candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
		diff := (int(target) - int(candidate.Weekday()) + 7) % 7
		candidate = candidate.AddDate(0, 0, diff)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate

	case FrequencyMonthly:
		day := clamp(sched.DayOfMonth, 1, 31)
		candidate := dateClamped(now.Year(), now.Month(), day, hour, minute)
		if !candidate.After(now) {
			candidate = dateClamped(now.Year(), now.Month()+1, day, hour, minute)
		}
		return candidate

	case FrequencyQuarterly:
		day := clamp(sched.DayOfMonth, 1, 31)
		candidate := dateClamped(now.Year(), now.Month(), day, hour, minute)
		if !candidate.After(now) {
			candidate = dateClamped(now.Year(), now.Month()+3, day, hour, minute)
		}
		return candidate

	case FrequencyYearly:
		month := time.Month(clamp(sched.Month, 1, 12))
		day := clamp(sched.DayOfMonth, 1, 31)
		candidate := dateClamped(now.Year(), month, day, hour, minute)
		if !candidate.After(now) {
			candidate = dateClamped(now.Year()+1, month, day, hour, minute)
		}
		return candidate

	default: // daily
		candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate
	}
}

// dateClamped builds a date with the day clamped to the month's length,
// so a day-31 schedule fires on Feb 28 rather than rolling into March.
func dateClamped(year int, month time.Month, day, hour, minute int) time.Time {
	// Normalize month overflow first (month+1 from December etc).
	base := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := daysIn(base.Year(), base.Month())
	if day > last {
		day = last
	}
	return time.Date(base.Year(), base.Month(), day, hour, minute, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

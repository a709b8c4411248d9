package internal

import "time"

// DayKey formats a time as the calendar day used for streaks and daily
// limits.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// AdvanceStreak applies a check-in at now against the previous check-in.
// Same-day check-ins are no-ops; a check-in the day after the last one
// extends the streak; anything later resets it to 1. Best never
// decreases.
func AdvanceStreak(current, best int, lastCheckIn *time.Time, now time.Time) (newCurrent, newBest int, changed bool) {
	if lastCheckIn == nil {
		newCurrent = 1
	} else {
		last := lastCheckIn.In(now.Location())
		switch {
		case DayKey(last) == DayKey(now):
			return current, best, false
		case DayKey(last.AddDate(0, 0, 1)) == DayKey(now):
			newCurrent = current + 1
		default:
			newCurrent = 1
		}
	}
	newBest = best
	if newCurrent > newBest {
		newBest = newCurrent
	}
	return newCurrent, newBest, true
}

// StreakBroken reports whether a streak has lapsed as of now without a
// new check-in, used for display only; the stored row is updated lazily
// on the next check-in.
func StreakBroken(lastCheckIn *time.Time, now time.Time) bool {
	if lastCheckIn == nil {
		return false
	}
	last := lastCheckIn.In(now.Location())
	return DayKey(last) != DayKey(now) && DayKey(last.AddDate(0, 0, 1)) != DayKey(now)
}

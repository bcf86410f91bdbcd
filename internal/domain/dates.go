package domain

import "time"

// SelectDate picks the soonest start strictly after now. Ranges without a start
// never qualify. ok is false when no range qualifies.
func SelectDate(dates []DateRange, now time.Time) (selected time.Time, ok bool) {
	for _, d := range dates {
		if d.Start == nil || !d.Start.After(now) {
			continue
		}
		if !ok || d.Start.Before(selected) {
			selected = *d.Start
			ok = true
		}
	}
	return selected, ok
}

// LatestPast picks the most recent start at or before now.
func LatestPast(dates []DateRange, now time.Time) (latest time.Time, ok bool) {
	for _, d := range dates {
		if d.Start == nil || d.Start.After(now) {
			continue
		}
		if !ok || d.Start.After(latest) {
			latest = *d.Start
			ok = true
		}
	}
	return latest, ok
}

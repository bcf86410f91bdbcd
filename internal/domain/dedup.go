package domain

import "time"

// Deduplicate collapses records sharing a Key into one representative per
// logical event, restricted to events with an upcoming date.
//
// For each group the representative is the member whose own selected date is
// closest to now; the first such member in input order wins ties. Groups with
// no start strictly after now are dropped. Output order follows first
// appearance of each group, but callers should sort explicitly (SortRecords)
// rather than rely on it.
//
// The input slice is not modified. now must be the same instant for the whole batch.
func Deduplicate(records []EventRecord, now time.Time) []EventRecord {
	if len(records) == 0 {
		return []EventRecord{}
	}

	type group struct {
		best    EventRecord
		bestAt  time.Time
		hasBest bool
	}

	order := make([]Key, 0, len(records))
	groups := make(map[Key]*group, len(records))

	for _, r := range records {
		k := r.Key()
		g, seen := groups[k]
		if !seen {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}

		at, ok := SelectDate(r.CandidateDates, now)
		if !ok {
			continue
		}
		if !g.hasBest || at.Before(g.bestAt) {
			g.best = r
			g.bestAt = at
			g.hasBest = true
		}
	}

	out := make([]EventRecord, 0, len(order))
	for _, k := range order {
		g := groups[k]
		if !g.hasBest {
			continue
		}
		rep := g.best
		rep.SelectedDate = g.bestAt
		out = append(out, rep)
	}
	return out
}

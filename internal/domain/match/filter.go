package match

import "time"

// FilterByStatus keeps the matches whose status is in statuses. TIMED
// matches must additionally fall inside the reference day's local calendar
// bounds: a bucket is keyed by the day the fixture was fetched for, but a
// confirmed kickoff can land on a neighbouring calendar day in the viewer's
// zone. Leagues whose filtered list comes out empty are omitted. The input
// bucket is never mutated.
func FilterByStatus(bucket map[string][]*Match, statuses []Status, loc *time.Location, referenceDay time.Time) map[string][]*Match {
	if len(bucket) == 0 || len(statuses) == 0 {
		return map[string][]*Match{}
	}
	if loc == nil {
		loc = time.UTC
	}

	wanted := make(map[Status]struct{}, len(statuses))
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}

	dayStart := startOfDay(referenceDay.In(loc))
	dayEnd := dayStart.AddDate(0, 0, 1)

	out := make(map[string][]*Match, len(bucket))
	for league, matches := range bucket {
		var kept []*Match
		for _, m := range matches {
			if _, ok := wanted[m.Status]; !ok {
				continue
			}
			if m.Status == StatusTimed && !withinDay(m, loc, dayStart, dayEnd) {
				continue
			}
			kept = append(kept, m)
		}
		if len(kept) > 0 {
			out[league] = kept
		}
	}

	return out
}

func withinDay(m *Match, loc *time.Location, dayStart, dayEnd time.Time) bool {
	local := m.LocalDate
	if local == nil {
		parsed, err := ToLocalDate(m.UTCDate, loc)
		if err != nil {
			return false
		}
		local = &parsed
	}
	return !local.Before(dayStart) && local.Before(dayEnd)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

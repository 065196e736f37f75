package match

import (
	"fmt"
	"time"
)

// DayKeyLayout is the canonical calendar-day bucket key (yyyy-MM-dd).
const DayKeyLayout = "2006-01-02"

// ToLocalDate parses an ISO-8601 UTC timestamp and shifts it into loc.
func ToLocalDate(utcDate string, loc *time.Location) (time.Time, error) {
	if utcDate == "" {
		return time.Time{}, fmt.Errorf("empty utc date")
	}
	t, err := time.Parse(time.RFC3339, utcDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse utc date %q: %w", utcDate, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc), nil
}

// DayKey derives the calendar-day bucket key from a localized instant.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// Classified is one page of input partitioned into the live collection and
// per-day, per-league buckets. Every surviving match sits in exactly one of
// the two.
type Classified struct {
	Live  map[string][]*Match
	ByDay map[string]map[string][]*Match
}

func NewClassified() Classified {
	return Classified{
		Live:  make(map[string][]*Match),
		ByDay: make(map[string]map[string][]*Match),
	}
}

// Dropped describes a record excluded during classification. Records with
// no league identity or an unplaceable date are dropped rather than routed
// into a synthetic bucket; the caller decides how to log them.
type Dropped struct {
	MatchID int64
	Reason  string
}

// Classify partitions raw matches into live and day/league buckets in the
// viewer's zone. Input matches are copied; the result owns its pointers.
func Classify(raw []Match, loc *time.Location) (Classified, []Dropped) {
	out := NewClassified()
	var dropped []Dropped

	for i := range raw {
		m := raw[i]
		if !m.HasLeagueIdentity() {
			dropped = append(dropped, Dropped{MatchID: m.ID, Reason: "missing competition identity"})
			continue
		}

		local, err := ToLocalDate(m.UTCDate, loc)
		if err != nil {
			dropped = append(dropped, Dropped{MatchID: m.ID, Reason: err.Error()})
			continue
		}
		m.LocalDate = &local
		m.Status = NormalizeStatus(string(m.Status))
		m.FanPrediction = FanPrediction(m.Votes)

		key := m.LeagueKey()
		if m.Status.IsLive() {
			out.Live[key] = append(out.Live[key], &m)
			continue
		}

		day := DayKey(local)
		if out.ByDay[day] == nil {
			out.ByDay[day] = make(map[string][]*Match)
		}
		out.ByDay[day][key] = append(out.ByDay[day][key], &m)
	}

	return out, dropped
}

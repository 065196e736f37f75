package usecase

import "time"

// Day is the three-day window the client navigates.
type Day string

const (
	DayYesterday Day = "yesterday"
	DayToday     Day = "today"
	DayTomorrow  Day = "tomorrow"
)

func (d Day) Valid() bool {
	return d == DayYesterday || d == DayToday || d == DayTomorrow
}

// Date resolves the day relative to now.
func (d Day) Date(now time.Time) time.Time {
	switch d {
	case DayYesterday:
		return now.AddDate(0, 0, -1)
	case DayTomorrow:
		return now.AddDate(0, 0, 1)
	default:
		return now
	}
}

// Window returns the full yesterday/today/tomorrow span.
func Window() []Day {
	return []Day{DayYesterday, DayToday, DayTomorrow}
}

// Tab is the status view applied to the selected day.
type Tab string

const (
	TabLive      Tab = "live"
	TabFinished  Tab = "finished"
	TabScheduled Tab = "scheduled"
)

func (t Tab) Valid() bool {
	return t == TabLive || t == TabFinished || t == TabScheduled
}

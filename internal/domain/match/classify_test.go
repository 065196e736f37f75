package match

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func rawMatch(id int64, status Status, utcDate string) Match {
	return Match{
		ID:      id,
		UTCDate: utcDate,
		Status:  status,
		Competition: Competition{
			ID:      2021,
			Name:    "Premier League",
			Country: Country{Name: "England"},
		},
		HomeTeam: Team{ID: 1, Name: "Arsenal"},
		AwayTeam: Team{ID: 2, Name: "Chelsea"},
	}
}

func TestClassify_BucketExclusivity(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	raw := []Match{
		rawMatch(1, StatusInPlay, "2025-03-01T14:00:00Z"),
		rawMatch(2, StatusTimed, "2025-03-01T14:00:00Z"),
		rawMatch(3, StatusFinished, "2025-03-01T11:00:00Z"),
		rawMatch(4, StatusHalftime, "2025-03-01T13:00:00Z"),
	}

	classified, dropped := Classify(raw, loc)
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %v", dropped)
	}

	seen := make(map[int64]int)
	for _, matches := range classified.Live {
		for _, m := range matches {
			seen[m.ID]++
		}
	}
	for _, leagues := range classified.ByDay {
		for _, matches := range leagues {
			for _, m := range matches {
				seen[m.ID]++
			}
		}
	}

	for _, id := range []int64{1, 2, 3, 4} {
		if seen[id] != 1 {
			t.Fatalf("match %d appears in %d buckets, want exactly 1", id, seen[id])
		}
	}
	if got := len(classified.Live["Premier League_2021"]); got != 2 {
		t.Fatalf("expected 2 live matches, got %d", got)
	}
}

func TestClassify_LocalDayBucketing(t *testing.T) {
	// 23:30 UTC on March 1st is already March 2nd in Berlin.
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	classified, _ := Classify([]Match{rawMatch(9, StatusTimed, "2025-03-01T23:30:00Z")}, loc)
	if _, ok := classified.ByDay["2025-03-02"]; !ok {
		t.Fatalf("expected match bucketed under local day 2025-03-02, got days %v", dayKeys(classified))
	}
	m := classified.ByDay["2025-03-02"]["Premier League_2021"][0]
	if m.LocalDate == nil {
		t.Fatalf("expected derived local date")
	}
	if got := m.LocalDate.Hour(); got != 0 {
		t.Fatalf("expected local hour 0 (00:30 CET), got %d", got)
	}
}

func TestClassify_DropsUnplaceableRecords(t *testing.T) {
	noLeague := rawMatch(10, StatusScheduled, "2025-03-01T14:00:00Z")
	noLeague.Competition = Competition{}
	badDate := rawMatch(11, StatusScheduled, "yesterday-ish")
	ok := rawMatch(12, StatusScheduled, "2025-03-01T14:00:00Z")

	classified, dropped := Classify([]Match{noLeague, badDate, ok}, time.UTC)
	if len(dropped) != 2 {
		t.Fatalf("expected 2 dropped records, got %d", len(dropped))
	}
	if dropped[0].MatchID != 10 || dropped[1].MatchID != 11 {
		t.Fatalf("unexpected dropped ids: %+v", dropped)
	}
	total := 0
	for _, leagues := range classified.ByDay {
		for _, matches := range leagues {
			total += len(matches)
		}
	}
	if total != 1 {
		t.Fatalf("expected 1 surviving match, got %d", total)
	}
}

func TestClassify_DerivesFanPrediction(t *testing.T) {
	m := rawMatch(20, StatusScheduled, "2025-03-01T14:00:00Z")
	m.Votes = VoteCounts{Home: 10, Draw: 3, Away: 7}

	classified, _ := Classify([]Match{m}, time.UTC)
	got := classified.ByDay["2025-03-01"]["Premier League_2021"][0]
	if got.FanPrediction != OutcomeHome {
		t.Fatalf("expected fan prediction HOME_TEAM, got %q", got.FanPrediction)
	}
}

func TestToLocalDate_InvalidInput(t *testing.T) {
	if _, err := ToLocalDate("", time.UTC); err == nil {
		t.Fatal("expected error for empty date")
	}
	if _, err := ToLocalDate("not-a-date", time.UTC); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func dayKeys(c Classified) []string {
	keys := make([]string, 0, len(c.ByDay))
	for k := range c.ByDay {
		keys = append(keys, k)
	}
	return keys
}

package usecase

import (
	"testing"
	"time"

	"github.com/kickoffhq/matchday/internal/domain/match"
)

func liveSnapshot(matches ...*match.Match) map[string][]*match.Match {
	out := make(map[string][]*match.Match)
	for _, m := range matches {
		out[m.LeagueKey()] = append(out[m.LeagueKey()], m)
	}
	return out
}

func liveMatch(id int64, home, away int) *match.Match {
	m := withScore(feedMatch(id, match.StatusInPlay, "2025-03-01T12:00:00Z"), home, away)
	return &m
}

func TestCheckForGoals_FiresOncePerScore(t *testing.T) {
	n := NewNotifierService(nil)

	prev := StoreSnapshot{Live: liveSnapshot(liveMatch(1, 0, 0))}
	next := liveSnapshot(liveMatch(1, 1, 0))

	n.CheckForGoals(next, prev)
	if n.Pending() != 1 {
		t.Fatalf("expected 1 notification, got %d", n.Pending())
	}

	// Comparing the same new state against the same old state again, as a
	// redundant poll would, must not duplicate.
	n.CheckForGoals(next, prev)
	if n.Pending() != 1 {
		t.Fatalf("redundant check duplicated the notification: %d pending", n.Pending())
	}

	head, ok := n.Head()
	if !ok {
		t.Fatal("expected a head notification")
	}
	if head.Match.ID != 1 || head.NewHome != 1 || head.NewAway != 0 || head.PrevHome != 0 {
		t.Fatalf("unexpected head: %+v", head)
	}
	if head.ScoringTeam.Name != "Arsenal" {
		t.Fatalf("scoring team should be the home side, got %q", head.ScoringTeam.Name)
	}
}

func TestCheckForGoals_SimultaneousBothSidesFiresHomeOnly(t *testing.T) {
	n := NewNotifierService(nil)

	prev := StoreSnapshot{Live: liveSnapshot(liveMatch(2, 0, 0))}
	next := liveSnapshot(liveMatch(2, 1, 1))

	// Both sides increased within one poll gap; the shared score key dedups
	// to a single notification with the home side winning.
	n.CheckForGoals(next, prev)
	if n.Pending() != 1 {
		t.Fatalf("expected exactly one notification, got %d", n.Pending())
	}
	head, _ := n.Head()
	if head.ScoringTeam.Name != "Arsenal" {
		t.Fatalf("home side takes precedence for a shared score key, got %q", head.ScoringTeam.Name)
	}
}

func TestCheckForGoals_PreviousFoundInDayBuckets(t *testing.T) {
	n := NewNotifierService(nil)

	// The match just transitioned from a day slot into live.
	dayMatch := liveMatch(3, 0, 0)
	dayMatch.Status = match.StatusTimed
	prev := StoreSnapshot{
		Live: map[string][]*match.Match{},
		Days: map[string]map[string][]*match.Match{
			testDay: liveSnapshot(dayMatch),
		},
	}
	n.CheckForGoals(liveSnapshot(liveMatch(3, 1, 0)), prev)
	if n.Pending() != 1 {
		t.Fatalf("expected the day-bucket baseline to be found, pending=%d", n.Pending())
	}
}

func TestCheckForGoals_UnknownMatchStaysSilent(t *testing.T) {
	n := NewNotifierService(nil)
	n.CheckForGoals(liveSnapshot(liveMatch(4, 2, 0)), StoreSnapshot{})
	if n.Pending() != 0 {
		t.Fatalf("a match with no baseline must not notify, pending=%d", n.Pending())
	}
}

func TestDismiss_HeadOnlyFIFO(t *testing.T) {
	n := NewNotifierService(nil)
	prev := StoreSnapshot{Live: liveSnapshot(liveMatch(5, 0, 0), liveMatch(6, 0, 0))}
	n.CheckForGoals(liveSnapshot(liveMatch(5, 1, 0), liveMatch(6, 1, 0)), prev)
	if n.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", n.Pending())
	}

	first, _ := n.Head()
	if n.Dismiss("not-the-head") {
		t.Fatal("dismissing an unknown id must be a no-op")
	}
	if !n.Dismiss(first.ID) {
		t.Fatal("dismissing the head must succeed")
	}
	second, ok := n.Head()
	if !ok || second.ID == first.ID {
		t.Fatalf("queue did not advance: %+v", second)
	}
}

func TestDismissAll_ClearsFiredSet(t *testing.T) {
	n := NewNotifierService(nil)
	prev := StoreSnapshot{Live: liveSnapshot(liveMatch(7, 0, 0))}
	next := liveSnapshot(liveMatch(7, 1, 0))

	n.CheckForGoals(next, prev)
	n.DismissAll()
	if n.Pending() != 0 {
		t.Fatalf("dismiss-all must empty the queue, got %d", n.Pending())
	}

	// After a full reset the same score may fire again.
	n.CheckForGoals(next, prev)
	if n.Pending() != 1 {
		t.Fatalf("fired-set must be cleared by dismiss-all, pending=%d", n.Pending())
	}
}

func TestExpireHead_AutoDismissWithSettleDelay(t *testing.T) {
	n := NewNotifierService(nil)
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return clock }

	prev := StoreSnapshot{Live: liveSnapshot(liveMatch(8, 0, 0), liveMatch(9, 0, 0))}
	n.CheckForGoals(liveSnapshot(liveMatch(8, 1, 0), liveMatch(9, 1, 0)), prev)

	n.expireHead()
	if n.Pending() != 2 {
		t.Fatal("head must not expire before the display duration")
	}

	clock = clock.Add(n.displayFor)
	n.expireHead()
	if n.Pending() != 1 {
		t.Fatalf("head should have expired, pending=%d", n.Pending())
	}

	// The settle delay pushes the next expiry out past displayFor alone.
	clock = clock.Add(n.displayFor)
	n.expireHead()
	if n.Pending() != 1 {
		t.Fatal("second notification expired before its settle delay elapsed")
	}
	clock = clock.Add(n.settleFor)
	n.expireHead()
	if n.Pending() != 0 {
		t.Fatalf("second notification should have expired, pending=%d", n.Pending())
	}
}

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/kickoffhq/matchday/internal/domain/match"
	"github.com/kickoffhq/matchday/internal/domain/notification"
	"github.com/kickoffhq/matchday/internal/platform/logging"
)

const (
	// How long the head notification stays visible before auto-dismissal.
	defaultDisplayFor = 3 * time.Second
	// Pause between dismissing one notification and surfacing the next,
	// so consecutive goals don't flash into each other.
	defaultSettleFor = 300 * time.Millisecond
)

// NotifierService detects score increases between consecutive live
// snapshots and queues at-most-once goal notifications.
//
// The fired-set of score keys persists for the whole session; it is cleared
// only by DismissAll. Goals are detected on the live collection only — a
// finished match whose score jumps because of a delayed fetch did not "just
// happen" and stays silent.
type NotifierService struct {
	logger     *logging.Logger
	displayFor time.Duration
	settleFor  time.Duration
	now        func() time.Time

	mu      sync.Mutex
	queue   []notification.Notification
	fired   map[string]struct{}
	shownAt time.Time
}

func NewNotifierService(logger *logging.Logger) *NotifierService {
	if logger == nil {
		logger = logging.Default()
	}
	return &NotifierService{
		logger:     logger,
		displayFor: defaultDisplayFor,
		settleFor:  defaultSettleFor,
		now:        time.Now,
		fired:      make(map[string]struct{}),
	}
}

// CheckForGoals walks every live match in the new state and compares its
// score against the previous state. The previous match is looked up in the
// old live collection first, then in the old day buckets, since a match may
// have just transitioned into live. No previous match means nothing to diff
// against and no notification.
func (n *NotifierService) CheckForGoals(newLive map[string][]*match.Match, prev StoreSnapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, matches := range newLive {
		for _, m := range matches {
			before, ok := findPrevious(m.ID, prev)
			if !ok {
				continue
			}

			prevHome, prevAway := before.Score.Goals()
			newHome, newAway := m.Score.Goals()
			key := notification.ScoreKey(m.ID, newHome, newAway)

			if newHome > prevHome {
				if n.fire(key, m, notification.SideHome, prevHome, prevAway, newHome, newAway) {
					continue
				}
			}
			if newAway > prevAway {
				n.fire(key, m, notification.SideAway, prevHome, prevAway, newHome, newAway)
			}
		}
	}
}

// fire enqueues a notification unless its score key already fired.
// Returns true if the key is now marked, whether fired here or earlier.
func (n *NotifierService) fire(key string, m *match.Match, side notification.Side, prevHome, prevAway, newHome, newAway int) bool {
	if _, done := n.fired[key]; done {
		return true
	}
	n.fired[key] = struct{}{}

	scorer := m.HomeTeam
	if side == notification.SideAway {
		scorer = m.AwayTeam
	}
	n.queue = append(n.queue, notification.Notification{
		ID:          notification.ID(m.ID, newHome, newAway, side),
		Match:       *m,
		ScoringTeam: scorer,
		Side:        side,
		PrevHome:    prevHome,
		PrevAway:    prevAway,
		NewHome:     newHome,
		NewAway:     newAway,
		CreatedAt:   n.now(),
	})
	if len(n.queue) == 1 {
		n.shownAt = n.now()
	}
	n.logger.Info("goal notification queued",
		"match_id", m.ID,
		"side", string(side),
		"score", notification.ScoreKey(m.ID, newHome, newAway),
	)
	return true
}

// Head returns the currently displayed notification, if any.
func (n *NotifierService) Head() (notification.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.queue) == 0 {
		return notification.Notification{}, false
	}
	return n.queue[0], true
}

// Pending reports the queue depth.
func (n *NotifierService) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.queue)
}

// Dismiss removes the head notification if it matches id and advances the
// queue. Dismissing a non-head id is a no-op; the queue is strictly FIFO.
func (n *NotifierService) Dismiss(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.queue) == 0 || n.queue[0].ID != id {
		return false
	}
	n.advanceLocked()
	return true
}

// DismissAll drops the queue and clears the fired-set. This is the only
// operation that allows a previously notified score to fire again.
func (n *NotifierService) DismissAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queue = nil
	n.fired = make(map[string]struct{})
}

// Run auto-dismisses the head after the display duration, with a settling
// delay between consecutive notifications. Blocks until ctx is done.
func (n *NotifierService) Run(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.expireHead()
		}
	}
}

func (n *NotifierService) expireHead() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.queue) == 0 {
		return
	}
	if n.now().Sub(n.shownAt) >= n.displayFor {
		n.advanceLocked()
	}
}

func (n *NotifierService) advanceLocked() {
	n.queue = n.queue[1:]
	// The settle delay keeps the next notification from appearing in the
	// same instant the previous one left.
	n.shownAt = n.now().Add(n.settleFor)
}

func findPrevious(id int64, prev StoreSnapshot) (*match.Match, bool) {
	for _, matches := range prev.Live {
		for _, m := range matches {
			if m.ID == id {
				return m, true
			}
		}
	}
	for _, leagues := range prev.Days {
		for _, matches := range leagues {
			for _, m := range matches {
				if m.ID == id {
					return m, true
				}
			}
		}
	}
	return nil, false
}

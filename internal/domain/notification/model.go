package notification

import (
	"fmt"
	"time"

	"github.com/kickoffhq/matchday/internal/domain/match"
)

// Side names the team that scored.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Notification announces a single goal. ID is derived from the match, the
// resulting score and the scoring side so consumers can dismiss it by key.
type Notification struct {
	ID          string      `json:"id"`
	Match       match.Match `json:"match"`
	ScoringTeam match.Team  `json:"scoringTeam"`
	Side        Side        `json:"side"`
	PrevHome    int         `json:"prevHome"`
	PrevAway    int         `json:"prevAway"`
	NewHome     int         `json:"newHome"`
	NewAway     int         `json:"newAway"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ScoreKey identifies a (match, resulting score) pair. At most one
// notification is ever fired per key within a session, regardless of which
// side's increase was seen first.
func ScoreKey(matchID int64, home, away int) string {
	return fmt.Sprintf("%d-%d-%d", matchID, home, away)
}

func ID(matchID int64, home, away int, side Side) string {
	return fmt.Sprintf("%d-%d-%d-%s", matchID, home, away, side)
}

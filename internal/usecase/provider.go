package usecase

import (
	"context"

	"github.com/kickoffhq/matchday/internal/domain/match"
)

// ScoreProvider is the upstream score API consumed by the engine. Implemented
// by external/scoreapi.
type ScoreProvider interface {
	// FetchMatches returns all matches, any status, whose UTC calendar day is
	// date (yyyy-MM-dd).
	FetchMatches(ctx context.Context, date string) ([]match.Match, error)
	// FetchLiveMatches returns all currently live matches, any day.
	FetchLiveMatches(ctx context.Context) ([]match.Match, error)
	// Vote records the viewer's vote and returns the updated tally plus the
	// vote the server now holds for this viewer.
	Vote(ctx context.Context, matchID int64, choice match.VoteChoice) (VoteResult, error)
}

type VoteResult struct {
	Votes    match.VoteCounts `json:"votes"`
	UserVote match.VoteChoice `json:"userVote"`
}

package usecase

import (
	"context"
	"fmt"

	"github.com/kickoffhq/matchday/internal/domain/match"
	"github.com/kickoffhq/matchday/internal/platform/logging"
)

// VoteService records a viewer's prediction with the upstream API and
// merges the confirmed state back into every bucket the match appears in.
// Local state is never mutated optimistically: a failed submission leaves
// the match exactly as the server last confirmed it.
type VoteService struct {
	provider ScoreProvider
	store    *MatchStoreService
	logger   *logging.Logger
}

func NewVoteService(provider ScoreProvider, store *MatchStoreService, logger *logging.Logger) *VoteService {
	if logger == nil {
		logger = logging.Default()
	}
	return &VoteService{
		provider: provider,
		store:    store,
		logger:   logger,
	}
}

func (s *VoteService) Vote(ctx context.Context, matchID int64, choice match.VoteChoice) (VoteResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VoteService.Vote")
	defer span.End()

	if matchID <= 0 {
		return VoteResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if !choice.Valid() {
		return VoteResult{}, fmt.Errorf("%w: vote must be one of home, draw, away", ErrInvalidInput)
	}

	result, err := s.provider.Vote(ctx, matchID, choice)
	if err != nil {
		return VoteResult{}, fmt.Errorf("submit vote for match %d: %w", matchID, err)
	}

	s.store.ApplyVote(matchID, result.Votes, result.UserVote)
	s.logger.InfoContext(ctx, "vote recorded", "match_id", matchID, "choice", string(choice))
	return result, nil
}

package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/kickoffhq/matchday/internal/domain/match"
	"github.com/kickoffhq/matchday/internal/usecase"
)

type castVoteRequest struct {
	Choice string `json:"choice" validate:"required,oneof=home draw away"`
}

type castVoteDTO struct {
	MatchID  int64            `json:"matchId"`
	Votes    match.VoteCounts `json:"votes"`
	UserVote match.VoteChoice `json:"userVote"`
}

// CastVote forwards the viewer's prediction to the score provider and folds
// the confirmed tally back into the store. The local state is never mutated
// ahead of provider confirmation.
func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CastVote")
	defer span.End()

	matchID, err := strconv.ParseInt(r.PathValue("matchID"), 10, 64)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: match id must be numeric", usecase.ErrInvalidInput))
		return
	}

	var req castVoteRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.voter.Vote(ctx, matchID, match.VoteChoice(req.Choice))
	if err != nil {
		h.logger.WarnContext(ctx, "cast vote failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, castVoteDTO{
		MatchID:  matchID,
		Votes:    result.Votes,
		UserVote: result.UserVote,
	})
}

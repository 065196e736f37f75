package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickoffhq/matchday/internal/domain/match"
)

func finishedMatch(id int64, home, away int) match.Match {
	m := withScore(feedMatch(id, match.StatusFinished, "2025-03-01T15:00:00Z"), home, away)
	return m
}

func TestStatsReport_AccuracyBuckets(t *testing.T) {
	homeWin := finishedMatch(1, 2, 0)
	homeWin.AIPrediction = match.OutcomeHome                // correct
	homeWin.Votes = match.VoteCounts{Home: 1, Draw: 5}      // fan says draw, wrong
	homeWin.UserVote = match.VoteHome                       // correct

	awayWin := finishedMatch(2, 0, 1)
	awayWin.AIPrediction = match.OutcomeDraw           // wrong
	awayWin.Votes = match.VoteCounts{Away: 9, Home: 1} // fan says away, correct

	stillLive := withScore(feedMatch(3, match.StatusInPlay, "2025-03-01T15:00:00Z"), 3, 0)
	stillLive.AIPrediction = match.OutcomeHome // never counted while live

	provider := &stubProvider{
		dayPayloads: map[string][]match.Match{testDay: {homeWin, awayWin}},
		livePayload: []match.Match{stillLive},
	}
	store := newTestStore(provider, nil)
	require.NoError(t, store.FetchFull(t.Context(), testDate))
	require.NoError(t, store.FetchLiveFull(t.Context()))

	svc := NewStatsService(store, nil, nil)
	svc.now = func() time.Time { return testDate }

	report, err := svc.Report(t.Context())
	require.NoError(t, err)

	assert.Equal(t, AccuracyCounts{Correct: 1, Total: 2}, report.Overall.AI)
	assert.Equal(t, AccuracyCounts{Correct: 1, Total: 2}, report.Overall.Fan)
	assert.Equal(t, AccuracyCounts{Correct: 1, Total: 1}, report.Overall.User)
	assert.Equal(t, testDate, report.GeneratedAt)

	require.Len(t, report.Leagues, 1)
	assert.Equal(t, "Premier League_2021", report.Leagues[0].LeagueKey)
	assert.Equal(t, "Premier League", report.Leagues[0].LeagueName)
	assert.Equal(t, AccuracyCounts{Correct: 1, Total: 2}, report.Leagues[0].AI)
}

func TestStatsReport_EmptyStore(t *testing.T) {
	store := newTestStore(&stubProvider{dayPayloads: map[string][]match.Match{}}, nil)
	svc := NewStatsService(store, nil, nil)

	report, err := svc.Report(t.Context())
	require.NoError(t, err)
	assert.Zero(t, report.Overall)
	assert.Empty(t, report.Leagues)
}

package match

// FanPrediction derives the fan consensus outcome from the vote tally.
// No votes means no consensus. Ties resolve by fixed precedence
// home > draw > away; the tie rule is pinned by test rather than left to
// map iteration order.
func FanPrediction(votes VoteCounts) Outcome {
	if votes.Total() == 0 {
		return ""
	}

	best := OutcomeHome
	bestCount := votes.Home
	if votes.Draw > bestCount {
		best = OutcomeDraw
		bestCount = votes.Draw
	}
	if votes.Away > bestCount {
		best = OutcomeAway
	}
	return best
}

// ActualOutcome returns the full-time result label. Only meaningful once
// the match has finished.
func ActualOutcome(m *Match) Outcome {
	home, away := m.Score.Goals()
	switch {
	case home > away:
		return OutcomeHome
	case away > home:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

// IsPredictionCorrect reports whether prediction matches the full-time
// result. It is false for any non-finished match regardless of the score,
// and applies identically to AI and fan-consensus predictions.
func IsPredictionCorrect(m *Match, prediction Outcome) bool {
	if m == nil || !m.Status.IsFinished() || prediction == "" {
		return false
	}
	return ActualOutcome(m) == prediction
}

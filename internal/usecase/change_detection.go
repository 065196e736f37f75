package usecase

import "github.com/kickoffhq/matchday/internal/domain/match"

// watchedField compares one field that matters for reconciliation.
type watchedField struct {
	name  string
	equal func(old, incoming *match.Match) bool
}

// watchedFields is the single authoritative list of fields the merge treats
// as "changed". Differences outside this list (provider metadata noise,
// crest URLs and similar) never invalidate an existing match object.
var watchedFields = []watchedField{
	{"status", func(a, b *match.Match) bool { return a.Status == b.Status }},
	{"score.fullTime.home", func(a, b *match.Match) bool {
		ah, _ := a.Score.Goals()
		bh, _ := b.Score.Goals()
		return ah == bh && nilEqual(a.Score.FullTime.Home, b.Score.FullTime.Home)
	}},
	{"score.fullTime.away", func(a, b *match.Match) bool {
		_, aa := a.Score.Goals()
		_, ba := b.Score.Goals()
		return aa == ba && nilEqual(a.Score.FullTime.Away, b.Score.FullTime.Away)
	}},
	{"minute", func(a, b *match.Match) bool { return a.Minute == b.Minute }},
	{"votes.home", func(a, b *match.Match) bool { return a.Votes.Home == b.Votes.Home }},
	{"votes.draw", func(a, b *match.Match) bool { return a.Votes.Draw == b.Votes.Draw }},
	{"votes.away", func(a, b *match.Match) bool { return a.Votes.Away == b.Votes.Away }},
}

// matchChanged reports whether incoming differs from old in any watched
// field.
func matchChanged(old, incoming *match.Match) bool {
	for _, f := range watchedFields {
		if !f.equal(old, incoming) {
			return true
		}
	}
	return false
}

// changedFields lists the names of watched fields that differ; used only for
// debug logging.
func changedFields(old, incoming *match.Match) []string {
	var out []string
	for _, f := range watchedFields {
		if !f.equal(old, incoming) {
			out = append(out, f.name)
		}
	}
	return out
}

func nilEqual(a, b *int) bool {
	return (a == nil) == (b == nil)
}

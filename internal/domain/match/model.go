package match

import (
	"fmt"
	"strings"
	"time"
)

// Status is the closed set of match states delivered by the score provider.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusTimed     Status = "TIMED"
	StatusInPlay    Status = "IN_PLAY"
	StatusPaused    Status = "PAUSED"
	StatusHalftime  Status = "HALFTIME"
	StatusLive      Status = "LIVE"
	StatusFinished  Status = "FINISHED"
)

// NormalizeStatus maps a raw provider value onto the closed Status set.
// Unknown values fall back to SCHEDULED so a new provider state never
// crashes classification.
func NormalizeStatus(value string) Status {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	switch status {
	case StatusScheduled, StatusTimed, StatusInPlay, StatusPaused, StatusHalftime, StatusLive, StatusFinished:
		return status
	default:
		return StatusScheduled
	}
}

func (s Status) IsLive() bool {
	switch s {
	case StatusInPlay, StatusPaused, StatusHalftime, StatusLive:
		return true
	default:
		return false
	}
}

func (s Status) IsUpcoming() bool {
	return s == StatusScheduled || s == StatusTimed
}

func (s Status) IsFinished() bool {
	return s == StatusFinished
}

// Outcome labels a full-time result or a prediction of one.
type Outcome string

const (
	OutcomeHome Outcome = "HOME_TEAM"
	OutcomeDraw Outcome = "DRAW"
	OutcomeAway Outcome = "AWAY_TEAM"
)

// VoteChoice is the vocabulary fans vote with. It is narrower than Outcome
// on the wire ("home" rather than "HOME_TEAM") because that is what the
// voting endpoint accepts.
type VoteChoice string

const (
	VoteHome VoteChoice = "home"
	VoteDraw VoteChoice = "draw"
	VoteAway VoteChoice = "away"
)

func (v VoteChoice) Valid() bool {
	return v == VoteHome || v == VoteDraw || v == VoteAway
}

// Outcome maps a vote choice to the outcome label it predicts.
func (v VoteChoice) Outcome() Outcome {
	switch v {
	case VoteHome:
		return OutcomeHome
	case VoteAway:
		return OutcomeAway
	case VoteDraw:
		return OutcomeDraw
	default:
		return ""
	}
}

type Country struct {
	Name string `json:"name"`
	Flag string `json:"flag,omitempty"`
}

type Competition struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Emblem  string  `json:"emblem,omitempty"`
	Country Country `json:"country"`
}

type Team struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Crest string `json:"crest,omitempty"`
}

// ScoreLine holds nullable goal counts; both sides are nil before kickoff.
type ScoreLine struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type Score struct {
	FullTime ScoreLine `json:"fullTime"`
}

// Goals returns the full-time goal counts, treating nil as zero.
func (s Score) Goals() (home, away int) {
	if s.FullTime.Home != nil {
		home = *s.FullTime.Home
	}
	if s.FullTime.Away != nil {
		away = *s.FullTime.Away
	}
	return home, away
}

// VoteCounts is the aggregate fan vote tally. Counts are always taken from
// the latest snapshot, never accumulated locally.
type VoteCounts struct {
	Home int `json:"home"`
	Draw int `json:"draw"`
	Away int `json:"away"`
}

func (v VoteCounts) Total() int {
	return v.Home + v.Draw + v.Away
}

// Match is the central entity of the feed.
//
// UTCDate is authoritative. LocalDate is a cached derived field in the
// viewer's zone; it is recomputed from UTCDate during classification and
// must survive merges when the provider omits it. UserVote is a per-viewer
// annotation with the same stickiness rule.
type Match struct {
	ID            int64       `json:"id"`
	UTCDate       string      `json:"utcDate"`
	LocalDate     *time.Time  `json:"localDate,omitempty"`
	Status        Status      `json:"status"`
	Minute        int         `json:"minute,omitempty"`
	Competition   Competition `json:"competition"`
	HomeTeam      Team        `json:"homeTeam"`
	AwayTeam      Team        `json:"awayTeam"`
	Score         Score       `json:"score"`
	Votes         VoteCounts  `json:"votes"`
	UserVote      VoteChoice  `json:"userVote,omitempty"`
	AIPrediction  Outcome     `json:"aiPrediction,omitempty"`
	FanPrediction Outcome     `json:"fanPrediction,omitempty"`
}

// LeagueKey is the grouping identity for a competition. Name and ID are
// concatenated because competition IDs alone have collided in practice
// after league renames.
func (m *Match) LeagueKey() string {
	return LeagueKey(m.Competition)
}

func LeagueKey(c Competition) string {
	return fmt.Sprintf("%s_%d", c.Name, c.ID)
}

// HasLeagueIdentity reports whether the match can be grouped at all.
func (m *Match) HasLeagueIdentity() bool {
	return m.Competition.ID != 0 && strings.TrimSpace(m.Competition.Name) != ""
}

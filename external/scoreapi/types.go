package scoreapi

import (
	"strings"

	"github.com/kickoffhq/matchday/internal/domain/match"
)

type matchesEnvelope struct {
	Matches []wireMatch `json:"matches"`
}

type wireMatch struct {
	ID          int64           `json:"id"`
	UTCDate     string          `json:"utcDate"`
	Status      string          `json:"status"`
	Minute      int             `json:"minute"`
	Competition wireCompetition `json:"competition"`
	HomeTeam    wireTeam        `json:"homeTeam"`
	AwayTeam    wireTeam        `json:"awayTeam"`
	Score       wireScore       `json:"score"`
	Votes       wireVotes       `json:"votes"`
	Prediction  string          `json:"aiPrediction"`
	UserVote    string          `json:"userVote"`
}

type wireCompetition struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Emblem string   `json:"emblem"`
	Area   wireArea `json:"area"`
}

type wireArea struct {
	Name string `json:"name"`
	Flag string `json:"flag"`
}

type wireTeam struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Crest string `json:"crest"`
}

type wireScore struct {
	FullTime wireScoreLine `json:"fullTime"`
}

type wireScoreLine struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type wireVotes struct {
	Home int `json:"home"`
	Draw int `json:"draw"`
	Away int `json:"away"`
}

type voteRequest struct {
	Choice string `json:"choice"`
}

type voteResponse struct {
	Votes    match.VoteCounts `json:"votes"`
	UserVote string           `json:"userVote"`
}

// mapWireMatches converts provider rows into domain matches. Status is
// normalized here so the rest of the system only ever sees the closed set.
func mapWireMatches(rows []wireMatch) []match.Match {
	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.Match{
			ID:      row.ID,
			UTCDate: strings.TrimSpace(row.UTCDate),
			Status:  match.NormalizeStatus(row.Status),
			Minute:  row.Minute,
			Competition: match.Competition{
				ID:     row.Competition.ID,
				Name:   strings.TrimSpace(row.Competition.Name),
				Emblem: strings.TrimSpace(row.Competition.Emblem),
				Country: match.Country{
					Name: strings.TrimSpace(row.Competition.Area.Name),
					Flag: strings.TrimSpace(row.Competition.Area.Flag),
				},
			},
			HomeTeam: match.Team{
				ID:    row.HomeTeam.ID,
				Name:  strings.TrimSpace(row.HomeTeam.Name),
				Crest: strings.TrimSpace(row.HomeTeam.Crest),
			},
			AwayTeam: match.Team{
				ID:    row.AwayTeam.ID,
				Name:  strings.TrimSpace(row.AwayTeam.Name),
				Crest: strings.TrimSpace(row.AwayTeam.Crest),
			},
			Score: match.Score{
				FullTime: match.ScoreLine{
					Home: row.Score.FullTime.Home,
					Away: row.Score.FullTime.Away,
				},
			},
			Votes: match.VoteCounts{
				Home: row.Votes.Home,
				Draw: row.Votes.Draw,
				Away: row.Votes.Away,
			},
			UserVote:     match.VoteChoice(strings.TrimSpace(row.UserVote)),
			AIPrediction: match.Outcome(strings.TrimSpace(row.Prediction)),
		})
	}
	return out
}

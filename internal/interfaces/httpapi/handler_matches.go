package httpapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/kickoffhq/matchday/internal/domain/match"
	"github.com/kickoffhq/matchday/internal/usecase"
)

type leagueMatchesDTO struct {
	LeagueKey   string            `json:"leagueKey"`
	Competition match.Competition `json:"competition"`
	Matches     []*match.Match    `json:"matches"`
}

type matchListDTO struct {
	Day     usecase.Day            `json:"day"`
	Tab     usecase.Tab            `json:"tab"`
	Counts  usecase.CategoryCounts `json:"counts"`
	Leagues []leagueMatchesDTO     `json:"leagues"`
}

// ListMatches serves the grouped match feed for one day and one status tab.
// Both query parameters are optional: the selection service supplies the
// current day and tab when they are omitted.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	state := h.tabs.State()

	day := state.SelectedDay
	if raw := strings.TrimSpace(r.URL.Query().Get("day")); raw != "" {
		day = usecase.Day(strings.ToLower(raw))
		if !day.Valid() {
			writeError(ctx, w, fmt.Errorf("%w: unknown day %q", usecase.ErrInvalidInput, raw))
			return
		}
	}

	tab := state.ActiveTab
	if raw := strings.TrimSpace(r.URL.Query().Get("tab")); raw != "" {
		tab = usecase.Tab(strings.ToLower(raw))
		if !tab.Valid() {
			writeError(ctx, w, fmt.Errorf("%w: unknown tab %q", usecase.ErrInvalidInput, raw))
			return
		}
	} else if day != state.SelectedDay {
		// Browsing a day other than the selected one without naming a tab:
		// apply the same policy the selection service would.
		tab = usecase.DetermineAppropriateTab(day, h.store.Counts(day))
	}

	bucket := h.bucketFor(day, tab)
	if key := strings.TrimSpace(r.URL.Query().Get("league")); key != "" {
		matches, ok := bucket[key]
		bucket = map[string][]*match.Match{}
		if ok {
			bucket[key] = matches
		}
	}

	writeSuccess(ctx, w, http.StatusOK, matchListDTO{
		Day:     day,
		Tab:     tab,
		Counts:  h.store.Counts(day),
		Leagues: groupedLeagues(bucket),
	})
}

type leagueSummaryDTO struct {
	LeagueKey   string            `json:"leagueKey"`
	Competition match.Competition `json:"competition"`
	MatchCount  int               `json:"matchCount"`
}

type dayLeaguesDTO struct {
	Day     usecase.Day        `json:"day"`
	Leagues []leagueSummaryDTO `json:"leagues"`
}

// ListDayLeagues returns the league groups present in one day's slot,
// regardless of status, for rendering a league picker.
func (h *Handler) ListDayLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDayLeagues")
	defer span.End()

	day := usecase.Day(strings.ToLower(strings.TrimSpace(r.PathValue("day"))))
	if !day.Valid() {
		writeError(ctx, w, fmt.Errorf("%w: unknown day %q", usecase.ErrInvalidInput, r.PathValue("day")))
		return
	}

	bucket := h.store.DaySnapshot(day.Date(time.Now()))
	leagues := make([]leagueSummaryDTO, 0, len(bucket))
	for key, matches := range bucket {
		if len(matches) == 0 {
			continue
		}
		leagues = append(leagues, leagueSummaryDTO{
			LeagueKey:   key,
			Competition: matches[0].Competition,
			MatchCount:  len(matches),
		})
	}
	sort.Slice(leagues, func(i, j int) bool {
		return leagues[i].LeagueKey < leagues[j].LeagueKey
	})

	writeSuccess(ctx, w, http.StatusOK, dayLeaguesDTO{Day: day, Leagues: leagues})
}

func (h *Handler) bucketFor(day usecase.Day, tab usecase.Tab) map[string][]*match.Match {
	if tab == usecase.TabLive {
		return h.store.LiveSnapshot()
	}

	date := day.Date(time.Now())
	statuses := []match.Status{match.StatusFinished}
	if tab == usecase.TabScheduled {
		statuses = []match.Status{match.StatusScheduled, match.StatusTimed}
	}
	return match.FilterByStatus(h.store.DaySnapshot(date), statuses, h.store.Location(), date)
}

func groupedLeagues(bucket map[string][]*match.Match) []leagueMatchesDTO {
	leagues := make([]leagueMatchesDTO, 0, len(bucket))
	for key, matches := range bucket {
		if len(matches) == 0 {
			continue
		}
		leagues = append(leagues, leagueMatchesDTO{
			LeagueKey:   key,
			Competition: matches[0].Competition,
			Matches:     matches,
		})
	}
	sort.Slice(leagues, func(i, j int) bool {
		return leagues[i].LeagueKey < leagues[j].LeagueKey
	})
	return leagues
}

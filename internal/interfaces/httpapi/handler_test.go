package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/kickoffhq/matchday/internal/domain/match"
	"github.com/kickoffhq/matchday/internal/platform/cache"
	"github.com/kickoffhq/matchday/internal/platform/logging"
	"github.com/kickoffhq/matchday/internal/usecase"
)

type fakeProvider struct {
	dayPayloads map[string][]match.Match
	livePayload []match.Match
	voteResult  usecase.VoteResult
	voteErr     error
}

func (p *fakeProvider) FetchMatches(_ context.Context, date string) ([]match.Match, error) {
	return p.dayPayloads[date], nil
}

func (p *fakeProvider) FetchLiveMatches(_ context.Context) ([]match.Match, error) {
	return p.livePayload, nil
}

func (p *fakeProvider) Vote(_ context.Context, _ int64, _ match.VoteChoice) (usecase.VoteResult, error) {
	if p.voteErr != nil {
		return usecase.VoteResult{}, p.voteErr
	}
	return p.voteResult, nil
}

type testAPI struct {
	router   http.Handler
	store    *usecase.MatchStoreService
	notifier *usecase.NotifierService
	tabs     *usecase.TabService
	provider *fakeProvider
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	provider := &fakeProvider{dayPayloads: map[string][]match.Match{}}
	logger := logging.NewNop()

	notifier := usecase.NewNotifierService(logger)
	store := usecase.NewMatchStoreService(provider, notifier, time.UTC, logger)
	tabs := usecase.NewTabService(store, logger)
	voter := usecase.NewVoteService(provider, store, logger)
	stats := usecase.NewStatsService(store, cache.NewStore(time.Minute), logger)
	refresher := usecase.NewRefreshService(store, stats, logger, 2)

	handler := NewHandler(store, voter, notifier, tabs, stats, refresher, logger)
	router := NewRouter(handler, logger, []string{"*"}, "job-secret")

	return &testAPI{
		router:   router,
		store:    store,
		notifier: notifier,
		tabs:     tabs,
		provider: provider,
	}
}

func apiMatch(id int64, status match.Status, kickoff time.Time) match.Match {
	return match.Match{
		ID:      id,
		UTCDate: kickoff.UTC().Format(time.RFC3339),
		Status:  status,
		Competition: match.Competition{
			ID:   2021,
			Name: "Premier League",
		},
		HomeTeam: match.Team{ID: 57, Name: "Arsenal"},
		AwayTeam: match.Team{ID: 61, Name: "Chelsea"},
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func dataObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in response, got %v", body)
	}
	return data
}

func TestListMatches_FinishedTab(t *testing.T) {
	api := newTestAPI(t)

	now := time.Now().UTC()
	todayKey := now.Format(match.DayKeyLayout)
	api.provider.dayPayloads[todayKey] = []match.Match{
		apiMatch(101, match.StatusFinished, now),
		apiMatch(102, match.StatusTimed, now),
	}
	if err := api.store.FetchFull(t.Context(), now); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/matches?day=today&tab=finished", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := dataObject(t, rec)
	if got, _ := data["tab"].(string); got != "finished" {
		t.Fatalf("expected tab=finished, got %v", data["tab"])
	}
	leagues, ok := data["leagues"].([]any)
	if !ok || len(leagues) != 1 {
		t.Fatalf("expected one league group, got %v", data["leagues"])
	}
	group := leagues[0].(map[string]any)
	if got, _ := group["leagueKey"].(string); got != "Premier League_2021" {
		t.Fatalf("unexpected league key %v", group["leagueKey"])
	}
	matches := group["matches"].([]any)
	if len(matches) != 1 {
		t.Fatalf("expected only the finished match, got %d", len(matches))
	}
}

func TestListDayLeagues(t *testing.T) {
	api := newTestAPI(t)

	now := time.Now().UTC()
	todayKey := now.Format(match.DayKeyLayout)
	api.provider.dayPayloads[todayKey] = []match.Match{
		apiMatch(101, match.StatusFinished, now),
		apiMatch(102, match.StatusTimed, now),
	}
	if err := api.store.FetchFull(t.Context(), now); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/matchdays/today/leagues", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := dataObject(t, rec)
	leagues, ok := data["leagues"].([]any)
	if !ok || len(leagues) != 1 {
		t.Fatalf("expected one league group, got %v", data["leagues"])
	}
	group := leagues[0].(map[string]any)
	if got, _ := group["matchCount"].(float64); got != 2 {
		t.Fatalf("expected matchCount=2, got %v", group["matchCount"])
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/matchdays/someday/leagues", nil)
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown day, got %d", rec.Code)
	}
}

func TestListMatches_RejectsUnknownDay(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches?day=someday", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestCastVote_AppliesConfirmedTally(t *testing.T) {
	api := newTestAPI(t)

	now := time.Now().UTC()
	todayKey := now.Format(match.DayKeyLayout)
	api.provider.dayPayloads[todayKey] = []match.Match{apiMatch(101, match.StatusTimed, now)}
	if err := api.store.FetchFull(t.Context(), now); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	api.provider.voteResult = usecase.VoteResult{
		Votes:    match.VoteCounts{Home: 7, Draw: 2, Away: 1},
		UserVote: match.VoteHome,
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/matches/101/vote", strings.NewReader(`{"choice":"home"}`))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := dataObject(t, rec)
	if got, _ := data["userVote"].(string); got != "home" {
		t.Fatalf("expected userVote=home, got %v", data["userVote"])
	}

	bucket := api.store.DaySnapshot(now)
	stored := bucket["Premier League_2021"][0]
	if stored.Votes.Home != 7 || stored.UserVote != match.VoteHome {
		t.Fatalf("expected confirmed tally in store, got %+v", stored)
	}
}

func TestCastVote_RejectsBadPayloads(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "invalid choice", path: "/v1/matches/101/vote", body: `{"choice":"maybe"}`},
		{name: "non numeric id", path: "/v1/matches/abc/vote", body: `{"choice":"home"}`},
		{name: "unknown field", path: "/v1/matches/101/vote", body: `{"choice":"home","extra":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			api.router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestSelectDay_PolicyPicksTab(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPut, "/v1/view/day", strings.NewReader(`{"day":"yesterday"}`))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := dataObject(t, rec)
	if got, _ := data["selectedDay"].(string); got != "yesterday" {
		t.Fatalf("expected selectedDay=yesterday, got %v", data["selectedDay"])
	}
	if got, _ := data["activeTab"].(string); got != "finished" {
		t.Fatalf("expected activeTab=finished, got %v", data["activeTab"])
	}
}

func TestSelectTab_SticksAsManualOverride(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPut, "/v1/view/tab", strings.NewReader(`{"tab":"scheduled"}`))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := dataObject(t, rec)
	if got, _ := data["manualOverride"].(bool); !got {
		t.Fatalf("expected manualOverride=true, got %v", data["manualOverride"])
	}
	if got, _ := data["activeTab"].(string); got != "scheduled" {
		t.Fatalf("expected activeTab=scheduled, got %v", data["activeTab"])
	}
}

func TestNotificationHead_EmptyQueue(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/notifications/head", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	data := dataObject(t, rec)
	if _, ok := data["notification"]; ok {
		t.Fatalf("expected no notification on display, got %v", data["notification"])
	}
	if got, _ := data["pending"].(float64); got != 0 {
		t.Fatalf("expected pending=0, got %v", data["pending"])
	}
}

func TestInternalJobs_RequireToken(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/refresh", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/refresh", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}

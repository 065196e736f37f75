package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kickoffhq/matchday/internal/domain/match"
	"github.com/kickoffhq/matchday/internal/platform/cache"
	"github.com/kickoffhq/matchday/internal/platform/logging"
)

const statsCacheKey = "stats:report"

// AccuracyCounts tallies correct predictions against evaluated matches.
type AccuracyCounts struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

func (a *AccuracyCounts) record(correct bool) {
	a.Total++
	if correct {
		a.Correct++
	}
}

type Accuracy struct {
	AI   AccuracyCounts `json:"ai"`
	Fan  AccuracyCounts `json:"fan"`
	User AccuracyCounts `json:"user"`
}

type LeagueAccuracy struct {
	LeagueKey  string `json:"leagueKey"`
	LeagueName string `json:"leagueName"`
	Accuracy
}

type StatsReport struct {
	Overall     Accuracy         `json:"overall"`
	Leagues     []LeagueAccuracy `json:"leagues"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// StatsService derives AI, fan-consensus and viewer accuracy from the
// finished matches currently held by the store. Reports are cached; the
// stats poll timer and any full refresh invalidate the cache.
type StatsService struct {
	store  *MatchStoreService
	cache  *cache.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewStatsService(store *MatchStoreService, cacheStore *cache.Store, logger *logging.Logger) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsService{
		store:  store,
		cache:  cacheStore,
		logger: logger,
		now:    time.Now,
	}
}

func (s *StatsService) Report(ctx context.Context) (StatsReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Report")
	defer span.End()

	if s.cache == nil {
		return s.compute(), nil
	}

	value, err := s.cache.GetOrLoad(ctx, statsCacheKey, func(context.Context) (any, error) {
		return s.compute(), nil
	})
	if err != nil {
		return StatsReport{}, fmt.Errorf("load stats report: %w", err)
	}

	report, ok := value.(StatsReport)
	if !ok {
		return StatsReport{}, fmt.Errorf("unexpected cached stats type %T", value)
	}
	return report, nil
}

// Invalidate drops the cached report so the next read recomputes.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, statsCacheKey)
	}
}

func (s *StatsService) compute() StatsReport {
	snap := s.store.Snapshot()

	report := StatsReport{GeneratedAt: s.now()}
	perLeague := make(map[string]*LeagueAccuracy)

	for _, leagues := range snap.Days {
		for key, matches := range leagues {
			for _, m := range matches {
				if !m.Status.IsFinished() {
					continue
				}
				entry := perLeague[key]
				if entry == nil {
					entry = &LeagueAccuracy{LeagueKey: key, LeagueName: m.Competition.Name}
					perLeague[key] = entry
				}
				score(m, &report.Overall, &entry.Accuracy)
			}
		}
	}

	report.Leagues = make([]LeagueAccuracy, 0, len(perLeague))
	for _, entry := range perLeague {
		report.Leagues = append(report.Leagues, *entry)
	}
	sort.Slice(report.Leagues, func(i, j int) bool {
		return report.Leagues[i].LeagueKey < report.Leagues[j].LeagueKey
	})
	return report
}

func score(m *match.Match, buckets ...*Accuracy) {
	for _, b := range buckets {
		if m.AIPrediction != "" {
			b.AI.record(match.IsPredictionCorrect(m, m.AIPrediction))
		}
		if m.FanPrediction != "" {
			b.Fan.record(match.IsPredictionCorrect(m, m.FanPrediction))
		}
		if m.UserVote != "" {
			b.User.record(match.IsPredictionCorrect(m, m.UserVote.Outcome()))
		}
	}
}

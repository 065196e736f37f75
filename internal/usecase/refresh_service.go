package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kickoffhq/matchday/internal/platform/logging"
)

const defaultRefreshWorkers = 4

// RefreshService runs the destructive full-refresh path across the whole
// yesterday/today/tomorrow window plus the live collection, fanning the
// fetches out over a bounded worker pool. Used by the admin refresh trigger
// and at boot.
type RefreshService struct {
	store   *MatchStoreService
	stats   *StatsService
	logger  *logging.Logger
	workers int
	now     func() time.Time
}

func NewRefreshService(store *MatchStoreService, stats *StatsService, logger *logging.Logger, workers int) *RefreshService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = defaultRefreshWorkers
	}
	return &RefreshService{
		store:   store,
		stats:   stats,
		logger:  logger,
		workers: workers,
		now:     time.Now,
	}
}

func (s *RefreshService) RefreshAll(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshService.RefreshAll")
	defer span.End()

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return fmt.Errorf("create refresh pool: %w", err)
	}
	defer pool.Release()

	now := s.now()
	tasks := make([]func() error, 0, len(Window())+1)
	for _, day := range Window() {
		date := day.Date(now)
		tasks = append(tasks, func() error {
			return s.store.FetchFull(ctx, date)
		})
	}
	tasks = append(tasks, func() error {
		return s.store.FetchLiveFull(ctx)
	})

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		errs  []error
		start = time.Now()
	)
	for _, task := range tasks {
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			if taskErr := task(); taskErr != nil {
				mu.Lock()
				errs = append(errs, taskErr)
				mu.Unlock()
			}
		}); submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit refresh task: %w", submitErr))
			mu.Unlock()
		}
	}
	wg.Wait()

	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}

	s.logger.InfoContext(ctx, "full refresh completed",
		"tasks", len(tasks),
		"failed", len(errs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if len(errs) > 0 {
		return fmt.Errorf("refresh window: %w", errors.Join(errs...))
	}
	return nil
}

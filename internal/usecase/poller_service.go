package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/kickoffhq/matchday/internal/platform/logging"
)

// PollerService owns the two periodic refresh loops: the soft-update timer
// (faster while the live tab is active) and the independent stats timer.
// The loops are uncoordinated; overlap protection lives in the store's
// in-flight guard, which skips rather than queues.
type PollerService struct {
	store  *MatchStoreService
	tabs   *TabService
	stats  *StatsService
	logger *logging.Logger

	liveInterval  time.Duration
	idleInterval  time.Duration
	statsInterval time.Duration
	now           func() time.Time
}

type PollerConfig struct {
	LiveInterval  time.Duration
	IdleInterval  time.Duration
	StatsInterval time.Duration
}

func NewPollerService(store *MatchStoreService, tabs *TabService, stats *StatsService, cfg PollerConfig, logger *logging.Logger) *PollerService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LiveInterval <= 0 {
		cfg.LiveInterval = 15 * time.Second
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = 30 * time.Second
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = 10 * time.Minute
	}

	return &PollerService{
		store:         store,
		tabs:          tabs,
		stats:         stats,
		logger:        logger,
		liveInterval:  cfg.LiveInterval,
		idleInterval:  cfg.IdleInterval,
		statsInterval: cfg.StatsInterval,
		now:           time.Now,
	}
}

// Run blocks until ctx is done. The soft-update interval is re-evaluated on
// every cycle so a tab change takes effect on the next tick without
// restarting the loop.
func (p *PollerService) Run(ctx context.Context) {
	go p.runStatsLoop(ctx)

	p.logger.Info("soft update poller started",
		"live_interval", p.liveInterval.String(),
		"idle_interval", p.idleInterval.String(),
	)
	timer := time.NewTimer(p.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("soft update poller stopped")
			return
		case <-timer.C:
			p.softUpdateOnce(ctx)
			timer.Reset(p.interval())
		}
	}
}

func (p *PollerService) interval() time.Duration {
	if p.tabs != nil && p.tabs.ActiveTab() == TabLive {
		return p.liveInterval
	}
	return p.idleInterval
}

func (p *PollerService) softUpdateOnce(ctx context.Context) {
	day := DayToday
	if p.tabs != nil {
		day = p.tabs.State().SelectedDay
	}

	start := time.Now()
	err := p.store.SoftUpdate(ctx, day.Date(p.now()))
	switch {
	case errors.Is(err, ErrUpdateInFlight):
		p.logger.Debug("soft update skipped, previous still running")
	case err != nil:
		p.logger.Warn("soft update failed",
			"day", string(day),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	default:
		p.logger.Debug("soft update applied",
			"day", string(day),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (p *PollerService) runStatsLoop(ctx context.Context) {
	if p.stats == nil {
		return
	}

	ticker := time.NewTicker(p.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.stats.Invalidate(ctx)
			if _, err := p.stats.Report(ctx); err != nil {
				p.logger.Warn("stats refresh failed", "error", err)
			}
		}
	}
}

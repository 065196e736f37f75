package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kickoffhq/matchday/external/scoreapi"
	"github.com/kickoffhq/matchday/internal/config"
	"github.com/kickoffhq/matchday/internal/interfaces/httpapi"
	"github.com/kickoffhq/matchday/internal/platform/cache"
	"github.com/kickoffhq/matchday/internal/platform/logging"
	"github.com/kickoffhq/matchday/internal/platform/resilience"
	"github.com/kickoffhq/matchday/internal/usecase"
)

// App bundles the HTTP server with the background loops that keep the match
// store current.
type App struct {
	Server *http.Server

	poller    *usecase.PollerService
	notifier  *usecase.NotifierService
	refresher *usecase.RefreshService
	logger    *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve display time zone: %w", err)
	}

	provider := scoreapi.NewClient(scoreapi.ClientConfig{
		BaseURL:    cfg.ScoreAPIBaseURL,
		Token:      cfg.ScoreAPIToken,
		Timeout:    cfg.ScoreAPITimeout,
		MaxRetries: cfg.ScoreAPIMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ScoreAPICircuitEnabled,
			FailureThreshold: cfg.ScoreAPICircuitFailureCount,
			OpenTimeout:      cfg.ScoreAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ScoreAPICircuitHalfOpenMaxReq,
		},
	})

	notifier := usecase.NewNotifierService(logger)
	store := usecase.NewMatchStoreService(provider, notifier, loc, logger)
	tabs := usecase.NewTabService(store, logger)
	voter := usecase.NewVoteService(provider, store, logger)

	var cacheStore *cache.Store
	if cfg.CacheEnabled {
		cacheStore = cache.NewStore(cfg.CacheTTL)
	}
	stats := usecase.NewStatsService(store, cacheStore, logger)

	refresher := usecase.NewRefreshService(store, stats, logger, cfg.RefreshWorkers)
	poller := usecase.NewPollerService(store, tabs, stats, usecase.PollerConfig{
		LiveInterval:  cfg.PollLiveInterval,
		IdleInterval:  cfg.PollIdleInterval,
		StatsInterval: cfg.PollStatsInterval,
	}, logger)

	handler := httpapi.NewHandler(store, voter, notifier, tabs, stats, refresher, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:    server,
		poller:    poller,
		notifier:  notifier,
		refresher: refresher,
		logger:    logger,
	}, nil
}

// Start launches the background loops and seeds the store with a full
// refresh. Loops stop when ctx is cancelled; the HTTP server is the
// caller's to run and shut down.
func (a *App) Start(ctx context.Context) {
	go a.poller.Run(ctx)
	go a.notifier.Run(ctx)

	go func() {
		start := time.Now()
		if err := a.refresher.RefreshAll(ctx); err != nil {
			a.logger.Warn("boot refresh incomplete", "error", err)
			return
		}
		a.logger.Info("boot refresh done", "duration_ms", time.Since(start).Milliseconds())
	}()
}

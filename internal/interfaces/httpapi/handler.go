package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/kickoffhq/matchday/internal/platform/logging"
	"github.com/kickoffhq/matchday/internal/usecase"
)

type Handler struct {
	store     *usecase.MatchStoreService
	voter     *usecase.VoteService
	notifier  *usecase.NotifierService
	tabs      *usecase.TabService
	stats     *usecase.StatsService
	refresher *usecase.RefreshService
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(
	store *usecase.MatchStoreService,
	voter *usecase.VoteService,
	notifier *usecase.NotifierService,
	tabs *usecase.TabService,
	stats *usecase.StatsService,
	refresher *usecase.RefreshService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		store:     store,
		voter:     voter,
		notifier:  notifier,
		tabs:      tabs,
		stats:     stats,
		refresher: refresher,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

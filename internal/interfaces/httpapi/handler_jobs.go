package httpapi

import (
	"net/http"
	"time"
)

type jobResultDTO struct {
	Job        string `json:"job"`
	DurationMS int64  `json:"durationMs"`
}

// RunRefreshJob triggers the destructive full refresh across the whole day
// window plus the live collection. Partial provider failures still return an
// error so the caller can retry, even though healthy slots were applied.
func (h *Handler) RunRefreshJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshJob")
	defer span.End()

	start := time.Now()
	if err := h.refresher.RefreshAll(ctx); err != nil {
		h.logger.ErrorContext(ctx, "full refresh job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, jobResultDTO{
		Job:        "refresh",
		DurationMS: time.Since(start).Milliseconds(),
	})
}

// RunSoftUpdateJob triggers one incremental reconciliation cycle for the
// currently selected day, outside the poller's own timer. A cycle already
// in flight maps to 409 rather than queuing a second one.
func (h *Handler) RunSoftUpdateJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSoftUpdateJob")
	defer span.End()

	day := h.tabs.State().SelectedDay
	start := time.Now()
	if err := h.store.SoftUpdate(ctx, day.Date(time.Now())); err != nil {
		h.logger.WarnContext(ctx, "soft update job failed", "day", string(day), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, jobResultDTO{
		Job:        "soft-update",
		DurationMS: time.Since(start).Milliseconds(),
	})
}

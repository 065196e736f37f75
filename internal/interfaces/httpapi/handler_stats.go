package httpapi

import (
	"net/http"
)

// GetStats serves the cached prediction accuracy report.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStats")
	defer span.End()

	report, err := h.stats.Report(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "build stats report failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

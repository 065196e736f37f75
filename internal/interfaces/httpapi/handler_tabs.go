package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/kickoffhq/matchday/internal/usecase"
)

type selectDayRequest struct {
	Day string `json:"day" validate:"required,oneof=yesterday today tomorrow"`
}

type selectTabRequest struct {
	Tab string `json:"tab" validate:"required,oneof=live finished scheduled"`
}

type viewStateDTO struct {
	usecase.TabState
	Counts map[usecase.Day]usecase.CategoryCounts `json:"counts"`
}

// GetViewState reports the selected day, the active tab and per-day category
// counts across the whole window, so a client can render day chips with
// badges in one round trip.
func (h *Handler) GetViewState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetViewState")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.viewState())
}

// SelectDay switches the selected day and lets the selection policy pick the
// matching tab, discarding any manual tab override.
func (h *Handler) SelectDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectDay")
	defer span.End()

	var req selectDayRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if _, err := h.tabs.SelectDay(usecase.Day(strings.ToLower(req.Day))); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.viewState())
}

// SelectTab records an explicit tab choice for the selected day. The choice
// is sticky: polling refreshes will not flap the view back.
func (h *Handler) SelectTab(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectTab")
	defer span.End()

	var req selectTabRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if _, err := h.tabs.SelectTab(usecase.Tab(strings.ToLower(req.Tab))); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.viewState())
}

func (h *Handler) viewState() viewStateDTO {
	counts := make(map[usecase.Day]usecase.CategoryCounts, len(usecase.Window()))
	for _, day := range usecase.Window() {
		counts[day] = h.store.Counts(day)
	}
	return viewStateDTO{
		TabState: h.tabs.State(),
		Counts:   counts,
	}
}

package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kickoffhq/matchday/internal/domain/notification"
	"github.com/kickoffhq/matchday/internal/usecase"
)

type notificationHeadDTO struct {
	Notification *notification.Notification `json:"notification,omitempty"`
	Pending      int                        `json:"pending"`
}

// GetNotificationHead returns the goal banner currently on display, if any,
// plus the depth of the queue behind it.
func (h *Handler) GetNotificationHead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetNotificationHead")
	defer span.End()

	dto := notificationHeadDTO{Pending: h.notifier.Pending()}
	if head, ok := h.notifier.Head(); ok {
		dto.Notification = &head
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

// DismissNotification acknowledges the displayed banner by id. Only the
// head can be dismissed; ids further down the queue are rejected so the
// display order stays first-in first-out.
func (h *Handler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DismissNotification")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("notificationID"))
	if id == "" {
		writeError(ctx, w, fmt.Errorf("%w: notification id is required", usecase.ErrInvalidInput))
		return
	}

	if !h.notifier.Dismiss(id) {
		writeError(ctx, w, fmt.Errorf("%w: notification %q is not on display", usecase.ErrNotFound, id))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, notificationHeadDTO{Pending: h.notifier.Pending()})
}

func (h *Handler) DismissAllNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DismissAllNotifications")
	defer span.End()

	h.notifier.DismissAll()
	writeSuccess(ctx, w, http.StatusOK, notificationHeadDTO{Pending: 0})
}

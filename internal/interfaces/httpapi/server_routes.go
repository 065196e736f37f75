package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matchdays/{day}/leagues", handler.ListDayLeagues)
	mux.HandleFunc("POST /v1/matches/{matchID}/vote", handler.CastVote)
	mux.HandleFunc("GET /v1/stats", handler.GetStats)
}

func registerViewRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/view", handler.GetViewState)
	mux.HandleFunc("PUT /v1/view/day", handler.SelectDay)
	mux.HandleFunc("PUT /v1/view/tab", handler.SelectTab)
	mux.HandleFunc("GET /v1/notifications/head", handler.GetNotificationHead)
	mux.HandleFunc("POST /v1/notifications/{notificationID}/dismiss", handler.DismissNotification)
	mux.HandleFunc("POST /v1/notifications/dismiss-all", handler.DismissAllNotifications)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshJob)))
	mux.Handle("POST /v1/internal/jobs/soft-update", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSoftUpdateJob)))
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Mood history.
	r.Get("/moods", h.ListMoods)
	r.Get("/moods/{date}", h.GetMood)

	// Check-in submission.
	r.Post("/checkins", h.CreateCheckin)

	r.Get("/dashboard", h.Dashboard)
	r.Get("/feelings", h.Feelings)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

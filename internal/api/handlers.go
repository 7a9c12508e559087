package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/moodlog/internal/apperr"
	"github.com/starford/moodlog/internal/checkin"
	"github.com/starford/moodlog/internal/dashboard"
	"github.com/starford/moodlog/internal/models"
	"github.com/starford/moodlog/internal/moodlog"
)

// CheckinPublisher is notified after every recorded check-in.
type CheckinPublisher interface {
	PublishCheckin(date string, streak int, replaced bool)
}

// Handler holds API route handlers.
type Handler struct {
	store     *moodlog.Store
	events    CheckinPublisher
	trendDays int
	now       func() time.Time
}

// NewHandler creates a new Handler. events may be nil.
func NewHandler(store *moodlog.Store, events CheckinPublisher, trendDays int) *Handler {
	return &Handler{store: store, events: events, trendDays: trendDays, now: time.Now}
}

// ListMoods handles GET /api/moods.
//
//	@Summary		Full mood history with the current streak
//	@Tags			moods
//	@Produce		json
//	@Success		200	{object}	MoodListResponse
//	@Security		BearerAuth
//	@Router			/moods [get]
func (h *Handler) ListMoods(w http.ResponseWriter, _ *http.Request) {
	entries, streak := h.store.Snapshot()
	writeJSON(w, http.StatusOK, MoodListResponse{Entries: entries, Streak: streak})
}

// GetMood handles GET /api/moods/{date}.
//
//	@Summary		Get the entry recorded for a date
//	@Tags			moods
//	@Produce		json
//	@Param			date	path		string	true	"Calendar date (YYYY-MM-DD)"
//	@Success		200		{object}	models.MoodEntry
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/moods/{date} [get]
func (h *Handler) GetMood(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	e, err := h.store.Entry(date)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("get mood failed", slog.String("date", date), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CreateCheckin handles POST /api/checkins.
//
//	@Summary		Record today's (or a given day's) mood
//	@Tags			checkins
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CheckinRequest	true	"Check-in"
//	@Success		201		{object}	CheckinResponse	"New date"
//	@Success		200		{object}	CheckinResponse	"Existing date replaced"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/checkins [post]
func (h *Handler) CreateCheckin(w http.ResponseWriter, r *http.Request) {
	var req CheckinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry := checkin.New(models.Feeling(req.Feeling), req.Note, h.now())
	if req.Date != "" {
		entry.Date = req.Date
	}
	if req.Time != "" {
		entry.Time = req.Time
	}
	if req.Emoji != "" {
		entry.Emoji = req.Emoji
	}

	out := h.store.Record(r.Context(), entry)
	if h.events != nil {
		h.events.PublishCheckin(entry.Date, out.Streak, out.Replaced)
	}

	status := http.StatusCreated
	if out.Replaced {
		status = http.StatusOK
	}
	writeJSON(w, status, CheckinResponse{
		Entry:    entry,
		Streak:   out.Streak,
		Replaced: out.Replaced,
		Message:  checkin.Response(entry.Feeling),
	})
}

// Dashboard handles GET /api/dashboard.
//
//	@Summary		Latest mood, weekly trend and streak
//	@Tags			dashboard
//	@Produce		json
//	@Success		200	{object}	DashboardView
//	@Security		BearerAuth
//	@Router			/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dashboard.Build(h.store, h.trendDays))
}

// Feelings handles GET /api/feelings.
//
//	@Summary		Selectable mood labels
//	@Tags			checkins
//	@Produce		json
//	@Success		200	{array}	FeelingItem
//	@Security		BearerAuth
//	@Router			/feelings [get]
func (h *Handler) Feelings(w http.ResponseWriter, _ *http.Request) {
	fs := models.Feelings()
	out := make([]FeelingItem, len(fs))
	for i, f := range fs {
		out[i] = FeelingItem{Feeling: f, Emoji: f.Emoji()}
	}
	writeJSON(w, http.StatusOK, out)
}

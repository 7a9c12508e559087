package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/moodlog/internal/dashboard"
	"github.com/starford/moodlog/internal/models"
)

// CheckinRequest is the request body for submitting a check-in.
// Date, Time and Emoji default to the current day, time and the feeling's glyph.
type CheckinRequest struct {
	Feeling string `json:"feeling" example:"good" validate:"required"`
	Note    string `json:"note" example:"Went for a walk"`
	Emoji   string `json:"emoji,omitempty" example:"🙂"`
	Date    string `json:"date,omitempty" example:"2024-01-02"`
	Time    string `json:"time,omitempty" example:"09:30 AM"`
}

// Validate checks the request against the known feeling labels and date layout.
func (r CheckinRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Feeling, validation.Required, validation.In(feelingValues()...)),
		validation.Field(&r.Note, validation.Length(0, maxNoteLen)),
		validation.Field(&r.Date, validation.Date(models.DateLayout)),
	)
}

const maxNoteLen = 4000

func feelingValues() []interface{} {
	fs := models.Feelings()
	out := make([]interface{}, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

// CheckinResponse is returned after a check-in is recorded.
type CheckinResponse struct {
	Entry    models.MoodEntry `json:"entry" validate:"required"`
	Streak   int              `json:"streak" example:"3" validate:"required"`
	Replaced bool             `json:"replaced" validate:"required"`
	Message  string           `json:"message" example:"I'm glad you're feeling good today! 💙"`
}

// MoodListResponse is the full history with the current streak.
type MoodListResponse struct {
	Entries models.MoodLog `json:"entries" validate:"required"`
	Streak  int            `json:"streak" example:"3" validate:"required"`
}

// FeelingItem describes one selectable mood.
type FeelingItem struct {
	Feeling models.Feeling `json:"feeling" example:"okay" validate:"required"`
	Emoji   string         `json:"emoji" example:"😐" validate:"required"`
}

// DashboardView is the dashboard payload (aliased from the domain layer).
type DashboardView = dashboard.View

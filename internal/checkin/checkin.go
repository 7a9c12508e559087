// Package checkin builds mood entries the way the daily check-in submits them.
package checkin

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/moodlog/internal/apperr"
	"github.com/starford/moodlog/internal/models"
)

// TimeLayout is the human-readable time-of-day stamped on entries.
const TimeLayout = "03:04 PM"

var responses = map[models.Feeling]string{
	models.FeelingGreat:     "That's wonderful! 🌟 Keep riding this positive wave!",
	models.FeelingGood:      "I'm glad you're feeling good today! 💙",
	models.FeelingOkay:      "Thanks for checking in 💜 Sometimes okay is perfectly fine.",
	models.FeelingNotGreat:  "I hear you 🤗 Would you like some coping strategies to help?",
	models.FeelingDifficult: "I'm sorry you're having a tough time 💕 You're brave for reaching out.",
}

// New returns the entry for a check-in made at now. The date is the UTC
// calendar day; the time is local to now's location.
func New(feeling models.Feeling, note string, now time.Time) models.MoodEntry {
	return models.MoodEntry{
		Emoji:   feeling.Emoji(),
		Feeling: feeling,
		Note:    strings.TrimSpace(note),
		Date:    now.UTC().Format(models.DateLayout),
		Time:    now.Format(TimeLayout),
	}
}

// Response returns the reply shown after a check-in, or "" for unknown labels.
func Response(feeling models.Feeling) string {
	return responses[feeling]
}

// ParseFeeling maps user input to a known label. Matching ignores case and
// surrounding space, and accepts "not-great"/"not_great" for "not great".
func ParseFeeling(s string) (models.Feeling, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	f := models.Feeling(norm)
	if !f.Valid() {
		return "", fmt.Errorf("%w: unknown feeling %q", apperr.ErrInvalidInput, s)
	}
	return f, nil
}

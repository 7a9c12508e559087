// Package dashboard assembles the read-only summary shown on the home view.
package dashboard

import (
	"time"

	"github.com/starford/moodlog/internal/models"
	"github.com/starford/moodlog/internal/moodlog"
)

// DefaultTrendDays is the length of the weekly trend strip.
const DefaultTrendDays = 7

// TrendPoint is one day in the trend strip.
type TrendPoint struct {
	Date    string         `json:"date"`
	Weekday string         `json:"weekday"`
	Emoji   string         `json:"emoji"`
	Feeling models.Feeling `json:"feeling"`
}

// View is the dashboard payload.
type View struct {
	Today  *models.MoodEntry `json:"today"`
	Trend  []TrendPoint      `json:"trend"`
	Streak int               `json:"streak"`
}

// Build reads one snapshot of r and returns the dashboard view.
// trendDays <= 0 uses DefaultTrendDays.
func Build(r moodlog.Reader, trendDays int) View {
	if trendDays <= 0 {
		trendDays = DefaultTrendDays
	}

	log, streak := r.Snapshot()
	v := View{Trend: []TrendPoint{}, Streak: streak}
	if latest, ok := log.Latest(); ok {
		v.Today = &latest
	}
	for _, e := range log.Recent(trendDays) {
		v.Trend = append(v.Trend, TrendPoint{
			Date:    e.Date,
			Weekday: weekday(e.Date),
			Emoji:   e.Emoji,
			Feeling: e.Feeling,
		})
	}
	return v
}

func weekday(date string) string {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return ""
	}
	return d.Weekday().String()[:3]
}

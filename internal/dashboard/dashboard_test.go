package dashboard

import (
	"context"
	"fmt"
	"testing"

	"github.com/starford/moodlog/internal/models"
	"github.com/starford/moodlog/internal/moodlog"
	"github.com/starford/moodlog/internal/storage"
)

func TestBuild_Empty(t *testing.T) {
	s := moodlog.New(storage.NewMemory(), nil)
	v := Build(s, 0)
	if v.Today != nil {
		t.Errorf("Today = %+v, want nil", v.Today)
	}
	if v.Trend == nil || len(v.Trend) != 0 {
		t.Errorf("Trend = %v, want empty slice", v.Trend)
	}
	if v.Streak != 0 {
		t.Errorf("Streak = %d", v.Streak)
	}
}

func TestBuild_TrendAndToday(t *testing.T) {
	s := moodlog.New(storage.NewMemory(), nil)
	ctx := context.Background()
	for d := 1; d <= 10; d++ {
		s.RecordEntry(ctx, models.MoodEntry{
			Date:    fmt.Sprintf("2024-01-%02d", d),
			Feeling: models.FeelingGood,
			Emoji:   models.FeelingGood.Emoji(),
		})
	}

	v := Build(s, DefaultTrendDays)
	if v.Today == nil || v.Today.Date != "2024-01-10" {
		t.Fatalf("Today = %+v", v.Today)
	}
	if len(v.Trend) != 7 {
		t.Fatalf("len(Trend) = %d, want 7", len(v.Trend))
	}
	if v.Trend[0].Date != "2024-01-04" {
		t.Errorf("Trend[0].Date = %q", v.Trend[0].Date)
	}
	// 2024-01-04 was a Thursday.
	if v.Trend[0].Weekday != "Thu" {
		t.Errorf("Trend[0].Weekday = %q, want Thu", v.Trend[0].Weekday)
	}
	if v.Streak != 10 {
		t.Errorf("Streak = %d, want 10", v.Streak)
	}
}

func TestWeekday_Unparseable(t *testing.T) {
	if got := weekday("someday"); got != "" {
		t.Errorf("weekday = %q, want empty", got)
	}
}

// fixedReader serves one prepared snapshot.
type fixedReader struct {
	log    models.MoodLog
	streak int
	calls  int
}

func (r *fixedReader) Snapshot() (models.MoodLog, int) {
	r.calls++
	return r.log.Clone(), r.streak
}

func TestBuild_UsesOneSnapshot(t *testing.T) {
	r := &fixedReader{
		log: models.MoodLog{
			{Date: "2024-03-01", Feeling: models.FeelingOkay},
			{Date: "2024-03-02", Feeling: models.FeelingGreat},
		},
		streak: 2,
	}

	v := Build(r, 1)
	if r.calls != 1 {
		t.Errorf("Snapshot called %d times, want 1", r.calls)
	}
	if v.Today == nil || v.Today.Date != "2024-03-02" || v.Streak != 2 {
		t.Fatalf("view = %+v", v)
	}
	if len(v.Trend) != 1 || v.Trend[0].Date != v.Today.Date {
		t.Errorf("trend %+v disagrees with today %+v", v.Trend, v.Today)
	}
}

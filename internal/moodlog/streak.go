package moodlog

import (
	"sort"
	"time"

	"github.com/starford/moodlog/internal/models"
)

// ComputeStreak counts consecutive calendar days, ending at the most recent
// entry, that have an entry. It stops at the first gap that is not exactly
// one day. Entries whose date does not parse sort last and end the walk.
func ComputeStreak(entries []models.MoodEntry) int {
	if len(entries) == 0 {
		return 0
	}

	days := make([]time.Time, len(entries))
	valid := make([]bool, len(entries))
	for i, e := range entries {
		d, err := time.Parse(models.DateLayout, e.Date)
		days[i], valid[i] = d, err == nil
	}

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if valid[ia] != valid[ib] {
			return valid[ia]
		}
		return days[ia].After(days[ib])
	})

	streak := 1
	for i := 1; i < len(order); i++ {
		prev, cur := order[i-1], order[i]
		if !valid[prev] || !valid[cur] {
			break
		}
		if dayGap(days[prev], days[cur]) != 1 {
			break
		}
		streak++
	}
	return streak
}

// dayGap returns the whole number of days from b to a. Both are UTC midnights.
func dayGap(a, b time.Time) int {
	return int(a.Sub(b).Hours()) / 24
}

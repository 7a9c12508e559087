// Package moodlog owns the mood history and the consecutive check-in streak.
package moodlog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/starford/moodlog/internal/apperr"
	"github.com/starford/moodlog/internal/checksum"
	"github.com/starford/moodlog/internal/models"
	"github.com/starford/moodlog/internal/storage"
)

// Well-known storage keys.
const (
	MoodsKey  = "wellness-moods"
	StreakKey = "wellness-streak"
)

// Outcome is the result of recording an entry.
type Outcome struct {
	Log      models.MoodLog
	Streak   int
	Replaced bool
}

// Reader is the read-only view of the store used by the dashboard. A single
// Snapshot keeps the log and the streak consistent with each other.
type Reader interface {
	Snapshot() (models.MoodLog, int)
}

// Store holds the mood log in memory and mirrors it to a storage.Provider.
//
// Storage failures never reach callers: reads fall back to empty state and
// writes are logged and dropped.
type Store struct {
	provider storage.Provider
	logger   *slog.Logger

	mu      sync.RWMutex
	entries models.MoodLog
	streak  int
	sum     string // checksum of the last payload read or written
}

var _ Reader = (*Store)(nil)

// New creates an empty store. Call Load to read persisted state.
func New(provider storage.Provider, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		provider: provider,
		logger:   logger,
		entries:  models.MoodLog{},
	}
}

// Load replaces in-memory state with what storage holds and returns it.
func (s *Store) Load(ctx context.Context) (models.MoodLog, int) {
	entries, streak, sum, _ := s.read(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries, s.streak, s.sum = entries, streak, sum
	return s.entries.Clone(), s.streak
}

// Reload re-reads storage and reports whether its content differed from the
// last payload this store read or wrote. A failed read keeps the current state.
func (s *Store) Reload(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx)
}

// RecordEntry stores entry and returns the updated log and streak.
func (s *Store) RecordEntry(ctx context.Context, entry models.MoodEntry) (models.MoodLog, int) {
	out := s.Record(ctx, entry)
	return out.Log, out.Streak
}

// Record stores entry. An entry for an existing date replaces it in place and
// leaves the streak alone; a new date is appended and the streak recomputed.
//
// Storage is re-read first and a log persisted by another process is adopted
// before the entry is applied. The write ignores ctx cancellation.
func (s *Store) Record(ctx context.Context, entry models.MoodEntry) Outcome {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh(ctx)

	replaced := false
	if i := s.entries.Index(entry.Date); i >= 0 {
		s.entries[i] = entry
		replaced = true
	} else {
		s.entries = append(s.entries, entry)
		s.streak = ComputeStreak(s.entries)
	}

	s.persist(ctx)

	return Outcome{Log: s.entries.Clone(), Streak: s.streak, Replaced: replaced}
}

// Snapshot returns a copy of the log and the current streak.
func (s *Store) Snapshot() (models.MoodLog, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Clone(), s.streak
}

// Streak returns the current streak.
func (s *Store) Streak() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streak
}

// Recent returns up to n trailing entries in log order.
func (s *Store) Recent(n int) []models.MoodEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Recent(n)
}

// Entry returns the entry recorded for date, or apperr.ErrNotFound.
func (s *Store) Entry(date string) (models.MoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.entries.Index(date); i >= 0 {
		return s.entries[i], nil
	}
	return models.MoodEntry{}, apperr.ErrNotFound
}

// persist writes both keys. Caller holds s.mu.
func (s *Store) persist(ctx context.Context) {
	moods, err := json.Marshal(s.entries)
	if err != nil {
		s.logger.Warn("moodlog: encode entries failed", slog.String("error", err.Error()))
		return
	}
	streak := []byte(strconv.Itoa(s.streak))

	saved := true
	if err := s.provider.Put(ctx, MoodsKey, moods); err != nil {
		s.logger.Warn("moodlog: save entries failed", slog.String("error", err.Error()))
		saved = false
	}
	if err := s.provider.Put(ctx, StreakKey, streak); err != nil {
		s.logger.Warn("moodlog: save streak failed", slog.String("error", err.Error()))
		saved = false
	}
	// sum tracks what storage holds, so it only moves on a full write.
	if saved {
		s.sum = checksum.Sum(moods, streak)
	}
}

// refresh adopts persisted state that differs from the last payload this
// store read or wrote and reports whether it did. Caller holds s.mu.
func (s *Store) refresh(ctx context.Context) bool {
	entries, streak, sum, ok := s.read(ctx)
	if !ok || sum == s.sum {
		return false
	}
	s.entries, s.streak, s.sum = entries, streak, sum
	return true
}

// read loads both keys independently; anything absent or malformed counts as
// empty. ok is false when a key could not be read at all.
func (s *Store) read(ctx context.Context) (entries models.MoodLog, streak int, sum string, ok bool) {
	rawMoods, okMoods := s.get(ctx, MoodsKey)
	rawStreak, okStreak := s.get(ctx, StreakKey)
	ok = okMoods && okStreak

	entries = models.MoodLog{}
	if rawMoods != nil {
		var decoded models.MoodLog
		if err := json.Unmarshal(rawMoods, &decoded); err != nil {
			s.logger.Warn("moodlog: malformed entries ignored", slog.String("error", err.Error()))
		} else {
			entries = dedupe(decoded)
		}
	}

	if rawStreak != nil {
		n, err := strconv.Atoi(strings.TrimSpace(string(rawStreak)))
		if err != nil {
			s.logger.Warn("moodlog: malformed streak ignored", slog.String("error", err.Error()))
		} else {
			streak = n
		}
	}

	return entries, streak, checksum.Sum(rawMoods, rawStreak), ok
}

// get returns the value of key, nil when it is absent. ok is false on a read
// error other than absence.
func (s *Store) get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.provider.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, true
		}
		s.logger.Warn("moodlog: read failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}
	return data, true
}

// dedupe collapses repeated dates: the later value wins at the earlier position.
func dedupe(in models.MoodLog) models.MoodLog {
	out := make(models.MoodLog, 0, len(in))
	for _, e := range in {
		if i := out.Index(e.Date); i >= 0 {
			out[i] = e
			continue
		}
		out = append(out, e)
	}
	return out
}

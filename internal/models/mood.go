// Package models defines the domain types for moodlog.
package models

// DateLayout is the calendar-date layout of MoodEntry.Date.
const DateLayout = "2006-01-02"

// Feeling is a self-reported mood label.
type Feeling string

// Known feeling labels, best to worst.
const (
	FeelingGreat     Feeling = "great"
	FeelingGood      Feeling = "good"
	FeelingOkay      Feeling = "okay"
	FeelingNotGreat  Feeling = "not great"
	FeelingDifficult Feeling = "difficult"
)

var feelingEmoji = map[Feeling]string{
	FeelingGreat:     "😊",
	FeelingGood:      "🙂",
	FeelingOkay:      "😐",
	FeelingNotGreat:  "😕",
	FeelingDifficult: "😢",
}

// Feelings returns every known label in display order.
func Feelings() []Feeling {
	return []Feeling{FeelingGreat, FeelingGood, FeelingOkay, FeelingNotGreat, FeelingDifficult}
}

// Valid reports whether f is one of the known labels.
func (f Feeling) Valid() bool {
	_, ok := feelingEmoji[f]
	return ok
}

// Emoji returns the display glyph for f, or "" for unknown labels.
func (f Feeling) Emoji() string {
	return feelingEmoji[f]
}

// MoodEntry is one self-reported daily mood sample. Date is the natural key.
type MoodEntry struct {
	Emoji   string  `json:"emoji"`
	Feeling Feeling `json:"feeling"`
	Note    string  `json:"note"`
	Date    string  `json:"date"`
	Time    string  `json:"time"`
}

// MoodLog is the ordered mood history, unique by Date.
type MoodLog []MoodEntry

// Index returns the position of the entry for date, or -1.
func (l MoodLog) Index(date string) int {
	for i, e := range l {
		if e.Date == date {
			return i
		}
	}
	return -1
}

// Latest returns the last entry in log order.
func (l MoodLog) Latest() (MoodEntry, bool) {
	if len(l) == 0 {
		return MoodEntry{}, false
	}
	return l[len(l)-1], true
}

// Recent returns a copy of up to n trailing entries in log order.
func (l MoodLog) Recent(n int) MoodLog {
	if n <= 0 {
		return MoodLog{}
	}
	return l[max(len(l)-n, 0):].Clone()
}

// Clone returns a copy that shares no backing array with l.
func (l MoodLog) Clone() MoodLog {
	out := make(MoodLog, len(l))
	copy(out, l)
	return out
}

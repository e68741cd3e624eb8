package reminder

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the minute-resolution wall-clock format used in the reminders file
// and on every user-facing surface.
const TimeLayout = "2006-01-02 15:04"

// Repeat is the recurrence mode of a reminder.
type Repeat string

// Recurrence modes.
const (
	RepeatNone   Repeat = "None"
	RepeatDaily  Repeat = "Daily"
	RepeatWeekly Repeat = "Weekly"
)

// ParseRepeat accepts any casing of none, daily or weekly. An empty string means None.
func ParseRepeat(s string) (Repeat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RepeatNone, nil
	case "daily":
		return RepeatDaily, nil
	case "weekly":
		return RepeatWeekly, nil
	default:
		return "", fmt.Errorf("unknown repeat %q (supported: None, Daily, Weekly)", s)
	}
}

// Next returns the due time one period after t. ok is false for RepeatNone.
func (r Repeat) Next(t time.Time) (next time.Time, ok bool) {
	switch r {
	case RepeatDaily:
		return t.AddDate(0, 0, 1), true
	case RepeatWeekly:
		return t.AddDate(0, 0, 7), true
	default:
		return time.Time{}, false
	}
}

// Reminder represents a scheduled reminder item.
type Reminder struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	DueAt       time.Time `json:"due_at"`
	Repeat      Repeat    `json:"repeat"`
}

// Input carries the user-editable fields for Add and Update.
type Input struct {
	Description string
	DueAt       time.Time
	Repeat      Repeat
}

// Fired describes one reminder that came due during a sweep.
type Fired struct {
	ID          string
	Description string
	DueAt       time.Time // due time that triggered the fire
	FiredAt     time.Time // sweep timestamp
	Repeat      Repeat
	// Next is the advanced due time for recurring reminders, zero otherwise.
	Next time.Time
}

// ParseTime parses a TimeLayout string as local wall-clock time.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q (use YYYY-MM-DD HH:MM): %w", s, err)
	}
	return t, nil
}

// FormatTime renders t in TimeLayout in local time.
func FormatTime(t time.Time) string {
	return t.In(time.Local).Format(TimeLayout)
}

// truncateMinute drops seconds and sub-seconds while keeping the wall clock.
func truncateMinute(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
}

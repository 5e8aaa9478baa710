package alarm

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidClock is returned when an hour or minute is out of range.
var ErrInvalidClock = errors.New("invalid clock time")

// Schedule is the single alarm slot: the clock time the user picked and
// the next moment it fires.
type Schedule struct {
	// Hour is the chosen hour of day, 0-23.
	Hour int
	// Minute is the chosen minute, 0-59.
	Minute int
	// NextTrigger is the absolute time the alarm fires next.
	NextTrigger time.Time
	// UpdatedAt is when the slot was last changed.
	UpdatedAt time.Time
	// IsArmed indicates whether the alarm will fire at NextTrigger.
	IsArmed bool
	// IsTriggered is set when the alarm fired and is cleared once the
	// ringing screen has been presented for it.
	IsTriggered bool
}

// Clone returns a copy of the schedule to avoid leaking internal references.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// IsDue reports whether an armed alarm should fire at now.
func (s *Schedule) IsDue(now time.Time) bool {
	return s != nil && s.IsArmed && !s.NextTrigger.IsZero() && !now.Before(s.NextTrigger)
}

// ClockString renders the chosen clock time as HH:MM.
func (s *Schedule) ClockString() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// NextOccurrence returns the next moment strictly after now at hour:minute
// in now's location, with seconds zeroed. A clock time that is already past
// today, or is exactly now, rolls over to tomorrow.
func NextOccurrence(now time.Time, hour, minute int) (time.Time, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("%02d:%02d: %w", hour, minute, ErrInvalidClock)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}

	return next, nil
}

// ParseClock parses an HH:MM string into hour and minute.
func ParseClock(value string) (int, int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("parse %q: %w", value, ErrInvalidClock)
	}

	return parsed.Hour(), parsed.Minute(), nil
}

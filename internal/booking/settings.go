// Package booking holds the scheduling policy rules: booking admissibility,
// cancellation, overlap detection and the timezone-aware day and slot
// arithmetic used by calendar views.
//
// Everything in this package is pure. Callers pass the current Settings and
// the current instant explicitly.
package booking

import (
	"strings"
	"time"
)

// Settings is the scheduling policy applied to every booking.
type Settings struct {
	WorkStartHour             int
	WorkEndHour               int
	BookingStepMinutes        int
	WorkDays                  []time.Weekday
	MaxBookingDistanceDays    int
	MaxBookingDurationMinutes int
	RequireDescription        bool
	Timezone                  string
}

// DefaultTimezone is used when no timezone has been configured.
const DefaultTimezone = "UTC"

// DefaultSettings returns the policy used before an administrator changes anything.
func DefaultSettings() Settings {
	return Settings{
		WorkStartHour:             9,
		WorkEndHour:               18,
		BookingStepMinutes:        30,
		WorkDays:                  []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		MaxBookingDistanceDays:    14,
		MaxBookingDurationMinutes: 120,
		RequireDescription:        false,
		Timezone:                  DefaultTimezone,
	}
}

// Location resolves the configured IANA timezone, falling back to UTC when the
// name is blank or unknown.
func (s Settings) Location() *time.Location {
	name := strings.TrimSpace(s.Timezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsWorkDay reports whether the weekday is bookable.
func (s Settings) IsWorkDay(day time.Weekday) bool {
	for _, d := range s.WorkDays {
		if d == day {
			return true
		}
	}
	return false
}

package booking

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used by query parameters.
const DateLayout = "2006-01-02"

// Parts is the wall-clock view of an instant in a timezone.
type Parts struct {
	Hour    int
	Minute  int
	Weekday time.Weekday
	Date    string
}

// LocalParts converts instant to wall-clock parts in loc. DST transitions are
// handled by the timezone database rather than by fixed offsets.
func LocalParts(instant time.Time, loc *time.Location) Parts {
	if loc == nil {
		loc = time.UTC
	}
	local := instant.In(loc)
	return Parts{
		Hour:    local.Hour(),
		Minute:  local.Minute(),
		Weekday: local.Weekday(),
		Date:    local.Format(DateLayout),
	}
}

// StartOfDay returns local midnight of the day containing instant.
func StartOfDay(instant time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := instant.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(date string) (time.Time, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return day, nil
}

// DayBounds returns the instants of startHour:00 and endHour:00 on date in
// loc. The UTC offset is sampled at local noon and applied to both hours, so
// on a DST transition day the bounds can be off by the shift.
func DayBounds(date string, loc *time.Location, startHour, endHour int) (time.Time, time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}

	y, m, d := day.Date()
	_, offset := time.Date(y, m, d, 12, 0, 0, 0, loc).Zone()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(-time.Duration(offset) * time.Second)

	return midnight.Add(time.Duration(startHour) * time.Hour), midnight.Add(time.Duration(endHour) * time.Hour), nil
}

// SlotsForDay lists slot start instants from the opening hour up to, but not
// including, the closing hour of date in the configured timezone.
func SlotsForDay(date string, settings Settings) ([]time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	if settings.BookingStepMinutes <= 0 {
		return nil, nil
	}

	loc := settings.Location()
	y, m, d := day.Date()
	opening := time.Date(y, m, d, settings.WorkStartHour, 0, 0, 0, loc)
	closing := time.Date(y, m, d, settings.WorkEndHour, 0, 0, 0, loc)
	step := time.Duration(settings.BookingStepMinutes) * time.Minute

	var slots []time.Time
	for slot := opening; slot.Before(closing); slot = slot.Add(step) {
		slots = append(slots, slot)
	}
	return slots, nil
}

// DurationOptions lists the selectable booking lengths in minutes.
func DurationOptions(settings Settings) []int {
	step := settings.BookingStepMinutes
	if step <= 0 {
		return nil
	}
	var options []int
	for minutes := step; minutes <= settings.MaxBookingDurationMinutes; minutes += step {
		options = append(options, minutes)
	}
	return options
}

// IsWorkDay reports whether the calendar date falls on a configured work day.
func IsWorkDay(date string, settings Settings) bool {
	day, err := ParseDate(date)
	if err != nil {
		return false
	}
	return settings.IsWorkDay(day.Weekday())
}

// SelectableDays lists the work days from today through today plus the
// booking horizon, inclusive, as local dates.
func SelectableDays(settings Settings, now time.Time) []string {
	today := StartOfDay(now, settings.Location())
	var days []string
	for i := 0; i <= settings.MaxBookingDistanceDays; i++ {
		day := today.AddDate(0, 0, i)
		if settings.IsWorkDay(day.Weekday()) {
			days = append(days, day.Format(DateLayout))
		}
	}
	return days
}

// FirstWorkDay returns the first work day on or after today. When no weekday
// is configured as a work day, today is returned.
func FirstWorkDay(settings Settings, now time.Time) string {
	today := StartOfDay(now, settings.Location())
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, i)
		if settings.IsWorkDay(day.Weekday()) {
			return day.Format(DateLayout)
		}
	}
	return today.Format(DateLayout)
}

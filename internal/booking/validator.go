package booking

import (
	"fmt"
	"strings"
	"time"
)

// MaxDescriptionLength caps stored booking descriptions, in runes.
const MaxDescriptionLength = 150

// Request is a proposed booking as submitted by a user.
type Request struct {
	RoomID          string
	Start           time.Time
	DurationMinutes int
	Description     *string
}

// Candidate is a request that passed every policy check except overlap.
type Candidate struct {
	RoomID      string
	Start       time.Time
	End         time.Time
	Description *string
}

// Interval is a half-open [Start, End) time range occupied by a booking.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Validate applies the scheduling policy to req. The first violated rule is
// returned as a *Rejection; on success the normalized candidate carries the
// derived end time and the cleaned description.
func Validate(req Request, settings Settings, now time.Time) (Candidate, error) {
	if strings.TrimSpace(req.RoomID) == "" || req.Start.IsZero() || req.DurationMinutes <= 0 {
		return Candidate{}, reject(ReasonMissingFields, "Please specify room, time and duration")
	}

	description := NormalizeDescription(req.Description)
	if settings.RequireDescription && description == nil {
		return Candidate{}, reject(ReasonDescriptionRequired, "Please add a description or meeting purpose")
	}

	step := settings.BookingStepMinutes
	maxDuration := settings.MaxBookingDurationMinutes
	if req.DurationMinutes < step || req.DurationMinutes > maxDuration || (step > 0 && req.DurationMinutes%step != 0) {
		return Candidate{}, reject(ReasonDurationOutOfRange,
			fmt.Sprintf("Duration must be between %d and %d minutes", step, maxDuration))
	}

	start := req.Start
	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)
	loc := settings.Location()

	today := StartOfDay(now, loc)
	if start.Before(today) {
		return Candidate{}, reject(ReasonInPast, "Cannot book in the past")
	}

	horizon := today.AddDate(0, 0, settings.MaxBookingDistanceDays)
	if !start.Before(horizon) {
		return Candidate{}, reject(ReasonTooFarAhead,
			fmt.Sprintf("Booking is only available for the next %d days", settings.MaxBookingDistanceDays))
	}

	if !WithinWorkingHours(start, end, settings) {
		return Candidate{}, reject(ReasonOutsideWorkingHours,
			fmt.Sprintf("Time must be within working hours (%d:00–%d:00)", settings.WorkStartHour, settings.WorkEndHour))
	}

	if !settings.IsWorkDay(LocalParts(start, loc).Weekday) {
		return Candidate{}, reject(ReasonNotWorkDay, "Weekends are not available for booking")
	}

	return Candidate{
		RoomID:      strings.TrimSpace(req.RoomID),
		Start:       start,
		End:         end,
		Description: description,
	}, nil
}

// WithinWorkingHours reports whether [start, end) lies inside the configured
// working hours of a single local day. An end exactly on the closing hour is
// allowed.
func WithinWorkingHours(start, end time.Time, settings Settings) bool {
	loc := settings.Location()
	s := LocalParts(start, loc)
	e := LocalParts(end, loc)

	if s.Hour < settings.WorkStartHour {
		return false
	}
	if e.Date != s.Date {
		return false
	}
	if e.Hour < settings.WorkEndHour {
		return true
	}
	return e.Hour == settings.WorkEndHour && e.Minute == 0
}

// CheckOverlap rejects the candidate when it intersects any existing interval.
func CheckOverlap(candidate Candidate, existing []Interval) error {
	for _, other := range existing {
		if Overlaps(candidate.Start, candidate.End, other.Start, other.End) {
			return reject(ReasonSlotTaken, "This slot is already taken or overlaps with another booking")
		}
	}
	return nil
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// CheckCancellation decides whether a booking starting at start may be
// removed. Administrators may always cancel; owners only while the booking is
// still in the future.
func CheckCancellation(start, now time.Time, isOwner, isAdmin bool) error {
	if isAdmin {
		return nil
	}
	if !isOwner {
		return reject(ReasonNotOwner, "You can only cancel your own bookings")
	}
	if !start.After(now) {
		return reject(ReasonCannotCancelPast, "Cannot cancel a past booking")
	}
	return nil
}

// NormalizeDescription trims the description, maps blank values to nil and
// truncates to MaxDescriptionLength runes.
func NormalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	if runes := []rune(trimmed); len(runes) > MaxDescriptionLength {
		trimmed = string(runes[:MaxDescriptionLength])
	}
	return &trimmed
}

package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// BookingStore captures the persistence operations needed by the booking service.
type BookingStore interface {
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
	CreateBookingExclusive(ctx context.Context, booking persistence.Booking, check persistence.OverlapCheck) error
	GetBooking(ctx context.Context, id string) (persistence.Booking, error)
	ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.BookingDetail, error)
	DeleteBooking(ctx context.Context, id string) error
}

// SettingsProvider returns the scheduling policy in effect.
type SettingsProvider interface {
	Current(ctx context.Context) (booking.Settings, error)
}

// BookingService applies the scheduling policy to booking requests and serves
// the day, admin, calendar and kiosk views.
type BookingService struct {
	store       BookingStore
	settings    SettingsProvider
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService constructs a BookingService with the provided dependencies.
func NewBookingService(store BookingStore, settings SettingsProvider, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(store, settings, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a BookingService with a specified logger.
func NewBookingServiceWithLogger(store BookingStore, settings SettingsProvider, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		store:       store,
		settings:    settings,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

func (s *BookingService) ready() error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.store == nil || s.settings == nil {
		return fmt.Errorf("booking service not configured")
	}
	return nil
}

// Create validates the request against the current policy and stores it. The
// overlap check and the insert run atomically in the store.
func (s *BookingService) Create(ctx context.Context, params CreateBookingParams) (created Booking, err error) {
	if err = s.ready(); err != nil {
		return
	}
	if s.idGenerator == nil {
		err = fmt.Errorf("booking service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		logOutcome(ctx, logger, err, "booking not created", "booking created", "booking_id", created.ID)
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthenticated
		return
	}

	var settings booking.Settings
	settings, err = s.settings.Current(ctx)
	if err != nil {
		return
	}

	now := s.now()
	var candidate booking.Candidate
	candidate, err = booking.Validate(booking.Request{
		RoomID:          params.RoomID,
		Start:           params.Start,
		DurationMinutes: params.DurationMinutes,
		Description:     params.Description,
	}, settings, now)
	if err != nil {
		return
	}

	var room persistence.Room
	room, err = s.store.GetRoom(ctx, candidate.RoomID)
	if err != nil {
		err = notFound("Room", err)
		return
	}
	if !room.IsActive {
		err = invalid("Room is not available for booking")
		return
	}

	record := persistence.Booking{
		ID:          s.idGenerator(),
		RoomID:      candidate.RoomID,
		UserID:      params.Principal.UserID,
		StartTime:   candidate.Start.UTC(),
		EndTime:     candidate.End.UTC(),
		Description: candidate.Description,
		CreatedAt:   now,
	}
	err = s.store.CreateBookingExclusive(ctx, record, func(existing []persistence.Booking) error {
		intervals := make([]booking.Interval, 0, len(existing))
		for _, other := range existing {
			intervals = append(intervals, booking.Interval{Start: other.StartTime, End: other.EndTime})
		}
		return booking.CheckOverlap(candidate, intervals)
	})
	if err != nil {
		if errors.Is(err, persistence.ErrForeignKeyViolation) {
			err = &NotFoundError{Resource: "Room"}
		}
		return
	}

	created = bookingFromRecord(record)
	return
}

// Cancel removes a booking. Owners may cancel their future bookings and
// administrators may cancel any booking.
func (s *BookingService) Cancel(ctx context.Context, principal Principal, bookingID string) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Cancel",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)
	defer func() {
		logOutcome(ctx, logger, err, "booking not cancelled", "booking cancelled")
	}()

	var existing persistence.Booking
	existing, err = s.store.GetBooking(ctx, strings.TrimSpace(bookingID))
	if err != nil {
		return notFound("Booking", err)
	}

	isOwner := principal.UserID != "" && existing.UserID == principal.UserID
	if err = booking.CheckCancellation(existing.StartTime, s.now(), isOwner, principal.IsAdmin()); err != nil {
		return err
	}

	if err = s.store.DeleteBooking(ctx, existing.ID); err != nil {
		return notFound("Booking", err)
	}
	return nil
}

// ListDay returns the bookings of a room that intersect the working hours of
// the given local date.
func (s *BookingService) ListDay(ctx context.Context, query DayQuery) ([]BookingView, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	roomID := strings.TrimSpace(query.RoomID)
	date := strings.TrimSpace(query.Date)
	if roomID == "" || date == "" {
		return nil, invalid("roomId and date required")
	}

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.listDay(ctx, roomID, date, settings)
}

func (s *BookingService) listDay(ctx context.Context, roomID, date string, settings booking.Settings) ([]BookingView, error) {
	dayStart, dayEnd, err := booking.DayBounds(date, settings.Location(), settings.WorkStartHour, settings.WorkEndHour)
	if err != nil {
		return nil, invalid("Invalid date")
	}

	records, err := s.store.ListBookings(ctx, persistence.BookingFilter{
		RoomID:       roomID,
		StartsBefore: &dayEnd,
		EndsAfter:    &dayStart,
	})
	if err != nil {
		return nil, err
	}
	return viewsFromRecords(records), nil
}

// ListAll returns every booking for administrators, upcoming first in
// ascending order followed by past bookings newest first.
func (s *BookingService) ListAll(ctx context.Context, principal Principal) (result AdminBookings, err error) {
	if err = s.ready(); err != nil {
		return
	}
	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var records []persistence.BookingDetail
	records, err = s.store.ListBookings(ctx, persistence.BookingFilter{})
	if err != nil {
		return
	}

	now := s.now()
	for _, view := range viewsFromRecords(records) {
		if view.Start.Before(now) {
			result.Past = append(result.Past, view)
			continue
		}
		result.Upcoming = append(result.Upcoming, view)
	}
	sort.SliceStable(result.Upcoming, func(i, j int) bool {
		return result.Upcoming[i].Start.Before(result.Upcoming[j].Start)
	})
	sort.SliceStable(result.Past, func(i, j int) bool {
		return result.Past[i].Start.After(result.Past[j].Start)
	})
	return
}

// Calendar returns the slot grid and selectable days for date, defaulting to
// the first work day on or after today.
func (s *BookingService) Calendar(ctx context.Context, date string) (Calendar, error) {
	if err := s.ready(); err != nil {
		return Calendar{}, err
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return Calendar{}, err
	}

	now := s.now()
	date = strings.TrimSpace(date)
	if date == "" {
		date = booking.FirstWorkDay(settings, now)
	}
	slots, err := booking.SlotsForDay(date, settings)
	if err != nil {
		return Calendar{}, invalid("Invalid date")
	}

	return Calendar{
		Date:            date,
		Slots:           slots,
		DurationOptions: booking.DurationOptions(settings),
		SelectableDays:  booking.SelectableDays(settings, now),
		Settings:        settings,
	}, nil
}

// KioskDay serves the unauthenticated wall display. The returned date is the
// requested one or, when blank, the first work day on or after today.
func (s *BookingService) KioskDay(ctx context.Context, query DayQuery) (string, []BookingView, error) {
	if err := s.ready(); err != nil {
		return "", nil, err
	}

	roomID := strings.TrimSpace(query.RoomID)
	if roomID == "" {
		return "", nil, invalid("roomId required")
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return "", nil, err
	}

	date := strings.TrimSpace(query.Date)
	if date == "" {
		date = booking.FirstWorkDay(settings, s.now())
	}
	views, err := s.listDay(ctx, roomID, date, settings)
	if err != nil {
		return "", nil, err
	}
	return date, views, nil
}

// RoomFeed returns a room together with its bookings that end after the
// start of today, for calendar subscriptions.
func (s *BookingService) RoomFeed(ctx context.Context, roomID string) (Room, []BookingView, error) {
	if err := s.ready(); err != nil {
		return Room{}, nil, err
	}

	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return Room{}, nil, invalid("roomId required")
	}
	record, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, nil, notFound("Room", err)
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return Room{}, nil, err
	}

	today := booking.StartOfDay(s.now(), settings.Location())
	records, err := s.store.ListBookings(ctx, persistence.BookingFilter{RoomID: roomID, EndsAfter: &today})
	if err != nil {
		return Room{}, nil, err
	}
	return roomFromRecord(record), viewsFromRecords(records), nil
}

func viewsFromRecords(records []persistence.BookingDetail) []BookingView {
	views := make([]BookingView, 0, len(records))
	for _, record := range records {
		views = append(views, bookingViewFromRecord(record))
	}
	return views
}

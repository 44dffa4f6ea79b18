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

// SettingsStore exposes the persistence operations needed by the settings service.
type SettingsStore interface {
	GetSettings(ctx context.Context) (persistence.Settings, error)
	SaveSettings(ctx context.Context, settings persistence.Settings) error
}

// SettingsService reads and replaces the scheduling policy.
type SettingsService struct {
	store  SettingsStore
	now    func() time.Time
	logger *slog.Logger
}

// NewSettingsService constructs a SettingsService with the provided dependencies.
func NewSettingsService(store SettingsStore, now func() time.Time) *SettingsService {
	return NewSettingsServiceWithLogger(store, now, nil)
}

// NewSettingsServiceWithLogger constructs a SettingsService with a specified logger.
func NewSettingsServiceWithLogger(store SettingsStore, now func() time.Time, logger *slog.Logger) *SettingsService {
	if now == nil {
		now = time.Now
	}
	return &SettingsService{store: store, now: now, logger: defaultLogger(logger)}
}

func (s *SettingsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SettingsService", operation, attrs...)
}

// Current returns the stored policy, saving the defaults on first use.
func (s *SettingsService) Current(ctx context.Context) (booking.Settings, error) {
	if s == nil || s.store == nil {
		return booking.Settings{}, fmt.Errorf("settings service not configured")
	}

	record, err := s.store.GetSettings(ctx)
	if err == nil {
		return settingsFromRecord(record), nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return booking.Settings{}, err
	}

	defaults := booking.DefaultSettings()
	if err := s.store.SaveSettings(ctx, settingsToRecord(defaults, s.now())); err != nil {
		return booking.Settings{}, err
	}
	s.loggerWith(ctx, "Current").InfoContext(ctx, "default settings created")
	return defaults, nil
}

// Update replaces the policy. Only administrators may call it.
func (s *SettingsService) Update(ctx context.Context, params UpdateSettingsParams) (settings booking.Settings, err error) {
	if s == nil {
		err = fmt.Errorf("SettingsService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("settings service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update", "principal_id", params.Principal.UserID)
	defer func() {
		logOutcome(ctx, logger, err, "failed to update settings", "settings updated", "timezone", settings.Timezone)
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	input.Timezone = strings.TrimSpace(input.Timezone)
	if vErr := validateInput(input, nil, "Invalid settings"); vErr != nil {
		err = invalid("Invalid settings")
		return
	}
	if *input.WorkEndHour <= *input.WorkStartHour {
		err = invalid("Work end hour must be after start hour")
		return
	}

	settings = booking.Settings{
		WorkStartHour:             *input.WorkStartHour,
		WorkEndHour:               *input.WorkEndHour,
		BookingStepMinutes:        *input.BookingStepMinutes,
		WorkDays:                  normalizeWorkDays(input.WorkDays),
		MaxBookingDistanceDays:    *input.MaxBookingDistanceDays,
		MaxBookingDurationMinutes: *input.MaxBookingDurationMinutes,
		RequireDescription:        *input.RequireDescription,
		Timezone:                  input.Timezone,
	}
	err = s.store.SaveSettings(ctx, settingsToRecord(settings, s.now()))
	return
}

func normalizeWorkDays(days []int) []time.Weekday {
	seen := make(map[int]struct{}, len(days))
	unique := make([]int, 0, len(days))
	for _, day := range days {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		unique = append(unique, day)
	}
	sort.Ints(unique)

	weekdays := make([]time.Weekday, 0, len(unique))
	for _, day := range unique {
		weekdays = append(weekdays, time.Weekday(day))
	}
	return weekdays
}

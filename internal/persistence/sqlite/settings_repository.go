package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// SettingsRepository implements persistence.SettingsRepository using SQLite.
type SettingsRepository struct {
	pool   *ConnectionPool
	mapper ErrorMapper
}

// NewSettingsRepository creates a new SQLite settings repository.
func NewSettingsRepository(pool *ConnectionPool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetSettings returns the stored settings row, or persistence.ErrNotFound
// before the first save.
func (r *SettingsRepository) GetSettings(ctx context.Context) (persistence.Settings, error) {
	var (
		settings           persistence.Settings
		workDays           string
		requireDescription int
		updatedAt          string
	)
	err := r.pool.DB().QueryRowContext(ctx, `
		SELECT work_start_hour, work_end_hour, booking_step_minutes, work_days,
		       max_booking_distance_days, max_booking_duration_minutes,
		       require_description, timezone, updated_at
		FROM system_settings
		WHERE id = 1
	`).Scan(
		&settings.WorkStartHour,
		&settings.WorkEndHour,
		&settings.BookingStepMinutes,
		&workDays,
		&settings.MaxBookingDistanceDays,
		&settings.MaxBookingDurationMinutes,
		&requireDescription,
		&settings.Timezone,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Settings{}, persistence.ErrNotFound
		}
		return persistence.Settings{}, r.mapper.MapError(err)
	}

	if settings.WorkDays, err = decodeWorkDays(workDays); err != nil {
		return persistence.Settings{}, err
	}
	settings.RequireDescription = requireDescription != 0
	if settings.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Settings{}, err
	}
	return settings, nil
}

// SaveSettings creates or replaces the settings row.
func (r *SettingsRepository) SaveSettings(ctx context.Context, settings persistence.Settings) error {
	_, err := r.pool.DB().ExecContext(ctx, `
		INSERT INTO system_settings (
			id, work_start_hour, work_end_hour, booking_step_minutes, work_days,
			max_booking_distance_days, max_booking_duration_minutes,
			require_description, timezone, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			work_start_hour = excluded.work_start_hour,
			work_end_hour = excluded.work_end_hour,
			booking_step_minutes = excluded.booking_step_minutes,
			work_days = excluded.work_days,
			max_booking_distance_days = excluded.max_booking_distance_days,
			max_booking_duration_minutes = excluded.max_booking_duration_minutes,
			require_description = excluded.require_description,
			timezone = excluded.timezone,
			updated_at = excluded.updated_at
	`,
		settings.WorkStartHour,
		settings.WorkEndHour,
		settings.BookingStepMinutes,
		encodeWorkDays(settings.WorkDays),
		settings.MaxBookingDistanceDays,
		settings.MaxBookingDurationMinutes,
		boolToInt(settings.RequireDescription),
		settings.Timezone,
		formatTime(settings.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

func encodeWorkDays(days []int) string {
	parts := make([]string, len(days))
	for i, day := range days {
		parts[i] = strconv.Itoa(day)
	}
	return strings.Join(parts, ",")
}

func decodeWorkDays(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return []int{}, nil
	}
	parts := strings.Split(value, ",")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("sqlite: decode work days %q: %w", value, err)
		}
		days = append(days, day)
	}
	return days, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

const bookingColumns = `id, room_id, user_id, start_time, end_time, description, created_at`

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool   *ConnectionPool
	mapper ErrorMapper
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// CreateBookingExclusive reads the room's intersecting bookings and inserts
// booking inside one IMMEDIATE transaction, so a concurrent writer for the
// same slot waits and then sees this booking.
func (r *BookingRepository) CreateBookingExclusive(ctx context.Context, booking persistence.Booking, check persistence.OverlapCheck) error {
	if booking.ID == "" || booking.RoomID == "" || booking.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	if !booking.EndTime.After(booking.StartTime) {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT `+bookingColumns+`
			FROM bookings
			WHERE room_id = ? AND start_time < ? AND end_time > ?
			ORDER BY start_time ASC
		`, booking.RoomID, formatTime(booking.EndTime), formatTime(booking.StartTime))
		if err != nil {
			return r.mapper.MapError(err)
		}

		var existing []persistence.Booking
		for rows.Next() {
			other, err := scanBooking(rows)
			if err != nil {
				rows.Close()
				return err
			}
			existing = append(existing, other)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("sqlite: iterate bookings: %w", err)
		}
		rows.Close()

		if check != nil {
			if err := check(existing); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO bookings (`+bookingColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			booking.ID,
			booking.RoomID,
			booking.UserID,
			formatTime(booking.StartTime),
			formatTime(booking.EndTime),
			nullableString(booking.Description),
			formatTime(booking.CreatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, r.mapper.MapError(err)
	}
	return booking, nil
}

// ListBookings returns the bookings matching filter joined with their user
// and room, ordered by start time.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.BookingDetail, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.RoomID != "" {
		clauses = append(clauses, "b.room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.StartsBefore != nil {
		clauses = append(clauses, "b.start_time < ?")
		args = append(args, formatTime(*filter.StartsBefore))
	}
	if filter.EndsAfter != nil {
		clauses = append(clauses, "b.end_time > ?")
		args = append(args, formatTime(*filter.EndsAfter))
	}

	query := `
		SELECT b.id, b.room_id, b.user_id, b.start_time, b.end_time, b.description, b.created_at,
		       u.name, u.surname, u.email, r.name
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN rooms r ON r.id = b.room_id`
	if len(clauses) > 0 {
		query += "\n\t\tWHERE " + strings.Join(clauses, " AND ")
	}
	query += "\n\t\tORDER BY b.start_time ASC, b.id ASC"

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var details []persistence.BookingDetail
	for rows.Next() {
		var (
			detail                persistence.BookingDetail
			description           sql.NullString
			start, end, createdAt string
		)
		if err := rows.Scan(
			&detail.ID, &detail.RoomID, &detail.UserID, &start, &end, &description, &createdAt,
			&detail.UserName, &detail.UserSurname, &detail.UserEmail, &detail.RoomName,
		); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if err := fillBookingTimes(&detail.Booking, start, end, createdAt); err != nil {
			return nil, err
		}
		detail.Description = stringPointer(description)
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate bookings: %w", err)
	}
	return details, nil
}

// DeleteBooking removes a booking by ID.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var (
		booking               persistence.Booking
		description           sql.NullString
		start, end, createdAt string
	)
	if err := row.Scan(&booking.ID, &booking.RoomID, &booking.UserID, &start, &end, &description, &createdAt); err != nil {
		return persistence.Booking{}, err
	}
	if err := fillBookingTimes(&booking, start, end, createdAt); err != nil {
		return persistence.Booking{}, err
	}
	booking.Description = stringPointer(description)
	return booking, nil
}

func fillBookingTimes(booking *persistence.Booking, start, end, createdAt string) error {
	var err error
	if booking.StartTime, err = parseTime(start); err != nil {
		return err
	}
	if booking.EndTime, err = parseTime(end); err != nil {
		return err
	}
	if booking.CreatedAt, err = parseTime(createdAt); err != nil {
		return err
	}
	return nil
}

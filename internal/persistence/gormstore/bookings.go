package gormstore

import (
	"context"
	"errors"

	"github.com/example/room-booking/internal/persistence"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateBookingExclusive inserts booking once check accepts the room's
// intersecting bookings. On PostgreSQL the room row is locked FOR UPDATE;
// on SQLite the IMMEDIATE transaction already holds the write lock.
func (s *Store) CreateBookingExclusive(ctx context.Context, booking persistence.Booking, check persistence.OverlapCheck) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if booking.ID == "" || booking.RoomID == "" || booking.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	if !booking.EndTime.After(booking.StartTime) {
		return persistence.ErrConstraintViolation
	}

	model := toBookingModel(booking)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.isPostgres() {
			var room roomModel
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&room, "id = ?", model.RoomID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return persistence.ErrForeignKeyViolation
			}
			if err != nil {
				return mapError(err)
			}
		}

		var existing []bookingModel
		err := tx.Where("room_id = ? AND start_time < ? AND end_time > ?", model.RoomID, model.EndTime, model.StartTime).
			Order("start_time ASC").
			Find(&existing).Error
		if err != nil {
			return mapError(err)
		}

		if check != nil {
			others := make([]persistence.Booking, 0, len(existing))
			for _, other := range existing {
				others = append(others, other.toPersistence())
			}
			if err := check(others); err != nil {
				return err
			}
		}

		return mapError(tx.Omit(clause.Associations).Create(&model).Error)
	})
}

// GetBooking retrieves a booking by ID.
func (s *Store) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Booking{}, err
	}
	var model bookingModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return persistence.Booking{}, mapError(err)
	}
	return model.toPersistence(), nil
}

// ListBookings returns matching bookings joined with their user and room,
// ordered by start time.
func (s *Store) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.BookingDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Table("bookings AS b").
		Select(`b.id, b.room_id, b.user_id, b.start_time, b.end_time, b.description, b.created_at,
			u.name AS user_name, u.surname AS user_surname, u.email AS user_email, r.name AS room_name`).
		Joins("JOIN users u ON u.id = b.user_id").
		Joins("JOIN rooms r ON r.id = b.room_id")
	if filter.RoomID != "" {
		query = query.Where("b.room_id = ?", filter.RoomID)
	}
	if filter.StartsBefore != nil {
		query = query.Where("b.start_time < ?", filter.StartsBefore.UTC())
	}
	if filter.EndsAfter != nil {
		query = query.Where("b.end_time > ?", filter.EndsAfter.UTC())
	}

	var rows []bookingDetailRow
	if err := query.Order("b.start_time ASC").Order("b.id ASC").Scan(&rows).Error; err != nil {
		return nil, mapError(err)
	}

	details := make([]persistence.BookingDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.toPersistence())
	}
	return details, nil
}

// DeleteBooking removes a booking by ID.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&bookingModel{}, "id = ?", id)
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

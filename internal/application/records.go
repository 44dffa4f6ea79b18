package application

import (
	"errors"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	default:
		return err
	}
}

func userFromRecord(record persistence.User) User {
	return User{
		ID:        record.ID,
		Email:     record.Email,
		Name:      record.Name,
		Surname:   record.Surname,
		Role:      ParseRole(record.Role),
		CreatedAt: record.CreatedAt,
	}
}

func roomFromRecord(record persistence.Room) Room {
	return Room{
		ID:          record.ID,
		Name:        record.Name,
		Description: record.Description,
		IsActive:    record.IsActive,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func roomToRecord(room Room) persistence.Room {
	return persistence.Room{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		IsActive:    room.IsActive,
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
	}
}

func bookingFromRecord(record persistence.Booking) Booking {
	return Booking{
		ID:          record.ID,
		RoomID:      record.RoomID,
		UserID:      record.UserID,
		Start:       record.StartTime,
		End:         record.EndTime,
		Description: record.Description,
		CreatedAt:   record.CreatedAt,
	}
}

func bookingViewFromRecord(record persistence.BookingDetail) BookingView {
	return BookingView{
		Booking:     bookingFromRecord(record.Booking),
		UserName:    record.UserName,
		UserSurname: record.UserSurname,
		UserEmail:   record.UserEmail,
		RoomName:    record.RoomName,
	}
}

func settingsFromRecord(record persistence.Settings) booking.Settings {
	days := make([]time.Weekday, 0, len(record.WorkDays))
	for _, day := range record.WorkDays {
		days = append(days, time.Weekday(day))
	}
	timezone := record.Timezone
	if timezone == "" {
		timezone = booking.DefaultTimezone
	}
	return booking.Settings{
		WorkStartHour:             record.WorkStartHour,
		WorkEndHour:               record.WorkEndHour,
		BookingStepMinutes:        record.BookingStepMinutes,
		WorkDays:                  days,
		MaxBookingDistanceDays:    record.MaxBookingDistanceDays,
		MaxBookingDurationMinutes: record.MaxBookingDurationMinutes,
		RequireDescription:        record.RequireDescription,
		Timezone:                  timezone,
	}
}

func settingsToRecord(settings booking.Settings, updatedAt time.Time) persistence.Settings {
	days := make([]int, 0, len(settings.WorkDays))
	for _, day := range settings.WorkDays {
		days = append(days, int(day))
	}
	return persistence.Settings{
		WorkStartHour:             settings.WorkStartHour,
		WorkEndHour:               settings.WorkEndHour,
		BookingStepMinutes:        settings.BookingStepMinutes,
		WorkDays:                  days,
		MaxBookingDistanceDays:    settings.MaxBookingDistanceDays,
		MaxBookingDurationMinutes: settings.MaxBookingDurationMinutes,
		RequireDescription:        settings.RequireDescription,
		Timezone:                  settings.Timezone,
		UpdatedAt:                 updatedAt,
	}
}

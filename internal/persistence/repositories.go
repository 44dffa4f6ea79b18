package persistence

import (
	"context"
	"time"
)

// UserRepository stores accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	// ListUsers returns users newest first.
	ListUsers(ctx context.Context) ([]User, error)
	CountUsers(ctx context.Context) (int, error)
	// DeleteUser removes the user together with their bookings.
	DeleteUser(ctx context.Context, id string) error
}

// RoomRepository stores the room catalog.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	// ListRooms returns rooms ordered by name.
	ListRooms(ctx context.Context) ([]Room, error)
	// DeleteRoom removes the room together with its bookings.
	DeleteRoom(ctx context.Context, id string) error
}

// BookingFilter narrows booking queries. Nil or empty fields disable a
// criterion. A booking matches when start_time < StartsBefore and
// end_time > EndsAfter.
type BookingFilter struct {
	RoomID       string
	StartsBefore *time.Time
	EndsAfter    *time.Time
}

// OverlapCheck inspects the room's bookings that intersect a candidate and
// returns an error to abort the insert.
type OverlapCheck func(existing []Booking) error

// BookingRepository stores bookings.
type BookingRepository interface {
	// CreateBookingExclusive inserts booking after check accepts the room's
	// intersecting bookings. Read and insert happen in one transaction so
	// concurrent writers for the same room are serialized.
	CreateBookingExclusive(ctx context.Context, booking Booking, check OverlapCheck) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	// ListBookings returns matching bookings ordered by start time.
	ListBookings(ctx context.Context, filter BookingFilter) ([]BookingDetail, error)
	DeleteBooking(ctx context.Context, id string) error
}

// VerificationCodeRepository stores pending registration codes, one per email.
type VerificationCodeRepository interface {
	UpsertVerificationCode(ctx context.Context, code VerificationCode) error
	GetVerificationCode(ctx context.Context, email string) (VerificationCode, error)
	DeleteVerificationCode(ctx context.Context, email string) error
	// DeleteExpiredVerificationCodes removes codes expiring at or before reference.
	DeleteExpiredVerificationCodes(ctx context.Context, reference time.Time) (int64, error)
}

// SettingsRepository stores the scheduling policy singleton.
type SettingsRepository interface {
	// GetSettings returns ErrNotFound until settings are first saved.
	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, settings Settings) error
}

// Store bundles every repository behind a single closable handle.
type Store interface {
	UserRepository
	RoomRepository
	BookingRepository
	VerificationCodeRepository
	SettingsRepository
	Ping(ctx context.Context) error
	Close() error
}

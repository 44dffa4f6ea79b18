package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/gormstore"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

// StoreFactory opens a fresh, migrated store for one test.
type StoreFactory func(tb testing.TB) persistence.Store

// Stores lists every persistence backend that runs without external services.
func Stores() map[string]StoreFactory {
	return map[string]StoreFactory{
		"sqlite": func(tb testing.TB) persistence.Store { return NewSQLiteStore(tb) },
		"gorm":   func(tb testing.TB) persistence.Store { return NewGormStore(tb) },
	}
}

// NewSQLiteStore opens a database/sql store on a temporary file. The store is
// closed when the test finishes.
func NewSQLiteStore(tb testing.TB) *sqlite.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "booking.db")
	store, err := sqlite.Open(context.Background(), sqlite.Config{DSN: path}, nil)
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewGormStore opens a gorm store backed by a temporary SQLite file.
func NewGormStore(tb testing.TB) *gormstore.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "booking-gorm.db")
	store, err := gormstore.Open(context.Background(), gormstore.Config{DSN: path}, nil)
	if err != nil {
		tb.Fatalf("failed to open gorm store: %v", err)
	}
	tb.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SeedUsers inserts the fixtures and returns them.
func SeedUsers(tb testing.TB, store persistence.UserRepository, users ...UserFixture) []UserFixture {
	tb.Helper()
	for _, user := range users {
		if err := store.CreateUser(context.Background(), user.Persistence()); err != nil {
			tb.Fatalf("failed to seed user %s: %v", user.ID, err)
		}
	}
	return users
}

// SeedRooms inserts the fixtures and returns them.
func SeedRooms(tb testing.TB, store persistence.RoomRepository, rooms ...RoomFixture) []RoomFixture {
	tb.Helper()
	for _, room := range rooms {
		if err := store.CreateRoom(context.Background(), room.Persistence()); err != nil {
			tb.Fatalf("failed to seed room %s: %v", room.ID, err)
		}
	}
	return rooms
}

// SeedBookings inserts the fixtures without an overlap check.
func SeedBookings(tb testing.TB, store persistence.BookingRepository, bookings ...BookingFixture) []BookingFixture {
	tb.Helper()
	for _, b := range bookings {
		if err := store.CreateBookingExclusive(context.Background(), b.Persistence(), nil); err != nil {
			tb.Fatalf("failed to seed booking %s: %v", b.ID, err)
		}
	}
	return bookings
}

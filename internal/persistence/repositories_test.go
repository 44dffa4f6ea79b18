package persistence_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/testfixtures"
)

var errTaken = errors.New("slot taken")

func forEachStore(t *testing.T, fn func(t *testing.T, store persistence.Store)) {
	t.Helper()
	for name, open := range testfixtures.Stores() {
		t.Run(name, func(t *testing.T) {
			fn(t, open(t))
		})
	}
}

func TestUserRepositoryContract(t *testing.T) {
	forEachStore(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()
		base := testfixtures.ReferenceTime()
		older := testfixtures.NewUserFixture(testfixtures.WithUserEmail("older@example.com"), testfixtures.WithUserCreatedAt(base.Add(-time.Hour)))
		newer := testfixtures.NewUserFixture(testfixtures.WithUserEmail("Newer@Example.com"), testfixtures.WithUserCreatedAt(base))
		testfixtures.SeedUsers(t, store, older, newer)

		t.Run("lookup by email ignores case", func(t *testing.T) {
			got, err := store.GetUserByEmail(ctx, "NEWER@example.COM")
			if err != nil {
				t.Fatalf("GetUserByEmail failed: %v", err)
			}
			if got.ID != newer.ID {
				t.Fatalf("expected %s, got %s", newer.ID, got.ID)
			}
		})

		t.Run("duplicate email is rejected", func(t *testing.T) {
			dup := testfixtures.NewUserFixture(testfixtures.WithUserEmail("older@example.com")).Persistence()
			if err := store.CreateUser(ctx, dup); !errors.Is(err, persistence.ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
		})

		t.Run("list is newest first and count matches", func(t *testing.T) {
			users, err := store.ListUsers(ctx)
			if err != nil {
				t.Fatalf("ListUsers failed: %v", err)
			}
			if len(users) != 2 || users[0].ID != newer.ID || users[1].ID != older.ID {
				t.Fatalf("unexpected order: %+v", users)
			}
			count, err := store.CountUsers(ctx)
			if err != nil || count != 2 {
				t.Fatalf("expected 2 users, got %d (%v)", count, err)
			}
		})

		t.Run("missing user", func(t *testing.T) {
			if _, err := store.GetUser(ctx, "nobody"); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := store.DeleteUser(ctx, "nobody"); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected ErrNotFound on delete, got %v", err)
			}
		})
	})
}

func TestRoomRepositoryContract(t *testing.T) {
	forEachStore(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()
		beta := testfixtures.NewRoomFixture(testfixtures.WithRoomName("Beta"), testfixtures.WithRoomDescription("second floor"))
		alpha := testfixtures.NewRoomFixture(testfixtures.WithRoomName("Alpha"))
		testfixtures.SeedRooms(t, store, beta, alpha)

		rooms, err := store.ListRooms(ctx)
		if err != nil {
			t.Fatalf("ListRooms failed: %v", err)
		}
		if len(rooms) != 2 || rooms[0].Name != "Alpha" || rooms[1].Name != "Beta" {
			t.Fatalf("expected rooms ordered by name, got %+v", rooms)
		}

		updated := beta.Persistence()
		updated.Description = nil
		updated.IsActive = false
		updated.UpdatedAt = testfixtures.ReferenceTime()
		if err := store.UpdateRoom(ctx, updated); err != nil {
			t.Fatalf("UpdateRoom failed: %v", err)
		}
		got, err := store.GetRoom(ctx, beta.ID)
		if err != nil {
			t.Fatalf("GetRoom failed: %v", err)
		}
		if got.Description != nil || got.IsActive {
			t.Fatalf("expected cleared description and inactive room, got %+v", got)
		}
		if !got.UpdatedAt.Equal(testfixtures.ReferenceTime()) {
			t.Fatalf("expected updated_at %v, got %v", testfixtures.ReferenceTime(), got.UpdatedAt)
		}

		missing := updated
		missing.ID = "missing"
		if err := store.UpdateRoom(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestBookingRepositoryContract(t *testing.T) {
	forEachStore(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()
		user := testfixtures.NewUserFixture(testfixtures.WithUserNames("Ada", "Lovelace"))
		room := testfixtures.NewRoomFixture(testfixtures.WithRoomName("Atlas"))
		other := testfixtures.NewRoomFixture(testfixtures.WithRoomName("Borealis"))
		testfixtures.SeedUsers(t, store, user)
		testfixtures.SeedRooms(t, store, room, other)

		nine := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
		first := testfixtures.NewBookingFixture(room.ID, user.ID, testfixtures.WithBookingSlot(nine, 90*time.Minute))
		testfixtures.SeedBookings(t, store, first)

		t.Run("check receives only intersecting bookings", func(t *testing.T) {
			var seen []persistence.Booking
			candidate := testfixtures.NewBookingFixture(room.ID, user.ID, testfixtures.WithBookingSlot(nine.Add(time.Hour), time.Hour))
			err := store.CreateBookingExclusive(ctx, candidate.Persistence(), func(existing []persistence.Booking) error {
				seen = existing
				return errTaken
			})
			if !errors.Is(err, errTaken) {
				t.Fatalf("expected check error to abort insert, got %v", err)
			}
			if len(seen) != 1 || seen[0].ID != first.ID {
				t.Fatalf("expected the first booking only, got %+v", seen)
			}
			if _, err := store.GetBooking(ctx, candidate.ID); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected rejected booking to be absent, got %v", err)
			}
		})

		t.Run("touching and other rooms do not intersect", func(t *testing.T) {
			adjacent := testfixtures.NewBookingFixture(room.ID, user.ID, testfixtures.WithBookingSlot(nine.Add(90*time.Minute), 30*time.Minute))
			elsewhere := testfixtures.NewBookingFixture(other.ID, user.ID, testfixtures.WithBookingSlot(nine, time.Hour))
			for _, b := range []testfixtures.BookingFixture{adjacent, elsewhere} {
				err := store.CreateBookingExclusive(ctx, b.Persistence(), func(existing []persistence.Booking) error {
					if len(existing) != 0 {
						return errTaken
					}
					return nil
				})
				if err != nil {
					t.Fatalf("expected %s to be inserted, got %v", b.ID, err)
				}
			}
		})

		t.Run("unknown room violates the foreign key", func(t *testing.T) {
			orphan := testfixtures.NewBookingFixture("missing-room", user.ID, testfixtures.WithBookingSlot(nine.Add(4*time.Hour), time.Hour))
			if err := store.CreateBookingExclusive(ctx, orphan.Persistence(), nil); !errors.Is(err, persistence.ErrForeignKeyViolation) {
				t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
			}
		})

		t.Run("list joins user and room and filters by window", func(t *testing.T) {
			dayStart := nine
			dayEnd := nine.Add(9 * time.Hour)
			details, err := store.ListBookings(ctx, persistence.BookingFilter{RoomID: room.ID, StartsBefore: &dayEnd, EndsAfter: &dayStart})
			if err != nil {
				t.Fatalf("ListBookings failed: %v", err)
			}
			if len(details) != 2 {
				t.Fatalf("expected 2 bookings in %s, got %d", room.ID, len(details))
			}
			if details[0].ID != first.ID || details[0].UserSurname != "Lovelace" || details[0].RoomName != "Atlas" {
				t.Fatalf("unexpected first detail %+v", details[0])
			}
			if !details[0].StartTime.Before(details[1].StartTime) {
				t.Fatalf("expected ascending start times, got %v then %v", details[0].StartTime, details[1].StartTime)
			}
		})

		t.Run("deleting the room cascades to its bookings", func(t *testing.T) {
			if err := store.DeleteRoom(ctx, room.ID); err != nil {
				t.Fatalf("DeleteRoom failed: %v", err)
			}
			if _, err := store.GetBooking(ctx, first.ID); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected cascaded delete, got %v", err)
			}
		})
	})
}

func TestBookingRepositorySerializesWriters(t *testing.T) {
	forEachStore(t, func(t *testing.T, store persistence.Store) {
		user := testfixtures.NewUserFixture()
		room := testfixtures.NewRoomFixture()
		testfixtures.SeedUsers(t, store, user)
		testfixtures.SeedRooms(t, store, room)

		slot := time.Date(2025, time.January, 7, 10, 0, 0, 0, time.UTC)
		const writers = 6
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			success int
		)
		for i := 0; i < writers; i++ {
			b := testfixtures.NewBookingFixture(room.ID, user.ID, testfixtures.WithBookingSlot(slot, time.Hour))
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.CreateBookingExclusive(context.Background(), b.Persistence(), func(existing []persistence.Booking) error {
					if len(existing) > 0 {
						return errTaken
					}
					return nil
				})
				if err == nil {
					mu.Lock()
					success++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if success != 1 {
			t.Fatalf("expected exactly one writer to win, got %d", success)
		}
	})
}

func TestVerificationAndSettingsContract(t *testing.T) {
	forEachStore(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()
		now := testfixtures.ReferenceTime()

		code := persistence.VerificationCode{Email: "new@example.com", Code: "123456", ExpiresAt: now.Add(15 * time.Minute), CreatedAt: now}
		if err := store.UpsertVerificationCode(ctx, code); err != nil {
			t.Fatalf("UpsertVerificationCode failed: %v", err)
		}
		code.Code = "654321"
		if err := store.UpsertVerificationCode(ctx, code); err != nil {
			t.Fatalf("second upsert failed: %v", err)
		}
		got, err := store.GetVerificationCode(ctx, "new@example.com")
		if err != nil || got.Code != "654321" {
			t.Fatalf("expected replaced code, got %+v (%v)", got, err)
		}

		purged, err := store.DeleteExpiredVerificationCodes(ctx, now.Add(time.Hour))
		if err != nil || purged != 1 {
			t.Fatalf("expected one purged code, got %d (%v)", purged, err)
		}

		if _, err := store.GetSettings(ctx); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound before first save, got %v", err)
		}
		settings := persistence.Settings{
			WorkStartHour:             8,
			WorkEndHour:               17,
			BookingStepMinutes:        15,
			WorkDays:                  []int{1, 2, 3},
			MaxBookingDistanceDays:    7,
			MaxBookingDurationMinutes: 60,
			RequireDescription:        true,
			Timezone:                  "Europe/Berlin",
			UpdatedAt:                 now,
		}
		if err := store.SaveSettings(ctx, settings); err != nil {
			t.Fatalf("SaveSettings failed: %v", err)
		}
		stored, err := store.GetSettings(ctx)
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if stored.WorkStartHour != 8 || len(stored.WorkDays) != 3 || !stored.RequireDescription || stored.Timezone != "Europe/Berlin" {
			t.Fatalf("unexpected settings %+v", stored)
		}
	})
}

package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/room-booking/internal/booking"
)

// Monday 6 January 2025, 08:00 UTC.
var bookingNow = time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)

func newBookingFixture(t *testing.T) (*BookingService, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	store.addUser("u1", "u1@example.com", RoleUser, bookingNow)
	store.addUser("u2", "u2@example.com", RoleUser, bookingNow)
	store.addRoom("room-1", "Orion", true)
	store.addRoom("room-off", "Closed", false)
	settings := NewSettingsService(store, fixedClock(bookingNow))
	return NewBookingService(store, settings, sequentialIDs("booking"), fixedClock(bookingNow)), store
}

func expectRejection(t *testing.T, err error, want booking.Reason) {
	t.Helper()
	got, ok := booking.RejectionReason(err)
	if !ok || got != want {
		t.Fatalf("expected rejection %q, got %v", want, err)
	}
}

func mondayAt(hour, minute int) time.Time {
	return time.Date(2025, time.January, 6, hour, minute, 0, 0, time.UTC)
}

func TestBookingService_Create(t *testing.T) {
	t.Parallel()

	t.Run("reference scenario", func(t *testing.T) {
		t.Parallel()

		svc, store := newBookingFixture(t)
		ctx := context.Background()

		first, err := svc.Create(ctx, CreateBookingParams{Principal: userPrincipal("u1"), RoomID: "room-1", Start: mondayAt(9, 0), DurationMinutes: 90})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if !first.End.Equal(mondayAt(10, 30)) || first.UserID != "u1" {
			t.Fatalf("unexpected booking %#v", first)
		}

		_, err = svc.Create(ctx, CreateBookingParams{Principal: userPrincipal("u2"), RoomID: "room-1", Start: mondayAt(10, 0), DurationMinutes: 60})
		expectRejection(t, err, booking.ReasonSlotTaken)

		saturday := mondayAt(9, 0).AddDate(0, 0, 5)
		_, err = svc.Create(ctx, CreateBookingParams{Principal: userPrincipal("u2"), RoomID: "room-1", Start: saturday, DurationMinutes: 60})
		expectRejection(t, err, booking.ReasonNotWorkDay)

		_, err = svc.Create(ctx, CreateBookingParams{Principal: userPrincipal("u2"), RoomID: "room-1", Start: mondayAt(17, 30), DurationMinutes: 90})
		expectRejection(t, err, booking.ReasonOutsideWorkingHours)

		if _, err := svc.Create(ctx, CreateBookingParams{Principal: userPrincipal("u2"), RoomID: "room-1", Start: mondayAt(10, 30), DurationMinutes: 30}); err != nil {
			t.Fatalf("expected adjacent booking to be accepted, got %v", err)
		}
		if len(store.bookings) != 2 {
			t.Fatalf("expected two stored bookings, got %d", len(store.bookings))
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		t.Parallel()

		svc, _ := newBookingFixture(t)
		_, err := svc.Create(context.Background(), CreateBookingParams{Principal: userPrincipal("u1"), RoomID: "missing", Start: mondayAt(9, 0), DurationMinutes: 30})
		if !errors.Is(err, ErrNotFound) || err.Error() != "Room not found" {
			t.Fatalf("expected Room not found, got %v", err)
		}
	})

	t.Run("inactive room", func(t *testing.T) {
		t.Parallel()

		svc, _ := newBookingFixture(t)
		_, err := svc.Create(context.Background(), CreateBookingParams{Principal: userPrincipal("u1"), RoomID: "room-off", Start: mondayAt(9, 0), DurationMinutes: 30})
		expectValidationMessage(t, err, "Room is not available for booking")
	})

	t.Run("policy failures come before the room lookup", func(t *testing.T) {
		t.Parallel()

		svc, _ := newBookingFixture(t)
		_, err := svc.Create(context.Background(), CreateBookingParams{Principal: userPrincipal("u1"), RoomID: "missing", Start: mondayAt(9, 0), DurationMinutes: 45})
		expectRejection(t, err, booking.ReasonDurationOutOfRange)
	})

	t.Run("requires a principal", func(t *testing.T) {
		t.Parallel()

		svc, _ := newBookingFixture(t)
		_, err := svc.Create(context.Background(), CreateBookingParams{RoomID: "room-1", Start: mondayAt(9, 0), DurationMinutes: 30})
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("concurrent requests never double book", func(t *testing.T) {
		t.Parallel()

		svc, store := newBookingFixture(t)
		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Create(context.Background(), CreateBookingParams{Principal: userPrincipal("u1"), RoomID: "room-1", Start: mondayAt(11, 0), DurationMinutes: 60})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			expectRejection(t, err, booking.ReasonSlotTaken)
		}
		if succeeded != 1 || len(store.bookings) != 1 {
			t.Fatalf("expected exactly one booking, got %d successes and %d stored", succeeded, len(store.bookings))
		}
	})
}

func TestBookingService_Cancel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		principal Principal
		start     time.Time
		wantErr   func(t *testing.T, err error)
	}{
		{
			name:      "owner cancels future booking",
			principal: userPrincipal("u1"),
			start:     mondayAt(12, 0),
		},
		{
			name:      "owner cannot cancel started booking",
			principal: userPrincipal("u1"),
			start:     mondayAt(7, 0),
			wantErr:   func(t *testing.T, err error) { expectRejection(t, err, booking.ReasonCannotCancelPast) },
		},
		{
			name:      "other users cannot cancel",
			principal: userPrincipal("u2"),
			start:     mondayAt(12, 0),
			wantErr:   func(t *testing.T, err error) { expectRejection(t, err, booking.ReasonNotOwner) },
		},
		{
			name:      "admin cancels past booking",
			principal: adminPrincipal(),
			start:     mondayAt(7, 0),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, store := newBookingFixture(t)
			store.addBooking("b-1", "room-1", "u1", tc.start, 30)

			err := svc.Cancel(context.Background(), tc.principal, "b-1")
			if tc.wantErr != nil {
				tc.wantErr(t, err)
				if _, ok := store.bookings["b-1"]; !ok {
					t.Fatal("expected booking to be kept")
				}
				return
			}
			if err != nil {
				t.Fatalf("Cancel failed: %v", err)
			}
			if _, ok := store.bookings["b-1"]; ok {
				t.Fatal("expected booking to be removed")
			}
		})
	}

	t.Run("unknown booking", func(t *testing.T) {
		t.Parallel()

		svc, _ := newBookingFixture(t)
		err := svc.Cancel(context.Background(), adminPrincipal(), "missing")
		if !errors.Is(err, ErrNotFound) || err.Error() != "Booking not found" {
			t.Fatalf("expected Booking not found, got %v", err)
		}
	})
}

func TestBookingService_ListDay(t *testing.T) {
	t.Parallel()

	svc, store := newBookingFixture(t)
	store.addBooking("early", "room-1", "u1", mondayAt(7, 0), 60)
	store.addBooking("edge", "room-1", "u1", mondayAt(8, 30), 60)
	store.addBooking("late", "room-1", "u2", mondayAt(16, 0), 60)
	store.addBooking("after", "room-1", "u2", mondayAt(18, 0), 60)
	store.addBooking("other-room", "room-off", "u2", mondayAt(10, 0), 60)

	views, err := svc.ListDay(context.Background(), DayQuery{RoomID: "room-1", Date: "2025-01-06"})
	if err != nil {
		t.Fatalf("ListDay failed: %v", err)
	}
	if len(views) != 2 || views[0].ID != "edge" || views[1].ID != "late" {
		t.Fatalf("unexpected bookings %#v", views)
	}
	if views[1].UserDisplayName() != "Surname-u2 Name-u2" {
		t.Fatalf("unexpected display name %q", views[1].UserDisplayName())
	}

	_, err = svc.ListDay(context.Background(), DayQuery{RoomID: "room-1"})
	expectValidationMessage(t, err, "roomId and date required")

	_, err = svc.ListDay(context.Background(), DayQuery{RoomID: "room-1", Date: "06.01.2025"})
	expectValidationMessage(t, err, "Invalid date")
}

func TestBookingService_ListAll(t *testing.T) {
	t.Parallel()

	svc, store := newBookingFixture(t)
	store.addBooking("past-old", "room-1", "u1", mondayAt(9, 0).AddDate(0, 0, -3), 30)
	store.addBooking("past-new", "room-1", "u1", mondayAt(7, 0), 30)
	store.addBooking("soon", "room-1", "u1", mondayAt(9, 0), 30)
	store.addBooking("later", "room-1", "u2", mondayAt(9, 0).AddDate(0, 0, 1), 30)

	if _, err := svc.ListAll(context.Background(), userPrincipal("u1")); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	result, err := svc.ListAll(context.Background(), adminPrincipal())
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(result.Upcoming) != 2 || result.Upcoming[0].ID != "soon" || result.Upcoming[1].ID != "later" {
		t.Fatalf("unexpected upcoming %#v", result.Upcoming)
	}
	if len(result.Past) != 2 || result.Past[0].ID != "past-new" || result.Past[1].ID != "past-old" {
		t.Fatalf("unexpected past %#v", result.Past)
	}
	if result.Upcoming[0].RoomName != "Orion" || result.Upcoming[0].UserEmail != "u1@example.com" {
		t.Fatalf("expected joined attributes, got %#v", result.Upcoming[0])
	}
}

func TestBookingService_Calendar(t *testing.T) {
	t.Parallel()

	svc, _ := newBookingFixture(t)

	cal, err := svc.Calendar(context.Background(), "")
	if err != nil {
		t.Fatalf("Calendar failed: %v", err)
	}
	if cal.Date != "2025-01-06" {
		t.Fatalf("expected today's date, got %s", cal.Date)
	}
	if len(cal.Slots) != 18 || len(cal.DurationOptions) != 4 || len(cal.SelectableDays) != 11 {
		t.Fatalf("unexpected calendar %#v", cal)
	}

	if _, err := svc.Calendar(context.Background(), "bad"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestBookingService_KioskDay(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.addUser("u1", "u1@example.com", RoleUser, bookingNow)
	store.addRoom("room-1", "Orion", true)
	saturday := bookingNow.AddDate(0, 0, 5)
	store.addBooking("monday", "room-1", "u1", time.Date(2025, time.January, 13, 10, 0, 0, 0, time.UTC), 30)
	svc := NewBookingService(store, NewSettingsService(store, fixedClock(saturday)), nil, fixedClock(saturday))

	date, views, err := svc.KioskDay(context.Background(), DayQuery{RoomID: "room-1"})
	if err != nil {
		t.Fatalf("KioskDay failed: %v", err)
	}
	if date != "2025-01-13" {
		t.Fatalf("expected next Monday, got %s", date)
	}
	if len(views) != 1 || views[0].ID != "monday" {
		t.Fatalf("unexpected bookings %#v", views)
	}

	if _, _, err := svc.KioskDay(context.Background(), DayQuery{}); err == nil {
		t.Fatal("expected error without room id")
	}
}

func TestBookingService_RoomFeed(t *testing.T) {
	t.Parallel()

	svc, store := newBookingFixture(t)
	store.addBooking("yesterday", "room-1", "u1", mondayAt(10, 0).AddDate(0, 0, -1), 30)
	store.addBooking("today", "room-1", "u1", mondayAt(7, 0), 30)
	store.addBooking("tomorrow", "room-1", "u1", mondayAt(10, 0).AddDate(0, 0, 1), 30)

	room, views, err := svc.RoomFeed(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("RoomFeed failed: %v", err)
	}
	if room.Name != "Orion" {
		t.Fatalf("unexpected room %#v", room)
	}
	if len(views) != 2 || views[0].ID != "today" || views[1].ID != "tomorrow" {
		t.Fatalf("unexpected bookings %#v", views)
	}

	if _, _, err := svc.RoomFeed(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

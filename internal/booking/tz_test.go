package booking

import (
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("failed to load %s: %v", name, err)
	}
	return loc
}

func TestLocalParts(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	winter := LocalParts(time.Date(2025, time.January, 6, 14, 30, 0, 0, time.UTC), ny)
	if winter.Hour != 9 || winter.Minute != 30 || winter.Weekday != time.Monday || winter.Date != "2025-01-06" {
		t.Fatalf("unexpected winter parts: %+v", winter)
	}

	summer := LocalParts(time.Date(2025, time.July, 7, 13, 0, 0, 0, time.UTC), ny)
	if summer.Hour != 9 {
		t.Fatalf("expected 09 EDT, got %+v", summer)
	}

	late := LocalParts(time.Date(2025, time.January, 7, 2, 0, 0, 0, time.UTC), ny)
	if late.Weekday != time.Monday || late.Date != "2025-01-06" {
		t.Fatalf("expected previous local day, got %+v", late)
	}
}

func TestDayBounds(t *testing.T) {
	t.Run("applies noon offset to configured hours", func(t *testing.T) {
		ny := mustLoad(t, "America/New_York")
		start, end, err := DayBounds("2025-07-01", ny, 9, 18)
		if err != nil {
			t.Fatalf("DayBounds returned error: %v", err)
		}
		if want := time.Date(2025, time.July, 1, 13, 0, 0, 0, time.UTC); !start.Equal(want) {
			t.Fatalf("expected start %v, got %v", want, start)
		}
		if want := time.Date(2025, time.July, 1, 22, 0, 0, 0, time.UTC); !end.Equal(want) {
			t.Fatalf("expected end %v, got %v", want, end)
		}
	})

	t.Run("positive offsets shift into the previous UTC day", func(t *testing.T) {
		tokyo := mustLoad(t, "Asia/Tokyo")
		start, _, err := DayBounds("2025-01-06", tokyo, 8, 18)
		if err != nil {
			t.Fatalf("DayBounds returned error: %v", err)
		}
		if want := time.Date(2025, time.January, 5, 23, 0, 0, 0, time.UTC); !start.Equal(want) {
			t.Fatalf("expected start %v, got %v", want, start)
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		if _, _, err := DayBounds("06/01/2025", time.UTC, 9, 18); err == nil {
			t.Fatal("expected error for malformed date")
		}
	})
}

func TestSlotsForDay(t *testing.T) {
	t.Run("default settings yield half hour slots", func(t *testing.T) {
		slots, err := SlotsForDay("2025-01-06", DefaultSettings())
		if err != nil {
			t.Fatalf("SlotsForDay returned error: %v", err)
		}
		if len(slots) != 18 {
			t.Fatalf("expected 18 slots, got %d", len(slots))
		}
		if !slots[0].Equal(time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected first slot %v", slots[0])
		}
		if !slots[len(slots)-1].Equal(time.Date(2025, time.January, 6, 17, 30, 0, 0, time.UTC)) {
			t.Fatalf("unexpected last slot %v", slots[len(slots)-1])
		}
	})

	t.Run("slots follow the configured timezone", func(t *testing.T) {
		settings := DefaultSettings()
		settings.Timezone = "America/New_York"
		slots, err := SlotsForDay("2025-03-10", settings)
		if err != nil {
			t.Fatalf("SlotsForDay returned error: %v", err)
		}
		if !slots[0].Equal(time.Date(2025, time.March, 10, 13, 0, 0, 0, time.UTC)) {
			t.Fatalf("expected 09:00 EDT first slot, got %v", slots[0].UTC())
		}
	})
}

func TestCalendarHelpers(t *testing.T) {
	settings := DefaultSettings()

	t.Run("duration options", func(t *testing.T) {
		got := DurationOptions(settings)
		want := []int{30, 60, 90, 120}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})

	t.Run("selectable days include the horizon day", func(t *testing.T) {
		days := SelectableDays(settings, time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC))
		if len(days) != 11 {
			t.Fatalf("expected 11 work days, got %d: %v", len(days), days)
		}
		if days[0] != "2025-01-06" || days[len(days)-1] != "2025-01-20" {
			t.Fatalf("unexpected range %v", days)
		}
	})

	t.Run("first work day skips the weekend", func(t *testing.T) {
		saturday := time.Date(2025, time.January, 11, 10, 0, 0, 0, time.UTC)
		if got := FirstWorkDay(settings, saturday); got != "2025-01-13" {
			t.Fatalf("expected 2025-01-13, got %s", got)
		}
	})

	t.Run("is work day", func(t *testing.T) {
		if !IsWorkDay("2025-01-06", settings) {
			t.Fatal("expected Monday to be a work day")
		}
		if IsWorkDay("2025-01-12", settings) {
			t.Fatal("expected Sunday not to be a work day")
		}
		if IsWorkDay("garbage", settings) {
			t.Fatal("expected malformed date not to be a work day")
		}
	})
}

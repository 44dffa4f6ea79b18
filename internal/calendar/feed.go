// Package calendar renders room bookings as an iCalendar feed for wall
// displays and calendar subscriptions.
package calendar

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//room-booking//kiosk feed//EN"

// Event is one booking as shown in the feed.
type Event struct {
	ID          string
	Start       time.Time
	End         time.Time
	Organizer   string
	Description string
	CreatedAt   time.Time
}

// Feed is the set of bookings of a single room.
type Feed struct {
	RoomID   string
	RoomName string
	Timezone string
	Events   []Event
}

// Build converts feed into an iCalendar document. stamp is written as the
// DTSTAMP of every event.
func Build(feed Feed, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(feed.RoomName)
	cal.SetXWRCalName(feed.RoomName)
	if feed.Timezone != "" {
		cal.SetXWRTimezone(feed.Timezone)
	}

	for _, e := range feed.Events {
		event := cal.AddEvent(e.ID + "@" + feed.RoomID)
		event.SetDtStampTime(stamp.UTC())
		if !e.CreatedAt.IsZero() {
			event.SetCreatedTime(e.CreatedAt.UTC())
		}
		event.SetStartAt(e.Start.UTC())
		event.SetEndAt(e.End.UTC())
		event.SetSummary(summary(e))
		event.SetLocation(feed.RoomName)
		if e.Description != "" {
			event.SetDescription(e.Description)
		}
	}
	return cal
}

// Write serializes feed to w.
func Write(w io.Writer, feed Feed, stamp time.Time) error {
	_, err := io.WriteString(w, Build(feed, stamp).Serialize())
	return err
}

func summary(e Event) string {
	if e.Description != "" {
		return e.Description
	}
	if e.Organizer != "" {
		return "Booked: " + e.Organizer
	}
	return "Booked"
}

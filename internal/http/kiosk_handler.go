package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/calendar"
)

// kioskDateHeader carries the resolved date when the request omitted it.
const kioskDateHeader = "X-Kiosk-Date"

type kioskBookingService interface {
	KioskDay(ctx context.Context, query application.DayQuery) (string, []application.BookingView, error)
	RoomFeed(ctx context.Context, roomID string) (application.Room, []application.BookingView, error)
}

type kioskRoomService interface {
	ListActiveRooms(ctx context.Context) ([]application.Room, error)
}

type settingsReader interface {
	Current(ctx context.Context) (booking.Settings, error)
}

// KioskHandler serves the unauthenticated wall display endpoints.
type KioskHandler struct {
	bookings  kioskBookingService
	rooms     kioskRoomService
	settings  settingsReader
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewKioskHandler(bookings kioskBookingService, rooms kioskRoomService, settings settingsReader, now func() time.Time, logger *slog.Logger) *KioskHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	return &KioskHandler{
		bookings:  bookings,
		rooms:     rooms,
		settings:  settings,
		now:       now,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *KioskHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "KioskHandler", operation, attrs...)
}

func (h *KioskHandler) Day(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := application.DayQuery{
		RoomID: strings.TrimSpace(r.URL.Query().Get("roomId")),
		Date:   strings.TrimSpace(r.URL.Query().Get("date")),
	}
	date, views, err := h.bookings.KioskDay(r.Context(), query)
	if err != nil {
		h.log(r.Context(), "Day", "room_id", query.RoomID).WarnContext(r.Context(), "kiosk day failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set(kioskDateHeader, date)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDayBookingDTOs(views))
}

func (h *KioskHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms, err := h.rooms.ListActiveRooms(r.Context())
	if err != nil {
		h.log(r.Context(), "Rooms").ErrorContext(r.Context(), "kiosk room list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]kioskRoomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, kioskRoomDTO{ID: room.ID, Name: room.Name})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

// Calendar writes the room's bookings from today onwards as text/calendar.
func (h *KioskHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID := strings.TrimSpace(r.URL.Query().Get("roomId"))
	logger := h.log(r.Context(), "Calendar", "room_id", roomID)

	room, views, err := h.bookings.RoomFeed(r.Context(), roomID)
	if err != nil {
		logger.WarnContext(r.Context(), "room feed failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	feed := calendar.Feed{RoomID: room.ID, RoomName: room.Name, Events: make([]calendar.Event, 0, len(views))}
	if h.settings != nil {
		if settings, err := h.settings.Current(r.Context()); err == nil {
			feed.Timezone = settings.Timezone
		}
	}
	for _, view := range views {
		event := calendar.Event{
			ID:        view.ID,
			Start:     view.Start,
			End:       view.End,
			Organizer: view.UserDisplayName(),
			CreatedAt: view.CreatedAt,
		}
		if view.Description != nil {
			event.Description = *view.Description
		}
		feed.Events = append(feed.Events, event)
	}

	var buf bytes.Buffer
	if err := calendar.Write(&buf, feed, h.now()); err != nil {
		logger.ErrorContext(r.Context(), "failed to render calendar", "error", err)
		h.responder.writeMessage(r.Context(), w, http.StatusInternalServerError, msgInternal)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="`+room.ID+`.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.ErrorContext(r.Context(), "failed to write calendar", "error", err)
	}
}

type kioskRoomDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

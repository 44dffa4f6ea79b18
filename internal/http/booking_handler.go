package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
)

// isoLayout renders instants the way browsers print Date.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

const msgMissingBookingFields = "Please specify room, time and duration"

type bookingService interface {
	Create(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	Cancel(ctx context.Context, principal application.Principal, bookingID string) error
	ListDay(ctx context.Context, query application.DayQuery) ([]application.BookingView, error)
	ListAll(ctx context.Context, principal application.Principal) (application.AdminBookings, error)
	Calendar(ctx context.Context, date string) (application.Calendar, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) ListDay(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := application.DayQuery{
		RoomID: strings.TrimSpace(r.URL.Query().Get("roomId")),
		Date:   strings.TrimSpace(r.URL.Query().Get("date")),
	}
	views, err := h.service.ListDay(r.Context(), query)
	if err != nil {
		h.log(r.Context(), "ListDay", "room_id", query.RoomID, "date", query.Date).WarnContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDayBookingDTOs(views))
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode booking request", "error", err, "error_kind", "bad_request")
		h.writeMissingFields(r.Context(), w)
		return
	}
	start, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(req.StartTime))
	if err != nil {
		logger.WarnContext(r.Context(), "invalid booking start time", "start_time", req.StartTime, "error_kind", "bad_request")
		h.writeMissingFields(r.Context(), w)
		return
	}

	created, err := h.service.Create(r.Context(), application.CreateBookingParams{
		Principal:       principal,
		RoomID:          req.RoomID,
		Start:           start,
		DurationMinutes: req.DurationMinutes,
		Description:     req.Description,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "booking rejected", "room_id", req.RoomID, "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking created", "booking_id", created.ID, "room_id", created.RoomID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toBookingDTO(created))
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Cancel", "principal_id", principal.UserID, "booking_id", bookingID)
	if err := h.service.Cancel(r.Context(), principal, bookingID); err != nil {
		logger.WarnContext(r.Context(), "booking cancellation rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.ListAll(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "ListAll", "principal_id", principal.UserID).WarnContext(r.Context(), "admin booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]adminBookingDTO, 0, len(result.Upcoming)+len(result.Past))
	for _, view := range result.Upcoming {
		out = append(out, toAdminBookingDTO(view, false))
	}
	for _, view := range result.Past {
		out = append(out, toAdminBookingDTO(view, true))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

func (h *BookingHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	calendar, err := h.service.Calendar(r.Context(), date)
	if err != nil {
		h.log(r.Context(), "Calendar", "date", date).WarnContext(r.Context(), "calendar failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	slots := make([]string, 0, len(calendar.Slots))
	for _, slot := range calendar.Slots {
		slots = append(slots, formatInstant(slot))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, calendarResponse{
		Date:            calendar.Date,
		Slots:           slots,
		DurationOptions: nonNilInts(calendar.DurationOptions),
		SelectableDays:  nonNilStrings(calendar.SelectableDays),
		Settings:        toSettingsDTO(calendar.Settings),
	})
}

func (h *BookingHandler) writeMissingFields(ctx context.Context, w http.ResponseWriter) {
	h.responder.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
		Error: msgMissingBookingFields,
		Code:  string(booking.ReasonMissingFields),
	})
}

type createBookingRequest struct {
	RoomID          string  `json:"roomId"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Description     *string `json:"description"`
}

type bookingDTO struct {
	ID          string  `json:"id"`
	RoomID      string  `json:"roomId"`
	UserID      string  `json:"userId"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"createdAt"`
}

func toBookingDTO(b application.Booking) bookingDTO {
	return bookingDTO{
		ID:          b.ID,
		RoomID:      b.RoomID,
		UserID:      b.UserID,
		StartTime:   formatInstant(b.Start),
		EndTime:     formatInstant(b.End),
		Description: b.Description,
		CreatedAt:   formatInstant(b.CreatedAt),
	}
}

// dayBookingDTO is one entry of a room's day grid. UserName holds "surname name".
type dayBookingDTO struct {
	ID          string  `json:"id"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Description *string `json:"description"`
	UserName    string  `json:"userName"`
	UserID      string  `json:"userId"`
}

func toDayBookingDTOs(views []application.BookingView) []dayBookingDTO {
	out := make([]dayBookingDTO, 0, len(views))
	for _, view := range views {
		out = append(out, dayBookingDTO{
			ID:          view.ID,
			StartTime:   formatInstant(view.Start),
			EndTime:     formatInstant(view.End),
			Description: view.Description,
			UserName:    view.UserDisplayName(),
			UserID:      view.UserID,
		})
	}
	return out
}

type adminBookingDTO struct {
	ID          string  `json:"id"`
	RoomID      string  `json:"roomId"`
	RoomName    string  `json:"roomName"`
	UserID      string  `json:"userId"`
	UserName    string  `json:"userName"`
	UserEmail   string  `json:"userEmail"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Description *string `json:"description"`
	IsPast      bool    `json:"isPast"`
}

func toAdminBookingDTO(view application.BookingView, past bool) adminBookingDTO {
	return adminBookingDTO{
		ID:          view.ID,
		RoomID:      view.RoomID,
		RoomName:    view.RoomName,
		UserID:      view.UserID,
		UserName:    view.UserDisplayName(),
		UserEmail:   view.UserEmail,
		StartTime:   formatInstant(view.Start),
		EndTime:     formatInstant(view.End),
		Description: view.Description,
		IsPast:      past,
	}
}

type calendarResponse struct {
	Date            string      `json:"date"`
	Slots           []string    `json:"slots"`
	DurationOptions []int       `json:"durationOptions"`
	SelectableDays  []string    `json:"selectableDays"`
	Settings        settingsDTO `json:"settings"`
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoLayout)
}

func nonNilInts(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

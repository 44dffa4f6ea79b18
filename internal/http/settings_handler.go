package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
)

type settingsService interface {
	Current(ctx context.Context) (booking.Settings, error)
	Update(ctx context.Context, params application.UpdateSettingsParams) (booking.Settings, error)
}

type SettingsHandler struct {
	service   settingsService
	responder responder
	logger    *slog.Logger
}

func NewSettingsHandler(service settingsService, logger *slog.Logger) *SettingsHandler {
	base := defaultLogger(logger)
	return &SettingsHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SettingsHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SettingsHandler", operation, attrs...)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	settings, err := h.service.Current(r.Context())
	if err != nil {
		h.log(r.Context(), "Get").ErrorContext(r.Context(), "settings lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSettingsDTO(settings))
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID)

	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode settings request", "error", err, "error_kind", "bad_request")
		h.responder.writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid settings")
		return
	}

	settings, err := h.service.Update(r.Context(), application.UpdateSettingsParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.WarnContext(r.Context(), "settings update rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "settings updated", "timezone", settings.Timezone)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

type settingsRequest struct {
	WorkStartHour             *int   `json:"workStartHour"`
	WorkEndHour               *int   `json:"workEndHour"`
	BookingStepMinutes        *int   `json:"bookingStepMinutes"`
	WorkDays                  []int  `json:"workDays"`
	MaxBookingDistanceDays    *int   `json:"maxBookingDistanceDays"`
	MaxBookingDurationMinutes *int   `json:"maxBookingDurationMinutes"`
	RequireDescription        *bool  `json:"requireDescription"`
	Timezone                  string `json:"timezone"`
}

func (r settingsRequest) toInput() application.SettingsInput {
	return application.SettingsInput{
		WorkStartHour:             r.WorkStartHour,
		WorkEndHour:               r.WorkEndHour,
		BookingStepMinutes:        r.BookingStepMinutes,
		WorkDays:                  r.WorkDays,
		MaxBookingDistanceDays:    r.MaxBookingDistanceDays,
		MaxBookingDurationMinutes: r.MaxBookingDurationMinutes,
		RequireDescription:        r.RequireDescription,
		Timezone:                  r.Timezone,
	}
}

type settingsDTO struct {
	WorkStartHour             int    `json:"workStartHour"`
	WorkEndHour               int    `json:"workEndHour"`
	BookingStepMinutes        int    `json:"bookingStepMinutes"`
	WorkDays                  []int  `json:"workDays"`
	MaxBookingDistanceDays    int    `json:"maxBookingDistanceDays"`
	MaxBookingDurationMinutes int    `json:"maxBookingDurationMinutes"`
	RequireDescription        bool   `json:"requireDescription"`
	Timezone                  string `json:"timezone"`
}

func toSettingsDTO(settings booking.Settings) settingsDTO {
	days := make([]int, 0, len(settings.WorkDays))
	for _, day := range settings.WorkDays {
		days = append(days, int(day))
	}
	return settingsDTO{
		WorkStartHour:             settings.WorkStartHour,
		WorkEndHour:               settings.WorkEndHour,
		BookingStepMinutes:        settings.BookingStepMinutes,
		WorkDays:                  days,
		MaxBookingDistanceDays:    settings.MaxBookingDistanceDays,
		MaxBookingDurationMinutes: settings.MaxBookingDurationMinutes,
		RequireDescription:        settings.RequireDescription,
		Timezone:                  settings.Timezone,
	}
}

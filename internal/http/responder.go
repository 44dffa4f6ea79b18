package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
)

const maxRequestBody = 1 << 20

var (
	errBadRequestBody = errors.New("Invalid request body")
	errMissingID      = errors.New("Invalid id")
)

const (
	msgUnauthorized   = "Unauthorized"
	msgForbidden      = "Forbidden"
	msgInternal       = "Internal server error"
	msgUserExists     = "A user with this email is already registered."
	msgDomainDenied   = "Registration is allowed only for the configured corporate domain."
	msgMailNotReady   = "Email sending is not configured. Contact the administrator."
	msgBadCredentials = "Invalid credentials"
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Error: message})
}

func (r responder) writeMessage(ctx context.Context, w http.ResponseWriter, status int, message string) {
	r.writeJSON(ctx, w, status, errorResponse{Error: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New(msgInternal))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeMessage(ctx, w, http.StatusForbidden, msgForbidden)
		return
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeMessage(ctx, w, http.StatusUnauthorized, msgBadCredentials)
		return
	case errors.Is(err, application.ErrUnauthenticated), errors.Is(err, application.ErrSessionExpired):
		r.writeMessage(ctx, w, http.StatusUnauthorized, msgUnauthorized)
		return
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeMessage(ctx, w, http.StatusConflict, msgUserExists)
		return
	case errors.Is(err, application.ErrDomainNotAllowed):
		r.writeMessage(ctx, w, http.StatusForbidden, msgDomainDenied)
		return
	case errors.Is(err, application.ErrMailUnavailable):
		r.writeMessage(ctx, w, http.StatusServiceUnavailable, msgMailNotReady)
		return
	case errors.Is(err, application.ErrNotFound):
		var nfErr *application.NotFoundError
		if errors.As(err, &nfErr) {
			r.writeMessage(ctx, w, http.StatusNotFound, nfErr.Error())
			return
		}
		r.writeMessage(ctx, w, http.StatusNotFound, "Not found")
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			Error:  vErr.Error(),
			Fields: vErr.FieldErrors,
		})
		return
	}

	var rejection *booking.Rejection
	if errors.As(err, &rejection) {
		r.writeJSON(ctx, w, rejectionStatus(rejection.Reason), errorResponse{
			Error: rejection.Error(),
			Code:  string(rejection.Reason),
		})
		return
	}

	var mailErr *application.MailDeliveryError
	if errors.As(err, &mailErr) {
		r.loggerFor(ctx).ErrorContext(ctx, "mail delivery failed", "error", err)
		r.writeMessage(ctx, w, http.StatusInternalServerError, mailErr.Message)
		return
	}

	r.loggerFor(ctx).ErrorContext(ctx, "unhandled service error", "error", err, "error_kind", application.ErrorKind(err))
	r.writeMessage(ctx, w, http.StatusInternalServerError, msgInternal)
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func rejectionStatus(reason booking.Reason) int {
	switch reason {
	case booking.ReasonSlotTaken:
		return http.StatusConflict
	case booking.ReasonNotOwner:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func statusMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return msgUnauthorized
	case http.StatusForbidden:
		return msgForbidden
	case http.StatusInternalServerError:
		return msgInternal
	default:
		return http.StatusText(status)
	}
}

// decodeJSON reads a single JSON document from the request body.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody)).Decode(dst)
}

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type successResponse struct {
	Success bool `json:"success"`
}

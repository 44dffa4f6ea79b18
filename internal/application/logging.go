package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// serviceLogger prefers the request logger carried by ctx so that service
// records share the request_id of the HTTP access log.
func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = defaultLogger(base)
	}

	pairs := make([]any, 0, 4+len(attrs))
	pairs = append(pairs, "service", serviceName)
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	return logger.With(append(pairs, attrs...)...)
}

// ErrorKind maps sentinel, validation and rejection errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrDomainNotAllowed):
		return "domain_not_allowed"
	case errors.Is(err, ErrMailUnavailable):
		return "mail_unavailable"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	if reason, ok := booking.RejectionReason(err); ok {
		return "rejected_" + string(reason)
	}
	var mErr *MailDeliveryError
	if errors.As(err, &mErr) {
		return "mail_delivery"
	}

	return "unexpected"
}

// logOutcome is the deferred logging used by every service method.
func logOutcome(ctx context.Context, logger *slog.Logger, err error, failure, success string, attrs ...any) {
	if err != nil {
		level := slog.LevelError
		switch ErrorKind(err) {
		case "unexpected", "mail_delivery":
		default:
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, failure, "error", err, "error_kind", ErrorKind(err))
		return
	}
	logger.With(attrs...).InfoContext(ctx, success)
}

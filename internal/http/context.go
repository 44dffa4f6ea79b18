package http

import (
	"context"
	"log/slog"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/logging"
)

type (
	principalKey  struct{}
	resourceIDKey struct{}
)

// ContextWithPrincipal attaches the caller resolved by RequireSession.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext reports the caller attached by RequireSession, if any.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(application.Principal)
	return principal, ok
}

// ContextWithResourceID attaches the {id} segment matched by the router.
func ContextWithResourceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, resourceIDKey{}, id)
}

func ResourceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(resourceIDKey{}).(string)
	return id, ok && id != ""
}

// ContextWithLogger and LoggerFromContext delegate to the logging package so
// that services see the same request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// UserStore captures the persistence operations needed by the user service.
type UserStore interface {
	ListUsers(ctx context.Context) ([]persistence.User, error)
	GetUser(ctx context.Context, id string) (persistence.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserService exposes account administration.
type UserService struct {
	users  UserStore
	logger *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserStore) *UserService {
	return NewUserServiceWithLogger(users, nil)
}

// NewUserServiceWithLogger wires dependencies for the user service with a specified logger.
func NewUserServiceWithLogger(users UserStore, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: defaultLogger(logger)}
}

// ListUsers returns every account, newest first, for administrators.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}

	records, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, userFromRecord(record))
	}
	return users, nil
}

// DeleteUser removes an account and its bookings. Administrators cannot
// delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) (err error) {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	userID = strings.TrimSpace(userID)
	logger := serviceLogger(ctx, s.logger, "UserService", "DeleteUser",
		"principal_id", principal.UserID,
		"user_id", userID,
	)
	defer func() {
		logOutcome(ctx, logger, err, "failed to delete user", "user deleted")
	}()

	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if userID == principal.UserID {
		return invalid("You cannot delete yourself")
	}

	if _, err = s.users.GetUser(ctx, userID); err != nil {
		return notFound("User", err)
	}
	if err = s.users.DeleteUser(ctx, userID); err != nil {
		return notFound("User", err)
	}
	return nil
}

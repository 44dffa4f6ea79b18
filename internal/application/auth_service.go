package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// AccountStore exposes the user lookups required by the auth service.
type AccountStore interface {
	GetUser(ctx context.Context, id string) (persistence.User, error)
	GetUserByEmail(ctx context.Context, email string) (persistence.User, error)
}

// AuthService coordinates login and session validation.
type AuthService struct {
	accounts       AccountStore
	tokens         *TokenIssuer
	verifyPassword PasswordVerifier
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(accounts AccountStore, tokens *TokenIssuer, verify PasswordVerifier) *AuthService {
	return NewAuthServiceWithLogger(accounts, tokens, verify, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(accounts AccountStore, tokens *TokenIssuer, verify PasswordVerifier, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	return &AuthService{
		accounts:       accounts,
		tokens:         tokens,
		verifyPassword: verify,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login validates credentials and issues a signed session token.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.accounts == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	email := normalizeEmail(params.Email)
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		logOutcome(ctx, logger, err, "login failed", "login succeeded", "user_id", result.User.ID)
	}()

	if email == "" || params.Password == "" {
		err = invalid("Email and password required")
		return
	}

	var record persistence.User
	record, err = s.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(record.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	user := userFromRecord(record)
	var token string
	token, result.ExpiresAt, err = s.tokens.Issue(user)
	if err != nil {
		return
	}

	result.Token = token
	result.User = user
	return
}

// ValidateSession verifies token and returns the principal of its user. The
// role is read from the stored account so demotions apply immediately.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.accounts == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).DebugContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrUnauthenticated
		return
	}

	var claims SessionClaims
	claims, err = s.tokens.Parse(trimmed)
	if err != nil {
		return
	}

	var record persistence.User
	record, err = s.accounts.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrUnauthenticated
		}
		return
	}

	principal = Principal{UserID: record.ID, Email: record.Email, Role: ParseRole(record.Role)}
	return
}

// CurrentUser returns the account behind principal.
func (s *AuthService) CurrentUser(ctx context.Context, principal Principal) (User, error) {
	if s == nil || s.accounts == nil {
		return User{}, fmt.Errorf("auth service not configured")
	}
	record, err := s.accounts.GetUser(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrUnauthenticated
		}
		return User{}, err
	}
	return userFromRecord(record), nil
}

package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// VerificationCodeTTL is how long an emailed registration code stays valid.
const VerificationCodeTTL = 15 * time.Minute

const (
	mailDeliveryFallback = "Failed to send verification email."
	mailAuthHint         = "SMTP login failed. Check SMTP_USER and SMTP_PASSWORD (use an app password if required, e.g. Yandex)."
)

var smtpAuthFailure = regexp.MustCompile(`(?i)535|authentication failed|invalid (user|login|password)`)

// RegistrationStore exposes the persistence operations used by self registration.
type RegistrationStore interface {
	GetUserByEmail(ctx context.Context, email string) (persistence.User, error)
	CountUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, user persistence.User) error
	UpsertVerificationCode(ctx context.Context, code persistence.VerificationCode) error
	GetVerificationCode(ctx context.Context, email string) (persistence.VerificationCode, error)
	DeleteVerificationCode(ctx context.Context, email string) error
}

// VerificationMailer delivers registration codes.
type VerificationMailer interface {
	Configured() bool
	SendVerificationCode(ctx context.Context, email, code string) error
}

// RegistrationService implements the two step email verified sign up.
type RegistrationService struct {
	store         RegistrationStore
	mailer        VerificationMailer
	domains       DomainPolicy
	hashPassword  PasswordHasher
	idGenerator   func() string
	codeGenerator func() (string, error)
	now           func() time.Time
	logger        *slog.Logger
}

// NewRegistrationService constructs a RegistrationService with the provided dependencies.
func NewRegistrationService(store RegistrationStore, mailer VerificationMailer, domains DomainPolicy, hash PasswordHasher, idGenerator func() string, now func() time.Time) *RegistrationService {
	return NewRegistrationServiceWithLogger(store, mailer, domains, hash, idGenerator, now, nil)
}

// NewRegistrationServiceWithLogger constructs a RegistrationService with a specified logger.
func NewRegistrationServiceWithLogger(store RegistrationStore, mailer VerificationMailer, domains DomainPolicy, hash PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RegistrationService {
	if hash == nil {
		hash = HashPassword
	}
	if now == nil {
		now = time.Now
	}
	return &RegistrationService{
		store:         store,
		mailer:        mailer,
		domains:       domains,
		hashPassword:  hash,
		idGenerator:   idGenerator,
		codeGenerator: generateVerificationCode,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *RegistrationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RegistrationService", operation, attrs...)
}

// SendCode validates the sign up form and emails a fresh verification code,
// replacing any pending code for the address.
func (s *RegistrationService) SendCode(ctx context.Context, params SendCodeParams) (err error) {
	if s == nil {
		return fmt.Errorf("RegistrationService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("registration service not configured")
	}

	params.Email = normalizeEmail(params.Email)
	params.Name = strings.TrimSpace(params.Name)
	params.Surname = strings.TrimSpace(params.Surname)

	logger := s.loggerWith(ctx, "SendCode", "email", params.Email)
	defer func() {
		logOutcome(ctx, logger, err, "verification code not sent", "verification code sent")
	}()

	if vErr := validateInput(params, registrationMessages, "Invalid data"); vErr != nil {
		return vErr
	}
	if !s.domains.Allows(params.Email) {
		return ErrDomainNotAllowed
	}
	if err = s.ensureEmailFree(ctx, params.Email); err != nil {
		return err
	}
	if s.mailer == nil || !s.mailer.Configured() {
		return ErrMailUnavailable
	}

	code, err := s.codeGenerator()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}
	now := s.now()
	if err = s.store.UpsertVerificationCode(ctx, persistence.VerificationCode{
		Email:     params.Email,
		Code:      code,
		ExpiresAt: now.Add(VerificationCodeTTL),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	if sendErr := s.mailer.SendVerificationCode(ctx, params.Email, code); sendErr != nil {
		return &MailDeliveryError{Message: mailFailureMessage(sendErr), Err: sendErr}
	}
	return nil
}

// Complete checks the emailed code and creates the account. The first account
// ever created becomes an administrator.
func (s *RegistrationService) Complete(ctx context.Context, params CompleteRegistrationParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("RegistrationService is nil")
		return
	}
	if s.store == nil || s.idGenerator == nil {
		err = fmt.Errorf("registration service not configured")
		return
	}

	params.Email = normalizeEmail(params.Email)
	params.Code = strings.TrimSpace(params.Code)
	params.Name = strings.TrimSpace(params.Name)
	params.Surname = strings.TrimSpace(params.Surname)

	logger := s.loggerWith(ctx, "Complete", "email", params.Email)
	defer func() {
		logOutcome(ctx, logger, err, "registration failed", "registration completed", "user_id", user.ID, "role", user.Role)
	}()

	if params.Email == "" || params.Code == "" || params.Password == "" || params.Name == "" || params.Surname == "" {
		err = invalid("Please fill in all fields.")
		return
	}
	if vErr := validateInput(params, registrationMessages, "Invalid data"); vErr != nil {
		err = vErr
		return
	}
	if !s.domains.Allows(params.Email) {
		err = ErrDomainNotAllowed
		return
	}

	var record persistence.VerificationCode
	record, err = s.store.GetVerificationCode(ctx, params.Email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = invalid("Code not found. Request a new code.")
		}
		return
	}
	if record.Code != params.Code {
		err = invalid("Invalid verification code.")
		return
	}
	if !s.now().Before(record.ExpiresAt) {
		s.discardCode(ctx, logger, params.Email)
		err = invalid("Code has expired. Request a new code.")
		return
	}
	if err = s.ensureEmailFree(ctx, params.Email); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			s.discardCode(ctx, logger, params.Email)
		}
		return
	}

	var count int
	count, err = s.store.CountUsers(ctx)
	if err != nil {
		return
	}
	role := RoleUser
	if count == 0 {
		role = RoleAdmin
	}

	var hash string
	hash, err = s.hashPassword(params.Password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	now := s.now()
	created := persistence.User{
		ID:           s.idGenerator(),
		Email:        params.Email,
		PasswordHash: hash,
		Name:         params.Name,
		Surname:      params.Surname,
		Role:         string(role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = s.store.CreateUser(ctx, created); err != nil {
		err = mapRepoError(err)
		return
	}
	s.discardCode(ctx, logger, params.Email)

	user = userFromRecord(created)
	return
}

func (s *RegistrationService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrNotFound):
		return nil
	default:
		return err
	}
}

// discardCode removes the pending code. Failures are logged and ignored.
func (s *RegistrationService) discardCode(ctx context.Context, logger *slog.Logger, email string) {
	if err := s.store.DeleteVerificationCode(ctx, email); err != nil && !errors.Is(err, persistence.ErrNotFound) {
		logger.WarnContext(ctx, "failed to delete verification code", "error", err)
	}
}

func mailFailureMessage(err error) string {
	raw := strings.TrimSpace(err.Error())
	if smtpAuthFailure.MatchString(raw) {
		return mailAuthHint
	}
	if raw == "" {
		return mailDeliveryFallback
	}
	return raw
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

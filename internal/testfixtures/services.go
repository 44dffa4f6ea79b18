package testfixtures

import (
	"log/slog"
	"testing"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

// TokenSecret signs session tokens issued by factory built services.
const TokenSecret = "test-secret"

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Domains     application.DomainPolicy
	Mailer      application.VerificationMailer
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithMailer sets the verification mailer handed to the registration service.
func WithMailer(mailer application.VerificationMailer) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Mailer = mailer
	}
}

// WithDomains restricts registration to the given policy.
func WithDomains(policy application.DomainPolicy) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Domains = policy
	}
}

// Services bundles every application service wired onto one store.
type Services struct {
	Tokens       *application.TokenIssuer
	Auth         *application.AuthService
	Registration *application.RegistrationService
	Settings     *application.SettingsService
	Rooms        *application.RoomService
	Users        *application.UserService
	Bookings     *application.BookingService
}

// Build wires the services onto store with the factory clock and ids.
func (f *ServiceFactory) Build(tb testing.TB, store persistence.Store) Services {
	tb.Helper()

	now := f.Clock.NowFunc()
	ids := f.IDGenerator.NextFunc()

	tokens, err := application.NewTokenIssuer(TokenSecret, time.Hour, now)
	if err != nil {
		tb.Fatalf("failed to create token issuer: %v", err)
	}
	settings := application.NewSettingsServiceWithLogger(store, now, f.Logger)
	return Services{
		Tokens:       tokens,
		Auth:         application.NewAuthServiceWithLogger(store, tokens, application.VerifyPassword, f.Logger),
		Registration: application.NewRegistrationServiceWithLogger(store, f.Mailer, f.Domains, HashPassword, ids, now, f.Logger),
		Settings:     settings,
		Rooms:        application.NewRoomServiceWithLogger(store, ids, now, f.Logger),
		Users:        application.NewUserServiceWithLogger(store, f.Logger),
		Bookings:     application.NewBookingServiceWithLogger(store, settings, ids, now, f.Logger),
	}
}

// Token issues a session token for the fixture user.
func (s Services) Token(tb testing.TB, user UserFixture) string {
	tb.Helper()
	token, _, err := s.Tokens.Issue(user.Application())
	if err != nil {
		tb.Fatalf("failed to issue token: %v", err)
	}
	return token
}

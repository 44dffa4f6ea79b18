package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

// DefaultPassword is the plain password of every generated user.
const DefaultPassword = "secret123"

var (
	userCounter    uint64
	roomCounter    uint64
	bookingCounter uint64
)

// Monday 6 January 2025, 08:00 UTC.
var referenceTime = time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// HashPassword hashes password at the minimum bcrypt cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic account.
type UserFixture struct {
	ID        string
	Email     string
	Name      string
	Surname   string
	Password  string
	Role      application.Role
	CreatedAt time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	fixture := UserFixture{
		ID:        fmt.Sprintf("user-%03d", idx),
		Email:     fmt.Sprintf("user%03d@example.com", idx),
		Name:      fmt.Sprintf("Name%03d", idx),
		Surname:   fmt.Sprintf("Surname%03d", idx),
		Password:  DefaultPassword,
		Role:      application.RoleUser,
		CreatedAt: referenceTime.Add(-time.Duration(idx) * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserNames overrides the given name and surname.
func WithUserNames(name, surname string) UserOption {
	return func(f *UserFixture) {
		f.Name = name
		f.Surname = surname
	}
}

// WithUserPassword overrides the plain password.
func WithUserPassword(password string) UserOption {
	return func(f *UserFixture) {
		f.Password = password
	}
}

// WithUserAdmin grants the administrator role.
func WithUserAdmin() UserOption {
	return func(f *UserFixture) {
		f.Role = application.RoleAdmin
	}
}

// WithUserCreatedAt sets the created timestamp on the fixture.
func WithUserCreatedAt(t time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = t
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Email: f.Email, Role: f.Role}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:        f.ID,
		Email:     f.Email,
		Name:      f.Name,
		Surname:   f.Surname,
		Role:      f.Role,
		CreatedAt: f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.User value with a hashed
// password.
func (f UserFixture) Persistence() persistence.User {
	hash, err := HashPassword(f.Password)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: hash password: %v", err))
	}
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		PasswordHash: hash,
		Name:         f.Name,
		Surname:      f.Surname,
		Role:         string(f.Role),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.CreatedAt,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic meeting room.
type RoomFixture struct {
	ID          string
	Name        string
	Description *string
	IsActive    bool
	CreatedAt   time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns an active room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Room %03d", idx),
		IsActive:  true,
		CreatedAt: referenceTime.Add(-24 * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomDescription sets the description.
func WithRoomDescription(description string) RoomOption {
	return func(f *RoomFixture) {
		value := description
		f.Description = &value
	}
}

// WithRoomInactive hides the room from booking.
func WithRoomInactive() RoomOption {
	return func(f *RoomFixture) {
		f.IsActive = false
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:          f.ID,
		Name:        f.Name,
		Description: copyStringPtr(f.Description),
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.CreatedAt,
	}
}

// --------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic reservation.
type BookingFixture struct {
	ID          string
	RoomID      string
	UserID      string
	Start       time.Time
	Duration    time.Duration
	Description *string
	CreatedAt   time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a one hour booking at 09:00 on the reference day.
func NewBookingFixture(roomID, userID string, opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	fixture := BookingFixture{
		ID:        fmt.Sprintf("booking-%03d", idx),
		RoomID:    roomID,
		UserID:    userID,
		Start:     time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC),
		Duration:  time.Hour,
		CreatedAt: referenceTime.Add(-time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingSlot sets the start and length.
func WithBookingSlot(start time.Time, duration time.Duration) BookingOption {
	return func(f *BookingFixture) {
		f.Start = start
		f.Duration = duration
	}
}

// WithBookingDescription sets the description.
func WithBookingDescription(description string) BookingOption {
	return func(f *BookingFixture) {
		value := description
		f.Description = &value
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:          f.ID,
		RoomID:      f.RoomID,
		UserID:      f.UserID,
		StartTime:   f.Start,
		EndTime:     f.Start.Add(f.Duration),
		Description: copyStringPtr(f.Description),
		CreatedAt:   f.CreatedAt,
	}
}

func copyStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

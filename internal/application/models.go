package application

import (
	"time"

	"github.com/example/room-booking/internal/booking"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole maps a stored role onto the enum. Unknown values degrade to RoleUser.
func ParseRole(value string) Role {
	if Role(value) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin reports whether the principal holds the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// User represents an account exposed by the application services.
type User struct {
	ID        string
	Email     string
	Name      string
	Surname   string
	Role      Role
	CreatedAt time.Time
}

// DisplayName renders the user as "surname name".
func (u User) DisplayName() string {
	return u.Surname + " " + u.Name
}

// LoginParams captures the data required to authenticate a user.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// SendCodeParams captures the first registration step.
type SendCodeParams struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Name     string `validate:"required,max=50"`
	Surname  string `validate:"required,max=50"`
}

// CompleteRegistrationParams captures the second registration step.
type CompleteRegistrationParams struct {
	Email    string `validate:"required,email"`
	Code     string
	Password string `validate:"required,min=6"`
	Name     string `validate:"required,max=50"`
	Surname  string `validate:"required,max=50"`
}

// Room represents a bookable meeting room.
type Room struct {
	ID          string
	Name        string
	Description *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoomInput captures the fields accepted when creating a room.
type RoomInput struct {
	Name        string  `validate:"required,max=30"`
	Description *string `validate:"omitempty,max=100"`
}

// RoomPatch captures a partial room update. Nil fields are left unchanged.
type RoomPatch struct {
	Name        *string `validate:"omitempty,min=1,max=30"`
	Description *string `validate:"omitempty,max=100"`
	IsActive    *bool
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Patch     RoomPatch
}

// Booking is a stored reservation.
type Booking struct {
	ID          string
	RoomID      string
	UserID      string
	Start       time.Time
	End         time.Time
	Description *string
	CreatedAt   time.Time
}

// BookingView is a booking joined with the names of its user and room.
type BookingView struct {
	Booking
	UserName    string
	UserSurname string
	UserEmail   string
	RoomName    string
}

// UserDisplayName renders the booking owner as "surname name".
func (b BookingView) UserDisplayName() string {
	return b.UserSurname + " " + b.UserName
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal       Principal
	RoomID          string
	Start           time.Time
	DurationMinutes int
	Description     *string
}

// DayQuery selects the bookings of one room on one local date.
type DayQuery struct {
	RoomID string
	Date   string
}

// AdminBookings splits every booking around the current instant.
type AdminBookings struct {
	Upcoming []BookingView
	Past     []BookingView
}

// Calendar is the data needed to render a booking grid for one date.
type Calendar struct {
	Date            string
	Slots           []time.Time
	DurationOptions []int
	SelectableDays  []string
	Settings        booking.Settings
}

// SettingsInput captures an administrator's replacement policy. Every field is
// required.
type SettingsInput struct {
	WorkStartHour             *int   `validate:"required,min=0,max=23"`
	WorkEndHour               *int   `validate:"required,min=0,max=23"`
	BookingStepMinutes        *int   `validate:"required,gt=0,max=1440"`
	WorkDays                  []int  `validate:"required,min=1,dive,min=0,max=6"`
	MaxBookingDistanceDays    *int   `validate:"required,gt=0"`
	MaxBookingDurationMinutes *int   `validate:"required,gt=0"`
	RequireDescription        *bool  `validate:"required"`
	Timezone                  string `validate:"required,timezone"`
}

// UpdateSettingsParams wraps the data required to replace the settings.
type UpdateSettingsParams struct {
	Principal Principal
	Input     SettingsInput
}

package persistence

import "time"

// User is an account able to log in and book rooms.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Surname      string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room is a bookable meeting room.
type Room struct {
	ID          string
	Name        string
	Description *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Booking reserves a room for the half-open interval [StartTime, EndTime).
type Booking struct {
	ID          string
	RoomID      string
	UserID      string
	StartTime   time.Time
	EndTime     time.Time
	Description *string
	CreatedAt   time.Time
}

// BookingDetail is a booking joined with the attributes of its user and room.
type BookingDetail struct {
	Booking
	UserName    string
	UserSurname string
	UserEmail   string
	RoomName    string
}

// VerificationCode is the pending registration code for an email address.
type VerificationCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Settings is the stored scheduling policy singleton. WorkDays holds weekday
// indices with 0 for Sunday.
type Settings struct {
	WorkStartHour             int
	WorkEndHour               int
	BookingStepMinutes        int
	WorkDays                  []int
	MaxBookingDistanceDays    int
	MaxBookingDurationMinutes int
	RequireDescription        bool
	Timezone                  string
	UpdatedAt                 time.Time
}

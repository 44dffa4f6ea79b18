package gormstore

import (
	"strconv"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

type userModel struct {
	ID           string    `gorm:"size:36;primaryKey"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Name         string    `gorm:"size:50;not null"`
	Surname      string    `gorm:"size:50;not null"`
	Role         string    `gorm:"size:16;not null;default:USER"`
	CreatedAt    time.Time `gorm:"index;not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

type roomModel struct {
	ID          string    `gorm:"size:36;primaryKey"`
	Name        string    `gorm:"size:30;index;not null"`
	Description *string   `gorm:"size:100"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (roomModel) TableName() string { return "rooms" }

type bookingModel struct {
	ID          string     `gorm:"size:36;primaryKey"`
	RoomID      string     `gorm:"size:36;not null;index:idx_bookings_room_start,priority:1"`
	UserID      string     `gorm:"size:36;not null;index"`
	StartTime   time.Time  `gorm:"not null;index:idx_bookings_room_start,priority:2"`
	EndTime     time.Time  `gorm:"not null"`
	Description *string    `gorm:"size:150"`
	CreatedAt   time.Time  `gorm:"not null"`
	Room        *roomModel `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	User        *userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (bookingModel) TableName() string { return "bookings" }

type bookingDetailRow struct {
	ID          string
	RoomID      string
	UserID      string
	StartTime   time.Time
	EndTime     time.Time
	Description *string
	CreatedAt   time.Time
	UserName    string
	UserSurname string
	UserEmail   string
	RoomName    string
}

type verificationCodeModel struct {
	Email     string    `gorm:"size:255;primaryKey"`
	Code      string    `gorm:"size:6;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (verificationCodeModel) TableName() string { return "verification_codes" }

const settingsRowID = 1

type settingsModel struct {
	ID                        uint   `gorm:"primaryKey;autoIncrement:false"`
	WorkStartHour             int    `gorm:"not null"`
	WorkEndHour               int    `gorm:"not null"`
	BookingStepMinutes        int    `gorm:"not null"`
	WorkDays                  string `gorm:"size:32;not null"`
	MaxBookingDistanceDays    int    `gorm:"not null"`
	MaxBookingDurationMinutes int    `gorm:"not null"`
	RequireDescription        bool   `gorm:"not null;default:false"`
	Timezone                  string `gorm:"size:64;not null"`
	UpdatedAt                 time.Time
}

func (settingsModel) TableName() string { return "system_settings" }

func toUserModel(user persistence.User) userModel {
	return userModel{
		ID:           user.ID,
		Email:        normalizeEmail(user.Email),
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		Surname:      user.Surname,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}
}

func (m userModel) toPersistence() persistence.User {
	return persistence.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		Surname:      m.Surname,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func toRoomModel(room persistence.Room) roomModel {
	return roomModel{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		IsActive:    room.IsActive,
		CreatedAt:   room.CreatedAt.UTC(),
		UpdatedAt:   room.UpdatedAt.UTC(),
	}
}

func (m roomModel) toPersistence() persistence.Room {
	return persistence.Room{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func toBookingModel(booking persistence.Booking) bookingModel {
	return bookingModel{
		ID:          booking.ID,
		RoomID:      booking.RoomID,
		UserID:      booking.UserID,
		StartTime:   booking.StartTime.UTC(),
		EndTime:     booking.EndTime.UTC(),
		Description: booking.Description,
		CreatedAt:   booking.CreatedAt.UTC(),
	}
}

func (m bookingModel) toPersistence() persistence.Booking {
	return persistence.Booking{
		ID:          m.ID,
		RoomID:      m.RoomID,
		UserID:      m.UserID,
		StartTime:   m.StartTime.UTC(),
		EndTime:     m.EndTime.UTC(),
		Description: m.Description,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func (r bookingDetailRow) toPersistence() persistence.BookingDetail {
	return persistence.BookingDetail{
		Booking: persistence.Booking{
			ID:          r.ID,
			RoomID:      r.RoomID,
			UserID:      r.UserID,
			StartTime:   r.StartTime.UTC(),
			EndTime:     r.EndTime.UTC(),
			Description: r.Description,
			CreatedAt:   r.CreatedAt.UTC(),
		},
		UserName:    r.UserName,
		UserSurname: r.UserSurname,
		UserEmail:   r.UserEmail,
		RoomName:    r.RoomName,
	}
}

func toSettingsModel(settings persistence.Settings) settingsModel {
	days := make([]string, len(settings.WorkDays))
	for i, day := range settings.WorkDays {
		days[i] = strconv.Itoa(day)
	}
	return settingsModel{
		ID:                        settingsRowID,
		WorkStartHour:             settings.WorkStartHour,
		WorkEndHour:               settings.WorkEndHour,
		BookingStepMinutes:        settings.BookingStepMinutes,
		WorkDays:                  strings.Join(days, ","),
		MaxBookingDistanceDays:    settings.MaxBookingDistanceDays,
		MaxBookingDurationMinutes: settings.MaxBookingDurationMinutes,
		RequireDescription:        settings.RequireDescription,
		Timezone:                  settings.Timezone,
		UpdatedAt:                 settings.UpdatedAt.UTC(),
	}
}

func (m settingsModel) toPersistence() (persistence.Settings, error) {
	days := []int{}
	if trimmed := strings.TrimSpace(m.WorkDays); trimmed != "" {
		for _, part := range strings.Split(trimmed, ",") {
			day, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return persistence.Settings{}, err
			}
			days = append(days, day)
		}
	}
	return persistence.Settings{
		WorkStartHour:             m.WorkStartHour,
		WorkEndHour:               m.WorkEndHour,
		BookingStepMinutes:        m.BookingStepMinutes,
		WorkDays:                  days,
		MaxBookingDistanceDays:    m.MaxBookingDistanceDays,
		MaxBookingDurationMinutes: m.MaxBookingDurationMinutes,
		RequireDescription:        m.RequireDescription,
		Timezone:                  m.Timezone,
		UpdatedAt:                 m.UpdatedAt.UTC(),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package gormstore

import (
	"context"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user.ID == "" || strings.TrimSpace(user.Email) == "" {
		return persistence.ErrConstraintViolation
	}
	model := toUserModel(user)
	return mapError(s.db.WithContext(ctx).Create(&model).Error)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if err := ctx.Err(); err != nil {
		return persistence.User{}, err
	}
	var model userModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return persistence.User{}, mapError(err)
	}
	return model.toPersistence(), nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if err := ctx.Err(); err != nil {
		return persistence.User{}, err
	}
	var model userModel
	if err := s.db.WithContext(ctx).First(&model, "email = ?", normalizeEmail(email)).Error; err != nil {
		return persistence.User{}, mapError(err)
	}
	return model.toPersistence(), nil
}

// ListUsers returns every user, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var models []userModel
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, mapError(err)
	}
	users := make([]persistence.User, 0, len(models))
	for _, model := range models {
		users = append(users, model.toPersistence())
	}
	return users, nil
}

// CountUsers returns the number of registered users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&userModel{}).Count(&count).Error; err != nil {
		return 0, mapError(err)
	}
	return int(count), nil
}

// DeleteUser removes a user and, through the cascade, their bookings.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&userModel{}, "id = ?", id)
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

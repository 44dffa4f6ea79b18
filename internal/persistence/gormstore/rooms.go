package gormstore

import (
	"context"
	"strings"

	"github.com/example/room-booking/internal/persistence"
	"gorm.io/gorm"
)

// CreateRoom inserts a new room.
func (s *Store) CreateRoom(ctx context.Context, room persistence.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if room.ID == "" || strings.TrimSpace(room.Name) == "" {
		return persistence.ErrConstraintViolation
	}
	model := toRoomModel(room)
	return mapError(s.db.WithContext(ctx).Create(&model).Error)
}

// UpdateRoom overwrites the mutable fields of an existing room.
func (s *Store) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if room.ID == "" || strings.TrimSpace(room.Name) == "" {
		return persistence.ErrConstraintViolation
	}

	updates := map[string]any{
		"name":       room.Name,
		"is_active":  room.IsActive,
		"updated_at": room.UpdatedAt.UTC(),
	}
	if room.Description == nil {
		updates["description"] = gorm.Expr("NULL")
	} else {
		updates["description"] = *room.Description
	}

	res := s.db.WithContext(ctx).Model(&roomModel{}).Where("id = ?", room.ID).Updates(updates)
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Room{}, err
	}
	var model roomModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return persistence.Room{}, mapError(err)
	}
	return model.toPersistence(), nil
}

// ListRooms returns every room ordered by name.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var models []roomModel
	if err := s.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, mapError(err)
	}
	rooms := make([]persistence.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, model.toPersistence())
	}
	return rooms, nil
}

// DeleteRoom removes a room and, through the cascade, its bookings.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&roomModel{}, "id = ?", id)
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

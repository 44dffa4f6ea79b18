package gormstore

import (
	"context"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
	"gorm.io/gorm/clause"
)

// GetSettings returns the stored settings or persistence.ErrNotFound before
// the first save.
func (s *Store) GetSettings(ctx context.Context) (persistence.Settings, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Settings{}, err
	}
	var model settingsModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", settingsRowID).Error; err != nil {
		return persistence.Settings{}, mapError(err)
	}
	settings, err := model.toPersistence()
	if err != nil {
		return persistence.Settings{}, fmt.Errorf("gormstore: decode work days %q: %w", model.WorkDays, err)
	}
	return settings, nil
}

// SaveSettings creates or replaces the settings row.
func (s *Store) SaveSettings(ctx context.Context, settings persistence.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	model := toSettingsModel(settings)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&model).Error
	return mapError(err)
}

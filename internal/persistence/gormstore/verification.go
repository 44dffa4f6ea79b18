package gormstore

import (
	"context"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"gorm.io/gorm/clause"
)

// UpsertVerificationCode stores code, replacing any pending code for the email.
func (s *Store) UpsertVerificationCode(ctx context.Context, code persistence.VerificationCode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	model := verificationCodeModel{
		Email:     normalizeEmail(code.Email),
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt.UTC(),
		CreatedAt: code.CreatedAt.UTC(),
	}
	if model.Email == "" || model.Code == "" {
		return persistence.ErrConstraintViolation
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "created_at"}),
	}).Create(&model).Error
	return mapError(err)
}

// GetVerificationCode returns the pending code for email.
func (s *Store) GetVerificationCode(ctx context.Context, email string) (persistence.VerificationCode, error) {
	if err := ctx.Err(); err != nil {
		return persistence.VerificationCode{}, err
	}
	var model verificationCodeModel
	if err := s.db.WithContext(ctx).First(&model, "email = ?", normalizeEmail(email)).Error; err != nil {
		return persistence.VerificationCode{}, mapError(err)
	}
	return persistence.VerificationCode{
		Email:     model.Email,
		Code:      model.Code,
		ExpiresAt: model.ExpiresAt.UTC(),
		CreatedAt: model.CreatedAt.UTC(),
	}, nil
}

// DeleteVerificationCode removes the pending code for email. A missing code
// is not an error.
func (s *Store) DeleteVerificationCode(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapError(s.db.WithContext(ctx).Delete(&verificationCodeModel{}, "email = ?", normalizeEmail(email)).Error)
}

// DeleteExpiredVerificationCodes removes every code expiring at or before reference.
func (s *Store) DeleteExpiredVerificationCodes(ctx context.Context, reference time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Where("expires_at <= ?", reference.UTC()).Delete(&verificationCodeModel{})
	if res.Error != nil {
		return 0, mapError(res.Error)
	}
	return res.RowsAffected, nil
}

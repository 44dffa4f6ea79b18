package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// VerificationCodeRepository implements persistence.VerificationCodeRepository
// using SQLite.
type VerificationCodeRepository struct {
	pool   *ConnectionPool
	mapper ErrorMapper
}

// NewVerificationCodeRepository creates a new SQLite verification code repository.
func NewVerificationCodeRepository(pool *ConnectionPool) *VerificationCodeRepository {
	return &VerificationCodeRepository{pool: pool}
}

// UpsertVerificationCode stores code, replacing any pending code for the same email.
func (r *VerificationCodeRepository) UpsertVerificationCode(ctx context.Context, code persistence.VerificationCode) error {
	email := normalizeEmail(code.Email)
	if email == "" || code.Code == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.DB().ExecContext(ctx, `
		INSERT INTO verification_codes (email, code, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			code = excluded.code,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`, email, code.Code, formatTime(code.ExpiresAt), formatTime(code.CreatedAt))
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetVerificationCode returns the pending code for email.
func (r *VerificationCodeRepository) GetVerificationCode(ctx context.Context, email string) (persistence.VerificationCode, error) {
	email = normalizeEmail(email)
	if email == "" {
		return persistence.VerificationCode{}, persistence.ErrNotFound
	}

	var (
		code                 persistence.VerificationCode
		expiresAt, createdAt string
	)
	err := r.pool.DB().QueryRowContext(ctx, `
		SELECT email, code, expires_at, created_at
		FROM verification_codes
		WHERE email = ?
	`, email).Scan(&code.Email, &code.Code, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.VerificationCode{}, persistence.ErrNotFound
		}
		return persistence.VerificationCode{}, r.mapper.MapError(err)
	}

	if code.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.VerificationCode{}, err
	}
	if code.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.VerificationCode{}, err
	}
	return code, nil
}

// DeleteVerificationCode removes the pending code for email. Deleting a
// missing code is not an error.
func (r *VerificationCodeRepository) DeleteVerificationCode(ctx context.Context, email string) error {
	if _, err := r.pool.DB().ExecContext(ctx, `DELETE FROM verification_codes WHERE email = ?`, normalizeEmail(email)); err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// DeleteExpiredVerificationCodes removes every code expiring at or before reference.
func (r *VerificationCodeRepository) DeleteExpiredVerificationCodes(ctx context.Context, reference time.Time) (int64, error) {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM verification_codes WHERE expires_at <= ?`, formatTime(reference))
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return result.RowsAffected()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

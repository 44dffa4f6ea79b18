package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store implements persistence.Store on SQLite.
type Store struct {
	*UserRepository
	*RoomRepository
	*BookingRepository
	*VerificationCodeRepository
	*SettingsRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

var _ persistence.Store = (*Store)(nil)

// Open connects to the database and applies pending migrations.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := NewConnectionPool(cfg)
	if err != nil {
		return nil, err
	}

	store := NewStore(pool, logger)
	if err := store.Migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wires every repository onto pool without touching the schema.
func NewStore(pool *ConnectionPool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		UserRepository:             NewUserRepository(pool),
		RoomRepository:             NewRoomRepository(pool),
		BookingRepository:          NewBookingRepository(pool),
		VerificationCodeRepository: NewVerificationCodeRepository(pool),
		SettingsRepository:         NewSettingsRepository(pool),
		pool:                       pool,
		logger:                     logger,
	}
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	applied, err := migration.NewManager(s.pool.DB(), migrationFiles, "migrations", s.logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	if applied > 0 {
		s.logger.InfoContext(ctx, "database schema updated", "applied", applied)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

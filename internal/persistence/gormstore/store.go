// Package gormstore implements persistence.Store with gorm. PostgreSQL is used
// for postgres:// DSNs and the pure Go SQLite driver for everything else.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Config describes the database connection.
type Config struct {
	DSN           string
	SlowThreshold time.Duration
}

// Store implements persistence.Store on top of *gorm.DB.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

var _ persistence.Store = (*Store)(nil)

// IsPostgresDSN reports whether dsn addresses a PostgreSQL server.
func IsPostgresDSN(dsn string) bool {
	dsn = strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects and migrates the schema.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("gormstore: database dsn is empty")
	}

	threshold := cfg.SlowThreshold
	if threshold <= 0 {
		threshold = 500 * time.Millisecond
	}
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger: logger.New(slogWriter{log: log}, logger.Config{
			SlowThreshold:             threshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	postgresDSN := IsPostgresDSN(cfg.DSN)
	var dialector gorm.Dialector
	if postgresDSN {
		dialector = postgres.Open(cfg.DSN)
	} else {
		dialector = sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: sqliteDSN(cfg.DSN)})
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("gormstore: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gormstore: access pool: %w", err)
	}
	if postgresDSN {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	store := &Store{db: db, logger: log.With("component", "gormstore")}
	if err := store.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return store, nil
}

func sqliteDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	var params []string
	if !strings.Contains(dsn, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "_txlock") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// Migrate creates or updates every table.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&userModel{},
		&roomModel{},
		&bookingModel{},
		&verificationCodeModel{},
		&settingsModel{},
	)
	if err != nil {
		return fmt.Errorf("gormstore: migrate: %w", err)
	}
	s.logger.DebugContext(ctx, "schema migrated", "dialect", s.db.Dialector.Name())
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) isPostgres() bool {
	return s.db.Dialector.Name() == "postgres"
}

// mapError translates gorm and driver errors into persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return persistence.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", persistence.ErrForeignKeyViolation, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}

	msg := err.Error()
	switch {
	case containsAny(msg, "UNIQUE constraint failed", "duplicate key value"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case containsAny(msg, "FOREIGN KEY constraint failed", "violates foreign key constraint"):
		return fmt.Errorf("%w: %v", persistence.ErrForeignKeyViolation, err)
	case containsAny(msg, "CHECK constraint failed", "NOT NULL constraint failed", "violates check constraint", "violates not-null constraint"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}

func containsAny(s string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// slogWriter adapts gorm's printf logger onto slog.
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}

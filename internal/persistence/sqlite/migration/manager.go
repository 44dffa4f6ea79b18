package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
)

// Manager applies the migrations found in a directory of an fs.FS.
type Manager struct {
	fsys     fs.FS
	dir      string
	executor executor
	logger   *slog.Logger
}

// NewManager constructs a manager for db reading migrations from dir in fsys.
func NewManager(db *sql.DB, fsys fs.FS, dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		fsys:     fsys,
		dir:      dir,
		executor: executor{db: db, now: time.Now},
		logger:   logger.With("component", "migration"),
	}
}

// Run applies every pending migration in version order and returns how many
// were applied. Applied files whose checksum changed abort the run.
func (m *Manager) Run(ctx context.Context) (int, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return 0, err
	}

	m.logger.InfoContext(ctx, "migration status",
		"current_version", status.CurrentVersion,
		"pending_count", len(status.Pending),
	)

	for i, migration := range status.Pending {
		logger := m.logger.With("version", migration.Version, "description", migration.Description)
		if err := m.executor.execute(ctx, migration); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return i, err
		}
		logger.InfoContext(ctx, "migration applied")
	}
	return len(status.Pending), nil
}

// Status compares the files on disk against the schema_migrations table.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.initVersionTable(ctx); err != nil {
		return Status{}, err
	}

	available, err := Scan(m.fsys, m.dir)
	if err != nil {
		return Status{}, err
	}

	applied, err := m.executor.applied(ctx)
	if err != nil {
		return Status{}, err
	}

	checksums := make(map[int]string, len(applied))
	status := Status{Applied: applied}
	for _, record := range applied {
		checksums[record.Version] = record.Checksum
		if record.Version > status.CurrentVersion {
			status.CurrentVersion = record.Version
		}
	}

	for _, migration := range available {
		sum, ok := checksums[migration.Version]
		if !ok {
			status.Pending = append(status.Pending, migration)
			continue
		}
		if sum != migration.Checksum {
			return Status{}, newMigrationError(migration.Version, migration.FilePath, "verify checksum",
				fmt.Errorf("%w: recorded %s", ErrChecksumMismatch, sum))
		}
	}
	return status, nil
}

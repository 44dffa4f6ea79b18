package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const versionTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL,
	checksum TEXT NOT NULL,
	execution_time_ms INTEGER NOT NULL DEFAULT 0
)`

type executor struct {
	db  *sql.DB
	now func() time.Time
}

func (e executor) initVersionTable(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, versionTableDDL); err != nil {
		return newMigrationError(0, "schema_migrations", "create version table", err)
	}
	return nil
}

func (e executor) applied(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT version, applied_at, checksum, execution_time_ms
		FROM schema_migrations
		ORDER BY version ASC
	`)
	if err != nil {
		return nil, newMigrationError(0, "schema_migrations", "list applied", err)
	}
	defer rows.Close()

	var out []AppliedMigration
	for rows.Next() {
		var (
			record    AppliedMigration
			appliedAt string
			elapsedMs int64
		)
		if err := rows.Scan(&record.Version, &appliedAt, &record.Checksum, &elapsedMs); err != nil {
			return nil, newMigrationError(0, "schema_migrations", "scan applied", err)
		}
		if record.AppliedAt, err = time.Parse(time.RFC3339, appliedAt); err != nil {
			return nil, newMigrationError(record.Version, "schema_migrations", "parse applied_at", err)
		}
		record.ExecutionTime = time.Duration(elapsedMs) * time.Millisecond
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, newMigrationError(0, "schema_migrations", "iterate applied", err)
	}
	return out, nil
}

// execute runs every statement of m and records it in one transaction.
func (e executor) execute(ctx context.Context, m Migration) (err error) {
	started := e.now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return newMigrationError(m.Version, m.FilePath, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range splitStatements(m.SQL) {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return newMigrationError(m.Version, m.FilePath, fmt.Sprintf("execute statement %d", i+1), err)
		}
	}

	elapsed := e.now().Sub(started)
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (?, ?, ?, ?)`,
		m.Version, e.now().UTC().Format(time.RFC3339), m.Checksum, elapsed.Milliseconds(),
	); err != nil {
		return newMigrationError(m.Version, m.FilePath, "record migration", err)
	}

	if err = tx.Commit(); err != nil {
		return newMigrationError(m.Version, m.FilePath, "commit", err)
	}
	return nil
}

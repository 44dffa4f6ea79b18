package migration

import "time"

// Migration is a single versioned schema change.
type Migration struct {
	Version     int
	Description string
	SQL         string
	FilePath    string
	Checksum    string
}

// AppliedMigration is a row of the schema_migrations table.
type AppliedMigration struct {
	Version       int
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status summarizes the migration state of a database.
type Status struct {
	CurrentVersion int
	Applied        []AppliedMigration
	Pending        []Migration
}

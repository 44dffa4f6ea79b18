// Package migration applies versioned SQL schema changes to a SQLite database.
//
// Migrations are read from an fs.FS (normally an embedded directory) and must
// be named {version}_{description}.sql, e.g. "001_initial_schema.sql". Each
// file runs inside its own transaction and is recorded in the
// schema_migrations table together with its checksum, so reruns skip applied
// versions and detect edited files.
package migration

package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMigrationFile indicates a malformed file name or empty file.
	ErrInvalidMigrationFile = errors.New("invalid migration file")
	// ErrDuplicateVersion indicates two files share a version number.
	ErrDuplicateVersion = errors.New("duplicate migration version")
	// ErrChecksumMismatch indicates an applied migration file was edited afterwards.
	ErrChecksumMismatch = errors.New("migration checksum mismatch")
)

// MigrationError adds version and operation context to a failure.
type MigrationError struct {
	Version   int
	FilePath  string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *MigrationError) Error() string {
	if e.Version > 0 {
		return fmt.Sprintf("migration %03d (%s): %s: %v", e.Version, e.FilePath, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration (%s): %s: %v", e.FilePath, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *MigrationError) Unwrap() error {
	return e.Err
}

func newMigrationError(version int, filePath, operation string, err error) *MigrationError {
	return &MigrationError{Version: version, FilePath: filePath, Operation: operation, Err: err}
}

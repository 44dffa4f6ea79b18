package persistence

import "errors"

// Sentinel errors shared by every Store implementation. Drivers wrap them, so
// callers compare with errors.Is.
var (
	ErrNotFound            = errors.New("persistence: record not found")
	ErrDuplicate           = errors.New("persistence: unique key already taken")
	ErrConstraintViolation = errors.New("persistence: check or not null constraint failed")
	ErrForeignKeyViolation = errors.New("persistence: referenced record missing")
)

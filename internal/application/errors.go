package application

import (
	"errors"

	"github.com/example/room-booking/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrUnauthenticated is returned when no valid session accompanies a request.
	ErrUnauthenticated = errors.New("application: unauthenticated")
	// ErrSessionExpired is returned when the presented session token has expired.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrInvalidCredentials is returned when email and password do not match an account.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique resource is created twice.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrDomainNotAllowed is returned when an email falls outside the registration allow-list.
	ErrDomainNotAllowed = errors.New("application: email domain not allowed")
	// ErrMailUnavailable is returned when outgoing mail is not configured.
	ErrMailUnavailable = errors.New("application: mail unavailable")
)

// ValidationError captures input problems that callers can surface to users.
// Message is the user facing summary; FieldErrors optionally details each field.
type ValidationError struct {
	Message     string
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if v.Message != "" {
		return v.Message
	}
	return "validation failed"
}

// HasErrors reports whether any issue was recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && (v.Message != "" || len(v.FieldErrors) > 0)
}

// add records a field level validation error. The first message also becomes
// the summary.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; !exists {
		v.FieldErrors[field] = message
	}
	if v.Message == "" {
		v.Message = message
	}
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil {
		return
	}
	if v.Message == "" {
		v.Message = other.Message
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

func invalid(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// MailDeliveryError reports that a verification mail could not be sent.
// Message is safe to show to the caller.
type MailDeliveryError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *MailDeliveryError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap returns the transport error.
func (e *MailDeliveryError) Unwrap() error {
	return e.Err
}

// NotFoundError names the missing resource. It matches ErrNotFound.
type NotFoundError struct {
	Resource string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(resource string, err error) error {
	if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return mapRepoError(err)
}

package application

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// messageCatalog resolves a user facing message for a failed rule. Keys are
// "Field.tag" or just "Field".
type messageCatalog map[string]string

func (c messageCatalog) lookup(field, tag string) (string, bool) {
	if msg, ok := c[field+"."+tag]; ok {
		return msg, true
	}
	msg, ok := c[field]
	return msg, ok
}

var registrationMessages = messageCatalog{
	"Email":            "Invalid email",
	"Password":         "Password must be at least 6 characters",
	"Name.required":    "Name is required",
	"Name.max":         "Name up to 50 characters",
	"Surname.required": "Surname is required",
	"Surname.max":      "Surname up to 50 characters",
}

var roomMessages = messageCatalog{
	"Name.required": "Room name is required",
	"Name.min":      "Room name is required",
	"Name.max":      "Room name up to 30 characters",
	"Description":   "Description up to 100 characters",
}

// validateInput runs the struct tags of input. Field errors are keyed by the
// lower-camel field name; the first failure becomes the summary message.
// Rules without a catalog entry fall back to fallback.
func validateInput(input any, catalog messageCatalog, fallback string) *ValidationError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	vErr := &ValidationError{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.Message = fallback
		return vErr
	}

	for _, fe := range fieldErrs {
		msg, ok := catalog.lookup(fe.StructField(), fe.Tag())
		if !ok {
			msg = fallback
		}
		vErr.add(lowerFirst(fe.StructField()), msg)
	}
	return vErr
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package quotes

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a lookup that failed upstream: transport error, non-200 response,
// or a missing or unusable price field. Callers substitute zero instead of aborting.
var ErrUnavailable = errors.New("quote unavailable")

// ErrUnsupportedSymbol is returned for crypto symbols outside the allow-list
var ErrUnsupportedSymbol = errors.New("unsupported symbol")

// ValidationError reports malformed input. It is raised before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a local input error rather than an upstream one
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v) || errors.Is(err, ErrUnsupportedSymbol)
}

func unavailable(source, subject string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, source, subject, err)
}

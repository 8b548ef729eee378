package remote

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is returned when the service rejects malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// TransientError covers every other rejection (network, simulated failure, storage).
type TransientError struct {
	Op  string
	Err error
}

func (e TransientError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e TransientError) Unwrap() error { return e.Err }

func NotFound(kind, id string) error {
	return NotFoundError{Kind: kind, ID: id}
}

func Invalid(field, msg string) error {
	return ValidationError{Field: field, Message: msg}
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Message returns the human-readable reason carried by err, or fallback when err has none.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var ve ValidationError
	if errors.As(err, &ve) && strings.TrimSpace(ve.Message) != "" {
		return ve.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

// Kind names the error class for logs and HTTP responses.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation"
	case IsNotFound(err):
		return "not_found"
	default:
		return "transient"
	}
}

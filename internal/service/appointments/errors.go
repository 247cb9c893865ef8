package appointments

import (
	"errors"
	"strings"
)

var (
	ErrInvalidService      = errors.New("invalid service")
	ErrMissingSchedule     = errors.New("missing schedule")
	ErrInvalidSchedule     = errors.New("invalid schedule")
	ErrScheduleConflict    = errors.New("schedule conflict")
	ErrInvalidStaff        = errors.New("invalid staff")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("appointment not found")
	ErrForbidden           = errors.New("forbidden")
	ErrConcurrencyConflict = errors.New("appointment was modified concurrently")
)

// Violation is one broken rule, addressed to an input field.
type Violation struct {
	Field   string
	Rule    string
	Message string
}

// ValidationError carries every violation found for a request. errors.Is matches Kind.
type ValidationError struct {
	Kind       error
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return e.Kind.Error()
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return e.Kind.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func validationError(kind error, field, rule, msg string) error {
	return &ValidationError{Kind: kind, Violations: []Violation{{Field: field, Rule: rule, Message: msg}}}
}

func invalidInput(field, rule, msg string) error {
	return validationError(ErrInvalidInput, field, rule, msg)
}

func scheduleConflict() error {
	return validationError(ErrScheduleConflict, "start_time", "conflict", "the selected time overlaps another appointment of this hairdresser")
}

func unknownClient() error {
	return invalidInput("client_id", "exists", "the client does not exist")
}

package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for session and commit operations. All failures are local
// to the attempted operation and leave no partial state.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionTerminal = errors.New("session is completed or abandoned")
	ErrNotHolder       = errors.New("caller does not hold this session")
	ErrNothingToSubmit = errors.New("no drafts or summary to submit")
	ErrGoalNotFound    = errors.New("goal not found")
	ErrGoalArchived    = errors.New("goal is archived")
)

// ConflictError is returned when an acquire attempt collides with existing
// leases. It lists every requested employee that is currently held so the
// caller can retry with an adjusted set or wait. No lease is granted for any
// employee in the failed request.
type ConflictError struct {
	Held []HeldLease
}

// Error formats the conflict as a comma-separated list of held employees.
func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Held))
	for i, h := range e.Held {
		parts[i] = fmt.Sprintf("%s (held by %s, session %s)", h.EmployeeID, h.HolderID, h.SessionID)
	}
	return "employees already leased: " + strings.Join(parts, ", ")
}

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

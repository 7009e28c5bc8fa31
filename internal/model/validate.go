package model

import (
	"fmt"
	"strings"
	"time"
)

// ValidateAcquire checks the inputs to a session acquisition.
// It returns a *ValidationError if any rules fail, or nil if the input is valid.
func ValidateAcquire(employeeIDs []string, holderID string, ttl time.Duration) error {
	var ve ValidationError

	if len(employeeIDs) == 0 {
		ve.Errors = append(ve.Errors, FieldError{Field: "employee_ids", Message: "at least one employee is required"})
	}
	seen := make(map[string]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		if strings.TrimSpace(id) == "" {
			ve.Errors = append(ve.Errors, FieldError{Field: "employee_ids", Message: "employee id must not be empty"})
			break
		}
		if _, dup := seen[id]; dup {
			ve.Errors = append(ve.Errors, FieldError{Field: "employee_ids", Message: "duplicate employee id " + id})
			break
		}
		seen[id] = struct{}{}
	}

	if strings.TrimSpace(holderID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "holder_id", Message: "is required"})
	}

	if ttl < 0 {
		ve.Errors = append(ve.Errors, FieldError{Field: "ttl", Message: "must not be negative"})
	} else if ttl > MaxLeaseTTL {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "ttl",
			Message: fmt.Sprintf("must not exceed %v, got %v", MaxLeaseTTL, ttl),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateDraft checks a DraftRecord for constraint violations at save time.
// Note requirements for prompted outcomes are deliberately NOT checked here;
// they are enforced at submit so partial drafts can be saved mid-shift.
func ValidateDraft(d *DraftRecord) error {
	var ve ValidationError

	if strings.TrimSpace(d.DocumenterID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "documenter_id", Message: "is required"})
	}
	if strings.TrimSpace(d.EmployeeID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "employee_id", Message: "is required"})
	}
	if strings.TrimSpace(d.GoalStepID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "goal_step_id", Message: "is required"})
	}

	if _, err := time.Parse(DateLayout, d.RecordDate); err != nil {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "record_date",
			Message: fmt.Sprintf("must be in %s format, got %q", DateLayout, d.RecordDate),
		})
	}

	if !d.Outcome.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "outcome",
			Message: fmt.Sprintf("invalid value %q", d.Outcome),
		})
	}

	if d.TimerSeconds != nil && *d.TimerSeconds < 0 {
		ve.Errors = append(ve.Errors, FieldError{Field: "timer_seconds", Message: "must not be negative"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateSubmitRecord checks the submit-time rules for a single draft.
// An outcome that requires notes must carry a non-empty note.
func ValidateSubmitRecord(d *DraftRecord) error {
	if d.Outcome.RequiresNotes() && strings.TrimSpace(d.Notes) == "" {
		return &ValidationError{Errors: []FieldError{{
			Field:   "notes",
			Message: fmt.Sprintf("required for outcome %q on step %s", d.Outcome, d.GoalStepID),
		}}}
	}
	return nil
}

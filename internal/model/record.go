package model

import "time"

// Outcome is the result recorded for a single goal step on a given date.
type Outcome string

const (
	OutcomeCorrect       Outcome = "correct"
	OutcomeVerbalPrompt  Outcome = "verbal_prompt"
	OutcomeIncorrect     Outcome = "incorrect"
	OutcomeNotApplicable Outcome = "not_applicable"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// IsValid checks whether the outcome is a known value.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeCorrect, OutcomeVerbalPrompt, OutcomeIncorrect, OutcomeNotApplicable:
		return true
	}
	return false
}

// RequiresNotes reports whether the outcome must carry a non-empty note.
// Enforced at submit time, not at draft time, so documenters can save
// incomplete drafts mid-shift.
func (o Outcome) RequiresNotes() bool {
	return o == OutcomeVerbalPrompt
}

// DraftRecord is a documenter-private, unsubmitted observation. Drafts are
// keyed by (documenter, employee, goal step, date) and are invisible to other
// documenters until submitted.
type DraftRecord struct {
	DocumenterID string    `json:"documenter_id"`
	EmployeeID   string    `json:"employee_id"`
	GoalStepID   string    `json:"goal_step_id"`
	RecordDate   string    `json:"record_date"` // YYYY-MM-DD
	Outcome      Outcome   `json:"outcome"`
	Notes        string    `json:"notes,omitempty"`
	TimerSeconds *int      `json:"timer_seconds,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProgressRecord is the authoritative, committed observation for an employee,
// goal step, and date. The last submit for a key wins.
type ProgressRecord struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	GoalStepID   string    `json:"goal_step_id"`
	RecordDate   string    `json:"record_date"` // YYYY-MM-DD
	Outcome      Outcome   `json:"outcome"`
	Notes        string    `json:"notes,omitempty"`
	TimerSeconds *int      `json:"timer_seconds,omitempty"`
	SessionID    string    `json:"session_id"`
	DocumenterID string    `json:"documenter_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// SessionNote is a free-text assessment summary keyed by (employee, session).
// Upserted idempotently; not part of mastery computation.
type SessionNote struct {
	EmployeeID string    `json:"employee_id"`
	SessionID  string    `json:"session_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DateLayout is the canonical date key format for draft and progress records.
const DateLayout = "2006-01-02"

// Today returns the current UTC date in the canonical record-date format.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

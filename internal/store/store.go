package store

import (
	"context"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
)

// Store defines the persistence interface for tally.
//
// Lease state is derived: an employee is held by exactly one in_progress
// session whose lease_expires_at is in the future. The check-then-acquire
// sequence (LockEmployees, HeldLeases, StaleSessionIDs, CreateSession /
// SetSessionEmployees) is only safe inside RunInTransaction.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context, filter model.SessionFilter) ([]*model.Session, error)
	SetSessionEmployees(ctx context.Context, sessionID string, employeeIDs []string) error
	SetSessionExpiry(ctx context.Context, sessionID string, expiresAt time.Time) error
	SetSessionStatus(ctx context.Context, sessionID string, status model.SessionStatus, completedAt *time.Time) error

	// Leases (derived from session state)
	//
	// LockEmployees takes per-employee transaction-scoped advisory locks so
	// that two concurrent acquires for an overlapping employee set serialize
	// even when neither holds a lease yet. HeldLeases returns the active
	// leases among employeeIDs at the given instant; StaleSessionIDs returns
	// in_progress sessions among employeeIDs whose lease has lapsed.
	LockEmployees(ctx context.Context, employeeIDs []string) error
	HeldLeases(ctx context.Context, employeeIDs []string, now time.Time) ([]model.HeldLease, error)
	StaleSessionIDs(ctx context.Context, employeeIDs []string, now time.Time) ([]string, error)

	// Drafts
	SaveDraft(ctx context.Context, draft *model.DraftRecord) error
	GetDrafts(ctx context.Context, documenterID string) ([]*model.DraftRecord, error)
	GetDraftsForDay(ctx context.Context, documenterID, employeeID, date string) ([]*model.DraftRecord, error)
	DeleteDraft(ctx context.Context, documenterID, employeeID, goalStepID, date string) error
	DeleteDraftsForDay(ctx context.Context, documenterID, employeeID, date string) error

	// Progress records
	UpsertProgressRecord(ctx context.Context, record *model.ProgressRecord) error
	GetProgressRecords(ctx context.Context, employeeID, date string) ([]*model.ProgressRecord, error)
	ListProgressRecords(ctx context.Context, employeeID string) ([]*model.ProgressRecord, error)

	// Goals
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, id string) (*model.Goal, error)
	GetGoalForUpdate(ctx context.Context, id string) (*model.Goal, error)
	ListGoals(ctx context.Context, employeeID string) ([]*model.Goal, error)
	GoalIDsForSteps(ctx context.Context, stepIDs []string) ([]string, error)
	ApplyGoalEvaluation(ctx context.Context, goal *model.Goal) error
	ArchiveGoal(ctx context.Context, id string) (*model.Goal, error)

	// Session notes
	UpsertSessionNote(ctx context.Context, note *model.SessionNote) error
	GetSessionNotes(ctx context.Context, sessionID string) ([]*model.SessionNote, error)

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error
	GetEvents(ctx context.Context, refID string) ([]*model.Event, error)

	// Export (full-table reads used by the archive exporter)
	AllGoals(ctx context.Context) ([]*model.Goal, error)
	AllProgressRecords(ctx context.Context) ([]*model.ProgressRecord, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}

// Package client provides a transport-agnostic interface for the tally service
// and an HTTP/JSON implementation that talks to the tally REST API.
package client

import (
	"context"

	"github.com/alfredjeanlab/tally/internal/model"
)

// TallyClient is the interface that all tally CLI commands use to communicate
// with the tally server. It is implemented by HTTPClient (default) and can be
// backed by any transport.
type TallyClient interface {
	// Sessions
	AcquireSession(ctx context.Context, req *AcquireSessionRequest) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context, req *ListSessionsRequest) ([]*model.Session, error)
	ModifySubjects(ctx context.Context, sessionID string, req *ModifySubjectsRequest) (*model.Session, error)
	RenewSession(ctx context.Context, sessionID, actor, ttl string) (*model.Session, error)
	CompleteSession(ctx context.Context, sessionID, actor string) (*model.Session, error)
	GetSessionNotes(ctx context.Context, sessionID string) ([]*model.SessionNote, error)
	GetSessionEvents(ctx context.Context, sessionID string) ([]*model.Event, error)

	// Locks
	CheckLocks(ctx context.Context, employeeIDs []string) (*model.LockStatus, error)

	// Drafts
	SaveDraft(ctx context.Context, draft *model.DraftRecord) (*model.DraftRecord, error)
	ListDrafts(ctx context.Context, documenterID string) ([]*model.DraftRecord, error)
	DiscardDraft(ctx context.Context, req *DiscardDraftRequest) error

	// Submit
	Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error)

	// Goals
	CreateGoal(ctx context.Context, req *CreateGoalRequest) (*model.Goal, error)
	GetGoal(ctx context.Context, id string) (*model.Goal, error)
	ListGoals(ctx context.Context, employeeID string) ([]*model.Goal, error)
	ArchiveGoal(ctx context.Context, id, actor string) (*model.Goal, error)

	// Records
	ListEmployeeRecords(ctx context.Context, employeeID string) ([]*model.ProgressRecord, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Close releases client resources.
	Close() error
}

// AcquireSessionRequest starts a session holding leases on every employee.
// TTL is a Go duration string ("2h"); empty uses the server default.
type AcquireSessionRequest struct {
	HolderID    string   `json:"holder_id"`
	EmployeeIDs []string `json:"employee_ids"`
	Location    string   `json:"location,omitempty"`
	TTL         string   `json:"ttl,omitempty"`
}

// ListSessionsRequest narrows the session listing.
type ListSessionsRequest struct {
	HolderID   string
	EmployeeID string
	Status     []string
	Limit      int
	Offset     int
}

// ModifySubjectsRequest applies a delta to a session's employee set.
type ModifySubjectsRequest struct {
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`
	Actor  string   `json:"actor,omitempty"`
}

// DiscardDraftRequest names a draft by its full key.
type DiscardDraftRequest struct {
	DocumenterID string `json:"documenter_id"`
	EmployeeID   string `json:"employee_id"`
	GoalStepID   string `json:"goal_step_id"`
	RecordDate   string `json:"record_date,omitempty"`
}

// SubmitRequest commits a documenter's drafts for one employee and date.
type SubmitRequest struct {
	SessionID    string `json:"session_id"`
	EmployeeID   string `json:"employee_id"`
	DocumenterID string `json:"documenter_id"`
	RecordDate   string `json:"record_date,omitempty"`
	Summary      string `json:"summary,omitempty"`
}

// SubmitResponse reports what a submit committed.
type SubmitResponse struct {
	Records       []*model.ProgressRecord `json:"records"`
	MasteredGoals []*model.Goal           `json:"mastered_goals,omitempty"`
}

// CreateGoalRequest creates a goal with its task-analysis steps.
type CreateGoalRequest struct {
	EmployeeID string                  `json:"employee_id"`
	Title      string                  `json:"title"`
	Steps      []CreateGoalStepRequest `json:"steps,omitempty"`
	Actor      string                  `json:"actor,omitempty"`
}

// CreateGoalStepRequest is a single step in a CreateGoalRequest.
type CreateGoalStepRequest struct {
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"is_required"`
}

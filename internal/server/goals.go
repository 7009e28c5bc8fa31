package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/tally/internal/events"
	"github.com/alfredjeanlab/tally/internal/idgen"
	"github.com/alfredjeanlab/tally/internal/model"
	"github.com/alfredjeanlab/tally/internal/store"
)

// createGoalInput holds transport-agnostic parameters for creating a goal
// with its task-analysis steps.
type createGoalInput struct {
	EmployeeID string                `json:"employee_id"`
	Title      string                `json:"title"`
	Steps      []createGoalStepInput `json:"steps"`
	Actor      string                `json:"actor"`
}

type createGoalStepInput struct {
	Description string `json:"description"`
	IsRequired  bool   `json:"is_required"`
}

// createGoal creates an active goal and its steps. A goal may be created with
// zero required steps; it simply can never accumulate a streak until required
// steps exist.
func (s *TallyServer) createGoal(ctx context.Context, in createGoalInput) (*model.Goal, error) {
	var ve model.ValidationError
	if strings.TrimSpace(in.EmployeeID) == "" {
		ve.Errors = append(ve.Errors, model.FieldError{Field: "employee_id", Message: "is required"})
	}
	if strings.TrimSpace(in.Title) == "" {
		ve.Errors = append(ve.Errors, model.FieldError{Field: "title", Message: "is required"})
	}
	if ve.HasErrors() {
		return nil, &ve
	}

	id, err := idgen.NewGoalID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	now := time.Now().UTC()
	goal := &model.Goal{
		ID:         id,
		EmployeeID: in.EmployeeID,
		Title:      in.Title,
		Status:     model.GoalActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i, step := range in.Steps {
		stepID, err := idgen.NewStepID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate ID: %w", err)
		}
		goal.Steps = append(goal.Steps, &model.GoalStep{
			ID:          stepID,
			GoalID:      id,
			Position:    i + 1,
			Description: step.Description,
			IsRequired:  step.IsRequired,
		})
	}

	if err := s.store.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicGoalCreated, goal.ID, in.Actor, events.GoalCreated{Goal: goal})

	return goal, nil
}

// getGoal loads a goal with its steps.
func (s *TallyServer) getGoal(ctx context.Context, id string) (*model.Goal, error) {
	goal, err := s.store.GetGoal(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return goal, nil
}

// listGoals returns all goals for an employee.
func (s *TallyServer) listGoals(ctx context.Context, employeeID string) ([]*model.Goal, error) {
	if employeeID == "" {
		return nil, inputError("employee_id is required")
	}
	goals, err := s.store.ListGoals(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// archiveGoal retires a goal. Archiving is terminal: the goal is excluded
// from all future mastery evaluation and cannot be reactivated. The status
// check and the archive run in one transaction under a row lock, so two
// racing archive calls cannot both succeed. Archiving an already-archived
// goal returns ErrGoalArchived.
func (s *TallyServer) archiveGoal(ctx context.Context, id, actor string) (*model.Goal, error) {
	var goal *model.Goal
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		existing, err := tx.GetGoalForUpdate(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrGoalNotFound
		}
		if err != nil {
			return fmt.Errorf("get goal: %w", err)
		}
		if existing.Status == model.GoalArchived {
			return model.ErrGoalArchived
		}

		goal, err = tx.ArchiveGoal(ctx, id)
		if err != nil {
			return fmt.Errorf("archive goal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicGoalArchived, goal.ID, actor, events.GoalArchived{GoalID: goal.ID})

	return goal, nil
}

// getSession loads a single session.
func (s *TallyServer) getSession(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// listSessions returns sessions matching the filter.
func (s *TallyServer) listSessions(ctx context.Context, filter model.SessionFilter) ([]*model.Session, error) {
	sessions, err := s.store.ListSessions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// listEmployeeRecords returns the full authoritative record history for an
// employee.
func (s *TallyServer) listEmployeeRecords(ctx context.Context, employeeID string) ([]*model.ProgressRecord, error) {
	if employeeID == "" {
		return nil, inputError("employee_id is required")
	}
	records, err := s.store.ListProgressRecords(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list progress records: %w", err)
	}
	return records, nil
}

package server

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alfredjeanlab/tally/internal/events"
	"github.com/alfredjeanlab/tally/internal/idgen"
	"github.com/alfredjeanlab/tally/internal/mastery"
	"github.com/alfredjeanlab/tally/internal/model"
	"github.com/alfredjeanlab/tally/internal/store"
)

// saveDraft validates and upserts a draft record. Drafts are private to the
// documenter and carry no authority until submitted, so no session or lease
// check happens here.
func (s *TallyServer) saveDraft(ctx context.Context, draft *model.DraftRecord) (*model.DraftRecord, error) {
	if draft.RecordDate == "" {
		draft.RecordDate = model.Today()
	}
	if err := model.ValidateDraft(draft); err != nil {
		return nil, err
	}
	draft.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil
}

// listDrafts returns all unsubmitted drafts belonging to a documenter.
func (s *TallyServer) listDrafts(ctx context.Context, documenterID string) ([]*model.DraftRecord, error) {
	if documenterID == "" {
		return nil, inputError("documenter_id is required")
	}
	drafts, err := s.store.GetDrafts(ctx, documenterID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

// discardDraft deletes a single draft. Discarding is permanent; the draft key
// is (documenter, employee, goal step, date).
func (s *TallyServer) discardDraft(ctx context.Context, documenterID, employeeID, goalStepID, date string) error {
	if documenterID == "" || employeeID == "" || goalStepID == "" {
		return inputError("documenter_id, employee_id, and goal_step_id are required")
	}
	if date == "" {
		date = model.Today()
	}
	return s.store.DeleteDraft(ctx, documenterID, employeeID, goalStepID, date)
}

// submitInput holds transport-agnostic parameters for committing a day's
// drafts for one employee.
type submitInput struct {
	SessionID    string `json:"session_id"`
	EmployeeID   string `json:"employee_id"`
	DocumenterID string `json:"documenter_id"`
	RecordDate   string `json:"record_date"`
	Summary      string `json:"summary"`
}

// submitResult reports what a submit committed.
type submitResult struct {
	Records       []*model.ProgressRecord `json:"records"`
	MasteredGoals []*model.Goal           `json:"mastered_goals,omitempty"`
}

// submit commits every draft the documenter holds for (employee, date) into
// authoritative progress records, writes the optional session summary note,
// and re-evaluates mastery for every goal touched by the committed steps. The
// whole operation runs in one transaction: either all records land and all
// goal evaluations apply, or nothing changes.
func (s *TallyServer) submit(ctx context.Context, in submitInput) (*submitResult, error) {
	if in.SessionID == "" || in.EmployeeID == "" || in.DocumenterID == "" {
		return nil, inputError("session_id, employee_id, and documenter_id are required")
	}
	if in.RecordDate == "" {
		in.RecordDate = model.Today()
	}
	if _, err := time.Parse(model.DateLayout, in.RecordDate); err != nil {
		return nil, inputError("record_date must be formatted YYYY-MM-DD")
	}

	now := time.Now().UTC()

	result := &submitResult{}
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		session, err := s.liveSession(ctx, tx, in.SessionID, in.DocumenterID, now)
		if err != nil {
			return err
		}
		if !session.HoldsEmployee(in.EmployeeID) {
			return inputError("employee " + in.EmployeeID + " is not part of the session")
		}

		drafts, err := tx.GetDraftsForDay(ctx, in.DocumenterID, in.EmployeeID, in.RecordDate)
		if err != nil {
			return fmt.Errorf("load drafts: %w", err)
		}
		if len(drafts) == 0 && strings.TrimSpace(in.Summary) == "" {
			return model.ErrNothingToSubmit
		}

		var verr model.ValidationError
		for _, d := range drafts {
			if err := model.ValidateSubmitRecord(d); err != nil {
				if fieldErrs, ok := err.(*model.ValidationError); ok {
					verr.Errors = append(verr.Errors, fieldErrs.Errors...)
					continue
				}
				return err
			}
		}
		if verr.HasErrors() {
			return &verr
		}

		stepIDs := make([]string, 0, len(drafts))
		for _, d := range drafts {
			id, err := idgen.NewRecordID()
			if err != nil {
				return fmt.Errorf("failed to generate ID: %w", err)
			}
			rec := &model.ProgressRecord{
				ID:           id,
				EmployeeID:   d.EmployeeID,
				GoalStepID:   d.GoalStepID,
				RecordDate:   d.RecordDate,
				Outcome:      d.Outcome,
				Notes:        d.Notes,
				TimerSeconds: d.TimerSeconds,
				SessionID:    in.SessionID,
				DocumenterID: in.DocumenterID,
				SubmittedAt:  now,
			}
			// Last submit wins: an existing record for the same
			// (employee, step, date) key is overwritten in place.
			if err := tx.UpsertProgressRecord(ctx, rec); err != nil {
				return fmt.Errorf("upsert progress record: %w", err)
			}
			result.Records = append(result.Records, rec)
			stepIDs = append(stepIDs, d.GoalStepID)
		}

		if len(drafts) > 0 {
			if err := tx.DeleteDraftsForDay(ctx, in.DocumenterID, in.EmployeeID, in.RecordDate); err != nil {
				return fmt.Errorf("delete drafts: %w", err)
			}
		}

		if strings.TrimSpace(in.Summary) != "" {
			note := &model.SessionNote{
				EmployeeID: in.EmployeeID,
				SessionID:  in.SessionID,
				Body:       in.Summary,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.UpsertSessionNote(ctx, note); err != nil {
				return fmt.Errorf("upsert session note: %w", err)
			}
		}

		mastered, err := s.evaluateGoals(ctx, tx, in.EmployeeID, in.RecordDate, stepIDs, now)
		if err != nil {
			return err
		}
		result.MasteredGoals = mastered
		return nil
	})
	if err != nil {
		return nil, s.finishLeaseLapse(ctx, err, in.SessionID, in.DocumenterID)
	}

	s.recordAndPublish(ctx, events.TopicProgressSubmitted, in.SessionID, in.DocumenterID, events.ProgressSubmitted{
		SessionID:  in.SessionID,
		EmployeeID: in.EmployeeID,
		RecordDate: in.RecordDate,
		Records:    result.Records,
	})
	for _, g := range result.MasteredGoals {
		s.recordAndPublish(ctx, events.TopicGoalMastered, g.ID, in.DocumenterID, events.GoalMastered{
			Goal:        g,
			MasteryDate: g.MasteryDate,
		})
	}

	return result, nil
}

// evaluateGoals recomputes streak and mastery state for every goal owning one
// of the committed steps. Evaluation reads the authoritative record set for
// the date, so resubmissions recompute the day instead of double-counting it.
// Returns the goals that crossed the mastery threshold in this evaluation.
func (s *TallyServer) evaluateGoals(ctx context.Context, tx store.Store, employeeID, date string, stepIDs []string, now time.Time) ([]*model.Goal, error) {
	if len(stepIDs) == 0 {
		return nil, nil
	}

	goalIDs, err := tx.GoalIDsForSteps(ctx, stepIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve goals for steps: %w", err)
	}
	// Deterministic lock order across concurrent submits.
	sort.Strings(goalIDs)

	records, err := tx.GetProgressRecords(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("load progress records: %w", err)
	}
	outcomes := make(map[string]model.Outcome, len(records))
	for _, r := range records {
		outcomes[r.GoalStepID] = r.Outcome
	}

	var mastered []*model.Goal
	for _, goalID := range goalIDs {
		goal, err := tx.GetGoalForUpdate(ctx, goalID)
		if err != nil {
			return nil, fmt.Errorf("load goal %s: %w", goalID, err)
		}
		if goal.Status == model.GoalArchived {
			continue
		}

		res := mastery.Evaluate(goal, date, outcomes)
		goal.ConsecutiveAllCorrect = res.ConsecutiveAllCorrect
		goal.PriorStreak = res.PriorStreak
		goal.LastEvaluatedDate = res.LastEvaluatedDate
		goal.MasteryAchieved = res.MasteryAchieved
		goal.MasteryDate = res.MasteryDate
		goal.Status = res.Status
		goal.UpdatedAt = now

		if err := tx.ApplyGoalEvaluation(ctx, goal); err != nil {
			return nil, fmt.Errorf("apply goal evaluation: %w", err)
		}
		if res.NewlyMastered {
			mastered = append(mastered, goal)
		}
	}
	return mastered, nil
}

package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanSession scans a single row into a model.Session.
// The row must contain columns in the order defined by sessionColumns.
func scanSession(row scannable) (*model.Session, error) {
	var s model.Session
	var (
		location    sql.NullString
		completedAt sql.NullTime
	)

	err := row.Scan(
		&s.ID,
		&s.HolderID,
		&location,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.LeaseExpiresAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Location = location.String
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}

	return &s, nil
}

// scanDraft scans a single row into a model.DraftRecord.
func scanDraft(row scannable) (*model.DraftRecord, error) {
	var d model.DraftRecord
	var (
		recordDate time.Time
		notes      sql.NullString
		timer      sql.NullInt64
	)

	err := row.Scan(
		&d.DocumenterID,
		&d.EmployeeID,
		&d.GoalStepID,
		&recordDate,
		&d.Outcome,
		&notes,
		&timer,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.RecordDate = recordDate.Format(model.DateLayout)
	d.Notes = notes.String
	if timer.Valid {
		v := int(timer.Int64)
		d.TimerSeconds = &v
	}

	return &d, nil
}

// scanDrafts scans multiple rows into a slice of model.DraftRecord pointers.
func scanDrafts(rows *sql.Rows) ([]*model.DraftRecord, error) {
	var drafts []*model.DraftRecord
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return drafts, nil
}

// scanProgressRecord scans a single row into a model.ProgressRecord.
func scanProgressRecord(row scannable) (*model.ProgressRecord, error) {
	var r model.ProgressRecord
	var (
		recordDate time.Time
		notes      sql.NullString
		timer      sql.NullInt64
	)

	err := row.Scan(
		&r.ID,
		&r.EmployeeID,
		&r.GoalStepID,
		&recordDate,
		&r.Outcome,
		&notes,
		&timer,
		&r.SessionID,
		&r.DocumenterID,
		&r.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}

	r.RecordDate = recordDate.Format(model.DateLayout)
	r.Notes = notes.String
	if timer.Valid {
		v := int(timer.Int64)
		r.TimerSeconds = &v
	}

	return &r, nil
}

// scanProgressRecords scans multiple rows into a slice of model.ProgressRecord pointers.
func scanProgressRecords(rows *sql.Rows) ([]*model.ProgressRecord, error) {
	var records []*model.ProgressRecord
	for rows.Next() {
		r, err := scanProgressRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// scanGoal scans a single row into a model.Goal.
// The row must contain columns in the order defined by goalColumns.
func scanGoal(row scannable) (*model.Goal, error) {
	var g model.Goal
	var (
		masteryDate   sql.NullTime
		lastEvaluated sql.NullTime
	)

	err := row.Scan(
		&g.ID,
		&g.EmployeeID,
		&g.Title,
		&g.Status,
		&g.ConsecutiveAllCorrect,
		&g.MasteryAchieved,
		&masteryDate,
		&lastEvaluated,
		&g.PriorStreak,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if masteryDate.Valid {
		g.MasteryDate = masteryDate.Time.Format(model.DateLayout)
	}
	if lastEvaluated.Valid {
		g.LastEvaluatedDate = lastEvaluated.Time.Format(model.DateLayout)
	}

	return &g, nil
}

// scanGoalSteps scans multiple rows into a slice of model.GoalStep pointers.
func scanGoalSteps(rows *sql.Rows) ([]*model.GoalStep, error) {
	var steps []*model.GoalStep
	for rows.Next() {
		var step model.GoalStep
		var description sql.NullString
		if err := rows.Scan(&step.ID, &step.GoalID, &step.Position, &description, &step.IsRequired); err != nil {
			return nil, err
		}
		step.Description = description.String
		steps = append(steps, &step)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// scanSessionNotes scans multiple rows into a slice of model.SessionNote pointers.
func scanSessionNotes(rows *sql.Rows) ([]*model.SessionNote, error) {
	var notes []*model.SessionNote
	for rows.Next() {
		var n model.SessionNote
		if err := rows.Scan(&n.EmployeeID, &n.SessionID, &n.Body, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

// scanEvent scans a single row into a model.Event.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.RefID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

// scanEvents scans multiple rows into a slice of model.Event pointers.
func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// nullTimePtr converts a *time.Time to a sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullIntPtr converts an *int to a sql.NullInt64.
func nullIntPtr(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}

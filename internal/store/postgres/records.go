package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alfredjeanlab/tally/internal/model"
)

// draftColumns is the column list used for SELECT statements on the drafts table.
const draftColumns = `documenter_id, employee_id, goal_step_id, record_date,
	outcome, notes, timer_seconds, updated_at`

// progressColumns is the column list used for SELECT statements on the
// progress_records table.
const progressColumns = `id, employee_id, goal_step_id, record_date, outcome,
	notes, timer_seconds, session_id, documenter_id, submitted_at`

func querySaveDraft(ctx context.Context, db executor, d *model.DraftRecord) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO drafts (
			documenter_id, employee_id, goal_step_id, record_date,
			outcome, notes, timer_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (documenter_id, employee_id, goal_step_id, record_date)
		DO UPDATE SET outcome = $5, notes = $6, timer_seconds = $7, updated_at = NOW()
		RETURNING updated_at`,
		d.DocumenterID,
		d.EmployeeID,
		d.GoalStepID,
		d.RecordDate,
		string(d.Outcome),
		nullString(d.Notes),
		nullIntPtr(d.TimerSeconds),
	).Scan(&d.UpdatedAt)
}

func queryGetDrafts(ctx context.Context, db executor, documenterID string) ([]*model.DraftRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+draftColumns+`
		FROM drafts
		WHERE documenter_id = $1
		ORDER BY record_date, employee_id, goal_step_id`,
		documenterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDrafts(rows)
}

func queryGetDraftsForDay(ctx context.Context, db executor, documenterID, employeeID, date string) ([]*model.DraftRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+draftColumns+`
		FROM drafts
		WHERE documenter_id = $1 AND employee_id = $2 AND record_date = $3
		ORDER BY goal_step_id`,
		documenterID, employeeID, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDrafts(rows)
}

func queryDeleteDraft(ctx context.Context, db executor, documenterID, employeeID, goalStepID, date string) error {
	res, err := db.ExecContext(ctx, `
		DELETE FROM drafts
		WHERE documenter_id = $1 AND employee_id = $2 AND goal_step_id = $3 AND record_date = $4`,
		documenterID, employeeID, goalStepID, date,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryDeleteDraftsForDay(ctx context.Context, db executor, documenterID, employeeID, date string) error {
	_, err := db.ExecContext(ctx, `
		DELETE FROM drafts
		WHERE documenter_id = $1 AND employee_id = $2 AND record_date = $3`,
		documenterID, employeeID, date,
	)
	return err
}

func queryUpsertProgressRecord(ctx context.Context, db executor, r *model.ProgressRecord) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO progress_records (
			id, employee_id, goal_step_id, record_date, outcome,
			notes, timer_seconds, session_id, documenter_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (employee_id, goal_step_id, record_date)
		DO UPDATE SET outcome = $5, notes = $6, timer_seconds = $7,
			session_id = $8, documenter_id = $9, submitted_at = NOW()
		RETURNING id, submitted_at`,
		r.ID,
		r.EmployeeID,
		r.GoalStepID,
		r.RecordDate,
		string(r.Outcome),
		nullString(r.Notes),
		nullIntPtr(r.TimerSeconds),
		r.SessionID,
		r.DocumenterID,
	).Scan(&r.ID, &r.SubmittedAt)
}

func queryGetProgressRecords(ctx context.Context, db executor, employeeID, date string) ([]*model.ProgressRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+progressColumns+`
		FROM progress_records
		WHERE employee_id = $1 AND record_date = $2
		ORDER BY goal_step_id`,
		employeeID, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProgressRecords(rows)
}

func queryListProgressRecords(ctx context.Context, db executor, employeeID string) ([]*model.ProgressRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+progressColumns+`
		FROM progress_records
		WHERE employee_id = $1
		ORDER BY record_date, goal_step_id`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProgressRecords(rows)
}

func queryAllProgressRecords(ctx context.Context, db executor) ([]*model.ProgressRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+progressColumns+`
		FROM progress_records
		ORDER BY employee_id, record_date, goal_step_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProgressRecords(rows)
}

func queryUpsertSessionNote(ctx context.Context, db executor, n *model.SessionNote) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO session_notes (employee_id, session_id, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, session_id)
		DO UPDATE SET body = $3, updated_at = NOW()
		RETURNING created_at, updated_at`,
		n.EmployeeID, n.SessionID, n.Body,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
}

func queryGetSessionNotes(ctx context.Context, db executor, sessionID string) ([]*model.SessionNote, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT employee_id, session_id, body, created_at, updated_at
		FROM session_notes
		WHERE session_id = $1
		ORDER BY employee_id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessionNotes(rows)
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, ref_id, actor, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.Topic, e.RefID, nullString(e.Actor), jsonbBytes(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func queryGetEvents(ctx context.Context, db executor, refID string) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, ref_id, actor, payload, created_at
		FROM events
		WHERE ref_id = $1
		ORDER BY created_at ASC`,
		refID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

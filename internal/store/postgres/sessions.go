package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
)

// sessionColumns is the column list used for SELECT statements on the sessions table.
const sessionColumns = `id, holder_id, location, status, created_at, updated_at,
	lease_expires_at, completed_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateSession(ctx context.Context, db executor, s *model.Session) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, holder_id, location, status, created_at, updated_at,
			lease_expires_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID,
		s.HolderID,
		nullString(s.Location),
		string(s.Status),
		s.CreatedAt,
		s.UpdatedAt,
		s.LeaseExpiresAt,
		nullTimePtr(s.CompletedAt),
	)
	if err != nil {
		return err
	}

	if len(s.EmployeeIDs) > 0 {
		if err := insertSessionEmployees(ctx, db, s.ID, s.EmployeeIDs); err != nil {
			return err
		}
	}
	return nil
}

func insertSessionEmployees(ctx context.Context, db executor, sessionID string, employeeIDs []string) error {
	values := make([]string, len(employeeIDs))
	args := make([]any, 0, len(employeeIDs)+1)
	args = append(args, sessionID)
	for i, id := range employeeIDs {
		values[i] = fmt.Sprintf("($1, $%d)", i+2)
		args = append(args, id)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO session_employees (session_id, employee_id) VALUES `+strings.Join(values, ", "),
		args...,
	)
	return err
}

func queryGetSession(ctx context.Context, db executor, id string) (*model.Session, error) {
	row := db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		return nil, err
	}

	ids, err := querySessionEmployeeIDs(ctx, db, id)
	if err != nil {
		return nil, err
	}
	s.EmployeeIDs = ids

	return s, nil
}

func querySessionEmployeeIDs(ctx context.Context, db executor, sessionID string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT employee_id FROM session_employees
		WHERE session_id = $1
		ORDER BY employee_id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func queryListSessions(ctx context.Context, db executor, filter model.SessionFilter) ([]*model.Session, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.HolderID != "" {
		whereClauses = append(whereClauses, "holder_id = "+nextArg())
		args = append(args, filter.HolderID)
	}

	if filter.EmployeeID != "" {
		p := nextArg()
		whereClauses = append(whereClauses,
			fmt.Sprintf("EXISTS (SELECT 1 FROM session_employees se WHERE se.session_id = sessions.id AND se.employee_id = %s)", p))
		args = append(args, filter.EmployeeID)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, st := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(st))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions` + whereSQL + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sessions: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	for _, s := range sessions {
		ids, err := querySessionEmployeeIDs(ctx, db, s.ID)
		if err != nil {
			return nil, err
		}
		s.EmployeeIDs = ids
	}

	return sessions, nil
}

func querySetSessionEmployees(ctx context.Context, db executor, sessionID string, employeeIDs []string) error {
	if _, err := db.ExecContext(ctx,
		`DELETE FROM session_employees WHERE session_id = $1`, sessionID); err != nil {
		return err
	}
	if len(employeeIDs) == 0 {
		return nil
	}
	return insertSessionEmployees(ctx, db, sessionID, employeeIDs)
}

func querySetSessionExpiry(ctx context.Context, db executor, sessionID string, expiresAt time.Time) error {
	res, err := db.ExecContext(ctx, `
		UPDATE sessions
		SET lease_expires_at = $2, updated_at = NOW()
		WHERE id = $1`,
		sessionID, expiresAt,
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

func querySetSessionStatus(ctx context.Context, db executor, sessionID string, status model.SessionStatus, completedAt *time.Time) error {
	res, err := db.ExecContext(ctx, `
		UPDATE sessions
		SET status = $2, completed_at = $3, updated_at = NOW()
		WHERE id = $1`,
		sessionID, string(status), nullTimePtr(completedAt),
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

// queryLockEmployees takes a transaction-scoped advisory lock per employee so
// two concurrent acquires for overlapping employee sets serialize even when no
// session row exists yet. IDs are locked in sorted order to avoid deadlocks.
// Outside a transaction the locks are held only for the statement, which makes
// this a no-op; callers must run it inside RunInTransaction.
func queryLockEmployees(ctx context.Context, db executor, employeeIDs []string) error {
	sorted := make([]string, len(employeeIDs))
	copy(sorted, employeeIDs)
	sort.Strings(sorted)

	for _, id := range sorted {
		if _, err := db.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock(hashtext('employee:' || $1))`, id); err != nil {
			return fmt.Errorf("lock employee %s: %w", id, err)
		}
	}
	return nil
}

// queryHeldLeases returns the active lease (if any) for each of the requested
// employees: membership in an in_progress session whose lease has not lapsed.
// The session rows are locked FOR UPDATE so a racing release cannot slip
// between check and acquire.
func queryHeldLeases(ctx context.Context, db executor, employeeIDs []string, now time.Time) ([]model.HeldLease, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(employeeIDs))
	args := make([]any, 0, len(employeeIDs)+1)
	for i, id := range employeeIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	args = append(args, now)

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT se.employee_id, s.id, s.holder_id
		FROM session_employees se
		JOIN sessions s ON s.id = se.session_id
		WHERE se.employee_id IN (%s)
		  AND s.status = 'in_progress'
		  AND s.lease_expires_at > $%d
		ORDER BY se.employee_id
		FOR UPDATE OF s`,
		strings.Join(placeholders, ", "), len(employeeIDs)+1),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("held leases: %w", err)
	}
	defer rows.Close()

	var held []model.HeldLease
	for rows.Next() {
		var h model.HeldLease
		if err := rows.Scan(&h.EmployeeID, &h.SessionID, &h.HolderID); err != nil {
			return nil, fmt.Errorf("scan held lease: %w", err)
		}
		held = append(held, h)
	}
	return held, rows.Err()
}

// queryStaleSessionIDs returns in_progress sessions among the requested
// employees whose lease has lapsed, so the caller can lazily relabel them
// abandoned. Rows are locked FOR UPDATE.
func queryStaleSessionIDs(ctx context.Context, db executor, employeeIDs []string, now time.Time) ([]string, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(employeeIDs))
	args := make([]any, 0, len(employeeIDs)+1)
	for i, id := range employeeIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	args = append(args, now)

	// DISTINCT is not allowed with FOR UPDATE; dedupe in the scan loop.
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT s.id
		FROM session_employees se
		JOIN sessions s ON s.id = se.session_id
		WHERE se.employee_id IN (%s)
		  AND s.status = 'in_progress'
		  AND s.lease_expires_at <= $%d
		FOR UPDATE OF s`,
		strings.Join(placeholders, ", "), len(employeeIDs)+1),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("stale sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	seen := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stale session: %w", err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

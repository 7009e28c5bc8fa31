// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/tally/internal/model"
	"github.com/alfredjeanlab/tally/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateSession(ctx context.Context, session *model.Session) error {
	return queryCreateSession(ctx, s.db, session)
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return queryGetSession(ctx, s.db, id)
}

func (s *PostgresStore) ListSessions(ctx context.Context, filter model.SessionFilter) ([]*model.Session, error) {
	return queryListSessions(ctx, s.db, filter)
}

func (s *PostgresStore) SetSessionEmployees(ctx context.Context, sessionID string, employeeIDs []string) error {
	return querySetSessionEmployees(ctx, s.db, sessionID, employeeIDs)
}

func (s *PostgresStore) SetSessionExpiry(ctx context.Context, sessionID string, expiresAt time.Time) error {
	return querySetSessionExpiry(ctx, s.db, sessionID, expiresAt)
}

func (s *PostgresStore) SetSessionStatus(ctx context.Context, sessionID string, status model.SessionStatus, completedAt *time.Time) error {
	return querySetSessionStatus(ctx, s.db, sessionID, status, completedAt)
}

func (s *PostgresStore) LockEmployees(ctx context.Context, employeeIDs []string) error {
	return queryLockEmployees(ctx, s.db, employeeIDs)
}

func (s *PostgresStore) HeldLeases(ctx context.Context, employeeIDs []string, now time.Time) ([]model.HeldLease, error) {
	return queryHeldLeases(ctx, s.db, employeeIDs, now)
}

func (s *PostgresStore) StaleSessionIDs(ctx context.Context, employeeIDs []string, now time.Time) ([]string, error) {
	return queryStaleSessionIDs(ctx, s.db, employeeIDs, now)
}

func (s *PostgresStore) SaveDraft(ctx context.Context, draft *model.DraftRecord) error {
	return querySaveDraft(ctx, s.db, draft)
}

func (s *PostgresStore) GetDrafts(ctx context.Context, documenterID string) ([]*model.DraftRecord, error) {
	return queryGetDrafts(ctx, s.db, documenterID)
}

func (s *PostgresStore) GetDraftsForDay(ctx context.Context, documenterID, employeeID, date string) ([]*model.DraftRecord, error) {
	return queryGetDraftsForDay(ctx, s.db, documenterID, employeeID, date)
}

func (s *PostgresStore) DeleteDraft(ctx context.Context, documenterID, employeeID, goalStepID, date string) error {
	return queryDeleteDraft(ctx, s.db, documenterID, employeeID, goalStepID, date)
}

func (s *PostgresStore) DeleteDraftsForDay(ctx context.Context, documenterID, employeeID, date string) error {
	return queryDeleteDraftsForDay(ctx, s.db, documenterID, employeeID, date)
}

func (s *PostgresStore) UpsertProgressRecord(ctx context.Context, record *model.ProgressRecord) error {
	return queryUpsertProgressRecord(ctx, s.db, record)
}

func (s *PostgresStore) GetProgressRecords(ctx context.Context, employeeID, date string) ([]*model.ProgressRecord, error) {
	return queryGetProgressRecords(ctx, s.db, employeeID, date)
}

func (s *PostgresStore) ListProgressRecords(ctx context.Context, employeeID string) ([]*model.ProgressRecord, error) {
	return queryListProgressRecords(ctx, s.db, employeeID)
}

func (s *PostgresStore) CreateGoal(ctx context.Context, goal *model.Goal) error {
	return queryCreateGoal(ctx, s.db, goal)
}

func (s *PostgresStore) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	return queryGetGoal(ctx, s.db, id, false)
}

func (s *PostgresStore) GetGoalForUpdate(ctx context.Context, id string) (*model.Goal, error) {
	return queryGetGoal(ctx, s.db, id, true)
}

func (s *PostgresStore) ListGoals(ctx context.Context, employeeID string) ([]*model.Goal, error) {
	return queryListGoals(ctx, s.db, employeeID)
}

func (s *PostgresStore) GoalIDsForSteps(ctx context.Context, stepIDs []string) ([]string, error) {
	return queryGoalIDsForSteps(ctx, s.db, stepIDs)
}

func (s *PostgresStore) ApplyGoalEvaluation(ctx context.Context, goal *model.Goal) error {
	return queryApplyGoalEvaluation(ctx, s.db, goal)
}

func (s *PostgresStore) ArchiveGoal(ctx context.Context, id string) (*model.Goal, error) {
	return queryArchiveGoal(ctx, s.db, id)
}

func (s *PostgresStore) UpsertSessionNote(ctx context.Context, note *model.SessionNote) error {
	return queryUpsertSessionNote(ctx, s.db, note)
}

func (s *PostgresStore) GetSessionNotes(ctx context.Context, sessionID string) ([]*model.SessionNote, error) {
	return queryGetSessionNotes(ctx, s.db, sessionID)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.db, event)
}

func (s *PostgresStore) GetEvents(ctx context.Context, refID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.db, refID)
}

func (s *PostgresStore) AllGoals(ctx context.Context) ([]*model.Goal, error) {
	return queryAllGoals(ctx, s.db)
}

func (s *PostgresStore) AllProgressRecords(ctx context.Context) ([]*model.ProgressRecord, error) {
	return queryAllProgressRecords(ctx, s.db)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateSession(ctx context.Context, session *model.Session) error {
	return queryCreateSession(ctx, s.tx, session)
}

func (s *txStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return queryGetSession(ctx, s.tx, id)
}

func (s *txStore) ListSessions(ctx context.Context, filter model.SessionFilter) ([]*model.Session, error) {
	return queryListSessions(ctx, s.tx, filter)
}

func (s *txStore) SetSessionEmployees(ctx context.Context, sessionID string, employeeIDs []string) error {
	return querySetSessionEmployees(ctx, s.tx, sessionID, employeeIDs)
}

func (s *txStore) SetSessionExpiry(ctx context.Context, sessionID string, expiresAt time.Time) error {
	return querySetSessionExpiry(ctx, s.tx, sessionID, expiresAt)
}

func (s *txStore) SetSessionStatus(ctx context.Context, sessionID string, status model.SessionStatus, completedAt *time.Time) error {
	return querySetSessionStatus(ctx, s.tx, sessionID, status, completedAt)
}

func (s *txStore) LockEmployees(ctx context.Context, employeeIDs []string) error {
	return queryLockEmployees(ctx, s.tx, employeeIDs)
}

func (s *txStore) HeldLeases(ctx context.Context, employeeIDs []string, now time.Time) ([]model.HeldLease, error) {
	return queryHeldLeases(ctx, s.tx, employeeIDs, now)
}

func (s *txStore) StaleSessionIDs(ctx context.Context, employeeIDs []string, now time.Time) ([]string, error) {
	return queryStaleSessionIDs(ctx, s.tx, employeeIDs, now)
}

func (s *txStore) SaveDraft(ctx context.Context, draft *model.DraftRecord) error {
	return querySaveDraft(ctx, s.tx, draft)
}

func (s *txStore) GetDrafts(ctx context.Context, documenterID string) ([]*model.DraftRecord, error) {
	return queryGetDrafts(ctx, s.tx, documenterID)
}

func (s *txStore) GetDraftsForDay(ctx context.Context, documenterID, employeeID, date string) ([]*model.DraftRecord, error) {
	return queryGetDraftsForDay(ctx, s.tx, documenterID, employeeID, date)
}

func (s *txStore) DeleteDraft(ctx context.Context, documenterID, employeeID, goalStepID, date string) error {
	return queryDeleteDraft(ctx, s.tx, documenterID, employeeID, goalStepID, date)
}

func (s *txStore) DeleteDraftsForDay(ctx context.Context, documenterID, employeeID, date string) error {
	return queryDeleteDraftsForDay(ctx, s.tx, documenterID, employeeID, date)
}

func (s *txStore) UpsertProgressRecord(ctx context.Context, record *model.ProgressRecord) error {
	return queryUpsertProgressRecord(ctx, s.tx, record)
}

func (s *txStore) GetProgressRecords(ctx context.Context, employeeID, date string) ([]*model.ProgressRecord, error) {
	return queryGetProgressRecords(ctx, s.tx, employeeID, date)
}

func (s *txStore) ListProgressRecords(ctx context.Context, employeeID string) ([]*model.ProgressRecord, error) {
	return queryListProgressRecords(ctx, s.tx, employeeID)
}

func (s *txStore) CreateGoal(ctx context.Context, goal *model.Goal) error {
	return queryCreateGoal(ctx, s.tx, goal)
}

func (s *txStore) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	return queryGetGoal(ctx, s.tx, id, false)
}

func (s *txStore) GetGoalForUpdate(ctx context.Context, id string) (*model.Goal, error) {
	return queryGetGoal(ctx, s.tx, id, true)
}

func (s *txStore) ListGoals(ctx context.Context, employeeID string) ([]*model.Goal, error) {
	return queryListGoals(ctx, s.tx, employeeID)
}

func (s *txStore) GoalIDsForSteps(ctx context.Context, stepIDs []string) ([]string, error) {
	return queryGoalIDsForSteps(ctx, s.tx, stepIDs)
}

func (s *txStore) ApplyGoalEvaluation(ctx context.Context, goal *model.Goal) error {
	return queryApplyGoalEvaluation(ctx, s.tx, goal)
}

func (s *txStore) ArchiveGoal(ctx context.Context, id string) (*model.Goal, error) {
	return queryArchiveGoal(ctx, s.tx, id)
}

func (s *txStore) UpsertSessionNote(ctx context.Context, note *model.SessionNote) error {
	return queryUpsertSessionNote(ctx, s.tx, note)
}

func (s *txStore) GetSessionNotes(ctx context.Context, sessionID string) ([]*model.SessionNote, error) {
	return queryGetSessionNotes(ctx, s.tx, sessionID)
}

func (s *txStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.tx, event)
}

func (s *txStore) GetEvents(ctx context.Context, refID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.tx, refID)
}

func (s *txStore) AllGoals(ctx context.Context) ([]*model.Goal, error) {
	return queryAllGoals(ctx, s.tx)
}

func (s *txStore) AllProgressRecords(ctx context.Context) ([]*model.ProgressRecord, error) {
	return queryAllProgressRecords(ctx, s.tx)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}

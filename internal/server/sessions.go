package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alfredjeanlab/tally/internal/events"
	"github.com/alfredjeanlab/tally/internal/idgen"
	"github.com/alfredjeanlab/tally/internal/model"
	"github.com/alfredjeanlab/tally/internal/store"
)

// acquireSessionInput holds transport-agnostic parameters for starting a session.
type acquireSessionInput struct {
	HolderID    string        `json:"holder_id"`
	EmployeeIDs []string      `json:"employee_ids"`
	Location    string        `json:"location"`
	TTL         time.Duration `json:"-"`
}

// acquireSession atomically acquires leases on every requested employee and
// creates an in_progress session holding them. Acquisition is all-or-nothing:
// if any employee is held by a live session, the whole request fails with a
// *model.ConflictError listing every conflicting lease.
func (s *TallyServer) acquireSession(ctx context.Context, in acquireSessionInput) (*model.Session, error) {
	ttl := in.TTL
	if ttl == 0 {
		ttl = s.leaseTTL
	}
	if err := model.ValidateAcquire(in.EmployeeIDs, in.HolderID, ttl); err != nil {
		return nil, err
	}

	id, err := idgen.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	now := time.Now().UTC()
	session := &model.Session{
		ID:             id,
		HolderID:       in.HolderID,
		EmployeeIDs:    in.EmployeeIDs,
		Location:       in.Location,
		Status:         model.SessionInProgress,
		CreatedAt:      now,
		UpdatedAt:      now,
		LeaseExpiresAt: now.Add(ttl),
	}

	var abandoned []string
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.LockEmployees(ctx, in.EmployeeIDs); err != nil {
			return fmt.Errorf("lock employees: %w", err)
		}

		stale, err := tx.StaleSessionIDs(ctx, in.EmployeeIDs, now)
		if err != nil {
			return fmt.Errorf("find stale sessions: %w", err)
		}
		for _, sid := range stale {
			if err := tx.SetSessionStatus(ctx, sid, model.SessionAbandoned, nil); err != nil {
				return fmt.Errorf("abandon stale session %s: %w", sid, err)
			}
		}
		abandoned = stale

		held, err := tx.HeldLeases(ctx, in.EmployeeIDs, now)
		if err != nil {
			return fmt.Errorf("check held leases: %w", err)
		}
		if len(held) > 0 {
			return &model.ConflictError{Held: held}
		}

		return tx.CreateSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	for _, sid := range abandoned {
		s.recordAndPublish(ctx, events.TopicSessionAbandoned, sid, "", events.SessionAbandoned{
			SessionID: sid,
			Reason:    "lease expired",
		})
	}
	s.recordAndPublish(ctx, events.TopicSessionStarted, session.ID, session.HolderID, events.SessionStarted{Session: session})

	return session, nil
}

// modifySubjectsInput holds transport-agnostic parameters for changing the
// employee set of an existing session.
type modifySubjectsInput struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
	Actor  string   `json:"actor"`
}

// modifySubjects applies a delta to a session's employee set. Leases on added
// employees are acquired all-or-nothing; leases on removed employees are
// released immediately. Employees not named in the delta are untouched.
func (s *TallyServer) modifySubjects(ctx context.Context, sessionID string, in modifySubjectsInput) (*model.Session, error) {
	if len(in.Add) == 0 && len(in.Remove) == 0 {
		return nil, inputError("add or remove must name at least one employee")
	}

	now := time.Now().UTC()

	var session *model.Session
	var abandoned []string
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		var err error
		session, err = s.liveSession(ctx, tx, sessionID, in.Actor, now)
		if err != nil {
			return err
		}

		next := make(map[string]struct{}, len(session.EmployeeIDs))
		for _, id := range session.EmployeeIDs {
			next[id] = struct{}{}
		}
		for _, id := range in.Remove {
			if _, ok := next[id]; !ok {
				return inputError("employee " + id + " is not part of the session")
			}
			delete(next, id)
		}
		var added []string
		for _, id := range in.Add {
			if _, ok := next[id]; ok {
				return inputError("employee " + id + " is already part of the session")
			}
			next[id] = struct{}{}
			added = append(added, id)
		}
		if len(next) == 0 {
			return inputError("a session must retain at least one employee")
		}

		merged := make([]string, 0, len(next))
		for id := range next {
			merged = append(merged, id)
		}
		sort.Strings(merged)
		if err := model.ValidateAcquire(merged, session.HolderID, s.leaseTTL); err != nil {
			return err
		}

		if len(added) > 0 {
			if err := tx.LockEmployees(ctx, added); err != nil {
				return fmt.Errorf("lock employees: %w", err)
			}

			stale, err := tx.StaleSessionIDs(ctx, added, now)
			if err != nil {
				return fmt.Errorf("find stale sessions: %w", err)
			}
			for _, sid := range stale {
				if err := tx.SetSessionStatus(ctx, sid, model.SessionAbandoned, nil); err != nil {
					return fmt.Errorf("abandon stale session %s: %w", sid, err)
				}
			}
			abandoned = stale

			held, err := tx.HeldLeases(ctx, added, now)
			if err != nil {
				return fmt.Errorf("check held leases: %w", err)
			}
			// The session's own leases never conflict with itself.
			var conflicts []model.HeldLease
			for _, h := range held {
				if h.SessionID != sessionID {
					conflicts = append(conflicts, h)
				}
			}
			if len(conflicts) > 0 {
				return &model.ConflictError{Held: conflicts}
			}
		}

		if err := tx.SetSessionEmployees(ctx, sessionID, merged); err != nil {
			return fmt.Errorf("set session employees: %w", err)
		}
		session.EmployeeIDs = merged
		return nil
	})
	if err != nil {
		return nil, s.finishLeaseLapse(ctx, err, sessionID, in.Actor)
	}

	for _, sid := range abandoned {
		s.recordAndPublish(ctx, events.TopicSessionAbandoned, sid, "", events.SessionAbandoned{
			SessionID: sid,
			Reason:    "lease expired",
		})
	}
	s.recordAndPublish(ctx, events.TopicSessionSubjectsChanged, session.ID, in.Actor, events.SessionSubjectsChanged{
		Session: session,
		Added:   in.Add,
		Removed: in.Remove,
	})

	return session, nil
}

// renewSession extends the lease of a live session by ttl from now. Renewing
// an expired session is refused: the session is marked abandoned and
// ErrSessionTerminal is returned, so the holder must start over.
func (s *TallyServer) renewSession(ctx context.Context, sessionID, actor string, ttl time.Duration) (*model.Session, error) {
	if ttl == 0 {
		ttl = s.leaseTTL
	}
	if ttl < 0 || ttl > model.MaxLeaseTTL {
		return nil, inputError(fmt.Sprintf("ttl must be between 0 and %v", model.MaxLeaseTTL))
	}

	now := time.Now().UTC()

	var session *model.Session
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		var err error
		session, err = s.liveSession(ctx, tx, sessionID, actor, now)
		if err != nil {
			return err
		}

		expires := now.Add(ttl)
		if err := tx.SetSessionExpiry(ctx, sessionID, expires); err != nil {
			return fmt.Errorf("set session expiry: %w", err)
		}
		session.LeaseExpiresAt = expires
		return nil
	})
	if err != nil {
		return nil, s.finishLeaseLapse(ctx, err, sessionID, actor)
	}

	s.recordAndPublish(ctx, events.TopicSessionRenewed, session.ID, actor, events.SessionRenewed{
		Session: session,
		TTL:     ttl.String(),
	})

	return session, nil
}

// completeSession marks a session completed, releasing all of its leases.
// Completing an already-terminal session is a no-op success.
func (s *TallyServer) completeSession(ctx context.Context, sessionID, actor string) (*model.Session, error) {
	if actor == "" {
		return nil, inputError("actor is required")
	}
	now := time.Now().UTC()

	var session *model.Session
	var already bool
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		var err error
		session, err = tx.GetSession(ctx, sessionID)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if actor != session.HolderID {
			return model.ErrNotHolder
		}
		if session.Status.IsTerminal() {
			already = true
			return nil
		}

		if err := tx.SetSessionStatus(ctx, sessionID, model.SessionCompleted, &now); err != nil {
			return fmt.Errorf("set session status: %w", err)
		}
		session.Status = model.SessionCompleted
		session.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !already {
		s.recordAndPublish(ctx, events.TopicSessionCompleted, session.ID, actor, events.SessionCompleted{Session: session})
	}

	return session, nil
}

// checkLocks reports which of the requested employees are currently held and
// which are available. Purely advisory: the answer can be stale by the time
// the caller acts on it, and no state is changed.
func (s *TallyServer) checkLocks(ctx context.Context, employeeIDs []string) (*model.LockStatus, error) {
	if len(employeeIDs) == 0 {
		return nil, inputError("at least one employee is required")
	}

	held, err := s.store.HeldLeases(ctx, employeeIDs, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("check held leases: %w", err)
	}

	locked := make(map[string]struct{}, len(held))
	for _, h := range held {
		locked[h.EmployeeID] = struct{}{}
	}
	status := &model.LockStatus{Locked: held}
	for _, id := range employeeIDs {
		if _, ok := locked[id]; !ok {
			status.Available = append(status.Available, id)
		}
	}
	return status, nil
}

// errLeaseLapsed signals that a session's lease expired before the operation
// ran. The transaction is rolled back; the caller then relabels the session
// abandoned outside the transaction (via finishLeaseLapse) and reports
// ErrSessionTerminal.
var errLeaseLapsed = errors.New("session lease lapsed")

// liveSession loads a session and verifies it can still be operated on.
// Terminal sessions surface ErrSessionTerminal; sessions whose lease has
// lapsed surface errLeaseLapsed. The actor must be the recorded holder;
// anonymous calls are rejected rather than treated as a wildcard.
func (s *TallyServer) liveSession(ctx context.Context, tx store.Store, sessionID, actor string, now time.Time) (*model.Session, error) {
	if actor == "" {
		return nil, inputError("actor is required")
	}
	session, err := tx.GetSession(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if actor != session.HolderID {
		return nil, model.ErrNotHolder
	}
	if session.Status.IsTerminal() {
		return nil, model.ErrSessionTerminal
	}
	if session.Expired(now) {
		return nil, errLeaseLapsed
	}
	return session, nil
}

// finishLeaseLapse implements lazy expiry: the first authoritative operation
// that observes a lapsed lease relabels the session abandoned. Runs after the
// operation's own transaction rolled back so the relabel always sticks. The
// relabel re-checks the status so it never overwrites a completion that
// landed in between; it is best-effort, a later observer will retry it.
func (s *TallyServer) finishLeaseLapse(ctx context.Context, err error, sessionID, actor string) error {
	if !errors.Is(err, errLeaseLapsed) {
		return err
	}
	relabeled := false
	serr := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		session, gerr := tx.GetSession(ctx, sessionID)
		if gerr != nil {
			return gerr
		}
		if session.Status.IsTerminal() {
			return nil
		}
		if uerr := tx.SetSessionStatus(ctx, sessionID, model.SessionAbandoned, nil); uerr != nil {
			return uerr
		}
		relabeled = true
		return nil
	})
	if serr != nil {
		slog.Warn("failed to abandon expired session", "session_id", sessionID, "error", serr)
	} else if relabeled {
		s.recordAndPublish(ctx, events.TopicSessionAbandoned, sessionID, actor, events.SessionAbandoned{
			SessionID: sessionID,
			Reason:    "lease expired",
		})
	}
	return model.ErrSessionTerminal
}

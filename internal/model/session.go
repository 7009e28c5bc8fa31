package model

import "time"

// Lease TTL constraint constants.
const (
	DefaultLeaseTTL = 4 * time.Hour  // Applied when an acquire request omits the TTL
	MaxLeaseTTL     = 12 * time.Hour // Maximum TTL for a single acquire or renew
)

// SessionStatus represents the lifecycle state of a documentation session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// String returns the string representation of the status.
func (s SessionStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionInProgress, SessionCompleted, SessionAbandoned:
		return true
	}
	return false
}

// IsTerminal reports whether the status is final. Terminal sessions hold no
// leases and reject all mutations.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// Session is a bounded unit of documentation work. While in_progress and
// unexpired, it holds an exclusive lease over every employee in EmployeeIDs.
type Session struct {
	ID             string        `json:"id"`
	HolderID       string        `json:"holder_id"`
	EmployeeIDs    []string      `json:"employee_ids"`
	Location       string        `json:"location,omitempty"`
	Status         SessionStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	LeaseExpiresAt time.Time     `json:"lease_expires_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

// Expired reports whether the session's lease has lapsed at the given instant.
// Terminal sessions are always treated as expired.
func (s *Session) Expired(now time.Time) bool {
	return s.Status.IsTerminal() || !s.LeaseExpiresAt.After(now)
}

// HoldsEmployee reports whether the employee is in the session's subject set.
func (s *Session) HoldsEmployee(employeeID string) bool {
	for _, id := range s.EmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}

// HeldLease identifies who currently holds a lease on an employee. Returned
// inside ConflictError so callers can decide a retry strategy.
type HeldLease struct {
	EmployeeID string `json:"employee_id"`
	SessionID  string `json:"session_id"`
	HolderID   string `json:"holder_id"`
}

// LockStatus is the advisory snapshot returned by CheckLocks. It must never
// be used as the basis for a correctness decision; only the transactional
// acquire path is authoritative.
type LockStatus struct {
	Locked    []HeldLease `json:"locked"`
	Available []string    `json:"available"`
}

// SessionFilter narrows ListSessions results.
type SessionFilter struct {
	HolderID   string
	EmployeeID string
	Status     []SessionStatus
	Limit      int
	Offset     int
}

// Package presence tracks which documenters are actively using the service.
//
// The Tracker maintains an in-memory map of documenters, updated by the
// server on every recorded operation (session starts, renewals, submits).
// A background reaper goroutine marks idle documenters offline after a
// configurable threshold and eventually evicts them to bound memory.
package presence

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Entry represents a single documenter's live activity state.
type Entry struct {
	DocumenterID string    `json:"documenter_id"`
	LastSeen     time.Time `json:"last_seen"`
	FirstSeen    time.Time `json:"first_seen"`
	LastAction   string    `json:"last_action"`          // e.g. "tally.session.started"
	SessionID    string    `json:"session_id,omitempty"` // most recent session touched
	IdleSecs     float64   `json:"idle_secs"`            // seconds since last action
	ActionCount  int64     `json:"action_count"`         // total actions seen
	Offline      bool      `json:"offline,omitempty"`    // true if the reaper marked the documenter idle
	OfflineAt    time.Time `json:"offline_at,omitempty"`
}

// Activity is the data extracted from a recorded operation that the tracker
// needs to update a documenter's state.
type Activity struct {
	DocumenterID string
	Action       string // event topic of the operation
	SessionID    string
}

// ReaperConfig configures the background idle-documenter reaper.
type ReaperConfig struct {
	// OfflineThreshold is how long a documenter must be idle before being
	// marked offline. Default: 15 minutes.
	OfflineThreshold time.Duration

	// EvictAfter is how long after going offline before a documenter is
	// removed from the in-memory map. Default: 30 minutes.
	EvictAfter time.Duration

	// SweepInterval is how often the reaper scans for idle documenters.
	// Default: 60 seconds.
	SweepInterval time.Duration

	// OnOffline is called for each documenter newly marked offline.
	// Called outside the lock, so blocking calls are safe.
	OnOffline func(documenterID, sessionID string)
}

// Tracker maintains an in-memory roster of active documenters.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]*documenterState
	started time.Time

	reaperStop chan struct{}
	reaperDone chan struct{}
}

type documenterState struct {
	firstSeen   time.Time
	lastSeen    time.Time
	lastAction  string
	sessionID   string
	actionCount int64
	offline     bool
	offlineAt   time.Time
}

// New creates a new presence tracker.
func New() *Tracker {
	return &Tracker{
		entries: make(map[string]*documenterState),
		started: time.Now(),
	}
}

// Record updates the state for a documenter after an operation.
func (t *Tracker) Record(a Activity) {
	if a.DocumenterID == "" {
		return
	}

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.entries[a.DocumenterID]
	if !ok {
		state = &documenterState{firstSeen: now}
		t.entries[a.DocumenterID] = state
	}

	// A documenter marked offline comes back on their next action.
	if state.offline {
		slog.Info("presence: documenter back online", "documenter_id", a.DocumenterID)
		state.offline = false
		state.offlineAt = time.Time{}
	}

	state.lastSeen = now
	state.lastAction = a.Action
	state.actionCount++
	if a.SessionID != "" {
		state.sessionID = a.SessionID
	}
}

// Roster returns a snapshot of tracked documenters, most recently active
// first. staleThreshold excludes documenters idle for longer than it; pass 0
// to include everyone ever seen.
func (t *Tracker) Roster(staleThreshold time.Duration) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(t.entries))

	for id, state := range t.entries {
		idle := now.Sub(state.lastSeen)
		if staleThreshold > 0 && idle > staleThreshold {
			continue
		}

		firstSeen := state.firstSeen
		if firstSeen.IsZero() {
			firstSeen = t.started
		}

		entries = append(entries, Entry{
			DocumenterID: id,
			LastSeen:     state.lastSeen,
			FirstSeen:    firstSeen,
			LastAction:   state.lastAction,
			SessionID:    state.sessionID,
			IdleSecs:     idle.Seconds(),
			ActionCount:  state.actionCount,
			Offline:      state.offline,
			OfflineAt:    state.offlineAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})

	return entries
}

// StartReaper launches a background goroutine that periodically marks idle
// documenters offline. Call Stop() to shut it down.
func (t *Tracker) StartReaper(cfg *ReaperConfig) {
	if cfg == nil {
		cfg = &ReaperConfig{}
	}
	if cfg.OfflineThreshold == 0 {
		cfg.OfflineThreshold = 15 * time.Minute
	}
	if cfg.EvictAfter == 0 {
		cfg.EvictAfter = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 60 * time.Second
	}

	t.reaperStop = make(chan struct{})
	t.reaperDone = make(chan struct{})

	go t.reapLoop(cfg)
	slog.Info("presence: reaper started",
		"offline_threshold", cfg.OfflineThreshold,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (t *Tracker) Stop() {
	if t.reaperStop != nil {
		close(t.reaperStop)
		<-t.reaperDone
		t.reaperStop = nil
		t.reaperDone = nil
	}
}

func (t *Tracker) reapLoop(cfg *ReaperConfig) {
	defer close(t.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.reaperStop:
			return
		case <-ticker.C:
			t.sweep(cfg)
		}
	}
}

func (t *Tracker) sweep(cfg *ReaperConfig) {
	now := time.Now()

	type idleDocumenter struct {
		id        string
		sessionID string
	}
	var newlyOffline []idleDocumenter

	t.mu.Lock()
	for id, state := range t.entries {
		if state.offline {
			if !state.offlineAt.IsZero() && now.Sub(state.offlineAt) > cfg.EvictAfter {
				delete(t.entries, id)
			}
			continue
		}
		if now.Sub(state.lastSeen) > cfg.OfflineThreshold {
			state.offline = true
			state.offlineAt = now
			newlyOffline = append(newlyOffline, idleDocumenter{id: id, sessionID: state.sessionID})
		}
	}
	t.mu.Unlock()

	for _, d := range newlyOffline {
		slog.Info("presence: documenter marked offline",
			"documenter_id", d.id,
			"threshold", cfg.OfflineThreshold)
		if cfg.OnOffline != nil {
			cfg.OnOffline(d.id, d.sessionID)
		}
	}
}

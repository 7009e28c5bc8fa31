package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *TallyServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", s.handleAcquireSession)
	mux.HandleFunc("GET /v1/sessions", s.handleListSessions)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /v1/sessions/{id}/subjects", s.handleModifySubjects)
	mux.HandleFunc("POST /v1/sessions/{id}/renew", s.handleRenewSession)
	mux.HandleFunc("POST /v1/sessions/{id}/complete", s.handleCompleteSession)
	mux.HandleFunc("GET /v1/sessions/{id}/notes", s.handleGetSessionNotes)
	mux.HandleFunc("GET /v1/sessions/{id}/events", s.handleGetSessionEvents)
	mux.HandleFunc("POST /v1/locks/check", s.handleCheckLocks)
	mux.HandleFunc("PUT /v1/drafts", s.handleSaveDraft)
	mux.HandleFunc("GET /v1/drafts", s.handleListDrafts)
	mux.HandleFunc("POST /v1/drafts/discard", s.handleDiscardDraft)
	mux.HandleFunc("POST /v1/submit", s.handleSubmit)
	mux.HandleFunc("POST /v1/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /v1/goals", s.handleListGoals)
	mux.HandleFunc("GET /v1/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("POST /v1/goals/{id}/archive", s.handleArchiveGoal)
	mux.HandleFunc("GET /v1/employees/{id}/records", s.handleListEmployeeRecords)
	mux.HandleFunc("GET /v1/documenters/active", s.handleActiveDocumenters)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleActiveDocumenters handles GET /v1/documenters/active. The optional
// "stale" query parameter is a duration excluding documenters idle longer
// than it; "0" includes everyone ever seen.
func (s *TallyServer) handleActiveDocumenters(w http.ResponseWriter, r *http.Request) {
	stale := 15 * time.Minute
	if v := r.URL.Query().Get("stale"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, "invalid stale duration")
			return
		}
		stale = d
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documenters": s.presence.Roster(stale),
	})
}

// handleHealth handles GET /v1/health.
func (s *TallyServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service-layer errors onto HTTP responses. Conflict
// responses carry the held leases so clients can plan a retry; validation
// responses carry the per-field errors.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		ie inputError
		ve *model.ValidationError
		ce *model.ConflictError
	)
	switch {
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  ve.Error(),
			"fields": ve.Errors,
		})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": ce.Error(),
			"held":  ce.Held,
		})
	case errors.Is(err, model.ErrSessionTerminal):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrGoalArchived):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrNotHolder):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, model.ErrGoalNotFound),
		errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrNothingToSubmit):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
)

// parseTTL parses an optional duration string from a request body.
// Empty means "use the server default".
func parseTTL(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, inputError("invalid ttl: " + err.Error())
	}
	return d, nil
}

// handleAcquireSession handles POST /v1/sessions.
func (s *TallyServer) handleAcquireSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HolderID    string   `json:"holder_id"`
		EmployeeIDs []string `json:"employee_ids"`
		Location    string   `json:"location"`
		TTL         string   `json:"ttl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ttl, err := parseTTL(body.TTL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	session, err := s.acquireSession(r.Context(), acquireSessionInput{
		HolderID:    body.HolderID,
		EmployeeIDs: body.EmployeeIDs,
		Location:    body.Location,
		TTL:         ttl,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// handleListSessions handles GET /v1/sessions.
func (s *TallyServer) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.SessionFilter{
		HolderID:   q.Get("holder_id"),
		EmployeeID: q.Get("employee_id"),
	}
	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.SessionStatus(st))
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	sessions, err := s.listSessions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	// Ensure sessions is never null in JSON output.
	if sessions == nil {
		sessions = []*model.Session{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// handleGetSession handles GET /v1/sessions/{id}.
func (s *TallyServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.getSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleModifySubjects handles POST /v1/sessions/{id}/subjects.
func (s *TallyServer) handleModifySubjects(w http.ResponseWriter, r *http.Request) {
	var in modifySubjectsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := s.modifySubjects(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// handleRenewSession handles POST /v1/sessions/{id}/renew.
func (s *TallyServer) handleRenewSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Actor string `json:"actor"`
		TTL   string `json:"ttl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ttl, err := parseTTL(body.TTL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	session, err := s.renewSession(r.Context(), r.PathValue("id"), body.Actor, ttl)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// handleCompleteSession handles POST /v1/sessions/{id}/complete.
func (s *TallyServer) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Actor string `json:"actor"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	session, err := s.completeSession(r.Context(), r.PathValue("id"), body.Actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// handleGetSessionNotes handles GET /v1/sessions/{id}/notes.
func (s *TallyServer) handleGetSessionNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.store.GetSessionNotes(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get session notes")
		return
	}
	if notes == nil {
		notes = []*model.SessionNote{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// handleGetSessionEvents handles GET /v1/sessions/{id}/events.
func (s *TallyServer) handleGetSessionEvents(w http.ResponseWriter, r *http.Request) {
	evts, err := s.store.GetEvents(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get events")
		return
	}
	if evts == nil {
		evts = []*model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}

// handleCheckLocks handles POST /v1/locks/check.
func (s *TallyServer) handleCheckLocks(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EmployeeIDs []string `json:"employee_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	status, err := s.checkLocks(r.Context(), body.EmployeeIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

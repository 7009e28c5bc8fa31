package server

import (
	"encoding/json"
	"net/http"

	"github.com/alfredjeanlab/tally/internal/model"
)

// handleCreateGoal handles POST /v1/goals.
func (s *TallyServer) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in createGoalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	goal, err := s.createGoal(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

// handleListGoals handles GET /v1/goals.
func (s *TallyServer) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.listGoals(r.Context(), r.URL.Query().Get("employee_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if goals == nil {
		goals = []*model.Goal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

// handleGetGoal handles GET /v1/goals/{id}.
func (s *TallyServer) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.getGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// handleArchiveGoal handles POST /v1/goals/{id}/archive.
func (s *TallyServer) handleArchiveGoal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Actor string `json:"actor"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	goal, err := s.archiveGoal(r.Context(), r.PathValue("id"), body.Actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

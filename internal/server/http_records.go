package server

import (
	"encoding/json"
	"net/http"

	"github.com/alfredjeanlab/tally/internal/model"
)

// handleSaveDraft handles PUT /v1/drafts.
func (s *TallyServer) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	var draft model.DraftRecord
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	saved, err := s.saveDraft(r.Context(), &draft)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// handleListDrafts handles GET /v1/drafts.
func (s *TallyServer) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.listDrafts(r.Context(), r.URL.Query().Get("documenter_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if drafts == nil {
		drafts = []*model.DraftRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
}

// handleDiscardDraft handles POST /v1/drafts/discard.
func (s *TallyServer) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DocumenterID string `json:"documenter_id"`
		EmployeeID   string `json:"employee_id"`
		GoalStepID   string `json:"goal_step_id"`
		RecordDate   string `json:"record_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.discardDraft(r.Context(), body.DocumenterID, body.EmployeeID, body.GoalStepID, body.RecordDate); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
}

// handleSubmit handles POST /v1/submit.
func (s *TallyServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in submitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.submit(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if result.Records == nil {
		result.Records = []*model.ProgressRecord{}
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListEmployeeRecords handles GET /v1/employees/{id}/records.
func (s *TallyServer) handleListEmployeeRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.listEmployeeRecords(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if records == nil {
		records = []*model.ProgressRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/tally/internal/model"
)

// HTTPClient implements TallyClient using the tally HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Sessions ---

func (c *HTTPClient) AcquireSession(ctx context.Context, req *AcquireSessionRequest) (*model.Session, error) {
	var session model.Session
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) ListSessions(ctx context.Context, req *ListSessionsRequest) ([]*model.Session, error) {
	q := url.Values{}
	if req.HolderID != "" {
		q.Set("holder_id", req.HolderID)
	}
	if req.EmployeeID != "" {
		q.Set("employee_id", req.EmployeeID)
	}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/sessions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Sessions []*model.Session `json:"sessions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (c *HTTPClient) ModifySubjects(ctx context.Context, sessionID string, req *ModifySubjectsRequest) (*model.Session, error) {
	var session model.Session
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(sessionID)+"/subjects", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) RenewSession(ctx context.Context, sessionID, actor, ttl string) (*model.Session, error) {
	body := map[string]string{"actor": actor}
	if ttl != "" {
		body["ttl"] = ttl
	}
	var session model.Session
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(sessionID)+"/renew", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) CompleteSession(ctx context.Context, sessionID, actor string) (*model.Session, error) {
	body := map[string]string{"actor": actor}
	var session model.Session
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(sessionID)+"/complete", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) GetSessionNotes(ctx context.Context, sessionID string) ([]*model.SessionNote, error) {
	var resp struct {
		Notes []*model.SessionNote `json:"notes"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(sessionID)+"/notes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

func (c *HTTPClient) GetSessionEvents(ctx context.Context, sessionID string) ([]*model.Event, error) {
	var resp struct {
		Events []*model.Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(sessionID)+"/events", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Locks ---

func (c *HTTPClient) CheckLocks(ctx context.Context, employeeIDs []string) (*model.LockStatus, error) {
	body := map[string]any{"employee_ids": employeeIDs}
	var status model.LockStatus
	if err := c.doJSON(ctx, http.MethodPost, "/v1/locks/check", body, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// --- Drafts ---

func (c *HTTPClient) SaveDraft(ctx context.Context, draft *model.DraftRecord) (*model.DraftRecord, error) {
	var saved model.DraftRecord
	if err := c.doJSON(ctx, http.MethodPut, "/v1/drafts", draft, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *HTTPClient) ListDrafts(ctx context.Context, documenterID string) ([]*model.DraftRecord, error) {
	q := url.Values{}
	q.Set("documenter_id", documenterID)
	var resp struct {
		Drafts []*model.DraftRecord `json:"drafts"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/drafts?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Drafts, nil
}

func (c *HTTPClient) DiscardDraft(ctx context.Context, req *DiscardDraftRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/drafts/discard", req, nil)
}

// --- Submit ---

func (c *HTTPClient) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	var resp SubmitResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/submit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Goals ---

func (c *HTTPClient) CreateGoal(ctx context.Context, req *CreateGoalRequest) (*model.Goal, error) {
	var goal model.Goal
	if err := c.doJSON(ctx, http.MethodPost, "/v1/goals", req, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (c *HTTPClient) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	var goal model.Goal
	if err := c.doJSON(ctx, http.MethodGet, "/v1/goals/"+url.PathEscape(id), nil, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (c *HTTPClient) ListGoals(ctx context.Context, employeeID string) ([]*model.Goal, error) {
	q := url.Values{}
	q.Set("employee_id", employeeID)
	var resp struct {
		Goals []*model.Goal `json:"goals"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/goals?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Goals, nil
}

func (c *HTTPClient) ArchiveGoal(ctx context.Context, id, actor string) (*model.Goal, error) {
	body := map[string]string{"actor": actor}
	var goal model.Goal
	if err := c.doJSON(ctx, http.MethodPost, "/v1/goals/"+url.PathEscape(id)+"/archive", body, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

// --- Records ---

func (c *HTTPClient) ListEmployeeRecords(ctx context.Context, employeeID string) ([]*model.ProgressRecord, error) {
	var resp struct {
		Records []*model.ProgressRecord `json:"records"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/employees/"+url.PathEscape(employeeID)+"/records", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server. Conflict responses
// carry the held leases, validation responses the per-field errors.
type APIError struct {
	StatusCode int
	Message    string
	Held       []model.HeldLease
	Fields     []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content -- success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string            `json:"error"`
			Held   []model.HeldLease `json:"held"`
			Fields []string          `json:"fields"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    errResp.Error,
				Held:       errResp.Held,
				Fields:     errResp.Fields,
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

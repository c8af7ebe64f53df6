// Package api implements the HTTP client for the PRD construction backend.
// All persistence, generation, and diffing logic lives server-side; this
// client only moves request/response payloads across that boundary.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"prdpilot/pkg/types"
)

const defaultTimeout = 60 * time.Second

// Logger is the subset of the workspace logger the client needs. Kept as a
// small interface so tests can pass a recorder.
type Logger interface {
	Logf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Logf(string, ...interface{}) {}

// Client talks to one PRD backend instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a request logger.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a client for the given server URL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RemoteError is a non-2xx response from the backend. Detail carries the
// server-provided message when the body had one.
type RemoteError struct {
	StatusCode int
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// doJSON issues one request and decodes the response into out (when out is
// non-nil). No retries or backoff: a failed call is surfaced to the user,
// who retries manually.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	correlationID := uuid.NewString()
	req.Header.Set("X-Correlation-ID", correlationID)

	c.logger.Logf("api request: %s %s cid=%s", method, path, correlationID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		c.logger.Logf("api error: %s %s status=%d cid=%s", method, path, resp.StatusCode, correlationID)
		return &RemoteError{StatusCode: resp.StatusCode, Detail: eb.Detail}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}

// GetPipelineState fetches the five-stage completion record. The client
// never infers stage booleans itself; this call is the only source of them.
func (c *Client) GetPipelineState(ctx context.Context, projectID string) (*types.PipelineState, error) {
	var state types.PipelineState
	path := fmt.Sprintf("/api/projects/%s/state", projectID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetSession fetches the clarification session for a project, which the
// backend may answer from cache (Cached=true) instead of generating.
func (c *Client) GetSession(ctx context.Context, projectID string, maxQuestions int) (*types.SessionPayload, error) {
	var payload types.SessionPayload
	path := fmt.Sprintf("/api/projects/%s/session?max_questions=%d", projectID, maxQuestions)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CreateSession asks the backend to generate a fresh clarification session.
// Used as the fallback when GetSession fails.
func (c *Client) CreateSession(ctx context.Context, projectID string, maxQuestions int) (*types.SessionPayload, error) {
	var payload types.SessionPayload
	path := fmt.Sprintf("/api/projects/%s/session", projectID)
	body := map[string]int{"max_questions": maxQuestions}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SaveAnswer records one answer or skip. The response is acknowledgement
// only; the caller performs the local upsert itself.
func (c *Client) SaveAnswer(ctx context.Context, projectID string, answer types.Answer) error {
	path := fmt.Sprintf("/api/projects/%s/answers", projectID)
	return c.doJSON(ctx, http.MethodPost, path, answer, nil)
}

// RegenerateQuestions requests a full replacement session. The returned
// payload supersedes the current buckets wholesale.
func (c *Client) RegenerateQuestions(ctx context.Context, projectID string, maxQuestions int) (*types.SessionPayload, error) {
	var payload types.SessionPayload
	path := fmt.Sprintf("/api/projects/%s/session/regenerate", projectID)
	body := map[string]int{"max_questions": maxQuestions}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FinalizeSession closes the clarification session. Success implies a
// pipeline stage transition, so callers re-fetch PipelineState afterwards.
func (c *Client) FinalizeSession(ctx context.Context, projectID string) error {
	path := fmt.Sprintf("/api/projects/%s/session/finalize", projectID)
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// GetVersions fetches the ordered version list and current pointer.
func (c *Client) GetVersions(ctx context.Context, projectID string) (*types.VersionList, error) {
	var list types.VersionList
	path := fmt.Sprintf("/api/projects/%s/versions", projectID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetVersionContent fetches one version's raw document body.
func (c *Client) GetVersionContent(ctx context.Context, projectID string, version int) (*types.VersionContent, error) {
	var content types.VersionContent
	path := fmt.Sprintf("/api/projects/%s/versions/%d", projectID, version)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// CompareVersions requests a section-granular diff of two versions. The
// count invariants are checked here so a malformed payload surfaces as a
// decode error rather than a broken rendering.
func (c *Client) CompareVersions(ctx context.Context, projectID string, v1, v2 int) (*types.VersionDiff, error) {
	var diff types.VersionDiff
	path := fmt.Sprintf("/api/projects/%s/versions/compare", projectID)
	body := map[string]int{"version1": v1, "version2": v2}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &diff); err != nil {
		return nil, err
	}
	if err := diff.Validate(); err != nil {
		return nil, fmt.Errorf("invalid comparison payload: %w", err)
	}
	return &diff, nil
}

// InvokeAction triggers one pipeline action. Raw keeps the full body so
// callers can decode action-specific fields such as the build result.
func (c *Client) InvokeAction(ctx context.Context, projectID, actionID string) (*types.ActionResult, error) {
	path := fmt.Sprintf("/api/projects/%s/actions/%s", projectID, actionID)

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &raw); err != nil {
		return nil, err
	}
	var result types.ActionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode action result: %w", err)
	}
	result.Raw = raw
	return &result, nil
}

// GetGaps fetches the gap analysis report.
func (c *Client) GetGaps(ctx context.Context, projectID string) (*types.GapsReport, error) {
	var report types.GapsReport
	path := fmt.Sprintf("/api/projects/%s/gaps", projectID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

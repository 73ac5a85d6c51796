package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single REST call.
const DefaultTimeout = 10 * time.Second

// ErrNotFound is returned when the JobManager answers 404.
var ErrNotFound = errors.New("not found")

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("flink REST %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Unwrap maps 404 to ErrNotFound.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Client talks to one JobManager.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the JobManager REST endpoint, e.g. http://wordcount-rest.default.svc:8081.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the base URL of the client.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ClusterOverview returns GET /overview.
func (c *Client) ClusterOverview(ctx context.Context) (*ClusterOverview, error) {
	var out ClusterOverview
	if err := c.do(ctx, http.MethodGet, "/overview", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListJobs returns GET /jobs/overview.
func (c *Client) ListJobs(ctx context.Context) ([]JobOverview, error) {
	var out jobsOverviewResponse
	if err := c.do(ctx, http.MethodGet, "/jobs/overview", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

// CancelJob cancels the job without a savepoint.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	path := "/jobs/" + url.PathEscape(jobID) + "?mode=cancel"
	return c.do(ctx, http.MethodPatch, path, nil, http.StatusAccepted, nil)
}

// StopWithSavepoint triggers a stop-with-savepoint and returns the trigger id.
// An empty targetDirectory lets Flink use state.savepoints.dir.
func (c *Client) StopWithSavepoint(ctx context.Context, jobID, targetDirectory string) (string, error) {
	req := stopRequest{TargetDirectory: targetDirectory, Drain: false}
	var out triggerResponse
	path := "/jobs/" + url.PathEscape(jobID) + "/stop"
	if err := c.do(ctx, http.MethodPost, path, req, http.StatusAccepted, &out); err != nil {
		return "", err
	}
	if out.RequestID == "" {
		return "", fmt.Errorf("stop-with-savepoint for job %s returned no trigger id", jobID)
	}
	return out.RequestID, nil
}

// SavepointStatus returns the state of a savepoint operation.
func (c *Client) SavepointStatus(ctx context.Context, jobID, triggerID string) (*SavepointInfo, error) {
	var out savepointStatusResponse
	path := "/jobs/" + url.PathEscape(jobID) + "/savepoints/" + url.PathEscape(triggerID)
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}

	info := &SavepointInfo{Status: out.Status.ID}
	if out.Operation != nil {
		info.Location = out.Operation.Location
		if out.Operation.FailureCause != nil {
			info.FailureCause = out.Operation.FailureCause.StackTrace
			if info.FailureCause == "" {
				info.FailureCause = out.Operation.FailureCause.Class
			}
		}
	}
	return info, nil
}

// WaitForSavepoint polls SavepointStatus until the operation completes, fails or timeout elapses.
func (c *Client) WaitForSavepoint(ctx context.Context, jobID, triggerID string, timeout, poll time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		info, err := c.SavepointStatus(ctx, jobID, triggerID)
		if err != nil {
			return "", fmt.Errorf("failed to get savepoint status: %w", err)
		}
		if info.Status == SavepointCompleted {
			if info.FailureCause != "" {
				return "", fmt.Errorf("savepoint for job %s failed: %s", jobID, info.FailureCause)
			}
			if info.Location == "" {
				return "", fmt.Errorf("savepoint for job %s completed without a location", jobID)
			}
			return info.Location, nil
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timed out waiting for savepoint of job %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, expectedStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != expectedStatus && resp.StatusCode != http.StatusOK {
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response of %s %s: %w", method, path, err)
	}
	return nil
}

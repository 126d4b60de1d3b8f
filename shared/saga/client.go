package saga

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBytes bounds how much of a collaborator response is read.
const maxResponseBytes = 1 << 20

// CallError describes a failed collaborator call. StatusCode is zero for
// transport-level failures (timeout, connection error).
type CallError struct {
	StatusCode int
	Message    string
}

func (e *CallError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("collaborator returned status %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

// CollaboratorClient posts saga snapshots to collaborator endpoints with a
// fixed per-call timeout. A timeout counts as a failure, never a retry.
type CollaboratorClient struct {
	httpClient *http.Client
	endpoints  Endpoints
	timeout    time.Duration
}

// NewCollaboratorClient creates a client over the given endpoint registry
func NewCollaboratorClient(endpoints Endpoints, timeout time.Duration) *CollaboratorClient {
	return &CollaboratorClient{
		httpClient: &http.Client{},
		endpoints:  endpoints,
		timeout:    timeout,
	}
}

// Post sends the payload as JSON to the collaborator's path and decodes the
// response body. Any non-2xx response or transport failure is returned as a
// *CallError.
func (c *CollaboratorClient) Post(ctx context.Context, name, path string, payload any) (map[string]json.RawMessage, error) {
	baseURL, err := c.endpoints.BaseURL(name)
	if err != nil {
		return nil, &CallError{Message: err.Error()}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &CallError{Message: fmt.Sprintf("failed to marshal payload: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &CallError{Message: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &CallError{Message: err.Error()}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, &CallError{Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &CallError{StatusCode: res.StatusCode, Message: string(raw)}
	}

	// A 2xx is a success even when the body is not the expected JSON
	// object; compensation responses in particular carry no required body.
	decoded := make(map[string]json.RawMessage)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}

	return decoded, nil
}

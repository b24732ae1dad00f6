package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPEndpoint submits tokens to a remote verification endpoint
type HTTPEndpoint struct {
	URL        string
	HTTPClient *http.Client
}

// Submit posts {"token": token} and decodes the decision whatever the status code
func (e *HTTPEndpoint) Submit(ctx context.Context, token string) (int, Decision, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return 0, Decision{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(body))
	if err != nil {
		return 0, Decision{}, fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := e.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, Decision{}, fmt.Errorf("verification request failed: %w", err)
	}
	defer resp.Body.Close()

	var decision Decision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return resp.StatusCode, Decision{}, fmt.Errorf("failed to decode verification response: %w", err)
	}
	return resp.StatusCode, decision, nil
}

// EndpointFunc adapts an in-process decision function to DecisionSource
type EndpointFunc func(ctx context.Context, token string) (int, Decision, error)

func (f EndpointFunc) Submit(ctx context.Context, token string) (int, Decision, error) {
	return f(ctx, token)
}

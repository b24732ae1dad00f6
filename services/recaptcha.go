package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// SiteVerifyResponse is the body returned by the reCAPTCHA siteverify API
type SiteVerifyResponse struct {
	Success     bool            `json:"success"`
	RawScore    json.RawMessage `json:"score,omitempty"`
	Action      string          `json:"action,omitempty"`
	ChallengeTS string          `json:"challenge_ts,omitempty"`
	Hostname    string          `json:"hostname,omitempty"`
	ErrorCodes  []string        `json:"error-codes,omitempty"`
}

// Score returns the numeric score, or false when the provider sent none or a non-number
func (r *SiteVerifyResponse) Score() (float64, bool) {
	if len(r.RawScore) == 0 || string(r.RawScore) == "null" {
		return 0, false
	}
	var score float64
	if err := json.Unmarshal(r.RawScore, &score); err != nil {
		return 0, false
	}
	return score, true
}

// UpstreamStatusError is returned when siteverify answers with a non-2xx status
type UpstreamStatusError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("siteverify returned %s", e.Status)
}

// SiteVerifier exchanges a client token for a verification result
type SiteVerifier interface {
	Verify(ctx context.Context, secret, token string) (*SiteVerifyResponse, error)
}

// RecaptchaClient talks to the siteverify API over HTTPS
type RecaptchaClient struct {
	VerifyURL  string
	HTTPClient *http.Client
}

// NewRecaptchaClient creates a client with a bounded request timeout
func NewRecaptchaClient(verifyURL string, timeout time.Duration) *RecaptchaClient {
	return &RecaptchaClient{
		VerifyURL:  verifyURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Verify posts the secret and token as query parameters and decodes the result
func (c *RecaptchaClient) Verify(ctx context.Context, secret, token string) (*SiteVerifyResponse, error) {
	endpoint, err := url.Parse(c.VerifyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid verify url: %w", err)
	}
	q := endpoint.Query()
	q.Set("secret", secret)
	q.Set("response", token)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var result SiteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode siteverify response: %w", err)
	}

	return &result, nil
}

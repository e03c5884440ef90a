// Package scoringhttp implements ports.ScoringPort against the HTTP score
// API (POST /api/score).
package scoringhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"riichi/internal/ports"
)

const defaultTimeout = 10 * time.Second

// Client calls the score API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a score API client for the given base URL, e.g.
// "http://127.0.0.1:8000". httpClient may be nil to use a default with a
// request timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Score posts the hand description and decodes the scoring result.
func (c *Client) Score(ctx context.Context, req ports.ScoreRequest) (ports.ScoreResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ports.ScoreResponse{}, fmt.Errorf("failed to marshal score request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/score", bytes.NewReader(body))
	if err != nil {
		return ports.ScoreResponse{}, fmt.Errorf("failed to build score request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return ports.ScoreResponse{}, fmt.Errorf("score request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return ports.ScoreResponse{}, fmt.Errorf("score api returned status %d", httpResp.StatusCode)
	}

	var resp ports.ScoreResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return ports.ScoreResponse{}, fmt.Errorf("failed to decode score response: %w", err)
	}
	return resp, nil
}

// Healthy probes the score API's health endpoint.
func (c *Client) Healthy(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health probe failed: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("score api unhealthy: status %d", httpResp.StatusCode)
	}
	return nil
}

var _ ports.ScoringPort = (*Client)(nil)

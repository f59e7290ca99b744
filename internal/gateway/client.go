// Package gateway provides the HTTP client for the glint analytics backend.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/glintlabs/glint/internal/common"
	"github.com/glintlabs/glint/internal/model"
	"github.com/glintlabs/glint/internal/service"
	"github.com/goccy/go-json"
)

// Config holds backend API configuration.
type Config struct {
	BaseURL string
	APIKey  string
	// Account scopes every request to one connected business account.
	Account string
	Timeout time.Duration
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: gateway base URL is required", common.ErrMissingConfig)
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("%w: invalid gateway base URL: %v", common.ErrInvalidConfig, err)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: gateway API key is required", common.ErrMissingConfig)
	}
	return nil
}

// APIError is a structured error returned by the backend. Its message is the
// server's error string; the onboarding error classifier matches against it.
type APIError struct {
	Message    string `json:"error"`
	Code       string `json:"code,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the glint backend over HTTP+JSON. Every call is a single
// attempt: sync completion is handled by polling, and user-submitted actions
// surface their failure for an explicit retry, so the client never retries on
// its own.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	account    string
}

// NewClient creates a new backend client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		account:    cfg.Account,
		logger:     slog.Default().With("component", "gateway"),
	}, nil
}

// do issues one request and decodes the JSON response into out (when out is
// non-nil). Non-2xx responses are returned as *APIError when the body carries
// a server error string.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if c.account != "" {
		req.Header.Set("X-Glint-Account", c.account)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.extractError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// extractError turns a non-2xx response into an *APIError, falling back to a
// status-only error when the body is not the expected shape.
func (c *Client) extractError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	apiErr := APIError{StatusCode: resp.StatusCode}
	if jsonErr := json.Unmarshal(raw, &apiErr); jsonErr == nil && apiErr.Message != "" {
		c.logger.Debug("Backend error", "status", resp.StatusCode, "code", apiErr.Code, "message", apiErr.Message)
		return &apiErr
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: backend returned status %d", common.ErrUnauthorized, resp.StatusCode)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: backend returned status %d", common.ErrGatewayUnavailable, resp.StatusCode)
	}
	return fmt.Errorf("backend returned status %d", resp.StatusCode)
}

// StartAnalysis kicks off analysis of the synced data and returns the focus
// candidates the backend offers.
func (c *Client) StartAnalysis(ctx context.Context) (*model.AnalysisResult, error) {
	c.logger.Info("Starting analysis")

	var result model.AnalysisResult
	if err := c.do(ctx, http.MethodPost, "/v1/onboarding/analyze", nil, &result); err != nil {
		return nil, err
	}

	c.logger.Info("Analysis returned candidates", "count", len(result.Candidates))
	return &result, nil
}

// SelectFocusAreas submits the chosen candidate ids and returns any follow-up
// refinement questions. An empty slice means refinement can be skipped.
func (c *Client) SelectFocusAreas(ctx context.Context, ids []string) ([]model.RefinementQuestion, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one focus area id is required")
	}

	c.logger.Info("Submitting focus areas", "count", len(ids))

	payload := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}

	var result struct {
		Questions []model.RefinementQuestion `json:"questions"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/onboarding/focus", payload, &result); err != nil {
		return nil, err
	}
	return result.Questions, nil
}

// SubmitRefinement submits the full answer map and returns the generation
// summary once the backend has built the dashboard.
func (c *Client) SubmitRefinement(ctx context.Context, answers map[string]model.Answer) (*model.GenerationSummary, error) {
	c.logger.Info("Submitting refinement answers", "count", len(answers))

	payload := struct {
		Answers map[string]model.Answer `json:"answers"`
	}{Answers: answers}
	if payload.Answers == nil {
		payload.Answers = map[string]model.Answer{}
	}

	var summary model.GenerationSummary
	if err := c.do(ctx, http.MethodPost, "/v1/onboarding/refine", payload, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetSyncStatus fetches the per-entity status of the remote sync process.
func (c *Client) GetSyncStatus(ctx context.Context) (*model.SyncStatus, error) {
	var status model.SyncStatus
	if err := c.do(ctx, http.MethodGet, "/v1/sync/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TriggerSync asks the backend to start a sync run. Fire-and-forget: callers
// ignore the error beyond logging it.
func (c *Client) TriggerSync(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/sync/trigger", nil, nil)
}

// GetConnectionStatus reports whether a source system is connected to the
// account.
func (c *Client) GetConnectionStatus(ctx context.Context) (bool, error) {
	var result struct {
		Connected bool `json:"connected"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/connection", nil, &result); err != nil {
		return false, err
	}
	return result.Connected, nil
}

// GetConfig fetches the durable onboarding/dashboard configuration. A missing
// config is not an error: it returns (nil, nil).
func (c *Client) GetConfig(ctx context.Context) (*model.DashboardConfig, error) {
	var cfg model.DashboardConfig
	err := c.do(ctx, http.MethodGet, "/v1/dashboard/config", nil, &cfg)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		if strings.Contains(err.Error(), "status 404") {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// ClearConfig deletes the persisted configuration so onboarding can run again.
func (c *Client) ClearConfig(ctx context.Context) error {
	c.logger.Info("Clearing dashboard configuration")
	return c.do(ctx, http.MethodDelete, "/v1/dashboard/config", nil, nil)
}

// GetWidgets fetches the generated dashboard widgets.
func (c *Client) GetWidgets(ctx context.Context) ([]model.Widget, error) {
	var result struct {
		Widgets []model.Widget `json:"widgets"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/dashboard/widgets", nil, &result); err != nil {
		return nil, err
	}
	return result.Widgets, nil
}

// GetInsights fetches the generated insights.
func (c *Client) GetInsights(ctx context.Context) ([]model.Insight, error) {
	var result struct {
		Insights []model.Insight `json:"insights"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/dashboard/insights", nil, &result); err != nil {
		return nil, err
	}
	return result.Insights, nil
}

// GetDataUsage fetches the account's data-usage summary.
func (c *Client) GetDataUsage(ctx context.Context) (*model.DataUsage, error) {
	var usage model.DataUsage
	if err := c.do(ctx, http.MethodGet, "/v1/dashboard/usage", nil, &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

// Ensure Client implements the Gateway interface.
var _ service.Gateway = (*Client)(nil)

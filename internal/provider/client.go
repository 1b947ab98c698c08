// Package provider implements the HTTP client for the external generation
// service. Submissions are acknowledged with an opaque handle; results are
// fetched by polling the status endpoint with that handle.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

// maxResponseBodyBytes bounds how much of a provider response is read into
// memory. Generated reports fit comfortably; anything larger is hostile.
const maxResponseBodyBytes = 4 << 20

// Config captures the connection settings for the generation service.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
	Logger  *slog.Logger
}

// Client talks to the generation service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient builds a generation service client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("provider base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid provider base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		client:  hc,
		logger:  logger.With("component", "provider_client"),
	}, nil
}

type submitPayload struct {
	Prompt      string            `json:"prompt"`
	Model       string            `json:"model,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type submitResponse struct {
	JobID     string `json:"job_id"`
	StatusURL string `json:"status_url"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Progress *int   `json:"progress,omitempty"`
	Result   string `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Submit sends a generation request and returns the provider's handle.
// Rejections (4xx) are permanent; transport failures and 5xx are transient
// and safe to retry.
func (c *Client) Submit(ctx context.Context, req core.SubmitRequest) (*core.SubmitResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, apperrors.Validation("prompt is required")
	}

	body, err := json.Marshal(submitPayload{
		Prompt:      req.Prompt,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("encode submit payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create submit request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.ProviderTransient("generation service unreachable", err)
	}
	data, err := readBody(resp)
	if err != nil {
		return nil, apperrors.ProviderTransient("read submit response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError("submission", resp.StatusCode, data)
	}

	var out submitResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperrors.ProviderSubmission("malformed submit response", err)
	}
	if out.JobID == "" {
		return nil, apperrors.ProviderSubmission("submit response missing job id", nil)
	}
	return &core.SubmitResult{JobID: out.JobID, StatusURL: out.StatusURL}, nil
}

// GetStatus fetches one poll observation for a handle. The provider's
// queued|running vocabulary is mapped to queued|processing here so callers
// never see raw provider statuses.
func (c *Client) GetStatus(ctx context.Context, externalID string) (*core.GenerationStatus, error) {
	if externalID == "" {
		return nil, apperrors.Validation("external id is required")
	}

	statusURL := c.baseURL + "/v1/generations/" + url.PathEscape(externalID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.ProviderTransient("generation service unreachable", err)
	}
	data, err := readBody(resp)
	if err != nil {
		return nil, apperrors.ProviderTransient("read status response", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.ProviderSubmission(
			fmt.Sprintf("generation %s unknown to provider", externalID), nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError("status poll", resp.StatusCode, data)
	}

	var out statusResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperrors.ProviderTransient("malformed status response", err)
	}

	mapped, err := mapExternalStatus(out.Status)
	if err != nil {
		return nil, err
	}
	progress := out.Progress
	if progress != nil {
		p := clampProgress(*progress)
		progress = &p
	}
	return &core.GenerationStatus{
		Status:   mapped,
		Progress: progress,
		Result:   out.Result,
		Error:    out.Error,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) statusError(op string, statusCode int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 240 {
		detail = detail[:240]
	}
	msg := fmt.Sprintf("%s rejected with status %d", op, statusCode)
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	if statusCode >= 500 || statusCode == http.StatusTooManyRequests {
		return apperrors.ProviderTransient(msg, nil)
	}
	return apperrors.ProviderSubmission(msg, nil)
}

func readBody(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, maxResponseBodyBytes+1)
	data, readErr := io.ReadAll(limited)
	closeErr := resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if closeErr != nil {
		return nil, closeErr
	}
	if len(data) > maxResponseBodyBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxResponseBodyBytes)
	}
	return data, nil
}

func mapExternalStatus(raw string) (model.ExternalStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "queued", "pending":
		return model.ExternalQueued, nil
	case "running", "processing":
		return model.ExternalProcessing, nil
	case "succeeded", "completed":
		return model.ExternalCompleted, nil
	case "failed", "errored":
		return model.ExternalFailed, nil
	default:
		return "", apperrors.ProviderTransient(fmt.Sprintf("unknown provider status %q", raw), nil)
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Package vapi is a thin REST client for the Vapi voice-call API. Only the
// fields the sync pipeline reads are decoded.
package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bencullenn/chronicle-voice/internal/models"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.vapi.ai"

// Client talks to the Vapi HTTP API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the Vapi client.
type Config struct {
	APIKey  string
	BaseURL string // Override for tests; defaults to the public API.
	Timeout time.Duration
}

// wireCall mirrors the subset of the provider's call object the pipeline
// reads. The transcript may live either on the call itself or inside the
// recording artifact depending on call age.
type wireCall struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Transcript string `json:"transcript"`
	CreatedAt  string `json:"createdAt"`
	StartedAt  string `json:"startedAt"`
	EndedAt    string `json:"endedAt"`
	Artifact   *struct {
		Transcript string `json:"transcript"`
	} `json:"artifact"`
}

type wireCreateCallRequest struct {
	AssistantID   string `json:"assistantId"`
	PhoneNumberID string `json:"phoneNumberId,omitempty"`
	Customer      struct {
		Number string `json:"number"`
	} `json:"customer"`
}

type wireCreateCallResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// NewClient creates a new Vapi client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vapi API key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}

	logger.Info("Vapi client initialized", zap.String("base_url", cfg.BaseURL))

	return client, nil
}

// ListCalls fetches every call the provider reports, most recent first.
func (c *Client) ListCalls(ctx context.Context) ([]models.Call, error) {
	body, err := c.do(ctx, http.MethodGet, "/call", nil)
	if err != nil {
		return nil, &models.ProviderError{Op: "list calls", Err: err}
	}

	var wire []wireCall
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &models.ProviderError{Op: "list calls", Err: fmt.Errorf("decode response: %w", err)}
	}

	calls := make([]models.Call, 0, len(wire))
	for _, w := range wire {
		calls = append(calls, w.toCall())
	}

	c.logger.Debug("Fetched call list", zap.Int("count", len(calls)))
	return calls, nil
}

// GetCall fetches a single call's detail, including its transcript.
func (c *Client) GetCall(ctx context.Context, id string) (*models.Call, error) {
	body, err := c.do(ctx, http.MethodGet, "/call/"+id, nil)
	if err != nil {
		return nil, &models.ProviderError{Op: "get call " + id, Err: err}
	}

	var w wireCall
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &models.ProviderError{Op: "get call " + id, Err: fmt.Errorf("decode response: %w", err)}
	}

	call := w.toCall()
	return &call, nil
}

// CreateCall places an outbound call to number using the given assistant.
func (c *Client) CreateCall(ctx context.Context, assistantID, phoneNumberID, number string) (*models.CallStatus, error) {
	req := wireCreateCallRequest{
		AssistantID:   assistantID,
		PhoneNumberID: phoneNumberID,
	}
	req.Customer.Number = number

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &models.ProviderError{Op: "create call", Err: fmt.Errorf("marshal request: %w", err)}
	}

	body, err := c.do(ctx, http.MethodPost, "/call", payload)
	if err != nil {
		return nil, &models.ProviderError{Op: "create call", Err: err}
	}

	var resp wireCreateCallResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &models.ProviderError{Op: "create call", Err: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.Info("Outbound call placed",
		zap.String("call_id", resp.ID),
		zap.String("status", resp.Status))

	return &models.CallStatus{
		CallID:      resp.ID,
		Status:      resp.Status,
		AssistantID: assistantID,
		Timestamp:   time.Now(),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Vapi API error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func (w wireCall) toCall() models.Call {
	transcript := w.Transcript
	if transcript == "" && w.Artifact != nil {
		transcript = w.Artifact.Transcript
	}
	return models.Call{
		ID:         w.ID,
		Title:      w.Name,
		Transcript: transcript,
		CreatedAt:  w.CreatedAt,
		StartedAt:  w.StartedAt,
		EndedAt:    w.EndedAt,
	}
}

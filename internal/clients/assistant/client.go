// Package assistant is a REST client for the hosted assistants API (threads, messages and runs)
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultAssistantID = "asst_x73uyEtK0Ye5upLjW63hbA7A"
	contentTypeJSON    = "application/json"
	betaHeader         = "assistants=v2"
)

// Run statuses reported by the API
const (
	RunQueued     = "queued"
	RunInProgress = "in_progress"
	RunCompleted  = "completed"
	RunFailed     = "failed"
	RunCancelled  = "cancelled"
	RunExpired    = "expired"
)

// Config configures the client
type Config struct {
	BaseURL     string
	APIKey      string
	AssistantID string
	Timeout     time.Duration
	// Transport overrides the base round tripper; it is still wrapped for tracing
	Transport http.RoundTripper
}

// Run is the state of one assistant execution on a thread
type Run struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	LastError *models.RunError `json:"last_error"`
}

// APIError is a non-2xx answer from the API
type APIError struct {
	StatusCode int
	Op         string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("assistant api %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

type Client struct {
	baseURL     string
	apiKey      string
	assistantID string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a client. Empty fields of cfg fall back to the public defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	assistantID := cfg.AssistantID
	if assistantID == "" {
		assistantID = DefaultAssistantID
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		assistantID: assistantID,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		logger: logger,
	}
}

// CreateThread opens a new conversation thread and returns its id
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var thread struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/threads", "create thread", map[string]any{}, &thread); err != nil {
		return "", err
	}
	return thread.ID, nil
}

// AddMessage appends a user message to the thread
func (c *Client) AddMessage(ctx context.Context, threadID, content string) error {
	body := map[string]string{
		"role":    "user",
		"content": content,
	}
	return c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", "add message", body, nil)
}

// CreateRun starts the configured assistant on the thread
func (c *Client) CreateRun(ctx context.Context, threadID string) (*Run, error) {
	run := &Run{}
	body := map[string]string{"assistant_id": c.assistantID}
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", "create run", body, run); err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun fetches the current state of a run
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	run := &Run{}
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, "get run", nil, run); err != nil {
		return nil, err
	}
	return run, nil
}

// LatestMessage returns the text of the newest message on the thread.
// The API lists messages newest first.
func (c *Client) LatestMessage(ctx context.Context, threadID string) (string, error) {
	var list struct {
		Data []struct {
			Content []struct {
				Type string `json:"type"`
				Text *struct {
					Value string `json:"value"`
				} `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages", "list messages", nil, &list); err != nil {
		return "", err
	}

	if len(list.Data) == 0 || len(list.Data[0].Content) == 0 || list.Data[0].Content[0].Text == nil {
		return "", nil
	}
	return list.Data[0].Content[0].Text.Value, nil
}

func (c *Client) do(ctx context.Context, method, path, op string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", betaHeader)
	if in != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("assistant api returned error status",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
		)
		return &APIError{StatusCode: resp.StatusCode, Op: op, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

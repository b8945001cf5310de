// Package gateway calls a remote chat-with-assistant endpoint over HTTP
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxResponseSize = 4 * 1024 * 1024

// Client sends assistant requests to a gateway deployed elsewhere
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client posting to url. apiKey, when set, is sent as X-API-Key.
func NewClient(url, apiKey string, timeout time.Duration, transport http.RoundTripper, logger *zap.Logger) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		logger: logger,
	}
}

// Chat posts req to the gateway.
// A classified error body is returned as *models.GatewayError; anything else unexpected is a plain error.
func (c *Client) Chat(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call gateway: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	resp := &models.AssistantResponse{}
	decodeErr := json.Unmarshal(body, resp)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		if decodeErr == nil && resp.ErrorType != "" {
			return nil, &models.GatewayError{StatusCode: httpResp.StatusCode, Response: resp}
		}
		c.logger.Warn("gateway returned an unclassified error",
			zap.Int("status", httpResp.StatusCode),
			zap.Int("body_bytes", len(body)),
		)
		return nil, fmt.Errorf("gateway returned status %d", httpResp.StatusCode)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", decodeErr)
	}
	return resp, nil
}

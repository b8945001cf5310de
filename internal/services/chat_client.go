package services

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/VictorTadashi/AnimaFlow/internal/metrics"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/VictorTadashi/AnimaFlow/internal/retry"
	"go.uber.org/zap"
)

// Gateway is the interface that wraps a single assistant exchange.
//
// A classified failure is returned as *models.GatewayError; any other error is a transport failure.
type Gateway interface {
	Chat(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error)
}

const (
	// InitialPromptAttempts is the attempt budget of the first wizard prompt
	InitialPromptAttempts = 3
	// ChatTurnAttempts is the attempt budget of follow-up chat turns
	ChatTurnAttempts = 2

	transportRetryDelay = 2 * time.Second
	gatewayRetryDelay   = 3 * time.Second
)

const (
	msgClientKeyMissing   = "Chave da API do OpenAI não configurada. Entre em contato com o administrador."
	msgClientKeyInvalid   = "Chave da API do OpenAI é inválida. Verifique a configuração."
	msgClientSlow         = "O assistente está demorando para responder. Tente novamente."
	msgClientTooMany      = "Muitas solicitações. Aguarde um momento antes de tentar novamente."
	msgClientNetwork      = "Erro de conexão. Verifique sua internet e tente novamente."
	msgClientCommunicate  = "Erro de comunicação com o assistente"
	msgClientExhausted    = "Erro inesperado após todas as tentativas"
	msgClientBusy         = "Já existe uma solicitação em andamento. Aguarde a resposta do assistente."
	msgGatewayConfig      = "Configuração da API não encontrada. Entre em contato com o suporte."
	msgGatewayAuth        = "Problema de autenticação com o OpenAI. Verifique a configuração."
	msgGatewaySlow        = "O assistente está demorando para responder."
	msgGatewayRateLimit   = "Limite de uso atingido. Aguarde alguns minutos antes de tentar novamente."
	msgGatewayFailed      = "Falha na execução do assistente."
	msgGatewayCancelled   = "A execução foi cancelada. Tente novamente."
	msgGatewayExpired     = "A execução expirou. Tente com uma pergunta mais específica."
	msgGatewayUnknown     = "Erro desconhecido do assistente"
	suggestionsHeader     = "\n\nSugestões:\n"
	suggestionsBullet     = "• "
)

// attemptError is the user-facing outcome of one failed attempt
type attemptError struct {
	message   string
	retryable bool
	delay     time.Duration
	cause     error
}

func (e *attemptError) Error() string {
	return e.message
}

func (e *attemptError) Unwrap() error {
	return e.cause
}

// chatClient keeps the thread of one editing conversation and retries failed exchanges
type chatClient struct {
	gateway Gateway
	metrics *metrics.Metrics
	logger  *zap.Logger
	timer   retry.Timer
	now     func() time.Time

	mu       sync.Mutex
	threadID string
	inFlight bool
}

// NewChatClient creates a chat client bound to a gateway
func NewChatClient(gateway Gateway, m *metrics.Metrics, logger *zap.Logger) *chatClient {
	return &chatClient{
		gateway: gateway,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// ThreadID returns the thread of the last successful exchange, or "" before the first one
func (c *chatClient) ThreadID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threadID
}

// InFlight reports whether a SendMessage call is running
func (c *chatClient) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// SendMessage sends text to the assistant, making at most maxAttempts attempts.
//
// It never fails with a Go error: when every attempt fails it returns an error-status
// response of type client_error carrying the last user-facing message.
// Transport failures that look transient are retried after 2 seconds, gateway errors
// declared retryable after 3 seconds, anything else ends the loop at once.
func (c *chatClient) SendMessage(ctx context.Context, text string, maxAttempts int) *models.AssistantResponse {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return c.failure(msgClientBusy)
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	var (
		result  *models.AssistantResponse
		lastErr *attemptError
	)

	policy := retry.Policy{
		MaxAttempts: maxAttempts,
		Timer:       c.timer,
		Retryable: func(err error) bool {
			var ae *attemptError
			return errors.As(err, &ae) && ae.retryable
		},
		Delay: func(err error) time.Duration {
			var ae *attemptError
			if errors.As(err, &ae) {
				return ae.delay
			}
			return transportRetryDelay
		},
		OnRetry: func(err error, attempt int, wait time.Duration) {
			c.logger.Info("retrying assistant message",
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", maxAttempts),
				zap.Duration("wait", wait),
				zap.String("reason", err.Error()),
			)
		},
	}

	err := policy.Do(ctx, func(attempt int) error {
		req := models.AssistantRequest{Message: text}
		if threadID := c.ThreadID(); threadID != "" {
			req.ThreadID = &threadID
		}

		resp, err := c.gateway.Chat(ctx, req)
		if err == nil && resp.Succeeded() {
			c.metrics.RecordChatAttempt("success")
			result = resp
			return nil
		}

		lastErr = classifyAttempt(resp, err)
		if lastErr.retryable {
			c.metrics.RecordChatAttempt("retryable")
		} else {
			c.metrics.RecordChatAttempt("fatal")
		}
		c.logger.Warn("assistant message attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Bool("retryable", lastErr.retryable),
			zap.Error(lastErr.cause),
		)
		return lastErr
	})

	if err == nil {
		c.mu.Lock()
		c.threadID = result.ThreadID
		c.mu.Unlock()
		return result
	}

	if lastErr == nil {
		return c.failure(msgClientExhausted)
	}
	return c.failure(lastErr.message)
}

func (c *chatClient) failure(message string) *models.AssistantResponse {
	return &models.AssistantResponse{
		ThreadID:  c.ThreadID(),
		Status:    models.StatusError,
		Error:     message,
		ErrorType: models.ErrorClient,
		Timestamp: c.now().UTC().Format(isoMillis),
	}
}

// classifyAttempt maps a failed exchange to its user-facing message and retry behaviour
func classifyAttempt(resp *models.AssistantResponse, err error) *attemptError {
	var gwErr *models.GatewayError
	if errors.As(err, &gwErr) {
		return classifyGatewayResponse(gwErr.Response, err)
	}
	if err != nil {
		return classifyTransport(err)
	}
	if resp == nil {
		return classifyTransport(errors.New("empty gateway response"))
	}
	// an error-status body delivered without a Go error is still a gateway verdict
	return classifyGatewayResponse(resp, errors.New(resp.Error))
}

func classifyGatewayResponse(resp *models.AssistantResponse, cause error) *attemptError {
	ae := &attemptError{delay: gatewayRetryDelay, cause: cause}

	switch resp.ErrorType {
	case models.ErrorMissingAPIKey:
		ae.message = msgGatewayConfig
	case models.ErrorInvalidAPIKey, models.ErrorInvalidAPIKeyFormat:
		ae.message = msgGatewayAuth
	case models.ErrorTimeout, models.ErrorTimeoutError:
		ae.message = withSuggestions(orDefault(resp.Error, msgGatewaySlow), resp.Details)
		ae.retryable = true
	case models.ErrorRateLimit:
		ae.message = msgGatewayRateLimit
		ae.retryable = true
	case models.ErrorExecutionFailed:
		ae.message = withSuggestions(orDefault(resp.Error, msgGatewayFailed), resp.Details)
	case models.ErrorExecutionCancelled:
		ae.message = msgGatewayCancelled
		ae.retryable = true
	case models.ErrorExecutionExpired:
		ae.message = msgGatewayExpired
	default:
		ae.message = orDefault(resp.Error, msgGatewayUnknown)
	}
	return ae
}

func classifyTransport(err error) *attemptError {
	ae := &attemptError{message: msgClientCommunicate, delay: transportRetryDelay, cause: err}

	text := err.Error()
	lower := strings.ToLower(text)
	var netErr net.Error

	switch {
	case strings.Contains(text, "OPENAI_API_KEY"):
		ae.message = msgClientKeyMissing
	case strings.Contains(lower, "invalid") && strings.Contains(lower, "key"):
		ae.message = msgClientKeyInvalid
	case strings.Contains(lower, "timeout") || errors.Is(err, context.DeadlineExceeded):
		ae.message = msgClientSlow
		ae.retryable = true
	case strings.Contains(lower, "rate limit"):
		ae.message = msgClientTooMany
		ae.retryable = true
	case strings.Contains(lower, "network") || strings.Contains(lower, "fetch") ||
		strings.Contains(lower, "connection") || errors.As(err, &netErr):
		ae.message = msgClientNetwork
		ae.retryable = true
	}
	return ae
}

func withSuggestions(message string, details *models.ErrorDetails) string {
	if details == nil || len(details.Suggestions) == 0 {
		return message
	}
	return message + suggestionsHeader + suggestionsBullet + strings.Join(details.Suggestions, "\n"+suggestionsBullet)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

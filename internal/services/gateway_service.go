package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/VictorTadashi/AnimaFlow/internal/clients/assistant"
	"github.com/VictorTadashi/AnimaFlow/internal/metrics"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"go.uber.org/zap"
)

// AssistantAPI is the interface that wraps the remote assistant operations used by the gateway
type AssistantAPI interface {
	// Method CreateThread opens a new conversation thread and returns its id.
	CreateThread(ctx context.Context) (string, error)
	// Method AddMessage appends a user message to the thread.
	AddMessage(ctx context.Context, threadID, content string) error
	// Method CreateRun starts the assistant on the thread.
	CreateRun(ctx context.Context, threadID string) (*assistant.Run, error)
	// Method GetRun returns the current state of a run.
	GetRun(ctx context.Context, threadID, runID string) (*assistant.Run, error)
	// Method LatestMessage returns the text of the newest thread message, or "" when there is none.
	LatestMessage(ctx context.Context, threadID string) (string, error)
}

// GatewayConfig holds the credential and polling schedule of the gateway
type GatewayConfig struct {
	APIKey       string
	MaxPolls     int
	FastPolls    int
	FastInterval time.Duration
	SlowInterval time.Duration
}

// DefaultGatewayConfig polls every second for the first 30 polls, then every 2 seconds, 120 polls at most
func DefaultGatewayConfig(apiKey string) GatewayConfig {
	return GatewayConfig{
		APIKey:       apiKey,
		MaxPolls:     120,
		FastPolls:    30,
		FastInterval: time.Second,
		SlowInterval: 2 * time.Second,
	}
}

const (
	msgMissingAPIKey       = "Chave da API do OpenAI não configurada. Por favor, configure a variável OPENAI_API_KEY no servidor."
	msgInvalidAPIKeyFormat = "Chave da API do OpenAI parece ser inválida. Verifique se está no formato correto."
	msgInvalidAPIKey       = "Chave da API do OpenAI é inválida ou expirou. Verifique suas credenciais."
	msgRunTimeout          = "O assistente está processando sua solicitação há mais de 2 minutos. Isso pode indicar uma consulta complexa. Tente reformular sua pergunta de forma mais específica ou aguarde alguns minutos antes de tentar novamente."
	msgRunFailed           = "Falha na execução do assistente: "
	msgRunFailedUnknown    = "Erro desconhecido"
	msgRunCancelled        = "A execução foi cancelada. Tente novamente."
	msgRunExpired          = "A execução expirou. Tente novamente com uma pergunta mais específica."
	msgRunUnexpected       = "Execução em estado inesperado: "
	msgEmptyReply          = "Resposta do assistente está vazia"

	isoMillis = "2006-01-02T15:04:05.000Z"
)

var (
	timeoutSuggestions = []string{
		"Tente reformular sua pergunta de forma mais específica",
		"Divida consultas complexas em partes menores",
		"Aguarde alguns minutos antes de tentar novamente",
	}
	failureSuggestions = []string{
		"Tente reformular sua pergunta",
		"Verifique se sua solicitação está clara e específica",
		"Aguarde alguns minutos antes de tentar novamente",
	}
)

// gatewayStep names the remote call that failed, in the words shown to the user
type gatewayStep string

const (
	stepCreateThread gatewayStep = "Falha ao criar thread"
	stepAddMessage   gatewayStep = "Falha ao adicionar mensagem"
	stepCreateRun    gatewayStep = "Falha ao executar assistente"
	stepGetRun       gatewayStep = "Falha ao verificar status"
	stepListMessages gatewayStep = "Falha ao buscar mensagens"
)

type gatewayService struct {
	api     AssistantAPI
	cfg     GatewayConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
}

// NewGatewayService creates a new assistant gateway
func NewGatewayService(api AssistantAPI, cfg GatewayConfig, m *metrics.Metrics, logger *zap.Logger) *gatewayService {
	return &gatewayService{
		api:     api,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		sleep:   sleepContext,
		now:     time.Now,
	}
}

// Chat forwards one user message to the assistant and waits for its reply.
//
// The thread in req is reused when present, otherwise a new one is created.
// Failures are returned as *models.GatewayError carrying the classified response and its HTTP status.
func (s *gatewayService) Chat(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error) {
	start := s.now()
	resp, polls, err := s.chat(ctx, req)

	outcome := "success"
	var gwErr *models.GatewayError
	if errors.As(err, &gwErr) {
		outcome = string(gwErr.Response.ErrorType)
		s.logger.Warn("assistant call failed",
			zap.String("error_type", outcome),
			zap.Int("status", gwErr.StatusCode),
			zap.Int("polls", polls),
		)
	} else if resp != nil {
		s.logger.Info("assistant call completed",
			zap.String("thread_id", resp.ThreadID),
			zap.Int("polls", polls),
		)
	}
	s.metrics.RecordGateway(outcome, polls, s.now().Sub(start))

	return resp, err
}

func (s *gatewayService) chat(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, int, error) {
	if s.cfg.APIKey == "" {
		return nil, 0, gatewayFailure(http.StatusInternalServerError, models.ErrorMissingAPIKey, msgMissingAPIKey, nil)
	}
	if !strings.HasPrefix(s.cfg.APIKey, "sk-") {
		return nil, 0, gatewayFailure(http.StatusInternalServerError, models.ErrorInvalidAPIKeyFormat, msgInvalidAPIKeyFormat, nil)
	}

	threadID := ""
	if req.ThreadID != nil {
		threadID = *req.ThreadID
	}
	if threadID == "" {
		id, err := s.api.CreateThread(ctx)
		if err != nil {
			var apiErr *assistant.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
				return nil, 0, gatewayFailure(http.StatusUnauthorized, models.ErrorInvalidAPIKey, msgInvalidAPIKey, nil)
			}
			return nil, 0, s.classify(err, stepCreateThread)
		}
		threadID = id
		s.logger.Debug("created assistant thread", zap.String("thread_id", threadID))
	}

	if err := s.api.AddMessage(ctx, threadID, req.Message); err != nil {
		return nil, 0, s.classify(err, stepAddMessage)
	}

	run, err := s.api.CreateRun(ctx, threadID)
	if err != nil {
		return nil, 0, s.classify(err, stepCreateRun)
	}
	runID := run.ID

	polls := 0
	for isPending(run.Status) && polls < s.cfg.MaxPolls {
		interval := s.cfg.SlowInterval
		if polls < s.cfg.FastPolls {
			interval = s.cfg.FastInterval
		}
		if err := s.sleep(ctx, interval); err != nil {
			return nil, polls, s.classify(err, stepGetRun)
		}

		run, err = s.api.GetRun(ctx, threadID, runID)
		if err != nil {
			return nil, polls, s.classify(err, stepGetRun)
		}
		polls++
	}

	switch {
	case run.Status == assistant.RunCompleted:
	case run.Status == assistant.RunFailed:
		reason := msgRunFailedUnknown
		if run.LastError != nil && run.LastError.Message != "" {
			reason = run.LastError.Message
		}
		return nil, polls, gatewayFailure(http.StatusInternalServerError, models.ErrorExecutionFailed, msgRunFailed+reason, &models.ErrorDetails{
			RunID:       runID,
			LastError:   run.LastError,
			Suggestions: failureSuggestions,
		})
	case run.Status == assistant.RunCancelled:
		return nil, polls, gatewayFailure(http.StatusInternalServerError, models.ErrorExecutionCancelled, msgRunCancelled, nil)
	case run.Status == assistant.RunExpired:
		return nil, polls, gatewayFailure(http.StatusInternalServerError, models.ErrorExecutionExpired, msgRunExpired, nil)
	case isPending(run.Status):
		return nil, polls, gatewayFailure(http.StatusRequestTimeout, models.ErrorTimeout, msgRunTimeout, &models.ErrorDetails{
			Attempts:    polls,
			MaxAttempts: s.cfg.MaxPolls,
			LastStatus:  run.Status,
			Suggestions: timeoutSuggestions,
		})
	default:
		return nil, polls, gatewayFailure(http.StatusInternalServerError, models.ErrorExecutionUnexpected, msgRunUnexpected+run.Status, &models.ErrorDetails{
			RunID:     runID,
			RunStatus: run.Status,
		})
	}

	reply, err := s.api.LatestMessage(ctx, threadID)
	if err != nil {
		return nil, polls, s.classify(err, stepListMessages)
	}
	if reply == "" {
		resp := &models.AssistantResponse{
			Error:     msgEmptyReply,
			Status:    models.StatusError,
			ErrorType: models.ErrorInternal,
			Timestamp: s.now().UTC().Format(isoMillis),
		}
		return nil, polls, &models.GatewayError{StatusCode: http.StatusInternalServerError, Response: resp}
	}

	return &models.AssistantResponse{
		ThreadID: threadID,
		Message:  reply,
		Status:   models.StatusSuccess,
	}, polls, nil
}

// classify turns an unexpected failure into one of the catch-all error classes
func (s *gatewayService) classify(err error, step gatewayStep) error {
	var apiErr *assistant.APIError
	isAPIErr := errors.As(err, &apiErr)

	status, errorType := http.StatusInternalServerError, models.ErrorInternal
	switch {
	case isAPIErr && apiErr.StatusCode == http.StatusUnauthorized:
		status, errorType = http.StatusUnauthorized, models.ErrorAPIKey
	case isTimeout(err):
		status, errorType = http.StatusRequestTimeout, models.ErrorTimeoutError
	case isAPIErr && apiErr.StatusCode == http.StatusTooManyRequests:
		status, errorType = http.StatusTooManyRequests, models.ErrorRateLimit
	case step == stepCreateThread:
		status, errorType = http.StatusBadRequest, models.ErrorThread
	}

	s.logger.Error("assistant request failed", zap.String("step", string(step)), zap.Error(err))

	resp := &models.AssistantResponse{
		Error:     string(step) + ": " + err.Error(),
		Status:    models.StatusError,
		ErrorType: errorType,
		Timestamp: s.now().UTC().Format(isoMillis),
	}
	return &models.GatewayError{StatusCode: status, Response: resp}
}

func gatewayFailure(status int, errorType models.ErrorType, message string, details *models.ErrorDetails) error {
	return &models.GatewayError{
		StatusCode: status,
		Response: &models.AssistantResponse{
			Error:     message,
			Status:    models.StatusError,
			ErrorType: errorType,
			Details:   details,
		},
	}
}

func isPending(status string) bool {
	return status == assistant.RunQueued || status == assistant.RunInProgress
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

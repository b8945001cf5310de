package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/VictorTadashi/AnimaFlow/internal/content"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AssistantGateway is the interface that wraps one request/reply exchange with the hosted assistant.
type AssistantGateway interface {
	// Method Chat sends the message to the thread in req (or a new thread) and waits for the reply.
	//
	// Classified failures are returned as *models.GatewayError carrying the HTTP status to answer with.
	Chat(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error)
}

// AssistantHandler exposes the assistant gateway and the reply extractor
type AssistantHandler struct {
	BaseHandler
	gateway AssistantGateway
	now     func() time.Time
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(gateway AssistantGateway, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{
		gateway:     gateway,
		now:         time.Now,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all assistant handler routes
func (h *AssistantHandler) RegisterRoutes(r chi.Router) {
	r.Post("/chat-with-assistant", h.Chat)
	r.Post("/content/extract", h.Extract)
}

// Chat handles POST /api/v1/chat-with-assistant
// @Summary Chat with the assistant
// @Description Send one message to the lesson assistant and wait for its reply. A missing threadId starts a new conversation.
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body models.AssistantRequest true "Message and optional thread"
// @Success 200 {object} models.AssistantResponse
// @Failure 400 {object} models.AssistantResponse
// @Failure 401 {object} models.AssistantResponse
// @Failure 408 {object} models.AssistantResponse
// @Failure 429 {object} models.AssistantResponse
// @Failure 500 {object} models.AssistantResponse
// @Security ApiKeyAuth
// @Router /api/v1/chat-with-assistant [post]
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.AssistantRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, h.failure(models.ErrorInternal, msgInvalidBody))
		return
	}

	// The run keeps going if the client disconnects; the gateway has its own polling ceiling.
	resp, err := h.gateway.Chat(context.WithoutCancel(r.Context()), req)
	if err != nil {
		var gwErr *models.GatewayError
		if errors.As(err, &gwErr) {
			h.respondJSON(w, gwErr.StatusCode, gwErr.Response)
			return
		}
		h.logger.Error("assistant gateway failed", zap.Error(err))
		h.respondJSON(w, http.StatusInternalServerError, h.failure(models.ErrorInternal, err.Error()))
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// Extract handles POST /api/v1/content/extract
// @Summary Extract lesson document
// @Description Split an assistant reply into the HTML document and the text shown in the chat
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body models.ExtractRequest true "Assistant reply"
// @Success 200 {object} models.ExtractResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/content/extract [post]
func (h *AssistantHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req models.ExtractRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	h.respondJSON(w, http.StatusOK, models.ExtractResponse{
		HTML:        content.ExtractHTML(req.Message),
		ChatMessage: content.CleanChatMessage(req.Message),
	})
}

func (h *AssistantHandler) failure(errorType models.ErrorType, message string) *models.AssistantResponse {
	return &models.AssistantResponse{
		Status:    models.StatusError,
		Error:     message,
		ErrorType: errorType,
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

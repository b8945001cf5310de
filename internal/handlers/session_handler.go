package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/VictorTadashi/AnimaFlow/internal/export"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/VictorTadashi/AnimaFlow/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionService is the interface that wraps the editor session logic.
type SessionService interface {
	// Method Create validates the wizard form, opens a session and sends the compiled prompt.
	//
	// An invalid form returns a *models.ValidationError and no session is created.
	// Assistant failures do not fail the call: they are recorded as a chat message.
	Create(ctx context.Context, req models.LessonRequest) (*models.SessionSnapshot, error)
	// Method Get returns the current view of a session or services.ErrSessionNotFound.
	Get(id string) (*models.SessionSnapshot, error)
	// Method SendMessage runs one chat turn.
	//
	// services.ErrSessionBusy is returned while another turn of the same session is running.
	SendMessage(ctx context.Context, id, text string) (*models.SessionSnapshot, error)
	// Method Document returns the session's lesson document or services.ErrNoDocument.
	Document(id string) (string, error)
}

// DocumentExporter is the interface that wraps rendering a document into a downloadable file.
type DocumentExporter interface {
	// Method Export renders html in the given format. The html string is not modified.
	Export(ctx context.Context, format export.Format, html string, opts export.Options) (*export.File, error)
}

// SessionHandler handles HTTP requests of the lesson editor
type SessionHandler struct {
	BaseHandler
	service  SessionService
	exporter DocumentExporter
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc SessionService, exporter DocumentExporter, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service:     svc,
		exporter:    exporter,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all session handler routes
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/messages", h.SendMessage)
		r.Get("/{id}/document", h.GetDocument)
		r.Get("/{id}/export/{format}", h.Export)
	})
}

// Create handles POST /api/v1/sessions
// @Summary Create editor session
// @Description Validate the wizard form, start a conversation and send the generated prompt
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body models.LessonRequest true "Wizard form"
// @Success 201 {object} models.SessionSnapshot
// @Failure 400 {object} map[string]string
// @Failure 422 {object} models.ValidationErrorResponse
// @Failure 500 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.LessonRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	snap, err := h.service.Create(context.WithoutCancel(r.Context()), req)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			h.respondValidationError(w, vErr)
			return
		}
		h.logger.Error("failed to create session", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.respondJSON(w, http.StatusCreated, snap)
}

// Get handles GET /api/v1/sessions/{id}
// @Summary Get editor session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.SessionSnapshot
// @Failure 404 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, snap)
}

// SendMessage handles POST /api/v1/sessions/{id}/messages
// @Summary Send chat message
// @Description Send one message of the editing conversation; the reply may replace the lesson document
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body models.SendMessageRequest true "Message"
// @Success 200 {object} models.SessionSnapshot
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Another message is in flight"
// @Security ApiKeyAuth
// @Router /api/v1/sessions/{id}/messages [post]
func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	snap, err := h.service.SendMessage(context.WithoutCancel(r.Context()), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, snap)
}

// GetDocument handles GET /api/v1/sessions/{id}/document
// @Summary Get lesson document
// @Description Render the current lesson document in a sandbox, or return its source with raw=true
// @Tags sessions
// @Produce html
// @Produce plain
// @Param id path string true "Session ID"
// @Param raw query bool false "Return the HTML source as text"
// @Success 200 {string} string
// @Failure 404 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/sessions/{id}/document [get]
func (h *SessionHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Document(chi.URLParam(r, "id"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	raw, _ := strconv.ParseBool(r.URL.Query().Get("raw"))
	if raw {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		// The document comes from the assistant and must not run scripts in our origin.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Security-Policy", "sandbox")
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

// Export handles GET /api/v1/sessions/{id}/export/{format}
// @Summary Export lesson document
// @Description Download the current lesson document as html, pdf or pptx
// @Tags sessions
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format path string true "html, pdf or pptx"
// @Param layout query string false "Slide layout: 16x9 (default) or a4"
// @Param filename query string false "File name without extension"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/sessions/{id}/export/{format} [get]
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	layout, err := export.ParseLayout(r.URL.Query().Get("layout"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.service.Document(chi.URLParam(r, "id"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	file, err := h.exporter.Export(r.Context(), format, doc, export.Options{
		Filename: r.URL.Query().Get("filename"),
		Layout:   layout,
	})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	h.respondFile(w, file.Filename, file.ContentType, file.Data)
}

func (h *SessionHandler) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		h.respondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, services.ErrNoDocument):
		h.respondError(w, http.StatusNotFound, "document not generated yet")
	case errors.Is(err, services.ErrSessionBusy):
		h.respondError(w, http.StatusConflict, "a message is already being processed")
	case errors.Is(err, services.ErrEmptyMessage):
		h.respondError(w, http.StatusBadRequest, "message content is required")
	default:
		h.logger.Error("session request failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

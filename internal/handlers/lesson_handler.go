package handlers

import (
	"errors"
	"net/http"

	"github.com/VictorTadashi/AnimaFlow/internal/catalog"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LessonService is the interface that wraps the lesson wizard logic.
type LessonService interface {
	// Method Options returns the catalog of durations, class sizes, interactivity levels, phases and strategies.
	Options() *catalog.Catalog
	// Method CompilePrompt validates the wizard form and turns it into the assistant prompt.
	//
	// An invalid form returns a *models.ValidationError listing every bad field.
	CompilePrompt(req models.LessonRequest) (string, error)
	// Method Rebalance rescales a phase triple to sum 100, keeping every phase at least 1.
	Rebalance(t models.TimeAllocation) models.TimeAllocation
}

// LessonHandler handles HTTP requests of the lesson wizard
type LessonHandler struct {
	BaseHandler
	service LessonService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(svc LessonService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all lesson handler routes
func (h *LessonHandler) RegisterRoutes(r chi.Router) {
	r.Route("/lessons", func(r chi.Router) {
		r.Get("/options", h.GetOptions)
		r.Post("/prompt", h.CompilePrompt)
		r.Post("/rebalance", h.Rebalance)
	})
}

// GetOptions handles GET /api/v1/lessons/options
// @Summary Get wizard options
// @Description Durations, class sizes, interactivity levels, phases and the strategies of every stage
// @Tags lessons
// @Produce json
// @Success 200 {object} catalog.Catalog
// @Router /api/v1/lessons/options [get]
func (h *LessonHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.Options())
}

// CompilePrompt handles POST /api/v1/lessons/prompt
// @Summary Compile lesson prompt
// @Description Validate the wizard form and return the prompt sent to the assistant
// @Tags lessons
// @Accept json
// @Produce json
// @Param request body models.LessonRequest true "Wizard form"
// @Success 200 {object} models.PromptResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} models.ValidationErrorResponse
// @Router /api/v1/lessons/prompt [post]
func (h *LessonHandler) CompilePrompt(w http.ResponseWriter, r *http.Request) {
	var req models.LessonRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.logger.Debug("invalid lesson request body", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	prompt, err := h.service.CompilePrompt(req)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			h.respondValidationError(w, vErr)
			return
		}
		h.logger.Error("failed to compile prompt", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to compile prompt")
		return
	}

	h.respondJSON(w, http.StatusOK, models.PromptResponse{Prompt: prompt})
}

// Rebalance handles POST /api/v1/lessons/rebalance
// @Summary Rebalance phase distribution
// @Description Rescale the three phase percentages so they sum to 100
// @Tags lessons
// @Accept json
// @Produce json
// @Param request body models.TimeAllocation true "Phase percentages"
// @Success 200 {object} models.TimeAllocation
// @Failure 400 {object} map[string]string
// @Router /api/v1/lessons/rebalance [post]
func (h *LessonHandler) Rebalance(w http.ResponseWriter, r *http.Request) {
	var t models.TimeAllocation
	if err := h.decodeJSON(r, &t); err != nil {
		h.respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	h.respondJSON(w, http.StatusOK, h.service.Rebalance(t))
}

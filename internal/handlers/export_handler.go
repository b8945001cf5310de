package handlers

import (
	"errors"
	"net/http"

	"github.com/VictorTadashi/AnimaFlow/internal/export"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ExportHandler converts posted documents without a session
type ExportHandler struct {
	BaseHandler
	exporter DocumentExporter
}

// NewExportHandler creates a new export handler
func NewExportHandler(exporter DocumentExporter, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		exporter:    exporter,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all export handler routes
func (h *ExportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/exports/{format}", h.Export)
}

// Export handles POST /api/v1/exports/{format}
// @Summary Export a document
// @Description Convert the posted lesson HTML to html, pdf or pptx
// @Tags exports
// @Accept json
// @Produce octet-stream
// @Param format path string true "html, pdf or pptx"
// @Param request body models.ExportRequest true "Document"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/exports/{format} [post]
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.ExportRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	layout, err := export.ParseLayout(req.Layout)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.exporter.Export(r.Context(), format, req.HTML, export.Options{
		Filename: req.Filename,
		Layout:   layout,
	})
	if err != nil {
		if errors.Is(err, export.ErrEmptyDocument) {
			h.respondError(w, http.StatusBadRequest, "html is required")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	h.respondFile(w, file.Filename, file.ContentType, file.Data)
}

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/VictorTadashi/AnimaFlow/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxImageUploadSize = 10 << 20

// ImageService is the interface that wraps the slide background catalogue.
type ImageService interface {
	// Method List returns every catalogued background.
	List(ctx context.Context) ([]models.BackgroundImage, error)
	// Method Upload stores a background and catalogues it.
	//
	// "filename" decides both the stored name and the content type; only png, jpeg and gif are accepted
	// and anything else fails with services.ErrUnsupportedImage.
	Upload(ctx context.Context, filename string, r io.Reader) (*models.ImageUploadResponse, error)
}

// ImageHandler handles HTTP requests for slide backgrounds
type ImageHandler struct {
	BaseHandler
	service ImageService
}

// NewImageHandler creates a new image handler
func NewImageHandler(svc ImageService, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all image handler routes
func (h *ImageHandler) RegisterRoutes(r chi.Router) {
	r.Route("/images", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Upload)
	})
}

// List handles GET /api/v1/images
// @Summary List slide backgrounds
// @Tags images
// @Produce json
// @Success 200 {array} models.BackgroundImage
// @Failure 500 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/images [get]
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list images", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to list images")
		return
	}

	h.respondJSON(w, http.StatusOK, images)
}

// Upload handles POST /api/v1/images
// @Summary Upload slide background
// @Description Store a png, jpeg or gif file that slides can reference by name in background-image
// @Tags images
// @Accept mpfd
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} models.ImageUploadResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security ApiKeyAuth
// @Router /api/v1/images [post]
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		h.logger.Debug("failed to parse multipart form", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	resp, err := h.service.Upload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedImage) {
			h.respondError(w, http.StatusBadRequest, "only png, jpeg and gif images are accepted")
			return
		}
		h.logger.Error("failed to upload image", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	h.respondJSON(w, http.StatusCreated, resp)
}

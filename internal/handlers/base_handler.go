package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"go.uber.org/zap"
)

const msgInvalidBody = "invalid request body"

type BaseHandler struct {
	logger *zap.Logger
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// respondValidationError sends the field errors of an invalid lesson request
func (h *BaseHandler) respondValidationError(w http.ResponseWriter, vErr *models.ValidationError) {
	h.respondJSON(w, http.StatusUnprocessableEntity, models.ValidationErrorResponse{
		Error:  "validation failed",
		Fields: vErr.Fields,
	})
}

// respondFile sends a binary download
func (h *BaseHandler) respondFile(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write file response", zap.String("filename", filename), zap.Error(err))
	}
}

// decodeJSON reads the request body into v
func (h *BaseHandler) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"go.uber.org/zap"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// ImageRepository is the interface that wraps the background image catalogue
type ImageRepository interface {
	// Method List returns every catalogued background.
	List(ctx context.Context) ([]models.BackgroundImage, error)
	// Method Add catalogues a background. Adding a known filename is not an error.
	Add(ctx context.Context, img models.BackgroundImage) error
}

// MediaStorage is the interface that wraps writing media files
type MediaStorage interface {
	Create(name, mediaType string) (io.WriteCloser, error)
	Delete(name, mediaType string) error
}

// ImageCache is the interface that wraps dropping cached image data
type ImageCache interface {
	Invalidate()
}

type imageService struct {
	repo      ImageRepository
	storage   MediaStorage
	cache     ImageCache
	mediaType string
	logger    *zap.Logger
}

// NewImageService creates a service storing backgrounds under mediaType. cache may be nil.
func NewImageService(repo ImageRepository, storage MediaStorage, cache ImageCache, mediaType string, logger *zap.Logger) *imageService {
	return &imageService{
		repo:      repo,
		storage:   storage,
		cache:     cache,
		mediaType: mediaType,
		logger:    logger,
	}
}

// List returns the catalogued backgrounds
func (s *imageService) List(ctx context.Context) ([]models.BackgroundImage, error) {
	images, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// Upload stores a background file and adds it to the catalogue.
// The content type is taken from the file extension; the stored file is removed if cataloguing fails.
func (s *imageService) Upload(ctx context.Context, filename string, r io.Reader) (*models.ImageUploadResponse, error) {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	contentType, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImage, filename)
	}

	w, err := s.storage.Create(filename, s.mediaType)
	if err != nil {
		return nil, fmt.Errorf("failed to create image file: %w", err)
	}
	size, err := io.Copy(w, r)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		s.rollback(filename)
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}

	if err := s.repo.Add(ctx, models.BackgroundImage{Filename: filename, ContentType: contentType}); err != nil {
		s.rollback(filename)
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate()
	}

	s.logger.Info("background image uploaded", zap.String("filename", filename), zap.Int64("size", size))
	return &models.ImageUploadResponse{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
	}, nil
}

func (s *imageService) rollback(filename string) {
	if err := s.storage.Delete(filename, s.mediaType); err != nil {
		s.logger.Warn("failed to remove image file", zap.String("filename", filename), zap.Error(err))
	}
}

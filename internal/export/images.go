package export

import (
	"context"
	"fmt"
	"sync"

	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"go.uber.org/zap"
)

// ImageCatalog is the interface that wraps the list of known background images
type ImageCatalog interface {
	List(ctx context.Context) ([]models.BackgroundImage, error)
}

// MediaReader is the interface that wraps reading stored media files
type MediaReader interface {
	ReadFile(name, mediaType string) ([]byte, error)
}

// ImageLoader reads the catalogued backgrounds from media storage once and serves them from memory
type ImageLoader struct {
	catalog   ImageCatalog
	media     MediaReader
	mediaType string
	logger    *zap.Logger

	mu     sync.Mutex
	images map[string]models.BackgroundImage
}

// NewImageLoader creates a loader reading files of the given media type
func NewImageLoader(catalog ImageCatalog, media MediaReader, mediaType string, logger *zap.Logger) *ImageLoader {
	return &ImageLoader{
		catalog:   catalog,
		media:     media,
		mediaType: mediaType,
		logger:    logger,
	}
}

// Images returns the backgrounds keyed by file name. Files missing from storage are skipped.
func (l *ImageLoader) Images(ctx context.Context) (map[string]models.BackgroundImage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.images != nil {
		return l.images, nil
	}

	list, err := l.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list background images: %w", err)
	}

	images := make(map[string]models.BackgroundImage, len(list))
	for _, img := range list {
		data, err := l.media.ReadFile(img.Filename, l.mediaType)
		if err != nil {
			l.logger.Warn("background image unavailable", zap.String("filename", img.Filename), zap.Error(err))
			continue
		}
		img.Data = data
		images[img.Filename] = img
	}

	l.logger.Info("background images loaded", zap.Int("available", len(images)), zap.Int("catalogued", len(list)))
	l.images = images
	return images, nil
}

// Invalidate drops the cached images so the next call reloads them
func (l *ImageLoader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.images = nil
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/VictorTadashi/AnimaFlow/internal/models"
)

// imageRepository lists slide background images stored in the database
type imageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new image repository
func NewImageRepository(db *sql.DB) *imageRepository {
	return &imageRepository{
		db: db,
	}
}

// List returns every known background image ordered by filename
func (r *imageRepository) List(ctx context.Context) ([]models.BackgroundImage, error) {
	query := `
		SELECT filename, content_type
		FROM background_images
		ORDER BY filename
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query background images: %w", err)
	}
	defer rows.Close()

	var images []models.BackgroundImage
	for rows.Next() {
		var img models.BackgroundImage
		if err := rows.Scan(&img.Filename, &img.ContentType); err != nil {
			return nil, fmt.Errorf("failed to scan background image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating background images: %w", err)
	}

	return images, nil
}

// Add registers a background image; an existing filename keeps its row
func (r *imageRepository) Add(ctx context.Context, img models.BackgroundImage) error {
	query := `
		INSERT IGNORE INTO background_images (filename, content_type)
		VALUES (?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query, img.Filename, img.ContentType); err != nil {
		return fmt.Errorf("failed to add background image: %w", err)
	}
	return nil
}

// staticImageRepository serves a fixed list of filenames when no database is configured
type staticImageRepository struct {
	mu     sync.RWMutex
	images []models.BackgroundImage
}

// NewStaticImageRepository creates a repository over a fixed filename list.
// Content types are derived from the file extension.
func NewStaticImageRepository(filenames []string) *staticImageRepository {
	images := make([]models.BackgroundImage, 0, len(filenames))
	for _, name := range filenames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		images = append(images, models.BackgroundImage{
			Filename:    name,
			ContentType: ContentTypeFor(name),
		})
	}
	return &staticImageRepository{images: images}
}

// List returns a copy of the configured images
func (r *staticImageRepository) List(ctx context.Context) ([]models.BackgroundImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	images := make([]models.BackgroundImage, len(r.images))
	copy(images, r.images)
	return images, nil
}

// Add registers an image until the process exits. Known filenames are ignored.
func (r *staticImageRepository) Add(ctx context.Context, img models.BackgroundImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.images {
		if existing.Filename == img.Filename {
			return nil
		}
	}
	img.Data = nil
	r.images = append(r.images, img)
	return nil
}

// ContentTypeFor maps an image filename to its MIME type
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// Package storage reads and writes media files on the local filesystem
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localStorage keeps files under basePath, one directory per media type
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// generatePath builds the full path of a file.
// Underscores in mediaType become directory separators, so "images_backgrounds" maps to images/backgrounds.
func (s *localStorage) generatePath(name, mediaType string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	typePath := strings.ReplaceAll(mediaType, "_", string(filepath.Separator))
	return filepath.Join(s.basePath, typePath, name), nil
}

// Create creates a new file and returns a WriteCloser
func (s *localStorage) Create(name, mediaType string) (io.WriteCloser, error) {
	path, err := s.generatePath(name, mediaType)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return os.Create(path)
}

// Open opens a file for reading and returns a ReadCloser
func (s *localStorage) Open(name, mediaType string) (io.ReadCloser, error) {
	path, err := s.generatePath(name, mediaType)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// ReadFile returns the whole content of a file
func (s *localStorage) ReadFile(name, mediaType string) ([]byte, error) {
	f, err := s.Open(name, mediaType)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Delete removes a file
func (s *localStorage) Delete(name, mediaType string) error {
	path, err := s.generatePath(name, mediaType)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

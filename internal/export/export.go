// Package export turns a lesson document into downloadable HTML, PDF and PPTX files
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/VictorTadashi/AnimaFlow/internal/metrics"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"go.uber.org/zap"
)

// Format is an export target
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
)

// DefaultFilename is used when the caller gives no file name
const DefaultFilename = "roteiro-aula"

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrEmptyDocument     = errors.New("document is empty")
)

// ParseFormat converts a user supplied name into a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatPDF, FormatPPTX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of files in this format
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatPPTX:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	default:
		return "application/octet-stream"
	}
}

// File is a rendered export
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Options tunes a single export
type Options struct {
	// Filename without extension; DefaultFilename when empty
	Filename string
	// Layout of the slide deck; Layout16x9 when zero
	Layout Layout
}

// ImageSource is the interface that wraps access to the slide background images
type ImageSource interface {
	// Method Images returns the known backgrounds keyed by file name.
	Images(ctx context.Context) (map[string]models.BackgroundImage, error)
}

// Exporter renders documents in the supported formats
type Exporter struct {
	images  ImageSource
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewExporter creates a new exporter. images may be nil, in which case no background is resolved.
func NewExporter(images ImageSource, m *metrics.Metrics, logger *zap.Logger) *Exporter {
	return &Exporter{
		images:  images,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Export renders html in the requested format. The input string is never modified.
func (e *Exporter) Export(ctx context.Context, format Format, html string, opts Options) (*File, error) {
	start := time.Now()
	file, err := e.export(ctx, format, html, opts)
	e.metrics.RecordExport(string(format), err == nil)

	if err != nil {
		e.logger.Error("export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, err
	}

	e.logger.Info("document exported",
		zap.String("format", string(format)),
		zap.String("filename", file.Filename),
		zap.Int("bytes", len(file.Data)),
		zap.Duration("duration", time.Since(start)),
	)
	return file, nil
}

func (e *Exporter) export(ctx context.Context, format Format, html string, opts Options) (*File, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyDocument
	}

	file := &File{
		Filename:    fileName(opts.Filename) + "." + string(format),
		ContentType: format.ContentType(),
	}

	switch format {
	case FormatHTML:
		file.Data = renderHTML(html)
		return file, nil

	case FormatPDF:
		images, err := e.loadImages(ctx)
		if err != nil {
			return nil, err
		}
		data, err := renderPDF(html, images, e.now(), e.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to render pdf: %w", err)
		}
		file.Data = data
		return file, nil

	case FormatPPTX:
		images, err := e.loadImages(ctx)
		if err != nil {
			return nil, err
		}
		deck, err := BuildDeck(html, images, opts.Layout)
		if err != nil {
			return nil, fmt.Errorf("failed to build slide deck: %w", err)
		}
		data, err := deck.Bytes(e.now())
		if err != nil {
			return nil, fmt.Errorf("failed to write pptx: %w", err)
		}
		file.Data = data
		return file, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (e *Exporter) loadImages(ctx context.Context) (map[string]models.BackgroundImage, error) {
	if e.images == nil {
		return nil, nil
	}
	images, err := e.images.Images(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load background images: %w", err)
	}
	return images, nil
}

// fileName strips directories and a known export extension from a requested name
func fileName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	switch ext := filepath.Ext(name); strings.ToLower(ext) {
	case ".html", ".pdf", ".pptx":
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" || name == "." || name == "/" {
		return DefaultFilename
	}
	return name
}

// renderHTML returns the document bytes as they are
func renderHTML(html string) []byte {
	return []byte(html)
}

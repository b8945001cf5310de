package export

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

// Landscape A4 in millimetres
const (
	pageWidth   = 297.0
	pageHeight  = 210.0
	pageMargin  = 10.0
	imageWidth  = pageWidth - 2*pageMargin
	imageHeight = pageHeight - 2*pageMargin
)

// renderPDF puts every non-empty slide section on its own page, numbered by section position.
// A document without sections is rendered whole on a single unnumbered page.
func renderPDF(html string, images map[string]models.BackgroundImage, created time.Time, logger *zap.Logger) ([]byte, error) {
	r, err := newRasterizer()
	if err != nil {
		return nil, err
	}
	return writePDF(r, html, images, created, logger)
}

// writePDF skips a section that fails to rasterize and keeps the rest of the deck
func writePDF(r *rasterizer, html string, images map[string]models.BackgroundImage, created time.Time, logger *zap.Logger) ([]byte, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)

	sections := findSections(doc)
	if sections.Length() == 0 {
		body := doc.Find("body")
		if err := addSectionPage(pdf, r, "page-body", body, resolveBackground(body, images)); err != nil {
			return nil, err
		}
	} else {
		var pageErr error
		sections.EachWithBreak(func(i int, s *goquery.Selection) bool {
			if strings.TrimSpace(s.Text()) == "" {
				return true
			}
			name := "page-" + strconv.Itoa(i+1)
			pageErr = addSectionPage(pdf, r, name, s, resolveBackground(s, images))
			if errors.Is(pageErr, errRasterize) {
				logger.Warn("skipping pdf section", zap.Int("section", i+1), zap.Error(pageErr))
				pageErr = nil
				return true
			}
			if pageErr != nil {
				return false
			}

			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(150, 150, 150)
			pdf.Text(pageWidth-20, pageHeight-10, strconv.Itoa(i+1))
			return true
		})
		if pageErr != nil {
			return nil, pageErr
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

var errRasterize = errors.New("failed to rasterize section")

// addSectionPage rasterizes s and places the bitmap on a new page, clipped to the printable height
func addSectionPage(pdf *fpdf.Fpdf, r *rasterizer, name string, s *goquery.Selection, bg *models.BackgroundImage) error {
	png, w, h, err := r.rasterize(collectBlocks(s), bg)
	if err != nil {
		return fmt.Errorf("%w %s: %w", errRasterize, name, err)
	}

	pdf.AddPage()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))

	scaledHeight := float64(h) * imageWidth / float64(w)
	pdf.ImageOptions(name, pageMargin, pageMargin, imageWidth, min(scaledHeight, imageHeight), false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	return nil
}

package export

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
)

const (
	slideContainerSelector = ".slide-container"
	sectionSelector        = "section, .slide, .section"
)

var backgroundURLPattern = regexp.MustCompile(`background-image:\s*url\(['"]?(.*?)['"]?\)`)

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

// findSections returns the slide boundaries of a document.
// Elements marked .slide-container win; otherwise the outermost section-like elements are used.
func findSections(doc *goquery.Document) *goquery.Selection {
	if containers := doc.Find(slideContainerSelector); containers.Length() > 0 {
		return containers
	}

	return doc.Find(sectionSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered(sectionSelector).Length() == 0
	})
}

// backgroundName returns the file name referenced by an inline background-image style, or ""
func backgroundName(s *goquery.Selection) string {
	style, _ := s.Attr("style")
	m := backgroundURLPattern.FindStringSubmatch(style)
	if len(m) < 2 || m[1] == "" {
		return ""
	}

	ref := strings.TrimLeft(m[1], "/")
	return path.Base(ref)
}

// resolveBackground looks up the inline background of s in images
func resolveBackground(s *goquery.Selection, images map[string]models.BackgroundImage) *models.BackgroundImage {
	name := backgroundName(s)
	if name == "" {
		return nil
	}
	img, ok := images[name]
	if !ok || len(img.Data) == 0 {
		return nil
	}
	return &img
}

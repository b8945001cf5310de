package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Canvas geometry in CSS pixels; the bitmap is rasterScale times larger.
// rasterMaxHeight keeps the printable aspect of a landscape A4 page, content below it is cut.
const (
	rasterWidth     = 1000
	rasterMinHeight = 600
	rasterMaxHeight = 686
	rasterPadding   = 20
	rasterScale     = 2
	lineHeight      = 1.4
)

const blockSelector = "h1, h2, h3, h4, p, li"

type textStyle struct {
	size   float64
	bold   bool
	color  color.Color
	margin float64
}

var (
	colorText    = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	colorHeading = color.RGBA{R: 0xff, G: 0x00, B: 0x8c, A: 0xff}
)

var tagStyles = map[string]textStyle{
	"h1": {size: 32, bold: true, color: colorHeading, margin: 16},
	"h2": {size: 24, bold: true, color: colorText, margin: 12},
	"h3": {size: 20, bold: true, color: colorText, margin: 10},
	"h4": {size: 18, bold: true, color: colorText, margin: 8},
	"p":  {size: 16, color: colorText, margin: 8},
	"li": {size: 16, color: colorText, margin: 4},
}

var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regularFont, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		boldFont, fontsErr = truetype.Parse(gobold.TTF)
	})
	return fontsErr
}

// textBlock is one styled run of text on a rasterized slide
type textBlock struct {
	tag  string
	text string
}

// collectBlocks lists the text elements of s in document order.
// Content without any block element becomes a single paragraph.
func collectBlocks(s *goquery.Selection) []textBlock {
	var blocks []textBlock
	s.Find(blockSelector).Each(func(_ int, el *goquery.Selection) {
		text := strings.TrimSpace(el.Text())
		if text == "" {
			return
		}
		tag := goquery.NodeName(el)
		if tag == "li" {
			text = "• " + text
		}
		blocks = append(blocks, textBlock{tag: tag, text: text})
	})

	if len(blocks) == 0 {
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			blocks = append(blocks, textBlock{tag: "p", text: text})
		}
	}
	return blocks
}

// rasterizer draws text blocks onto PNG bitmaps.
// Font faces are cached per size and are not safe for concurrent use.
type rasterizer struct {
	faces  map[textStyle]font.Face
	encode func(w io.Writer, img image.Image) error
}

func newRasterizer() (*rasterizer, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}
	return &rasterizer{
		faces:  make(map[textStyle]font.Face),
		encode: png.Encode,
	}, nil
}

func (r *rasterizer) face(st textStyle) font.Face {
	key := textStyle{size: st.size, bold: st.bold}
	if f, ok := r.faces[key]; ok {
		return f
	}
	ttf := regularFont
	if st.bold {
		ttf = boldFont
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: st.size * rasterScale, DPI: 72})
	r.faces[key] = f
	return f
}

type laidOutBlock struct {
	style textStyle
	lines []string
}

// rasterize renders blocks on a white or image background and returns the PNG with its pixel size
func (r *rasterizer) rasterize(blocks []textBlock, bg *models.BackgroundImage) ([]byte, int, int, error) {
	width := float64(rasterWidth * rasterScale)
	padding := float64(rasterPadding * rasterScale)
	textWidth := width - 2*padding

	measure := gg.NewContext(1, 1)
	laid := make([]laidOutBlock, 0, len(blocks))
	available := float64(rasterMaxHeight*rasterScale) - 2*padding
	contentHeight := 0.0
	for _, b := range blocks {
		if contentHeight >= available {
			break
		}
		st, ok := tagStyles[b.tag]
		if !ok {
			st = tagStyles["p"]
		}
		measure.SetFontFace(r.face(st))
		step := st.size * lineHeight * rasterScale

		var lines []string
		for _, para := range strings.Split(b.text, "\n") {
			lines = append(lines, measure.WordWrap(para, textWidth)...)
			if contentHeight+float64(len(lines))*step >= available {
				break
			}
		}
		if fit := int((available - contentHeight) / step); fit < len(lines) {
			lines = lines[:max(fit, 0)]
		}
		laid = append(laid, laidOutBlock{style: st, lines: lines})
		contentHeight += float64(len(lines))*step + st.margin*rasterScale
	}

	height := max(float64(rasterMinHeight*rasterScale), contentHeight+2*padding)
	height = min(height, float64(rasterMaxHeight*rasterScale))
	w, h := int(width), int(height)

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	if img := decodeBackground(bg); img != nil {
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)
		dc.DrawImage(scaled, 0, 0)
	}

	y := padding
	for _, b := range laid {
		dc.SetFontFace(r.face(b.style))
		dc.SetColor(b.style.color)
		step := b.style.size * lineHeight * rasterScale
		for _, line := range b.lines {
			dc.DrawStringAnchored(line, padding, y, 0, 1)
			y += step
		}
		y += b.style.margin * rasterScale
	}

	var buf bytes.Buffer
	if err := r.encode(&buf, dc.Image()); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

// decodeBackground returns nil for a missing or undecodable image, which leaves the page white
func decodeBackground(bg *models.BackgroundImage) image.Image {
	if bg == nil || len(bg.Data) == 0 {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(bg.Data))
	if err != nil {
		return nil
	}
	return img
}

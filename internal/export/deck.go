package export

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
)

// Layout is the slide size in inches
type Layout struct {
	Name   string
	Width  float64
	Height float64
}

var (
	Layout16x9 = Layout{Name: "16x9", Width: 10, Height: 5.625}
	LayoutA4   = Layout{Name: "a4", Width: 11.69, Height: 8.27}
)

// ParseLayout resolves a layout name; an empty name selects Layout16x9
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Layout16x9.Name, "16:9":
		return Layout16x9, nil
	case LayoutA4.Name:
		return LayoutA4, nil
	default:
		return Layout{}, fmt.Errorf("unknown slide layout %q", name)
	}
}

// Box placement in inches
const (
	boxTop        = 0.5
	boxLeft       = 0.5
	bottomMargin  = 0.5
	sideMargins   = 1.5
	baseBoxHeight = 0.6
	lineStep      = 0.3
	charsPerLine  = 80
	paraSpacing   = 0.1
	blockSpacing  = 0.2
)

const (
	colorBlack   = "000000"
	colorWhite   = "FFFFFF"
	colorMagenta = "FF008C"
	deckFont     = "Arial"
)

// Align is a paragraph alignment
type Align string

const (
	AlignLeft   Align = "l"
	AlignCenter Align = "ctr"
)

// TextBox is a positioned text frame on a slide
type TextBox struct {
	Text     string
	X        float64
	Y        float64
	W        float64
	H        float64
	FontSize int
	Color    string
	Bold     bool
	Align    Align
}

// Slide is one page of the deck
type Slide struct {
	Background *models.BackgroundImage
	Boxes      []TextBox
}

// Deck is a laid out presentation ready to be written as PPTX
type Deck struct {
	Layout Layout
	Slides []Slide
}

// slideRole selects the styling of a section
type slideRole int

const (
	roleContent slideRole = iota
	roleTitle
	roleIntro
	roleClosing
)

func roleOf(index, total int) slideRole {
	switch {
	case index == 0:
		return roleTitle
	case index == 1:
		return roleIntro
	case total > 2 && index == total-1:
		return roleClosing
	default:
		return roleContent
	}
}

// styleFor returns font size, color, weight and alignment for a tag on a slide of the given role
func styleFor(tag string, role slideRole) (int, string, bool, Align) {
	align := AlignLeft
	if role == roleClosing {
		align = AlignCenter
	}

	switch tag {
	case "h1":
		size := 18
		if role == roleTitle || role == roleClosing {
			size = 28
		}
		if role == roleIntro {
			align = AlignCenter
		}
		return size, colorMagenta, true, align
	case "h2":
		if role == roleIntro {
			return 14, colorWhite, false, AlignCenter
		}
		return 14, colorBlack, false, align
	case "p":
		if role == roleIntro {
			return 12, colorWhite, false, AlignCenter
		}
		return 12, colorBlack, false, align
	default:
		return 12, colorBlack, false, align
	}
}

// boxHeight grows with the number of explicit or estimated wrapped lines
func boxHeight(text string) float64 {
	lines := len(strings.Split(text, "\n"))
	estimated := int(math.Ceil(float64(utf8.RuneCountInString(text)) / charsPerLine))
	return baseBoxHeight + float64(max(lines, estimated)-1)*lineStep
}

// BuildDeck lays out the slide sections of html as text boxes.
// Each section starts a slide; text that would pass the visible area continues on a new slide
// with the same background. Identical texts within a section are kept once.
func BuildDeck(html string, images map[string]models.BackgroundImage, layout Layout) (*Deck, error) {
	if layout.Width == 0 || layout.Height == 0 {
		layout = Layout16x9
	}

	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	sections := findSections(doc)
	if sections.Length() == 0 {
		sections = doc.Find("body")
	}

	deck := &Deck{Layout: layout}
	limit := layout.Height - bottomMargin
	width := layout.Width - sideMargins
	total := sections.Length()

	sections.Each(func(index int, section *goquery.Selection) {
		role := roleOf(index, total)
		bg := resolveBackground(section, images)

		slide := Slide{Background: bg}
		y := boxTop
		seen := make(map[string]bool)

		section.Find("h1, h2, p, li").Each(func(_ int, el *goquery.Selection) {
			text := strings.TrimSpace(el.Text())
			if text == "" || seen[text] {
				return
			}
			seen[text] = true

			tag := goquery.NodeName(el)
			if tag == "li" {
				text = "• " + text
			}

			size, color, bold, align := styleFor(tag, role)
			height := boxHeight(text)

			if y+height > limit && y > boxTop {
				deck.Slides = append(deck.Slides, slide)
				slide = Slide{Background: bg}
				y = boxTop
			}

			slide.Boxes = append(slide.Boxes, TextBox{
				Text:     text,
				X:        boxLeft,
				Y:        y,
				W:        width,
				H:        height,
				FontSize: size,
				Color:    color,
				Bold:     bold,
				Align:    align,
			})

			spacing := blockSpacing
			if tag == "p" {
				spacing = paraSpacing
			}
			y += height + spacing
		})

		deck.Slides = append(deck.Slides, slide)
	})

	return deck, nil
}

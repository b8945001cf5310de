package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/VictorTadashi/AnimaFlow/internal/models"
)

const emuPerInch = 914400

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const (
	nsA = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`
	nsR = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	nsP = `xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

	relBase      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	relOfficeDoc = relBase + "officeDocument"
	relSlide     = relBase + "slide"
	relSlideMast = relBase + "slideMaster"
	relSlideLay  = relBase + "slideLayout"
	relTheme     = relBase + "theme"
	relImage     = relBase + "image"
	relPresProps = relBase + "presProps"
	relExtProps  = relBase + "extended-properties"
	relCoreProps = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	ctPresML     = "application/vnd.openxmlformats-officedocument.presentationml."
	ctDrawingML  = "application/vnd.openxmlformats-officedocument."
	firstSlideID = 256
	masterID     = 2147483648
	layoutID     = 2147483649
	notesWidth   = 6858000
	notesHeight  = 9144000
)

func emu(inches float64) int64 {
	return int64(inches*emuPerInch + 0.5)
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

type relationship struct {
	id     string
	typ    string
	target string
}

func relsXML(rels []relationship) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, r.target)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// mediaPart is a background image stored once in ppt/media
type mediaPart struct {
	name string
	ext  string
	data []byte
}

// pptxWriter collects the package parts before zipping them in order
type pptxWriter struct {
	zw       *zip.Writer
	modified time.Time
}

func (w *pptxWriter) add(name, content string) error {
	return w.addBytes(name, []byte(content))
}

func (w *pptxWriter) addBytes(name string, data []byte) error {
	f, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: w.modified,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Bytes writes the deck as a PPTX package stamped with the given time
func (d *Deck) Bytes(created time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.WritePPTX(&buf, created); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePPTX writes the deck as an Office Open XML presentation
func (d *Deck) WritePPTX(out io.Writer, created time.Time) error {
	created = created.UTC().Truncate(time.Second)
	zw := zip.NewWriter(out)
	w := &pptxWriter{zw: zw, modified: created}

	media, slideMedia := d.collectMedia()

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", d.contentTypesXML(media)},
		{"_rels/.rels", relsXML([]relationship{
			{"rId1", relOfficeDoc, "ppt/presentation.xml"},
			{"rId2", relCoreProps, "docProps/core.xml"},
			{"rId3", relExtProps, "docProps/app.xml"},
		})},
		{"docProps/app.xml", d.appXML()},
		{"docProps/core.xml", coreXML(created)},
		{"ppt/presentation.xml", d.presentationXML()},
		{"ppt/_rels/presentation.xml.rels", d.presentationRelsXML()},
		{"ppt/presProps.xml", xmlHeader + `<p:presentationPr ` + nsA + ` ` + nsR + ` ` + nsP + `/>`},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", relsXML([]relationship{
			{"rId1", relSlideLay, "../slideLayouts/slideLayout1.xml"},
			{"rId2", relTheme, "../theme/theme1.xml"},
		})},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", relsXML([]relationship{
			{"rId1", relSlideMast, "../slideMasters/slideMaster1.xml"},
		})},
		{"ppt/theme/theme1.xml", themeXML},
	}
	for _, p := range parts {
		if err := w.add(p.name, p.content); err != nil {
			return err
		}
	}

	for i, slide := range d.Slides {
		n := i + 1
		rels := []relationship{{"rId1", relSlideLay, "../slideLayouts/slideLayout1.xml"}}
		bgRel := ""
		if m := slideMedia[i]; m != nil {
			bgRel = "rId2"
			rels = append(rels, relationship{bgRel, relImage, "../media/" + m.name})
		}

		if err := w.add(fmt.Sprintf("ppt/slides/slide%d.xml", n), slideXML(slide, bgRel)); err != nil {
			return err
		}
		if err := w.add(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), relsXML(rels)); err != nil {
			return err
		}
	}

	for _, m := range media {
		if err := w.addBytes("ppt/media/"+m.name, m.data); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish pptx archive: %w", err)
	}
	return nil
}

// collectMedia stores each distinct background once and maps every slide to its media part
func (d *Deck) collectMedia() ([]*mediaPart, []*mediaPart) {
	var media []*mediaPart
	byFile := make(map[string]*mediaPart)
	perSlide := make([]*mediaPart, len(d.Slides))

	for i, s := range d.Slides {
		if s.Background == nil || len(s.Background.Data) == 0 {
			continue
		}
		m, ok := byFile[s.Background.Filename]
		if !ok {
			ext := imageExt(*s.Background)
			m = &mediaPart{
				name: fmt.Sprintf("image%d.%s", len(media)+1, ext),
				ext:  ext,
				data: s.Background.Data,
			}
			byFile[s.Background.Filename] = m
			media = append(media, m)
		}
		perSlide[i] = m
	}
	return media, perSlide
}

func imageExt(img models.BackgroundImage) string {
	switch {
	case strings.Contains(img.ContentType, "png"), strings.HasSuffix(strings.ToLower(img.Filename), ".png"):
		return "png"
	case strings.Contains(img.ContentType, "gif"):
		return "gif"
	default:
		return "jpeg"
	}
}

func (d *Deck) contentTypesXML(media []*mediaPart) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)

	seen := make(map[string]bool)
	for _, m := range media {
		if seen[m.ext] {
			continue
		}
		seen[m.ext] = true
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="image/%s"/>`, m.ext, m.ext)
	}

	overrides := [][2]string{
		{"/ppt/presentation.xml", ctPresML + "presentation.main+xml"},
		{"/ppt/presProps.xml", ctPresML + "presProps+xml"},
		{"/ppt/slideMasters/slideMaster1.xml", ctPresML + "slideMaster+xml"},
		{"/ppt/slideLayouts/slideLayout1.xml", ctPresML + "slideLayout+xml"},
		{"/ppt/theme/theme1.xml", ctDrawingML + "theme+xml"},
		{"/docProps/core.xml", "application/vnd.openxmlformats-package.core-properties+xml"},
		{"/docProps/app.xml", ctDrawingML + "extended-properties+xml"},
	}
	for i := range d.Slides {
		overrides = append(overrides, [2]string{fmt.Sprintf("/ppt/slides/slide%d.xml", i+1), ctPresML + "slide+xml"})
	}
	for _, o := range overrides {
		fmt.Fprintf(&b, `<Override PartName="%s" ContentType="%s"/>`, o[0], o[1])
	}

	b.WriteString(`</Types>`)
	return b.String()
}

func (d *Deck) presentationXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:presentation ` + nsA + ` ` + nsR + ` ` + nsP + ` saveSubsetFonts="1">`)
	fmt.Fprintf(&b, `<p:sldMasterIdLst><p:sldMasterId id="%d" r:id="rId1"/></p:sldMasterIdLst>`, masterID)
	if len(d.Slides) > 0 {
		b.WriteString(`<p:sldIdLst>`)
		for i := range d.Slides {
			fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, firstSlideID+i, i+3)
		}
		b.WriteString(`</p:sldIdLst>`)
	}
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, emu(d.Layout.Width), emu(d.Layout.Height))
	fmt.Fprintf(&b, `<p:notesSz cx="%d" cy="%d"/>`, notesWidth, notesHeight)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func (d *Deck) presentationRelsXML() string {
	rels := []relationship{
		{"rId1", relSlideMast, "slideMasters/slideMaster1.xml"},
		{"rId2", relTheme, "theme/theme1.xml"},
	}
	for i := range d.Slides {
		rels = append(rels, relationship{fmt.Sprintf("rId%d", i+3), relSlide, fmt.Sprintf("slides/slide%d.xml", i+1)})
	}
	rels = append(rels, relationship{fmt.Sprintf("rId%d", len(d.Slides)+3), relPresProps, "presProps.xml"})
	return relsXML(rels)
}

func (d *Deck) appXML() string {
	return xmlHeader +
		`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" ` +
		`xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">` +
		`<Application>AnimaFlow</Application>` +
		fmt.Sprintf(`<Slides>%d</Slides>`, len(d.Slides)) +
		`<PresentationFormat>Custom</PresentationFormat>` +
		`</Properties>`
}

func coreXML(created time.Time) string {
	stamp := created.Format(time.RFC3339)
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escape(DefaultFilename) + `</dc:title>` +
		`<dc:creator>AnimaFlow</dc:creator>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

const groupShapeXML = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

func slideXML(s Slide, bgRel string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld ` + nsA + ` ` + nsR + ` ` + nsP + `><p:cSld>`)
	if bgRel != "" {
		fmt.Fprintf(&b, `<p:bg><p:bgPr><a:blipFill dpi="0" rotWithShape="1"><a:blip r:embed="%s"/><a:srcRect/>`+
			`<a:stretch><a:fillRect/></a:stretch></a:blipFill><a:effectLst/></p:bgPr></p:bg>`, bgRel)
	}
	b.WriteString(`<p:spTree>` + groupShapeXML)
	for i, box := range s.Boxes {
		writeTextBox(&b, i+2, box)
	}
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

func writeTextBox(b *strings.Builder, id int, box TextBox) {
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Text %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, id-1)
	fmt.Fprintf(b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`,
		emu(box.X), emu(box.Y), emu(box.W), emu(box.H))
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`)
	b.WriteString(`<p:txBody><a:bodyPr wrap="square" lIns="0" tIns="0" rIns="0" bIns="0" anchor="t" rtlCol="0"><a:noAutofit/></a:bodyPr><a:lstStyle/>`)

	bold := "0"
	if box.Bold {
		bold = "1"
	}
	align := box.Align
	if align == "" {
		align = AlignLeft
	}

	for _, line := range strings.Split(box.Text, "\n") {
		fmt.Fprintf(b, `<a:p><a:pPr algn="%s"/>`, align)
		if line != "" {
			fmt.Fprintf(b, `<a:r><a:rPr lang="pt-BR" sz="%d" b="%s" dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill>`+
				`<a:latin typeface="%s"/><a:cs typeface="%s"/></a:rPr><a:t>%s</a:t></a:r>`,
				box.FontSize*100, bold, box.Color, deckFont, deckFont, escape(line))
		}
		b.WriteString(`</a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp>`)
}

var slideMasterXML = xmlHeader +
	`<p:sldMaster ` + nsA + ` ` + nsR + ` ` + nsP + `>` +
	`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree>` + groupShapeXML + `</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" ` +
	`accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	fmt.Sprintf(`<p:sldLayoutIdLst><p:sldLayoutId id="%d" r:id="rId1"/></p:sldLayoutIdLst>`, layoutID) +
	`<p:txStyles>` +
	`<p:titleStyle><a:lvl1pPr><a:defRPr sz="4400"/></a:lvl1pPr></p:titleStyle>` +
	`<p:bodyStyle><a:lvl1pPr><a:defRPr sz="1800"/></a:lvl1pPr></p:bodyStyle>` +
	`<p:otherStyle><a:lvl1pPr><a:defRPr sz="1800"/></a:lvl1pPr></p:otherStyle>` +
	`</p:txStyles></p:sldMaster>`

var slideLayoutXML = xmlHeader +
	`<p:sldLayout ` + nsA + ` ` + nsR + ` ` + nsP + ` type="blank" preserve="1">` +
	`<p:cSld name="Blank"><p:spTree>` + groupShapeXML + `</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`

func solidFillStyle(mod string) string {
	return `<a:solidFill><a:schemeClr val="phClr">` + mod + `</a:schemeClr></a:solidFill>`
}

var themeXML = xmlHeader +
	`<a:theme ` + nsA + ` name="AnimaFlow">` +
	`<a:themeElements>` +
	`<a:clrScheme name="AnimaFlow">` +
	`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>` +
	`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="1F1F1F"/></a:dk2>` +
	`<a:lt2><a:srgbClr val="EEECE1"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="FF008C"/></a:accent1>` +
	`<a:accent2><a:srgbClr val="6A1B9A"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="9BBB59"/></a:accent3>` +
	`<a:accent4><a:srgbClr val="8064A2"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="4BACC6"/></a:accent5>` +
	`<a:accent6><a:srgbClr val="F79646"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0000FF"/></a:hlink>` +
	`<a:folHlink><a:srgbClr val="800080"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="AnimaFlow">` +
	`<a:majorFont><a:latin typeface="Arial"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Arial"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="AnimaFlow">` +
	`<a:fillStyleLst>` + solidFillStyle("") + solidFillStyle(`<a:tint val="50000"/>`) + solidFillStyle(`<a:shade val="50000"/>`) + `</a:fillStyleLst>` +
	`<a:lnStyleLst>` +
	`<a:ln w="9525">` + solidFillStyle("") + `</a:ln>` +
	`<a:ln w="25400">` + solidFillStyle("") + `</a:ln>` +
	`<a:ln w="38100">` + solidFillStyle("") + `</a:ln>` +
	`</a:lnStyleLst>` +
	`<a:effectStyleLst>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`</a:effectStyleLst>` +
	`<a:bgFillStyleLst>` + solidFillStyle("") + solidFillStyle(`<a:tint val="95000"/>`) + solidFillStyle(`<a:shade val="95000"/>`) + `</a:bgFillStyleLst>` +
	`</a:fmtScheme>` +
	`</a:themeElements>` +
	`<a:objectDefaults/><a:extraClrSchemeLst/>` +
	`</a:theme>`

package deck

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/template"
)

// Emitter serializes a placement plan into deck bytes.
type Emitter interface {
	Emit(plan *Plan) ([]byte, error)
}

// PackageWriter emits a minimal OOXML presentation package: presentation
// part, one master/layout pair, a theme carrying the plan's schemes, and one
// slide part per plan slide.
type PackageWriter struct{}

// NewPackageWriter returns the default Emitter.
func NewPackageWriter() *PackageWriter {
	return &PackageWriter{}
}

const (
	nsMain = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDraw = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsRel  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// Emit writes the package. A directive the serializer cannot honor (e.g. a
// corrupt image payload) aborts the whole emission; there is no partial
// output.
func (w *PackageWriter) Emit(plan *Plan) ([]byte, error) {
	if plan == nil || len(plan.Slides) == 0 {
		return nil, fmt.Errorf("%w: plan has no slides", apperr.ErrEmission)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := map[string]string{
		"[Content_Types].xml":          w.contentTypes(plan),
		"_rels/.rels":                  rootRels,
		"docProps/core.xml":            w.coreProps(plan),
		"ppt/presentation.xml":         w.presentation(plan),
		"ppt/_rels/presentation.xml.rels":         w.presentationRels(plan),
		"ppt/theme/theme1.xml":                    w.theme(plan),
		"ppt/slideMasters/slideMaster1.xml":       slideMasterXML,
		"ppt/slideMasters/_rels/slideMaster1.xml.rels": masterRels,
		"ppt/slideLayouts/slideLayout1.xml":            slideLayoutXML,
		"ppt/slideLayouts/_rels/slideLayout1.xml.rels": layoutRels,
	}

	for i, slide := range plan.Slides {
		n := i + 1
		mediaName := ""
		if slide.Image != nil {
			raw, err := base64.StdEncoding.DecodeString(slide.Image.Payload)
			if err != nil {
				return nil, fmt.Errorf("%w: decode image %s: %v", apperr.ErrEmission, slide.Image.Name, err)
			}
			mediaName = fmt.Sprintf("image%d%s", n, mediaExt(slide.Image.Name))
			if err := writeZipEntry(zw, "ppt/media/"+mediaName, raw); err != nil {
				return nil, err
			}
		}
		parts[fmt.Sprintf("ppt/slides/slide%d.xml", n)] = w.slide(&slide)
		parts[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n)] = w.slideRels(mediaName)
	}

	for name, content := range parts {
		if err := writeZipEntry(zw, name, []byte(content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: close package: %v", apperr.ErrEmission, err)
	}
	return buf.Bytes(), nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("%w: create entry %s: %v", apperr.ErrEmission, name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: write entry %s: %v", apperr.ErrEmission, name, err)
	}
	return nil
}

func (w *PackageWriter) contentTypes(plan *Plan) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Default Extension="jpg" ContentType="image/jpeg"/>`)
	b.WriteString(`<Default Extension="jpeg" ContentType="image/jpeg"/>`)
	b.WriteString(`<Default Extension="gif" ContentType="image/gif"/>`)
	b.WriteString(`<Default Extension="svg" ContentType="image/svg+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	for i := range plan.Slides {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

const rootRels = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

func (w *PackageWriter) coreProps(plan *Plan) string {
	now := time.Now().UTC().Format(time.RFC3339)
	return xmlHeader + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escapeXML(plan.Title) + `</dc:title>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + now + `</dcterms:created>` +
		`</cp:coreProperties>`
}

func (w *PackageWriter) presentation(plan *Plan) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsDraw, nsRel, nsMain)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := range plan.Slides {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 2+i)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, emu(plan.CanvasW), emu(plan.CanvasH))
	fmt.Fprintf(&b, `<p:notesSz cx="%d" cy="%d"/>`, emu(plan.CanvasH), emu(plan.CanvasW))
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func (w *PackageWriter) presentationRels(plan *Plan) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := range plan.Slides {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, 2+i, i+1)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

var slideMasterXML = xmlHeader + fmt.Sprintf(`<p:sldMaster xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsDraw, nsRel, nsMain) +
	`<p:cSld><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
	`</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`</p:sldMaster>`

const masterRels = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="../theme/theme1.xml"/>` +
	`</Relationships>`

var slideLayoutXML = xmlHeader + fmt.Sprintf(`<p:sldLayout xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" type="blank">`, nsDraw, nsRel, nsMain) +
	`<p:cSld name="Blank"><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
	`</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
	`</p:sldLayout>`

const layoutRels = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>` +
	`</Relationships>`

// theme writes the recovered color and font schemes back into the generated
// package so downstream tooling sees the template's palette.
func (w *PackageWriter) theme(plan *Plan) string {
	c := plan.Colors
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<a:theme xmlns:a="%s" name="Ansuz">`, nsDraw)
	b.WriteString(`<a:themeElements><a:clrScheme name="Ansuz">`)
	fmt.Fprintf(&b, `<a:dk1><a:srgbClr val="%s"/></a:dk1>`, hexVal(c.Text))
	fmt.Fprintf(&b, `<a:lt1><a:srgbClr val="%s"/></a:lt1>`, hexVal(c.Background))
	fmt.Fprintf(&b, `<a:dk2><a:srgbClr val="%s"/></a:dk2>`, hexVal(c.Text))
	fmt.Fprintf(&b, `<a:lt2><a:srgbClr val="%s"/></a:lt2>`, hexVal(c.Background))
	fmt.Fprintf(&b, `<a:accent1><a:srgbClr val="%s"/></a:accent1>`, hexVal(c.Primary))
	fmt.Fprintf(&b, `<a:accent2><a:srgbClr val="%s"/></a:accent2>`, hexVal(c.Secondary))
	for i := 3; i <= 6; i++ {
		fmt.Fprintf(&b, `<a:accent%d><a:srgbClr val="%s"/></a:accent%d>`, i, hexVal(c.Accent), i)
	}
	fmt.Fprintf(&b, `<a:hlink><a:srgbClr val="%s"/></a:hlink>`, hexVal(c.Secondary))
	fmt.Fprintf(&b, `<a:folHlink><a:srgbClr val="%s"/></a:folHlink>`, hexVal(c.Secondary))
	b.WriteString(`</a:clrScheme>`)

	fmt.Fprintf(&b, `<a:fontScheme name="Ansuz"><a:majorFont><a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont><a:minorFont><a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont></a:fontScheme>`,
		escapeXML(plan.Fonts.Title), escapeXML(plan.Fonts.Body))

	// Minimal but schema-complete format scheme.
	b.WriteString(`<a:fmtScheme name="Ansuz">`)
	b.WriteString(`<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>`)
	b.WriteString(`<a:lnStyleLst><a:ln><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>`)
	b.WriteString(`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>`)
	b.WriteString(`<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>`)
	b.WriteString(`</a:fmtScheme>`)
	b.WriteString(`</a:themeElements></a:theme>`)
	return b.String()
}

func (w *PackageWriter) slide(sp *SlidePlan) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsDraw, nsRel, nsMain)
	b.WriteString(`<p:cSld>`)
	if sp.Background != "" {
		fmt.Fprintf(&b, `<p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`, hexVal(sp.Background))
	}
	b.WriteString(`<p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)

	shapeID := 2
	if sp.Title != nil {
		writeTextShape(&b, shapeID, "Title", sp.Title)
		shapeID++
	}
	if sp.Body != nil {
		writeTextShape(&b, shapeID, "Content", sp.Body)
		shapeID++
	}
	if sp.Image != nil {
		writePicture(&b, shapeID, sp.Image)
		shapeID++
	}

	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return b.String()
}

func (w *PackageWriter) slideRels(mediaName string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`)
	if mediaName != "" {
		fmt.Fprintf(&b, `<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/%s"/>`, mediaName)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func writeTextShape(b *strings.Builder, id int, name string, tp *TextPlacement) {
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, name)
	fmt.Fprintf(b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`,
		emu(tp.Box.X), emu(tp.Box.Y), emu(tp.Box.W), emu(tp.Box.H))
	b.WriteString(`<p:txBody><a:bodyPr wrap="square"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)

	bold := 0
	if tp.Bold {
		bold = 1
	}
	runProps := fmt.Sprintf(`<a:rPr lang="en-US" sz="%d" b="%d" dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:latin typeface="%s"/></a:rPr>`,
		tp.Size*100, bold, hexVal(tp.Color), escapeXML(tp.Font))

	for i, para := range tp.Paragraphs {
		if tp.Bulleted {
			fmt.Fprintf(b, `<a:p><a:pPr marL="285750" indent="-285750"><a:buChar char="%s"/></a:pPr><a:r>%s<a:t>%s</a:t></a:r></a:p>`,
				"•", runProps, escapeXML(para))
			continue
		}
		fmt.Fprintf(b, `<a:p><a:pPr><a:buNone/></a:pPr><a:r>%s<a:t>%s</a:t></a:r></a:p>`, runProps, escapeXML(para))
		// Blank-line separation between prose paragraphs.
		if i < len(tp.Paragraphs)-1 {
			b.WriteString(`<a:p><a:pPr><a:buNone/></a:pPr><a:endParaRPr lang="en-US"/></a:p>`)
		}
	}
	b.WriteString(`</p:txBody></p:sp>`)
}

func writePicture(b *strings.Builder, id int, ip *ImagePlacement) {
	fmt.Fprintf(b, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`, id, escapeXML(ip.Name))
	b.WriteString(`<p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`)
	fmt.Fprintf(b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		emu(ip.Box.X), emu(ip.Box.Y), emu(ip.Box.W), emu(ip.Box.H))
}

func emu(inches float64) int64 {
	return int64(inches * template.EMUPerInch)
}

// hexVal strips the # prefix and upper-cases for srgbClr attributes.
func hexVal(hex string) string {
	return strings.ToUpper(strings.TrimPrefix(hex, "#"))
}

func mediaExt(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ".png"
	}
	return ext
}

func escapeXML(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

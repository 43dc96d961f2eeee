package template

import (
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Names given to recovered layouts. Master-derived and layout-file-derived
// layouts differ only by name.
const (
	MasterLayoutName  = "Master Layout"
	DefaultLayoutName = "Content Layout"
)

// placeholderShape is the permissive decode target for one <p:sp> subtree.
// Namespace prefixes are ignored; encoding/xml matches on local names.
type placeholderShape struct {
	NvSpPr struct {
		NvPr struct {
			Ph *struct {
				Type string `xml:"type,attr"`
				Idx  string `xml:"idx,attr"`
			} `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	SpPr struct {
		Xfrm struct {
			Off struct {
				X int64 `xml:"x,attr"`
				Y int64 `xml:"y,attr"`
			} `xml:"off"`
			Ext struct {
				Cx int64 `xml:"cx,attr"`
				Cy int64 `xml:"cy,attr"`
			} `xml:"ext"`
		} `xml:"xfrm"`
	} `xml:"spPr"`
}

// box converts the shape's native-unit geometry to a clamped inch box.
// Returns nil when the shape carries no usable extent (layouts commonly omit
// xfrm and inherit geometry from the master).
func (s *placeholderShape) box() *Box {
	ext := s.SpPr.Xfrm.Ext
	if ext.Cx <= 0 || ext.Cy <= 0 {
		return nil
	}
	off := s.SpPr.Xfrm.Off
	b := Box{
		X: float64(off.X) / EMUPerInch,
		Y: float64(off.Y) / EMUPerInch,
		W: float64(ext.Cx) / EMUPerInch,
		H: float64(ext.Cy) / EMUPerInch,
	}
	return clampBox(b)
}

// clampBox enforces the canvas invariant: offsets never negative, extents
// never past the slide edge. Guards against malformed source geometry.
func clampBox(b Box) *Box {
	if b.X < 0 {
		b.X = 0
	}
	if b.Y < 0 {
		b.Y = 0
	}
	if b.W > CanvasWidth {
		b.W = CanvasWidth
	}
	if b.H > CanvasHeight {
		b.H = CanvasHeight
	}
	return &b
}

// collectShapes walks raw master/layout XML and returns every shape that
// carries a placeholder marker, in document order, plus the value of the
// first name attribute seen on a cSld element.
func collectShapes(rawXML string) (shapes []placeholderShape, layoutName string) {
	dec := xml.NewDecoder(strings.NewReader(rawXML))
	dec.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := dec.Token()
		if err != nil {
			if err != io.EOF {
				// Truncated or malformed document: keep shapes seen so far.
			}
			return shapes, layoutName
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case "cSld":
			if layoutName == "" {
				layoutName = attrValue(el, "name")
			}
		case "sp":
			var sp placeholderShape
			if err := dec.DecodeElement(&sp, &el); err != nil {
				continue
			}
			if sp.NvSpPr.NvPr.Ph != nil {
				shapes = append(shapes, sp)
			}
		}
	}
}

// ExtractMaster recovers the layout defined by a slide master. The title box
// comes from the shape holding a "title" placeholder and the content box
// from the "body" placeholder; both fall back to the default boxes so the
// master layout is always fully populated. The boolean is false only when
// the document yields no placeholders at all.
func ExtractMaster(masterXML string) (Layout, bool) {
	shapes, _ := collectShapes(masterXML)

	layout := Layout{Name: MasterLayoutName}
	for i := range shapes {
		sp := &shapes[i]
		switch sp.NvSpPr.NvPr.Ph.Type {
		case "title":
			if layout.Title == nil {
				layout.Title = sp.box()
			}
		case "body":
			if layout.Content == nil {
				layout.Content = sp.box()
			}
		}
	}
	if layout.Title == nil {
		b := DefaultTitleBox()
		layout.Title = &b
	}
	if layout.Content == nil {
		b := DefaultContentBox()
		layout.Content = &b
	}
	return layout, len(shapes) > 0
}

// ExtractLayout recovers zero or one layout from a slide layout document.
// Placeholder classification: "title"/"ctrTitle" takes the title box;
// "body"/"obj" takes the content box; any other placeholder becomes the
// content box when neither role has been assigned yet. Later placeholders of
// an already-assigned role are dropped (single box per role).
func ExtractLayout(layoutXML string) (Layout, bool) {
	shapes, name := collectShapes(layoutXML)
	if len(shapes) == 0 {
		return Layout{}, false
	}
	if name == "" {
		name = DefaultLayoutName
	}

	layout := Layout{Name: name}
	for i := range shapes {
		sp := &shapes[i]
		switch sp.NvSpPr.NvPr.Ph.Type {
		case "title", "ctrTitle":
			if layout.Title == nil {
				layout.Title = sp.box()
			}
		case "body", "obj":
			if layout.Content == nil {
				layout.Content = sp.box()
			}
		default:
			if layout.Title == nil && layout.Content == nil {
				layout.Content = sp.box()
			}
		}
	}
	return layout, true
}

// Package deck maps a normalized outline onto template geometry and
// serializes the result as a .pptx package.
package deck

import "github.com/starford/ansuz/internal/template"

// TextPlacement is one positioned text directive.
type TextPlacement struct {
	Box        template.Box
	Paragraphs []string
	Bulleted   bool
	Font       string
	Size       int // points
	Bold       bool
	Color      string // hex, #-prefixed
}

// ImagePlacement is one positioned embedded image directive.
type ImagePlacement struct {
	Name    string // asset filename, determines the media extension
	Payload string // base64 image bytes, passed through unvalidated
	Box     template.Box
}

// SlidePlan holds the concrete directives for one emitted slide.
type SlidePlan struct {
	Layout     string // selected layout name, for diagnostics
	Background string // hex fill, empty when no fill directive applies
	Title      *TextPlacement
	Body       *TextPlacement
	Image      *ImagePlacement
}

// Plan is the full set of placement directives for one deck.
type Plan struct {
	Title    string
	Filename string // derived base name, without extension
	Slides   []SlidePlan
	Colors   template.ColorScheme
	Fonts    template.FontScheme
	CanvasW  float64
	CanvasH  float64
}

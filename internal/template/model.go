// Package template recovers a presentation template description (colors,
// fonts, placeholder geometry, embedded media) from a .pptx package.
// Extraction is best-effort: every field that cannot be recovered keeps a
// documented default, and no extraction failure propagates to the caller.
package template

// ColorScheme holds the five color roles used for placement. Always fully
// populated; see Default for the fallback values.
type ColorScheme struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
	Background string `json:"background"`
}

// FontScheme holds the two font roles. Always fully populated.
type FontScheme struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Box is a placeholder rectangle in inches.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Layout is a named slide layout with optional title and content boxes.
// A nil box means the source did not define usable geometry for that role;
// placement substitutes the default box.
type Layout struct {
	Name    string `json:"name"`
	Title   *Box   `json:"title,omitempty"`
	Content *Box   `json:"content,omitempty"`
}

// Model is the aggregate template description for one generation request.
// Constructed once by Build, immutable thereafter.
type Model struct {
	Colors  ColorScheme       `json:"colors"`
	Fonts   FontScheme        `json:"fonts"`
	Layouts []Layout          `json:"layouts"`
	Media   map[string]string `json:"-"`
	CanvasW float64           `json:"canvas_w"`
	CanvasH float64           `json:"canvas_h"`
}

package template

// EMUPerInch is the native OOXML geometry unit count per inch.
const EMUPerInch = 914400

// Slide canvas extent in inches (standard 4:3 deck).
const (
	CanvasWidth  = 10.0
	CanvasHeight = 7.5
)

// Fixed extraction caps. Decks can carry dozens of layouts and media files;
// only the first few contribute to the model.
const (
	MaxLayouts = 3
	MaxMedia   = 5
)

// Default color and font roles, used whenever a field cannot be recovered.
const (
	DefaultPrimary    = "#1f497d"
	DefaultSecondary  = "#4f81bd"
	DefaultAccent     = "#c0504d"
	DefaultText       = "#000000"
	DefaultBackground = "#ffffff"
	DefaultTitleFont  = "Calibri"
	DefaultBodyFont   = "Calibri"
)

// DefaultTitleBox and DefaultContentBox are the fallback placeholder boxes.
func DefaultTitleBox() Box   { return Box{X: 0.5, Y: 0.5, W: 9, H: 1.2} }
func DefaultContentBox() Box { return Box{X: 0.5, Y: 2, W: 9, H: 4.5} }

// Default returns the fully-populated fallback model. Every fallback path in
// this package derives from it, so the defaults cannot drift apart.
func Default() Model {
	return Model{
		Colors: ColorScheme{
			Primary:    DefaultPrimary,
			Secondary:  DefaultSecondary,
			Accent:     DefaultAccent,
			Text:       DefaultText,
			Background: DefaultBackground,
		},
		Fonts: FontScheme{
			Title: DefaultTitleFont,
			Body:  DefaultBodyFont,
		},
		Layouts: nil,
		Media:   map[string]string{},
		CanvasW: CanvasWidth,
		CanvasH: CanvasHeight,
	}
}

package deck

import (
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/outline"
	"github.com/starford/ansuz/internal/template"
)

// Fixed typography for generated slides.
const (
	titleFontSize = 40
	bodyFontSize  = 20
)

// Image box anchored at the lower-right corner of the canvas.
const (
	imageWidth  = 3.0
	imageHeight = 2.2
	imageMargin = 0.5
)

// BuildPlan maps each outline slide onto a selected template layout and
// emits concrete placement directives. It is deterministic and never fails;
// every geometry and style decision has a fallback.
func BuildPlan(o *outline.Outline, model template.Model) *Plan {
	plan := &Plan{
		Title:    o.Title,
		Filename: outline.Filename(o.Title),
		Colors:   model.Colors,
		Fonts:    model.Fonts,
		CanvasW:  model.CanvasW,
		CanvasH:  model.CanvasH,
	}

	// A fill directive is redundant on a pure white background.
	background := ""
	if !strings.EqualFold(model.Colors.Background, template.DefaultBackground) {
		background = model.Colors.Background
	}

	for _, slide := range o.Slides {
		layout := selectLayout(slide.Type, model.Layouts)

		sp := SlidePlan{
			Layout:     layout.Name,
			Background: background,
			Title: &TextPlacement{
				Box:        resolveBox(layout.Title, template.DefaultTitleBox()),
				Paragraphs: []string{slide.Title},
				Font:       model.Fonts.Title,
				Size:       titleFontSize,
				Bold:       true,
				Color:      model.Colors.Primary,
			},
		}

		if len(slide.Content) > 0 {
			sp.Body = &TextPlacement{
				Box:        resolveBox(layout.Content, template.DefaultContentBox()),
				Paragraphs: slide.Content,
				Bulleted:   slide.Type == outline.TypeBullets,
				Font:       model.Fonts.Body,
				Size:       bodyFontSize,
				Color:      model.Colors.Text,
			}
		}

		if slide.Image != "" {
			if name, payload, ok := matchMedia(slide.Image, model.Media); ok {
				sp.Image = &ImagePlacement{
					Name:    name,
					Payload: payload,
					Box: template.Box{
						X: model.CanvasW - imageWidth - imageMargin,
						Y: model.CanvasH - imageHeight - imageMargin,
						W: imageWidth,
						H: imageHeight,
					},
				}
			}
		}

		plan.Slides = append(plan.Slides, sp)
	}
	return plan
}

// selectLayout applies the ranked layout rules:
//  1. no layouts at all: unnamed layout, default boxes
//  2. title slide, several layouts: first whose name contains "title"
//     (case-insensitive), else the first
//  3. other slide, several layouts: first whose name does not contain
//     "title", else the second, else the first
//  4. single layout: that layout
func selectLayout(slideType outline.SlideType, layouts []template.Layout) template.Layout {
	if len(layouts) == 0 {
		return template.Layout{}
	}
	if len(layouts) == 1 {
		return layouts[0]
	}
	if slideType == outline.TypeTitle {
		for _, l := range layouts {
			if containsTitle(l.Name) {
				return l
			}
		}
		return layouts[0]
	}
	for _, l := range layouts {
		if !containsTitle(l.Name) {
			return l
		}
	}
	return layouts[1]
}

func containsTitle(name string) bool {
	return strings.Contains(strings.ToLower(name), "title")
}

func resolveBox(b *template.Box, fallback template.Box) template.Box {
	if b != nil {
		return *b
	}
	return fallback
}

// matchMedia finds the asset for a requested image name by case-sensitive
// bidirectional substring containment. Assets are scanned in sorted filename
// order and the first match wins.
func matchMedia(requested string, media map[string]string) (string, string, bool) {
	if len(media) == 0 {
		return "", "", false
	}
	names := make([]string, 0, len(media))
	for name := range media {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.Contains(name, requested) || strings.Contains(requested, name) {
			return name, media[name], true
		}
	}
	return "", "", false
}

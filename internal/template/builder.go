package template

import (
	"log/slog"

	"github.com/starford/ansuz/internal/pptx"
)

// Build composes the extractors over one uploaded package and returns the
// template model for the request. Template analysis is best-effort and never
// blocks generation: a nil/empty upload or an unreadable package yields the
// default model.
func Build(data []byte, logger *slog.Logger) Model {
	model := Default()
	if len(data) == 0 {
		return model
	}

	archive, err := pptx.Open(data)
	if err != nil {
		logger.Debug("template: package unreadable, using defaults",
			slog.String("error", err.Error()))
		return model
	}

	if themeXML, err := archive.EntryText(pptx.ThemePath); err == nil {
		model.Colors, model.Fonts = ExtractTheme(themeXML)
	}

	if masterXML, err := archive.EntryText(pptx.SlideMasterPath); err == nil {
		if layout, ok := ExtractMaster(masterXML); ok {
			model.Layouts = append(model.Layouts, layout)
		}
	}

	// Only the first MaxLayouts layout files are processed; decks can carry
	// dozens and the rest add no placement value.
	processed := 0
	for _, name := range archive.List(pptx.LayoutPrefix, "xml") {
		if processed >= MaxLayouts {
			break
		}
		processed++
		layoutXML, err := archive.EntryText(name)
		if err != nil {
			continue
		}
		if layout, ok := ExtractLayout(layoutXML); ok {
			model.Layouts = append(model.Layouts, layout)
		}
	}

	model.Media = ExtractMedia(archive, MaxMedia)
	return model
}

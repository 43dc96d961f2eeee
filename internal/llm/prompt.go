package llm

import (
	"fmt"
	"strings"
)

// outlineSystemPrompt pins the response to the outline JSON contract the
// normalizer expects. Media filenames from the uploaded template are listed
// so the model can reference them in the optional image field.
const outlineSystemPrompt = `You are a presentation planner. Given source material, produce a slide-by-slide outline as a single JSON object and nothing else.

The JSON object must have this exact shape:
{
  "title": "presentation title",
  "slides": [
    {
      "title": "slide title",
      "content": ["point or paragraph", "..."],
      "type": "title" | "content" | "bullets",
      "notes": "optional speaker notes",
      "image": "optional media filename to place on the slide"
    }
  ]
}

Rules:
- The first slide must have type "title".
- Use type "bullets" for list-style slides and "content" for prose slides.
- Keep 4 to 8 slides unless the material clearly demands otherwise.
- Do not wrap the JSON in Markdown fences or add commentary.`

// BuildPrompt assembles the system and user prompts for an outline request.
func BuildPrompt(content, guidance string, mediaNames []string) (system, user string) {
	system = outlineSystemPrompt
	if len(mediaNames) > 0 {
		system += "\n\nAvailable template images: " + strings.Join(mediaNames, ", ")
	}

	var b strings.Builder
	b.WriteString("Create a presentation outline from the following material.\n\n")
	if guidance != "" {
		fmt.Fprintf(&b, "Guidance: %s\n\n", guidance)
	}
	b.WriteString(content)
	return system, b.String()
}

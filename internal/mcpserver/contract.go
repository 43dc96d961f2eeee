package mcpserver

// OutlineFormatContract describes the canonical slide outline JSON shape
// that model-drafted outlines are normalized into before placement.
const OutlineFormatContract = `# Ansuz Outline Format Contract

Every generated presentation is planned as a single JSON object with this
shape before any slide is placed.

## Structure

` + "```" + `json
{
  "title": "Presentation title",
  "slides": [
    {
      "title": "Slide title",
      "content": ["first point or paragraph", "second"],
      "type": "title",
      "notes": "optional speaker notes",
      "image": "optional media filename from the uploaded template"
    }
  ]
}
` + "```" + `

## Rules

- "title" and a non-empty "slides" array are required.
- "type" is one of "title", "content", or "bullets". Unknown types are
  repaired to "content".
- The first slide is always forced to type "title", whatever was proposed.
- "content" entries render as bullets for type "bullets" and as blank-line
  separated paragraphs otherwise.
- "image" is matched against template media filenames by substring
  containment; when nothing matches, the slide simply has no image.
`

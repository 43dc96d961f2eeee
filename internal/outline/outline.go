// Package outline validates model-generated text into the strict slide plan
// consumed by placement. Nothing downstream handles raw untyped JSON.
package outline

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/starford/ansuz/internal/apperr"
)

// SlideType classifies how a slide's body is rendered.
type SlideType string

const (
	TypeTitle   SlideType = "title"
	TypeContent SlideType = "content"
	TypeBullets SlideType = "bullets"
)

// Slide is one normalized slide spec.
type Slide struct {
	Title   string    `json:"title"`
	Content []string  `json:"content,omitempty"`
	Type    SlideType `json:"type"`
	Notes   string    `json:"notes,omitempty"`
	Image   string    `json:"image,omitempty"`
}

// Outline is the validated slide-by-slide plan. Produced once by Normalize,
// never mutated afterwards.
type Outline struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// MalformedError reports an unusable model response. Raw holds the provider
// text for diagnostics; callers surface only the reason, never Raw.
type MalformedError struct {
	Reason string
	Raw    string
}

func (e *MalformedError) Error() string { return "outline: " + e.Reason }

func (e *MalformedError) Unwrap() error { return apperr.ErrMalformedOutline }

// Normalize extracts and validates a slide outline from raw model output.
// The text may wrap the JSON object in prose or Markdown fences. A title and
// a non-empty slide list are required; the first slide's type is forced to
// "title" regardless of what the model proposed, and unknown slide types are
// repaired to "content".
func Normalize(raw string) (*Outline, error) {
	candidate := extractObject(stripFences(raw))
	if candidate == "" {
		return nil, &MalformedError{Reason: "response contains no JSON object", Raw: raw}
	}

	var o Outline
	if err := json.Unmarshal([]byte(candidate), &o); err != nil {
		// The model frequently emits almost-JSON (trailing commas, single
		// quotes). Repair once before giving up.
		repaired, repairErr := jsonrepair.JSONRepair(candidate)
		if repairErr != nil {
			return nil, &MalformedError{Reason: "response is not valid JSON", Raw: raw}
		}
		if err := json.Unmarshal([]byte(repaired), &o); err != nil {
			return nil, &MalformedError{Reason: "response is not valid JSON", Raw: raw}
		}
	}

	if strings.TrimSpace(o.Title) == "" {
		return nil, &MalformedError{Reason: "outline is missing a title", Raw: raw}
	}
	if len(o.Slides) == 0 {
		return nil, &MalformedError{Reason: "outline has no slides", Raw: raw}
	}

	for i := range o.Slides {
		switch o.Slides[i].Type {
		case TypeTitle, TypeContent, TypeBullets:
		default:
			o.Slides[i].Type = TypeContent
		}
	}
	o.Slides[0].Type = TypeTitle

	return &o, nil
}

// stripFences removes Markdown code-fence lines so a fenced JSON block
// parses the same as bare JSON.
func stripFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// extractObject returns the first balanced top-level JSON object substring,
// or "" when none exists. Braces inside JSON strings are ignored.
func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	// Unbalanced object: return the open tail and let repair have a go.
	return s[start:]
}

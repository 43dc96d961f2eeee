package template

import (
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Theme color slots consumed from a:clrScheme, mapped onto scheme roles:
// dk1 (dark text) -> Text, lt1 (light background) -> Background,
// accent1 -> Primary, accent2 -> Secondary.
var themeColorRoles = map[string]struct{}{
	"dk1":     {},
	"lt1":     {},
	"accent1": {},
	"accent2": {},
}

// ExtractTheme recovers the color and font schemes from raw theme XML.
// It never fails: fields that cannot be recovered keep their defaults, and
// each field is extracted independently so one malformed token cannot abort
// the rest.
func ExtractTheme(themeXML string) (ColorScheme, FontScheme) {
	def := Default()
	colors := def.Colors
	fonts := def.Fonts

	dec := xml.NewDecoder(strings.NewReader(themeXML))
	dec.CharsetReader = charset.NewReaderLabel

	found := map[string]string{}
	var colorRole string
	var fontRole string

	for {
		tok, err := dec.Token()
		if err != nil {
			if err != io.EOF {
				// Malformed tail; keep whatever was recovered so far.
			}
			break
		}

		switch el := tok.(type) {
		case xml.StartElement:
			name := el.Name.Local
			switch {
			case isThemeColorRole(name):
				colorRole = name
			case name == "majorFont" || name == "minorFont":
				fontRole = name
			case name == "srgbClr" && colorRole != "":
				if v := attrValue(el, "val"); v != "" {
					found[colorRole] = normalizeHex(v)
				}
			case name == "sysClr" && colorRole != "":
				// System colors carry the resolved value in lastClr.
				if v := attrValue(el, "lastClr"); v != "" {
					found[colorRole] = normalizeHex(v)
				}
			case name == "latin" && fontRole != "":
				if tf := attrValue(el, "typeface"); tf != "" {
					if fontRole == "majorFont" {
						fonts.Title = tf
					} else {
						fonts.Body = tf
					}
				}
				fontRole = ""
			}
		case xml.EndElement:
			name := el.Name.Local
			if name == colorRole {
				colorRole = ""
			}
			if name == fontRole {
				fontRole = ""
			}
		}
	}

	if v, ok := found["dk1"]; ok {
		colors.Text = v
	}
	if v, ok := found["lt1"]; ok {
		colors.Background = v
	}
	if v, ok := found["accent1"]; ok {
		colors.Primary = v
	}
	if v, ok := found["accent2"]; ok {
		colors.Secondary = v
	}
	return colors, fonts
}

func isThemeColorRole(name string) bool {
	_, ok := themeColorRoles[name]
	return ok
}

func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func normalizeHex(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "#")
	return "#" + strings.ToLower(v)
}

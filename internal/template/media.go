package template

import (
	"path"

	"github.com/starford/ansuz/internal/pptx"
)

// Image entry extensions accepted from the media directory.
var mediaExtensions = []string{"png", "jpg", "jpeg", "gif", "svg"}

// ExtractMedia collects up to max embedded images as base64 payloads keyed
// by bare filename (path stripped). Name collisions overwrite, last wins
// under archive enumeration order. Image content is not validated here;
// corrupt payloads surface only at emission time.
func ExtractMedia(a *pptx.Archive, max int) map[string]string {
	out := map[string]string{}
	names := a.List(pptx.MediaPrefix, mediaExtensions...)

	taken := 0
	for _, name := range names {
		if taken >= max {
			break
		}
		payload, err := a.EntryBase64(name)
		if err != nil {
			continue
		}
		out[path.Base(name)] = payload
		taken++
	}
	return out
}

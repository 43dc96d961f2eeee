// Package pptx provides read access to the zipped OOXML package that backs
// a .pptx file. Entries are located by well-known path prefixes and
// suffixes, not by parsing the package manifest.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// Well-known entry paths inside a presentation package.
const (
	ThemePath       = "ppt/theme/theme1.xml"
	SlideMasterPath = "ppt/slideMasters/slideMaster1.xml"
	LayoutPrefix    = "ppt/slideLayouts/slideLayout"
	MediaPrefix     = "ppt/media/"
)

// Archive is a read-only view over an opened presentation package.
type Archive struct {
	reader *zip.Reader
	byName map[string]*zip.File
}

// Open parses raw package bytes into an Archive.
func Open(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pptx: open package: %w", err)
	}
	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		byName[f.Name] = f
	}
	return &Archive{reader: zr, byName: byName}, nil
}

// Entry returns the raw bytes of a named entry.
func (a *Archive) Entry(name string) ([]byte, error) {
	f, ok := a.byName[name]
	if !ok {
		return nil, fmt.Errorf("pptx: entry %s not found in package", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("pptx: open entry %s: %w", name, err)
	}
	defer rc.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, rc); err != nil {
		return nil, fmt.Errorf("pptx: read entry %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// EntryText returns a named entry decoded as a string.
func (a *Archive) EntryText(name string) (string, error) {
	data, err := a.Entry(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EntryBase64 returns a named entry encoded as standard base64.
func (a *Archive) EntryBase64(name string) (string, error) {
	data, err := a.Entry(name)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// List returns entry names under prefix whose lower-cased extension is in
// exts (extensions given without the dot; empty exts matches everything).
// Names are returned in lexicographic order so enumeration is stable.
func (a *Archive) List(prefix string, exts ...string) []string {
	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = struct{}{}
	}

	var out []string
	for _, f := range a.reader.File {
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		if len(allowed) > 0 {
			ext := strings.ToLower(strings.TrimPrefix(path.Ext(f.Name), "."))
			if _, ok := allowed[ext]; !ok {
				continue
			}
		}
		out = append(out, f.Name)
	}
	sort.Strings(out)
	return out
}

// Has reports whether a named entry exists.
func (a *Archive) Has(name string) bool {
	_, ok := a.byName[name]
	return ok
}

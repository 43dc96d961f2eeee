package template

import (
	"encoding/base64"
	"testing"

	"github.com/starford/ansuz/internal/pptx"
)

func buildArchive(t *testing.T, entries map[string]string) *pptx.Archive {
	t.Helper()
	a, err := pptx.Open(zipBytes(t, entries))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return a
}

func TestExtractMedia(t *testing.T) {
	a := buildArchive(t, map[string]string{
		"ppt/media/image1.png": "png-bytes",
		"ppt/media/logo.jpg":   "jpg-bytes",
		"ppt/media/notes.txt":  "skip me",
		"ppt/slides/x.xml":     "not media",
	})

	media := ExtractMedia(a, MaxMedia)
	if len(media) != 2 {
		t.Fatalf("len = %d, want 2", len(media))
	}
	want := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	if media["image1.png"] != want {
		t.Errorf("image1.png = %q, want %q", media["image1.png"], want)
	}
	if _, ok := media["logo.jpg"]; !ok {
		t.Error("logo.jpg missing")
	}
}

func TestExtractMedia_Cap(t *testing.T) {
	entries := map[string]string{
		"ppt/media/a.png": "a",
		"ppt/media/b.png": "b",
		"ppt/media/c.png": "c",
	}
	a := buildArchive(t, entries)

	media := ExtractMedia(a, 2)
	if len(media) != 2 {
		t.Errorf("len = %d, want cap of 2", len(media))
	}
}

func TestExtractMedia_Empty(t *testing.T) {
	a := buildArchive(t, map[string]string{"ppt/slides/slide1.xml": "x"})
	if media := ExtractMedia(a, MaxMedia); len(media) != 0 {
		t.Errorf("len = %d, want 0", len(media))
	}
}

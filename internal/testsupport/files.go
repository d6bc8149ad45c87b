package testsupport

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

var (
	// TemplateColor fills templates written by WithTemplate.
	TemplateColor = color.NRGBA{R: 30, G: 120, B: 200, A: 255}
	// IconColor fills icons written by WithIcon.
	IconColor = color.NRGBA{R: 220, G: 40, B: 40, A: 255}
)

// SolidImage returns a w×h image filled with c.
func SolidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// WritePNG writes a solid w×h PNG to path, creating parent directories.
func WritePNG(t testing.TB, path string, w, h int, c color.NRGBA) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, SolidImage(w, h, c)); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// ReadPNG decodes the PNG at path.
func ReadPNG(t testing.TB, path string) image.Image {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

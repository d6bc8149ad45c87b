package sticker_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"sticqr/internal/sticker"
)

var (
	blue = color.NRGBA{B: 255, A: 255}
	red  = color.NRGBA{R: 255, A: 255}
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writeTemplate(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestComposeScalesTemplate(t *testing.T) {
	c, err := sticker.Open(writeTemplate(t, solid(800, 600, blue)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	out, err := c.Compose(solid(20, 20, red), sticker.Position{X: 400, Y: 300}, 0.5)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := out.Bounds().Size(); got != image.Pt(400, 300) {
		t.Fatalf("size = %v, want 400x300", got)
	}
}

func TestComposeFloorsScaledDimensions(t *testing.T) {
	c := sticker.New(solid(101, 51, blue))
	out, err := c.Compose(solid(4, 4, red), sticker.Position{X: 10, Y: 10}, 0.5)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := out.Bounds().Size(); got != image.Pt(50, 25) {
		t.Fatalf("size = %v, want 50x25", got)
	}
}

func TestComposeCentersQRAndFlattens(t *testing.T) {
	c := sticker.New(image.NewNRGBA(image.Rect(0, 0, 200, 200))) // fully transparent
	out, err := c.Compose(solid(10, 10, red), sticker.Position{X: 100, Y: 50}, 0)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := out.Bounds().Size(); got != image.Pt(200, 200) {
		t.Fatalf("size = %v, want unscaled 200x200", got)
	}
	if got := out.NRGBAAt(95, 45); got != red {
		t.Fatalf("top-left of qr = %+v, want red", got)
	}
	if got := out.NRGBAAt(104, 54); got != red {
		t.Fatalf("bottom-right of qr = %+v, want red", got)
	}
	if got := out.NRGBAAt(94, 45); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("outside qr = %+v, want flattened white", got)
	}
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatalf("pixel alpha %d at byte %d; output must be opaque", out.Pix[i], i)
		}
	}
}

func TestComposeRejectsCollapsingScale(t *testing.T) {
	c := sticker.New(solid(10, 10, blue))
	if _, err := c.Compose(solid(2, 2, red), sticker.Position{}, 0.01); err == nil {
		t.Fatal("expected error when scale collapses template")
	}
	if _, err := c.Compose(solid(2, 2, red), sticker.Position{}, -1); err == nil {
		t.Fatal("expected error for negative scale")
	}
}

func TestOpenMissingTemplate(t *testing.T) {
	if _, err := sticker.Open(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing template")
	}
	if _, err := sticker.Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCreateWritesPrintResolution(t *testing.T) {
	c := sticker.New(solid(100, 80, blue))
	path := filepath.Join(t.TempDir(), sticker.FileName("abc"))
	if err := c.Create(solid(10, 10, red), sticker.Position{X: 50, Y: 40}, 0.6, path); err != nil {
		t.Fatalf("Create: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	dpi, ok := sticker.ReadDPI(data)
	if !ok || dpi != 300 {
		t.Fatalf("dpi = %d ok=%v, want 300", dpi, ok)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(60, 48) {
		t.Fatalf("size = %v, want 60x48", got)
	}
}

func TestPixelsPerMetre(t *testing.T) {
	if got := sticker.PixelsPerMetre(300); got != 11811 {
		t.Fatalf("PixelsPerMetre(300) = %d, want 11811", got)
	}
	if _, err := sticker.Encode(solid(1, 1, red), 0); err == nil {
		t.Fatal("expected error for zero dpi")
	}
}

func TestReadDPIWithoutChunk(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(2, 2, red)); err != nil {
		t.Fatal(err)
	}
	if _, ok := sticker.ReadDPI(buf.Bytes()); ok {
		t.Fatal("plain png should carry no resolution")
	}
	if _, ok := sticker.ReadDPI([]byte("not a png")); ok {
		t.Fatal("garbage should not parse")
	}
}

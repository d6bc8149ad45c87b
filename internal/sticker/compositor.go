package sticker

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"sticqr/internal/textutil"
)

// DefaultDPI is the resolution recorded in saved stickers.
const DefaultDPI = 300

// Position is the template pixel the QR code is centered on.
type Position struct {
	X int
	Y int
}

// Compositor holds a decoded template. The template is never modified, so a
// Compositor may be shared between goroutines.
type Compositor struct {
	template *image.NRGBA
}

// Open decodes the template at path.
func Open(path string) (*Compositor, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sticker template path is required")
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sticker template %s: %w", filepath.Base(path), err)
	}
	return New(img), nil
}

// New wraps an already decoded template.
func New(template image.Image) *Compositor {
	return &Compositor{template: imaging.Clone(template)}
}

// Bounds reports the template dimensions.
func (c *Compositor) Bounds() image.Rectangle {
	return c.template.Bounds()
}

// Compose pastes qr centered at pos, flattens the result onto white, and
// scales it by scale. A scale of zero or one keeps the template size.
func (c *Compositor) Compose(qr image.Image, pos Position, scale float64) (*image.NRGBA, error) {
	if qr == nil {
		return nil, errors.New("compose sticker: qr image is required")
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("compose sticker: invalid scale %v", scale)
	}

	canvas := imaging.Clone(c.template)
	qb := qr.Bounds()
	at := image.Pt(pos.X-qb.Dx()/2, pos.Y-qb.Dy()/2)
	draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(qb.Size())}, qr, qb.Min, draw.Over)

	flat := image.NewNRGBA(canvas.Bounds())
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), canvas, canvas.Bounds().Min, draw.Over)

	if scale == 0 || scale == 1 {
		return flat, nil
	}
	w := int(float64(flat.Bounds().Dx()) * scale)
	h := int(float64(flat.Bounds().Dy()) * scale)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("compose sticker: scale %v collapses %dx%d template", scale, flat.Bounds().Dx(), flat.Bounds().Dy())
	}
	return imaging.Resize(flat, w, h, imaging.Lanczos), nil
}

// FileName is the base name used for a saved sticker.
func FileName(identifier string) string {
	return "sticker_" + textutil.SanitizeSegment(identifier) + ".png"
}

// Create composes qr onto the template and saves it to path.
func (c *Compositor) Create(qr image.Image, pos Position, scale float64, path string) error {
	img, err := c.Compose(qr, pos, scale)
	if err != nil {
		return err
	}
	return Save(path, img, DefaultDPI)
}

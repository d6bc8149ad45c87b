package qrstyle

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"

	"sticqr/internal/fileutil"
	"sticqr/internal/links"
	"sticqr/internal/textutil"
)

const (
	quietZoneModules = 2
	minIconSize      = 60
	iconSizeDivisor  = 7
)

// ErrInvalidSize is returned when Render is asked for a non-positive size.
var ErrInvalidSize = errors.New("invalid qr size")

// Option configures a Compositor.
type Option func(*Compositor)

// WithIcon places the image at path in a cutout at the center of each code.
func WithIcon(path string) Option {
	return func(c *Compositor) {
		c.iconPath = strings.TrimSpace(path)
	}
}

// WithLogger sets the logger used to report icon problems.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compositor) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Compositor renders styled QR images. It is safe for concurrent use.
type Compositor struct {
	style    Style
	iconPath string
	logger   *slog.Logger

	iconOnce sync.Once
	iconSrc  image.Image
	iconErr  error
}

// NewCompositor returns a compositor bound to style.
func NewCompositor(style Style, opts ...Option) *Compositor {
	c := &Compositor{
		style:  style,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Style returns the style the compositor was built with.
func (c *Compositor) Style() Style {
	return c.style
}

// iconResult is either a resized icon or a marker that the icon step was
// skipped. It never escapes Render as an error.
type iconResult struct {
	img      *image.NRGBA
	degraded bool
	reason   string
}

func (r iconResult) ok() bool {
	return r.img != nil && !r.degraded
}

// Render produces the styled image for identifier. The result is size×size,
// or (size+2·border_width) square when a border is configured.
func (c *Compositor) Render(identifier string, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if err := links.CheckIdentifier(identifier); err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}

	symbol, err := encodeSymbol(links.Payload(identifier))
	if err != nil {
		return nil, fmt.Errorf("encode qr %s: %w", identifier, err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(img, img.Bounds(), symbol, symbol.Bounds(), draw.Src, nil)

	applyMask(img, roundedMask(size, size, float64(c.style.CornerRadius)))

	if icon := c.icon(size); icon.ok() {
		c.drawCutout(img, icon.img)
	} else if icon.reason != "" {
		c.logger.Debug("rendering without icon", "qr_id", identifier, "reason", icon.reason)
	}

	if c.style.BorderWidth > 0 {
		img = c.addBorder(img)
	}
	return img, nil
}

// encodeSymbol rasterises the payload at one pixel per module, surrounded by
// a quiet zone.
func encodeSymbol(payload string) (*image.NRGBA, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	code.DisableBorder = true
	bitmap := code.Bitmap()

	side := len(bitmap) + 2*quietZoneModules
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	black := color.NRGBA{A: 255}
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				img.SetNRGBA(x+quietZoneModules, y+quietZoneModules, black)
			}
		}
	}
	return img, nil
}

// roundedMask returns an alpha mask of a w×h rounded rectangle. The radius is
// clamped to half the shorter side; zero or less yields a plain rectangle.
func roundedMask(w, h int, radius float64) *image.Alpha {
	dc := gg.NewContext(w, h)
	limit := float64(min(w, h)) / 2
	if radius > limit {
		radius = limit
	}
	if radius <= 0 {
		dc.DrawRectangle(0, 0, float64(w), float64(h))
	} else {
		dc.DrawRoundedRectangle(0, 0, float64(w), float64(h), radius)
	}
	dc.SetColor(color.White)
	dc.Fill()
	return dc.AsMask()
}

// applyMask multiplies the alpha channel of img by mask, both anchored at the
// origin.
func applyMask(img *image.NRGBA, mask *image.Alpha) {
	b := img.Bounds().Intersect(mask.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y) + 3
			img.Pix[i] = uint8(uint16(img.Pix[i]) * uint16(mask.AlphaAt(x, y).A) / 255)
		}
	}
}

// punchHole clears alpha where mask is set, with mask placed at origin.
func punchHole(img *image.NRGBA, mask *image.Alpha, origin image.Point) {
	mb := mask.Bounds()
	for y := mb.Min.Y; y < mb.Max.Y; y++ {
		for x := mb.Min.X; x < mb.Max.X; x++ {
			p := image.Pt(x+origin.X, y+origin.Y)
			if !p.In(img.Bounds()) {
				continue
			}
			i := img.PixOffset(p.X, p.Y) + 3
			img.Pix[i] = uint8(uint16(img.Pix[i]) * uint16(255-mask.AlphaAt(x, y).A) / 255)
		}
	}
}

func fillShape(img *image.NRGBA, origin image.Point, side int, radius float64, fill color.NRGBA) {
	if side <= 0 {
		return
	}
	mask := roundedMask(side, side, radius)
	rect := image.Rect(origin.X, origin.Y, origin.X+side, origin.Y+side)
	draw.DrawMask(img, rect, image.NewUniform(fill), image.Point{}, mask, image.Point{}, draw.Over)
}

// icon decodes the configured icon once and resizes it for this render.
func (c *Compositor) icon(size int) iconResult {
	if c.iconPath == "" {
		return iconResult{degraded: true}
	}
	c.iconOnce.Do(func() {
		c.iconSrc, c.iconErr = imaging.Open(c.iconPath)
		if c.iconErr != nil {
			c.logger.Warn("icon unavailable; rendering without cutout",
				"path", c.iconPath,
				"error", c.iconErr,
			)
		}
	})
	if c.iconErr != nil {
		return iconResult{degraded: true, reason: c.iconErr.Error()}
	}
	side := IconSize(size)
	return iconResult{img: imaging.Resize(c.iconSrc, side, side, imaging.Lanczos)}
}

// IconSize is the square edge of the icon placed in a size-pixel code.
func IconSize(size int) int {
	return max(minIconSize, size/iconSizeDivisor)
}

// CutoutSize is the square edge of the cleared area around an icon of the
// given size.
func (s Style) CutoutSize(iconSize int) int {
	total := iconSize + 2*s.FrameInnerPadding + 2*s.CutoutPadding
	if s.FrameEnabled {
		total += 2 * s.FrameWidth
	}
	return total
}

func (c *Compositor) drawCutout(img *image.NRGBA, icon *image.NRGBA) {
	size := img.Bounds().Dx()
	iconSide := icon.Bounds().Dx()
	style := c.style

	if style.CutoutShape == ShapeRoundedSquare {
		total := style.CutoutSize(iconSide)
		origin := image.Pt((size-total)/2, (size-total)/2)

		punchHole(img, roundedMask(total, total, float64(total)/6), origin)
		fillShape(img, origin, total, float64(total)/6, style.CutoutBackground)

		if style.FrameEnabled && style.FrameWidth > 0 {
			outer := total - 2*style.CutoutPadding
			outerOrigin := origin.Add(image.Pt(style.CutoutPadding, style.CutoutPadding))
			fillShape(img, outerOrigin, outer, float64(outer)/8, style.FrameColor)

			inner := outer - 2*style.FrameWidth
			innerOrigin := outerOrigin.Add(image.Pt(style.FrameWidth, style.FrameWidth))
			fillShape(img, innerOrigin, inner, float64(inner)/8, style.CutoutBackground)
		}
	}

	at := image.Pt((size-iconSide)/2, (size-iconSide)/2)
	draw.Draw(img, icon.Bounds().Add(at), icon, image.Point{}, draw.Over)
}

func (c *Compositor) addBorder(img *image.NRGBA) *image.NRGBA {
	b := c.style.BorderWidth
	side := img.Bounds().Dx() + 2*b
	canvas := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(c.style.BorderColor), image.Point{}, draw.Src)
	draw.Draw(canvas, img.Bounds().Add(image.Pt(b, b)), img, image.Point{}, draw.Over)
	return canvas
}

// FileName is the base name used for a saved QR image.
func FileName(identifier string) string {
	return "carqr_" + textutil.SanitizeSegment(identifier) + ".png"
}

// SaveQR writes img as dir/carqr_{identifier}.png and returns the path.
func SaveQR(dir, identifier string, img image.Image) (string, error) {
	if err := links.CheckIdentifier(identifier); err != nil {
		return "", fmt.Errorf("save qr: %w", err)
	}
	path := filepath.Join(dir, FileName(identifier))
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return png.Encode(w, img)
	})
	if err != nil {
		return "", fmt.Errorf("save qr %s: %w", identifier, err)
	}
	return path, nil
}

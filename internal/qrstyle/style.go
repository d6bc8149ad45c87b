package qrstyle

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ShapeRoundedSquare is the only cutout shape the compositor knows how to
// draw. Other names are accepted and render without a cutout.
const ShapeRoundedSquare = "rounded_square"

// ErrInvalidStyle marks override keys or values that cannot be applied.
var ErrInvalidStyle = errors.New("invalid style")

// Overrides maps style keys (corner_radius, border_color, ...) to values as
// they arrive from TOML or callers: ints, floats, bools, strings, or color
// arrays.
type Overrides map[string]any

// Style is the resolved, immutable set of visual parameters.
type Style struct {
	CornerRadius      int
	BorderWidth       int
	BorderColor       color.NRGBA
	CutoutShape       string
	CutoutPadding     int
	CutoutBackground  color.NRGBA
	FrameEnabled      bool
	FrameWidth        int
	FrameColor        color.NRGBA
	FrameInnerPadding int
}

// Defaults returns the stock sticker style.
func Defaults() Style {
	return Style{
		CornerRadius:      30,
		BorderWidth:       5,
		BorderColor:       color.NRGBA{R: 50, G: 50, B: 50, A: 255},
		CutoutShape:       ShapeRoundedSquare,
		CutoutPadding:     10,
		CutoutBackground:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		FrameEnabled:      true,
		FrameWidth:        8,
		FrameColor:        color.NRGBA{R: 40, G: 40, B: 40, A: 255},
		FrameInnerPadding: 4,
	}
}

type setter func(*Style, any) error

var setters = map[string]setter{
	"corner_radius": func(s *Style, v any) error {
		return setNonNegative(&s.CornerRadius, v)
	},
	"border_width": func(s *Style, v any) error {
		return setNonNegative(&s.BorderWidth, v)
	},
	"border_color": func(s *Style, v any) error {
		return setColor(&s.BorderColor, v)
	},
	"cutout_shape": func(s *Style, v any) error {
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		s.CutoutShape = strings.TrimSpace(str)
		return nil
	},
	"cutout_padding": func(s *Style, v any) error {
		return setNonNegative(&s.CutoutPadding, v)
	},
	"cutout_background": func(s *Style, v any) error {
		return setColor(&s.CutoutBackground, v)
	},
	"frame_enabled": func(s *Style, v any) error {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		s.FrameEnabled = b
		return nil
	},
	"frame_width": func(s *Style, v any) error {
		return setNonNegative(&s.FrameWidth, v)
	},
	"frame_color": func(s *Style, v any) error {
		return setColor(&s.FrameColor, v)
	},
	"frame_inner_padding": func(s *Style, v any) error {
		return setNonNegative(&s.FrameInnerPadding, v)
	},
}

// Keys lists the recognised override keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewStyle merges overrides over Defaults key by key. Keys are applied in
// sorted order so error messages are stable.
func NewStyle(overrides Overrides) (Style, error) {
	style := Defaults()
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		set, ok := setters[key]
		if !ok {
			return Style{}, fmt.Errorf("%w: unknown key style.%s", ErrInvalidStyle, key)
		}
		if err := set(&style, overrides[key]); err != nil {
			return Style{}, fmt.Errorf("%w: style.%s: %v", ErrInvalidStyle, key, err)
		}
	}
	return style, nil
}

func setNonNegative(dst *int, v any) error {
	n, err := toInt(v)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("must be >= 0, got %d", n)
	}
	*dst = n
	return nil
}

func setColor(dst *color.NRGBA, v any) error {
	c, err := ParseColor(v)
	if err != nil {
		return err
	}
	*dst = c
	return nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected whole number, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

// ParseColor accepts "#rgb", "#rrggbb", "#rrggbbaa", or a three or four
// element integer sequence in 0..255.
func ParseColor(v any) (color.NRGBA, error) {
	switch c := v.(type) {
	case color.NRGBA:
		return c, nil
	case string:
		return parseHexColor(c)
	case []int:
		vals := make([]any, len(c))
		for i, x := range c {
			vals[i] = x
		}
		return parseColorComponents(vals)
	case []int64:
		vals := make([]any, len(c))
		for i, x := range c {
			vals[i] = x
		}
		return parseColorComponents(vals)
	case []any:
		return parseColorComponents(c)
	default:
		return color.NRGBA{}, fmt.Errorf("unsupported color value %T", v)
	}
}

func parseHexColor(raw string) (color.NRGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", raw)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", raw)
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

func parseColorComponents(vals []any) (color.NRGBA, error) {
	if len(vals) != 3 && len(vals) != 4 {
		return color.NRGBA{}, fmt.Errorf("color needs 3 or 4 components, got %d", len(vals))
	}
	comps := [4]uint8{0, 0, 0, 255}
	for i, v := range vals {
		n, err := toInt(v)
		if err != nil {
			return color.NRGBA{}, err
		}
		if n < 0 || n > 255 {
			return color.NRGBA{}, fmt.Errorf("color component %d out of range", n)
		}
		comps[i] = uint8(n)
	}
	return color.NRGBA{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}, nil
}

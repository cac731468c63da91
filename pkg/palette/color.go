// color.go - Product palette: one base colour and the tones derived from it.
// Every background and chip tone of a card is a Lighten/Darken of the product's
// average colour, so variants stay coherent without per-variant palettes.
package palette

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Color is an opaque RGB triple.
type Color struct {
	R, G, B uint8
}

// Neutral is used as the average of a cutout that has no opaque pixel.
var Neutral = Color{128, 128, 128}

var (
	White = Color{255, 255, 255}
	Black = Color{0, 0, 0}
)

// RGBA returns the colour as an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{c.R, c.G, c.B, 255}
}

// WithAlpha returns the colour as a non-premultiplied color.NRGBA.
func (c Color) WithAlpha(a uint8) color.NRGBA {
	return color.NRGBA{c.R, c.G, c.B, a}
}

// Hex formats the colour as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Lighten moves each channel toward 255 by fraction f.
// f is clamped to [0,1]; f=0 is the identity and f=1 yields white.
func Lighten(c Color, f float64) Color {
	f = clampUnit(f)
	return Color{
		R: uint8(float64(c.R) + (255-float64(c.R))*f),
		G: uint8(float64(c.G) + (255-float64(c.G))*f),
		B: uint8(float64(c.B) + (255-float64(c.B))*f),
	}
}

// Darken moves each channel toward 0 by fraction f.
// f is clamped to [0,1]; f=0 is the identity and f=1 yields black.
func Darken(c Color, f float64) Color {
	f = clampUnit(f)
	return Color{
		R: uint8(float64(c.R) * (1 - f)),
		G: uint8(float64(c.G) * (1 - f)),
		B: uint8(float64(c.B) * (1 - f)),
	}
}

// Mix linearly interpolates from a (t=0) to b (t=1), truncating each channel.
func Mix(a, b Color, t float64) Color {
	t = clampUnit(t)
	return Color{
		R: lerp(a.R, b.R, t),
		G: lerp(a.G, b.G, t),
		B: lerp(a.B, b.B, t),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	v := (1-t)*float64(a) + t*float64(b)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Brightness is the integer mean of the three channels.
func Brightness(c Color) int {
	return (int(c.R) + int(c.G) + int(c.B)) / 3
}

// ContrastText picks white text for dark backgrounds and black otherwise.
func ContrastText(bg Color) Color {
	if Brightness(bg) < 128 {
		return White
	}
	return Black
}

// Average returns the mean colour of all pixels with non-zero alpha.
// ok is false, and Neutral is returned, when no such pixel exists.
func Average(img image.Image) (avg Color, ok bool) {
	b := img.Bounds()
	var sr, sg, sb, n uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			sr += uint64(c.R)
			sg += uint64(c.G)
			sb += uint64(c.B)
			n++
		}
	}
	if n == 0 {
		return Neutral, false
	}
	return Color{uint8(sr / n), uint8(sg / n), uint8(sb / n)}, true
}

// ParseHex parses "#rrggbb" (the leading '#' is optional).
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: expected 6-char hex", s)
	}

	rv, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("invalid red channel in %q: %w", s, err)
	}
	gv, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("invalid green channel in %q: %w", s, err)
	}
	bv, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("invalid blue channel in %q: %w", s, err)
	}

	return Color{uint8(rv), uint8(gv), uint8(bv)}, nil
}

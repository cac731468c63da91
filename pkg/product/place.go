// place.go - Anchoring, drop shadows and compositing of product sprites.
package product

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/xob0t/GoCard/pkg/errors"
	"github.com/xob0t/GoCard/pkg/palette"
)

// AnchorKind names a placement rule.
type AnchorKind string

const (
	AnchorBottomCenter AnchorKind = "bottom-center"
	AnchorCenter       AnchorKind = "center"
	AnchorCenterOffset AnchorKind = "center-offset"
)

// ParseAnchor resolves an anchor name; the empty string means bottom-center.
func ParseAnchor(s string) (AnchorKind, error) {
	switch k := AnchorKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return AnchorBottomCenter, nil
	case AnchorBottomCenter, AnchorCenter, AnchorCenterOffset:
		return k, nil
	}
	return "", errors.New(errors.ErrCodeInvalidPreset, "unknown anchor %q", s)
}

// Anchor is a pure rule that maps canvas and sprite sizes to a top-left point.
type Anchor struct {
	Kind    AnchorKind
	Margin  int // distance from the bottom edge (bottom-center)
	OffsetX int // shift applied by center-offset
	OffsetY int
}

// Position returns the sprite's top-left corner on the canvas.
func (a Anchor) Position(canvas, sprite image.Point) image.Point {
	x := floorDiv(canvas.X-sprite.X, 2)
	switch a.Kind {
	case AnchorCenter:
		return image.Pt(x, floorDiv(canvas.Y-sprite.Y, 2))
	case AnchorCenterOffset:
		return image.Pt(x+a.OffsetX, floorDiv(canvas.Y-sprite.Y, 2)+a.OffsetY)
	default:
		return image.Pt(x, canvas.Y-sprite.Y-a.Margin)
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Shadow describes the blurred silhouette pasted under a sprite. A negative
// Offset with a light Tint gives the "glow" look.
type Shadow struct {
	Alpha  uint8       // mask value where the sprite is opaque
	Blur   float64     // Gaussian sigma
	Offset image.Point // delta from the sprite's own position
	Tint   *palette.Color
}

// ShadowMask is a blurred single-channel silhouette of a sprite. The mask is
// Pad pixels larger than the sprite on every side so the blur is not clipped.
type ShadowMask struct {
	Alpha *image.Alpha
	Pad   int
}

// NewShadowMask thresholds sprite alpha (opaque -> value, transparent -> 0)
// and blurs the result.
func NewShadowMask(sprite *image.NRGBA, value uint8, blur float64) *ShadowMask {
	pad := 0
	if blur > 0 {
		pad = int(math.Ceil(3 * blur))
	}
	sb := sprite.Bounds()
	gray := image.NewGray(image.Rect(0, 0, sb.Dx()+2*pad, sb.Dy()+2*pad))
	for y := 0; y < sb.Dy(); y++ {
		for x := 0; x < sb.Dx(); x++ {
			if sprite.Pix[sprite.PixOffset(sb.Min.X+x, sb.Min.Y+y)+3] > 0 {
				gray.Pix[gray.PixOffset(x+pad, y+pad)] = value
			}
		}
	}

	mask := image.NewAlpha(gray.Bounds())
	if blur <= 0 {
		copy(mask.Pix, gray.Pix)
		return &ShadowMask{Alpha: mask, Pad: pad}
	}
	blurred := imaging.Blur(gray, blur)
	for i := range mask.Pix {
		mask.Pix[i] = blurred.Pix[i*4]
	}
	return &ShadowMask{Alpha: mask, Pad: pad}
}

// Paste composites the mask onto canvas with the silhouette's top-left at
// at. Without a tint each pixel takes the mask value as both its gray level
// and its coverage; with a tint the colour is uniform.
func (m *ShadowMask) Paste(canvas draw.Image, at image.Point, tint *palette.Color) {
	origin := at.Sub(image.Pt(m.Pad, m.Pad))
	r := m.Alpha.Bounds().Add(origin)

	var src image.Image
	if tint != nil {
		src = &image.Uniform{tint.RGBA()}
	} else {
		gray := &image.Gray{Pix: m.Alpha.Pix, Stride: m.Alpha.Stride, Rect: m.Alpha.Rect}
		src = gray
	}
	draw.DrawMask(canvas, r, src, image.Point{}, m.Alpha, image.Point{}, draw.Over)
}

// PasteShadow pastes the shadow of a sprite placed at at. A zero Alpha
// draws nothing.
func PasteShadow(canvas draw.Image, sprite *image.NRGBA, at image.Point, shadow Shadow) {
	if shadow.Alpha == 0 {
		return
	}
	mask := NewShadowMask(sprite, shadow.Alpha, shadow.Blur)
	mask.Paste(canvas, at.Add(shadow.Offset), shadow.Tint)
}

// Place pastes the shadow (when given) and then the sprite at at. The order
// is fixed: opaque sprite pixels always end up on top of the shadow. It
// returns the rectangle covered by the sprite.
func Place(canvas draw.Image, sprite *image.NRGBA, at image.Point, shadow *Shadow) image.Rectangle {
	if shadow != nil {
		PasteShadow(canvas, sprite, at, *shadow)
	}
	r := image.Rectangle{Min: at, Max: at.Add(sprite.Bounds().Size())}
	draw.Draw(canvas, r, sprite, sprite.Bounds().Min, draw.Over)
	return r
}

// ColorAt is a small helper for callers that inspect composited output.
func ColorAt(img image.Image, p image.Point) palette.Color {
	c := color.RGBAModel.Convert(img.At(p.X, p.Y)).(color.RGBA)
	return palette.Color{R: c.R, G: c.G, B: c.B}
}

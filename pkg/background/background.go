// background.go - Procedural card backgrounds.
// Each Kind is one recipe that fills a full, opaque canvas from one or two
// palette tones. Recipes that need randomness draw it from the caller's source.
package background

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/xob0t/GoCard/pkg/errors"
	"github.com/xob0t/GoCard/pkg/palette"
)

// Kind names a background recipe.
type Kind string

const (
	KindSolid    Kind = "solid"    // flat fill (the dark "glow" panel)
	KindSplit    Kind = "split"    // top half Primary, bottom half Secondary
	KindLinear   Kind = "linear"   // vertical gradient Primary -> Secondary
	KindRadial   Kind = "radial"   // Primary at the centre -> Secondary at the corners
	KindDiagonal Kind = "diagonal" // top-left Primary -> bottom-right Secondary, drawn as strokes
	KindPattern  Kind = "pattern"  // diagonal strokes of Secondary over Primary, softened
	KindCloud    Kind = "cloud"    // blurred noise lightened against Primary
	KindBokeh    Kind = "bokeh"    // blurred translucent white circles over Primary
	KindPool     Kind = "pool"     // a raster drawn from an asset pool, resized to the canvas
)

// Kinds lists every recipe in a stable order.
func Kinds() []Kind {
	return []Kind{KindSolid, KindSplit, KindLinear, KindRadial, KindDiagonal, KindPattern, KindCloud, KindBokeh, KindPool}
}

// ParseKind resolves a recipe name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidPreset, "unknown background kind %q", s)
}

// Spec holds a recipe and its resolved parameters. Zero-valued parameters
// are replaced by the recipe's defaults (see applyDefaults).
type Spec struct {
	Kind      Kind
	Primary   palette.Color
	Secondary palette.Color

	// Pattern.
	Spacing     int
	StrokeWidth float64

	// Alpha of the flat white layer composited last (pattern, bokeh).
	Overlay uint8

	// Blur is the main Gaussian sigma (cloud noise, bokeh layer) and
	// FinalBlur the cloud recipe's second, lighter pass.
	Blur      float64
	FinalBlur float64

	// PostBlur softens any finished canvas, after the hatch.
	PostBlur float64

	// Bokeh circles.
	Circles   int
	MinRadius int
	MaxRadius int
	MinAlpha  int
	MaxAlpha  int

	// Image is the pool raster for KindPool.
	Image image.Image

	// Hatch, when set, strokes a translucent line pattern over the result.
	Hatch *Hatch
}

// Hatch is a set of parallel anti-diagonal strokes, from (i,0) to (0,i).
type Hatch struct {
	Spacing int
	Width   float64
	Color   color.NRGBA
}

func applyDefaults(s *Spec) {
	switch s.Kind {
	case KindPattern:
		if s.Spacing <= 0 {
			s.Spacing = 50
		}
		if s.StrokeWidth <= 0 {
			s.StrokeWidth = 5
		}
		if s.Overlay == 0 {
			s.Overlay = 80
		}
	case KindDiagonal:
		if s.StrokeWidth <= 0 {
			s.StrokeWidth = 2
		}
	case KindCloud:
		if s.Blur <= 0 {
			s.Blur = 10
		}
		if s.FinalBlur <= 0 {
			s.FinalBlur = 5
		}
	case KindBokeh:
		if s.Circles <= 0 {
			s.Circles = 30
		}
		if s.MinRadius <= 0 {
			s.MinRadius = 30
		}
		if s.MaxRadius < s.MinRadius {
			s.MaxRadius = max(120, s.MinRadius)
		}
		if s.MinAlpha <= 0 {
			s.MinAlpha = 30
		}
		if s.MaxAlpha < s.MinAlpha {
			s.MaxAlpha = max(100, s.MinAlpha)
		}
		if s.Blur <= 0 {
			s.Blur = 10
		}
		if s.Overlay == 0 {
			s.Overlay = 30
		}
	}
	if s.Hatch != nil {
		if s.Hatch.Spacing <= 0 {
			s.Hatch.Spacing = 20
		}
		if s.Hatch.Width <= 0 {
			s.Hatch.Width = 2
		}
		if s.Hatch.Color == (color.NRGBA{}) {
			s.Hatch.Color = palette.White.WithAlpha(10)
		}
	}
}

// Generate builds an opaque width x height canvas for spec.
// rng is only consulted by the cloud and bokeh recipes; it may be nil otherwise.
func Generate(width, height int, spec Spec, rng *rand.Rand) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "canvas size %dx%d must be positive", width, height)
	}
	applyDefaults(&spec)

	if (spec.Kind == KindCloud || spec.Kind == KindBokeh) && rng == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s background needs a random source", spec.Kind)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	switch spec.Kind {
	case KindSolid, "":
		fill(img, spec.Primary)
	case KindSplit:
		drawSplit(img, spec.Primary, spec.Secondary)
	case KindLinear:
		drawLinear(img, spec.Primary, spec.Secondary)
	case KindRadial:
		drawRadial(img, spec.Primary, spec.Secondary)
	case KindDiagonal:
		drawDiagonal(img, spec.Primary, spec.Secondary, spec.StrokeWidth)
	case KindPattern:
		drawPattern(img, spec)
	case KindCloud:
		drawCloud(img, spec, rng)
	case KindBokeh:
		drawBokeh(img, spec, rng)
	case KindPool:
		if spec.Image == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "pool background has no image")
		}
		// Pool rasters may carry alpha; flatten them onto the base tone.
		fill(img, spec.Primary)
		draw.Draw(img, img.Bounds(), imaging.Resize(spec.Image, width, height, imaging.Lanczos), image.Point{}, draw.Over)
	default:
		return nil, errors.New(errors.ErrCodeInvalidPreset, "unknown background kind %q", spec.Kind)
	}

	if spec.Hatch != nil {
		drawHatch(img, *spec.Hatch)
	}
	blur(img, spec.PostBlur)
	return img, nil
}

// fill paints the whole image with c using draw.Draw (O(1) source).
func fill(img *image.RGBA, c palette.Color) {
	draw.Draw(img, img.Bounds(), &image.Uniform{c.RGBA()}, image.Point{}, draw.Src)
}

// overlay composites a flat, translucent layer over the whole image.
func overlay(img *image.RGBA, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Over)
}

// blur replaces img with its Gaussian blur.
func blur(img *image.RGBA, sigma float64) {
	if sigma <= 0 {
		return
	}
	draw.Draw(img, img.Bounds(), imaging.Blur(img, sigma), image.Point{}, draw.Src)
}

func setRow(img *image.RGBA, y int, c palette.Color) {
	row := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
	for i := 0; i < len(row); i += 4 {
		row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, 255
	}
}

func drawSplit(img *image.RGBA, top, bottom palette.Color) {
	h := img.Rect.Dy()
	for y := 0; y < h; y++ {
		if y < h/2 {
			setRow(img, y, top)
		} else {
			setRow(img, y, bottom)
		}
	}
}

func drawLinear(img *image.RGBA, top, bottom palette.Color) {
	h := img.Rect.Dy()
	for y := 0; y < h; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y) / float64(h-1)
		}
		setRow(img, y, palette.Mix(top, bottom, t))
	}
}

func drawRadial(img *image.RGBA, inner, outer palette.Color) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	cx, cy := w/2, h/2
	maxR := math.Hypot(float64(cx), float64(cy))
	if maxR == 0 {
		maxR = 1
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := math.Hypot(float64(x-cx), float64(y-cy)) / maxR
			c := palette.Mix(inner, outer, t)
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, 255
		}
	}
}

// drawDiagonal sweeps i over [0, w+h) and strokes one anti-diagonal line per
// step. Adjacent strokes overlap, which blends them into a smooth gradient.
func drawDiagonal(img *image.RGBA, from, to palette.Color, width float64) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	fill(img, from)

	dc := gg.NewContextForRGBA(img)
	dc.SetLineWidth(width)
	steps := w + h
	for i := 0; i < steps; i++ {
		x, y := i, 0
		if x > w {
			x, y = w, i-w
		}
		c := palette.Mix(from, to, float64(i)/float64(steps))
		dc.SetColor(c.RGBA())
		dc.DrawLine(float64(x), float64(y), float64(x-h), float64(y+h))
		dc.Stroke()
	}
}

func drawPattern(img *image.RGBA, s Spec) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	fill(img, s.Primary)

	dc := gg.NewContextForRGBA(img)
	dc.SetLineWidth(s.StrokeWidth)
	dc.SetColor(s.Secondary.RGBA())
	for x := -h; x < w+h/2; x += s.Spacing {
		dc.DrawLine(float64(x), 0, float64(x+h), float64(h))
		dc.Stroke()
	}
	overlay(img, palette.White.WithAlpha(s.Overlay))
}

// drawCloud blurs uniform RGB noise, keeps the per-channel maximum against
// the base fill ("lighten" blend) and blurs the result once more.
func drawCloud(img *image.RGBA, s Spec, rng *rand.Rand) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	noise := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(noise.Pix); i += 4 {
		noise.Pix[i] = uint8(rng.IntN(255))
		noise.Pix[i+1] = uint8(rng.IntN(255))
		noise.Pix[i+2] = uint8(rng.IntN(255))
		noise.Pix[i+3] = 255
	}
	blurred := imaging.Blur(noise, s.Blur)

	base := [3]uint8{s.Primary.R, s.Primary.G, s.Primary.B}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := blurred.PixOffset(x, y)
			di := img.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				img.Pix[di+ch] = max(base[ch], blurred.Pix[si+ch])
			}
			img.Pix[di+3] = 255
		}
	}
	blur(img, s.FinalBlur)
}

// drawBokeh scatters translucent white circles (centres may fall outside the
// canvas), blurs the layer and adds a faint global white overlay.
func drawBokeh(img *image.RGBA, s Spec, rng *rand.Rand) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	fill(img, s.Primary)

	dc := gg.NewContextForRGBA(img)
	for i := 0; i < s.Circles; i++ {
		r := randInt(rng, s.MinRadius, s.MaxRadius)
		x := randInt(rng, -r, w+r)
		y := randInt(rng, -r, h+r)
		a := randInt(rng, s.MinAlpha, s.MaxAlpha)

		dc.SetColor(palette.White.WithAlpha(uint8(min(a, 255))))
		dc.DrawCircle(float64(x), float64(y), float64(r))
		dc.Fill()
	}
	blur(img, s.Blur)
	overlay(img, palette.White.WithAlpha(s.Overlay))
}

func drawHatch(img *image.RGBA, hatch Hatch) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	dc := gg.NewContextForRGBA(img)
	dc.SetLineWidth(hatch.Width)
	dc.SetColor(hatch.Color)
	for i := 0; i < w+h; i += hatch.Spacing {
		dc.DrawLine(float64(i), 0, 0, float64(i))
		dc.Stroke()
	}
}

// randInt returns a uniform integer in [lo, hi], both inclusive.
func randInt(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

// String implements fmt.Stringer for log output.
func (s Spec) String() string {
	return fmt.Sprintf("%s(%s,%s)", s.Kind, s.Primary.Hex(), s.Secondary.Hex())
}

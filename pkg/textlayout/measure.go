package textlayout

import (
	"image"

	"golang.org/x/image/font"
)

// MinSize is the smallest size Fit ever shrinks to.
const MinSize = 10

// Measure returns the ink bounding box of text rendered with face, relative
// to the dot at the origin.
func Measure(face font.Face, text string) image.Rectangle {
	if text == "" {
		return image.Rectangle{}
	}
	b, _ := font.BoundString(face, text)
	return image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
}

// MeasureAt measures text at size with a fresh face from src.
func MeasureAt(src *Source, size float64, text string) image.Rectangle {
	face := src.Face(size)
	defer face.Close()
	return Measure(face, text)
}

// FitOptions tune the shrink loop.
type FitOptions struct {
	Step  float64 // decrement per iteration, default 2
	Floor float64 // lowest size, never below MinSize
}

func (o FitOptions) normalize() FitOptions {
	if o.Step <= 0 {
		o.Step = 2
	}
	if o.Floor < MinSize {
		o.Floor = MinSize
	}
	return o
}

// Fit shrinks size by Step until the ink width of text is at most maxWidth
// or the floor is reached. maxWidth <= 0 disables fitting. Fit is
// idempotent: fitting the result again returns the same size.
func Fit(src *Source, text string, size float64, maxWidth int, opts FitOptions) float64 {
	opts = opts.normalize()
	if maxWidth <= 0 || text == "" {
		return size
	}
	for {
		if MeasureAt(src, size, text).Dx() <= maxWidth || size <= opts.Floor {
			return size
		}
		size = max(size-opts.Step, opts.Floor)
	}
}

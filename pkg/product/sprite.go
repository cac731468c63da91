// sprite.go - Trimming and area-constrained scaling of product cutouts.
// Every function returns a new sprite; inputs are never modified.
package product

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/xob0t/GoCard/pkg/errors"
)

// OpaqueBounds returns the bounding box of all pixels with non-zero alpha.
// ok is false when the image has no such pixel.
func OpaqueBounds(img image.Image) (r image.Rectangle, ok bool) {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if transparentAt(img, x, y) {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// transparentAt reports a fully transparent pixel at the source's native
// depth, so faint 16-bit alpha still counts as content.
func transparentAt(img image.Image, x, y int) bool {
	switch m := img.(type) {
	case *image.NRGBA:
		return m.Pix[m.PixOffset(x, y)+3] == 0
	case *image.RGBA:
		return m.Pix[m.PixOffset(x, y)+3] == 0
	default:
		_, _, _, a := img.At(x, y).RGBA()
		return a == 0
	}
}

// Trim crops img to its opaque bounding box. The result has its origin at
// (0,0) and no fully transparent border rows or columns. A cutout without any
// non-transparent pixel fails with EMPTY_SPRITE.
func Trim(img image.Image) (*image.NRGBA, error) {
	r, ok := OpaqueBounds(img)
	if !ok {
		return nil, errors.New(errors.ErrCodeEmptySprite, "cutout has no non-transparent pixels")
	}
	return imaging.Crop(img, r), nil
}

// AreaRange converts canvas-area ratios into pixel-area bounds.
func AreaRange(canvasW, canvasH int, minRatio, maxRatio float64) (minArea, maxArea int) {
	area := float64(canvasW * canvasH)
	minArea = int(area * minRatio)
	maxArea = int(area * maxRatio)
	if maxArea < minArea {
		maxArea = minArea
	}
	return minArea, maxArea
}

// ScaleToArea rescales sprite uniformly so that its area lies in
// [minArea, maxArea]: up by sqrt(minArea/A) when smaller, down by
// sqrt(maxArea/A) when larger, untouched otherwise. Returns the new sprite
// and the factor applied.
func ScaleToArea(sprite *image.NRGBA, minArea, maxArea int) (*image.NRGBA, float64, error) {
	w, h := sprite.Bounds().Dx(), sprite.Bounds().Dy()
	area := w * h
	if area == 0 {
		return nil, 0, errors.New(errors.ErrCodeEmptySprite, "sprite has zero area")
	}

	scale := 1.0
	switch {
	case area < minArea:
		scale = math.Sqrt(float64(minArea) / float64(area))
	case area > maxArea:
		scale = math.Sqrt(float64(maxArea) / float64(area))
	}
	return resize(sprite, scale), scale, nil
}

// ScaleToTarget rescales sprite so that its area is approximately target.
func ScaleToTarget(sprite *image.NRGBA, target float64) (*image.NRGBA, float64, error) {
	w, h := sprite.Bounds().Dx(), sprite.Bounds().Dy()
	if w*h == 0 {
		return nil, 0, errors.New(errors.ErrCodeEmptySprite, "sprite has zero area")
	}
	scale := math.Sqrt(target / float64(w*h))
	return resize(sprite, scale), scale, nil
}

// resize applies a Lanczos resample when the factor is meaningfully
// different from 1 and returns a copy otherwise.
func resize(sprite *image.NRGBA, scale float64) *image.NRGBA {
	if math.Abs(scale-1) <= 1e-3 {
		return imaging.Clone(sprite)
	}
	w, h := sprite.Bounds().Dx(), sprite.Bounds().Dy()
	nw := max(int(float64(w)*scale), 1)
	nh := max(int(float64(h)*scale), 1)
	return imaging.Resize(sprite, nw, nh, imaging.Lanczos)
}

// Solid returns a w x h sprite filled with c, mostly useful for previews and tests.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

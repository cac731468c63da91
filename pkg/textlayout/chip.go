// chip.go - Rounded background rectangles drawn behind text.
package textlayout

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Chip is a filled rounded rectangle around a text box. Fill may be
// translucent; FillImage, when set, is resized to the chip and used instead.
type Chip struct {
	Fill      color.NRGBA
	FillImage image.Image
	Radius    float64
	Shadow    *ChipShadow
}

// ChipShadow is a blurred rectangle pasted under the chip.
type ChipShadow struct {
	Color  color.NRGBA
	Blur   float64
	Offset image.Point
}

// ChipRect returns the chip rectangle for a text box of tw x th at origin.
// Its size is exactly (tw+2*padX) x (th+2*padY).
func ChipRect(origin image.Point, tw, th, padX, padY int) image.Rectangle {
	return image.Rect(origin.X, origin.Y, origin.X+tw+2*padX, origin.Y+th+2*padY)
}

// DrawChip paints chip over r. It returns the fill image actually used, so
// callers can derive a contrasting text colour from it.
func DrawChip(dst *image.RGBA, r image.Rectangle, chip Chip) image.Image {
	if r.Empty() {
		return nil
	}
	if chip.Shadow != nil {
		drawRectShadow(dst, r, *chip.Shadow)
	}

	dc := gg.NewContextForRGBA(dst)
	x, y, w, h := float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy())
	if chip.Radius > 0 {
		dc.DrawRoundedRectangle(x, y, w, h, chip.Radius)
	} else {
		dc.DrawRectangle(x, y, w, h)
	}

	if chip.FillImage == nil {
		dc.SetColor(chip.Fill)
		dc.Fill()
		return nil
	}
	fill := imaging.Resize(chip.FillImage, r.Dx(), r.Dy(), imaging.Lanczos)
	dc.Clip()
	dc.DrawImage(fill, r.Min.X, r.Min.Y)
	dc.ResetClip()
	return fill
}

func drawRectShadow(dst *image.RGBA, r image.Rectangle, s ChipShadow) {
	pad := int(3*s.Blur) + 1
	layer := image.NewNRGBA(image.Rect(0, 0, r.Dx()+2*pad, r.Dy()+2*pad))
	draw.Draw(layer, image.Rect(pad, pad, pad+r.Dx(), pad+r.Dy()), &image.Uniform{s.Color}, image.Point{}, draw.Src)

	var src image.Image = layer
	if s.Blur > 0 {
		src = imaging.Blur(layer, s.Blur)
	}
	at := r.Min.Add(s.Offset).Sub(image.Pt(pad, pad))
	draw.Draw(dst, src.Bounds().Add(at), src, image.Point{}, draw.Over)
}

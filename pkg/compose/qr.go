package compose

import (
	"image"
	"image/draw"

	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"

	"github.com/xob0t/GoCard/pkg/errors"
)

// qrPlatePad is the white quiet zone around the code.
const qrPlatePad = 12

// QRBadge encodes text as a size x size QR image without its own border.
func QRBadge(text string, size int) (image.Image, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode qr")
	}
	q.DisableBorder = true
	return q.Image(size), nil
}

// QRRect is where the badge plate goes on a canvas of the given size.
func (c *Composer) QRRect(canvas image.Point) image.Rectangle {
	edge := c.cfg.QRSize + 2*qrPlatePad
	corner := canvas.Sub(image.Pt(c.cfg.QRMargin, c.cfg.QRMargin))
	return image.Rectangle{Min: corner.Sub(image.Pt(edge, edge)), Max: corner}
}

func (c *Composer) drawQR(dst *image.RGBA, text string) error {
	badge, err := QRBadge(text, c.cfg.QRSize)
	if err != nil {
		return err
	}
	plate := c.QRRect(dst.Bounds().Size())

	dc := gg.NewContextForRGBA(dst)
	dc.SetRGB(1, 1, 1)
	dc.DrawRoundedRectangle(float64(plate.Min.X), float64(plate.Min.Y), float64(plate.Dx()), float64(plate.Dy()), qrPlatePad)
	dc.Fill()

	at := plate.Min.Add(image.Pt(qrPlatePad, qrPlatePad))
	draw.Draw(dst, badge.Bounds().Sub(badge.Bounds().Min).Add(at), badge, badge.Bounds().Min, draw.Src)
	return nil
}

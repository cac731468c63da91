// tone.go - Colour expressions resolved against the product's average colour.
package template

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/xob0t/GoCard/pkg/errors"
	"github.com/xob0t/GoCard/pkg/palette"
)

// Tone is a colour expression. Accepted forms:
//
//	product | "" (the average colour itself)
//	white, black, #rrggbb
//	lighten:F, darken:F (of the average colour; F in [0,1])
//	auto (text only: contrast against whatever is behind it)
//
// Any form may end in /A to set an alpha in [0,255], e.g. "white/120".
type Tone string

// ToneAuto marks text that picks black or white by contrast.
const ToneAuto Tone = "auto"

// IsAuto reports whether t is the auto text colour.
func (t Tone) IsAuto() bool {
	return strings.EqualFold(strings.TrimSpace(string(t)), string(ToneAuto))
}

// Resolve evaluates t against avg. Auto resolves to avg, callers opt into
// contrast separately through IsAuto.
func (t Tone) Resolve(avg palette.Color) (color.NRGBA, error) {
	expr := strings.ToLower(strings.TrimSpace(string(t)))
	alpha := uint8(255)
	if i := strings.LastIndexByte(expr, '/'); i >= 0 {
		a, err := strconv.ParseUint(strings.TrimSpace(expr[i+1:]), 10, 8)
		if err != nil {
			return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidPreset, err, "tone %q: bad alpha", string(t))
		}
		alpha = uint8(a)
		expr = strings.TrimSpace(expr[:i])
	}

	c, err := resolveBase(expr, avg)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidPreset, err, "tone %q", string(t))
	}
	return c.WithAlpha(alpha), nil
}

// Color resolves t and drops the alpha.
func (t Tone) Color(avg palette.Color) (palette.Color, error) {
	c, err := t.Resolve(avg)
	if err != nil {
		return palette.Color{}, err
	}
	return palette.Color{R: c.R, G: c.G, B: c.B}, nil
}

func resolveBase(expr string, avg palette.Color) (palette.Color, error) {
	switch expr {
	case "", "product", string(ToneAuto):
		return avg, nil
	case "white":
		return palette.White, nil
	case "black":
		return palette.Black, nil
	}
	if strings.HasPrefix(expr, "#") {
		return palette.ParseHex(expr)
	}

	op, arg, ok := strings.Cut(expr, ":")
	if !ok {
		return palette.Color{}, fmt.Errorf("unknown colour expression")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil {
		return palette.Color{}, fmt.Errorf("bad factor: %w", err)
	}
	if f < 0 || f > 1 {
		return palette.Color{}, fmt.Errorf("factor %v outside [0,1]", f)
	}
	switch strings.TrimSpace(op) {
	case "lighten":
		return palette.Lighten(avg, f), nil
	case "darken":
		return palette.Darken(avg, f), nil
	}
	return palette.Color{}, fmt.Errorf("unknown operation %q", op)
}

// Lighten and Darken build tone expressions in code.
func Lighten(f float64) Tone { return Tone("lighten:" + strconv.FormatFloat(f, 'f', -1, 64)) }
func Darken(f float64) Tone  { return Tone("darken:" + strconv.FormatFloat(f, 'f', -1, 64)) }

// WithAlpha appends an alpha to t.
func (t Tone) WithAlpha(a uint8) Tone { return Tone(fmt.Sprintf("%s/%d", t, a)) }

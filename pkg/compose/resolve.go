// resolve.go - Turn declarative variant tables into concrete render inputs.
package compose

import (
	"image"
	"math/rand/v2"

	"github.com/xob0t/GoCard/pkg/assets"
	"github.com/xob0t/GoCard/pkg/background"
	"github.com/xob0t/GoCard/pkg/palette"
	"github.com/xob0t/GoCard/pkg/product"
	"github.com/xob0t/GoCard/pkg/template"
	"github.com/xob0t/GoCard/pkg/textlayout"
)

func resolveBackground(bs template.BackgroundSpec, avg palette.Color, pools *assets.Set, rng *rand.Rand) (background.Spec, error) {
	kind, err := background.ParseKind(bs.Kind)
	if err != nil {
		return background.Spec{}, err
	}
	primary, err := bs.Primary.Color(avg)
	if err != nil {
		return background.Spec{}, err
	}
	secondary, err := bs.Secondary.Color(avg)
	if err != nil {
		return background.Spec{}, err
	}

	spec := background.Spec{
		Kind:        kind,
		Primary:     primary,
		Secondary:   secondary,
		Spacing:     bs.Spacing,
		StrokeWidth: bs.StrokeWidth,
		Overlay:     bs.Overlay,
		Blur:        bs.Blur,
		FinalBlur:   bs.FinalBlur,
		PostBlur:    bs.PostBlur,
		Circles:     bs.Circles,
		MinRadius:   bs.MinRadius,
		MaxRadius:   bs.MaxRadius,
		MinAlpha:    bs.MinAlpha,
		MaxAlpha:    bs.MaxAlpha,
	}
	if bs.Hatch != nil {
		hc, err := bs.Hatch.Color.Resolve(avg)
		if err != nil {
			return background.Spec{}, err
		}
		spec.Hatch = &background.Hatch{Spacing: bs.Hatch.Spacing, Width: bs.Hatch.Width, Color: hc}
	}
	if kind == background.KindPool {
		name := bs.Pool
		if name == "" {
			name = template.PoolBackground
		}
		img, err := pools.Pool(name).Pick(rng)
		if err != nil {
			return background.Spec{}, err
		}
		spec.Image = img
	}
	return spec, nil
}

func resolveAnchor(ps template.ProductSpec) (product.Anchor, error) {
	kind, err := product.ParseAnchor(ps.Anchor)
	if err != nil {
		return product.Anchor{}, err
	}
	return product.Anchor{Kind: kind, Margin: ps.Margin, OffsetX: ps.OffsetX, OffsetY: ps.OffsetY}, nil
}

func resolveShadow(ss *template.ShadowSpec, avg palette.Color) (*product.Shadow, error) {
	if ss == nil || ss.Alpha == 0 {
		return nil, nil
	}
	s := &product.Shadow{Alpha: ss.Alpha, Blur: ss.Blur, Offset: image.Pt(ss.OffsetX, ss.OffsetY)}
	if ss.Tint != "" {
		tint, err := ss.Tint.Color(avg)
		if err != nil {
			return nil, err
		}
		s.Tint = &tint
	}
	return s, nil
}

// resolveBlock builds a layout block for bs. backdrop is the tone that
// auto-coloured text contrasts with when there is no chip.
func resolveBlock(bs template.BlockSpec, text template.Text, avg, backdrop palette.Color, pools *assets.Set, rng *rand.Rand) (textlayout.Block, error) {
	ink, err := bs.Color.Resolve(avg)
	if err != nil {
		return textlayout.Block{}, err
	}
	b := textlayout.Block{
		Role:      textlayout.Role(bs.Role),
		Text:      text.ForRole(bs.Role),
		Family:    textlayout.Family(bs.Family),
		Size:      bs.Size,
		Upper:     bs.Upper,
		Color:     ink,
		AutoColor: bs.Color.IsAuto(),
		Backdrop:  backdrop,
		MaxWidth:  bs.MaxWidth,
		Fit:       textlayout.FitOptions{Step: bs.Step, Floor: bs.Floor},
		PadX:      bs.PadX,
		PadY:      bs.PadY,
		Align:     textlayout.Align(bs.Align),
		X:         bs.X,
		Placement: textlayout.Placement(bs.Placement),
		Y:         bs.Y,
	}
	if b.Text == "" {
		return b, nil
	}

	if cs := bs.Chip; cs != nil {
		chip := &textlayout.Chip{Radius: cs.Radius}
		if cs.Pool != "" {
			img, err := pools.Pool(cs.Pool).Pick(rng)
			if err != nil {
				return textlayout.Block{}, err
			}
			chip.FillImage = img
		} else if chip.Fill, err = cs.Fill.Resolve(avg); err != nil {
			return textlayout.Block{}, err
		}
		if cs.Shadow != nil {
			sc, err := cs.Shadow.Color.Resolve(avg)
			if err != nil {
				return textlayout.Block{}, err
			}
			chip.Shadow = &textlayout.ChipShadow{Color: sc, Blur: cs.Shadow.Blur, Offset: image.Pt(cs.Shadow.OffsetX, cs.Shadow.OffsetY)}
		}
		b.Chip = chip
	}
	if ps := bs.Panel; ps != nil {
		fill, err := ps.Fill.Resolve(avg)
		if err != nil {
			return textlayout.Block{}, err
		}
		b.Panel = &textlayout.Panel{Rect: image.Rect(ps.X0, ps.Y0, ps.X1, ps.Y1), Radius: ps.Radius, Fill: fill}
	}
	if ts := bs.Shadow; ts != nil {
		sc, err := ts.Color.Resolve(avg)
		if err != nil {
			return textlayout.Block{}, err
		}
		b.Shadow = &textlayout.TextShadow{Color: sc, Offset: image.Pt(ts.OffsetX, ts.OffsetY)}
	}
	return b, nil
}

// validator.go - Validate variants before they reach the composer.
package template

import (
	"fmt"

	"github.com/xob0t/GoCard/pkg/background"
	"github.com/xob0t/GoCard/pkg/errors"
	"github.com/xob0t/GoCard/pkg/palette"
	"github.com/xob0t/GoCard/pkg/product"
)

var (
	knownRoles      = map[string]bool{"title": true, "subtitle": true, "price": true}
	knownFamilies   = map[string]bool{"": true, "bold": true, "regular": true}
	knownAligns     = map[string]bool{"": true, "left": true, "center": true}
	knownPlacements = map[string]bool{"": true, "flow": true, "absolute": true, "from-bottom": true}
)

// Validate checks a variant. Structural problems (unknown background kind or
// anchor, unparsable tones) are INVALID_PRESET errors; questionable but
// renderable settings come back as warnings.
func Validate(v Variant) ([]string, error) {
	var warnings []string
	name := fmt.Sprintf("variant %d (%s)", v.ID, v.Name)

	if v.ID <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidPreset, "%s: id must be positive", name)
	}
	if _, err := background.ParseKind(v.Background.Kind); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if _, err := product.ParseAnchor(v.Product.Anchor); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	tones := []Tone{v.Background.Primary, v.Background.Secondary}
	if v.Background.Hatch != nil {
		tones = append(tones, v.Background.Hatch.Color)
	}
	if v.Product.Shadow != nil && v.Product.Shadow.Tint != "" {
		tones = append(tones, v.Product.Shadow.Tint)
	}

	p := v.Product
	if p.MinRatio < 0 || p.MaxRatio < 0 || p.MaxRatio > 1 || (p.MaxRatio > 0 && p.MinRatio > p.MaxRatio) {
		return nil, errors.New(errors.ErrCodeInvalidPreset, "%s: bad area ratios [%v, %v]", name, p.MinRatio, p.MaxRatio)
	}

	for i, b := range v.Blocks {
		where := fmt.Sprintf("%s block %d", name, i)
		if !knownRoles[b.Role] {
			warnings = append(warnings, fmt.Sprintf("%s: unknown role %q, block will stay empty", where, b.Role))
		}
		if !knownFamilies[b.Family] {
			warnings = append(warnings, fmt.Sprintf("%s: unknown font family %q, using regular", where, b.Family))
		}
		if !knownAligns[b.Align] {
			return nil, errors.New(errors.ErrCodeInvalidPreset, "%s: unknown align %q", where, b.Align)
		}
		if !knownPlacements[b.Placement] {
			return nil, errors.New(errors.ErrCodeInvalidPreset, "%s: unknown placement %q", where, b.Placement)
		}
		if b.Floor > b.Size {
			warnings = append(warnings, fmt.Sprintf("%s: floor %v above size %v", where, b.Floor, b.Size))
		}

		tones = append(tones, b.Color)
		if b.Chip != nil {
			if b.Chip.Pool == "" {
				tones = append(tones, b.Chip.Fill)
			}
			if b.Chip.Shadow != nil {
				tones = append(tones, b.Chip.Shadow.Color)
			}
		}
		if b.Panel != nil {
			tones = append(tones, b.Panel.Fill)
		}
		if b.Shadow != nil {
			tones = append(tones, b.Shadow.Color)
		}
	}

	for _, t := range tones {
		if _, err := t.Resolve(palette.Neutral); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return warnings, nil
}

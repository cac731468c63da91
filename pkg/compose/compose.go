// compose.go - Run one variant recipe end to end.
package compose

import (
	"fmt"
	"image"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xob0t/GoCard/pkg/assets"
	"github.com/xob0t/GoCard/pkg/background"
	"github.com/xob0t/GoCard/pkg/errors"
	"github.com/xob0t/GoCard/pkg/palette"
	"github.com/xob0t/GoCard/pkg/product"
	"github.com/xob0t/GoCard/pkg/template"
	"github.com/xob0t/GoCard/pkg/textlayout"
)

// Input is everything a card is built from besides the variant.
type Input struct {
	// Cutout is the background-removed product raster. It is trimmed again
	// regardless of any crop it already has.
	Cutout image.Image
	// Average overrides the dominant colour computed from the cutout.
	Average *palette.Color
	Text    template.Text
	// QR, when not empty, is encoded into a badge in the bottom-right corner.
	QR string
}

// Card is one rendered variant.
type Card struct {
	Image   *image.RGBA
	Product image.Rectangle // where the sprite landed
	Average palette.Color
	Skipped []textlayout.Role // blocks cut by the bottom limit
}

// Composer renders variants on a fixed canvas.
type Composer struct {
	cfg    Config
	logger *log.Logger
	fonts  *textlayout.Fonts
	engine *textlayout.Engine
	pools  *assets.Set
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger for per-variant messages.
func WithLogger(l *log.Logger) Option {
	return func(c *Composer) { c.logger = l }
}

// WithFonts sets the font set used by text blocks.
func WithFonts(f *textlayout.Fonts) Option {
	return func(c *Composer) { c.fonts = f }
}

// WithPools sets the asset pools that pool backgrounds and chips draw from.
func WithPools(s *assets.Set) Option {
	return func(c *Composer) { c.pools = s }
}

// New creates a composer. Unset fields of cfg take their defaults.
func New(cfg Config, opts ...Option) *Composer {
	c := &Composer{
		cfg:    cfg.withDefaults(),
		logger: log.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	c.engine = textlayout.NewEngine(c.fonts, textlayout.WithLogger(c.logger))
	if c.pools == nil {
		c.pools = assets.NewSet()
	}
	return c
}

// Config returns the effective configuration.
func (c *Composer) Config() Config { return c.cfg }

// Pools returns the composer's asset pools.
func (c *Composer) Pools() *assets.Set { return c.pools }

// Prepare trims the cutout and settles its average colour. Callers
// rendering many variants of one cutout should prepare it once.
func (c *Composer) Prepare(in Input) (*image.NRGBA, palette.Color, error) {
	if in.Cutout == nil {
		return nil, palette.Color{}, errors.New(errors.ErrCodeInvalidInput, "no cutout given")
	}
	sprite, err := product.Trim(in.Cutout)
	if err != nil {
		return nil, palette.Color{}, err
	}
	if in.Average != nil {
		return sprite, *in.Average, nil
	}
	avg, _ := palette.Average(sprite)
	return sprite, avg, nil
}

// Render builds one card. The order is fixed: background, product with
// shadow, text stack, QR badge. A nil rng is seeded with (0, variant ID).
func (c *Composer) Render(in Input, v template.Variant, rng *rand.Rand) (*Card, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(0, uint64(v.ID)))
	}
	sprite, avg, err := c.Prepare(in)
	if err != nil {
		return nil, err
	}
	return c.render(sprite, avg, in, v, rng)
}

func (c *Composer) render(sprite *image.NRGBA, avg palette.Color, in Input, v template.Variant, rng *rand.Rand) (*Card, error) {
	if err := c.pools.Require(v.Pools()...); err != nil {
		return nil, err
	}
	start := time.Now()

	bgSpec, err := resolveBackground(v.Background, avg, c.pools, rng)
	if err != nil {
		return nil, fmt.Errorf("variant %d background: %w", v.ID, err)
	}
	canvas, err := background.Generate(c.cfg.Width, c.cfg.Height, bgSpec, rng)
	if err != nil {
		return nil, fmt.Errorf("variant %d background: %w", v.ID, err)
	}

	scaled, err := c.scale(sprite, v.Product, rng)
	if err != nil {
		return nil, fmt.Errorf("variant %d product: %w", v.ID, err)
	}
	anchor, err := resolveAnchor(v.Product)
	if err != nil {
		return nil, fmt.Errorf("variant %d product: %w", v.ID, err)
	}
	shadow, err := resolveShadow(v.Product.Shadow, avg)
	if err != nil {
		return nil, fmt.Errorf("variant %d shadow: %w", v.ID, err)
	}
	at := anchor.Position(canvas.Bounds().Size(), scaled.Bounds().Size())
	placed := product.Place(canvas, scaled, at, shadow)

	blocks := make([]textlayout.Block, 0, len(v.Blocks))
	for _, bs := range v.Blocks {
		b, err := resolveBlock(bs, in.Text, avg, bgSpec.Primary, c.pools, rng)
		if err != nil {
			return nil, fmt.Errorf("variant %d %s block: %w", v.ID, bs.Role, err)
		}
		blocks = append(blocks, b)
	}
	cur := &textlayout.Cursor{Y: v.Text.Start, Gap: v.Text.Gap}
	switch {
	case v.Text.StopAtProduct:
		// May be negative for tall products; nothing flows then.
		cur.Bottom, cur.Limited = placed.Min.Y-v.Text.ProductMargin, true
	case v.Text.BottomLimit > 0:
		cur.Bottom, cur.Limited = v.Text.BottomLimit, true
	}
	res := c.engine.Stack(canvas, cur, blocks)
	if len(res.Skipped) > 0 {
		c.logger.Debug("text truncated", "variant", v.ID, "skipped", res.Skipped, "limit", cur.Bottom)
	}

	if in.QR != "" {
		if err := c.drawQR(canvas, in.QR); err != nil {
			return nil, fmt.Errorf("variant %d qr: %w", v.ID, err)
		}
	}

	c.logger.Debug("variant rendered", "variant", v.ID, "name", v.Name, "background", bgSpec.Kind, "product", placed, "took", time.Since(start))
	return &Card{Image: canvas, Product: placed, Average: avg, Skipped: res.Skipped}, nil
}

// scale applies the variant's area rule. Ratios of zero fall back to the
// composer's range.
func (c *Composer) scale(sprite *image.NRGBA, ps template.ProductSpec, rng *rand.Rand) (*image.NRGBA, error) {
	minR, maxR := ps.MinRatio, ps.MaxRatio
	if minR <= 0 {
		minR = c.cfg.MinAreaRatio
	}
	if maxR <= 0 {
		maxR = c.cfg.MaxAreaRatio
	}
	minA, maxA := product.AreaRange(c.cfg.Width, c.cfg.Height, minR, maxR)

	if ps.RandomArea {
		target := float64(minA)
		if maxA > minA {
			target += rng.Float64() * float64(maxA-minA)
		}
		scaled, _, err := product.ScaleToTarget(sprite, target)
		return scaled, err
	}
	scaled, _, err := product.ScaleToArea(sprite, minA, maxA)
	return scaled, err
}

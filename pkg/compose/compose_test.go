package compose

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/xob0t/GoCard/pkg/assets"
	"github.com/xob0t/GoCard/pkg/errors"
	"github.com/xob0t/GoCard/pkg/palette"
	"github.com/xob0t/GoCard/pkg/product"
	"github.com/xob0t/GoCard/pkg/template"
)

var red = color.NRGBA{R: 255, A: 255}

func plainVariant(id int) template.Variant {
	return template.Variant{
		ID:         id,
		Name:       "plain",
		Background: template.BackgroundSpec{Kind: "linear", Primary: "product", Secondary: "white"},
		Product: template.ProductSpec{
			Anchor: "center",
			Shadow: &template.ShadowSpec{Alpha: 200, Blur: 10, OffsetX: 20, OffsetY: 20},
		},
	}
}

func quietComposer(opts ...Option) *Composer {
	opts = append([]Option{WithLogger(log.New(&bytes.Buffer{}))}, opts...)
	return New(DefaultConfig(), opts...)
}

// panicImage reports its bounds once, for the pool, and panics on any
// later use.
type panicImage struct{ calls atomic.Int32 }

func (*panicImage) ColorModel() color.Model { return color.NRGBAModel }
func (*panicImage) At(x, y int) color.Color { panic("bad raster") }

func (p *panicImage) Bounds() image.Rectangle {
	if p.calls.Add(1) > 1 {
		panic("bad raster")
	}
	return image.Rect(0, 0, 8, 8)
}

func TestRenderRedSpriteCentre(t *testing.T) {
	c := quietComposer()
	// Transparent margin around the sprite is trimmed away.
	cutout := image.NewNRGBA(image.Rect(0, 0, 1200, 1800))
	for y := 100; y < 1700; y++ {
		for x := 100; x < 1100; x++ {
			cutout.SetNRGBA(x, y, red)
		}
	}

	card, err := c.Render(Input{Cutout: cutout}, plainVariant(1), VariantRNG(1, 1))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := card.Image.Bounds().Size(); got != image.Pt(900, 1200) {
		t.Fatalf("canvas %v", got)
	}
	if card.Average != (palette.Color{R: 255}) {
		t.Errorf("average %v", card.Average)
	}

	area := float64(card.Product.Dx() * card.Product.Dy())
	if area < 432000*0.99 || area > 540000*1.01 {
		t.Errorf("product area %.0f outside range", area)
	}
	mid := image.Pt((card.Product.Min.X+card.Product.Max.X)/2, (card.Product.Min.Y+card.Product.Max.Y)/2)
	if got := product.ColorAt(card.Image, mid); got != (palette.Color{R: 255}) {
		t.Errorf("centre pixel %v, want pure red", got)
	}
}

func TestRenderKeepsAspect(t *testing.T) {
	c := quietComposer()
	cutout := product.Solid(2000, 1000, red)

	card, err := c.Render(Input{Cutout: cutout}, plainVariant(1), nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	w, h := card.Product.Dx(), card.Product.Dy()
	if math.Abs(float64(w)-2*float64(h)) > 2 {
		t.Errorf("product %dx%d lost its 2:1 aspect", w, h)
	}
}

func TestRenderEmptySprite(t *testing.T) {
	c := quietComposer()
	cutout := image.NewNRGBA(image.Rect(0, 0, 50, 50))

	if _, err := c.Render(Input{Cutout: cutout}, plainVariant(1), nil); !errors.Is(err, errors.ErrCodeEmptySprite) {
		t.Errorf("Render err = %v, want EMPTY_SPRITE", err)
	}
	results, err := c.RenderAll(context.Background(), Input{Cutout: cutout}, []template.Variant{plainVariant(1)}, 1)
	if !errors.Is(err, errors.ErrCodeEmptySprite) || results != nil {
		t.Errorf("RenderAll = %v, %v; want EMPTY_SPRITE and no results", results, err)
	}
}

func TestRenderDeterministic(t *testing.T) {
	c := quietComposer()
	cutout := product.Solid(300, 400, color.NRGBA{R: 40, G: 120, B: 200, A: 255})
	v, ok := template.BuiltinCatalog().Get(5)
	if !ok {
		t.Fatal("built-in variant 5 missing")
	}
	in := Input{Cutout: cutout, Text: template.Text{Title: "Steel Bowl", Subtitle: "Dishwasher safe"}}

	a, err := c.Render(in, v, VariantRNG(7, v.ID))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := c.Render(in, v, VariantRNG(7, v.ID))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(a.Image.Pix, b.Image.Pix) {
		t.Error("same seed produced different pixels")
	}

	results, err := c.RenderAll(context.Background(), in, []template.Variant{v}, 7)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if !bytes.Equal(results[0].Card.Image.Pix, a.Image.Pix) {
		t.Error("RenderAll differs from Render with the derived source")
	}
}

func TestRenderAllBuiltins(t *testing.T) {
	pools := assets.NewSet()
	pools.Pool(template.PoolBackground).Add("bg.png", product.Solid(60, 80, color.NRGBA{G: 90, B: 60, A: 255}))
	pools.Pool(template.PoolTitle).Add("chip.png", product.Solid(40, 10, color.NRGBA{R: 250, G: 250, B: 250, A: 255}))
	c := quietComposer(WithPools(pools))

	in := Input{
		Cutout: product.Solid(500, 700, color.NRGBA{R: 180, G: 60, B: 30, A: 255}),
		Text:   template.Text{Title: "Ceramic Mug", Subtitle: "350 ml", Price: "$12"},
		QR:     "https://example.com/p/1",
	}
	variants := template.BuiltinCatalog().List()
	results, err := c.RenderAll(context.Background(), in, variants, 42)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if len(results) != len(variants) {
		t.Fatalf("got %d results, want %d", len(results), len(variants))
	}
	for i, r := range results {
		if r.Variant.ID != variants[i].ID {
			t.Errorf("result %d is variant %d, want %d", i, r.Variant.ID, variants[i].ID)
		}
		if r.Err != nil {
			t.Errorf("variant %d: %v", r.Variant.ID, r.Err)
			continue
		}
		// The QR plate's quiet zone is drawn last and stays white.
		plate := c.QRRect(r.Card.Image.Bounds().Size())
		edge := image.Pt(plate.Min.X+plate.Dx()/2, plate.Min.Y+2)
		if got := product.ColorAt(r.Card.Image, edge); got != palette.White {
			t.Errorf("variant %d: qr plate pixel %v, want white", r.Variant.ID, got)
		}
	}
}

func TestRenderAllMissingPool(t *testing.T) {
	c := quietComposer()
	pool, ok := template.BuiltinCatalog().Get(12)
	if !ok {
		t.Fatal("pool variant missing")
	}
	variants := []template.Variant{plainVariant(1), pool}

	results, err := c.RenderAll(context.Background(), Input{Cutout: product.Solid(10, 10, red)}, variants, 1)
	if !errors.Is(err, errors.ErrCodeMissingAssetPool) {
		t.Fatalf("err = %v, want MISSING_ASSET_POOL", err)
	}
	if results != nil {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestRenderAllIsolatesFailures(t *testing.T) {
	var buf bytes.Buffer
	pools := assets.NewSet()
	pools.Pool("broken").Add("broken.png", &panicImage{})
	c := New(DefaultConfig(), WithLogger(log.New(&buf)), WithPools(pools))

	badTone := plainVariant(2)
	badTone.Background.Primary = "chartreuse-ish"
	panics := plainVariant(3)
	panics.Background = template.BackgroundSpec{Kind: "pool", Pool: "broken"}

	variants := []template.Variant{plainVariant(1), badTone, panics, plainVariant(4)}
	results, err := c.RenderAll(context.Background(), Input{Cutout: product.Solid(100, 100, red)}, variants, 3)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}

	tests := []struct {
		id   int
		code errors.Code
	}{
		{1, ""},
		{2, errors.ErrCodeInvalidPreset},
		{3, errors.ErrCodeInternal},
		{4, ""},
	}
	for i, tt := range tests {
		r := results[i]
		if tt.code == "" {
			if r.Err != nil || r.Card == nil {
				t.Errorf("variant %d: err %v", tt.id, r.Err)
			}
			continue
		}
		if !errors.Is(r.Err, tt.code) || r.Card != nil {
			t.Errorf("variant %d: err %v, want %s", tt.id, r.Err, tt.code)
		}
	}
	if !strings.Contains(buf.String(), "variant failed") {
		t.Errorf("failures not logged: %q", buf.String())
	}
}

func TestRenderAllCancelled(t *testing.T) {
	c := quietComposer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := c.RenderAll(ctx, Input{Cutout: product.Solid(10, 10, red)}, []template.Variant{plainVariant(1)}, 1)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if results[0].Err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", results[0].Err)
	}
}

func TestStopAtProductBound(t *testing.T) {
	c := quietComposer()
	v := plainVariant(1)
	v.Product.Anchor = "bottom-center"
	v.Product.MinRatio, v.Product.MaxRatio = 0.6, 0.6
	v.Text = template.TextSpec{Start: 40, Gap: 10, StopAtProduct: true, ProductMargin: 20}
	for _, role := range []string{"title", "subtitle", "price", "title", "subtitle", "price"} {
		v.Blocks = append(v.Blocks, template.BlockSpec{Role: role, Family: "bold", Size: 120, Color: "black"})
	}
	in := Input{Cutout: product.Solid(400, 400, red), Text: template.Text{Title: "A", Subtitle: "B", Price: "C"}}

	card, err := c.Render(in, v, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(card.Skipped) == 0 {
		t.Error("expected blocks above a large product to be truncated")
	}
}

func TestTallProductSkipsAllFlowText(t *testing.T) {
	c := quietComposer()
	v, ok := template.BuiltinCatalog().Get(1)
	if !ok {
		t.Fatal("variant 1 missing")
	}
	// The product top sits above ProductMargin, so the bound goes negative.
	in := Input{Cutout: product.Solid(100, 2000, red), Text: template.Text{Title: "Tall", Subtitle: "Vase"}}

	card, err := c.Render(in, v, VariantRNG(1, v.ID))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if card.Product.Min.Y-v.Text.ProductMargin > 0 {
		t.Fatalf("product top %d leaves room for text", card.Product.Min.Y)
	}
	if len(card.Skipped) != 2 {
		t.Errorf("skipped = %v, want title and subtitle", card.Skipped)
	}
}

package background

import (
	"bytes"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/xob0t/GoCard/pkg/errors"
	"github.com/xob0t/GoCard/pkg/palette"
)

var (
	red  = palette.Color{R: 200, G: 20, B: 20}
	blue = palette.Color{R: 20, G: 20, B: 200}
)

func at(img *image.RGBA, x, y int) palette.Color {
	c := img.RGBAAt(x, y)
	return palette.Color{R: c.R, G: c.G, B: c.B}
}

func assertOpaque(t *testing.T, img *image.RGBA) {
	t.Helper()
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			t.Fatalf("pixel %d has alpha %d, want opaque", i/4, img.Pix[i])
		}
	}
}

func near(a, b palette.Color, tol int) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol
}

func TestGenerateFlatRecipes(t *testing.T) {
	tests := []struct {
		name   string
		spec   Spec
		checks map[image.Point]palette.Color
	}{
		{
			name: "solid",
			spec: Spec{Kind: KindSolid, Primary: red},
			checks: map[image.Point]palette.Color{
				{0, 0}: red, {59, 79}: red,
			},
		},
		{
			name: "split",
			spec: Spec{Kind: KindSplit, Primary: red, Secondary: blue},
			checks: map[image.Point]palette.Color{
				{0, 0}: red, {10, 39}: red, {10, 40}: blue, {59, 79}: blue,
			},
		},
		{
			name: "linear",
			spec: Spec{Kind: KindLinear, Primary: red, Secondary: blue},
			checks: map[image.Point]palette.Color{
				{0, 0}: red, {59, 0}: red, {0, 79}: blue, {30, 79}: blue,
			},
		},
		{
			name: "radial",
			spec: Spec{Kind: KindRadial, Primary: red, Secondary: blue},
			checks: map[image.Point]palette.Color{
				{30, 40}: red, {0, 0}: blue,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Generate(60, 80, tt.spec, nil)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if img.Bounds() != image.Rect(0, 0, 60, 80) {
				t.Fatalf("bounds = %v", img.Bounds())
			}
			assertOpaque(t, img)
			for p, want := range tt.checks {
				if got := at(img, p.X, p.Y); got != want {
					t.Errorf("pixel %v = %v, want %v", p, got, want)
				}
			}
		})
	}
}

func TestLinearGradientIsMonotonic(t *testing.T) {
	img, err := Generate(4, 100, Spec{Kind: KindLinear, Primary: palette.Black, Secondary: palette.White}, nil)
	if err != nil {
		t.Fatal(err)
	}
	prev := at(img, 0, 0)
	for y := 1; y < 100; y++ {
		c := at(img, 0, y)
		if c.R < prev.R {
			t.Fatalf("row %d = %v darker than row above %v", y, c, prev)
		}
		prev = c
	}
}

func TestDiagonalEndpoints(t *testing.T) {
	img, err := Generate(40, 30, Spec{Kind: KindDiagonal, Primary: palette.Black, Secondary: palette.White}, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertOpaque(t, img)
	if c := at(img, 0, 0); !near(c, palette.Black, 12) {
		t.Errorf("top-left = %v, want near black", c)
	}
	if c := at(img, 39, 29); !near(c, palette.White, 12) {
		t.Errorf("bottom-right = %v, want near white", c)
	}
}

func TestPatternIsSoftened(t *testing.T) {
	img, err := Generate(120, 120, Spec{Kind: KindPattern, Primary: blue, Secondary: palette.Black}, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertOpaque(t, img)
	// The white overlay lifts every pixel, even the strokes, above black.
	for y := 0; y < 120; y += 7 {
		for x := 0; x < 120; x += 7 {
			if c := at(img, x, y); c.R == 0 && c.G == 0 && c.B == 0 {
				t.Fatalf("pixel (%d,%d) is pure black; overlay missing", x, y)
			}
		}
	}
}

func TestRandomRecipesAreSeeded(t *testing.T) {
	for _, kind := range []Kind{KindCloud, KindBokeh} {
		t.Run(string(kind), func(t *testing.T) {
			spec := Spec{Kind: kind, Primary: red}
			a, err := Generate(50, 40, spec, rand.New(rand.NewPCG(1, 2)))
			if err != nil {
				t.Fatal(err)
			}
			b, _ := Generate(50, 40, spec, rand.New(rand.NewPCG(1, 2)))
			c, _ := Generate(50, 40, spec, rand.New(rand.NewPCG(9, 9)))

			assertOpaque(t, a)
			if !bytes.Equal(a.Pix, b.Pix) {
				t.Error("same seed produced different pixels")
			}
			if bytes.Equal(a.Pix, c.Pix) {
				t.Error("different seeds produced identical pixels")
			}
		})
	}
}

func TestCloudNeverDarkerThanBase(t *testing.T) {
	base := palette.Color{R: 90, G: 140, B: 60}
	img, err := Generate(40, 40, Spec{Kind: KindCloud, Primary: base}, rand.New(rand.NewPCG(7, 7)))
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			c := at(img, x, y)
			if int(c.R)+1 < int(base.R) || int(c.G)+1 < int(base.G) || int(c.B)+1 < int(base.B) {
				t.Fatalf("pixel (%d,%d) = %v darker than base %v", x, y, c, base)
			}
		}
	}
}

func TestRandomRecipeWithoutSource(t *testing.T) {
	_, err := Generate(10, 10, Spec{Kind: KindBokeh, Primary: red}, nil)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Generate(bokeh, nil rng) error = %v, want INVALID_INPUT", err)
	}
}

func TestPoolBackground(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 10, 200, 30, 255
	}

	img, err := Generate(30, 40, Spec{Kind: KindPool, Image: src}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c := at(img, 15, 20); !near(c, palette.Color{R: 10, G: 200, B: 30}, 1) {
		t.Errorf("centre = %v, want pool colour", c)
	}

	if _, err := Generate(30, 40, Spec{Kind: KindPool}, nil); err == nil {
		t.Error("pool background without image should fail")
	}
}

func TestHatchOverlay(t *testing.T) {
	spec := Spec{Kind: KindSolid, Primary: palette.Black, Hatch: &Hatch{Color: color.NRGBA{255, 255, 255, 200}}}
	img, err := Generate(60, 60, spec, nil)
	if err != nil {
		t.Fatal(err)
	}
	// The stroke from (20,0) to (0,20) passes through (10,10).
	if c := at(img, 10, 10); c.R < 50 {
		t.Errorf("pixel on hatch stroke = %v, want lightened", c)
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := Generate(0, 10, Spec{Kind: KindSolid}, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero width error = %v", err)
	}
	if _, err := Generate(10, 10, Spec{Kind: "plasma"}, nil); !errors.Is(err, errors.ErrCodeInvalidPreset) {
		t.Errorf("unknown kind error = %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(" " + string(k) + " ")
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("Bokeh"); err != nil {
		t.Errorf("ParseKind is case-insensitive: %v", err)
	}
	if _, err := ParseKind("plasma"); err == nil {
		t.Error("ParseKind(plasma) should fail")
	}
}

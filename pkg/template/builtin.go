// builtin.go - The built-in variant table.
package template

// Canvas positions below assume the default 900x1200 canvas.
var (
	titlePanel    = &PanelSpec{X0: -20, Y0: -20, X1: 620, Y1: 100, Radius: 20, Fill: "white/150"}
	subtitlePanel = &PanelSpec{X0: -20, Y0: -10, X1: 520, Y1: 60, Radius: 15, Fill: "white/120"}
)

func soft(alpha uint8, blur float64, dx, dy int) *ShadowSpec {
	return &ShadowSpec{Alpha: alpha, Blur: blur, OffsetX: dx, OffsetY: dy}
}

func panelled(title, subtitle *PanelSpec) []BlockSpec {
	return []BlockSpec{
		{Role: "title", Family: "bold", Size: 70, Color: "black", MaxWidth: 600, X: 150, Placement: "absolute", Y: 50, Panel: title},
		{Role: "subtitle", Family: "regular", Size: 40, Color: "black", MaxWidth: 500, X: 200, Placement: "absolute", Y: 170, Panel: subtitle},
	}
}

var builtins = []Variant{
	{
		ID: 1, Name: "pattern", Description: "diagonal line pattern, product at the bottom, text stops above it",
		Background: BackgroundSpec{Kind: "pattern", Primary: Lighten(0.3), Secondary: Darken(0.5)},
		Product:    ProductSpec{Anchor: "bottom-center", Margin: 20, Shadow: soft(60, 15, 25, 25)},
		Text:       TextSpec{Start: 20, Gap: 10, StopAtProduct: true, ProductMargin: 10},
		Blocks: []BlockSpec{
			{Role: "title", Family: "bold", Size: 80, Color: "white", MaxWidth: 600, PadX: 40, PadY: 20, X: 150,
				Chip: &ChipSpec{Fill: Darken(0.4), Radius: 30}},
			{Role: "subtitle", Family: "regular", Size: 50, Color: "black", MaxWidth: 500, X: 200},
		},
	},
	{
		ID: 2, Name: "radial", Description: "radial gradient, text top left",
		Background: BackgroundSpec{Kind: "radial", Primary: Darken(0.2), Secondary: Lighten(0.7)},
		Product:    ProductSpec{Anchor: "bottom-center", Margin: 100, Shadow: soft(70, 20, 30, 30)},
		Text:       TextSpec{Start: 50, Gap: 20},
		Blocks: []BlockSpec{
			{Role: "title", Family: "bold", Size: 70, Color: "white", MaxWidth: 800, PadX: 30, PadY: 20, X: 50,
				Chip: &ChipSpec{Fill: Darken(0.5), Radius: 10}},
			{Role: "subtitle", Family: "regular", Size: 40, Color: "black", MaxWidth: 800, X: 50},
		},
	},
	{
		ID: 3, Name: "linear", Description: "vertical gradient, centred product, price below",
		Background: BackgroundSpec{Kind: "linear", Primary: Darken(0.3), Secondary: Lighten(0.5)},
		Product:    ProductSpec{Anchor: "center", Shadow: soft(80, 25, 35, 35)},
		Text:       TextSpec{Start: 30, Gap: 20},
		Blocks: []BlockSpec{
			{Role: "title", Family: "bold", Size: 70, Color: "white", MaxWidth: 600, PadX: 40, PadY: 20, X: 150,
				Chip: &ChipSpec{Fill: Darken(0.4), Radius: 10}},
			{Role: "subtitle", Family: "regular", Size: 40, Color: "black", MaxWidth: 500, X: 200},
			{Role: "price", Family: "bold", Size: 50, Color: "black", Align: "center", Placement: "from-bottom", Y: 150},
		},
	},
	{
		ID: 4, Name: "cloud", Description: "blurred noise, translucent title chip",
		Background: BackgroundSpec{Kind: "cloud", Primary: Lighten(0.2)},
		Product:    ProductSpec{Anchor: "bottom-center", Margin: 60, Shadow: soft(100, 20, 25, 25)},
		Text:       TextSpec{Start: 30, Gap: 20},
		Blocks: []BlockSpec{
			{Role: "title", Family: "bold", Size: 80, Color: "black", MaxWidth: 600, PadX: 30, PadY: 15, X: 150,
				Chip: &ChipSpec{Fill: "white/120", Radius: 10}},
			{Role: "subtitle", Family: "regular", Size: 50, Color: "black", MaxWidth: 500, X: 200},
		},
	},
	{
		ID: 5, Name: "bokeh", Description: "out-of-focus circles, white text",
		Background: BackgroundSpec{Kind: "bokeh", Primary: Darken(0.1)},
		Product:    ProductSpec{Anchor: "center-offset", OffsetY: 40, Shadow: soft(70, 25, 40, 40)},
		Blocks: []BlockSpec{
			{Role: "title", Family: "bold", Size: 80, Color: "white", MaxWidth: 600, PadX: 20, PadY: 10, X: 150, Placement: "absolute", Y: 30},
			{Role: "subtitle", Family: "regular", Size: 50, Color: "white", MaxWidth: 500, X: 200, Placement: "absolute", Y: 130},
			{Role: "price", Family: "bold", Size: 60, Color: "white", Align: "center", Placement: "from-bottom", Y: 150},
		},
	},
	{
		ID: 6, Name: "split", Description: "two-tone split, title above and subtitle below",
		Background: BackgroundSpec{Kind: "split", Primary: Lighten(0.7), Secondary: Darken(0.3)},
		Product:    ProductSpec{Anchor: "center", Shadow: soft(70, 20, 25, 25)},
		Blocks: []BlockSpec{
			{Role: "title", Family: "bold", Size: 70, Color: "black", MaxWidth: 600, X: 150, Placement: "absolute", Y: 50},
			{Role: "subtitle", Family: "regular", Size: 40, Color: "white", MaxWidth: 500, X: 200, Placement: "absolute", Y: 950},
		},
	},
	{
		ID: 7, Name: "dark-glow", Description: "near-black panel with a glow around the product",
		Background: BackgroundSpec{Kind: "solid", Primary: Darken(0.8)},
		Product:    ProductSpec{Anchor: "center", Shadow: soft(100, 30, -50, -50)},
		Blocks: []BlockSpec{
			{Role: "title", Family: "bold", Size: 80, Color: "white", MaxWidth: 600, X: 150, Placement: "absolute", Y: 50},
			{Role: "subtitle", Family: "regular", Size: 50, Color: "white", MaxWidth: 500, X: 200, Placement: "absolute", Y: 950},
		},
	},
	{
		ID: 8, Name: "elegant", Description: "light-to-dark gradient, floating product, glass panels",
		Background: BackgroundSpec{Kind: "linear", Primary: Lighten(0.8), Secondary: Darken(0.2)},
		Product:    ProductSpec{Anchor: "center-offset", OffsetY: -50, Shadow: soft(80, 30, 40, 60)},
		Blocks:     panelled(titlePanel, subtitlePanel),
	},
	{
		ID: 9, Name: "glass", Description: "soft cloud, frosted panels, price plate",
		Background: BackgroundSpec{Kind: "cloud", Primary: Lighten(0.7), PostBlur: 10},
		Product:    ProductSpec{Anchor: "center", Shadow: soft(80, 30, 40, 40)},
		Blocks: append(panelled(
			&PanelSpec{X0: -20, Y0: -20, X1: 620, Y1: 100, Radius: 20, Fill: "white/120"},
			&PanelSpec{X0: -20, Y0: -10, X1: 520, Y1: 60, Radius: 15, Fill: "white/100"},
		), BlockSpec{
			Role: "price", Family: "bold", Size: 50, Color: "black", MaxWidth: 400, X: 250, Placement: "absolute", Y: 1000,
			Panel: &PanelSpec{X0: -20, Y0: -20, X1: 420, Y1: 80, Radius: 20, Fill: "white/150"},
		}),
	},
	{
		ID: 10, Name: "diagonal", Description: "diagonal sweep, glass panels",
		Background: BackgroundSpec{Kind: "diagonal", Primary: Lighten(0.7), Secondary: Darken(0.3)},
		Product:    ProductSpec{Anchor: "center", Shadow: soft(80, 30, 40, 40)},
		Blocks:     panelled(titlePanel, subtitlePanel),
	},
	{
		ID: 11, Name: "diagonal-hatch", Description: "diagonal sweep under a faint hatch",
		Background: BackgroundSpec{Kind: "diagonal", Primary: Lighten(0.8), Secondary: Darken(0.2),
			Hatch: &HatchSpec{Spacing: 20, Width: 2, Color: "white/10"}},
		Product: ProductSpec{Anchor: "center", Shadow: soft(80, 30, 40, 40)},
		Blocks:  panelled(titlePanel, subtitlePanel),
	},
	{
		ID: 12, Name: "pool", Description: "random background and title rasters from the asset pools",
		Background: BackgroundSpec{Kind: "pool", Primary: "white", Pool: PoolBackground},
		Product: ProductSpec{Anchor: "bottom-center", Margin: 3, MinRatio: 0.2, MaxRatio: 0.2, RandomArea: true,
			Shadow: soft(140, 25, 30, 30)},
		Text: TextSpec{Start: 80, Gap: 20},
		Blocks: []BlockSpec{
			poolBlock("title", "bold", 100),
			poolBlock("subtitle", "regular", 50),
		},
	},
}

func poolBlock(role, family string, size float64) BlockSpec {
	return BlockSpec{
		Role: role, Family: family, Size: size, Color: ToneAuto,
		MaxWidth: 800, Step: 5, Floor: 20, PadX: 40, PadY: 20, Align: "center",
		Chip: &ChipSpec{
			Pool:   PoolTitle,
			Shadow: &ChipShadowSpec{Color: "black/120", Blur: 8},
		},
		Shadow: &TextShadowSpec{Color: "black/160", OffsetX: 5, OffsetY: 5},
	}
}

// Builtin returns a copy of the built-in variants, ordered by ID.
func Builtin() []Variant {
	out := make([]Variant, len(builtins))
	for i, v := range builtins {
		v.Blocks = append([]BlockSpec(nil), v.Blocks...)
		out[i] = v
	}
	return out
}

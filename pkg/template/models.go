// Package template holds declarative card variants: built-in tables, TOML
// preset files, .cardpack bundles and the product text configuration.
package template

// ── Preset file types ──

// PresetFile is the top-level structure of a presets.toml file.
type PresetFile struct {
	Pack     Pack      `toml:"pack" json:"pack"`
	Variants []Variant `toml:"variant" json:"variants"`
}

// Pack holds bundle metadata.
type Pack struct {
	Name        string `toml:"name" json:"name"`
	Version     string `toml:"version" json:"version"`
	Author      string `toml:"author" json:"author"`
	Description string `toml:"description" json:"description"`
}

// ── Variant types ──

// Variant is one look: a background recipe, a product placement rule and an
// ordered list of text blocks. Variants hold no behaviour of their own.
type Variant struct {
	ID          int            `toml:"id" json:"id"`
	Name        string         `toml:"name" json:"name"`
	Description string         `toml:"description" json:"description"`
	Background  BackgroundSpec `toml:"background" json:"background"`
	Product     ProductSpec    `toml:"product" json:"product"`
	Text        TextSpec       `toml:"text" json:"text"`
	Blocks      []BlockSpec    `toml:"block" json:"blocks"`
}

// Pool names used by variants.
const (
	PoolBackground = "bg"
	PoolTitle      = "title"
)

// BackgroundSpec selects a background recipe and its tones.
type BackgroundSpec struct {
	Kind        string     `toml:"kind" json:"kind"`
	Primary     Tone       `toml:"primary" json:"primary"`
	Secondary   Tone       `toml:"secondary" json:"secondary"`
	Spacing     int        `toml:"spacing" json:"spacing,omitempty"`
	StrokeWidth float64    `toml:"stroke_width" json:"strokeWidth,omitempty"`
	Overlay     uint8      `toml:"overlay" json:"overlay,omitempty"`
	Blur        float64    `toml:"blur" json:"blur,omitempty"`
	FinalBlur   float64    `toml:"final_blur" json:"finalBlur,omitempty"`
	PostBlur    float64    `toml:"post_blur" json:"postBlur,omitempty"`
	Circles     int        `toml:"circles" json:"circles,omitempty"`
	MinRadius   int        `toml:"min_radius" json:"minRadius,omitempty"`
	MaxRadius   int        `toml:"max_radius" json:"maxRadius,omitempty"`
	MinAlpha    int        `toml:"min_alpha" json:"minAlpha,omitempty"`
	MaxAlpha    int        `toml:"max_alpha" json:"maxAlpha,omitempty"`
	Pool        string     `toml:"pool" json:"pool,omitempty"` // kind "pool" only, default "bg"
	Hatch       *HatchSpec `toml:"hatch" json:"hatch,omitempty"`
}

// HatchSpec is a translucent line overlay.
type HatchSpec struct {
	Spacing int     `toml:"spacing" json:"spacing"`
	Width   float64 `toml:"width" json:"width"`
	Color   Tone    `toml:"color" json:"color"`
}

// ProductSpec describes scaling and anchoring of the cutout.
type ProductSpec struct {
	Anchor  string `toml:"anchor" json:"anchor"` // bottom-center, center, center-offset
	Margin  int    `toml:"margin" json:"margin,omitempty"`
	OffsetX int    `toml:"offset_x" json:"offsetX,omitempty"`
	OffsetY int    `toml:"offset_y" json:"offsetY,omitempty"`

	// Area ratios; zero means the composer's configured range.
	MinRatio float64 `toml:"min_ratio" json:"minRatio,omitempty"`
	MaxRatio float64 `toml:"max_ratio" json:"maxRatio,omitempty"`
	// RandomArea samples one target area from the range instead of clamping.
	RandomArea bool `toml:"random_area" json:"randomArea,omitempty"`

	Shadow *ShadowSpec `toml:"shadow" json:"shadow,omitempty"`
}

// ShadowSpec is a blurred silhouette pasted before the product. Negative
// offsets with a light tint give a glow.
type ShadowSpec struct {
	Alpha   uint8   `toml:"alpha" json:"alpha"`
	Blur    float64 `toml:"blur" json:"blur"`
	OffsetX int     `toml:"offset_x" json:"offsetX"`
	OffsetY int     `toml:"offset_y" json:"offsetY"`
	Tint    Tone    `toml:"tint" json:"tint,omitempty"`
}

// TextSpec configures the layout cursor.
type TextSpec struct {
	Start int `toml:"start" json:"start"`
	Gap   int `toml:"gap" json:"gap"`
	// BottomLimit is an absolute lower bound for flowed blocks; 0 disables it.
	BottomLimit int `toml:"bottom_limit" json:"bottomLimit,omitempty"`
	// StopAtProduct sets the bound to ProductMargin pixels above the product.
	StopAtProduct bool `toml:"stop_at_product" json:"stopAtProduct,omitempty"`
	ProductMargin int  `toml:"product_margin" json:"productMargin,omitempty"`
}

// BlockSpec is a text block template; its content comes from the card text.
type BlockSpec struct {
	Role      string          `toml:"role" json:"role"` // title, subtitle, price
	Family    string          `toml:"family" json:"family"`
	Size      float64         `toml:"size" json:"size"`
	Upper     bool            `toml:"upper" json:"upper,omitempty"`
	Color     Tone            `toml:"color" json:"color"`
	MaxWidth  int             `toml:"max_width" json:"maxWidth,omitempty"`
	Step      float64         `toml:"step" json:"step,omitempty"`
	Floor     float64         `toml:"floor" json:"floor,omitempty"`
	PadX      int             `toml:"pad_x" json:"padX,omitempty"`
	PadY      int             `toml:"pad_y" json:"padY,omitempty"`
	Align     string          `toml:"align" json:"align,omitempty"`         // left (default), center
	X         int             `toml:"x" json:"x,omitempty"`                 // left edge for left alignment
	Placement string          `toml:"placement" json:"placement,omitempty"` // flow (default), absolute, from-bottom
	Y         int             `toml:"y" json:"y,omitempty"`
	Chip      *ChipSpec       `toml:"chip" json:"chip,omitempty"`
	Panel     *PanelSpec      `toml:"panel" json:"panel,omitempty"`
	Shadow    *TextShadowSpec `toml:"shadow" json:"shadow,omitempty"`
}

// ChipSpec is a rounded rectangle sized to the text. With Pool set the chip
// is filled with a random raster from that pool instead of Fill.
type ChipSpec struct {
	Fill   Tone            `toml:"fill" json:"fill"`
	Radius float64         `toml:"radius" json:"radius"`
	Pool   string          `toml:"pool" json:"pool,omitempty"`
	Shadow *ChipShadowSpec `toml:"shadow" json:"shadow,omitempty"`
}

// ChipShadowSpec is a blurred rectangle under a chip.
type ChipShadowSpec struct {
	Color   Tone    `toml:"color" json:"color"`
	Blur    float64 `toml:"blur" json:"blur"`
	OffsetX int     `toml:"offset_x" json:"offsetX"`
	OffsetY int     `toml:"offset_y" json:"offsetY"`
}

// PanelSpec is a fixed rectangle behind a block, relative to the block's
// top-left corner.
type PanelSpec struct {
	X0     int     `toml:"x0" json:"x0"`
	Y0     int     `toml:"y0" json:"y0"`
	X1     int     `toml:"x1" json:"x1"`
	Y1     int     `toml:"y1" json:"y1"`
	Radius float64 `toml:"radius" json:"radius"`
	Fill   Tone    `toml:"fill" json:"fill"`
}

// TextShadowSpec is a copy of the text drawn first at an offset.
type TextShadowSpec struct {
	Color   Tone `toml:"color" json:"color"`
	OffsetX int  `toml:"offset_x" json:"offsetX"`
	OffsetY int  `toml:"offset_y" json:"offsetY"`
}

// ── Card text ──

// Text is the content placed into a variant's blocks by role.
type Text struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Price    string `json:"price"`
}

// ForRole returns the content for a block role.
func (t Text) ForRole(role string) string {
	switch role {
	case "title":
		return t.Title
	case "subtitle":
		return t.Subtitle
	case "price":
		return t.Price
	}
	return ""
}

// Pools lists the asset pools the variant draws from, in a stable order.
func (v Variant) Pools() []string {
	var pools []string
	seen := map[string]bool{}
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			pools = append(pools, p)
		}
	}
	if v.Background.Kind == "pool" {
		if v.Background.Pool == "" {
			add(PoolBackground)
		} else {
			add(v.Background.Pool)
		}
	}
	for _, b := range v.Blocks {
		if b.Chip != nil {
			add(b.Chip.Pool)
		}
	}
	return pools
}

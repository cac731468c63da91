// stack.go - Vertical text stacking with a bottom-limit truncation policy.
package textlayout

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/xob0t/GoCard/pkg/palette"
)

// Role identifies what a block carries.
type Role string

const (
	RoleTitle    Role = "title"
	RoleSubtitle Role = "subtitle"
	RolePrice    Role = "price"
)

// Align controls horizontal placement of a block's box.
type Align string

const (
	AlignLeft   Align = "left"   // box starts at X
	AlignCenter Align = "center" // box is centred on the canvas, X is ignored
)

// Placement controls vertical placement of a block's box.
type Placement string

const (
	PlaceFlow       Placement = "flow"        // at the cursor; advances it
	PlaceAbsolute   Placement = "absolute"    // at Y
	PlaceFromBottom Placement = "from-bottom" // bottom edge Y pixels above the canvas bottom
)

// Panel is a fixed-size rounded rectangle drawn behind a block regardless of
// the text's measured size. Rect is relative to the block's box origin.
type Panel struct {
	Rect   image.Rectangle
	Radius float64
	Fill   color.NRGBA
}

// TextShadow is a copy of the text drawn first at an offset.
type TextShadow struct {
	Color  color.NRGBA
	Offset image.Point
}

// Block is one text element ready for layout.
type Block struct {
	Role      Role
	Text      string
	Family    Family
	Size      float64
	Upper     bool
	Color     color.NRGBA
	AutoColor bool          // contrast against the chip or Backdrop instead of Color
	Backdrop  palette.Color // tone behind the block, used by AutoColor
	MaxWidth  int
	Fit       FitOptions
	PadX      int
	PadY      int
	Chip      *Chip
	Panel     *Panel
	Shadow    *TextShadow
	Align     Align
	X         int
	Placement Placement
	Y         int
}

// Box is the measured geometry of a block.
type Box struct {
	Size  float64         // fitted font size
	Text  image.Rectangle // ink box, relative to the dot
	Outer image.Rectangle // chip rectangle on the canvas
}

// Cursor tracks the next flow position. Bottom only applies when Limited
// is set; a limit at or above the top of the canvas truncates every flow
// block.
type Cursor struct {
	Y       int
	Gap     int
	Bottom  int
	Limited bool

	stopped bool
}

// Stopped reports whether the bottom limit has ended the stack.
func (c *Cursor) Stopped() bool { return c.stopped }

// Result lists what Stack did with each block.
type Result struct {
	Drawn   []Box
	Skipped []Role
}

// Engine lays out blocks with a font set.
type Engine struct {
	fonts  *Fonts
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for truncation and fallback messages.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine. A nil font set uses the embedded fonts.
func NewEngine(fonts *Fonts, opts ...Option) *Engine {
	if fonts == nil {
		fonts = EmbeddedFonts()
	}
	e := &Engine{
		fonts:  fonts,
		logger: log.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Fonts returns the engine's font set.
func (e *Engine) Fonts() *Fonts { return e.fonts }

func (e *Engine) text(b Block) string {
	if b.Upper {
		// Casers keep state, so each call gets its own.
		return cases.Upper(language.Und).String(b.Text)
	}
	return b.Text
}

// Layout fits and measures b for a canvas of the given size, using cur for
// flow placement. It does not draw.
func (e *Engine) Layout(canvas image.Point, cur *Cursor, b Block) Box {
	src := e.fonts.Source(b.Family)
	text := e.text(b)
	size := Fit(src, text, b.Size, b.MaxWidth, b.Fit)
	ink := MeasureAt(src, size, text)

	outer := ChipRect(image.Point{}, ink.Dx(), ink.Dy(), b.PadX, b.PadY)
	x := b.X
	if b.Align == AlignCenter {
		x = (canvas.X - outer.Dx()) / 2
	}
	var y int
	switch b.Placement {
	case PlaceAbsolute:
		y = b.Y
	case PlaceFromBottom:
		y = canvas.Y - outer.Dy() - b.Y
	default:
		if cur != nil {
			y = cur.Y
		}
	}
	return Box{Size: size, Text: ink, Outer: outer.Add(image.Pt(x, y))}
}

// Stack lays out and draws blocks in order. Blocks with empty text are
// passed over. A flow block whose box would end below the cursor's bottom
// limit is not drawn, and neither is any block after it; the same happens
// once the cursor has advanced to or past the limit. Truncation is not an
// error, the skipped roles are listed in the result.
func (e *Engine) Stack(dst *image.RGBA, cur *Cursor, blocks []Block) Result {
	var res Result
	canvas := dst.Bounds().Size()
	for i, b := range blocks {
		if cur.stopped {
			res.Skipped = append(res.Skipped, b.Role)
			continue
		}
		if b.Text == "" {
			continue
		}
		box := e.Layout(canvas, cur, b)
		flow := b.Placement == "" || b.Placement == PlaceFlow

		if flow && cur.Limited && box.Outer.Max.Y > cur.Bottom {
			e.logger.Debug("text block truncated", "role", b.Role, "index", i, "bottom", box.Outer.Max.Y, "limit", cur.Bottom)
			cur.stopped = true
			res.Skipped = append(res.Skipped, b.Role)
			continue
		}

		e.draw(dst, b, box)
		res.Drawn = append(res.Drawn, box)

		if flow {
			cur.Y += box.Outer.Dy() + cur.Gap
			if cur.Limited && cur.Y >= cur.Bottom {
				cur.stopped = true
			}
		}
	}
	return res
}

// Draw lays out and draws a single block outside of any cursor.
func (e *Engine) Draw(dst *image.RGBA, b Block) Box {
	box := e.Layout(dst.Bounds().Size(), nil, b)
	e.draw(dst, b, box)
	return box
}

func (e *Engine) draw(dst *image.RGBA, b Block, box Box) {
	if b.Panel != nil {
		p := *b.Panel
		DrawChip(dst, p.Rect.Add(box.Outer.Min), Chip{Fill: p.Fill, Radius: p.Radius})
	}

	backdrop := b.Backdrop
	if b.Chip != nil {
		fill := DrawChip(dst, box.Outer, *b.Chip)
		switch {
		case fill != nil:
			if avg, ok := palette.Average(fill); ok {
				backdrop = avg
			}
		default:
			c := b.Chip.Fill
			backdrop = palette.Mix(backdrop, palette.Color{R: c.R, G: c.G, B: c.B}, float64(c.A)/255)
		}
	}

	ink := b.Color
	if b.AutoColor {
		ink = palette.ContrastText(backdrop).WithAlpha(255)
	}

	face := e.fonts.Source(b.Family).Face(box.Size)
	defer face.Close()

	text := e.text(b)
	origin := image.Pt(box.Outer.Min.X+b.PadX, box.Outer.Min.Y+b.PadY)
	if b.Shadow != nil {
		drawString(dst, face, text, box.Text, origin.Add(b.Shadow.Offset), b.Shadow.Color)
	}
	drawString(dst, face, text, box.Text, origin, ink)
}

// drawString draws text so that its ink box starts at at.
func drawString(dst draw.Image, face font.Face, text string, ink image.Rectangle, at image.Point, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(at.X-ink.Min.X, at.Y-ink.Min.Y),
	}
	d.DrawString(text)
}

// Package raster draws scenes headlessly. Canvas implements engine.Surface
// on top of a gg software context so the server can render exports and
// thumbnails with the same command buffer the browser replays.
package raster

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/inamate/memecanvas/backend-go/internal/engine"
)

// Baseline shifts, as a fraction of the line height, that move a gg
// baseline to the Canvas2D textBaseline keywords.
const (
	baselineTop    = 0.8
	baselineMiddle = 0.3
)

type state struct {
	matrix    engine.Matrix2D
	fill      gg.RGBA
	stroke    gg.RGBA
	lineWidth float64
	dash      []float64
	font      engine.Style
	align     string
	baseline  string
}

// Canvas is a raster engine.Surface.
type Canvas struct {
	dc     *gg.Context
	fonts  *Fonts
	logger *slog.Logger

	cur   state
	stack []state
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithFonts sets the font resolver. The default uses the embedded Go fonts.
func WithFonts(f *Fonts) Option {
	return func(c *Canvas) { c.fonts = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Canvas) { c.logger = l }
}

// NewCanvas creates a transparent canvas of the given pixel size.
func NewCanvas(width, height int, opts ...Option) *Canvas {
	c := &Canvas{
		dc:     gg.NewContext(width, height),
		logger: slog.Default(),
		cur: state{
			matrix:    engine.Identity(),
			fill:      gg.Black,
			stroke:    gg.Black,
			lineWidth: 1,
			font:      engine.DefaultStyle(),
			align:     "start",
			baseline:  "alphabetic",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fonts == nil {
		c.fonts = NewFonts("")
	}
	return c
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.dc.Width() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.dc.Height() }

// Image returns a copy of the current pixels.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// EncodePNG writes the current pixels as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := c.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Close releases the underlying context.
func (c *Canvas) Close() error {
	return c.dc.Close()
}

// ClearRect clears the canvas. Only full-canvas clears are supported since
// that is the only clear a frame issues.
func (c *Canvas) ClearRect(x, y, w, h float64) {
	if x > 0 || y > 0 || x+w < float64(c.Width()) || y+h < float64(c.Height()) {
		c.logger.Debug("partial clear widened to full canvas", "x", x, "y", y, "w", w, "h", h)
	}
	c.dc.Clear()
}

// DrawImage draws img scaled into the rectangle (x, y, w, h) under the
// current transform.
func (c *Canvas) DrawImage(img engine.Image, x, y, w, h float64) {
	src, ok := img.(image.Image)
	if !ok {
		c.logger.Warn("draw image: unsupported image type", "type", fmt.Sprintf("%T", img))
		return
	}
	b := src.Bounds()
	if b.Empty() || w == 0 || h == 0 {
		return
	}
	sx := w / float64(b.Dx())
	sy := h / float64(b.Dy())
	place := engine.Matrix2D{sx, 0, 0, sy, x - float64(b.Min.X)*sx, y - float64(b.Min.Y)*sy}
	c.composite(src, c.cur.matrix.Multiply(place))
}

func (c *Canvas) Save() {
	saved := c.cur
	saved.dash = append([]float64(nil), c.cur.dash...)
	c.stack = append(c.stack, saved)
	c.dc.Push()
}

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.cur = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.dc.Pop()
}

func (c *Canvas) Transform(m engine.Matrix2D) {
	c.cur.matrix = c.cur.matrix.Multiply(m)
	c.dc.Transform(toGG(m))
}

func (c *Canvas) SetFont(style engine.Style)      { c.cur.font = style }
func (c *Canvas) SetTextAlign(align string)       { c.cur.align = align }
func (c *Canvas) SetTextBaseline(baseline string) { c.cur.baseline = baseline }
func (c *Canvas) SetLineWidth(width float64)      { c.cur.lineWidth = width }

func (c *Canvas) SetFillColor(color string) {
	if col, ok := parseColor(color); ok {
		c.cur.fill = col
		return
	}
	c.logger.Debug("ignoring unknown fill color", "color", color)
}

func (c *Canvas) SetStrokeColor(color string) {
	if col, ok := parseColor(color); ok {
		c.cur.stroke = col
		return
	}
	c.logger.Debug("ignoring unknown stroke color", "color", color)
}

func (c *Canvas) SetLineDash(segments []float64) {
	c.cur.dash = append(c.cur.dash[:0], segments...)
}

// FillText draws text under the current transform.
func (c *Canvas) FillText(s string, x, y float64) {
	c.drawText(s, x, y, c.cur.fill, 0)
}

// StrokeText outlines text. The outline is built from offset copies of the
// glyphs, which matches a Canvas2D stroke closely at meme line widths.
func (c *Canvas) StrokeText(s string, x, y float64) {
	c.drawText(s, x, y, c.cur.stroke, c.cur.lineWidth/2)
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	c.dc.DrawRectangle(x, y, w, h)
	c.dc.SetColor(c.cur.fill.Color())
	c.fill()
}

func (c *Canvas) StrokeRect(x, y, w, h float64) {
	c.dc.DrawRectangle(x, y, w, h)
	c.applyStroke()
	c.stroke()
}

func (c *Canvas) BeginPath()          { c.dc.ClearPath() }
func (c *Canvas) MoveTo(x, y float64) { c.dc.MoveTo(x, y) }
func (c *Canvas) LineTo(x, y float64) { c.dc.LineTo(x, y) }

func (c *Canvas) Arc(x, y, radius, startAngle, endAngle float64) {
	c.dc.DrawArc(x, y, radius, startAngle, endAngle)
}

func (c *Canvas) Fill() {
	c.dc.SetColor(c.cur.fill.Color())
	c.fill()
}

func (c *Canvas) Stroke() {
	c.applyStroke()
	c.stroke()
}

func (c *Canvas) applyStroke() {
	c.dc.SetColor(c.cur.stroke.Color())
	c.dc.SetLineWidth(c.cur.lineWidth * c.lineScale())
	if len(c.cur.dash) > 0 {
		c.dc.SetDash(c.cur.dash...)
	} else {
		c.dc.ClearDash()
	}
}

func (c *Canvas) fill() {
	if err := c.dc.Fill(); err != nil {
		c.logger.Warn("fill path", "error", err)
	}
}

func (c *Canvas) stroke() {
	if err := c.dc.Stroke(); err != nil {
		c.logger.Warn("stroke path", "error", err)
	}
}

// lineScale is the average scale of the current transform. Paths are
// transformed point by point, so widths need scaling by hand.
func (c *Canvas) lineScale() float64 {
	m := c.cur.matrix
	return math.Sqrt(math.Abs(m.Determinant()))
}

// drawText renders s upright into an offscreen image, then warps it through
// the current transform onto the canvas. spread > 0 draws the glyphs at
// offsets around each pen position to form an outline of that radius.
func (c *Canvas) drawText(s string, x, y float64, col gg.RGBA, spread float64) {
	if s == "" {
		return
	}
	size := c.cur.font.Size
	if size <= 0 {
		size = engine.DefaultStyle().Size
	}
	face, err := c.fonts.Face(c.cur.font, size)
	if err != nil {
		c.logger.Warn("resolve font", "font", c.cur.font.Font(), "error", err)
		return
	}

	tw, th := text.Measure(s, face)
	if tw <= 0 || th <= 0 {
		return
	}
	pad := math.Ceil(spread) + 2

	var ax float64
	switch c.cur.align {
	case "center":
		ax = 0.5
	case "right", "end":
		ax = 1
	}
	var shift float64
	switch c.cur.baseline {
	case "top", "hanging":
		shift = baselineTop
	case "middle":
		shift = baselineMiddle
	}

	off := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(tw+2*pad)), int(math.Ceil(2*th+2*pad))))
	penX, penY := pad, pad+th
	ink := col.Color()
	if spread > 0 {
		for _, d := range outlineOffsets(spread) {
			text.Draw(off, s, face, penX+d[0], penY+d[1], ink)
		}
	} else {
		text.Draw(off, s, face, penX, penY, ink)
	}

	// Offscreen pixel (0,0) sits at this point of the text's local frame.
	ox := x - ax*tw - pad
	oy := y + th*shift - th - pad
	c.composite(off, c.cur.matrix.Multiply(engine.Translate(ox, oy)))
}

// outlineOffsets returns pen offsets on a ring of radius r, dense enough
// that adjacent copies overlap.
func outlineOffsets(r float64) [][2]float64 {
	n := int(math.Max(8, math.Ceil(2*math.Pi*r)))
	out := make([][2]float64, 0, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		out = append(out, [2]float64{r * math.Cos(a), r * math.Sin(a)})
	}
	return out
}

// composite warps src onto the canvas. m maps src pixel space to canvas
// space. The warp lands in a layer sized to the destination bounds, which
// is then blended over the canvas.
func (c *Canvas) composite(src image.Image, m engine.Matrix2D) {
	sb := src.Bounds()
	dst := m.TransformBounds(engine.Bounds{
		Left: float64(sb.Min.X), Top: float64(sb.Min.Y),
		Right: float64(sb.Max.X), Bottom: float64(sb.Max.Y),
	})
	r := image.Rect(
		int(math.Floor(dst.Left)), int(math.Floor(dst.Top)),
		int(math.Ceil(dst.Right)), int(math.Ceil(dst.Bottom)),
	).Intersect(image.Rect(0, 0, c.Width(), c.Height()))
	if r.Empty() {
		return
	}

	layer := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	aff := f64.Aff3{
		m[0], m[2], m[4] - float64(r.Min.X),
		m[1], m[3], m[5] - float64(r.Min.Y),
	}
	xdraw.BiLinear.Transform(layer, aff, src, sb, xdraw.Over, nil)

	c.dc.Push()
	c.dc.Identity()
	c.dc.DrawImageEx(gg.ImageBufFromImage(layer), gg.DrawImageOptions{
		X:             float64(r.Min.X),
		Y:             float64(r.Min.Y),
		Interpolation: gg.InterpNearest,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
	c.dc.Pop()
}

// toGG converts a Canvas2D-layout matrix to gg's row-major form.
func toGG(m engine.Matrix2D) gg.Matrix {
	return gg.Matrix{A: m[0], B: m[2], C: m[4], D: m[1], E: m[3], F: m[5]}
}

package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/inamate/memecanvas/backend-go/internal/document"
)

const (
	DefaultFontSize  = document.DefaultFontSize
	DefaultFamily    = document.DefaultFamily
	DefaultEffect    = document.DefaultEffect
	DefaultFill      = document.DefaultFill
	DefaultStroke    = document.DefaultStroke
	DefaultLineWidth = document.DefaultLineWidth
	DefaultText      = document.DefaultText

	// MinScale is the smallest scale factor a resize gesture can produce.
	MinScale = 0.05
)

// HandleKind identifies a selection handle.
type HandleKind int

const (
	HandleNone HandleKind = iota
	HandleResizeTopLeft
	HandleResizeTopRight
	HandleResizeBottomRight
	HandleResizeBottomLeft
	HandleRotate
)

var handleNames = map[HandleKind]string{
	HandleNone:              "none",
	HandleResizeTopLeft:     "resize-top-left",
	HandleResizeTopRight:    "resize-top-right",
	HandleResizeBottomRight: "resize-bottom-right",
	HandleResizeBottomLeft:  "resize-bottom-left",
	HandleRotate:            "rotate",
}

func (h HandleKind) String() string {
	if name, ok := handleNames[h]; ok {
		return name
	}
	return "HandleKind(" + strconv.Itoa(int(h)) + ")"
}

// IsCorner reports whether the handle resizes.
func (h HandleKind) IsCorner() bool {
	return h >= HandleResizeTopLeft && h <= HandleResizeBottomLeft
}

// MarshalJSON encodes the handle by name.
func (h HandleKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a handle name.
func (h *HandleKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for k, v := range handleNames {
		if v == name {
			*h = k
			return nil
		}
	}
	return fmt.Errorf("unknown handle %q", name)
}

// Style controls how a text object is drawn.
type Style struct {
	Size      float64 `json:"size"`
	Family    string  `json:"family"`
	Effect    string  `json:"effect"`
	Fill      string  `json:"fill"`
	Stroke    string  `json:"stroke"`
	LineWidth float64 `json:"lineWidth"`
}

// DefaultStyle is the classic meme caption: bold white text with a black outline.
func DefaultStyle() Style {
	return Style{
		Size:      DefaultFontSize,
		Family:    DefaultFamily,
		Effect:    DefaultEffect,
		Fill:      DefaultFill,
		Stroke:    DefaultStroke,
		LineWidth: DefaultLineWidth,
	}
}

// Font returns the style as a Canvas2D font shorthand, e.g. "bold 48px Arial".
func (s Style) Font() string {
	size := strconv.FormatFloat(s.Size, 'f', -1, 64)
	if s.Effect == "" {
		return size + "px " + s.Family
	}
	return s.Effect + " " + size + "px " + s.Family
}

// withDefaults fills zero fields from DefaultStyle.
func (s Style) withDefaults() Style {
	d := DefaultStyle()
	if s.Size <= 0 {
		s.Size = d.Size
	}
	if s.Family == "" {
		s.Family = d.Family
	}
	if s.Fill == "" {
		s.Fill = d.Fill
	}
	if s.Stroke == "" {
		s.Stroke = d.Stroke
	}
	if s.LineWidth <= 0 {
		s.LineWidth = d.LineWidth
	}
	return s
}

// TextObject is one positioned, styled, transformable caption.
type TextObject struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Position Point   `json:"position"`
	Rotation float64 `json:"rotation"` // radians about Position
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
	Style    Style   `json:"style"`
	Selected bool    `json:"selected"`
}

// NewTextObject creates an unrotated, unscaled, unselected text object.
func NewTextObject(id, text string, pos Point, style Style) TextObject {
	return TextObject{
		ID:       id,
		Text:     text,
		Position: pos,
		ScaleX:   1,
		ScaleY:   1,
		Style:    style.withDefaults(),
	}
}

// Bounds returns the local bounds, optionally scaled.
func (o *TextObject) Bounds(applyScale bool) Bounds {
	return LocalBounds(o, applyScale)
}

// ContainsPoint reports whether a canvas point hits the object.
func (o *TextObject) ContainsPoint(p Point) bool {
	return ContainsPoint(o, p)
}

// HandleAt returns the handle under a canvas point; only selected objects
// have handles.
func (o *TextObject) HandleAt(p Point) (HandleKind, bool) {
	return HandleAt(o, p)
}

// Matrix returns the local-to-canvas transform including scale.
func (o *TextObject) Matrix() Matrix2D {
	return FromPlacement(o.Position.X, o.Position.Y, o.Rotation, o.ScaleX, o.ScaleY)
}

// FrameMatrix returns the local-to-canvas transform without scale. The
// selection overlay is drawn in this frame so its stroke widths and handle
// sizes stay constant while the text grows.
func (o *TextObject) FrameMatrix() Matrix2D {
	return FromPlacement(o.Position.X, o.Position.Y, o.Rotation, 1, 1)
}

// CanvasBounds is the axis-aligned box around the rotated, scaled object.
func (o *TextObject) CanvasBounds() Bounds {
	return o.FrameMatrix().TransformBounds(LocalBounds(o, true))
}

// AngleTo returns the canvas angle from the object's origin to p.
func (o *TextObject) AngleTo(p Point) float64 {
	return math.Atan2(p.Y-o.Position.Y, p.X-o.Position.X)
}

// setScale applies the resize floor.
func (o *TextObject) setScale(sx, sy float64) {
	o.ScaleX = math.Max(sx, MinScale)
	o.ScaleY = math.Max(sy, MinScale)
}

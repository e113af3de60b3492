package engine

import (
	"math"
	"unicode/utf8"
)

const (
	// HandleSize is the side length of a corner handle and the diameter of
	// the rotation handle, in canvas pixels.
	HandleSize = 8.0

	// RotateHandleOffset is the distance from the top edge of the scaled
	// bounds to the center of the rotation handle, in local space.
	RotateHandleOffset = 20.0

	// GlyphWidthFactor approximates the advance of one character as a
	// fraction of the font size. Real glyph metrics are not used.
	GlyphWidthFactor = 0.6
)

// Point is a position or a vector in canvas or local space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Bounds is an axis-aligned rectangle given by its edges.
type Bounds struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the horizontal extent of the bounds.
func (b Bounds) Width() float64 { return b.Right - b.Left }

// Height returns the vertical extent of the bounds.
func (b Bounds) Height() float64 { return b.Bottom - b.Top }

// Center returns the midpoint of the bounds.
func (b Bounds) Center() Point {
	return Point{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Left && p.X <= b.Right && p.Y >= b.Top && p.Y <= b.Bottom
}

// ToLocal maps a canvas point into the object's local frame: translate by
// -Position, then rotate by -Rotation. Scale is not undone; callers compare
// against scaled local bounds instead.
func ToLocal(o *TextObject, p Point) Point {
	return o.FrameMatrix().Invert().TransformPoint(p)
}

// ToCanvas is the inverse of ToLocal.
func ToCanvas(o *TextObject, local Point) Point {
	return o.FrameMatrix().TransformPoint(local)
}

// LocalBounds returns the text box centered at the local origin. With
// applyScale the object's scale factors are folded into the extent.
func LocalBounds(o *TextObject, applyScale bool) Bounds {
	w := float64(utf8.RuneCountInString(o.Text)) * o.Style.Size * GlyphWidthFactor
	h := o.Style.Size
	if applyScale {
		w *= o.ScaleX
		h *= o.ScaleY
	}
	// Negative extents can only come from a caller writing a negative
	// scale directly; normalise so Contains still works.
	w, h = math.Abs(w), math.Abs(h)
	return Bounds{Left: -w / 2, Top: -h / 2, Right: w / 2, Bottom: h / 2}
}

// ContainsPoint reports whether the canvas point falls inside the object's
// scaled bounds, accounting for rotation.
func ContainsPoint(o *TextObject, p Point) bool {
	return LocalBounds(o, true).Contains(ToLocal(o, p))
}

// handleSpot is one handle's position in local space.
type handleSpot struct {
	kind HandleKind
	at   Point
}

// handleSpots lists the handles in hit-test priority order: rotate first,
// then the corners clockwise from the top left.
func handleSpots(b Bounds) [5]handleSpot {
	return [5]handleSpot{
		{HandleRotate, Point{X: (b.Left + b.Right) / 2, Y: b.Top - RotateHandleOffset}},
		{HandleResizeTopLeft, Point{X: b.Left, Y: b.Top}},
		{HandleResizeTopRight, Point{X: b.Right, Y: b.Top}},
		{HandleResizeBottomRight, Point{X: b.Right, Y: b.Bottom}},
		{HandleResizeBottomLeft, Point{X: b.Left, Y: b.Bottom}},
	}
}

// HandleAt returns the handle under the canvas point, if the object is
// selected and a handle is within HandleSize/2 on both local axes.
func HandleAt(o *TextObject, p Point) (HandleKind, bool) {
	if !o.Selected {
		return 0, false
	}

	local := ToLocal(o, p)
	tolerance := HandleSize / 2
	for _, h := range handleSpots(LocalBounds(o, true)) {
		if math.Abs(local.X-h.at.X) <= tolerance && math.Abs(local.Y-h.at.Y) <= tolerance {
			return h.kind, true
		}
	}
	return 0, false
}

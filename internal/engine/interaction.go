package engine

import (
	"math"
)

// Mode is the pointer gesture in progress. It is a closed set: Idle,
// Dragging, Resizing and Rotating are the only implementations.
type Mode interface {
	isMode()
	// Name is the wire name of the mode.
	Name() string
}

// Idle means no gesture is active.
type Idle struct{}

// Dragging moves object Index, keeping the pointer at GrabOffset from its origin.
type Dragging struct {
	Index      int   `json:"index"`
	GrabOffset Point `json:"grabOffset"`
}

// Resizing scales object Index from the corner Handle. Anchor is where the
// pointer went down; StartScaleX/Y are the scale factors at that moment.
type Resizing struct {
	Index       int        `json:"index"`
	Handle      HandleKind `json:"handle"`
	Anchor      Point      `json:"anchor"`
	StartScaleX float64    `json:"startScaleX"`
	StartScaleY float64    `json:"startScaleY"`
}

// Rotating turns object Index. StartAngle is the pointer angle minus the
// object's rotation when the gesture began.
type Rotating struct {
	Index      int     `json:"index"`
	StartAngle float64 `json:"startAngle"`
}

func (Idle) isMode()     {}
func (Dragging) isMode() {}
func (Resizing) isMode() {}
func (Rotating) isMode() {}

func (Idle) Name() string     { return "idle" }
func (Dragging) Name() string { return "dragging" }
func (Resizing) Name() string { return "resizing" }
func (Rotating) Name() string { return "rotating" }

// Controller turns pointer events into scene mutations. Pointer coordinates
// are canvas pixels with the origin at the canvas top-left.
type Controller struct {
	scene    *Scene
	mode     Mode
	onChange func()
}

// NewController creates an idle controller over scene. onChange runs after
// every transition that mutates the scene; it may be nil.
func NewController(scene *Scene, onChange func()) *Controller {
	if onChange == nil {
		onChange = func() {}
	}
	return &Controller{scene: scene, mode: Idle{}, onChange: onChange}
}

// Mode returns the current gesture.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Reset drops any gesture in progress.
func (c *Controller) Reset() {
	c.mode = Idle{}
}

// PointerDown starts a gesture. Handles of the selected object take
// precedence over hit-testing objects.
func (c *Controller) PointerDown(p Point) {
	if i, h, ok := c.scene.SelectHandleAt(p); ok {
		obj := c.scene.objects[i]
		if h == HandleRotate {
			c.mode = Rotating{Index: i, StartAngle: obj.AngleTo(p) - obj.Rotation}
		} else {
			c.mode = Resizing{
				Index:       i,
				Handle:      h,
				Anchor:      p,
				StartScaleX: obj.ScaleX,
				StartScaleY: obj.ScaleY,
			}
		}
		return
	}

	if i, ok := c.scene.HitTest(p); ok {
		c.scene.Select(i)
		c.mode = Dragging{Index: i, GrabOffset: p.Sub(c.scene.objects[i].Position)}
		c.onChange()
		return
	}

	_, hadSelection := c.scene.Selected()
	c.scene.ClearSelection()
	c.mode = Idle{}
	if hadSelection {
		c.onChange()
	}
}

// PointerMove advances the active gesture.
func (c *Controller) PointerMove(p Point) {
	var changed bool
	switch m := c.mode.(type) {
	case Idle:
		return
	case Dragging:
		changed = c.scene.update(m.Index, func(o *TextObject) {
			o.Position = c.clampDrag(o, p.Sub(m.GrabOffset))
		})
	case Rotating:
		changed = c.scene.update(m.Index, func(o *TextObject) {
			o.Rotation = o.AngleTo(p) - m.StartAngle
		})
	case Resizing:
		changed = c.scene.update(m.Index, func(o *TextObject) {
			resize(o, m, p)
		})
	}

	if !changed {
		// The target disappeared underneath the gesture.
		c.mode = Idle{}
		return
	}
	c.onChange()
}

// PointerUp ends the gesture.
func (c *Controller) PointerUp() {
	c.mode = Idle{}
}

// PointerLeave ends the gesture when the pointer exits the canvas.
func (c *Controller) PointerLeave() {
	c.mode = Idle{}
}

// ObjectRemoved must be called after the scene drops object i so an
// in-flight gesture never writes to the wrong object.
func (c *Controller) ObjectRemoved(i int) {
	var target int
	switch m := c.mode.(type) {
	case Idle:
		return
	case Dragging:
		target = m.Index
	case Resizing:
		target = m.Index
	case Rotating:
		target = m.Index
	}
	if target >= i {
		c.mode = Idle{}
	}
}

// clampDrag keeps the origin on the canvas. The vertical floor is the font
// size so a caption cannot slide above the top edge by its own height.
func (c *Controller) clampDrag(o *TextObject, pos Point) Point {
	return Point{
		X: clamp(pos.X, 0, c.scene.width),
		Y: math.Min(math.Max(pos.Y, o.Style.Size), c.scene.height),
	}
}

// resize applies a corner drag. The object is scaled about its center, so
// moving one corner by d changes the full extent by 2d. The pointer delta
// is measured in the object's local frame.
func resize(o *TextObject, m Resizing, p Point) {
	delta := p.Sub(m.Anchor)
	cos, sin := math.Cos(o.Rotation), math.Sin(o.Rotation)
	dx := delta.X*cos + delta.Y*sin
	dy := -delta.X*sin + delta.Y*cos

	var signX, signY float64
	switch m.Handle {
	case HandleResizeTopLeft:
		signX, signY = -1, -1
	case HandleResizeTopRight:
		signX, signY = 1, -1
	case HandleResizeBottomRight:
		signX, signY = 1, 1
	case HandleResizeBottomLeft:
		signX, signY = -1, 1
	default:
		return
	}

	extent := LocalBounds(o, false)
	sx, sy := m.StartScaleX, m.StartScaleY
	if w := extent.Width(); w > 0 {
		sx += signX * 2 * dx / w
	}
	if h := extent.Height(); h > 0 {
		sy += signY * 2 * dy / h
	}
	o.setScale(sx, sy)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

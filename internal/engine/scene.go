package engine

import (
	"slices"

	"github.com/inamate/memecanvas/backend-go/internal/document"
	"github.com/inamate/memecanvas/backend-go/internal/typeid"
)

// DefaultBackgroundURL is the template image a new scene starts with.
const DefaultBackgroundURL = document.DefaultBackgroundURL

// noSelection marks the absence of a selected index.
const noSelection = -1

// Scene is the ordered collection of text objects drawn over a background
// image. Slice order is paint order: later objects draw on top and win hit
// tests. Objects are addressed by index only; callers must re-validate an
// index after any mutation.
//
// Scene is not safe for concurrent use. Each editor owns one and mutates it
// from a single goroutine.
type Scene struct {
	background string
	width      float64
	height     float64
	objects    []TextObject
	selected   int
	generation uint64

	newID func() string
}

// NewScene creates a scene with fixed canvas dimensions. A scene always holds
// at least one object, so an empty object list gets a default caption at the
// canvas center. Any Selected flags on the given objects are cleared.
func NewScene(width, height float64, background string, objects ...TextObject) *Scene {
	s := &Scene{
		background: background,
		width:      width,
		height:     height,
		selected:   noSelection,
		newID:      typeid.NewObjectID,
	}
	for _, o := range objects {
		o.Selected = false
		if o.ID == "" {
			o.ID = s.newID()
		}
		o.Style = o.Style.withDefaults()
		s.objects = append(s.objects, o)
	}
	if len(s.objects) == 0 {
		s.objects = append(s.objects, NewTextObject(s.newID(), DefaultText, s.center(), DefaultStyle()))
	}
	return s
}

// NewDefaultScene creates the starting meme: "top text" and "bottom text"
// at three quarters of the width, a quarter and three quarters down.
func NewDefaultScene(width, height float64) *Scene {
	return NewScene(width, height, DefaultBackgroundURL,
		NewTextObject(typeid.NewObjectID(), "top text", Point{X: width * 3 / 4, Y: height / 4}, DefaultStyle()),
		NewTextObject(typeid.NewObjectID(), "bottom text", Point{X: width * 3 / 4, Y: height * 3 / 4}, DefaultStyle()),
	)
}

func (s *Scene) center() Point {
	return Point{X: s.width / 2, Y: s.height / 2}
}

func (s *Scene) touch() {
	s.generation++
}

func (s *Scene) valid(i int) bool {
	return i >= 0 && i < len(s.objects)
}

// Width returns the canvas width in pixels.
func (s *Scene) Width() float64 { return s.width }

// Height returns the canvas height in pixels.
func (s *Scene) Height() float64 { return s.height }

// Background returns the background image URL.
func (s *Scene) Background() string { return s.background }

// Generation increases on every mutation of the scene.
func (s *Scene) Generation() uint64 { return s.generation }

// Len returns the number of objects.
func (s *Scene) Len() int { return len(s.objects) }

// Object returns a copy of the object at index i.
func (s *Scene) Object(i int) (TextObject, bool) {
	if !s.valid(i) {
		return TextObject{}, false
	}
	return s.objects[i], true
}

// Objects returns a copy of all objects in paint order.
func (s *Scene) Objects() []TextObject {
	return slices.Clone(s.objects)
}

// IndexOf returns the index of the object with the given ID.
func (s *Scene) IndexOf(id string) (int, bool) {
	for i := range s.objects {
		if s.objects[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// Selected returns the selected index, if any.
func (s *Scene) Selected() (int, bool) {
	if s.selected == noSelection {
		return 0, false
	}
	return s.selected, true
}

// HitTest returns the topmost object containing p. Objects are tested in
// reverse paint order so the one drawn last wins.
func (s *Scene) HitTest(p Point) (int, bool) {
	for i := len(s.objects) - 1; i >= 0; i-- {
		if s.objects[i].ContainsPoint(p) {
			return i, true
		}
	}
	return 0, false
}

// SelectHandleAt tests p against the handles of the selected object only.
func (s *Scene) SelectHandleAt(p Point) (int, HandleKind, bool) {
	i, ok := s.Selected()
	if !ok {
		return 0, HandleNone, false
	}
	h, ok := s.objects[i].HandleAt(p)
	if !ok {
		return 0, HandleNone, false
	}
	return i, h, true
}

// Select makes object i the only selected object. An out-of-range index is
// ignored and leaves the current selection untouched.
func (s *Scene) Select(i int) bool {
	if !s.valid(i) {
		return false
	}
	s.setSelection(i)
	return true
}

// ClearSelection deselects every object.
func (s *Scene) ClearSelection() {
	s.setSelection(noSelection)
}

// setSelection rewrites every flag and the index together, so the two can
// never disagree.
func (s *Scene) setSelection(i int) {
	if s.selected == i {
		return
	}
	for j := range s.objects {
		s.objects[j].Selected = j == i
	}
	s.selected = i
	s.touch()
}

// AddObject appends a default caption at the canvas center and returns its
// index. The new object paints on top but is not selected.
func (s *Scene) AddObject() int {
	return s.AddText(DefaultText, DefaultStyle())
}

// AddText appends a caption with the given text and style at the canvas center.
func (s *Scene) AddText(text string, style Style) int {
	s.objects = append(s.objects, NewTextObject(s.newID(), text, s.center(), style))
	s.touch()
	return len(s.objects) - 1
}

// RemoveObject deletes object i. It is a no-op when i is out of range or
// when only one object remains. Removing the selected object clears the
// selection; removing an earlier object keeps the same object selected.
func (s *Scene) RemoveObject(i int) bool {
	if len(s.objects) <= 1 || !s.valid(i) {
		return false
	}

	s.objects = slices.Delete(s.objects, i, i+1)
	switch {
	case s.selected == i:
		s.selected = noSelection
	case s.selected > i:
		s.selected--
	}
	s.touch()
	return true
}

// SetText replaces the text of object i.
func (s *Scene) SetText(i int, text string) bool {
	if !s.valid(i) {
		return false
	}
	s.objects[i].Text = text
	s.touch()
	return true
}

// SetStyle replaces the style of object i. Zero fields take defaults.
func (s *Scene) SetStyle(i int, style Style) bool {
	if !s.valid(i) {
		return false
	}
	s.objects[i].Style = style.withDefaults()
	s.touch()
	return true
}

// SetBackground replaces the background image URL.
func (s *Scene) SetBackground(url string) {
	if s.background == url {
		return
	}
	s.background = url
	s.touch()
}

// update applies fn to object i in place.
func (s *Scene) update(i int, fn func(o *TextObject)) bool {
	if !s.valid(i) {
		return false
	}
	fn(&s.objects[i])
	s.touch()
	return true
}

// Snapshot is an immutable copy of the scene handed to the render pipeline.
type Snapshot struct {
	Background    string       `json:"background"`
	Width         float64      `json:"width"`
	Height        float64      `json:"height"`
	Objects       []TextObject `json:"objects"`
	SelectedIndex int          `json:"selectedIndex"` // -1 when nothing is selected
	Generation    uint64       `json:"generation"`
}

// Snapshot copies the current state.
func (s *Scene) Snapshot() Snapshot {
	return Snapshot{
		Background:    s.background,
		Width:         s.width,
		Height:        s.height,
		Objects:       s.Objects(),
		SelectedIndex: s.selected,
		Generation:    s.generation,
	}
}

// WithoutSelection returns a copy with no object selected, as exported.
func (s Snapshot) WithoutSelection() Snapshot {
	objects := make([]TextObject, len(s.Objects))
	copy(objects, s.Objects)
	for i := range objects {
		objects[i].Selected = false
	}
	s.Objects = objects
	s.SelectedIndex = noSelection
	return s
}

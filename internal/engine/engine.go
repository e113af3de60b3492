package engine

import (
	"encoding/json"

	"github.com/inamate/memecanvas/backend-go/internal/document"
)

// Engine owns one scene, the pointer controller that edits it and the
// renderer that draws it. It processes commands from the frontend and
// answers queries. Engine is single-threaded: every method must be called
// from the goroutine (or JS event loop) that owns it.
type Engine struct {
	scene      *Scene
	controller *Controller
	renderer   *Renderer
}

// NewEngine creates an engine over the default meme scene.
func NewEngine(surface Surface, loader ImageLoader, opts ...RendererOption) *Engine {
	e := &Engine{renderer: NewRenderer(surface, loader, opts...)}
	e.setScene(NewDefaultScene(document.DefaultWidth, document.DefaultHeight))
	return e
}

func (e *Engine) setScene(s *Scene) {
	e.scene = s
	e.controller = NewController(s, e.requestRender)
}

func (e *Engine) requestRender() {
	e.renderer.Render(e.scene)
}

// Scene exposes the scene for hosts that need direct reads.
func (e *Engine) Scene() *Scene {
	return e.scene
}

// Controller exposes the pointer controller.
func (e *Engine) Controller() *Controller {
	return e.controller
}

// --- Commands (frontend → engine) ---

// LoadDocument replaces the scene with one decoded from JSON.
func (e *Engine) LoadDocument(jsonData string) error {
	var doc document.MemeDocument
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return err
	}
	e.Load(&doc)
	return nil
}

// Load replaces the scene with one built from doc and redraws.
func (e *Engine) Load(doc *document.MemeDocument) {
	e.setScene(SceneFromDocument(doc))
	e.requestRender()
}

// LoadTemplate replaces the scene with a named template.
func (e *Engine) LoadTemplate(name string, width, height int) error {
	doc, err := document.NewFromTemplate(name, width, height)
	if err != nil {
		return err
	}
	e.Load(doc)
	return nil
}

func (e *Engine) PointerDown(x, y float64) { e.controller.PointerDown(Point{X: x, Y: y}) }
func (e *Engine) PointerMove(x, y float64) { e.controller.PointerMove(Point{X: x, Y: y}) }
func (e *Engine) PointerUp()               { e.controller.PointerUp() }
func (e *Engine) PointerLeave()            { e.controller.PointerLeave() }

// SetBackground changes the background image URL and redraws.
func (e *Engine) SetBackground(url string) {
	e.scene.SetBackground(url)
	e.requestRender()
}

// SetText changes the text of object i and redraws.
func (e *Engine) SetText(i int, text string) bool {
	if !e.scene.SetText(i, text) {
		return false
	}
	e.requestRender()
	return true
}

// SetStyle changes the style of object i and redraws.
func (e *Engine) SetStyle(i int, style Style) bool {
	if !e.scene.SetStyle(i, style) {
		return false
	}
	e.requestRender()
	return true
}

// AddObject appends a default caption and redraws. It returns the new index.
func (e *Engine) AddObject() int {
	i := e.scene.AddObject()
	e.requestRender()
	return i
}

// RemoveObject deletes object i and redraws. Any gesture on an affected
// index is cancelled.
func (e *Engine) RemoveObject(i int) bool {
	if !e.scene.RemoveObject(i) {
		return false
	}
	e.controller.ObjectRemoved(i)
	e.requestRender()
	return true
}

// Select selects object i, or clears the selection when i is negative.
func (e *Engine) Select(i int) {
	if i < 0 {
		e.scene.ClearSelection()
	} else if !e.scene.Select(i) {
		return
	}
	e.requestRender()
}

// Redraw forces a render of the current scene.
func (e *Engine) Redraw() {
	e.requestRender()
}

// --- Queries (frontend ← engine) ---

// Render returns the draw commands for the current scene as JSON. It does
// not touch the surface.
func (e *Engine) Render() string {
	result, _ := DrawCommandsToJSON(CompileDrawCommands(e.scene.Snapshot()))
	return result
}

// HitTest returns the index of the topmost object at (x, y), or -1.
func (e *Engine) HitTest(x, y float64) int {
	if i, ok := e.scene.HitTest(Point{X: x, Y: y}); ok {
		return i
	}
	return -1
}

// GetSelection returns the selected index, or -1.
func (e *Engine) GetSelection() int {
	if i, ok := e.scene.Selected(); ok {
		return i
	}
	return -1
}

// GetSelectionBounds returns the canvas bounds of the selection as JSON.
func (e *Engine) GetSelectionBounds() string {
	b, _ := SelectionBounds(e.scene.Snapshot())
	return BoundsToJSON(b)
}

// GetMode returns the current gesture as JSON: {"mode": name, ...fields}.
func (e *Engine) GetMode() string {
	data, _ := json.Marshal(ModeJSON(e.controller.Mode()))
	return string(data)
}

// ExportFrame clears the selection so the surface holds the bare meme and
// returns a function that puts the selection back. It fails with
// ErrFramePending, selection untouched, when the surface still shows an
// older frame because the background has not loaded.
func (e *Engine) ExportFrame() (restore func(), err error) {
	selected := e.GetSelection()
	restore = func() {
		if selected >= 0 {
			e.Select(selected)
		}
	}
	if selected >= 0 {
		e.Select(-1)
	}
	if !e.renderer.Current(e.scene) {
		restore()
		return nil, ErrFramePending
	}
	return restore, nil
}

// Flatten returns the scene as exported, without selection chrome, and
// its background if it has been decoded.
func (e *Engine) Flatten() (Snapshot, Image) {
	snap := e.scene.Snapshot().WithoutSelection()
	img, _ := e.renderer.Background(snap.Background)
	return snap, img
}

// GetDocument returns the scene in wire form as JSON.
func (e *Engine) GetDocument() string {
	data, err := json.Marshal(DocumentFromScene(e.scene))
	if err != nil {
		return "{}"
	}
	return string(data)
}

// GetScene returns a full snapshot, including selection, as JSON.
func (e *Engine) GetScene() string {
	data, _ := json.Marshal(e.scene.Snapshot())
	return string(data)
}

// ModeJSON flattens a mode into a map for serialization.
func ModeJSON(m Mode) map[string]interface{} {
	out := map[string]interface{}{"mode": m.Name()}
	switch v := m.(type) {
	case Idle:
	case Dragging:
		out["index"] = v.Index
		out["grabOffset"] = v.GrabOffset
	case Resizing:
		out["index"] = v.Index
		out["handle"] = v.Handle
		out["anchor"] = v.Anchor
	case Rotating:
		out["index"] = v.Index
		out["startAngle"] = v.StartAngle
	}
	return out
}

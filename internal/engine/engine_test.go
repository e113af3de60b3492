package engine

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
)

// instantLoader decodes every URL immediately into a small image.
type instantLoader struct{ calls int }

func (l *instantLoader) Load(url string, done func(Image, error)) {
	l.calls++
	done(testImage(), nil)
}

func newTestEngine(t *testing.T) (*Engine, *recordingSurface) {
	t.Helper()
	surface := &recordingSurface{}
	e := NewEngine(surface, &instantLoader{}, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return e, surface
}

func TestEngineLoadDocument(t *testing.T) {
	e, surface := newTestEngine(t)

	err := e.LoadDocument(`{"background":"bg.png","width":300,"height":200,"objects":[{"id":"a","text":"hi","x":150,"y":100}]}`)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if e.Scene().Width() != 300 || e.Scene().Len() != 1 {
		t.Errorf("scene = %vx%v with %d objects", e.Scene().Width(), e.Scene().Height(), e.Scene().Len())
	}
	if len(surface.images) != 1 {
		t.Errorf("load did not redraw: %v", surface.calls)
	}

	if err := e.LoadDocument("{"); err == nil {
		t.Error("LoadDocument accepted malformed JSON")
	}
	if e.Scene().Width() != 300 {
		t.Error("failed load replaced the scene")
	}
}

func TestEngineLoadTemplate(t *testing.T) {
	e, _ := newTestEngine(t)

	if err := e.LoadTemplate("blank", 400, 300); err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if e.Scene().Len() != 1 || e.Scene().Width() != 400 {
		t.Errorf("blank template = %d objects, width %v", e.Scene().Len(), e.Scene().Width())
	}
	if err := e.LoadTemplate("nope", 400, 300); err == nil {
		t.Error("LoadTemplate accepted an unknown name")
	}
}

func TestEnginePointerGesture(t *testing.T) {
	e, surface := newTestEngine(t)
	before := len(surface.calls)

	e.PointerDown(375, 125)
	if e.GetSelection() != 0 {
		t.Fatalf("GetSelection() = %d, want 0", e.GetSelection())
	}

	var mode map[string]interface{}
	if err := json.Unmarshal([]byte(e.GetMode()), &mode); err != nil {
		t.Fatal(err)
	}
	if mode["mode"] != "dragging" || mode["index"] != float64(0) {
		t.Errorf("GetMode() = %v", mode)
	}

	e.PointerMove(400, 150)
	e.PointerUp()
	if got := e.HitTest(400, 150); got != 0 {
		t.Errorf("HitTest at the new position = %d, want 0", got)
	}
	if got := e.HitTest(5, 5); got != -1 {
		t.Errorf("HitTest on empty canvas = %d, want -1", got)
	}
	if len(surface.calls) == before {
		t.Error("gesture did not redraw")
	}
}

func TestEngineRemoveObjectCancelsDrag(t *testing.T) {
	e, _ := newTestEngine(t)
	e.PointerDown(375, 375)

	if !e.RemoveObject(1) {
		t.Fatal("RemoveObject(1) = false")
	}
	if _, ok := e.Controller().Mode().(Idle); !ok {
		t.Errorf("Mode() = %#v, want Idle", e.Controller().Mode())
	}
	if e.RemoveObject(0) {
		t.Error("removed the last object")
	}
}

func TestEngineEdits(t *testing.T) {
	e, _ := newTestEngine(t)

	if !e.SetText(0, "edited") || e.SetText(9, "x") {
		t.Error("SetText range handling")
	}
	if !e.SetStyle(1, Style{Size: 20, Family: "Impact"}) || e.SetStyle(-1, Style{}) {
		t.Error("SetStyle range handling")
	}
	if i := e.AddObject(); i != 2 {
		t.Errorf("AddObject() = %d, want 2", i)
	}

	e.Select(2)
	if e.GetSelection() != 2 {
		t.Errorf("GetSelection() = %d", e.GetSelection())
	}
	e.Select(7)
	if e.GetSelection() != 2 {
		t.Error("out-of-range Select changed the selection")
	}
	e.Select(-1)
	if e.GetSelection() != -1 {
		t.Error("Select(-1) kept a selection")
	}

	var doc struct {
		Objects []struct {
			Text  string `json:"text"`
			Style struct {
				Family string `json:"family"`
			} `json:"style"`
		} `json:"objects"`
	}
	if err := json.Unmarshal([]byte(e.GetDocument()), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Objects) != 3 || doc.Objects[0].Text != "edited" || doc.Objects[1].Style.Family != "Impact" {
		t.Errorf("GetDocument() = %+v", doc)
	}
}

func TestEngineFlatten(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Select(0)

	snap, img := e.Flatten()
	if img == nil {
		t.Error("Flatten() returned no background after a draw")
	}
	if snap.SelectedIndex != -1 {
		t.Errorf("flattened SelectedIndex = %d", snap.SelectedIndex)
	}
	for _, o := range snap.Objects {
		if o.Selected {
			t.Errorf("flattened object %s still selected", o.ID)
		}
	}
	if e.GetSelection() != 0 {
		t.Error("Flatten cleared the live selection")
	}
}

func TestEngineExportFrame(t *testing.T) {
	e, surface := newTestEngine(t)
	e.Select(0)
	drawn := len(surface.calls)

	restore, err := e.ExportFrame()
	if err != nil {
		t.Fatalf("ExportFrame: %v", err)
	}
	if e.GetSelection() != -1 || len(surface.calls) == drawn {
		t.Errorf("selection = %d, redrew = %v; want a fresh frame without selection", e.GetSelection(), len(surface.calls) > drawn)
	}

	restore()
	if e.GetSelection() != 0 {
		t.Errorf("selection after restore = %d, want 0", e.GetSelection())
	}
}

func TestEngineExportFrameWhileLoading(t *testing.T) {
	loader := newManualLoader()
	e := NewEngine(&recordingSurface{}, loader, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	e.Select(1)

	if _, err := e.ExportFrame(); !errors.Is(err, ErrFramePending) {
		t.Fatalf("ExportFrame() error = %v, want ErrFramePending", err)
	}
	if e.GetSelection() != 1 {
		t.Errorf("refused export changed the selection to %d", e.GetSelection())
	}

	loader.finish(DefaultBackgroundURL, testImage(), nil)
	restore, err := e.ExportFrame()
	if err != nil {
		t.Fatalf("ExportFrame after load: %v", err)
	}
	restore()
	if e.GetSelection() != 1 {
		t.Errorf("selection after restore = %d, want 1", e.GetSelection())
	}
}

func TestEngineRenderQuery(t *testing.T) {
	e, surface := newTestEngine(t)
	before := len(surface.calls)

	var commands []DrawCommand
	if err := json.Unmarshal([]byte(e.Render()), &commands); err != nil {
		t.Fatal(err)
	}
	if len(commands) == 0 || commands[0].Op != OpClear {
		t.Errorf("Render() = %v", commands)
	}
	if len(surface.calls) != before {
		t.Error("Render() drew to the surface")
	}
}

//go:build js && wasm

package main

import (
	"encoding/json"
	"log/slog"
	"syscall/js"

	"github.com/inamate/memecanvas/backend-go/internal/document"
	"github.com/inamate/memecanvas/backend-go/internal/engine"
)

const defaultCanvasID = "meme-canvas"

var (
	eng     *engine.Engine
	surface *canvasSurface
)

func main() {
	attach(js.Global().Get("document").Call("getElementById", defaultCanvasID))

	// Create the engine API object
	memeEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	memeEngine.Set("attachCanvas", js.FuncOf(attachCanvas))
	memeEngine.Set("loadDocument", js.FuncOf(loadDocument))
	memeEngine.Set("loadTemplate", js.FuncOf(loadTemplate))
	memeEngine.Set("pointerDown", js.FuncOf(pointerDown))
	memeEngine.Set("pointerMove", js.FuncOf(pointerMove))
	memeEngine.Set("pointerUp", js.FuncOf(pointerUp))
	memeEngine.Set("pointerLeave", js.FuncOf(pointerLeave))
	memeEngine.Set("setBackground", js.FuncOf(setBackground))
	memeEngine.Set("setText", js.FuncOf(setText))
	memeEngine.Set("setStyle", js.FuncOf(setStyle))
	memeEngine.Set("addObject", js.FuncOf(addObject))
	memeEngine.Set("removeObject", js.FuncOf(removeObject))
	memeEngine.Set("select", js.FuncOf(selectObject))
	memeEngine.Set("redraw", js.FuncOf(redraw))
	memeEngine.Set("download", js.FuncOf(download))

	// --- Queries (frontend ← engine) ---
	memeEngine.Set("render", js.FuncOf(render))
	memeEngine.Set("hitTest", js.FuncOf(hitTest))
	memeEngine.Set("getSelection", js.FuncOf(getSelection))
	memeEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	memeEngine.Set("getMode", js.FuncOf(getMode))
	memeEngine.Set("getDocument", js.FuncOf(getDocument))
	memeEngine.Set("getScene", js.FuncOf(getScene))
	memeEngine.Set("toDataURL", js.FuncOf(toDataURL))

	// Register on global scope
	js.Global().Set("memeEngine", memeEngine)

	// Signal that WASM is ready
	js.Global().Set("memeWasmReady", js.ValueOf(true))

	eng.Redraw()

	// Keep Go runtime alive
	select {}
}

// attach builds an engine drawing to canvas, carrying over the current
// document. A missing canvas leaves the engine without a surface; frames
// are then skipped and logged.
func attach(canvas js.Value) {
	var doc *document.MemeDocument
	if eng != nil {
		doc = engine.DocumentFromScene(eng.Scene())
	}

	var s engine.Surface
	surface = nil
	if canvas.Truthy() {
		surface = newCanvasSurface(canvas)
		s = surface
	}

	eng = engine.NewEngine(s, imageLoader{}, engine.WithStatusHandler(notifyStatus))
	if doc != nil {
		eng.Load(doc)
	}
}

// notifyStatus forwards render events to window.memeEngineOnStatus, if set.
func notifyStatus(st engine.Status) {
	cb := js.Global().Get("memeEngineOnStatus")
	if cb.Type() != js.TypeFunction {
		return
	}
	status := map[string]interface{}{
		"kind":       string(st.Kind),
		"url":        st.URL,
		"generation": float64(st.Generation),
	}
	if st.Err != nil {
		status["error"] = st.Err.Error()
	}
	cb.Invoke(js.ValueOf(status))
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func errResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

// --- Command Handlers ---

func attachCanvas(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult("missing canvas")
	}
	canvas := args[0]
	if canvas.Type() == js.TypeString {
		canvas = js.Global().Get("document").Call("getElementById", canvas.String())
	}
	if !canvas.Truthy() {
		return errResult("canvas not found")
	}
	attach(canvas)
	eng.Redraw()
	return okResult()
}

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult("missing document JSON")
	}

	if err := eng.LoadDocument(args[0].String()); err != nil {
		return errResult(err.Error())
	}

	return okResult()
}

func loadTemplate(this js.Value, args []js.Value) interface{} {
	name := document.TemplateDefault
	if len(args) > 0 && args[0].Type() == js.TypeString {
		name = args[0].String()
	}

	width, height := document.DefaultWidth, document.DefaultHeight
	if surface != nil {
		width = surface.canvas.Get("width").Int()
		height = surface.canvas.Get("height").Int()
	}

	if err := eng.LoadTemplate(name, width, height); err != nil {
		return errResult(err.Error())
	}
	return okResult()
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.PointerDown(args[0].Float(), args[1].Float())
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.PointerMove(args[0].Float(), args[1].Float())
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	eng.PointerUp()
	return nil
}

func pointerLeave(this js.Value, args []js.Value) interface{} {
	eng.PointerLeave()
	return nil
}

func setBackground(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetBackground(args[0].String())
	return nil
}

func setText(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.SetText(args[0].Int(), args[1].String()))
}

func setStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	var style engine.Style
	if err := json.Unmarshal([]byte(args[1].String()), &style); err != nil {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.SetStyle(args[0].Int(), style))
}

func addObject(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.AddObject())
}

func removeObject(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.RemoveObject(args[0].Int()))
}

func selectObject(this js.Value, args []js.Value) interface{} {
	i := -1
	if len(args) > 0 && args[0].Type() == js.TypeNumber {
		i = args[0].Int()
	}
	eng.Select(i)
	return nil
}

func redraw(this js.Value, args []js.Value) interface{} {
	eng.Redraw()
	return nil
}

// download saves the canvas as meme.png through a temporary link. Any
// failure is logged and produces no file.
func download(this js.Value, args []js.Value) interface{} {
	if err := saveCanvas(); err != nil {
		slog.Error("export failed", "error", err)
		return errResult(err.Error())
	}
	return okResult()
}

func saveCanvas() (err error) {
	if surface == nil {
		return engine.ErrNoSurface
	}

	// The selection chrome is not part of the meme.
	restore, err := eng.ExportFrame()
	if err != nil {
		return err
	}
	url, err := surface.toDataURL()
	restore()
	if err != nil {
		return err
	}

	defer catchJS(&err)
	doc := js.Global().Get("document")
	link := doc.Call("createElement", "a")
	link.Set("download", document.ExportFilename)
	link.Set("href", url)
	body := doc.Get("body")
	body.Call("appendChild", link)
	defer body.Call("removeChild", link)
	link.Call("click")
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(-1)
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getMode(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetMode())
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func getScene(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetScene())
}

func toDataURL(this js.Value, args []js.Value) interface{} {
	if surface == nil {
		return js.ValueOf("")
	}
	url, err := surface.toDataURL()
	if err != nil {
		slog.Error("read canvas", "error", err)
		return js.ValueOf("")
	}
	return js.ValueOf(url)
}

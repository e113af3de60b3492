//go:build js && wasm

package main

import (
	"errors"
	"fmt"
	"image"
	"syscall/js"

	"github.com/inamate/memecanvas/backend-go/internal/engine"
)

// canvasSurface draws to a CanvasRenderingContext2D.
type canvasSurface struct {
	canvas js.Value
	ctx    js.Value
}

func newCanvasSurface(canvas js.Value) *canvasSurface {
	return &canvasSurface{canvas: canvas, ctx: canvas.Call("getContext", "2d")}
}

func (s *canvasSurface) ClearRect(x, y, w, h float64) { s.ctx.Call("clearRect", x, y, w, h) }

func (s *canvasSurface) DrawImage(img engine.Image, x, y, w, h float64) {
	el, ok := img.(*htmlImage)
	if !ok {
		return
	}
	s.ctx.Call("drawImage", el.value, x, y, w, h)
}

func (s *canvasSurface) Save()    { s.ctx.Call("save") }
func (s *canvasSurface) Restore() { s.ctx.Call("restore") }

func (s *canvasSurface) Transform(m engine.Matrix2D) {
	s.ctx.Call("transform", m[0], m[1], m[2], m[3], m[4], m[5])
}

func (s *canvasSurface) SetFont(style engine.Style)      { s.ctx.Set("font", style.Font()) }
func (s *canvasSurface) SetTextAlign(align string)       { s.ctx.Set("textAlign", align) }
func (s *canvasSurface) SetTextBaseline(baseline string) { s.ctx.Set("textBaseline", baseline) }
func (s *canvasSurface) SetFillColor(color string)       { s.ctx.Set("fillStyle", color) }
func (s *canvasSurface) SetStrokeColor(color string)     { s.ctx.Set("strokeStyle", color) }
func (s *canvasSurface) SetLineWidth(width float64)      { s.ctx.Set("lineWidth", width) }

func (s *canvasSurface) SetLineDash(segments []float64) {
	arr := make([]interface{}, len(segments))
	for i, v := range segments {
		arr[i] = v
	}
	s.ctx.Call("setLineDash", arr)
}

func (s *canvasSurface) FillText(text string, x, y float64)   { s.ctx.Call("fillText", text, x, y) }
func (s *canvasSurface) StrokeText(text string, x, y float64) { s.ctx.Call("strokeText", text, x, y) }
func (s *canvasSurface) FillRect(x, y, w, h float64)          { s.ctx.Call("fillRect", x, y, w, h) }
func (s *canvasSurface) StrokeRect(x, y, w, h float64)        { s.ctx.Call("strokeRect", x, y, w, h) }
func (s *canvasSurface) BeginPath()                           { s.ctx.Call("beginPath") }
func (s *canvasSurface) MoveTo(x, y float64)                  { s.ctx.Call("moveTo", x, y) }
func (s *canvasSurface) LineTo(x, y float64)                  { s.ctx.Call("lineTo", x, y) }
func (s *canvasSurface) Fill()                                { s.ctx.Call("fill") }
func (s *canvasSurface) Stroke()                              { s.ctx.Call("stroke") }

func (s *canvasSurface) Arc(x, y, radius, startAngle, endAngle float64) {
	s.ctx.Call("arc", x, y, radius, startAngle, endAngle)
}

// toDataURL returns the canvas pixels as a PNG data URL. A tainted canvas
// makes the browser throw a SecurityError, which is returned as an error.
func (s *canvasSurface) toDataURL() (url string, err error) {
	defer catchJS(&err)
	return s.canvas.Call("toDataURL", "image/png").String(), nil
}

// catchJS turns a panic raised by a throwing JS call into *err.
func catchJS(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if jsErr, ok := r.(js.Error); ok {
		*err = jsErr
		return
	}
	*err = fmt.Errorf("js call failed: %v", r)
}

// htmlImage is a decoded HTMLImageElement.
type htmlImage struct {
	value         js.Value
	width, height int
}

func (i *htmlImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

// imageLoader loads backgrounds through HTMLImageElement. Callbacks fire on
// the JS event loop, the same thread the engine runs on.
type imageLoader struct{}

func (imageLoader) Load(url string, done func(engine.Image, error)) {
	if url == "" {
		done(nil, errors.New("empty image url"))
		return
	}

	el := js.Global().Get("Image").New()
	el.Set("crossOrigin", "anonymous")

	var onLoad, onError js.Func
	release := func() {
		el.Set("onload", js.Null())
		el.Set("onerror", js.Null())
		onLoad.Release()
		onError.Release()
	}
	onLoad = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		release()
		done(&htmlImage{
			value:  el,
			width:  el.Get("naturalWidth").Int(),
			height: el.Get("naturalHeight").Int(),
		}, nil)
		return nil
	})
	onError = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		release()
		done(nil, fmt.Errorf("load %s", url))
		return nil
	})

	el.Set("onload", onLoad)
	el.Set("onerror", onError)
	el.Set("src", url)
}

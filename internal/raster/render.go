package raster

import (
	"log/slog"
	"math"

	"github.com/gogpu/gg"

	"github.com/inamate/memecanvas/backend-go/internal/engine"
)

// RenderSnapshot draws snap onto a new canvas sized to the scene. A nil
// background leaves the canvas transparent behind the captions.
func RenderSnapshot(snap engine.Snapshot, background engine.Image, opts ...Option) *Canvas {
	w := int(math.Ceil(snap.Width))
	h := int(math.Ceil(snap.Height))
	c := NewCanvas(max(w, 1), max(h, 1), opts...)
	engine.Replay(engine.CompileDrawCommands(snap), c, background)
	return c
}

// BridgeLogger routes gg's internal diagnostics to l.
func BridgeLogger(l *slog.Logger) {
	gg.SetLogger(l)
}

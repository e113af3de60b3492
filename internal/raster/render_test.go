package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/inamate/memecanvas/backend-go/internal/engine"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func smallSnapshot() engine.Snapshot {
	return engine.Snapshot{
		Width:  64,
		Height: 48,
		Objects: []engine.TextObject{
			engine.NewTextObject("a", "hi", engine.Point{X: 50, Y: 40}, engine.Style{Size: 10}),
		},
		SelectedIndex: -1,
	}
}

func pixel(t *testing.T, c *Canvas, x, y int) color.NRGBA {
	t.Helper()
	return color.NRGBAModel.Convert(c.Image().At(x, y)).(color.NRGBA)
}

func TestRenderSnapshotSize(t *testing.T) {
	c := RenderSnapshot(smallSnapshot(), nil)
	defer c.Close()

	if c.Width() != 64 || c.Height() != 48 {
		t.Errorf("canvas = %dx%d, want 64x48", c.Width(), c.Height())
	}
}

func TestRenderSnapshotDrawsBackground(t *testing.T) {
	c := RenderSnapshot(smallSnapshot(), solid(8, 8, color.RGBA{R: 255, A: 255}))
	defer c.Close()

	p := pixel(t, c, 4, 4)
	if p.R < 200 || p.G > 50 || p.B > 50 || p.A < 200 {
		t.Errorf("pixel (4,4) = %+v, want red background", p)
	}
}

func TestRenderSnapshotWithoutBackgroundIsTransparent(t *testing.T) {
	c := RenderSnapshot(smallSnapshot(), nil)
	defer c.Close()

	if p := pixel(t, c, 2, 2); p.A != 0 {
		t.Errorf("pixel (2,2) = %+v, want transparent", p)
	}
}

func TestEncodePNG(t *testing.T) {
	c := RenderSnapshot(smallSnapshot(), nil)
	defer c.Close()

	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("png = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestOutlineOffsets(t *testing.T) {
	for _, r := range []float64{0.5, 1.5, 4} {
		offsets := outlineOffsets(r)
		if len(offsets) < 8 {
			t.Errorf("outlineOffsets(%v) has %d points", r, len(offsets))
		}
		for _, d := range offsets {
			if dist := d[0]*d[0] + d[1]*d[1]; dist < r*r-1e-9 || dist > r*r+1e-9 {
				t.Fatalf("offset %v not on radius %v", d, r)
			}
		}
	}
}

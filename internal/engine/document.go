package engine

import (
	"github.com/inamate/memecanvas/backend-go/internal/document"
)

// SceneFromDocument builds a scene from its wire form. Zero scale factors
// are read as 1 so hand-written documents may omit them. The canvas size is
// resolved by document.ClampSize.
func SceneFromDocument(doc *document.MemeDocument) *Scene {
	w, h := document.ClampSize(doc.Width, doc.Height)
	width, height := float64(w), float64(h)

	objects := make([]TextObject, 0, len(doc.Objects))
	for _, tb := range doc.Objects {
		obj := NewTextObject(tb.ID, tb.Text, Point{X: tb.X, Y: tb.Y}, Style{
			Size:      tb.Style.Size,
			Family:    tb.Style.Family,
			Effect:    tb.Style.Effect,
			Fill:      tb.Style.Fill,
			Stroke:    tb.Style.Stroke,
			LineWidth: tb.Style.LineWidth,
		})
		obj.Rotation = tb.Rotation
		if tb.ScaleX != 0 {
			obj.ScaleX = tb.ScaleX
		}
		if tb.ScaleY != 0 {
			obj.ScaleY = tb.ScaleY
		}
		objects = append(objects, obj)
	}

	return NewScene(width, height, doc.Background, objects...)
}

// DocumentFromScene captures the scene in its wire form.
func DocumentFromScene(s *Scene) *document.MemeDocument {
	doc := &document.MemeDocument{
		Background: s.background,
		Width:      int(s.width),
		Height:     int(s.height),
		Objects:    make([]document.TextBox, 0, len(s.objects)),
	}
	for _, o := range s.objects {
		doc.Objects = append(doc.Objects, document.TextBox{
			ID:       o.ID,
			Text:     o.Text,
			X:        o.Position.X,
			Y:        o.Position.Y,
			Rotation: o.Rotation,
			ScaleX:   o.ScaleX,
			ScaleY:   o.ScaleY,
			Style: document.TextStyle{
				Size:      o.Style.Size,
				Family:    o.Style.Family,
				Effect:    o.Style.Effect,
				Fill:      o.Style.Fill,
				Stroke:    o.Style.Stroke,
				LineWidth: o.Style.LineWidth,
			},
		})
	}
	return doc
}

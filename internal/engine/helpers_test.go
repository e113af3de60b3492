package engine

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

func nearPoint(a, b Point) bool {
	return near(a.X, b.X) && near(a.Y, b.Y)
}

// sceneWith builds a 500x500 scene with no background over the given objects.
func sceneWith(t *testing.T, objects ...TextObject) *Scene {
	t.Helper()
	s := NewScene(500, 500, "", objects...)
	n := 0
	s.newID = func() string {
		n++
		return "added-" + string(rune('a'+n-1))
	}
	return s
}

// caption is an unselected caption at pos whose unscaled box is
// len(text)*size*0.6 by size.
func caption(id, text string, pos Point, size float64) TextObject {
	return NewTextObject(id, text, pos, Style{Size: size})
}

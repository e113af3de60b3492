package engine

import (
	"testing"
)

func TestNewSceneNeverEmpty(t *testing.T) {
	s := NewScene(400, 300, "")
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	o, _ := s.Object(0)
	if o.Text != DefaultText || !nearPoint(o.Position, Point{X: 200, Y: 150}) {
		t.Errorf("default object = %q at %v, want %q at canvas center", o.Text, o.Position, DefaultText)
	}
}

func TestNewSceneClearsSelectedFlags(t *testing.T) {
	a := caption("a", "one", Point{X: 10, Y: 10}, 10)
	a.Selected = true
	s := NewScene(100, 100, "", a)

	if _, ok := s.Selected(); ok {
		t.Error("Selected() reports a selection on a new scene")
	}
	if o, _ := s.Object(0); o.Selected {
		t.Error("object keeps its Selected flag")
	}
}

func TestNewDefaultScene(t *testing.T) {
	s := NewDefaultScene(500, 500)
	want := []struct {
		text string
		pos  Point
	}{
		{"top text", Point{X: 375, Y: 125}},
		{"bottom text", Point{X: 375, Y: 375}},
	}
	if s.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(want))
	}
	for i, w := range want {
		o, _ := s.Object(i)
		if o.Text != w.text || !nearPoint(o.Position, w.pos) {
			t.Errorf("object %d = %q at %v, want %q at %v", i, o.Text, o.Position, w.text, w.pos)
		}
	}
	if s.Background() != DefaultBackgroundURL {
		t.Errorf("Background() = %q", s.Background())
	}
}

func TestHitTestTopmostWins(t *testing.T) {
	s := sceneWith(t,
		caption("bottom", "overlap", Point{X: 100, Y: 100}, 40),
		caption("top", "overlap", Point{X: 110, Y: 100}, 40),
		caption("far", "away", Point{X: 400, Y: 400}, 40),
	)

	tests := []struct {
		name   string
		p      Point
		want   int
		wantOK bool
	}{
		{name: "overlap picks last drawn", p: Point{X: 105, Y: 100}, want: 1, wantOK: true},
		{name: "only bottom", p: Point{X: 20, Y: 100}, want: 0, wantOK: true},
		{name: "separate object", p: Point{X: 400, Y: 400}, want: 2, wantOK: true},
		{name: "empty canvas", p: Point{X: 300, Y: 20}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.HitTest(tt.p)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("HitTest(%v) = %d, %v; want %d, %v", tt.p, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSelectKeepsOneSelected(t *testing.T) {
	s := sceneWith(t,
		caption("a", "one", Point{X: 50, Y: 50}, 20),
		caption("b", "two", Point{X: 150, Y: 150}, 20),
		caption("c", "three", Point{X: 250, Y: 250}, 20),
	)

	steps := []struct {
		name string
		do   func()
		want int // -1 for none
	}{
		{"select 1", func() { s.Select(1) }, 1},
		{"select 2", func() { s.Select(2) }, 2},
		{"out of range is ignored", func() { s.Select(7) }, 2},
		{"negative is ignored", func() { s.Select(-1) }, 2},
		{"clear", func() { s.ClearSelection() }, -1},
		{"select 0", func() { s.Select(0) }, 0},
	}

	for _, step := range steps {
		step.do()
		checkSelection(t, step.name, s, step.want)
	}
}

func checkSelection(t *testing.T, label string, s *Scene, want int) {
	t.Helper()
	got, ok := s.Selected()
	if want < 0 {
		if ok {
			t.Errorf("%s: Selected() = %d, want none", label, got)
		}
	} else if !ok || got != want {
		t.Errorf("%s: Selected() = %d, %v; want %d", label, got, ok, want)
	}

	flagged := 0
	for i, o := range s.Objects() {
		if o.Selected {
			flagged++
			if i != want {
				t.Errorf("%s: object %d flagged, want %d", label, i, want)
			}
		}
	}
	if want >= 0 && flagged != 1 || want < 0 && flagged != 0 {
		t.Errorf("%s: %d objects flagged selected", label, flagged)
	}
}

func TestRemoveObject(t *testing.T) {
	three := func() *Scene {
		return sceneWith(t,
			caption("a", "one", Point{X: 50, Y: 50}, 20),
			caption("b", "two", Point{X: 150, Y: 150}, 20),
			caption("c", "three", Point{X: 250, Y: 250}, 20),
		)
	}

	tests := []struct {
		name          string
		selected      int // -1 for none
		remove        int
		wantOK        bool
		wantLen       int
		wantSelected  int
		wantRemaining []string
	}{
		{name: "remove selected", selected: 1, remove: 1, wantOK: true, wantLen: 2, wantSelected: -1, wantRemaining: []string{"a", "c"}},
		{name: "remove earlier shifts selection", selected: 2, remove: 0, wantOK: true, wantLen: 2, wantSelected: 1, wantRemaining: []string{"b", "c"}},
		{name: "remove later keeps selection", selected: 0, remove: 2, wantOK: true, wantLen: 2, wantSelected: 0, wantRemaining: []string{"a", "b"}},
		{name: "out of range", selected: 0, remove: 3, wantOK: false, wantLen: 3, wantSelected: 0, wantRemaining: []string{"a", "b", "c"}},
		{name: "negative", selected: -1, remove: -1, wantOK: false, wantLen: 3, wantSelected: -1, wantRemaining: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := three()
			if tt.selected >= 0 {
				s.Select(tt.selected)
			}
			if got := s.RemoveObject(tt.remove); got != tt.wantOK {
				t.Fatalf("RemoveObject(%d) = %v, want %v", tt.remove, got, tt.wantOK)
			}
			if s.Len() != tt.wantLen {
				t.Fatalf("Len() = %d, want %d", s.Len(), tt.wantLen)
			}
			for i, id := range tt.wantRemaining {
				if o, _ := s.Object(i); o.ID != id {
					t.Errorf("object %d = %q, want %q", i, o.ID, id)
				}
			}
			checkSelection(t, tt.name, s, tt.wantSelected)
		})
	}
}

func TestRemoveLastObjectIsNoop(t *testing.T) {
	s := sceneWith(t, caption("only", "alone", Point{X: 50, Y: 50}, 20))
	gen := s.Generation()
	if s.RemoveObject(0) {
		t.Error("RemoveObject removed the last object")
	}
	if s.Len() != 1 || s.Generation() != gen {
		t.Errorf("scene changed: len %d, generation %d -> %d", s.Len(), gen, s.Generation())
	}
}

func TestAddObject(t *testing.T) {
	s := sceneWith(t, caption("a", "one", Point{X: 50, Y: 50}, 20))
	s.Select(0)

	i := s.AddObject()
	if i != 1 || s.Len() != 2 {
		t.Fatalf("AddObject() = %d, len %d; want 1, 2", i, s.Len())
	}
	o, _ := s.Object(i)
	if o.Text != DefaultText || o.Selected || !nearPoint(o.Position, Point{X: 250, Y: 250}) {
		t.Errorf("added object = %+v", o)
	}
	if o.ID != "added-a" {
		t.Errorf("added object ID = %q", o.ID)
	}
	checkSelection(t, "after add", s, 0)
}

func TestEditsBumpGeneration(t *testing.T) {
	s := sceneWith(t,
		caption("a", "one", Point{X: 50, Y: 50}, 20),
		caption("b", "two", Point{X: 150, Y: 150}, 20),
	)

	tests := []struct {
		name     string
		do       func() bool
		wantBump bool
	}{
		{"set text", func() bool { return s.SetText(0, "changed") }, true},
		{"set text out of range", func() bool { return s.SetText(5, "x") }, false},
		{"set style", func() bool { return s.SetStyle(1, Style{Size: 30, Fill: "red"}) }, true},
		{"set style out of range", func() bool { return s.SetStyle(-1, Style{}) }, false},
		{"set background", func() bool { s.SetBackground("https://example.com/a.png"); return true }, true},
		{"same background", func() bool { s.SetBackground("https://example.com/a.png"); return true }, false},
		{"select", func() bool { return s.Select(1) }, true},
		{"reselect same", func() bool { return s.Select(1) }, false},
		{"clear selection", func() bool { s.ClearSelection(); return true }, true},
		{"clear again", func() bool { s.ClearSelection(); return true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.Generation()
			tt.do()
			bumped := s.Generation() > before
			if bumped != tt.wantBump {
				t.Errorf("generation %d -> %d, want bump %v", before, s.Generation(), tt.wantBump)
			}
		})
	}
}

func TestSetStyleFillsDefaults(t *testing.T) {
	s := sceneWith(t, caption("a", "one", Point{X: 50, Y: 50}, 20))
	s.SetStyle(0, Style{Size: 30, Fill: "red"})

	o, _ := s.Object(0)
	want := DefaultStyle()
	want.Size, want.Fill, want.Effect = 30, "red", ""
	if o.Style != want {
		t.Errorf("Style = %+v, want %+v", o.Style, want)
	}
	if got := o.Style.Font(); got != "30px Arial" {
		t.Errorf("Font() = %q", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := sceneWith(t, caption("a", "one", Point{X: 50, Y: 50}, 20))
	s.Select(0)
	snap := s.Snapshot()
	snap.Objects[0].Text = "mutated"

	if o, _ := s.Object(0); o.Text != "one" {
		t.Error("mutating a snapshot changed the scene")
	}
	if snap.SelectedIndex != 0 {
		t.Errorf("SelectedIndex = %d, want 0", snap.SelectedIndex)
	}

	clean := snap.WithoutSelection()
	if clean.SelectedIndex != -1 || clean.Objects[0].Selected {
		t.Error("WithoutSelection kept the selection")
	}
	if !snap.Objects[0].Selected {
		t.Error("WithoutSelection changed the original snapshot")
	}
}

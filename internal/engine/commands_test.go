package engine

import (
	"encoding/json"
	"reflect"
	"testing"
)

func ops(commands []DrawCommand) []string {
	out := make([]string, len(commands))
	for i, c := range commands {
		out[i] = c.Op
	}
	return out
}

func TestCompileDrawCommandsOrder(t *testing.T) {
	s := sceneWith(t,
		caption("a", "one", Point{X: 100, Y: 100}, 20),
		caption("b", "two", Point{X: 200, Y: 200}, 20),
	)
	s.SetBackground("bg.png")

	commands := CompileDrawCommands(s.Snapshot())
	want := []string{
		OpClear, OpImage,
		OpSave, OpTransform, OpText, OpRestore,
		OpSave, OpTransform, OpText, OpRestore,
	}
	if got := ops(commands); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	if commands[1].ImageURL != "bg.png" || commands[1].Width != 500 || commands[1].Height != 500 {
		t.Errorf("image command = %+v", commands[1])
	}
	if commands[4].ObjectID != "a" || commands[8].ObjectID != "b" {
		t.Errorf("text commands out of paint order: %q, %q", commands[4].ObjectID, commands[8].ObjectID)
	}
}

func TestCompileDrawCommandsText(t *testing.T) {
	obj := caption("a", "hello", Point{X: 100, Y: 50}, 20)
	obj.Rotation = 0.5
	obj.ScaleX = 2
	s := sceneWith(t, obj)

	commands := CompileDrawCommands(s.Snapshot())
	transform, text := commands[3], commands[4]

	want := FromPlacement(100, 50, 0.5, 2, 1).ToSlice()
	if !reflect.DeepEqual(transform.Transform, want) {
		t.Errorf("transform = %v, want %v", transform.Transform, want)
	}
	if text.Text != "hello" || text.X != 0 || text.Y != 0 {
		t.Errorf("text command = %+v, want hello at the local origin", text)
	}
	if text.Font != "20px Arial" {
		t.Errorf("Font = %q", text.Font)
	}
	if text.Fill != DefaultFill || text.Stroke != DefaultStroke || text.LineWidth != DefaultLineWidth {
		t.Errorf("paint = %q/%q/%v", text.Fill, text.Stroke, text.LineWidth)
	}
}

func TestCompileDrawCommandsIsDeterministic(t *testing.T) {
	s := NewDefaultScene(500, 500)
	s.Select(1)
	snap := s.Snapshot()

	first, err := DrawCommandsToJSON(CompileDrawCommands(snap))
	if err != nil {
		t.Fatal(err)
	}
	second, _ := DrawCommandsToJSON(CompileDrawCommands(snap))
	if first != second {
		t.Error("same snapshot compiled to different buffers")
	}
}

func TestSelectionOverlay(t *testing.T) {
	s := sceneWith(t,
		caption("a", "abcde", Point{X: 250, Y: 250}, 100.0/3),
		caption("b", "other", Point{X: 100, Y: 100}, 20),
	)
	s.Select(0)

	commands := CompileDrawCommands(s.Snapshot())
	want := []string{
		OpClear, OpImage,
		OpSave, OpTransform, OpText, OpRestore,
		OpSave, OpTransform, OpRect, OpRect, OpRect, OpRect, OpRect, OpArc, OpLine, OpRestore,
		OpSave, OpTransform, OpText, OpRestore,
	}
	if got := ops(commands); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}

	frame := commands[7]
	if !reflect.DeepEqual(frame.Transform, FromPlacement(250, 250, 0, 1, 1).ToSlice()) {
		t.Errorf("overlay transform = %v, want the unscaled frame", frame.Transform)
	}

	outline := commands[8]
	if !near(outline.X, -50) || !near(outline.Width, 100) || !near(outline.Height, 100.0/3) {
		t.Errorf("outline = %+v", outline)
	}
	if !reflect.DeepEqual(outline.Dash, []float64{5, 5}) || outline.Stroke != SelectionColor {
		t.Errorf("outline style = %v %q", outline.Dash, outline.Stroke)
	}

	corner := commands[9]
	if !near(corner.X, -50-HandleSize/2) || corner.Width != HandleSize || corner.Fill != SelectionColor {
		t.Errorf("top-left handle = %+v", corner)
	}

	arc := commands[13]
	top := -100.0 / 6
	if !near(arc.X, 0) || !near(arc.Y, top-RotateHandleOffset) || arc.Radius != HandleSize/2 {
		t.Errorf("rotate handle = %+v", arc)
	}

	line := commands[14]
	if !near(line.Y2, top) || !near(line.Y, top-RotateHandleOffset+HandleSize/2) {
		t.Errorf("connector = %+v", line)
	}
}

func TestOverlayIgnoresObjectScale(t *testing.T) {
	obj := caption("a", "abcde", Point{X: 250, Y: 250}, 100.0/3)
	obj.ScaleX, obj.ScaleY = 2, 3
	s := sceneWith(t, obj)
	s.Select(0)

	commands := CompileDrawCommands(s.Snapshot())
	corner := commands[9]
	if corner.Width != HandleSize || corner.Height != HandleSize {
		t.Errorf("handle size = %vx%v, want %v", corner.Width, corner.Height, HandleSize)
	}
	if outline := commands[8]; !near(outline.Width, 200) || !near(outline.Height, 100) {
		t.Errorf("outline = %vx%v, want scaled bounds 200x100", outline.Width, outline.Height)
	}
}

func TestWithoutSelectionDropsOverlay(t *testing.T) {
	s := NewDefaultScene(500, 500)
	s.Select(0)

	snap := s.Snapshot().WithoutSelection()
	for _, c := range CompileDrawCommands(snap) {
		if c.Op == OpArc || c.Op == OpLine || c.Op == OpRect {
			t.Fatalf("unexpected %s in a flattened frame", c.Op)
		}
	}
	if i, ok := s.Selected(); !ok || i != 0 {
		t.Error("WithoutSelection changed the scene")
	}
}

func TestSelectionBounds(t *testing.T) {
	s := sceneWith(t, caption("a", "abcdefghij", Point{X: 200, Y: 200}, 20))
	if _, ok := SelectionBounds(s.Snapshot()); ok {
		t.Error("SelectionBounds with nothing selected reported ok")
	}

	s.Select(0)
	b, ok := SelectionBounds(s.Snapshot())
	if !ok || !near(b.Left, 140) || !near(b.Top, 190) || !near(b.Width(), 120) || !near(b.Height(), 20) {
		t.Errorf("SelectionBounds = %+v, %v", b, ok)
	}

	var decoded map[string]float64
	if err := json.Unmarshal([]byte(BoundsToJSON(b)), &decoded); err != nil {
		t.Fatal(err)
	}
	if !near(decoded["x"], 140) || !near(decoded["width"], 120) {
		t.Errorf("BoundsToJSON = %v", decoded)
	}
}

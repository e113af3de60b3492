package engine

import (
	"encoding/json"
	"math"
)

// Draw operations. The set mirrors the Canvas2D calls the frontend makes.
const (
	OpClear     = "clear"     // clearRect over the whole canvas
	OpImage     = "image"     // drawImage(background, x, y, w, h)
	OpSave      = "save"      // push drawing state
	OpRestore   = "restore"   // pop drawing state
	OpTransform = "transform" // multiply the current transform by Transform
	OpText      = "text"      // strokeText then fillText at (X, Y)
	OpRect      = "rect"      // fillRect and/or strokeRect
	OpArc       = "arc"       // full circle path, filled and/or stroked
	OpLine      = "line"      // single stroked segment
)

// Selection overlay colors.
const (
	SelectionColor     = "#0066ff"
	HandleOutlineColor = "#ffffff"
)

// DrawCommand is a single drawing operation for a surface to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op        string    `json:"op"`
	ObjectID  string    `json:"objectId,omitempty"`  // for hit correlation
	Transform []float64 `json:"transform,omitempty"` // [a, b, c, d, e, f] affine matrix
	X         float64   `json:"x,omitempty"`
	Y         float64   `json:"y,omitempty"`
	X2        float64   `json:"x2,omitempty"` // line end
	Y2        float64   `json:"y2,omitempty"`
	Width     float64   `json:"width,omitempty"`
	Height    float64   `json:"height,omitempty"`
	Radius    float64   `json:"radius,omitempty"`
	Text      string    `json:"text,omitempty"`
	Font      string    `json:"font,omitempty"` // Canvas2D font shorthand
	Style     *Style    `json:"style,omitempty"`
	Fill      string    `json:"fill,omitempty"`
	Stroke    string    `json:"stroke,omitempty"`
	LineWidth float64   `json:"lineWidth,omitempty"`
	Dash      []float64 `json:"dash,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
}

// CompileDrawCommands generates the command buffer for a scene snapshot.
// Commands are in painter's order (back to front) and the output depends
// only on the snapshot.
func CompileDrawCommands(snap Snapshot) []DrawCommand {
	commands := make([]DrawCommand, 0, 2+len(snap.Objects)*4+12)

	commands = append(commands,
		DrawCommand{Op: OpClear, Width: snap.Width, Height: snap.Height},
		DrawCommand{Op: OpImage, ImageURL: snap.Background, Width: snap.Width, Height: snap.Height},
	)

	for i := range snap.Objects {
		obj := &snap.Objects[i]
		commands = compileText(commands, obj)
		if obj.Selected {
			commands = compileSelection(commands, obj)
		}
	}

	return commands
}

// compileText draws the caption centered at its origin: outline first,
// then fill, inside the object's translate/rotate/scale frame.
func compileText(commands []DrawCommand, obj *TextObject) []DrawCommand {
	style := obj.Style
	return append(commands,
		DrawCommand{Op: OpSave},
		DrawCommand{Op: OpTransform, ObjectID: obj.ID, Transform: obj.Matrix().ToSlice()},
		DrawCommand{
			Op:        OpText,
			ObjectID:  obj.ID,
			Text:      obj.Text,
			Font:      style.Font(),
			Style:     &style,
			Fill:      style.Fill,
			Stroke:    style.Stroke,
			LineWidth: style.LineWidth,
		},
		DrawCommand{Op: OpRestore},
	)
}

// compileSelection draws the dashed bounds, four corner squares, the
// rotation circle and its connector in the object's rotated (unscaled)
// frame, so everything turns about the object's center.
func compileSelection(commands []DrawCommand, obj *TextObject) []DrawCommand {
	b := LocalBounds(obj, true)
	half := HandleSize / 2

	commands = append(commands,
		DrawCommand{Op: OpSave},
		DrawCommand{Op: OpTransform, ObjectID: obj.ID, Transform: obj.FrameMatrix().ToSlice()},
		DrawCommand{
			Op:        OpRect,
			ObjectID:  obj.ID,
			X:         b.Left,
			Y:         b.Top,
			Width:     b.Width(),
			Height:    b.Height(),
			Stroke:    SelectionColor,
			LineWidth: 1,
			Dash:      []float64{5, 5},
		},
	)

	spots := handleSpots(b)
	for _, h := range spots[1:] {
		commands = append(commands, DrawCommand{
			Op:        OpRect,
			ObjectID:  obj.ID,
			X:         h.at.X - half,
			Y:         h.at.Y - half,
			Width:     HandleSize,
			Height:    HandleSize,
			Fill:      SelectionColor,
			Stroke:    HandleOutlineColor,
			LineWidth: 2,
		})
	}

	rot := spots[0].at
	return append(commands,
		DrawCommand{
			Op:        OpArc,
			ObjectID:  obj.ID,
			X:         rot.X,
			Y:         rot.Y,
			Radius:    half,
			Fill:      SelectionColor,
			Stroke:    HandleOutlineColor,
			LineWidth: 2,
		},
		DrawCommand{
			Op:        OpLine,
			ObjectID:  obj.ID,
			X:         rot.X,
			Y:         rot.Y + half,
			X2:        rot.X,
			Y2:        b.Top,
			Stroke:    HandleOutlineColor,
			LineWidth: 2,
		},
		DrawCommand{Op: OpRestore},
	)
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// SelectionBounds returns the canvas-space box around the selected object,
// or false when nothing is selected.
func SelectionBounds(snap Snapshot) (Bounds, bool) {
	if snap.SelectedIndex < 0 || snap.SelectedIndex >= len(snap.Objects) {
		return Bounds{}, false
	}
	return snap.Objects[snap.SelectedIndex].CanvasBounds(), true
}

// BoundsToJSON serializes bounds with width and height included.
func BoundsToJSON(b Bounds) string {
	data, _ := json.Marshal(map[string]float64{
		"x":      b.Left,
		"y":      b.Top,
		"width":  b.Width(),
		"height": b.Height(),
	})
	return string(data)
}

// fullCircle is the end angle of a closed arc.
const fullCircle = 2 * math.Pi

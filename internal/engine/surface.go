package engine

import "image"

// Image is a decoded image a surface can draw. image.Image satisfies it;
// the browser build wraps an HTMLImageElement.
type Image interface {
	Bounds() image.Rectangle
}

// Surface is the 2D drawing surface the render pipeline draws to. It follows
// the Canvas2D model: a current transform and style state that Save and
// Restore push and pop, and immediate-mode path, rect and text drawing.
type Surface interface {
	ClearRect(x, y, w, h float64)
	DrawImage(img Image, x, y, w, h float64)

	Save()
	Restore()
	Transform(m Matrix2D)

	SetFont(style Style)
	SetTextAlign(align string)
	SetTextBaseline(baseline string)
	SetFillColor(color string)
	SetStrokeColor(color string)
	SetLineWidth(width float64)
	SetLineDash(segments []float64)

	FillText(text string, x, y float64)
	StrokeText(text string, x, y float64)
	FillRect(x, y, w, h float64)
	StrokeRect(x, y, w, h float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(x, y, radius, startAngle, endAngle float64)
	Fill()
	Stroke()
}

// Replay executes a command buffer against a surface. background is drawn
// for OpImage commands and skipped when nil.
func Replay(commands []DrawCommand, s Surface, background Image) {
	for i := range commands {
		replayCommand(&commands[i], s, background)
	}
}

func replayCommand(cmd *DrawCommand, s Surface, background Image) {
	switch cmd.Op {
	case OpClear:
		s.ClearRect(0, 0, cmd.Width, cmd.Height)

	case OpImage:
		if background != nil {
			s.DrawImage(background, 0, 0, cmd.Width, cmd.Height)
		}

	case OpSave:
		s.Save()

	case OpRestore:
		s.Restore()

	case OpTransform:
		if len(cmd.Transform) != 6 {
			return
		}
		m := Matrix2D(cmd.Transform)
		if !m.IsIdentity() {
			s.Transform(m)
		}

	case OpText:
		if cmd.Style != nil {
			s.SetFont(*cmd.Style)
		}
		s.SetTextAlign("center")
		s.SetTextBaseline("middle")
		s.SetLineDash(nil)
		if cmd.Stroke != "" {
			s.SetStrokeColor(cmd.Stroke)
			s.SetLineWidth(cmd.LineWidth)
			s.StrokeText(cmd.Text, cmd.X, cmd.Y)
		}
		if cmd.Fill != "" {
			s.SetFillColor(cmd.Fill)
			s.FillText(cmd.Text, cmd.X, cmd.Y)
		}

	case OpRect:
		s.SetLineDash(cmd.Dash)
		if cmd.Fill != "" {
			s.SetFillColor(cmd.Fill)
			s.FillRect(cmd.X, cmd.Y, cmd.Width, cmd.Height)
		}
		if cmd.Stroke != "" {
			s.SetStrokeColor(cmd.Stroke)
			s.SetLineWidth(cmd.LineWidth)
			s.StrokeRect(cmd.X, cmd.Y, cmd.Width, cmd.Height)
		}

	case OpArc:
		s.SetLineDash(nil)
		s.BeginPath()
		s.Arc(cmd.X, cmd.Y, cmd.Radius, 0, fullCircle)
		if cmd.Fill != "" {
			s.SetFillColor(cmd.Fill)
			s.Fill()
		}
		if cmd.Stroke != "" {
			s.SetStrokeColor(cmd.Stroke)
			s.SetLineWidth(cmd.LineWidth)
			s.Stroke()
		}

	case OpLine:
		s.SetLineDash(nil)
		s.BeginPath()
		s.MoveTo(cmd.X, cmd.Y)
		s.LineTo(cmd.X2, cmd.Y2)
		s.SetStrokeColor(cmd.Stroke)
		s.SetLineWidth(cmd.LineWidth)
		s.Stroke()
	}
}

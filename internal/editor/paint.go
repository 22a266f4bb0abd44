package editor

import (
	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/render"
	"github.com/inamate/vecedit/internal/tool"
)

const (
	sheetColor   = "#ffffff"
	borderColor  = "#999999"
	gridColor    = "#e6e6e6"
	overlayColor = "#1e90ff"
)

// Paint draws the sheet, its figures and the interaction overlay through
// the view transform.
func (e *Editor) Paint(pen render.Pen) {
	pen.Push()
	defer pen.Pop()
	pen.Multiply(e.view.Current())
	px := e.Fuzziness() / e.opts.Fuzziness // one device pixel in sheet units

	sheet := e.opts.Sheet
	if !sheet.IsEmpty() {
		bg := e.opts.Background
		if bg == "" {
			bg = sheetColor
		}
		pen.DrawRectangle(sheet)
		pen.SetColor(bg)
		pen.FillPreserve()
		pen.SetColor(borderColor)
		pen.SetLineWidth(px)
		pen.Stroke()
		pen.SetClip(sheet)
		if e.opts.ShowGrid {
			e.paintGrid(pen, sheet, px)
		}
	}
	for _, f := range e.model.Figures() {
		f.Paint(pen)
	}
	pen.ResetClip()
	render.Tag(pen, "")

	pen.SetLineWidth(px)
	if e.tool != nil {
		e.tool.PaintOverlay(e, pen)
		return
	}
	e.paintOverlay(pen, px)
}

func (e *Editor) paintGrid(pen render.Pen, sheet geom.Rect, px float64) {
	g := e.opts.GridSize
	if g <= 0 || g/px < 4 {
		return
	}
	pen.Push()
	pen.SetColor(gridColor)
	pen.SetLineWidth(px)
	for x := sheet.X + g; x < sheet.X+sheet.Width; x += g {
		pen.MoveTo(geom.Pt(x, sheet.Y))
		pen.LineTo(geom.Pt(x, sheet.Y+sheet.Height))
	}
	for y := sheet.Y + g; y < sheet.Y+sheet.Height; y += g {
		pen.MoveTo(geom.Pt(sheet.X, y))
		pen.LineTo(geom.Pt(sheet.X+sheet.Width, y))
	}
	pen.Stroke()
	pen.Pop()
}

func (e *Editor) paintOverlay(pen render.Pen, px float64) {
	size := e.Fuzziness()
	g := e.gesture

	for _, f := range e.selectedFigures() {
		tool.PaintMarquee(pen, f.Bounds(), px)
		if e.state == StateEdit && f.ID() == g.figure {
			if p, ok := f.(*figure.Path); ok {
				tool.PaintPathHandles(pen, p, p.Transform(), size)
			}
			continue
		}
		for i := 0; ; i += 3 {
			h, ok := f.Handle(i)
			if !ok {
				break
			}
			tool.PaintHandle(pen, f.Transform().Apply(h), size)
		}
	}

	if e.state == StateSelectRect {
		tool.PaintMarquee(pen, geom.RectFromPoints(g.marqueeStart, g.marqueeEnd), px)
	}

	if e.mode == ModeRotate && g.hasCenter {
		if f, ok := e.model.Get(g.figure); ok && e.state == StateRotate && g.turn != 0 {
			pen.Push()
			pen.SetDash(4*px, 4*px)
			pen.Multiply(geom.About(g.center, geom.Rotate(g.turn)))
			pen.Multiply(f.Transform())
			pen.DrawRectangle(figureBox(f))
			pen.SetColor(overlayColor)
			pen.Stroke()
			pen.Pop()
		}
		pen.SetColor(overlayColor)
		pen.DrawCircle(g.center, 2*size)
		pen.Stroke()
		pen.MoveTo(g.center.Add(geom.Pt(-size, 0)))
		pen.LineTo(g.center.Add(geom.Pt(size, 0)))
		pen.MoveTo(g.center.Add(geom.Pt(0, -size)))
		pen.LineTo(g.center.Add(geom.Pt(0, size)))
		pen.Stroke()
	}
}

// figureBox returns f's bounds in its own frame.
func figureBox(f figure.Figure) geom.Rect {
	if p, ok := f.(*figure.Path); ok {
		return p.LocalBounds()
	}
	if !f.Transform().Invertible() {
		return geom.Rect{}
	}
	return f.Transform().Invert().ApplyRect(f.Bounds())
}

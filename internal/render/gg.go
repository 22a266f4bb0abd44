package render

import (
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/inamate/vecedit/internal/geom"
)

// GG is a Pen that rasterizes through a gg.Context. gg reports failures per
// fill or stroke; GG keeps the first one for Err.
type GG struct {
	ctx *gg.Context
	err error
}

// NewGG allocates a width x height raster cleared to background.
func NewGG(width, height int, background string) *GG {
	ctx := gg.NewContext(width, height)
	if background != "" {
		ctx.ClearWithColor(gg.Hex(background))
	}
	return &GG{ctx: ctx}
}

// Err returns the first rasterization error, if any.
func (g *GG) Err() error { return g.err }

// Image returns the rendered raster.
func (g *GG) Image() image.Image { return g.ctx.Image() }

// EncodePNG writes the raster as PNG.
func (g *GG) EncodePNG(w io.Writer) error { return g.ctx.EncodePNG(w) }

// Close releases the context.
func (g *GG) Close() error { return g.ctx.Close() }

func (g *GG) keep(err error) {
	if err != nil && g.err == nil {
		g.err = err
	}
}

func (g *GG) SetColor(hex string)        { g.ctx.SetHexColor(hex) }
func (g *GG) SetLineWidth(w float64)     { g.ctx.SetLineWidth(w) }
func (g *GG) SetDash(lengths ...float64) { g.ctx.SetDash(lengths...) }

func (g *GG) MoveTo(p geom.Point) { g.ctx.MoveTo(p.X, p.Y) }
func (g *GG) LineTo(p geom.Point) { g.ctx.LineTo(p.X, p.Y) }
func (g *GG) ClosePath()          { g.ctx.ClosePath() }

func (g *GG) CurveTo(c1, c2, p geom.Point) {
	g.ctx.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
}

func (g *GG) DrawCircle(center geom.Point, r float64) { g.ctx.DrawCircle(center.X, center.Y, r) }
func (g *GG) DrawRectangle(r geom.Rect)               { g.ctx.DrawRectangle(r.X, r.Y, r.Width, r.Height) }

func (g *GG) Stroke()       { g.keep(g.ctx.Stroke()) }
func (g *GG) Fill()         { g.keep(g.ctx.Fill()) }
func (g *GG) FillPreserve() { g.keep(g.ctx.FillPreserve()) }

// DrawText draws nothing unless a font face has been loaded into the context.
func (g *GG) DrawText(s string, at geom.Point) { g.ctx.DrawString(s, at.X, at.Y) }

func (g *GG) TextWidth(s string) float64 {
	w, _ := g.ctx.MeasureString(s)
	return w
}

func (g *GG) Push()     { g.ctx.Push() }
func (g *GG) Pop()      { g.ctx.Pop() }
func (g *GG) Identity() { g.ctx.Identity() }

func (g *GG) Multiply(m geom.Matrix) { g.ctx.Transform(toGG(m)) }
func (g *GG) Matrix() geom.Matrix    { return fromGG(g.ctx.GetTransform()) }

func (g *GG) SetClip(r geom.Rect) { g.ctx.ClipRect(r.X, r.Y, r.Width, r.Height) }
func (g *GG) ResetClip()          { g.ctx.ResetClip() }

// gg writes x' = A*x + B*y + C, y' = D*x + E*y + F.
func toGG(m geom.Matrix) gg.Matrix {
	return gg.Matrix{A: m[0], B: m[2], C: m[4], D: m[1], E: m[3], F: m[5]}
}

func fromGG(m gg.Matrix) geom.Matrix {
	return geom.Matrix{m.A, m.D, m.B, m.E, m.C, m.F}
}

package tool

import (
	"errors"

	"github.com/inamate/vecedit/internal/fill"
	"github.com/inamate/vecedit/internal/input"
	"github.com/inamate/vecedit/internal/render"
)

// Fill turns the region enclosed by unfilled paths around the click point
// into a new filled path, placed below everything else.
type Fill struct{}

func (t *Fill) Name() string { return NameFill }

func (t *Fill) HandleMouse(ed Editor, e input.MouseEvent) {
	if e.Type != input.MouseDown {
		return
	}
	log := ed.Logger()
	region, err := fill.Trace(ed.Context(), ed.Model().Figures(), e.Pos, ed.FillOptions())
	switch {
	case errors.Is(err, fill.ErrNoRegion), errors.Is(err, fill.ErrNotEnclosed):
		log.Debug("fill found no region", "x", e.Pos.X, "y", e.Pos.Y, "error", err)
		return
	case err != nil:
		log.Warn("fill aborted", "x", e.Pos.X, "y", e.Pos.Y, "error", err)
		return
	}
	region.SetStyle(ed.Attributes().Style(true))

	ed.Begin()
	ed.Model().Add(region)
	ed.Model().ToBottom(region.ID())
	ed.Commit()
	ed.SetSelection(region.ID())
	log.Debug("fill created region", "figure", region.ID(), "points", region.Len())
}

func (t *Fill) HandleKey(ed Editor, e input.KeyEvent) bool { return false }

func (t *Fill) PaintOverlay(ed Editor, pen render.Pen) {}

func (t *Fill) Stop(ed Editor) {}

func (t *Fill) AttributesChanged(ed Editor) {}

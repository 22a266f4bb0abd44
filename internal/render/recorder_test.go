package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/vecedit/internal/geom"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func TestRecorderStrokeAndFill(t *testing.T) {
	r := NewRecorder()
	r.Tag("fig_1")
	r.SetColor("#ff0000")
	r.MoveTo(geom.Pt(0, 0))
	r.CurveTo(geom.Pt(1, 0), geom.Pt(2, 0), geom.Pt(3, 0))
	r.ClosePath()
	r.FillPreserve()
	r.SetColor("#000000")
	r.SetLineWidth(2)
	r.Stroke()
	r.Stroke() // empty path emits nothing

	path := []PathCommand{{"M", 0.0, 0.0}, {"C", 1.0, 0.0, 2.0, 0.0, 3.0, 0.0}, {"Z"}}
	want := []DrawCommand{
		{Op: "fill", ObjectID: "fig_1", Transform: geom.Identity().ToSlice(), Path: path, Fill: "#ff0000"},
		{Op: "stroke", ObjectID: "fig_1", Transform: geom.Identity().ToSlice(), Path: path, Stroke: "#000000", StrokeWidth: 2},
	}
	diff(t, want, r.Commands())
}

func TestRecorderPushPop(t *testing.T) {
	r := NewRecorder()
	r.Push()
	r.Multiply(geom.Translate(5, 5))
	r.SetDash(2, 2)
	r.DrawRectangle(geom.Rect{Width: 1, Height: 1})
	r.Stroke()
	r.Pop()
	r.DrawCircle(geom.Pt(0, 0), 3)
	r.Stroke()

	cmds := r.Commands()
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	diff(t, geom.Translate(5, 5).ToSlice(), cmds[0].Transform)
	diff(t, []float64{2, 2}, cmds[0].Dash)
	diff(t, geom.Identity().ToSlice(), cmds[1].Transform)
	if cmds[1].Dash != nil {
		t.Errorf("dash leaked past Pop: %v", cmds[1].Dash)
	}
}

func TestRecorderJSON(t *testing.T) {
	r := NewRecorder()
	got, err := r.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if got != "[]" {
		t.Errorf("empty recorder JSON = %q", got)
	}
	r.DrawText("hi", geom.Pt(1, 2))
	if got, _ := r.JSON(); got == "[]" {
		t.Error("text command not serialized")
	}
	if w := r.TextWidth("abcd"); w != 28.8 {
		t.Errorf("TextWidth = %v, want 28.8", w)
	}
}

package engine

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/vecedit/internal/document"
	"github.com/inamate/vecedit/internal/figure"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func sample(t *testing.T) (*Engine, []string) {
	t.Helper()
	e := NewEngine()
	t.Cleanup(e.Close)
	e.LoadSampleDocument()
	return e, e.Model().IDs()
}

func decode(t *testing.T, s string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(s), v); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
}

const marquee = `[
	{"mouse":{"type":"down","pos":{"x":90,"y":90}}},
	{"mouse":{"type":"move","pos":{"x":200,"y":200}}},
	{"mouse":{"type":"move","pos":{"x":310,"y":310}}},
	{"mouse":{"type":"up","pos":{"x":310,"y":310}}}]`

func TestLoadAndGetDocument(t *testing.T) {
	e, ids := sample(t)
	if len(ids) != 3 {
		t.Fatalf("sample has %d figures", len(ids))
	}
	doc, err := document.Parse([]byte(e.GetDocument()))
	if err != nil {
		t.Fatal(err)
	}
	diff(t, document.Sheet{Width: 800, Height: 600, Background: "#ffffff"}, doc.Sheet)
	diff(t, ids[2], doc.Figures[2].ID)
	if e.Status().CanUndo {
		t.Error("loading a document left undo history")
	}
	if err := e.LoadDocument(`{"figures":[{"type":"blob"}]}`); !errors.Is(err, document.ErrUnknownType) {
		t.Errorf("got %v", err)
	}
	diff(t, 3, e.Model().Len())
}

func TestDispatchMarquee(t *testing.T) {
	e, ids := sample(t)
	if err := e.Dispatch(marquee); err != nil {
		t.Fatal(err)
	}
	var sel []string
	decode(t, e.GetSelection(), &sel)
	diff(t, []string{ids[0]}, sel)

	var r struct{ X, Y, Width, Height float64 }
	decode(t, e.GetSelectionBounds(), &r)
	diff(t, 200.0, r.Width)

	if err := e.Dispatch(`{"key":{"key":"Escape","down":true}}`); err != nil {
		t.Fatal(err)
	}
	diff(t, "[]", e.GetSelection())
}

func TestDispatchErrors(t *testing.T) {
	e, _ := sample(t)
	for _, in := range []string{`{}`, `[{"mouse":{"type":"wiggle"}}]`, `nope`, `[1]`} {
		if err := e.Dispatch(in); err == nil {
			t.Errorf("Dispatch(%s) succeeded", in)
		}
	}
}

func TestExecute(t *testing.T) {
	e, ids := sample(t)
	e.SetSelection(ids[:2])

	tests := []struct {
		cmd     string
		changed bool
		figures int
	}{
		{CmdGroup, true, 2},
		{CmdUndo, true, 3},
		{CmdRedo, true, 2},
		{CmdUngroup, false, 2}, // redo leaves nothing selected
		{CmdSelectAll, true, 2},
		{CmdUngroup, true, 4},
		{CmdSelectAll, true, 4},
		{CmdDelete, true, 0},
		{CmdDelete, false, 0},
		{CmdUndo, true, 4},
	}
	for _, tt := range tests {
		changed, err := e.Execute(tt.cmd)
		if err != nil {
			t.Fatalf("%s: %v", tt.cmd, err)
		}
		if changed != tt.changed || e.Model().Len() != tt.figures {
			t.Errorf("%s: changed %v with %d figures, expected %v with %d", tt.cmd, changed, e.Model().Len(), tt.changed, tt.figures)
		}
	}

	if _, err := e.Execute("explode"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("got %v", err)
	}
}

func TestToolModeAndAttributes(t *testing.T) {
	e, ids := sample(t)
	if err := e.SetTool("lasso"); err == nil {
		t.Error("unknown tool accepted")
	}
	if err := e.SetMode("spin"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("got %v", err)
	}
	if err := e.SetMode("rotate"); err != nil {
		t.Fatal(err)
	}
	diff(t, "rotate", string(e.Status().Mode))

	e.SetSelection([]string{ids[0]})
	if err := e.SetAttributes(`{"line":"#ff0000"}`); err != nil {
		t.Fatal(err)
	}
	f, _ := e.Model().Get(ids[0])
	s := f.(*figure.Path).Style()
	if s.LineColor != "#ff0000" || !s.Filled {
		t.Errorf("style not applied: %+v", s)
	}
	if err := e.SetAttributes(`{"lineWidth":-2}`); err == nil {
		t.Error("negative width accepted")
	}

	if err := e.SetTool("pen"); err != nil {
		t.Fatal(err)
	}
	st := e.Status()
	diff(t, "pen", st.Tool)
	diff(t, []string{}, st.Selection)
}

func TestHitTestAndRender(t *testing.T) {
	e, ids := sample(t)
	diff(t, ids[0], e.HitTest(200, 200))
	diff(t, "", e.HitTest(700, 550))

	e.Zoom(2, 0, 0)
	diff(t, ids[0], e.HitTest(400, 400))

	// Groups paint through their members, so only paths carry their own tag.
	out := e.Render()
	for _, id := range ids[:2] {
		if !strings.Contains(out, `"objectId":"`+id+`"`) {
			t.Errorf("render lacks figure %s", id)
		}
	}
}

func TestChangesAndDirty(t *testing.T) {
	e := NewEngine()
	defer e.Close()
	var got []Change
	e.OnChange(func(c Change) { got = append(got, c) })
	if e.Dirty() {
		t.Error("new engine is dirty")
	}

	e.LoadSampleDocument()
	if len(got) == 0 || !e.Dirty() {
		t.Fatal("load produced no change")
	}
	last := got[len(got)-1]
	diff(t, e.Revision(), last.Revision)

	e.MarkSaved(e.Revision())
	if e.Dirty() {
		t.Error("dirty after MarkSaved")
	}
	if _, err := e.Execute(CmdSelectAll); err != nil {
		t.Fatal(err)
	}
	if e.Dirty() {
		t.Error("selection changes marked the model dirty")
	}
	if _, err := e.Execute(CmdDelete); err != nil {
		t.Fatal(err)
	}
	if !e.Dirty() {
		t.Error("delete did not mark the model dirty")
	}
}

package tool

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/fill"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/input"
	"github.com/inamate/vecedit/internal/model"
	"github.com/inamate/vecedit/internal/undo"
)

// fakeEditor drives tools without viewport or grid: sheet and device
// coordinates coincide.
type fakeEditor struct {
	m        *model.Model
	u        *undo.Manager
	sel      []string
	attrs    Attributes
	fuzz     float64
	creating bool
	log      *slog.Logger
}

func newFakeEditor() *fakeEditor {
	return &fakeEditor{m: model.New(), u: undo.New(0), attrs: DefaultAttributes(), fuzz: 3, log: slog.New(slog.DiscardHandler)}
}

func (f *fakeEditor) Model() *model.Model        { return f.m }
func (f *fakeEditor) Selection() []string        { return slices.Clone(f.sel) }
func (f *fakeEditor) IsSelected(id string) bool  { return slices.Contains(f.sel, id) }
func (f *fakeEditor) SetSelection(ids ...string) { f.sel = slices.Clone(ids) }
func (f *fakeEditor) Attributes() Attributes     { return f.attrs }
func (f *fakeEditor) Fuzziness() float64         { return f.fuzz }
func (f *fakeEditor) FillOptions() fill.Options  { return fill.DefaultOptions() }
func (f *fakeEditor) Context() context.Context   { return context.Background() }
func (f *fakeEditor) Logger() *slog.Logger       { return f.log }
func (f *fakeEditor) Begin()                     { f.u.BeginGrouping(f.m) }
func (f *fakeEditor) Commit()                    { _ = f.u.EndGrouping(f.m) }
func (f *fakeEditor) Abort()                     { f.u.Abort() }
func (f *fakeEditor) SetCreating(creating bool)  { f.creating = creating }
func (f *fakeEditor) Invalidate()                {}

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func click(ed Editor, t Tool, x, y float64) {
	t.HandleMouse(ed, input.MouseEvent{Type: input.MouseDown, Pos: geom.Pt(x, y)})
	t.HandleMouse(ed, input.MouseEvent{Type: input.MouseUp, Pos: geom.Pt(x, y)})
}

func drag(ed Editor, t Tool, from, to geom.Point, mods input.Modifiers) {
	t.HandleMouse(ed, input.MouseEvent{Type: input.MouseDown, Pos: from, Mods: mods})
	t.HandleMouse(ed, input.MouseEvent{Type: input.MouseMove, Pos: from.Lerp(to, 0.5), Mods: mods})
	t.HandleMouse(ed, input.MouseEvent{Type: input.MouseMove, Pos: to, Mods: mods})
	t.HandleMouse(ed, input.MouseEvent{Type: input.MouseUp, Pos: to, Mods: mods})
}

func key(ed Editor, t Tool, k input.Key) bool {
	return t.HandleKey(ed, input.KeyEvent{Key: k, Down: true})
}

func rect(x, y, w, h float64) *figure.Path {
	a, b, c, d := geom.Pt(x, y), geom.Pt(x+w, y), geom.Pt(x+w, y+h), geom.Pt(x, y+h)
	p, err := figure.NewPath([]geom.Point{
		a, a.Lerp(b, 1.0/3), a.Lerp(b, 2.0/3),
		b, b.Lerp(c, 1.0/3), b.Lerp(c, 2.0/3),
		c, c.Lerp(d, 1.0/3), c.Lerp(d, 2.0/3),
		d, d.Lerp(a, 1.0/3), d.Lerp(a, 2.0/3), a,
	}, true)
	if err != nil {
		panic(err)
	}
	return p
}

func onlyPath(t *testing.T, m *model.Model) *figure.Path {
	t.Helper()
	if m.Len() != 1 {
		t.Fatalf("model holds %d figures, want 1", m.Len())
	}
	p, ok := m.Figures()[0].(*figure.Path)
	if !ok {
		t.Fatalf("figure is %T, want *figure.Path", m.Figures()[0])
	}
	return p
}

var approx = cmpopts.EquateApprox(0, 1e-6)

func TestSetLookup(t *testing.T) {
	s := NewSet()
	for _, name := range []string{NameSelection, NameDirectSelection, NamePen, NamePencil, NameFill} {
		tl, ok := s.Lookup(name)
		if !ok || tl.Name() != name {
			t.Errorf("Lookup(%q) = %v, %v", name, tl, ok)
		}
	}
	if _, ok := s.Lookup("lasso"); ok {
		t.Error("Lookup found an unknown tool")
	}
}

func TestAttributesStyle(t *testing.T) {
	a := Attributes{LineColor: "#ff0000", LineWidth: 2, Dash: []float64{1, 2}}
	diff(t, figure.Style{LineColor: "#ff0000", LineWidth: 2, Dash: []float64{1, 2}, FillColor: "#ff0000", Filled: true}, a.Style(true))
	diff(t, figure.Style{LineColor: "#ff0000", LineWidth: 2, Dash: []float64{1, 2}}, a.Style(false))
}

// --- Pen ---

func TestPenClosesNearFirstKnot(t *testing.T) {
	ed := newFakeEditor()
	pen := &Pen{}
	click(ed, pen, 0, 0)
	click(ed, pen, 100, 0)
	if !ed.creating {
		t.Error("pen is not reported as creating")
	}
	click(ed, pen, 1, 1)

	p := onlyPath(t, ed.m)
	if p.Len() != 10 || !p.Closed() {
		t.Errorf("got %d points closed=%v, want 10 closed", p.Len(), p.Closed())
	}
	if ed.creating {
		t.Error("pen still creating after closing")
	}
	diff(t, []string{p.ID()}, ed.sel)
	if !ed.u.CanUndo() {
		t.Error("path creation is not undoable")
	}
}

func TestPenDragMakesSymmetricKnot(t *testing.T) {
	ed := newFakeEditor()
	pen := &Pen{}
	click(ed, pen, 0, 0)
	drag(ed, pen, geom.Pt(50, 0), geom.Pt(50, 20), 0)
	click(ed, pen, 100, 0)
	if !key(ed, pen, input.KeyEnter) {
		t.Fatal("Enter not consumed")
	}

	p := onlyPath(t, ed.m)
	if p.Closed() {
		t.Error("Enter closed the path")
	}
	pts := p.Points()
	if len(pts) != 7 {
		t.Fatalf("got %d points, want 7", len(pts))
	}
	diff(t, geom.Pt(50, -20), pts[2], approx)
	diff(t, geom.Pt(50, 20), pts[4], approx)
	if c := p.Continuity(3); c != figure.Symmetric {
		t.Errorf("continuity = %d, want symmetric", c)
	}
}

func TestPenDoubleClickFinishes(t *testing.T) {
	ed := newFakeEditor()
	pen := &Pen{}
	click(ed, pen, 0, 0)
	click(ed, pen, 40, 0)
	pen.HandleMouse(ed, input.MouseEvent{Type: input.MouseDown, Pos: geom.Pt(40, 0), DoubleClick: true})

	p := onlyPath(t, ed.m)
	if p.Len() != 4 || p.Closed() {
		t.Errorf("got %d points closed=%v, want 4 open", p.Len(), p.Closed())
	}
}

func TestPenEscapeDiscards(t *testing.T) {
	ed := newFakeEditor()
	pen := &Pen{}
	click(ed, pen, 0, 0)
	click(ed, pen, 100, 0)
	key(ed, pen, input.KeyEscape)

	if ed.m.Len() != 0 || ed.creating || ed.u.CanUndo() {
		t.Errorf("escape left figures=%d creating=%v undo=%v", ed.m.Len(), ed.creating, ed.u.CanUndo())
	}
	if key(ed, pen, input.KeyEscape) {
		t.Error("escape consumed with nothing in progress")
	}
}

// --- Pencil ---

func TestPencilClosedTrail(t *testing.T) {
	ed := newFakeEditor()
	pencil := &Pencil{}
	pencil.HandleMouse(ed, input.MouseEvent{Type: input.MouseDown, Pos: geom.Pt(150, 100)})
	for i := 1; i <= 64; i++ {
		a := 2 * math.Pi * float64(i) / 64
		pencil.HandleMouse(ed, input.MouseEvent{Type: input.MouseMove, Pos: geom.Pt(100+50*math.Cos(a), 100+50*math.Sin(a))})
	}
	pencil.HandleMouse(ed, input.MouseEvent{Type: input.MouseUp, Pos: geom.Pt(150, 100)})

	p := onlyPath(t, ed.m)
	if !p.Closed() {
		t.Error("trail returning to its start is not closed")
	}
	if p.Len()%3 != 1 || p.Len() >= 64*3 {
		t.Errorf("fitted path has %d points", p.Len())
	}
	b := p.Bounds()
	diff(t, geom.Rect{X: 50, Y: 50, Width: 100, Height: 100}, b, cmpopts.EquateApprox(0, 2))
	if ed.creating {
		t.Error("pencil still creating")
	}
}

func TestPencilSplicesOntoOpenPath(t *testing.T) {
	ed := newFakeEditor()
	ed.m.Add(figure.Line(geom.Pt(0, 0), geom.Pt(100, 0)))
	pencil := &Pencil{}

	pencil.HandleMouse(ed, input.MouseEvent{Type: input.MouseDown, Pos: geom.Pt(101, 1)})
	for x := 110.0; x <= 200; x += 10 {
		pencil.HandleMouse(ed, input.MouseEvent{Type: input.MouseMove, Pos: geom.Pt(x, 1)})
	}
	pencil.HandleMouse(ed, input.MouseEvent{Type: input.MouseUp, Pos: geom.Pt(200, 1)})

	p := onlyPath(t, ed.m)
	pts := p.Points()
	if len(pts) <= 4 {
		t.Fatalf("path was not extended: %d points", len(pts))
	}
	diff(t, geom.Pt(0, 0), pts[0], approx)
	diff(t, geom.Pt(200, 1), pts[len(pts)-1], cmpopts.EquateApprox(0, 1))
	diff(t, geom.Pt(100, 0), pts[3], approx)
	diff(t, []string{p.ID()}, ed.sel)
}

func TestPencilSpliceClosesPath(t *testing.T) {
	ed := newFakeEditor()
	var logs bytes.Buffer
	ed.log = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ed.m.Add(figure.Line(geom.Pt(0, 0), geom.Pt(100, 0)))
	pencil := &Pencil{}

	pencil.HandleMouse(ed, input.MouseEvent{Type: input.MouseDown, Pos: geom.Pt(101, 1)})
	var trail []geom.Point
	for y := 10.0; y <= 50; y += 10 {
		trail = append(trail, geom.Pt(101, y))
	}
	for x := 90.0; x >= 0; x -= 10 {
		trail = append(trail, geom.Pt(x, 50))
	}
	for y := 40.0; y >= 10; y -= 10 {
		trail = append(trail, geom.Pt(1, y))
	}
	trail = append(trail, geom.Pt(1, 1))
	for _, q := range trail {
		pencil.HandleMouse(ed, input.MouseEvent{Type: input.MouseMove, Pos: q})
	}
	pencil.HandleMouse(ed, input.MouseEvent{Type: input.MouseUp, Pos: geom.Pt(1, 1)})

	p := onlyPath(t, ed.m)
	if !p.Closed() {
		t.Error("splice returning to the path start is not closed")
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected warning: %s", logs.String())
	}
	if !ed.u.CanUndo() {
		t.Error("splice not undoable")
	}
}

func TestPencilIgnoresTaps(t *testing.T) {
	ed := newFakeEditor()
	pencil := &Pencil{}
	click(ed, pencil, 5, 5)
	if ed.m.Len() != 0 || ed.u.CanUndo() {
		t.Error("a tap created a figure")
	}
}

// --- Fill ---

func grid(m *model.Model) {
	m.Add(
		figure.Line(geom.Pt(10, 0), geom.Pt(10, 30)),
		figure.Line(geom.Pt(20, 0), geom.Pt(20, 30)),
		figure.Line(geom.Pt(0, 10), geom.Pt(30, 10)),
		figure.Line(geom.Pt(0, 20), geom.Pt(30, 20)),
	)
}

func TestFillInsertsRegionBelow(t *testing.T) {
	ed := newFakeEditor()
	grid(ed.m)
	click(ed, &Fill{}, 15, 15)

	if ed.m.Len() != 5 {
		t.Fatalf("model holds %d figures, want 5", ed.m.Len())
	}
	region, ok := ed.m.Figures()[0].(*figure.Path)
	if !ok || !region.Closed() || !region.Style().Filled {
		t.Fatal("bottom figure is not a closed filled path")
	}
	diff(t, geom.Rect{X: 10, Y: 10, Width: 10, Height: 10}, region.Bounds(), approx)
	diff(t, "#cccccc", region.Style().FillColor)
	diff(t, []string{region.ID()}, ed.sel)
}

func TestFillUnenclosedPointLeavesModel(t *testing.T) {
	ed := newFakeEditor()
	grid(ed.m)
	before := ed.m.Snapshot()
	click(ed, &Fill{}, 5, 15)
	click(ed, &Fill{}, 100, 100)

	if ed.m.Len() != 4 || !before.Equal(ed.m.Snapshot()) {
		t.Error("failed fill changed the model")
	}
	if ed.u.CanUndo() {
		t.Error("failed fill recorded an undo entry")
	}
}

// --- Selection ---

func TestSelectionMarquee(t *testing.T) {
	ed := newFakeEditor()
	a, b := rect(0, 0, 10, 10), rect(20, 20, 10, 10)
	ed.m.Add(a, b)

	drag(ed, &Selection{}, geom.Pt(-5, -5), geom.Pt(15, 15), 0)
	diff(t, []string{a.ID()}, ed.sel)

	drag(ed, &Selection{}, geom.Pt(17, 17), geom.Pt(35, 35), input.ModShift)
	diff(t, []string{a.ID(), b.ID()}, ed.sel)
}

func TestSelectionMove(t *testing.T) {
	ed := newFakeEditor()
	ed.fuzz = 1
	a := rect(0, 0, 10, 10)
	ed.m.Add(a)
	sel := &Selection{}

	click(ed, sel, 0, 2.5)
	diff(t, []string{a.ID()}, ed.sel)
	if ed.u.CanUndo() {
		t.Error("click without drag recorded an undo entry")
	}

	drag(ed, sel, geom.Pt(0, 2.5), geom.Pt(5, 7.5), 0)
	diff(t, geom.Rect{X: 5, Y: 5, Width: 10, Height: 10}, a.Bounds(), approx)
	if !ed.u.Undo() {
		t.Fatal("move not undoable")
	}
	f, _ := ed.m.Get(a.ID())
	diff(t, geom.Rect{Width: 10, Height: 10}, f.Bounds(), approx)
}

func TestSelectionScale(t *testing.T) {
	tests := []struct {
		name string
		from geom.Point
		to   geom.Point
		mods input.Modifiers
		want geom.Rect
	}{
		{"corner", geom.Pt(10, 10), geom.Pt(20, 30), 0, geom.Rect{Width: 20, Height: 30}},
		{"uniform corner", geom.Pt(10, 10), geom.Pt(20, 15), input.ModShift, geom.Rect{Width: 20, Height: 20}},
		{"right edge", geom.Pt(10, 5), geom.Pt(30, 50), 0, geom.Rect{Width: 30, Height: 10}},
		{"top edge", geom.Pt(5, 0), geom.Pt(5, -10), 0, geom.Rect{Y: -10, Width: 10, Height: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := newFakeEditor()
			a := rect(0, 0, 10, 10)
			ed.m.Add(a)
			ed.sel = []string{a.ID()}

			drag(ed, &Selection{}, tt.from, tt.to, tt.mods)
			diff(t, tt.want, a.Bounds(), approx)
			diff(t, []string{a.ID()}, ed.sel)
		})
	}
}

func TestSelectionScaleClickRecordsNothing(t *testing.T) {
	ed := newFakeEditor()
	a := rect(0, 0, 10, 10)
	ed.m.Add(a)
	ed.sel = []string{a.ID()}
	sel := &Selection{}

	sel.HandleMouse(ed, input.MouseEvent{Type: input.MouseDown, Pos: geom.Pt(10, 10)})
	if ed.u.Grouping() {
		t.Error("pressing a scale handle opened an undo grouping")
	}
	sel.HandleMouse(ed, input.MouseEvent{Type: input.MouseUp, Pos: geom.Pt(10, 10)})
	if ed.u.Grouping() || ed.u.CanUndo() {
		t.Error("click on a scale handle recorded an undo entry")
	}
	diff(t, geom.Rect{Width: 10, Height: 10}, a.Bounds(), approx)
}

func TestSelectionEscapeAbortsMove(t *testing.T) {
	ed := newFakeEditor()
	a := rect(0, 0, 10, 10)
	ed.m.Add(a)
	sel := &Selection{}

	sel.HandleMouse(ed, input.MouseEvent{Type: input.MouseDown, Pos: geom.Pt(0, 5)})
	sel.HandleMouse(ed, input.MouseEvent{Type: input.MouseMove, Pos: geom.Pt(40, 40)})
	key(ed, sel, input.KeyEscape)

	f, _ := ed.m.Get(a.ID())
	diff(t, geom.Rect{Width: 10, Height: 10}, f.Bounds(), approx)
	if ed.u.CanUndo() || ed.u.Grouping() {
		t.Error("aborted move left undo state behind")
	}
}

func TestSelectionDelete(t *testing.T) {
	ed := newFakeEditor()
	a, b := rect(0, 0, 10, 10), rect(20, 20, 10, 10)
	ed.m.Add(a, b)
	ed.sel = []string{b.ID()}

	if !key(ed, &Selection{}, input.KeyDelete) {
		t.Fatal("delete not consumed")
	}
	diff(t, []string{a.ID()}, ed.m.IDs())
}

func TestApplyAttributesKeepsFill(t *testing.T) {
	ed := newFakeEditor()
	a := rect(0, 0, 10, 10)
	s := a.Style()
	s.Filled = true
	a.SetStyle(s)
	ed.m.Add(a)
	ed.sel = []string{a.ID()}
	ed.attrs = Attributes{LineColor: "#00ff00", LineWidth: 3, FillColor: "#0000ff"}

	(&Selection{}).AttributesChanged(ed)
	f, _ := ed.m.Get(a.ID())
	diff(t, figure.Style{LineColor: "#00ff00", LineWidth: 3, FillColor: "#0000ff", Filled: true}, f.(*figure.Path).Style())
	if !ed.u.CanUndo() {
		t.Error("restyle not undoable")
	}
}

// --- Direct selection ---

// symmetricLine has a symmetric knot at the origin with tangents at
// (-10,0) and (10,0).
func symmetricLine() *figure.Path {
	p, _ := figure.NewPath([]geom.Point{
		{X: -30}, {X: -20}, {X: -10}, {}, {X: 10}, {X: 20}, {X: 30},
	}, false)
	p.SetContinuity(3, figure.Symmetric)
	return p
}

func TestDirectSelectionSymmetricDrag(t *testing.T) {
	ed := newFakeEditor()
	ed.fuzz = 2
	p := symmetricLine()
	ed.m.Add(p)
	direct := &DirectSelection{}

	click(ed, direct, 25, 0)
	diff(t, []string{p.ID()}, ed.sel)
	drag(ed, direct, geom.Pt(-10, 0), geom.Pt(-5, -5), 0)

	f, _ := ed.m.Get(p.ID())
	pts := f.(*figure.Path).Points()
	diff(t, geom.Pt(-5, -5), pts[2], approx)
	diff(t, geom.Pt(5, 5), pts[4], approx)
	if !ed.u.CanUndo() {
		t.Error("handle drag not undoable")
	}
}

func TestDirectSelectionInsideGroup(t *testing.T) {
	ed := newFakeEditor()
	ed.fuzz = 2
	p := symmetricLine()
	g := figure.NewGroup([]figure.Figure{p})
	g.SetTransform(geom.Translate(100, 100))
	ed.m.Add(g)
	direct := &DirectSelection{}

	click(ed, direct, 125, 100)
	diff(t, []string{g.ID()}, ed.sel)
	drag(ed, direct, geom.Pt(130, 100), geom.Pt(130, 110), 0)

	diff(t, geom.Pt(30, 10), p.Points()[6], approx)
}

func TestDirectSelectionEscapeRestores(t *testing.T) {
	ed := newFakeEditor()
	ed.fuzz = 2
	p := symmetricLine()
	ed.m.Add(p)
	direct := &DirectSelection{}

	click(ed, direct, 25, 0)
	direct.HandleMouse(ed, input.MouseEvent{Type: input.MouseDown, Pos: geom.Pt(-10, 0)})
	direct.HandleMouse(ed, input.MouseEvent{Type: input.MouseMove, Pos: geom.Pt(-5, -5)})
	key(ed, direct, input.KeyEscape)

	f, _ := ed.m.Get(p.ID())
	diff(t, symmetricLine().Points(), f.(*figure.Path).Points())
	if ed.u.CanUndo() || ed.u.Grouping() {
		t.Error("aborted drag left undo state behind")
	}
}

func TestDirectSelectionInsertAndDelete(t *testing.T) {
	ed := newFakeEditor()
	ed.fuzz = 2
	ed.m.Add(figure.Line(geom.Pt(0, 0), geom.Pt(90, 0)))
	direct := &DirectSelection{}

	click(ed, direct, 45, 0)
	direct.HandleMouse(ed, input.MouseEvent{Type: input.MouseDown, Pos: geom.Pt(45, 0), DoubleClick: true})
	direct.HandleMouse(ed, input.MouseEvent{Type: input.MouseUp, Pos: geom.Pt(45, 0)})
	p := onlyPath(t, ed.m)
	if p.Len() != 7 {
		t.Fatalf("after insert got %d points, want 7", p.Len())
	}

	if !key(ed, direct, input.KeyDelete) {
		t.Fatal("delete not consumed")
	}
	if p := onlyPath(t, ed.m); p.Len() != 4 {
		t.Errorf("after delete got %d points, want 4", p.Len())
	}
}

// Package editor implements the canvas editor: it maps device input into
// sheet space, runs the built-in select/move/rotate state machine, keeps the
// selection and dispatches to the active tool.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/fill"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/model"
	"github.com/inamate/vecedit/internal/tool"
	"github.com/inamate/vecedit/internal/undo"
)

// State is the phase of the built-in input state machine.
type State string

const (
	StateNone       State = "none"
	StateCreate     State = "create"
	StateEdit       State = "edit"
	StateMove       State = "move"
	StateMoveHandle State = "moveHandle"
	StateSelectRect State = "selectRect"
	StateRotate     State = "rotate"
	StateMoveRotate State = "moveRotate"
)

// Mode is the operation a plain pointer press performs when no tool is
// installed.
type Mode string

const (
	ModeSelect Mode = "select"
	ModeRotate Mode = "rotate"
)

// Options configures an editor.
type Options struct {
	// Fuzziness is the pick tolerance in device pixels.
	Fuzziness float64
	GridSize  float64
	Snap      bool
	ShowGrid  bool
	Fill      fill.Options
	UndoLimit int
	Logger    *slog.Logger

	Sheet      geom.Rect
	// Background is the sheet color; empty paints white.
	Background string
}

// DefaultOptions returns a 4px pick tolerance, a 10 unit grid without
// snapping and an 800x600 sheet.
func DefaultOptions() Options {
	return Options{
		Fuzziness: 4,
		GridSize:  10,
		Sheet:     geom.Rect{Width: 800, Height: 600},
		Fill:      fill.DefaultOptions(),
		UndoLimit: 100,
	}
}

// Editor is one view onto a model. Several editors may share a model; each
// keeps its own selection and viewport. An editor is not safe for
// concurrent use.
type Editor struct {
	model *model.Model
	sub   *model.Subscription
	undo  *undo.Manager
	tools *tool.Set
	tool  tool.Tool
	attrs tool.Attributes
	opts  Options
	log   *slog.Logger
	ctx   context.Context

	view      *geom.MatrixStack
	selection []string
	state     State
	mode      Mode

	gesture gesture

	selectionListeners  []func([]string)
	toolListeners       []func(string)
	invalidateListeners []func()
}

// gesture is the transient data of the state machine.
type gesture struct {
	last   geom.Point // snapped sheet position of the previous sample
	open   bool       // an undo grouping was begun for this gesture
	origin State      // state to return to when the gesture ends

	figure string
	handle int

	marqueeStart, marqueeEnd geom.Point
	marqueeBase              []string

	center       geom.Point
	hasCenter    bool
	angle0, turn float64

	editKnot int
}

// New returns an editor on m. Tools come from set; nil installs a fresh
// tool.NewSet.
func New(m *model.Model, set *tool.Set, opts Options) *Editor {
	if set == nil {
		set = tool.NewSet()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Fuzziness <= 0 {
		opts.Fuzziness = DefaultOptions().Fuzziness
	}
	if opts.Fill.MaxIterations <= 0 {
		opts.Fill = fill.DefaultOptions()
	}
	e := &Editor{
		model: m,
		undo:  undo.New(opts.UndoLimit),
		tools: set,
		attrs: tool.DefaultAttributes(),
		opts:  opts,
		log:   opts.Logger,
		ctx:   context.Background(),
		view:  geom.NewMatrixStack(geom.Identity()),
		state: StateNone,
		mode:  ModeSelect,
	}
	e.gesture.editKnot = -1
	e.sub = m.Subscribe(e.modelChanged)
	return e
}

// Close detaches the editor from its model.
func (e *Editor) Close() {
	e.StopOperation()
	e.sub.Close()
}

// SetContext sets the context passed to long-running tool operations.
func (e *Editor) SetContext(ctx context.Context) { e.ctx = ctx }

func (e *Editor) Model() *model.Model         { return e.model }
func (e *Editor) Context() context.Context    { return e.ctx }
func (e *Editor) Logger() *slog.Logger        { return e.log }
func (e *Editor) FillOptions() fill.Options   { return e.opts.Fill }
func (e *Editor) Attributes() tool.Attributes { return e.attrs }
func (e *Editor) State() State                { return e.state }
func (e *Editor) Mode() Mode                  { return e.mode }
func (e *Editor) Options() Options            { return e.opts }
func (e *Editor) UndoManager() *undo.Manager  { return e.undo }

// Fuzziness is the pick tolerance converted to sheet units.
func (e *Editor) Fuzziness() float64 {
	s := e.view.Current().ScaleFactor()
	if s == 0 {
		return e.opts.Fuzziness
	}
	return e.opts.Fuzziness / s
}

// --- Notifications ---

// OnSelectionChanged registers fn to be called with the new selection.
func (e *Editor) OnSelectionChanged(fn func(ids []string)) {
	e.selectionListeners = append(e.selectionListeners, fn)
}

// OnToolChanged registers fn to be called with the new tool name ("" for
// the built-in state machine).
func (e *Editor) OnToolChanged(fn func(name string)) {
	e.toolListeners = append(e.toolListeners, fn)
}

// OnInvalidate registers fn to be called whenever the view needs repainting.
func (e *Editor) OnInvalidate(fn func()) {
	e.invalidateListeners = append(e.invalidateListeners, fn)
}

// Invalidate asks listeners to repaint.
func (e *Editor) Invalidate() {
	for _, fn := range e.invalidateListeners {
		fn()
	}
}

// modelChanged prunes the selection and any gesture target the model no
// longer holds. The selection only ever references top-level figures.
func (e *Editor) modelChanged(c model.Change) {
	pruned := slices.DeleteFunc(slices.Clone(e.selection), func(id string) bool {
		return !e.model.Contains(id)
	})
	if len(pruned) != len(e.selection) {
		e.setSelection(pruned)
	}
	if g := e.gesture.figure; g != "" && !e.model.Contains(g) {
		e.log.Debug("gesture target removed", "figure", g, "reason", c.Reason)
		e.gesture.figure = ""
		if e.state != StateNone && e.state != StateCreate {
			e.state = StateNone
		}
	}
	e.Invalidate()
}

// --- Selection ---

// Selection returns the selected figure IDs in selection order.
func (e *Editor) Selection() []string { return slices.Clone(e.selection) }

func (e *Editor) IsSelected(id string) bool { return slices.Contains(e.selection, id) }

// SetSelection replaces the selection. Unknown and duplicate IDs are dropped.
func (e *Editor) SetSelection(ids ...string) {
	var sel []string
	for _, id := range ids {
		if e.model.Contains(id) && !slices.Contains(sel, id) {
			sel = append(sel, id)
		}
	}
	e.setSelection(sel)
}

func (e *Editor) setSelection(sel []string) {
	if slices.Equal(sel, e.selection) {
		return
	}
	e.selection = sel
	for _, fn := range e.selectionListeners {
		fn(slices.Clone(sel))
	}
	e.Invalidate()
}

func (e *Editor) toggle(id string) {
	if e.IsSelected(id) {
		e.setSelection(slices.DeleteFunc(slices.Clone(e.selection), func(s string) bool { return s == id }))
		return
	}
	e.setSelection(append(slices.Clone(e.selection), id))
}

// --- Transactions ---

func (e *Editor) Begin() { e.undo.BeginGrouping(e.model) }

func (e *Editor) Commit() {
	if err := e.undo.EndGrouping(e.model); err != nil {
		e.log.Warn("commit without transaction", "error", err)
	}
}

func (e *Editor) Abort() { e.undo.Abort() }

// Undo reverts the last action. It refuses while a gesture is open.
func (e *Editor) Undo() bool {
	if e.undo.Grouping() {
		return false
	}
	return e.undo.Undo()
}

// Redo reapplies the last undone action.
func (e *Editor) Redo() bool {
	if e.undo.Grouping() {
		return false
	}
	return e.undo.Redo()
}

// --- Tools ---

// SetCreating is called by tools while a figure is under construction.
func (e *Editor) SetCreating(creating bool) {
	switch {
	case creating:
		e.state = StateCreate
	case e.state == StateCreate:
		e.state = StateNone
	}
}

// Tool returns the installed tool, nil for the built-in state machine.
func (e *Editor) Tool() tool.Tool { return e.tool }

// ToolName returns the installed tool's name, "" for none.
func (e *Editor) ToolName() string {
	if e.tool == nil {
		return ""
	}
	return e.tool.Name()
}

// SetTool installs the named tool; "" returns to the built-in state
// machine. The previous tool is stopped.
func (e *Editor) SetTool(name string) error {
	var next tool.Tool
	if name != "" {
		t, ok := e.tools.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown tool %q", name)
		}
		next = t
	}
	if next == e.tool {
		return nil
	}
	e.StopOperation()
	e.tool = next
	e.log.Debug("tool changed", "tool", name)
	for _, fn := range e.toolListeners {
		fn(name)
	}
	e.Invalidate()
	return nil
}

// SetAttributes changes the drawing attributes. The active tool is told;
// without a tool the selected figures are restyled.
func (e *Editor) SetAttributes(a tool.Attributes) {
	e.attrs = a
	if e.tool != nil {
		e.tool.AttributesChanged(e)
		return
	}
	if len(e.selection) > 0 {
		tool.ApplyAttributes(e, e.selection)
	}
}

// SetOperationMode switches between selecting and rotating.
func (e *Editor) SetOperationMode(m Mode) {
	if m == e.mode {
		return
	}
	e.StopOperation()
	e.mode = m
	e.gesture.hasCenter = false
	e.Invalidate()
}

// StopOperation abandons the current gesture, clears the selection and
// stops the active tool. The editor ends in StateNone.
func (e *Editor) StopOperation() {
	if e.tool != nil {
		e.tool.Stop(e)
	}
	if e.undo.Grouping() {
		e.undo.Abort()
	}
	e.state = StateNone
	center, hasCenter := e.gesture.center, e.gesture.hasCenter
	e.gesture = gesture{editKnot: -1, center: center, hasCenter: hasCenter}
	e.setSelection(nil)
	e.Invalidate()
}

var _ tool.Editor = (*Editor)(nil)

// selectedFigures returns the selected figures in paint order.
func (e *Editor) selectedFigures() []figure.Figure {
	var out []figure.Figure
	for _, f := range e.model.Figures() {
		if e.IsSelected(f.ID()) {
			out = append(out, f)
		}
	}
	return out
}

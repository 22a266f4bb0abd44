// Package engine wraps one drawing and its editor behind a string-in,
// string-out API shared by the WASM bridge and the session server.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inamate/vecedit/internal/document"
	"github.com/inamate/vecedit/internal/editor"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/input"
	"github.com/inamate/vecedit/internal/model"
	"github.com/inamate/vecedit/internal/render"
	"github.com/inamate/vecedit/internal/tool"
)

var ErrUnknownMode = errors.New("unknown operation mode")

// Change is a model notification stamped with the engine revision it
// produced.
type Change struct {
	Revision int64 `json:"revision"`
	model.Change
}

// Engine owns the figure model, the editor on it and the sheet settings.
// It processes commands from the frontend and returns query results.
// An Engine is not safe for concurrent use.
type Engine struct {
	model  *model.Model
	editor *editor.Editor
	sheet  document.Sheet
	rec    *render.Recorder
	log    *slog.Logger

	// Revision counts model changes; saved is the revision last persisted.
	revision int64
	saved    int64

	changeListeners []func(Change)
}

// NewEngine creates an engine with default editor options.
func NewEngine() *Engine {
	return New(editor.DefaultOptions())
}

// New creates an engine whose editor uses opts.
func New(opts editor.Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := model.New()
	e := &Engine{
		model:  m,
		editor: editor.New(m, nil, opts),
		sheet: document.Sheet{
			Width:      int(opts.Sheet.Width),
			Height:     int(opts.Sheet.Height),
			Background: opts.Background,
		},
		rec: render.NewRecorder(),
		log: opts.Logger,
	}
	m.Subscribe(e.modelChanged)
	return e
}

// Close stops any gesture and detaches the editor.
func (e *Engine) Close() { e.editor.Close() }

func (e *Engine) Editor() *editor.Editor { return e.editor }
func (e *Engine) Model() *model.Model    { return e.model }
func (e *Engine) Sheet() document.Sheet  { return e.sheet }

// OnChange registers fn to be called after every model change.
func (e *Engine) OnChange(fn func(Change)) {
	e.changeListeners = append(e.changeListeners, fn)
}

func (e *Engine) modelChanged(c model.Change) {
	e.revision++
	ch := Change{Revision: e.revision, Change: c}
	for _, fn := range e.changeListeners {
		fn(ch)
	}
}

// Revision returns the number of model changes so far.
func (e *Engine) Revision() int64 { return e.revision }

// Dirty reports whether the model changed since the last MarkSaved.
func (e *Engine) Dirty() bool { return e.revision != e.saved }

// MarkSaved records that revision rev was persisted.
func (e *Engine) MarkSaved(rev int64) { e.saved = rev }

// --- Commands (frontend → backend) ---

// LoadDocument replaces the drawing with a JSON document. Undo history is
// discarded.
func (e *Engine) LoadDocument(jsonData string) error {
	doc, err := document.Parse([]byte(jsonData))
	if err != nil {
		return err
	}
	return e.Load(doc)
}

// Load replaces the drawing with doc.
func (e *Engine) Load(doc *document.Document) error {
	figs, err := document.Decode(doc)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	e.editor.StopOperation()
	rev := e.revision
	e.model.Replace(figs)
	e.editor.UndoManager().Clear()
	sheetChanged := e.sheet != doc.Sheet
	e.sheet = doc.Sheet
	e.editor.SetSheet(doc.Sheet.Rect(), doc.Sheet.Background)
	if e.revision == rev && sheetChanged {
		// Listeners still need to hear about a sheet-only reload.
		e.modelChanged(model.Change{Reason: model.ReasonModify})
	}
	e.log.Debug("document loaded", "figures", len(figs), "width", doc.Sheet.Width, "height", doc.Sheet.Height)
	return nil
}

// LoadSampleDocument loads the built-in sample drawing.
func (e *Engine) LoadSampleDocument() {
	if err := e.Load(document.NewSampleDocument()); err != nil {
		panic(err)
	}
}

// Dispatch feeds a JSON event, or an array of events, to the editor.
// Events before a malformed one are still applied.
func (e *Engine) Dispatch(jsonData string) error {
	var events []input.Event
	if strings.HasPrefix(strings.TrimSpace(jsonData), "[") {
		if err := json.Unmarshal([]byte(jsonData), &events); err != nil {
			return fmt.Errorf("decode events: %w", err)
		}
	} else {
		var ev input.Event
		if err := json.Unmarshal([]byte(jsonData), &ev); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		events = []input.Event{ev}
	}
	return e.HandleEvents(events...)
}

// HandleEvents feeds decoded events to the editor in order.
func (e *Engine) HandleEvents(events ...input.Event) error {
	for i, ev := range events {
		if err := e.editor.Dispatch(ev); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

// SetTool installs a tool by name; "" returns to the built-in editor.
func (e *Engine) SetTool(name string) error { return e.editor.SetTool(name) }

// SetMode switches the built-in editor between "select" and "rotate".
func (e *Engine) SetMode(mode string) error {
	switch m := editor.Mode(mode); m {
	case editor.ModeSelect, editor.ModeRotate:
		e.editor.SetOperationMode(m)
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownMode, mode)
}

// SetAttributes merges the JSON attributes into the current ones.
func (e *Engine) SetAttributes(jsonData string) error {
	a := e.editor.Attributes()
	if err := json.Unmarshal([]byte(jsonData), &a); err != nil {
		return fmt.Errorf("decode attributes: %w", err)
	}
	if a.LineWidth < 0 {
		return fmt.Errorf("negative line width %g", a.LineWidth)
	}
	e.editor.SetAttributes(a)
	return nil
}

// SetSelection selects the given top-level figures.
func (e *Engine) SetSelection(ids []string) { e.editor.SetSelection(ids...) }

// Undo reverts the last action.
func (e *Engine) Undo() bool { return e.editor.Undo() }

// Redo reapplies the last undone action.
func (e *Engine) Redo() bool { return e.editor.Redo() }

// SetView replaces the sheet-to-device transform.
func (e *Engine) SetView(m [6]float64) { e.editor.SetView(geom.Matrix(m)) }

// Zoom scales the view about the device point (x, y).
func (e *Engine) Zoom(factor, x, y float64) { e.editor.Zoom(factor, geom.Pt(x, y)) }

// Pan shifts the view by a device distance.
func (e *Engine) Pan(dx, dy float64) { e.editor.Pan(dx, dy) }

// SetGrid changes the grid step and snapping.
func (e *Engine) SetGrid(size float64, snap bool) { e.editor.SetGrid(size, snap) }

// --- Queries (frontend ← backend) ---

// Document returns the drawing as a document.
func (e *Engine) Document() *document.Document {
	return document.Encode(e.sheet, e.model.Figures())
}

// GetDocument returns the drawing as JSON.
func (e *Engine) GetDocument() string {
	data, err := e.Document().Marshal()
	if err != nil {
		e.log.Error("encode document", "error", err)
		return "{}"
	}
	return string(data)
}

// Render paints the sheet, figures and overlays and returns the draw
// commands as JSON.
func (e *Engine) Render() string {
	e.rec.Reset()
	e.editor.Paint(e.rec)
	result, err := e.rec.JSON()
	if err != nil {
		e.log.Error("encode draw commands", "error", err)
		return "[]"
	}
	return result
}

// PaintDocument paints the sheet background and figures only, in sheet
// coordinates.
func (e *Engine) PaintDocument(pen render.Pen) {
	if e.sheet.Background != "" {
		pen.DrawRectangle(e.sheet.Rect())
		pen.SetColor(e.sheet.Background)
		pen.Fill()
	}
	for _, f := range e.model.Figures() {
		f.Paint(pen)
	}
}

// HitTest returns the ID of the topmost figure under the device point
// (x, y), or "".
func (e *Engine) HitTest(x, y float64) string {
	f, ok := e.model.FigureAt(e.editor.ToSheet(geom.Pt(x, y)), e.editor.Fuzziness())
	if !ok {
		return ""
	}
	return f.ID()
}

// GetSelection returns the selected IDs as a JSON array.
func (e *Engine) GetSelection() string {
	return toJSON(nonNil(e.editor.Selection()))
}

// GetSelectionBounds returns the sheet bounding box of the selection as
// JSON; an empty selection yields a zero rect.
func (e *Engine) GetSelectionBounds() string {
	var r geom.Rect
	first := true
	for _, id := range e.editor.Selection() {
		f, ok := e.model.Get(id)
		if !ok {
			continue
		}
		if first {
			r, first = f.Bounds(), false
		} else {
			r = r.Union(f.Bounds())
		}
	}
	return toJSON(r)
}

// GetAttributes returns the drawing attributes as JSON.
func (e *Engine) GetAttributes() string { return toJSON(e.editor.Attributes()) }

// Status is a snapshot of the editor for the frontend's toolbar.
type Status struct {
	State     editor.State `json:"state"`
	Mode      editor.Mode  `json:"mode"`
	Tool      string       `json:"tool"`
	Tools     []string     `json:"tools"`
	Selection []string     `json:"selection"`
	CanUndo   bool         `json:"canUndo"`
	CanRedo   bool         `json:"canRedo"`
	Revision  int64        `json:"revision"`
	View      []float64    `json:"view"`
}

// Status reports the editor state.
func (e *Engine) Status() Status {
	u := e.editor.UndoManager()
	return Status{
		State:     e.editor.State(),
		Mode:      e.editor.Mode(),
		Tool:      e.editor.ToolName(),
		Tools:     toolNames(),
		Selection: nonNil(e.editor.Selection()),
		CanUndo:   u.CanUndo(),
		CanRedo:   u.CanRedo(),
		Revision:  e.revision,
		View:      e.editor.View().ToSlice(),
	}
}

// GetStatus returns Status as JSON.
func (e *Engine) GetStatus() string { return toJSON(e.Status()) }

func toolNames() []string {
	return []string{tool.NameSelection, tool.NameDirectSelection, tool.NamePen, tool.NamePencil, tool.NameFill}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

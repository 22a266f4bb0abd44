package render

import (
	"encoding/json"
	"math"
	"slices"
	"unicode/utf8"

	"github.com/inamate/vecedit/internal/geom"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "stroke", "fill", "text", "clip", "resetClip"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "stroke"/"fill" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64     `json:"dash,omitempty"`        // Dash pattern
	Text        string        `json:"text,omitempty"`        // Text for "text" ops
	Rect        *geom.Rect    `json:"rect,omitempty"`        // Clip rect for "clip" ops
	X           float64       `json:"x,omitempty"`
	Y           float64       `json:"y,omitempty"`
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y],
// ["A", cx, cy, r] for a full circle and ["Z"].
type PathCommand []any

type penState struct {
	color     string
	lineWidth float64
	dash      []float64
	matrix    geom.Matrix
}

// Recorder is a Pen that records draw commands instead of rasterizing.
type Recorder struct {
	FontSize float64

	state    penState
	saved    []penState
	path     []PathCommand
	objectID string
	commands []DrawCommand
}

// NewRecorder returns an empty recorder with a black 1px pen.
func NewRecorder() *Recorder {
	return &Recorder{
		FontSize: 12,
		state:    penState{color: "#000000", lineWidth: 1, matrix: geom.Identity()},
	}
}

// Commands returns the recorded commands in painter's order.
func (r *Recorder) Commands() []DrawCommand {
	return r.commands
}

// Reset drops recorded commands and any pending path.
func (r *Recorder) Reset() {
	r.commands = nil
	r.path = nil
	r.objectID = ""
}

// JSON serializes the recorded commands.
func (r *Recorder) JSON() (string, error) {
	if len(r.commands) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(r.commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

func (r *Recorder) Tag(objectID string) { r.objectID = objectID }

func (r *Recorder) SetColor(hex string)        { r.state.color = hex }
func (r *Recorder) SetLineWidth(w float64)     { r.state.lineWidth = w }
func (r *Recorder) SetDash(lengths ...float64) { r.state.dash = slices.Clone(lengths) }

func (r *Recorder) MoveTo(p geom.Point) { r.path = append(r.path, PathCommand{"M", p.X, p.Y}) }
func (r *Recorder) LineTo(p geom.Point) { r.path = append(r.path, PathCommand{"L", p.X, p.Y}) }
func (r *Recorder) ClosePath()          { r.path = append(r.path, PathCommand{"Z"}) }

func (r *Recorder) CurveTo(c1, c2, p geom.Point) {
	r.path = append(r.path, PathCommand{"C", c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y})
}

func (r *Recorder) DrawCircle(center geom.Point, radius float64) {
	r.path = append(r.path,
		PathCommand{"M", center.X + radius, center.Y},
		PathCommand{"A", center.X, center.Y, radius})
}

func (r *Recorder) DrawRectangle(rect geom.Rect) {
	c := rect.Corners()
	r.path = append(r.path,
		PathCommand{"M", c[0].X, c[0].Y},
		PathCommand{"L", c[1].X, c[1].Y},
		PathCommand{"L", c[2].X, c[2].Y},
		PathCommand{"L", c[3].X, c[3].Y},
		PathCommand{"Z"})
}

func (r *Recorder) Stroke() {
	r.emit(DrawCommand{
		Op:          "stroke",
		Stroke:      r.state.color,
		StrokeWidth: r.state.lineWidth,
		Dash:        r.state.dash,
	})
	r.path = nil
}

func (r *Recorder) Fill() {
	r.FillPreserve()
	r.path = nil
}

func (r *Recorder) FillPreserve() {
	r.emit(DrawCommand{Op: "fill", Fill: r.state.color})
}

func (r *Recorder) emit(cmd DrawCommand) {
	if len(r.path) == 0 {
		return
	}
	cmd.ObjectID = r.objectID
	cmd.Transform = r.state.matrix.ToSlice()
	cmd.Path = slices.Clone(r.path)
	r.commands = append(r.commands, cmd)
}

func (r *Recorder) DrawText(s string, at geom.Point) {
	r.commands = append(r.commands, DrawCommand{
		Op:        "text",
		ObjectID:  r.objectID,
		Transform: r.state.matrix.ToSlice(),
		Fill:      r.state.color,
		Text:      s,
		X:         at.X,
		Y:         at.Y,
	})
}

// TextWidth estimates the advance of s with a fixed-pitch approximation.
func (r *Recorder) TextWidth(s string) float64 {
	return math.Round(float64(utf8.RuneCountInString(s))*r.FontSize*0.6*100) / 100
}

func (r *Recorder) Push() {
	saved := r.state
	saved.dash = slices.Clone(r.state.dash)
	r.saved = append(r.saved, saved)
}

func (r *Recorder) Pop() {
	if len(r.saved) == 0 {
		return
	}
	r.state = r.saved[len(r.saved)-1]
	r.saved = r.saved[:len(r.saved)-1]
}

func (r *Recorder) Multiply(m geom.Matrix) { r.state.matrix = r.state.matrix.Multiply(m) }
func (r *Recorder) Identity()              { r.state.matrix = geom.Identity() }
func (r *Recorder) Matrix() geom.Matrix    { return r.state.matrix }

func (r *Recorder) SetClip(rect geom.Rect) {
	r.commands = append(r.commands, DrawCommand{
		Op:        "clip",
		Transform: r.state.matrix.ToSlice(),
		Rect:      &rect,
	})
}

func (r *Recorder) ResetClip() {
	r.commands = append(r.commands, DrawCommand{Op: "resetClip"})
}

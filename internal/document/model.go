// Package document is the JSON form of a drawing: a sheet and its figures
// in paint order.
package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
)

var (
	ErrUnknownType  = errors.New("unknown figure type")
	ErrBadTransform = errors.New("transform must have 6 entries")
	ErrDuplicateID  = errors.New("duplicate figure id")
)

type Document struct {
	Sheet   Sheet        `json:"sheet"`
	Figures []FigureNode `json:"figures"`
}

type Sheet struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
}

// Rect is the sheet area in sheet coordinates.
func (s Sheet) Rect() geom.Rect {
	return geom.Rect{Width: float64(s.Width), Height: float64(s.Height)}
}

type FigureNode struct {
	ID        string           `json:"id"`
	Type      figure.Kind      `json:"type"`
	Transform []float64        `json:"transform"`
	Style     *figure.Style    `json:"style,omitempty"`
	Path      *figure.PathData `json:"path,omitempty"`
	Children  []FigureNode     `json:"children,omitempty"`
}

// Encode converts figures into their document form.
func Encode(sheet Sheet, figs []figure.Figure) *Document {
	doc := &Document{Sheet: sheet, Figures: make([]FigureNode, 0, len(figs))}
	for _, f := range figs {
		doc.Figures = append(doc.Figures, encodeFigure(f))
	}
	return doc
}

func encodeFigure(f figure.Figure) FigureNode {
	n := FigureNode{ID: f.ID(), Type: f.Kind(), Transform: f.Transform().ToSlice()}
	switch f := f.(type) {
	case *figure.Path:
		s := f.Style()
		d := f.Data()
		n.Style = &s
		n.Path = &d
	case *figure.Group:
		for _, c := range f.Children() {
			n.Children = append(n.Children, encodeFigure(c))
		}
	}
	return n
}

// Decode rebuilds the figures of doc. IDs must be unique across the whole
// tree; empty IDs are left for the model to assign.
func Decode(doc *Document) ([]figure.Figure, error) {
	seen := make(map[string]bool)
	figs := make([]figure.Figure, 0, len(doc.Figures))
	for i, n := range doc.Figures {
		f, err := decodeFigure(n, seen)
		if err != nil {
			return nil, fmt.Errorf("figure %d: %w", i, err)
		}
		figs = append(figs, f)
	}
	return figs, nil
}

func decodeFigure(n FigureNode, seen map[string]bool) (figure.Figure, error) {
	if n.ID != "" {
		if seen[n.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
		}
		seen[n.ID] = true
	}

	m := geom.Identity()
	if n.Transform != nil {
		if len(n.Transform) != 6 {
			return nil, fmt.Errorf("%s: %w", n.ID, ErrBadTransform)
		}
		m = geom.MatrixFromSlice(n.Transform)
		if !m.Invertible() {
			return nil, fmt.Errorf("%s: transform is singular", n.ID)
		}
	}

	var f figure.Figure
	switch n.Type {
	case figure.KindPath:
		if n.Path == nil {
			return nil, fmt.Errorf("%s: path figure without geometry", n.ID)
		}
		p, err := figure.PathFromData(*n.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.ID, err)
		}
		if n.Style != nil {
			p.SetStyle(*n.Style)
		}
		f = p
	case figure.KindGroup:
		children := make([]figure.Figure, 0, len(n.Children))
		for _, cn := range n.Children {
			c, err := decodeFigure(cn, seen)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", n.ID, err)
			}
			children = append(children, c)
		}
		f = figure.NewGroup(children)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, n.Type)
	}
	f.SetID(n.ID)
	f.SetTransform(m)
	return f, nil
}

// Parse reads a document and checks that every figure decodes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if doc.Sheet.Width < 0 || doc.Sheet.Height < 0 {
		return nil, fmt.Errorf("parse document: negative sheet size %dx%d", doc.Sheet.Width, doc.Sheet.Height)
	}
	if _, err := Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// Marshal writes doc as JSON.
func (doc *Document) Marshal() ([]byte, error) {
	return json.Marshal(doc)
}

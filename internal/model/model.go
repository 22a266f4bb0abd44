// Package model holds the ordered figure collection of a document and
// notifies listeners synchronously about every change.
package model

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/typeid"
)

// Reason tells listeners what kind of change happened.
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonInsert  Reason = "insert"
	ReasonRemove  Reason = "remove"
	ReasonModify  Reason = "modify"
	ReasonGroup   Reason = "group"
	ReasonUngroup Reason = "ungroup"
)

// Change describes one notification.
type Change struct {
	Reason  Reason   `json:"reason"`
	Figures []string `json:"figures,omitempty"` // affected figures still in the model
	Removed []string `json:"removed,omitempty"` // figures no longer in the model
}

// Model owns an ordered list of figures. Order is paint order: the last
// figure is on top.
type Model struct {
	figures   []figure.Figure
	byID      map[string]figure.Figure
	last      Reason
	listeners []*Subscription
	recording []*Recording
	newID     func() string
}

// New returns an empty model that names figures with typeids.
func New() *Model {
	return &Model{byID: make(map[string]figure.Figure), newID: typeid.NewFigureID}
}

// --- Queries ---

// Figures returns the figures in paint order.
func (m *Model) Figures() []figure.Figure { return slices.Clone(m.figures) }

// Len returns the number of top-level figures.
func (m *Model) Len() int { return len(m.figures) }

// LastReason returns the reason of the most recent change.
func (m *Model) LastReason() Reason { return m.last }

// Get looks a top-level figure up by ID.
func (m *Model) Get(id string) (figure.Figure, bool) {
	f, ok := m.byID[id]
	return f, ok
}

// Contains reports whether id names a top-level figure.
func (m *Model) Contains(id string) bool {
	_, ok := m.byID[id]
	return ok
}

// Index returns the z position of id, or -1.
func (m *Model) Index(id string) int {
	return slices.IndexFunc(m.figures, func(f figure.Figure) bool { return f.ID() == id })
}

// IDs returns the IDs in paint order.
func (m *Model) IDs() []string {
	ids := make([]string, len(m.figures))
	for i, f := range m.figures {
		ids[i] = f.ID()
	}
	return ids
}

// FigureAt returns the topmost figure within tolerance of p.
func (m *Model) FigureAt(p geom.Point, tolerance float64) (figure.Figure, bool) {
	for i := len(m.figures) - 1; i >= 0; i-- {
		if m.figures[i].Distance(p) <= tolerance {
			return m.figures[i], true
		}
	}
	return nil, false
}

// FiguresIn returns, in paint order, the IDs of figures whose bounds lie
// fully inside r.
func (m *Model) FiguresIn(r geom.Rect) []string {
	var ids []string
	for _, f := range m.figures {
		if r.ContainsRect(f.Bounds()) {
			ids = append(ids, f.ID())
		}
	}
	return ids
}

// --- Mutations ---

// Add appends figures on top. Figures without an ID get one, nested
// group members included.
func (m *Model) Add(figs ...figure.Figure) {
	ids := make([]string, 0, len(figs))
	for _, f := range figs {
		figure.Walk(f, geom.Identity(), func(f figure.Figure, _ geom.Matrix) {
			if f.ID() == "" {
				f.SetID(m.newID())
			}
		})
		if m.Contains(f.ID()) {
			panic(fmt.Sprintf("model: figure %s added twice", f.ID()))
		}
		m.figures = append(m.figures, f)
		m.byID[f.ID()] = f
		ids = append(ids, f.ID())
	}
	m.notify(Change{Reason: ReasonInsert, Figures: ids})
}

// Remove deletes figures and returns them in paint order.
func (m *Model) Remove(ids ...string) []figure.Figure {
	set := m.mustSet(ids)
	var removed []figure.Figure
	m.figures = slices.DeleteFunc(m.figures, func(f figure.Figure) bool {
		if set[f.ID()] {
			removed = append(removed, f)
			delete(m.byID, f.ID())
			return true
		}
		return false
	})
	m.notify(Change{Reason: ReasonRemove, Removed: ids})
	return removed
}

// Modified announces that figures were changed in place.
func (m *Model) Modified(ids ...string) {
	m.mustSet(ids)
	m.notify(Change{Reason: ReasonModify, Figures: ids})
}

// Group replaces figures by one group at the z position of the topmost
// member. Members keep their relative order.
func (m *Model) Group(ids ...string) *figure.Group {
	set := m.mustSet(ids)
	top := -1
	var members []figure.Figure
	for i, f := range m.figures {
		if set[f.ID()] {
			members = append(members, f)
			top = i
		}
	}
	g := figure.NewGroup(members)
	g.SetID(m.newID())

	var out []figure.Figure
	for i, f := range m.figures {
		if i == top {
			out = append(out, g)
		}
		if set[f.ID()] {
			delete(m.byID, f.ID())
			continue
		}
		out = append(out, f)
	}
	m.figures = out
	m.byID[g.ID()] = g
	m.notify(Change{Reason: ReasonGroup, Figures: []string{g.ID()}, Removed: ids})
	return g
}

// Ungroup replaces a group by its members, composing the group transform
// into each of them.
func (m *Model) Ungroup(id string) []figure.Figure {
	f, ok := m.byID[id]
	if !ok {
		panic(fmt.Sprintf("model: figure %s not in model", id))
	}
	g, ok := f.(*figure.Group)
	if !ok {
		return nil
	}
	members := g.Children()
	ids := make([]string, len(members))
	for i, c := range members {
		c.SetTransform(g.Transform().Multiply(c.Transform()))
		m.byID[c.ID()] = c
		ids[i] = c.ID()
	}
	i := m.Index(id)
	m.figures = slices.Concat(m.figures[:i], members, m.figures[i+1:])
	delete(m.byID, id)
	m.notify(Change{Reason: ReasonUngroup, Figures: ids, Removed: []string{id}})
	return members
}

// --- Z-order ---

// ToTop moves figures above all others, keeping their relative order.
func (m *Model) ToTop(ids ...string) {
	set := m.mustSet(ids)
	rest, moved := m.partition(set)
	m.figures = append(rest, moved...)
	m.notify(Change{Reason: ReasonModify, Figures: ids})
}

// ToBottom moves figures below all others, keeping their relative order.
func (m *Model) ToBottom(ids ...string) {
	set := m.mustSet(ids)
	rest, moved := m.partition(set)
	m.figures = append(moved, rest...)
	m.notify(Change{Reason: ReasonModify, Figures: ids})
}

// Up moves each figure one step up past the next unselected figure.
func (m *Model) Up(ids ...string) {
	set := m.mustSet(ids)
	for i := len(m.figures) - 2; i >= 0; i-- {
		if set[m.figures[i].ID()] && !set[m.figures[i+1].ID()] {
			m.figures[i], m.figures[i+1] = m.figures[i+1], m.figures[i]
		}
	}
	m.notify(Change{Reason: ReasonModify, Figures: ids})
}

// Down moves each figure one step down past the next unselected figure.
func (m *Model) Down(ids ...string) {
	set := m.mustSet(ids)
	for i := 1; i < len(m.figures); i++ {
		if set[m.figures[i].ID()] && !set[m.figures[i-1].ID()] {
			m.figures[i], m.figures[i-1] = m.figures[i-1], m.figures[i]
		}
	}
	m.notify(Change{Reason: ReasonModify, Figures: ids})
}

func (m *Model) partition(set map[string]bool) (rest, moved []figure.Figure) {
	for _, f := range m.figures {
		if set[f.ID()] {
			moved = append(moved, f)
		} else {
			rest = append(rest, f)
		}
	}
	return rest, moved
}

func (m *Model) mustSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !m.Contains(id) {
			panic(fmt.Sprintf("model: figure %s not in model", id))
		}
		set[id] = true
	}
	return set
}

// --- Snapshots ---

// Snapshot is a deep copy of the model contents.
type Snapshot struct {
	figures []figure.Figure
}

// Snapshot copies the current contents.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{figures: make([]figure.Figure, len(m.figures))}
	for i, f := range m.figures {
		s.figures[i] = f.Clone()
	}
	return s
}

// Equal reports whether two snapshots hold the same figures.
func (s Snapshot) Equal(o Snapshot) bool {
	return reflect.DeepEqual(s.figures, o.figures)
}

// Capture extracts the state of the named figures from the snapshot.
func (s Snapshot) Capture(ids []string) State { return capture(s.figures, ids) }

// State is the saved form of some top-level figures: a copy and z position
// for each one that was present. IDs without an entry were absent.
type State struct {
	ids    []string
	placed map[string]placed
}

type placed struct {
	fig   figure.Figure
	index int
}

// IDs returns the figures the state covers.
func (s State) IDs() []string { return slices.Clone(s.ids) }

// Equal reports whether both states cover the same figures identically.
func (s State) Equal(o State) bool {
	return slices.Equal(s.ids, o.ids) && reflect.DeepEqual(s.placed, o.placed)
}

// Capture copies the named figures out of the model.
func (m *Model) Capture(ids []string) State { return capture(m.figures, ids) }

func capture(figs []figure.Figure, ids []string) State {
	s := State{ids: slices.Clone(ids), placed: make(map[string]placed, len(ids))}
	for _, id := range ids {
		if i := slices.IndexFunc(figs, func(f figure.Figure) bool { return f.ID() == id }); i >= 0 {
			s.placed[id] = placed{fig: figs[i].Clone(), index: i}
		}
	}
	return s
}

// Apply puts the figures covered by s back the way they were captured:
// present ones at their z positions, absent ones removed. Other figures
// are left alone.
func (m *Model) Apply(s State) {
	covered := make(map[string]bool, len(s.ids))
	for _, id := range s.ids {
		covered[id] = true
	}
	m.figures = slices.DeleteFunc(m.figures, func(f figure.Figure) bool {
		if covered[f.ID()] {
			delete(m.byID, f.ID())
			return true
		}
		return false
	})

	order := make([]placed, 0, len(s.placed))
	for _, p := range s.placed {
		order = append(order, p)
	}
	slices.SortFunc(order, func(a, b placed) int { return a.index - b.index })
	present := make([]string, 0, len(order))
	for _, p := range order {
		c := p.fig.Clone()
		m.figures = slices.Insert(m.figures, min(p.index, len(m.figures)), c)
		m.byID[c.ID()] = c
		present = append(present, c.ID())
	}

	var removed []string
	for _, id := range s.ids {
		if _, ok := s.placed[id]; !ok {
			removed = append(removed, id)
		}
	}
	m.notify(Change{Reason: ReasonModify, Figures: present, Removed: removed})
}

// Replace swaps the whole contents, e.g. when a document is loaded.
func (m *Model) Replace(figs []figure.Figure) {
	before := m.IDs()
	m.figures = nil
	m.byID = make(map[string]figure.Figure, len(figs))
	m.Add(figs...)
	var removed []string
	for _, id := range before {
		if !m.Contains(id) {
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		m.notify(Change{Reason: ReasonRemove, Removed: removed})
	}
}

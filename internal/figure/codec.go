package figure

import (
	"errors"
	"fmt"

	"github.com/inamate/vecedit/internal/geom"
)

// KnotData is one knot on the wire: its classifier and its control points,
// [left, knot, right] in the middle and two points at either end.
type KnotData struct {
	Continuity Continuity   `json:"continuity"`
	Points     []geom.Point `json:"points"`
}

// PathData is the serialized geometry of a Path.
type PathData struct {
	Closed bool       `json:"closed"`
	Knots  []KnotData `json:"knots"`
}

var ErrBadKnot = errors.New("malformed knot")

// Data encodes the path geometry knot by knot.
func (p *Path) Data() PathData {
	n := len(p.points)
	d := PathData{Closed: p.closed, Knots: make([]KnotData, 0, len(p.cont))}
	for k, c := range p.cont {
		i := k * 3
		var pts []geom.Point
		switch i {
		case 0:
			pts = []geom.Point{p.points[0], p.points[1]}
		case n - 1:
			pts = []geom.Point{p.points[n-2], p.points[n-1]}
		default:
			pts = []geom.Point{p.points[i-1], p.points[i], p.points[i+1]}
		}
		d.Knots = append(d.Knots, KnotData{Continuity: c, Points: pts})
	}
	return d
}

// PathFromData rebuilds a path knot by knot, validating as it goes.
func PathFromData(d PathData) (*Path, error) {
	if len(d.Knots) < 2 {
		return nil, fmt.Errorf("decode path: %w: got %d knots", ErrTooFewPoints, len(d.Knots))
	}
	p := &Path{style: DefaultStyle(), transform: geom.Identity()}
	last := len(d.Knots) - 1
	for k, kd := range d.Knots {
		if kd.Continuity > Symmetric {
			return nil, fmt.Errorf("decode path: knot %d: %w: continuity %d", k, ErrBadKnot, kd.Continuity)
		}
		want := 3
		if k == 0 || k == last {
			want = 2
		}
		if len(kd.Points) != want {
			return nil, fmt.Errorf("decode path: knot %d: %w: %d points, want %d", k, ErrBadKnot, len(kd.Points), want)
		}
		p.points = append(p.points, kd.Points...)
		p.cont = append(p.cont, kd.Continuity)
	}
	if err := checkCount(len(p.points)); err != nil {
		return nil, fmt.Errorf("decode path: %w", err)
	}
	if d.Closed {
		if err := p.Close(); err != nil {
			return nil, fmt.Errorf("decode path: %w", err)
		}
	}
	return p, nil
}

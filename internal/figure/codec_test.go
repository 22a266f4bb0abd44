package figure

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/inamate/vecedit/internal/geom"
)

func TestPathDataLayout(t *testing.T) {
	p := straight(t)
	p.SetContinuity(3, Symmetric)
	d := p.Data()

	if len(d.Knots) != 3 {
		t.Fatalf("got %d knots", len(d.Knots))
	}
	diff(t, []int{2, 3, 2}, []int{len(d.Knots[0].Points), len(d.Knots[1].Points), len(d.Knots[2].Points)})
	diff(t, Symmetric, d.Knots[1].Continuity)

	back, err := PathFromData(d)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, p.points, back.points)
	diff(t, p.cont, back.cont)
}

func TestPathDataClosed(t *testing.T) {
	raw := `{"closed":true,"knots":[
		{"continuity":3,"points":[{"x":0,"y":0},{"x":5,"y":0}]},
		{"continuity":4,"points":[{"x":10,"y":-5},{"x":10,"y":0},{"x":10,"y":5}]},
		{"continuity":3,"points":[{"x":5,"y":5},{"x":0,"y":0}]}]}`
	var d PathData
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatal(err)
	}
	p, err := PathFromData(d)
	if err != nil {
		t.Fatal(err)
	}
	assertValid(t, p)
	if !p.Closed() {
		t.Error("path not closed")
	}
}

func TestPathDataErrors(t *testing.T) {
	two := []geom.Point{{0, 0}, {1, 0}}
	tests := []struct {
		name string
		d    PathData
		want error
	}{
		{"one knot", PathData{Knots: []KnotData{{Points: two}}}, ErrTooFewPoints},
		{"short middle", PathData{Knots: []KnotData{{Points: two}, {Points: two}, {Points: two}}}, ErrBadKnot},
		{"bad continuity", PathData{Knots: []KnotData{{Continuity: 9, Points: two}, {Points: two}}}, ErrBadKnot},
		{"unclosable", PathData{Closed: true, Knots: []KnotData{{Points: two}, {Points: []geom.Point{{2, 0}, {3, 0}}}}}, ErrNotClosable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PathFromData(tt.d); !errors.Is(err, tt.want) {
				t.Errorf("PathFromData() error = %v, want %v", err, tt.want)
			}
		})
	}
}

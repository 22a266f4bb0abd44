package geom

import (
	"math"
	"testing"
)

func TestMatrixBasic(t *testing.T) {
	const epsilon = 1e-9
	p := Pt(3, 4)

	assertNear(t, Identity().Apply(p), p, epsilon)
	assertNear(t, Scale(2, 2).Apply(p), Pt(6, 8), epsilon)
	assertNear(t, Rotate(math.Pi/2).Apply(p), Pt(-4, 3), epsilon)
	assertNear(t, Translate(5, 6).Apply(p), Pt(8, 10), epsilon)
	assertNear(t, Shear(2, 0).Apply(p), Pt(11, 4), epsilon)
	assertNear(t, Translate(5, 6).ApplyVector(p), p, epsilon)
}

func TestMatrixMultiplyOrder(t *testing.T) {
	const epsilon = 1e-9
	a := Matrix{1, 2, 3, 4, 5, 6}
	b := Matrix{0.1, 1.2, 2.3, 3.4, 4.5, 5.6}

	for _, p := range []Point{{1, 0}, {0, 1}, {1, 1}} {
		assertNear(t, a.Apply(b.Apply(p)), a.Multiply(b).Apply(p), epsilon)
	}
}

func TestMatrixInvert(t *testing.T) {
	const epsilon = 1e-9
	m := Translate(10, -4).Multiply(Rotate(0.3)).Multiply(Scale(2, 3))
	inv := m.Invert()

	for _, p := range []Point{{1, 0}, {0, 1}, {7, -2}} {
		assertNear(t, inv.Apply(m.Apply(p)), p, epsilon)
	}
	if !m.Multiply(inv).IsIdentity() {
		t.Errorf("m * m^-1 = %v, want identity", m.Multiply(inv))
	}
}

func TestMatrixInvertDegenerate(t *testing.T) {
	m := Scale(0, 1)
	if m.Invertible() {
		t.Fatal("zero scale reported invertible")
	}
	diff(t, Identity(), m.Invert())
}

func TestMatrixAbout(t *testing.T) {
	const epsilon = 1e-9
	c := Pt(10, 10)
	m := About(c, Rotate(math.Pi))

	assertNear(t, m.Apply(c), c, epsilon)
	assertNear(t, m.Apply(Pt(20, 10)), Pt(0, 10), epsilon)
}

func TestMatrixSliceRoundTrip(t *testing.T) {
	m := Matrix{1, 2, 3, 4, 5, 6}
	diff(t, m, MatrixFromSlice(m.ToSlice()))
	diff(t, Identity(), MatrixFromSlice([]float64{1, 2}))
}

func TestMatrixStack(t *testing.T) {
	s := NewMatrixStack(Identity())
	s.Push()
	s.Concat(Translate(5, 0))
	s.Push()
	s.Concat(Scale(2, 2))

	assertNear(t, s.Current().Apply(Pt(1, 1)), Pt(7, 2), 1e-9)
	if !s.Pop() {
		t.Fatal("pop failed")
	}
	assertNear(t, s.Current().Apply(Pt(1, 1)), Pt(6, 1), 1e-9)
	s.Pop()
	if !s.Current().IsIdentity() {
		t.Errorf("got %v after popping everything", s.Current())
	}
	if s.Pop() {
		t.Error("pop on empty stack succeeded")
	}
}

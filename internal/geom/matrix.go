package geom

import (
	"math"

	"honnef.co/go/curve"
)

// Matrix represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
//
// Where:
// - a, d = scale
// - b, c = skew/rotation
// - e, f = translation
type Matrix [6]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (angle in radians).
func Rotate(radians float64) Matrix {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Shear returns a shear matrix: x' = x + sx*y, y' = y + sy*x.
func Shear(sx, sy float64) Matrix {
	return Matrix{1, sy, sx, 1, 0, 0}
}

// About conjugates m so that it acts around center instead of the origin.
func About(center Point, m Matrix) Matrix {
	return Translate(center.X, center.Y).Multiply(m).Multiply(Translate(-center.X, -center.Y))
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[2]*other[1],        // a
		m[1]*other[0] + m[3]*other[1],        // b
		m[0]*other[2] + m[2]*other[3],        // c
		m[1]*other[2] + m[3]*other[3],        // d
		m[0]*other[4] + m[2]*other[5] + m[4], // e
		m[1]*other[4] + m[3]*other[5] + m[5], // f
	}
}

// Apply transforms a point.
func (m Matrix) Apply(p Point) Point {
	return Point{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}

// ApplyVector transforms a direction, ignoring translation.
func (m Matrix) ApplyVector(v Point) Point {
	return Point{m[0]*v.X + m[2]*v.Y, m[1]*v.X + m[3]*v.Y}
}

// ApplyRect transforms a rectangle and returns its axis-aligned bounding box.
func (m Matrix) ApplyRect(r Rect) Rect {
	return RectFromPoints(
		m.Apply(Pt(r.X, r.Y)),
		m.Apply(Pt(r.X+r.Width, r.Y)),
		m.Apply(Pt(r.X+r.Width, r.Y+r.Height)),
		m.Apply(Pt(r.X, r.Y+r.Height)),
	)
}

// Determinant returns the determinant of the matrix.
func (m Matrix) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invertible reports whether the matrix has an inverse.
func (m Matrix) Invertible() bool {
	det := m.Determinant()
	return det != 0 && !math.IsNaN(det) && !math.IsInf(det, 0)
}

// Invert returns the inverse of the matrix, or Identity if not invertible.
func (m Matrix) Invert() Matrix {
	if !m.Invertible() {
		return Identity()
	}

	invDet := 1.0 / m.Determinant()
	return Matrix{
		m[3] * invDet,
		-m[1] * invDet,
		-m[2] * invDet,
		m[0] * invDet,
		(m[2]*m[5] - m[3]*m[4]) * invDet,
		(m[1]*m[4] - m[0]*m[5]) * invDet,
	}
}

// ScaleFactor returns the geometric mean of the axis scales, used to convert
// device distances into sheet distances.
func (m Matrix) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.Determinant()))
}

// Affine converts the matrix to the curve package's representation.
func (m Matrix) Affine() curve.Affine {
	return curve.Affine{N0: m[0], N1: m[1], N2: m[2], N3: m[3], N4: m[4], N5: m[5]}
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// MatrixFromSlice is the inverse of ToSlice. Anything other than six
// coefficients yields Identity.
func MatrixFromSlice(s []float64) Matrix {
	if len(s) != 6 {
		return Identity()
	}
	return Matrix{s[0], s[1], s[2], s[3], s[4], s[5]}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(m[0]-1) < eps &&
		math.Abs(m[1]) < eps &&
		math.Abs(m[2]) < eps &&
		math.Abs(m[3]-1) < eps &&
		math.Abs(m[4]) < eps &&
		math.Abs(m[5]) < eps
}

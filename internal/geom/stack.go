package geom

// MatrixStack is a current transform with save/restore, the way a graphics
// state keeps its CTM.
type MatrixStack struct {
	current Matrix
	saved   []Matrix
}

// NewMatrixStack returns a stack whose current matrix is m.
func NewMatrixStack(m Matrix) *MatrixStack {
	return &MatrixStack{current: m}
}

// Current returns the active matrix.
func (s *MatrixStack) Current() Matrix { return s.current }

// Set replaces the active matrix.
func (s *MatrixStack) Set(m Matrix) { s.current = m }

// Concat composes m onto the active matrix; m is applied first.
func (s *MatrixStack) Concat(m Matrix) { s.current = s.current.Multiply(m) }

// Push saves the active matrix.
func (s *MatrixStack) Push() {
	s.saved = append(s.saved, s.current)
}

// Pop restores the most recently pushed matrix. It reports false if the
// stack was empty.
func (s *MatrixStack) Pop() bool {
	if len(s.saved) == 0 {
		return false
	}
	s.current = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
	return true
}

// Depth returns the number of saved matrices.
func (s *MatrixStack) Depth() int { return len(s.saved) }

package gallery

// Spatial hash multipliers. Large odd constants spread neighbouring cells
// across the pool without visible periodicity.
const (
	hashPrimeCol = 73856093
	hashPrimeRow = 19349663
)

// Assign maps a lattice coordinate to a pool index in [0, poolSize).
//
// The mapping is a pure function of its arguments: the same cell always
// shows the same image for a given pool size, including negative
// coordinates. The hash is computed in 32-bit wrapping arithmetic and its
// sign is normalized before the modulo.
//
// Assign returns -1 when poolSize <= 0; callers short-circuit on an empty
// pool instead of calling it.
func Assign(col, row, poolSize int) int {
	if poolSize <= 0 {
		return -1
	}
	h := int32(uint32(col)*hashPrimeCol ^ uint32(row)*hashPrimeRow)
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return int(abs % int64(poolSize))
}

// Wrap reduces a strip index into [0, poolSize) with negative correction.
// Returns -1 when poolSize <= 0.
func Wrap(i, poolSize int) int {
	if poolSize <= 0 {
		return -1
	}
	w := i % poolSize
	if w < 0 {
		w += poolSize
	}
	return w
}

// AssignCell is Assign for a grid coordinate.
func AssignCell(c Coordinate, poolSize int) int {
	return Assign(c.Col, c.Row, poolSize)
}

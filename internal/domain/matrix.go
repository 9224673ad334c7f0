package domain

import "fmt"

// Matrix is a dense, row-major square cost matrix.
type Matrix [][]float64

func NewMatrix(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func (m Matrix) Size() int { return len(m) }

// Clone returns a deep copy so callers can transform matrices without aliasing.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// CheckSquare verifies the matrix is n x n.
func (m Matrix) CheckSquare(n int) error {
	if len(m) != n {
		return fmt.Errorf("matrix has %d rows, want %d", len(m), n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("matrix row %d has %d columns, want %d", i, len(row), n)
		}
	}
	return nil
}

// CostMatrices pairs the distance (metres) and duration (seconds) matrices
// for one ordered list of locations. Degraded is set when the values come
// from the straight-line estimate rather than the routing service.
type CostMatrices struct {
	Distance Matrix
	Duration Matrix
	Degraded bool
}

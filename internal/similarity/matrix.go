// Package similarity provides the dense item-item similarity matrix consumed
// by the ranking engine. Matrices are built offline and loaded as-is; entry
// (i, j) is the similarity of movie i to movie j.
package similarity

import (
	"fmt"
	"slices"

	"cinemind/internal/services"
)

// Matrix is an immutable N×N matrix stored row-major.
type Matrix struct {
	n    int
	data []float64
}

// New builds a matrix from rows. Every row must have exactly len(rows)
// entries. Values are copied.
func New(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, services.Wrap(services.ErrValidation, "similarity", "load",
				fmt.Sprintf("row %d has %d columns, want %d", i, len(row), n), nil)
		}
		data = append(data, row...)
	}
	return &Matrix{n: n, data: data}, nil
}

// NewDense builds an n×n matrix from a row-major slice of length n*n.
func NewDense(n int, data []float64) (*Matrix, error) {
	if n < 0 || len(data) != n*n {
		return nil, services.Wrap(services.ErrValidation, "similarity", "load",
			fmt.Sprintf("dense data has %d entries, want %d", len(data), n*n), nil)
	}
	return &Matrix{n: n, data: slices.Clone(data)}, nil
}

// Size returns N.
func (m *Matrix) Size() int {
	if m == nil {
		return 0
	}
	return m.n
}

// At returns entry (i, j).
func (m *Matrix) At(i, j int) (float64, error) {
	if err := m.check(i); err != nil {
		return 0, err
	}
	if err := m.check(j); err != nil {
		return 0, err
	}
	return m.data[i*m.n+j], nil
}

// Row returns row i. The slice aliases matrix storage and must not be
// modified.
func (m *Matrix) Row(i int) ([]float64, error) {
	if err := m.check(i); err != nil {
		return nil, err
	}
	return m.data[i*m.n : (i+1)*m.n : (i+1)*m.n], nil
}

// IsSymmetric reports whether the matrix is symmetric within tolerance.
// Symmetry is a convention of the offline pipeline and is never enforced.
func (m *Matrix) IsSymmetric(tolerance float64) bool {
	for i := 0; i < m.Size(); i++ {
		for j := i + 1; j < m.n; j++ {
			d := m.data[i*m.n+j] - m.data[j*m.n+i]
			if d > tolerance || d < -tolerance {
				return false
			}
		}
	}
	return true
}

func (m *Matrix) check(i int) error {
	if i < 0 || i >= m.Size() {
		return fmt.Errorf("similarity index %d out of range [0, %d)", i, m.Size())
	}
	return nil
}

// Package yumamath implements the fixed-point vector and matrix algebra behind Yuma
// consensus: conversions to and from the on-chain u16/u64 encodings, total exp and
// sigmoid functions, dense and sparse matrix operations, and the stake-weighted
// median used to reach consensus over validator weights.
//
// Every function is deterministic. Numeric edge cases (zero sums, division by zero,
// overflow) resolve to documented fallback values. Shape mismatches are programmer
// errors and panic with an error wrapping ErrShapeMismatch.
package yumamath

import "github.com/tensorplex-labs/yuma/pkg/fixed"

type (
	Vector        []fixed.I32F32
	Vector64      []fixed.I64F64
	DenseMatrix   [][]fixed.I32F32
	DenseMatrix64 [][]fixed.I64F64
)

// SparseEntry is one explicitly stored cell of a sparse row.
type SparseEntry struct {
	Col   uint16
	Value fixed.I32F32
}

// SparseRow holds the stored cells of a row. Column indices are unique; cells not
// present are zero.
type SparseRow []SparseEntry

type SparseMatrix []SparseRow

// Matrix is implemented by both representations so callers can move between them.
// Sparse operations agree with their dense counterparts applied to Dense(columns).
type Matrix interface {
	NumRows() int
	Dense(columns int) DenseMatrix
	Sparse() SparseMatrix
}

var (
	_ Matrix = DenseMatrix(nil)
	_ Matrix = SparseMatrix(nil)
)

// NewDenseMatrix allocates a zero-filled rows x columns matrix.
func NewDenseMatrix(rows, columns int) DenseMatrix {
	m := make(DenseMatrix, rows)
	for i := range m {
		m[i] = make([]fixed.I32F32, columns)
	}
	return m
}

func (m DenseMatrix) NumRows() int { return len(m) }

// NumCols returns the length of the first row, or 0 for an empty matrix.
func (m DenseMatrix) NumCols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Dense returns a deep copy of m. columns must match the row length.
func (m DenseMatrix) Dense(columns int) DenseMatrix {
	out := make(DenseMatrix, len(m))
	for i, row := range m {
		requireShape(len(row) == columns, "row %d has %d columns, want %d", i, len(row), columns)
		out[i] = append(make([]fixed.I32F32, 0, len(row)), row...)
	}
	return out
}

// Sparse keeps the non-zero cells of m.
func (m DenseMatrix) Sparse() SparseMatrix {
	out := make(SparseMatrix, len(m))
	for i, row := range m {
		out[i] = SparseRow{}
		for j, v := range row {
			if !v.IsZero() {
				out[i] = append(out[i], SparseEntry{Col: uint16(j), Value: v})
			}
		}
	}
	return out
}

func (m SparseMatrix) NumRows() int { return len(m) }

// Dense zero-fills m into a rows x columns matrix.
func (m SparseMatrix) Dense(columns int) DenseMatrix {
	out := NewDenseMatrix(len(m), columns)
	for i, row := range m {
		for _, e := range row {
			out[i][e.Col] = e.Value
		}
	}
	return out
}

// Sparse returns a deep copy of m.
func (m SparseMatrix) Sparse() SparseMatrix {
	out := make(SparseMatrix, len(m))
	for i, row := range m {
		out[i] = append(SparseRow{}, row...)
	}
	return out
}

// maxCol returns one past the largest column index stored in m.
func (m SparseMatrix) maxCol() int {
	n := 0
	for _, row := range m {
		for _, e := range row {
			if int(e.Col)+1 > n {
				n = int(e.Col) + 1
			}
		}
	}
	return n
}

package yumamath

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/yuma/pkg/fixed"
)

// Conversions to and from gonum float64 types. They round and are meant for
// reporting and analysis, never as input to a consensus computation that must be
// reproduced elsewhere.

func VectorFromFloats(xs []float64) Vector {
	out := make(Vector, len(xs))
	for i, x := range xs {
		out[i] = fixed.FromFloat(x)
	}
	return out
}

func (v Vector) Floats() []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x.Float64()
	}
	return out
}

// VecDense returns v as a gonum column vector, or nil when v is empty. Analysis
// only: the values are rounded to float64.
func (v Vector) VecDense() *mat.VecDense {
	if len(v) == 0 {
		return nil
	}
	return mat.NewVecDense(len(v), v.Floats())
}

// DenseFromMat converts any gonum matrix, rounding each cell to the nearest
// fixed-point value. Use it to load reference data, not chain state.
func DenseFromMat(a mat.Matrix) DenseMatrix {
	rows, cols := a.Dims()
	out := NewDenseMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i][j] = fixed.FromFloat(a.At(i, j))
		}
	}
	return out
}

// Mat returns m as a gonum matrix, or nil when m has no cells. Analysis only.
func (m DenseMatrix) Mat() *mat.Dense {
	rows, cols := len(m), requireRect("mat", m)
	if rows == 0 || cols == 0 {
		return nil
	}
	out := mat.NewDense(rows, cols, nil)
	for i, row := range m {
		for j, x := range row {
			out.Set(i, j, x.Float64())
		}
	}
	return out
}

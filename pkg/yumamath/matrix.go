package yumamath

import (
	"slices"

	"github.com/tensorplex-labs/yuma/pkg/fixed"
)

// Dense operations accept any rectangular matrix. An empty matrix produces an empty
// result and a matrix with zero columns produces rows of zero length.

func requireRect(op string, m DenseMatrix) int {
	cols := m.NumCols()
	for i, row := range m {
		requireShape(len(row) == cols, "%s: row %d has %d columns, want %d", op, i, len(row), cols)
	}
	return cols
}

func requireSameShape(op string, a, b DenseMatrix) {
	requireSameLen(op, len(a), len(b))
	for i := range a {
		requireShape(len(a[i]) == len(b[i]), "%s: row %d lengths %d and %d", op, i, len(a[i]), len(b[i]))
	}
}

// InplaceRowNormalize scales every row with a positive sum to sum to 1.
func InplaceRowNormalize(m DenseMatrix) {
	for _, row := range m {
		sum := Sum(row)
		if !sum.IsPositive() {
			continue
		}
		for j, x := range row {
			row[j] = x.SaturatingDiv(sum)
		}
	}
}

func InplaceRowNormalize64(m DenseMatrix64) {
	for _, row := range m {
		sum := Sum64(row)
		if !sum.IsPositive() {
			continue
		}
		for j, x := range row {
			row[j] = x.SaturatingDiv(sum)
		}
	}
}

// RowSum returns the sum of each row. A matrix without columns has no row sums.
func RowSum(m DenseMatrix) Vector {
	if len(m) > 0 && len(m[0]) == 0 {
		return Vector{}
	}
	out := make(Vector, len(m))
	for i, row := range m {
		out[i] = Sum(row)
	}
	return out
}

// ColSum returns the sum of each column.
func ColSum(m DenseMatrix) Vector {
	out := make(Vector, requireRect("col_sum", m))
	for _, row := range m {
		for j, x := range row {
			out[j] = out[j].SaturatingAdd(x)
		}
	}
	return out
}

// InplaceColNormalize scales every column with a non-zero sum to sum to 1.
func InplaceColNormalize(m DenseMatrix) {
	sums := ColSum(m)
	for _, row := range m {
		for j, x := range row {
			if !sums[j].IsZero() {
				row[j] = x.SaturatingDiv(sums[j])
			}
		}
	}
}

func colMax(op string, m DenseMatrix) Vector {
	out := make(Vector, requireRect(op, m))
	for _, row := range m {
		for j, x := range row {
			out[j] = fixed.Max32Of(out[j], x)
		}
	}
	return out
}

// InplaceColMaxUpscale divides every column by its maximum so the maximum becomes 1.
// Columns whose maximum is zero are left untouched.
func InplaceColMaxUpscale(m DenseMatrix) {
	maxes := colMax("col_max_upscale", m)
	for _, row := range m {
		for j, x := range row {
			if !maxes[j].IsZero() {
				row[j] = x.SaturatingDiv(maxes[j])
			}
		}
	}
}

// InplaceMaskMatrix zeroes m where mask is true. An empty mask is a no-op.
func InplaceMaskMatrix(mask [][]bool, m DenseMatrix) {
	if len(mask) == 0 || len(mask[0]) == 0 {
		return
	}
	requireSameLen("mask_matrix", len(mask), len(m))
	for i, mrow := range mask {
		requireSameLen("mask_matrix", len(mrow), len(m[i]))
		for j, masked := range mrow {
			if masked {
				m[i][j] = fixed.Zero32
			}
		}
	}
}

// InplaceMaskRows zeroes the rows of m selected by mask.
func InplaceMaskRows(mask []bool, m DenseMatrix) {
	if len(m) == 0 {
		return
	}
	requireSameLen("mask_rows", len(mask), len(m))
	for i, masked := range mask {
		if masked {
			clear(m[i])
		}
	}
}

// InplaceMaskDiag zeroes the diagonal of a square matrix.
func InplaceMaskDiag(m DenseMatrix) {
	inplaceMaskDiag("mask_diag", m, -1)
}

// InplaceMaskDiagExceptIndex zeroes the diagonal of a square matrix, keeping the
// cell (except, except).
func InplaceMaskDiagExceptIndex(m DenseMatrix, except uint16) {
	inplaceMaskDiag("mask_diag_except_index", m, int(except))
}

func inplaceMaskDiag(op string, m DenseMatrix, except int) {
	if m.NumCols() == 0 {
		return
	}
	requireShape(len(m) == m.NumCols(), "%s: %dx%d matrix is not square", op, len(m), m.NumCols())
	for i, row := range m {
		if i != except && i < len(row) {
			row[i] = fixed.Zero32
		}
	}
}

// RowHadamard multiplies row i of m by v[i]. A matrix without columns comes back as
// empty rows whatever v holds.
func RowHadamard(m DenseMatrix, v Vector) DenseMatrix {
	if m.NumCols() == 0 {
		out := make(DenseMatrix, len(m))
		for i := range out {
			out[i] = []fixed.I32F32{}
		}
		return out
	}
	requireSameLen("row_hadamard", len(m), len(v))
	out := make(DenseMatrix, len(m))
	for i, row := range m {
		out[i] = make([]fixed.I32F32, len(row))
		for j, x := range row {
			out[i][j] = v[i].SaturatingMul(x)
		}
	}
	return out
}

// MatVecMul multiplies column j of m by v[j].
func MatVecMul(m DenseMatrix, v Vector) DenseMatrix {
	out := make(DenseMatrix, len(m))
	for i, row := range m {
		requireSameLen("mat_vec_mul", len(row), len(v))
		out[i] = make([]fixed.I32F32, len(row))
		for j, x := range row {
			out[i][j] = x.SaturatingMul(v[j])
		}
	}
	return out
}

// Matmul returns result_j = sum_i v_i * m_ij. Without columns the result is empty
// and v is not checked.
func Matmul(m DenseMatrix, v Vector) Vector {
	out := make(Vector, requireRect("matmul", m))
	if len(out) == 0 {
		return out
	}
	requireSameLen("matmul", len(m), len(v))
	for i, row := range m {
		for j, x := range row {
			out[j] = out[j].SaturatingAdd(v[i].SaturatingMul(x))
		}
	}
	return out
}

// Matmul64 is Matmul over I64F64.
func Matmul64(m DenseMatrix64, v Vector64) Vector64 {
	if len(m) == 0 {
		return Vector64{}
	}
	requireSameLen("matmul_64", len(m), len(v))
	out := make(Vector64, len(m[0]))
	for i, row := range m {
		requireSameLen("matmul_64", len(row), len(out))
		for j, x := range row {
			out[j] = out[j].SaturatingAdd(v[i].SaturatingMul(x))
		}
	}
	return out
}

// MatmulTranspose returns result_i = sum_j v_j * m_ij, or nothing when m has no
// columns.
func MatmulTranspose(m DenseMatrix, v Vector) Vector {
	if m.NumCols() == 0 {
		return Vector{}
	}
	out := make(Vector, len(m))
	for i, row := range m {
		requireSameLen("matmul_transpose", len(row), len(v))
		acc := fixed.Zero32
		for j, x := range row {
			acc = acc.SaturatingAdd(v[j].SaturatingMul(x))
		}
		out[i] = acc
	}
	return out
}

// InplaceColClip caps every cell at its column threshold.
func InplaceColClip(m DenseMatrix, threshold Vector) {
	for _, row := range m {
		requireSameLen("col_clip", len(row), len(threshold))
		for j, x := range row {
			row[j] = fixed.Min32Of(threshold[j], x)
		}
	}
}

// Clip maps cells >= threshold to upper and the rest to lower.
func Clip(m DenseMatrix, threshold, upper, lower fixed.I32F32) DenseMatrix {
	out := m.Dense(requireRect("clip", m))
	InplaceClip(out, threshold, upper, lower)
	return out
}

func InplaceClip(m DenseMatrix, threshold, upper, lower fixed.I32F32) {
	for _, row := range m {
		for j, x := range row {
			if x.GreaterEq(threshold) {
				row[j] = upper
			} else {
				row[j] = lower
			}
		}
	}
}

// Hadamard returns the elementwise product of a and b.
func Hadamard(a, b DenseMatrix) DenseMatrix {
	return zipDense("hadamard", a, b, func(_ int, x, y fixed.I32F32) fixed.I32F32 {
		return x.SaturatingMul(y)
	})
}

// MatEma returns alpha*new + (1-alpha)*old per cell. alpha is not range checked.
func MatEma(newM, oldM DenseMatrix, alpha fixed.I32F32) DenseMatrix {
	oneMinus := fixed.One32.SaturatingSub(alpha)
	return zipDense("mat_ema", newM, oldM, func(_ int, n, o fixed.I32F32) fixed.I32F32 {
		return alpha.SaturatingMul(n).SaturatingAdd(oneMinus.SaturatingMul(o))
	})
}

// MatEmaAlphaVec is MatEma with one alpha per column.
func MatEmaAlphaVec(newM, oldM DenseMatrix, alpha Vector) DenseMatrix {
	requireSameLen("mat_ema_alpha_vec", requireRect("mat_ema_alpha_vec", newM), len(alpha))
	return zipDense("mat_ema_alpha_vec", newM, oldM, func(j int, n, o fixed.I32F32) fixed.I32F32 {
		oneMinus := fixed.One32.SaturatingSub(alpha[j])
		return alpha[j].SaturatingMul(n).SaturatingAdd(oneMinus.SaturatingMul(o))
	})
}

// Interpolate returns a + ratio*(b-a) per cell; ratio 0 and 1 return copies of a
// and b.
func Interpolate(a, b DenseMatrix, ratio fixed.I32F32) DenseMatrix {
	switch ratio {
	case fixed.Zero32:
		return cloneDense(a)
	case fixed.One32:
		return cloneDense(b)
	}
	return zipDense("interpolate", a, b, func(_ int, x, y fixed.I32F32) fixed.I32F32 {
		return x.SaturatingAdd(ratio.SaturatingMul(y.SaturatingSub(x)))
	})
}

func zipDense(op string, a, b DenseMatrix, f func(col int, x, y fixed.I32F32) fixed.I32F32) DenseMatrix {
	requireSameShape(op, a, b)
	out := make(DenseMatrix, len(a))
	for i := range a {
		out[i] = make([]fixed.I32F32, len(a[i]))
		for j := range a[i] {
			out[i][j] = f(j, a[i][j], b[i][j])
		}
	}
	return out
}

func cloneDense(m DenseMatrix) DenseMatrix {
	out := make(DenseMatrix, len(m))
	for i, row := range m {
		out[i] = slices.Clone(row)
		if out[i] == nil {
			out[i] = []fixed.I32F32{}
		}
	}
	return out
}

package yumamath

import "github.com/tensorplex-labs/yuma/pkg/fixed"

// Sparse operations mirror the dense ones on the zero-filled matrix. Column indices
// must be unique within a row and below the declared column count; they are not
// validated. Operations that rebuild rows from a scratch buffer only emit cells whose
// value is positive.

// InplaceRowNormalizeSparse scales every row with a positive sum to sum to 1.
func InplaceRowNormalizeSparse(m SparseMatrix) {
	for _, row := range m {
		sum := rowSum(row)
		if !sum.IsPositive() {
			continue
		}
		for k := range row {
			row[k].Value = row[k].Value.SaturatingDiv(sum)
		}
	}
}

func rowSum(row SparseRow) fixed.I32F32 {
	s := fixed.Zero32
	for _, e := range row {
		s = s.SaturatingAdd(e.Value)
	}
	return s
}

func RowSumSparse(m SparseMatrix) Vector {
	out := make(Vector, len(m))
	for i, row := range m {
		out[i] = rowSum(row)
	}
	return out
}

func ColSumSparse(m SparseMatrix, columns int) Vector {
	out := make(Vector, columns)
	for _, row := range m {
		for _, e := range row {
			out[e.Col] = out[e.Col].SaturatingAdd(e.Value)
		}
	}
	return out
}

// InplaceColNormalizeSparse scales every column with a non-zero sum to sum to 1.
func InplaceColNormalizeSparse(m SparseMatrix, columns int) {
	inplaceColDivide(m, ColSumSparse(m, columns))
}

// InplaceColMaxUpscaleSparse divides every column by its maximum, leaving columns
// whose maximum is zero untouched.
func InplaceColMaxUpscaleSparse(m SparseMatrix, columns int) {
	maxes := make(Vector, columns)
	for _, row := range m {
		for _, e := range row {
			maxes[e.Col] = fixed.Max32Of(maxes[e.Col], e.Value)
		}
	}
	inplaceColDivide(m, maxes)
}

func inplaceColDivide(m SparseMatrix, by Vector) {
	for _, row := range m {
		for k, e := range row {
			if d := by[e.Col]; !d.IsZero() {
				row[k].Value = e.Value.SaturatingDiv(d)
			}
		}
	}
}

// MaskRowsSparse returns a copy of m with the rows selected by mask emptied.
func MaskRowsSparse(mask []bool, m SparseMatrix) SparseMatrix {
	requireSameLen("mask_rows_sparse", len(mask), len(m))
	out := make(SparseMatrix, len(m))
	for i, row := range m {
		if !mask[i] {
			out[i] = append(SparseRow{}, row...)
		}
	}
	return out
}

// MaskDiagSparse returns a copy of m without its diagonal cells.
func MaskDiagSparse(m SparseMatrix) SparseMatrix {
	return filterSparse(m, func(i int, e SparseEntry) bool { return int(e.Col) != i })
}

// MaskDiagSparseExceptIndex drops the diagonal cells of m except (except, except).
func MaskDiagSparseExceptIndex(m SparseMatrix, except uint16) SparseMatrix {
	return filterSparse(m, func(i int, e SparseEntry) bool {
		return int(e.Col) != i || i == int(except)
	})
}

// VecMaskSparseMatrix drops cell (i, j) when maskFn(first[i], second[j]) is true.
func VecMaskSparseMatrix(m SparseMatrix, first, second []uint64, maskFn func(a, b uint64) bool) SparseMatrix {
	requireSameLen("vec_mask_sparse_matrix", len(first), len(m))
	return filterSparse(m, func(i int, e SparseEntry) bool {
		return !maskFn(first[i], second[e.Col])
	})
}

// SparseThreshold keeps the cells of m that are >= threshold.
func SparseThreshold(m SparseMatrix, threshold fixed.I32F32) SparseMatrix {
	return filterSparse(m, func(_ int, e SparseEntry) bool { return e.Value.GreaterEq(threshold) })
}

func filterSparse(m SparseMatrix, keep func(row int, e SparseEntry) bool) SparseMatrix {
	out := make(SparseMatrix, len(m))
	for i, row := range m {
		out[i] = SparseRow{}
		for _, e := range row {
			if keep(i, e) {
				out[i] = append(out[i], e)
			}
		}
	}
	return out
}

func mapSparse(m SparseMatrix, f func(row int, e SparseEntry) fixed.I32F32) SparseMatrix {
	out := make(SparseMatrix, len(m))
	for i, row := range m {
		out[i] = make(SparseRow, len(row))
		for k, e := range row {
			out[i][k] = SparseEntry{Col: e.Col, Value: f(i, e)}
		}
	}
	return out
}

// RowHadamardSparse multiplies row i of m by v[i].
func RowHadamardSparse(m SparseMatrix, v Vector) SparseMatrix {
	requireSameLen("row_hadamard_sparse", len(m), len(v))
	return mapSparse(m, func(i int, e SparseEntry) fixed.I32F32 { return e.Value.SaturatingMul(v[i]) })
}

// MatVecMulSparse multiplies column j of m by v[j]. Cells whose column lies beyond v
// or whose product is zero are dropped.
func MatVecMulSparse(m SparseMatrix, v Vector) SparseMatrix {
	out := make(SparseMatrix, len(m))
	for i, row := range m {
		out[i] = SparseRow{}
		for _, e := range row {
			if int(e.Col) >= len(v) {
				continue
			}
			if p := e.Value.SaturatingMul(v[e.Col]); !p.IsZero() {
				out[i] = append(out[i], SparseEntry{Col: e.Col, Value: p})
			}
		}
	}
	return out
}

// MatmulSparse returns result_j = sum_i v_i * m_ij over columns columns.
func MatmulSparse(m SparseMatrix, v Vector, columns int) Vector {
	requireSameLen("matmul_sparse", len(m), len(v))
	out := make(Vector, columns)
	for i, row := range m {
		for _, e := range row {
			out[e.Col] = out[e.Col].SaturatingAdd(v[i].SaturatingMul(e.Value))
		}
	}
	return out
}

// MatmulTransposeSparse returns result_i = sum_j v_j * m_ij.
func MatmulTransposeSparse(m SparseMatrix, v Vector) Vector {
	out := make(Vector, len(m))
	for i, row := range m {
		for _, e := range row {
			out[i] = out[i].SaturatingAdd(v[e.Col].SaturatingMul(e.Value))
		}
	}
	return out
}

// ColClipSparse caps every cell at its column threshold. Capped cells whose
// threshold is not positive are dropped.
func ColClipSparse(m SparseMatrix, threshold Vector) SparseMatrix {
	out := make(SparseMatrix, len(m))
	for i, row := range m {
		out[i] = SparseRow{}
		for _, e := range row {
			t := threshold[e.Col]
			switch {
			case t.GreaterEq(e.Value):
				out[i] = append(out[i], e)
			case t.IsPositive():
				out[i] = append(out[i], SparseEntry{Col: e.Col, Value: t})
			}
		}
	}
	return out
}

// ClipSparse maps stored cells >= threshold to upper and the rest to lower. Missing
// cells stay missing even when lower is non-zero.
func ClipSparse(m SparseMatrix, threshold, upper, lower fixed.I32F32) SparseMatrix {
	return mapSparse(m, func(_ int, e SparseEntry) fixed.I32F32 {
		if e.Value.Less(threshold) {
			return lower
		}
		return upper
	})
}

// HadamardSparse returns the elementwise product of a and b.
func HadamardSparse(a, b SparseMatrix, columns int) SparseMatrix {
	requireSameLen("hadamard_sparse", len(a), len(b))
	out := make(SparseMatrix, len(a))
	r1, r2 := make(Vector, columns), make(Vector, columns)
	for i := range a {
		scatter(r1, a[i])
		scatter(r2, b[i])
		for j := range r1 {
			r1[j] = r1[j].SaturatingMul(r2[j])
		}
		out[i] = gatherPositive(r1)
	}
	return out
}

// MatEmaSparse returns alpha*new + (1-alpha)*old per cell.
func MatEmaSparse(newM, oldM SparseMatrix, alpha fixed.I32F32) SparseMatrix {
	requireSameLen("mat_ema_sparse", len(newM), len(oldM))
	oneMinus := fixed.One32.SaturatingSub(alpha)
	buf := make(Vector, max(newM.maxCol(), oldM.maxCol()))
	out := make(SparseMatrix, len(newM))
	for i := range newM {
		clear(buf)
		for _, e := range newM[i] {
			buf[e.Col] = buf[e.Col].SaturatingAdd(alpha.SaturatingMul(e.Value))
		}
		for _, e := range oldM[i] {
			buf[e.Col] = buf[e.Col].SaturatingAdd(oneMinus.SaturatingMul(e.Value))
		}
		out[i] = gatherPositive(buf)
	}
	return out
}

// MatEmaAlphaVecSparse is MatEmaSparse with one alpha per column. Columns without an
// alpha use 0.
func MatEmaAlphaVecSparse(newM, oldM SparseMatrix, alpha Vector) SparseMatrix {
	requireSameLen("mat_ema_alpha_vec_sparse", len(newM), len(oldM))
	alphaAt := func(j uint16) fixed.I32F32 {
		if int(j) < len(alpha) {
			return alpha[j]
		}
		return fixed.Zero32
	}
	buf := make(Vector, max(newM.maxCol(), oldM.maxCol()))
	out := make(SparseMatrix, len(newM))
	for i := range newM {
		clear(buf)
		for _, e := range newM[i] {
			buf[e.Col] = alphaAt(e.Col).SaturatingMul(e.Value)
		}
		for _, e := range oldM[i] {
			oneMinus := fixed.One32.SaturatingSub(alphaAt(e.Col))
			buf[e.Col] = buf[e.Col].SaturatingAdd(oneMinus.SaturatingMul(e.Value))
		}
		out[i] = gatherPositive(buf)
	}
	return out
}

// InterpolateSparse returns a + ratio*(b-a) per cell; ratio 0 and 1 return copies
// of a and b.
func InterpolateSparse(a, b SparseMatrix, columns int, ratio fixed.I32F32) SparseMatrix {
	switch ratio {
	case fixed.Zero32:
		return a.Sparse()
	case fixed.One32:
		return b.Sparse()
	}
	requireSameLen("interpolate_sparse", len(a), len(b))
	out := make(SparseMatrix, len(a))
	r1, r2 := make(Vector, columns), make(Vector, columns)
	for i := range a {
		scatter(r1, a[i])
		scatter(r2, b[i])
		for j := range r1 {
			r1[j] = r1[j].SaturatingAdd(ratio.SaturatingMul(r2[j].SaturatingSub(r1[j])))
		}
		out[i] = gatherPositive(r1)
	}
	return out
}

// scatter zero-fills buf and writes row into it.
func scatter(buf Vector, row SparseRow) {
	clear(buf)
	for _, e := range row {
		buf[e.Col] = buf[e.Col].SaturatingAdd(e.Value)
	}
}

func gatherPositive(buf Vector) SparseRow {
	row := SparseRow{}
	for j, v := range buf {
		if v.IsPositive() {
			row = append(row, SparseEntry{Col: uint16(j), Value: v})
		}
	}
	return row
}

package yumamath

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tensorplex-labs/yuma/pkg/fixed"
)

func TestDenseSparseRoundTrip(t *testing.T) {
	m := dense(2, 0, 1, 2, 0, 10, 100)
	s := m.Sparse()
	assert.Equal(t, SparseMatrix{
		{{Col: 1, Value: Fixed(1)}, {Col: 2, Value: Fixed(2)}},
		{{Col: 1, Value: Fixed(10)}, {Col: 2, Value: Fixed(100)}},
	}, s)
	assert.Equal(t, m, s.Dense(3))
	assert.Equal(t, SparseMatrix{{}, {}}, dense(2, 0, 0).Sparse())

	var mx Matrix = s
	assert.Equal(t, 2, mx.NumRows())
	assert.Equal(t, m, mx.Dense(3))

	cp := m.Dense(3)
	cp[0][0] = Fixed(7)
	assert.Equal(t, fixed.Zero32, m[0][0], "Dense must copy")
	assertPanicsIs(t, ErrShapeMismatch, func() { m.Dense(2) })
}

func TestInplaceRowNormalize(t *testing.T) {
	m := dense(3, 1, 2, 3, 0, 0, 0, -1, 0, 0)
	InplaceRowNormalize(m)
	assertMatInDelta(t, dense(3, 1.0/6, 2.0/6, 3.0/6, 0, 0, 0, -1, 0, 0), m, 1e-9)

	m64 := DenseMatrix64{
		{fixed.FromInt64(1), fixed.FromInt64(3)},
		{fixed.Zero64, fixed.Zero64},
	}
	InplaceRowNormalize64(m64)
	assert.InDelta(t, 0.25, m64[0][0].Float64(), 1e-12)
	assert.InDelta(t, 0.75, m64[0][1].Float64(), 1e-12)
	assert.Equal(t, fixed.Zero64, m64[1][0])
}

func TestRowColSum(t *testing.T) {
	m := dense(2, 1, 2, 3, 4, 5, 6)
	assert.Equal(t, vec(6, 15), RowSum(m))
	assert.Equal(t, vec(5, 7, 9), ColSum(m))
	assert.Equal(t, Vector{}, RowSum(DenseMatrix{}))
	assert.Equal(t, Vector{}, ColSum(DenseMatrix{}))
	assert.Equal(t, Vector{}, RowSum(DenseMatrix{{}, {}}))
	assertPanicsIs(t, ErrShapeMismatch, func() { ColSum(DenseMatrix{vec(1, 2), vec(1)}) })
}

// colMatrix has columns [0..4], [0, 10, 100, 1000, 10000], zeros and ones.
func colMatrix() DenseMatrix {
	return dense(5,
		0, 0, 0, 1,
		1, 10, 0, 1,
		2, 100, 0, 1,
		3, 1000, 0, 1,
		4, 10000, 0, 1,
	)
}

func TestInplaceColNormalize(t *testing.T) {
	m := colMatrix()
	InplaceColNormalize(m)
	want := dense(5,
		0, 0, 0, 0.2,
		0.1, 0.0009, 0, 0.2,
		0.2, 0.009, 0, 0.2,
		0.3, 0.09, 0, 0.2,
		0.4, 0.9, 0, 0.2,
	)
	assertMatInDelta(t, want, m, 1e-4)
}

func TestInplaceColMaxUpscale(t *testing.T) {
	empty := DenseMatrix{{}}
	InplaceColMaxUpscale(empty)
	assert.Equal(t, DenseMatrix{{}}, empty)

	zero := dense(1, 0)
	InplaceColMaxUpscale(zero)
	assert.Equal(t, dense(1, 0), zero)

	m := colMatrix()
	InplaceColMaxUpscale(m)
	want := dense(5,
		0, 0, 0, 1,
		0.25, 0.001, 0, 1,
		0.5, 0.01, 0, 1,
		0.75, 0.1, 0, 1,
		1, 1, 0, 1,
	)
	assertMatInDelta(t, want, m, 1e-4)
}

func TestInplaceMasks(t *testing.T) {
	m := dense(3, 0, 1, 2, 3, 4, 5, 6, 7, 8)
	InplaceMaskMatrix([][]bool{{true, false, false}, {false, true, false}, {false, false, true}}, m)
	assert.Equal(t, dense(3, 0, 1, 2, 3, 0, 5, 6, 7, 0), m)

	m = dense(3, 0, 1, 2, 3, 4, 5, 6, 7, 8)
	InplaceMaskMatrix(nil, m)
	assert.Equal(t, dense(3, 0, 1, 2, 3, 4, 5, 6, 7, 8), m)

	m = dense(3, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	InplaceMaskRows([]bool{true, false, true}, m)
	assert.Equal(t, dense(3, 0, 0, 0, 4, 5, 6, 0, 0, 0), m)
	assertPanicsIs(t, ErrShapeMismatch, func() { InplaceMaskRows([]bool{true}, m) })

	m = dense(3, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	InplaceMaskDiag(m)
	assert.Equal(t, dense(3, 0, 2, 3, 4, 0, 6, 7, 8, 0), m)

	m = dense(3, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	InplaceMaskDiagExceptIndex(m, 1)
	assert.Equal(t, dense(3, 0, 2, 3, 4, 5, 6, 7, 8, 0), m)

	m = dense(3, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	InplaceMaskDiagExceptIndex(m, 5)
	assert.Equal(t, dense(3, 0, 2, 3, 4, 0, 6, 7, 8, 0), m)

	rect := dense(2, 1, 2, 3, 4, 5, 6)
	assertPanicsIs(t, ErrShapeMismatch, func() { InplaceMaskDiag(rect) })
	InplaceMaskDiag(DenseMatrix{})
}

func TestRowHadamardAndMatVecMul(t *testing.T) {
	m := dense(2, 1, 2, 3, 4)
	v := vec(2, 0.5)
	assert.Equal(t, dense(2, 2, 4, 1.5, 2), RowHadamard(m, v))
	assert.Equal(t, dense(2, 2, 1, 6, 2), MatVecMul(m, v))
	assert.Equal(t, dense(2, 1, 2, 3, 4), m, "inputs must not change")

	assert.Equal(t, DenseMatrix{}, RowHadamard(DenseMatrix{}, Vector{}))
	assert.Equal(t, DenseMatrix{{}, {}}, RowHadamard(DenseMatrix{{}, {}}, vec(1)))
	assertPanicsIs(t, ErrShapeMismatch, func() { RowHadamard(m, vec(1)) })
	assertPanicsIs(t, ErrShapeMismatch, func() { MatVecMul(m, vec(1, 2, 3)) })
}

func TestMatmul(t *testing.T) {
	m := dense(2, 1, 2, 3, 4, 5, 6)
	assert.Equal(t, vec(9, 12, 15), Matmul(m, vec(1, 2)))
	assert.Equal(t, vec(7, 16), MatmulTranspose(m, vec(1, 0, 2)))
	assert.Equal(t, Vector{}, Matmul(DenseMatrix{}, Vector{}))
	assert.Equal(t, Vector{}, MatmulTranspose(DenseMatrix{}, vec(1)))
	assert.Equal(t, Vector{}, Matmul(DenseMatrix{{}, {}}, vec(1, 2, 3)))
	assert.Equal(t, Vector{}, MatmulTranspose(DenseMatrix{{}, {}}, vec(1)))
	assertPanicsIs(t, ErrShapeMismatch, func() { Matmul(m, vec(1)) })
	assertPanicsIs(t, ErrShapeMismatch, func() { MatmulTranspose(m, vec(1, 2)) })

	// 4x3 example with zeros
	m = dense(4, 0, 2, 3, 4, 0, 6, 7, 8, 0, 10, 11, 12)
	assert.Equal(t, vec(13, 22, 23, 68), MatmulTranspose(m, vec(1, 2, 3)))
	assert.Equal(t, vec(69, 70, 63), Matmul(m, vec(1, 2, 3, 4)))

	m64 := DenseMatrix64{
		{fixed.FromInt64(1), fixed.FromInt64(2)},
		{fixed.FromInt64(3), fixed.FromInt64(4)},
	}
	got := Matmul64(m64, Vector64{fixed.FromInt64(1), fixed.FromInt64(10)})
	assert.Equal(t, Vector64{fixed.FromInt64(31), fixed.FromInt64(42)}, got)
	assert.Equal(t, Vector64{}, Matmul64(DenseMatrix64{}, Vector64{}))
}

func TestInplaceColClip(t *testing.T) {
	m := dense(4, 0, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	InplaceColClip(m, vec(0, 5, 12))
	assert.Equal(t, dense(4, 0, 2, 3, 0, 5, 6, 0, 5, 9, 0, 5, 12), m)
	assertPanicsIs(t, ErrShapeMismatch, func() { InplaceColClip(m, vec(1)) })
}

func TestClip(t *testing.T) {
	m := dense(2, 0.1, 0.5, 0.9, 0.2)
	got := Clip(m, Fixed(0.5), Fixed(1), Fixed(0))
	assert.Equal(t, dense(2, 0, 1, 1, 0), got)
	assert.Equal(t, dense(2, 0.1, 0.5, 0.9, 0.2), m)

	InplaceClip(m, Fixed(0.3), Fixed(2), Fixed(-1))
	assert.Equal(t, dense(2, -1, 2, 2, -1), m)
}

func TestHadamard(t *testing.T) {
	a := dense(2, 1, 2, 3, 4)
	b := dense(2, 2, 0, 0.5, 1)
	assert.Equal(t, dense(2, 2, 0, 1.5, 4), Hadamard(a, b))
	assert.Equal(t, DenseMatrix{{}}, Hadamard(DenseMatrix{{}}, DenseMatrix{{}}))
	assertPanicsIs(t, ErrShapeMismatch, func() { Hadamard(a, dense(1, 1, 2)) })
	assertPanicsIs(t, ErrShapeMismatch, func() { Hadamard(a, dense(2, 1, 2, 3, 4, 5, 6)) })
}

func TestMatEma(t *testing.T) {
	newM := dense(2, 1, 0, 2, 4)
	oldM := dense(2, 0, 1, 2, 0)
	got := MatEma(newM, oldM, Fixed(0.1))
	assertMatInDelta(t, dense(2, 0.1, 0.9, 2, 0.4), got, 1e-8)

	assert.Equal(t, oldM, MatEma(newM, oldM, fixed.Zero32))
	assert.Equal(t, newM, MatEma(newM, oldM, fixed.One32))
}

func TestMatEmaAlphaVec(t *testing.T) {
	newM := dense(2, 1, 1, 1, 0)
	oldM := dense(2, 0, 1, 1, 1)
	got := MatEmaAlphaVec(newM, oldM, vec(0.1, 0.5))
	assertMatInDelta(t, dense(2, 0.1, 1, 1, 0.5), got, 1e-8)
	assertPanicsIs(t, ErrShapeMismatch, func() { MatEmaAlphaVec(newM, oldM, vec(0.1)) })
}

func TestInterpolate(t *testing.T) {
	a := dense(2, 0, 1, 2, 4)
	b := dense(2, 1, 0, 4, 2)

	got := Interpolate(a, b, Fixed(0.25))
	assertMatInDelta(t, dense(2, 0.25, 0.75, 2.5, 3.5), got, 1e-9)

	lo := Interpolate(a, b, fixed.Zero32)
	assert.Equal(t, a, lo)
	lo[0][0] = Fixed(9)
	assert.Equal(t, fixed.Zero32, a[0][0], "ratio 0 must return a copy")
	assert.Equal(t, b, Interpolate(a, b, fixed.One32))

	assert.Equal(t, DenseMatrix{{}}, Interpolate(DenseMatrix{{}}, DenseMatrix{{}}, Fixed(0.5)))
	assertPanicsIs(t, ErrShapeMismatch, func() { Interpolate(a, dense(1, 1, 2), Fixed(0.5)) })
}

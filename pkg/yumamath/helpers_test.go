package yumamath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tensorplex-labs/yuma/pkg/fixed"
)

func vec(xs ...float64) Vector { return VectorFromFloats(xs) }

// dense reshapes xs into a matrix with the given number of rows.
func dense(rows int, xs ...float64) DenseMatrix {
	if rows == 0 {
		return DenseMatrix{}
	}
	cols := len(xs) / rows
	m := NewDenseMatrix(rows, cols)
	for i := range rows {
		for j := range cols {
			m[i][j] = fixed.FromFloat(xs[i*cols+j])
		}
	}
	return m
}

func sparse(rows int, xs ...float64) SparseMatrix { return dense(rows, xs...).Sparse() }

func assertVecInDelta(t *testing.T, want, got Vector, delta float64) {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i := range want {
		assert.InDelta(t, want[i].Float64(), got[i].Float64(), delta, "index %d", i)
	}
}

func assertMatInDelta(t *testing.T, want, got DenseMatrix, delta float64) {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i := range want {
		assertVecInDelta(t, want[i], got[i], delta)
	}
}

// assertSparseEqual compares two sparse matrices through their zero-filled form.
func assertSparseEqual(t *testing.T, want, got SparseMatrix, columns int) {
	t.Helper()
	assert.Equal(t, want.Dense(columns), got.Dense(columns))
}

// assertPanicsIs checks that f panics with an error matching target.
func assertPanicsIs(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if !assert.NotNil(t, r, "expected panic") {
			return
		}
		err, ok := r.(error)
		if assert.True(t, ok, "panic value %v is not an error", r) {
			assert.True(t, errors.Is(err, target), "panic %v is not %v", err, target)
		}
	}()
	f()
}

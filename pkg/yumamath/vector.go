package yumamath

import (
	"slices"

	"github.com/tensorplex-labs/yuma/pkg/fixed"
)

// Integer is the set of types CheckedSum accepts.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Sum adds the elements of v, saturating at the I32F32 bounds.
func Sum(v Vector) fixed.I32F32 {
	s := fixed.Zero32
	for _, x := range v {
		s = s.SaturatingAdd(x)
	}
	return s
}

func Sum64(v Vector64) fixed.I64F64 {
	s := fixed.Zero64
	for _, x := range v {
		s = s.SaturatingAdd(x)
	}
	return s
}

// CheckedSum adds the elements of xs and reports false on overflow. An empty input
// sums to zero and succeeds.
func CheckedSum[T Integer](xs []T) (T, bool) {
	var s, zero T
	for _, v := range xs {
		r := s + v
		if (v > zero && r < s) || (v < zero && r > s) {
			return zero, false
		}
		s = r
	}
	return s, true
}

// IsZero reports whether v sums to zero.
func IsZero(v Vector) bool { return Sum(v).IsZero() }

// IsTopK marks the k largest elements of v. Indices are ordered by a stable
// ascending sort, so among equal values the later positions win.
func IsTopK(v Vector, k int) []bool {
	n := len(v)
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	if n < k {
		return out
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return v[a].Cmp(v[b]) })
	for _, i := range idx[:n-max(k, 0)] {
		out[i] = false
	}
	return out
}

// Normalize returns a copy of v scaled to sum to 1. An all-zero sum returns the
// copy unchanged.
func Normalize(v Vector) Vector {
	out := slices.Clone(v)
	InplaceNormalize(out)
	return out
}

func InplaceNormalize(v Vector) {
	InplaceNormalizeUsingSum(v, Sum(v))
}

// InplaceNormalizeUsingSum divides every element by sum unless sum is zero.
func InplaceNormalizeUsingSum(v Vector, sum fixed.I32F32) {
	if sum.IsZero() {
		return
	}
	for i, x := range v {
		v[i] = x.SaturatingDiv(sum)
	}
}

func InplaceNormalize64(v Vector64) {
	sum := Sum64(v)
	if sum.IsZero() {
		return
	}
	for i, x := range v {
		v[i] = x.SaturatingDiv(sum)
	}
}

// VecDiv returns x/y elementwise with x/0 defined as 0.
func VecDiv(x, y Vector) Vector {
	requireSameLen("vecdiv", len(x), len(y))
	out := make(Vector, len(x))
	for i := range x {
		if !y[i].IsZero() {
			out[i] = x[i].SaturatingDiv(y[i])
		}
	}
	return out
}

// VecMul returns the elementwise product of a and b.
func VecMul(a, b Vector) Vector {
	requireSameLen("vec_mul", len(a), len(b))
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i].SaturatingMul(b[i])
	}
	return out
}

// InplaceMaskVector zeroes v where mask is true. An empty mask is a no-op.
func InplaceMaskVector(mask []bool, v Vector) {
	if len(mask) == 0 {
		return
	}
	requireSameLen("mask_vector", len(mask), len(v))
	for i, m := range mask {
		if m {
			v[i] = fixed.Zero32
		}
	}
}

// Quantile returns the q-quantile of data by linear interpolation between the
// neighbouring order statistics. Positions past the end read as zero and negative
// positions clamp to the first element.
func Quantile(data Vector, q fixed.I32F32) fixed.I32F32 {
	if len(data) == 0 {
		return fixed.Zero32
	}
	sorted := slices.Clone(data)
	slices.SortFunc(sorted, fixed.I32F32.Cmp)

	pos := q.SaturatingMul(fixed.FromInt(int64(len(sorted) - 1)))
	if pos.IsNegative() {
		return sorted[0]
	}
	low := pos.Int()
	high := low
	weight := pos.Frac()
	if !weight.IsZero() {
		high++
	}
	at := func(i int64) fixed.I32F32 {
		if i >= int64(len(sorted)) {
			return fixed.Zero32
		}
		return sorted[i]
	}
	lo, hi := at(low), at(high)
	if low == high {
		return lo
	}
	return lo.SaturatingAdd(hi.SaturatingSub(lo).SaturatingMul(weight))
}

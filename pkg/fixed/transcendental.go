package fixed

import "math/big"

// e and ln(2) to 64 fractional bits, computed from their series once.
var (
	e64 = expSeries(One64)
	ln2 = twice(atanhSeries(FromRatio(1, 3)))
)

// Exp returns e^x. The second result is false when the result does not fit in an
// I32F32; very negative inputs underflow to zero and still report true.
func Exp(x I32F32) (I32F32, bool) {
	if x.IsZero() {
		return One32, true
	}
	w := Widen(x.Abs())
	n, f := w.hi, I64F64{lo: w.lo}

	r, ok := powE(n)
	if ok {
		r, ok = r.CheckedMul(expSeries(f))
	}
	if x.IsNegative() {
		if !ok {
			return Zero32, true
		}
		return Narrow(One64.SaturatingDiv(r)), true
	}
	if !ok || r.hi > 1<<31-1 {
		return Max32, false
	}
	return Narrow(r), true
}

// Ln returns the natural logarithm of x. The second result is false for x <= 0.
func Ln(x I32F32) (I32F32, bool) {
	if !x.IsPositive() {
		return Zero32, false
	}
	raw := Widen(x).big()
	k := raw.BitLen() - 1 - frac64
	m := new(big.Int)
	if k >= 0 {
		m.Rsh(raw, uint(k))
	} else {
		m.Lsh(raw, uint(-k))
	}
	mant := fromBig(m)

	// ln(m) = 2 atanh((m-1)/(m+1)) with m in [1, 2)
	t := mant.SaturatingSub(One64).SaturatingDiv(mant.SaturatingAdd(One64))
	r := twice(atanhSeries(t))
	r = r.SaturatingAdd(FromInt64(int64(k)).SaturatingMul(ln2))
	return Narrow(r), true
}

// powE returns e^n for n >= 0 by binary exponentiation.
func powE(n int64) (I64F64, bool) {
	result, base := One64, e64
	var ok bool
	for n > 0 {
		if n&1 == 1 {
			if result, ok = result.CheckedMul(base); !ok {
				return Max64, false
			}
		}
		n >>= 1
		if n > 0 {
			if base, ok = base.CheckedMul(base); !ok {
				return Max64, false
			}
		}
	}
	return result, true
}

// expSeries sums the Taylor series of e^x until the terms vanish. x must lie in [0, 1].
func expSeries(x I64F64) I64F64 {
	sum, term := One64, One64
	for k := int64(1); ; k++ {
		term = term.SaturatingMul(x).SaturatingDiv(FromInt64(k))
		if term.IsZero() {
			return sum
		}
		sum = sum.SaturatingAdd(term)
	}
}

// atanhSeries sums t + t^3/3 + t^5/5 + ... for 0 <= t < 1.
func atanhSeries(t I64F64) I64F64 {
	sum, pow := t, t
	t2 := t.SaturatingMul(t)
	for k := int64(3); ; k += 2 {
		pow = pow.SaturatingMul(t2)
		term := pow.SaturatingDiv(FromInt64(k))
		if term.IsZero() {
			return sum
		}
		sum = sum.SaturatingAdd(term)
	}
}

func twice(a I64F64) I64F64 { return a.SaturatingAdd(a) }

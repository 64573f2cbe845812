package fixed

import (
	"math"
	"math/big"
	"math/bits"
	"strconv"
)

const frac64 = 64

// I64F64 is a signed fixed-point number with 64 integer and 64 fractional bits, held
// as a 128-bit two's complement value split into hi and lo words.
type I64F64 struct {
	hi int64
	lo uint64
}

var (
	Zero64  = I64F64{}
	One64   = I64F64{hi: 1}
	Max64   = I64F64{hi: math.MaxInt64, lo: math.MaxUint64}
	Min64   = I64F64{hi: math.MinInt64}
	Delta64 = I64F64{lo: 1}

	maxRaw128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minRaw128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// FromBits64 builds an I64F64 from its raw hi and lo words.
func FromBits64(hi int64, lo uint64) I64F64 { return I64F64{hi: hi, lo: lo} }

// FromInt64 returns n as an I64F64. Every int64 is representable.
func FromInt64(n int64) I64F64 { return I64F64{hi: n} }

// FromUint64 returns u as an I64F64, saturating above 2^63-1.
func FromUint64(u uint64) I64F64 {
	if u > math.MaxInt64 {
		return Max64
	}
	return I64F64{hi: int64(u)}
}

// FromRatio returns num/den computed exactly to 64 fractional bits (truncated).
// A zero denominator yields Max64 for a positive numerator and zero otherwise.
func FromRatio(num, den uint64) I64F64 {
	if den == 0 {
		if num == 0 {
			return Zero64
		}
		return Max64
	}
	n := new(big.Int).SetUint64(num)
	n.Lsh(n, frac64)
	n.Quo(n, new(big.Int).SetUint64(den))
	return fromBig(n)
}

// FromFloat64 converts f, truncating bits below 2^-64. NaN maps to zero and
// out-of-range values saturate.
func FromFloat64(f float64) I64F64 {
	switch {
	case math.IsNaN(f):
		return Zero64
	case math.IsInf(f, 1):
		return Max64
	case math.IsInf(f, -1):
		return Min64
	}
	bf := new(big.Float).SetFloat64(f)
	bf.SetMantExp(bf, frac64)
	n, _ := bf.Int(nil)
	return fromBig(n)
}

// Bits returns the raw hi and lo words.
func (a I64F64) Bits() (int64, uint64) { return a.hi, a.lo }

// Float64 returns an approximation. Only meant for display and tests.
func (a I64F64) Float64() float64 {
	return float64(a.hi) + float64(a.lo)/(1<<32)/(1<<32)
}

func (a I64F64) String() string {
	return strconv.FormatFloat(a.Float64(), 'f', -1, 64)
}

func (a I64F64) IsZero() bool     { return a.hi == 0 && a.lo == 0 }
func (a I64F64) IsNegative() bool { return a.hi < 0 }
func (a I64F64) IsPositive() bool { return a.hi > 0 || (a.hi == 0 && a.lo != 0) }

func (a I64F64) Cmp(b I64F64) int {
	switch {
	case a.hi < b.hi:
		return -1
	case a.hi > b.hi:
		return 1
	case a.lo < b.lo:
		return -1
	case a.lo > b.lo:
		return 1
	}
	return 0
}

func (a I64F64) Less(b I64F64) bool    { return a.Cmp(b) < 0 }
func (a I64F64) Greater(b I64F64) bool { return a.Cmp(b) > 0 }

func (a I64F64) SaturatingAdd(b I64F64) I64F64 {
	r, ok := a.CheckedAdd(b)
	if !ok {
		return saturated64(a.hi >= 0)
	}
	return r
}

// CheckedAdd returns a+b and false on overflow.
func (a I64F64) CheckedAdd(b I64F64) (I64F64, bool) {
	lo, carry := bits.Add64(a.lo, b.lo, 0)
	hi := int64(uint64(a.hi) + uint64(b.hi) + carry)
	if (a.hi >= 0) == (b.hi >= 0) && (hi >= 0) != (a.hi >= 0) {
		return Zero64, false
	}
	return I64F64{hi: hi, lo: lo}, true
}

func (a I64F64) SaturatingSub(b I64F64) I64F64 {
	lo, borrow := bits.Sub64(a.lo, b.lo, 0)
	hi := int64(uint64(a.hi) - uint64(b.hi) - borrow)
	if (a.hi >= 0) != (b.hi >= 0) && (hi >= 0) != (a.hi >= 0) {
		return saturated64(a.hi >= 0)
	}
	return I64F64{hi: hi, lo: lo}
}

// SaturatingMul returns a*b; dropped bits round toward negative infinity.
func (a I64F64) SaturatingMul(b I64F64) I64F64 {
	p := new(big.Int).Mul(a.big(), b.big())
	return fromBig(p.Rsh(p, frac64))
}

// CheckedMul returns a*b and false on overflow.
func (a I64F64) CheckedMul(b I64F64) (I64F64, bool) {
	p := new(big.Int).Mul(a.big(), b.big())
	p.Rsh(p, frac64)
	if p.Cmp(maxRaw128) > 0 || p.Cmp(minRaw128) < 0 {
		return Zero64, false
	}
	return fromBig(p), true
}

// SaturatingDiv returns a/b truncated toward zero, with the same division-by-zero
// rules as I32F32.SaturatingDiv.
func (a I64F64) SaturatingDiv(b I64F64) I64F64 {
	if b.IsZero() {
		switch {
		case a.IsPositive():
			return Max64
		case a.IsNegative():
			return Min64
		}
		return Zero64
	}
	n := a.big()
	n.Lsh(n, frac64)
	return fromBig(n.Quo(n, b.big()))
}

// Int returns the integer part rounded toward negative infinity.
func (a I64F64) Int() int64 { return a.hi }

// ToU64Saturating truncates; negative values map to 0.
func (a I64F64) ToU64Saturating() uint64 {
	if a.hi < 0 {
		return 0
	}
	return uint64(a.hi)
}

// Widen converts an I32F32 to I64F64 without loss.
func Widen(a I32F32) I64F64 {
	return I64F64{hi: a.bits >> frac32, lo: uint64(a.bits) << frac32}
}

// Narrow converts an I64F64 to I32F32, dropping the low 32 fractional bits and
// saturating when the integer part does not fit in 32 bits.
func Narrow(a I64F64) I32F32 {
	switch {
	case a.hi > math.MaxInt32:
		return Max32
	case a.hi < math.MinInt32:
		return Min32
	}
	return I32F32{bits: a.hi<<frac32 | int64(a.lo>>frac32)}
}

func (a I64F64) big() *big.Int {
	x := big.NewInt(a.hi)
	x.Lsh(x, frac64)
	return x.Add(x, new(big.Int).SetUint64(a.lo))
}

func fromBig(x *big.Int) I64F64 {
	if x.Cmp(maxRaw128) > 0 {
		return Max64
	}
	if x.Cmp(minRaw128) < 0 {
		return Min64
	}
	hi := new(big.Int).Rsh(x, frac64)
	lo := new(big.Int).Lsh(hi, frac64)
	lo.Sub(x, lo)
	return I64F64{hi: hi.Int64(), lo: lo.Uint64()}
}

func saturated64(positive bool) I64F64 {
	if positive {
		return Max64
	}
	return Min64
}

// Package fixed provides the deterministic binary fixed-point numbers the consensus
// math is computed in: I32F32 (32 integer bits, 32 fractional bits, stored in an
// int64) and I64F64 (64.64, stored in 128 bits).
//
// All arithmetic operators saturate at the bounds of the type instead of wrapping or
// panicking. Only the explicit narrowing conversion ToU16 panics.
package fixed

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"
)

// ErrConversionOverflow is wrapped by the panic raised when a value cannot be
// represented in the requested integer type.
var ErrConversionOverflow = errors.New("fixed: conversion overflow")

const (
	frac32     = 32
	fracMask32 = uint64(1)<<frac32 - 1
	scale32    = float64(1 << frac32)
)

// I32F32 is a signed fixed-point number with 32 integer and 32 fractional bits.
// The zero value is 0.
type I32F32 struct {
	bits int64
}

var (
	Zero32  = I32F32{}
	One32   = I32F32{bits: 1 << frac32}
	Max32   = I32F32{bits: math.MaxInt64}
	Min32   = I32F32{bits: math.MinInt64}
	Delta32 = I32F32{bits: 1}
)

// FromBits32 builds an I32F32 from its raw two's complement representation.
func FromBits32(b int64) I32F32 { return I32F32{bits: b} }

// FromInt returns n as an I32F32, saturating outside [-2^31, 2^31).
func FromInt(n int64) I32F32 {
	switch {
	case n > math.MaxInt32:
		return Max32
	case n < math.MinInt32:
		return Min32
	}
	return I32F32{bits: n << frac32}
}

// FromUint returns u as an I32F32, saturating above 2^31-1.
func FromUint(u uint64) I32F32 {
	if u > math.MaxInt32 {
		return Max32
	}
	return I32F32{bits: int64(u) << frac32}
}

// FromFloat converts f to the nearest representable I32F32, ties to even.
// NaN maps to zero and out-of-range values saturate.
func FromFloat(f float64) I32F32 {
	if math.IsNaN(f) {
		return Zero32
	}
	r := math.RoundToEven(f * scale32)
	switch {
	case r >= math.MaxInt64:
		return Max32
	case r <= math.MinInt64:
		return Min32
	}
	return I32F32{bits: int64(r)}
}

// Bits returns the raw representation.
func (a I32F32) Bits() int64 { return a.bits }

// Float64 returns the nearest float64. Only meant for display and tests.
func (a I32F32) Float64() float64 { return float64(a.bits) / scale32 }

func (a I32F32) String() string {
	return strconv.FormatFloat(a.Float64(), 'f', -1, 64)
}

func (a I32F32) IsZero() bool     { return a.bits == 0 }
func (a I32F32) IsNegative() bool { return a.bits < 0 }
func (a I32F32) IsPositive() bool { return a.bits > 0 }

// Cmp returns -1, 0 or +1.
func (a I32F32) Cmp(b I32F32) int {
	switch {
	case a.bits < b.bits:
		return -1
	case a.bits > b.bits:
		return 1
	}
	return 0
}

func (a I32F32) Less(b I32F32) bool      { return a.bits < b.bits }
func (a I32F32) LessEq(b I32F32) bool    { return a.bits <= b.bits }
func (a I32F32) Greater(b I32F32) bool   { return a.bits > b.bits }
func (a I32F32) GreaterEq(b I32F32) bool { return a.bits >= b.bits }

// Min32Of returns the smaller of a and b.
func Min32Of(a, b I32F32) I32F32 {
	if b.bits < a.bits {
		return b
	}
	return a
}

// Max32Of returns the larger of a and b.
func Max32Of(a, b I32F32) I32F32 {
	if b.bits > a.bits {
		return b
	}
	return a
}

func (a I32F32) SaturatingAdd(b I32F32) I32F32 {
	s, ok := addInt64(a.bits, b.bits)
	if !ok {
		return saturated32(a.bits >= 0)
	}
	return I32F32{bits: s}
}

func (a I32F32) SaturatingSub(b I32F32) I32F32 {
	s, ok := subInt64(a.bits, b.bits)
	if !ok {
		return saturated32(a.bits >= 0)
	}
	return I32F32{bits: s}
}

// CheckedAdd returns a+b and false when the sum overflows.
func (a I32F32) CheckedAdd(b I32F32) (I32F32, bool) {
	s, ok := addInt64(a.bits, b.bits)
	return I32F32{bits: s}, ok
}

// SaturatingNeg returns -a; -Min32 saturates to Max32.
func (a I32F32) SaturatingNeg() I32F32 {
	if a.bits == math.MinInt64 {
		return Max32
	}
	return I32F32{bits: -a.bits}
}

// Abs returns |a|, saturating for Min32.
func (a I32F32) Abs() I32F32 {
	if a.bits < 0 {
		return a.SaturatingNeg()
	}
	return a
}

// SaturatingMul returns a*b. Dropped fractional bits round toward negative infinity.
func (a I32F32) SaturatingMul(b I32F32) I32F32 {
	r, ok := a.CheckedMul(b)
	if !ok {
		return saturated32((a.bits < 0) == (b.bits < 0))
	}
	return r
}

// CheckedMul returns a*b and false on overflow.
func (a I32F32) CheckedMul(b I32F32) (I32F32, bool) {
	neg := (a.bits < 0) != (b.bits < 0)
	hi, lo := bits.Mul64(magnitude(a.bits), magnitude(b.bits))
	if hi>>frac32 != 0 {
		return Zero32, false
	}
	mag := hi<<frac32 | lo>>frac32
	if neg && lo&fracMask32 != 0 {
		if mag >= 1<<63 {
			return Zero32, false
		}
		mag++
	}
	v, ok := signedFromMagnitude(mag, neg)
	return I32F32{bits: v}, ok
}

// SaturatingDiv returns a/b truncated toward zero. Division by zero saturates in the
// direction of the dividend's sign, and 0/0 is 0.
func (a I32F32) SaturatingDiv(b I32F32) I32F32 {
	if b.bits == 0 {
		switch {
		case a.bits > 0:
			return Max32
		case a.bits < 0:
			return Min32
		}
		return Zero32
	}
	neg := (a.bits < 0) != (b.bits < 0)
	am, bm := magnitude(a.bits), magnitude(b.bits)
	hi, lo := am>>frac32, am<<frac32
	if hi >= bm {
		return saturated32(!neg)
	}
	q, _ := bits.Div64(hi, lo, bm)
	v, ok := signedFromMagnitude(q, neg)
	if !ok {
		return saturated32(!neg)
	}
	return I32F32{bits: v}
}

// Floor rounds toward negative infinity.
func (a I32F32) Floor() I32F32 {
	return I32F32{bits: int64(uint64(a.bits) &^ fracMask32)}
}

// Frac returns the fractional part, always in [0, 1).
func (a I32F32) Frac() I32F32 {
	return I32F32{bits: int64(uint64(a.bits) & fracMask32)}
}

// Int returns the integer part rounded toward negative infinity.
func (a I32F32) Int() int64 { return a.bits >> frac32 }

// Round rounds to the nearest integer, ties away from zero.
func (a I32F32) Round() I32F32 {
	const half = uint64(1) << (frac32 - 1)
	if a.bits >= 0 {
		s, ok := addInt64(a.bits, int64(half))
		if !ok {
			s = math.MaxInt64
		}
		return I32F32{bits: int64(uint64(s) &^ fracMask32)}
	}
	m := magnitude(a.bits)
	m = (m + half) &^ fracMask32
	v, _ := signedFromMagnitude(m, true)
	return I32F32{bits: v}
}

// ToU16 truncates toward negative infinity and panics with ErrConversionOverflow when
// the result lies outside [0, 65535].
func (a I32F32) ToU16() uint16 {
	n := a.Int()
	if n < 0 || n > math.MaxUint16 {
		panic(fmt.Errorf("%w: %s does not fit in u16", ErrConversionOverflow, a))
	}
	return uint16(n)
}

// ToU16Saturating truncates and clamps into [0, 65535].
func (a I32F32) ToU16Saturating() uint16 {
	n := a.Int()
	switch {
	case n < 0:
		return 0
	case n > math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(n)
}

// ToU64Saturating truncates; negative values map to 0.
func (a I32F32) ToU64Saturating() uint64 {
	n := a.Int()
	if n < 0 {
		return 0
	}
	return uint64(n)
}

func saturated32(positive bool) I32F32 {
	if positive {
		return Max32
	}
	return Min32
}

func addInt64(a, b int64) (int64, bool) {
	s := a + b
	if (a >= 0) == (b >= 0) && (s >= 0) != (a >= 0) {
		return s, false
	}
	return s, true
}

func subInt64(a, b int64) (int64, bool) {
	s := a - b
	if (a >= 0) != (b >= 0) && (s >= 0) != (a >= 0) {
		return s, false
	}
	return s, true
}

// magnitude returns |x| as a uint64, exact for math.MinInt64.
func magnitude(x int64) uint64 {
	if x < 0 {
		return ^uint64(x) + 1
	}
	return uint64(x)
}

func signedFromMagnitude(mag uint64, neg bool) (int64, bool) {
	if neg {
		if mag > 1<<63 {
			return math.MinInt64, false
		}
		return int64(^mag + 1), true
	}
	if mag > math.MaxInt64 {
		return math.MaxInt64, false
	}
	return int64(mag), true
}

package yumamath

import (
	"math"

	"github.com/tensorplex-labs/yuma/pkg/fixed"
)

var (
	u16Max        = fixed.FromInt(math.MaxUint16)
	upscaleCutoff = fixed.FromInt(32768)
)

// Fixed converts a float literal, rounding to the nearest representable value.
func Fixed(f float64) fixed.I32F32 { return fixed.FromFloat(f) }

// FixedToU16 truncates x and panics with fixed.ErrConversionOverflow outside [0, 65535].
func FixedToU16(x fixed.I32F32) uint16 { return x.ToU16() }

// FixedToU64 truncates x; negative values become 0.
func FixedToU64(x fixed.I32F32) uint64 { return x.ToU64Saturating() }

// Fixed64ToU64 truncates x; negative values become 0.
func Fixed64ToU64(x fixed.I64F64) uint64 { return x.ToU64Saturating() }

func Fixed32ToFixed64(x fixed.I32F32) fixed.I64F64 { return fixed.Widen(x) }

// Fixed64ToFixed32 saturates when x is outside the I32F32 range.
func Fixed64ToFixed32(x fixed.I64F64) fixed.I32F32 { return fixed.Narrow(x) }

func U16ToFixed(x uint16) fixed.I32F32 { return fixed.FromUint(uint64(x)) }

// U16ProportionToFixed reads x as the fraction x/65535.
func U16ProportionToFixed(x uint16) fixed.I32F32 {
	return U16ToFixed(x).SaturatingDiv(u16Max)
}

// FixedProportionToU16 scales x by 65535 and truncates, saturating into [0, 65535].
func FixedProportionToU16(x fixed.I32F32) uint16 {
	return x.SaturatingMul(u16Max).ToU16Saturating()
}

func VecFixed32ToU64(v Vector) []uint64 {
	out := make([]uint64, len(v))
	for i, x := range v {
		out[i] = FixedToU64(x)
	}
	return out
}

func VecFixed64ToU64(v Vector64) []uint64 {
	out := make([]uint64, len(v))
	for i, x := range v {
		out[i] = Fixed64ToU64(x)
	}
	return out
}

func VecFixed32ToFixed64(v Vector) Vector64 {
	out := make(Vector64, len(v))
	for i, x := range v {
		out[i] = fixed.Widen(x)
	}
	return out
}

func VecFixed64ToFixed32(v Vector64) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = fixed.Narrow(x)
	}
	return out
}

// VecFixedToU16 converts every element with FixedToU16; any out-of-range element
// panics for the whole call.
func VecFixedToU16(v Vector) []uint16 {
	out := make([]uint16, len(v))
	for i, x := range v {
		out[i] = FixedToU16(x)
	}
	return out
}

func VecU16ProportionsToFixed(v []uint16) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = U16ProportionToFixed(x)
	}
	return out
}

func VecFixedProportionsToU16(v Vector) []uint16 {
	out := make([]uint16, len(v))
	for i, x := range v {
		out[i] = FixedProportionToU16(x)
	}
	return out
}

// VecMaxUpscaleToU16 rescales v so its maximum maps to 65535, rounding to nearest.
// Maxima above 32768 multiply by the ratio 65535/max, smaller maxima multiply by
// 65535 and divide by max afterwards. Encoded outputs depend on this order.
func VecMaxUpscaleToU16(v Vector) []uint16 {
	out := make([]uint16, len(v))
	if len(v) == 0 {
		return out
	}
	maxVal := v[0]
	for _, x := range v[1:] {
		maxVal = fixed.Max32Of(maxVal, x)
	}
	switch {
	case maxVal.IsZero():
		for i, x := range v {
			out[i] = x.SaturatingMul(u16Max).ToU16Saturating()
		}
	case maxVal.Greater(upscaleCutoff):
		ratio := u16Max.SaturatingDiv(maxVal)
		for i, x := range v {
			out[i] = x.SaturatingMul(ratio).Round().ToU16Saturating()
		}
	default:
		for i, x := range v {
			out[i] = x.SaturatingMul(u16Max).SaturatingDiv(maxVal).Round().ToU16Saturating()
		}
	}
	return out
}

func VecU16MaxUpscaleToU16(v []uint16) []uint16 {
	f := make(Vector, len(v))
	for i, x := range v {
		f[i] = U16ToFixed(x)
	}
	return VecMaxUpscaleToU16(f)
}

// CheckVecMaxLimited reports whether the largest element of v, once v is normalized,
// does not exceed maxLimit/65535. An empty vector passes.
func CheckVecMaxLimited(v []uint16, maxLimit uint16) bool {
	if len(v) == 0 {
		return true
	}
	limit := U16ToFixed(maxLimit).SaturatingDiv(u16Max)
	f := make(Vector, len(v))
	for i, x := range v {
		f[i] = U16ToFixed(x)
	}
	InplaceNormalize(f)
	maxVal := f[0]
	for _, x := range f[1:] {
		maxVal = fixed.Max32Of(maxVal, x)
	}
	return maxVal.LessEq(limit)
}

package yumamath

import "github.com/tensorplex-labs/yuma/pkg/fixed"

var (
	expSafeMin = fixed.FromInt(-20)
	expSafeMax = fixed.FromInt(20)
)

// ExpSafe returns e^x with x clamped into [-20, 20]. It is defined for every input,
// including the bounds of I32F32.
func ExpSafe(x fixed.I32F32) fixed.I32F32 {
	in := fixed.Min32Of(fixed.Max32Of(x, expSafeMin), expSafeMax)
	out, ok := fixed.Exp(in)
	if ok {
		return out
	}
	if in.LessEq(fixed.Zero32) {
		return fixed.Zero32
	}
	return fixed.Max32
}

// SigmoidSafe returns 1 / (1 + e^(-rho*(x-kappa))) using saturating arithmetic
// throughout. It is exactly 0.5 at x == kappa.
func SigmoidSafe(x, rho, kappa fixed.I32F32) fixed.I32F32 {
	offset := x.SaturatingSub(kappa)
	negRho := rho.SaturatingMul(fixed.One32.SaturatingNeg())
	e := ExpSafe(negRho.SaturatingMul(offset))
	return fixed.One32.SaturatingDiv(e.SaturatingAdd(fixed.One32))
}

// SafeExp returns e^x, or 0 when the result overflows.
func SafeExp(x fixed.I32F32) fixed.I32F32 {
	out, ok := fixed.Exp(x)
	if !ok {
		return fixed.Zero32
	}
	return out
}

// SafeLn returns ln(x), or 0 for x <= 0.
func SafeLn(x fixed.I32F32) fixed.I32F32 {
	out, ok := fixed.Ln(x)
	if !ok {
		return fixed.Zero32
	}
	return out
}

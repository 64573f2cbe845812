package consensus

import (
	"fmt"

	"github.com/tensorplex-labs/yuma/pkg/chain"
	"github.com/tensorplex-labs/yuma/pkg/fixed"
	"github.com/tensorplex-labs/yuma/pkg/yumamath"
)

const bondsMovingAverageScale = 1_000_000

// Params are the subnet hyperparameters used when a snapshot does not carry its own.
// Kappa and BondAlpha are u16 proportions of 65535. Stake below MinStake (in rao) is
// ignored.
type Params struct {
	Kappa     uint16
	BondAlpha uint16
	MinStake  uint64
}

// Inputs is a snapshot converted to fixed point and ready to evaluate. Weights and
// Bonds have one row per uid and N columns.
type Inputs struct {
	N           int
	Stake       yumamath.Vector
	ActiveStake yumamath.Vector
	Weights     yumamath.SparseMatrix
	Bonds       yumamath.SparseMatrix
	Kappa       fixed.I32F32
	BondAlpha   fixed.I32F32
}

// BondAlphaFromMovingAverage converts the chain's bonds_moving_average, a value in
// millionths, into the EMA weight given to new bonds: 1 - bma/1e6, floored at zero.
func BondAlphaFromMovingAverage(bma uint64) fixed.I32F32 {
	ratio := fixed.Narrow(fixed.FromRatio(bma, bondsMovingAverageScale))
	return fixed.Max32Of(fixed.One32.SaturatingSub(ratio), fixed.Zero32)
}

// NormalizeStake divides every stake by the total in 64 fractional bits before
// narrowing. A zero total gives zero stake. Totals that overflow u64 are rejected.
func NormalizeStake(stake []uint64) (yumamath.Vector, error) {
	total, ok := yumamath.CheckedSum(stake)
	if !ok {
		return nil, fmt.Errorf("total stake overflows u64")
	}
	out := make(yumamath.Vector, len(stake))
	if total == 0 {
		return out, nil
	}
	for i, s := range stake {
		out[i] = fixed.Narrow(fixed.FromRatio(s, total))
	}
	return out, nil
}

func checkMaskLen(name string, mask []bool, n int) error {
	if len(mask) != 0 && len(mask) != n {
		return fmt.Errorf("%s has %d entries, want %d", name, len(mask), n)
	}
	return nil
}

func emptyRows(n int) yumamath.SparseMatrix {
	m := make(yumamath.SparseMatrix, n)
	for i := range m {
		m[i] = yumamath.SparseRow{}
	}
	return m
}

func negate(mask []bool) []bool {
	out := make([]bool, len(mask))
	for i, b := range mask {
		out[i] = !b
	}
	return out
}

// BuildInputs validates s and converts it into fixed-point inputs.
//
// Stake under the minimum counts as zero. Active stake is the normalized stake with
// inactive and non-permitted uids zeroed, renormalized. Weights from non-permitted validators and self weights are dropped
// before each row is normalized to sum to one. Previous bonds are read as u16
// proportions and column normalized.
func BuildInputs(s *Snapshot, p Params) (*Inputs, error) {
	n := len(s.Stake)
	if n > 1<<16 {
		return nil, fmt.Errorf("snapshot has %d uids, at most 65536 fit a u16 uid", n)
	}
	if err := checkMaskLen("active", s.Active, n); err != nil {
		return nil, err
	}
	if err := checkMaskLen("validatorPermit", s.ValidatorPermit, n); err != nil {
		return nil, err
	}

	rows, err := s.WeightRows()
	if err != nil {
		return nil, err
	}
	if len(rows) != 0 && len(rows) != n {
		return nil, fmt.Errorf("snapshot has %d weight rows for %d uids", len(rows), n)
	}
	if len(s.Bonds) != 0 && len(s.Bonds) != n {
		return nil, fmt.Errorf("snapshot has %d bond rows for %d uids", len(s.Bonds), n)
	}

	filtered := make([]uint64, n)
	for i, st := range s.Stake {
		if st >= p.MinStake {
			filtered[i] = st
		}
	}
	stake, err := NormalizeStake(filtered)
	if err != nil {
		return nil, err
	}

	activeStake := append(yumamath.Vector{}, stake...)
	if len(s.Active) != 0 {
		yumamath.InplaceMaskVector(negate(s.Active), activeStake)
	}
	forbids := make([]bool, n)
	if len(s.ValidatorPermit) != 0 {
		forbids = negate(s.ValidatorPermit)
	}
	yumamath.InplaceMaskVector(forbids, activeStake)
	yumamath.InplaceNormalize(activeStake)

	weights := chain.SparseWeights(rows, n)
	if len(rows) == 0 {
		weights = emptyRows(n)
	}
	weights = yumamath.MaskRowsSparse(forbids, weights)
	weights = yumamath.MaskDiagSparse(weights)
	yumamath.InplaceRowNormalizeSparse(weights)

	bonds := emptyRows(n)
	for i, row := range s.Bonds {
		bonds[i] = row.SparseProportions(n)
	}
	yumamath.InplaceColNormalizeSparse(bonds, n)

	kappa := p.Kappa
	if s.Kappa != nil {
		kappa = *s.Kappa
	}
	alpha := yumamath.U16ProportionToFixed(p.BondAlpha)
	if s.BondsMovingAverage != nil {
		alpha = BondAlphaFromMovingAverage(*s.BondsMovingAverage)
	}

	return &Inputs{
		N:           n,
		Stake:       stake,
		ActiveStake: activeStake,
		Weights:     weights,
		Bonds:       bonds,
		Kappa:       yumamath.U16ProportionToFixed(kappa),
		BondAlpha:   alpha,
	}, nil
}

package consensus

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/yuma/pkg/yumamath"
)

type Options struct {
	// Dense runs the epoch on dense matrices instead of the sparse representation.
	// Both produce identical results.
	Dense bool
}

// Result holds the epoch outputs in fixed point. ClippedWeights and Bonds have one
// row per uid.
type Result struct {
	Consensus      yumamath.Vector
	ClippedWeights yumamath.SparseMatrix
	Rank           yumamath.Vector
	Trust          yumamath.Vector
	ValidatorTrust yumamath.Vector
	Incentive      yumamath.Vector
	Bonds          yumamath.SparseMatrix
}

// recoverError turns a panic raised by the math layer into an error. Errors keep
// their chain so callers can match the package sentinels.
func recoverError(op string, recovered any, err *error) {
	if recovered == nil {
		return
	}
	if e, ok := recovered.(error); ok {
		*err = fmt.Errorf("%s: %w", op, e)
	} else {
		*err = fmt.Errorf("%s: %v", op, recovered)
	}
	log.Error().Err(*err).Msg("consensus evaluation aborted")
}

// Evaluate runs one epoch over in.
//
// consensus is the kappa-majority stake-weighted median of every column, weights
// are clipped to it, rank is the stake-weighted column sum of the clipped weights
// (normalized into the incentive), trust is rank over the unclipped column sum and
// validator trust the row sum of clipped weights. Bonds move towards the column
// normalized stake-weighted clipped weights by BondAlpha.
func Evaluate(ctx context.Context, in *Inputs, opts Options) (res *Result, err error) {
	if in == nil {
		return nil, errors.New("evaluate epoch: nil inputs")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluate epoch: %w", err)
	}
	defer func() { recoverError("evaluate epoch", recover(), &err) }()

	log.Debug().
		Int("uids", in.N).
		Bool("dense", opts.Dense).
		Str("kappa", in.Kappa.String()).
		Str("bond_alpha", in.BondAlpha.String()).
		Msg("evaluating epoch")

	if opts.Dense {
		res = evaluateDense(in)
	} else {
		res = evaluateSparse(in)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluate epoch: %w", err)
	}
	return res, nil
}

func traceVector(name string, v yumamath.Vector) {
	if e := log.Trace(); e.Enabled() {
		e.Floats64(name, v.Floats()).Msg(name)
	}
}

func evaluateSparse(in *Inputs) *Result {
	n, stake, weights := in.N, in.ActiveStake, in.Weights

	preranks := yumamath.MatmulSparse(weights, stake, n)
	consensus := yumamath.WeightedMedianColSparse(stake, weights, n, in.Kappa)
	traceVector("consensus", consensus)

	clipped := yumamath.ColClipSparse(weights, consensus)
	validatorTrust := yumamath.RowSumSparse(clipped)

	ranks := yumamath.MatmulSparse(clipped, stake, n)
	trust := yumamath.VecDiv(ranks, preranks)
	yumamath.InplaceNormalize(ranks)
	incentive := append(yumamath.Vector{}, ranks...)

	delta := yumamath.RowHadamardSparse(clipped, stake)
	yumamath.InplaceColNormalizeSparse(delta, n)
	bonds := yumamath.MatEmaSparse(delta, in.Bonds, in.BondAlpha)
	yumamath.InplaceColNormalizeSparse(bonds, n)

	return &Result{
		Consensus:      consensus,
		ClippedWeights: clipped,
		Rank:           ranks,
		Trust:          trust,
		ValidatorTrust: validatorTrust,
		Incentive:      incentive,
		Bonds:          bonds,
	}
}

func evaluateDense(in *Inputs) *Result {
	n, stake := in.N, in.ActiveStake
	weights := in.Weights.Dense(n)

	preranks := yumamath.Matmul(weights, stake)
	consensus := yumamath.WeightedMedianCol(stake, weights, in.Kappa)
	traceVector("consensus", consensus)

	clipped := weights.Dense(n)
	yumamath.InplaceColClip(clipped, consensus)
	validatorTrust := yumamath.RowSum(clipped)

	ranks := yumamath.Matmul(clipped, stake)
	trust := yumamath.VecDiv(ranks, preranks)
	yumamath.InplaceNormalize(ranks)
	incentive := append(yumamath.Vector{}, ranks...)

	delta := yumamath.RowHadamard(clipped, stake)
	yumamath.InplaceColNormalize(delta)
	bonds := yumamath.MatEma(delta, in.Bonds.Dense(n), in.BondAlpha)
	yumamath.InplaceColNormalize(bonds)

	return &Result{
		Consensus:      consensus,
		ClippedWeights: clipped.Sparse(),
		Rank:           ranks,
		Trust:          trust,
		ValidatorTrust: validatorTrust,
		Incentive:      incentive,
		Bonds:          bonds.Sparse(),
	}
}

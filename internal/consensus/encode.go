package consensus

import (
	"github.com/tensorplex-labs/yuma/pkg/chain"
	"github.com/tensorplex-labs/yuma/pkg/yumamath"
)

// Output is a Result in the u16 encodings the chain stores. Vectors are proportions
// of 65535, clipped weight rows are max-upscaled like submitted weights, and bond
// rows are proportions.
type Output struct {
	Consensus      []uint16          `json:"consensus"`
	Rank           []uint16          `json:"rank"`
	Trust          []uint16          `json:"trust"`
	ValidatorTrust []uint16          `json:"validatorTrust"`
	Incentive      []uint16          `json:"incentive"`
	ClippedWeights []chain.WeightRow `json:"clippedWeights"`
	Bonds          []chain.WeightRow `json:"bonds"`
}

func Encode(res *Result) *Output {
	out := &Output{
		Consensus:      yumamath.VecFixedProportionsToU16(res.Consensus),
		Rank:           yumamath.VecFixedProportionsToU16(res.Rank),
		Trust:          yumamath.VecFixedProportionsToU16(res.Trust),
		ValidatorTrust: yumamath.VecFixedProportionsToU16(res.ValidatorTrust),
		Incentive:      yumamath.VecFixedProportionsToU16(res.Incentive),
		ClippedWeights: make([]chain.WeightRow, len(res.ClippedWeights)),
		Bonds:          make([]chain.WeightRow, len(res.Bonds)),
	}
	for i, row := range res.ClippedWeights {
		out.ClippedWeights[i] = chain.WeightRowFromSparse(row)
	}
	for i, row := range res.Bonds {
		out.Bonds[i] = chain.ProportionsFromSparse(row)
	}
	return out
}

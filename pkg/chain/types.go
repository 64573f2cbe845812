// Package chain holds the subtensor data shapes the consensus evaluator reads: Kami
// responses for the metagraph, hyperparameters and latest block, and the SCALE encoded
// weight rows validators submit.
package chain

import "math/big"

// RaoPerTao is the number of indivisible stake units in one TAO.
const RaoPerTao = 1_000_000_000

// HexOrInt handles fields that can be either a number or a hex string.
// It uses big.Int internally to handle arbitrarily large values without overflow.
type HexOrInt struct {
	Value *big.Int
}

type KamiResponse[T any] struct {
	StatusCode int            `json:"statusCode"`
	Success    bool           `json:"success"`
	Data       T              `json:"data"`
	Error      map[string]any `json:"error"`
}

type (
	SubnetMetagraphResponse   = KamiResponse[SubnetMetagraph]
	SubnetHyperparamsResponse = KamiResponse[SubnetHyperparams]
	LatestBlockResponse       = KamiResponse[LatestBlock]
)

// SubnetMetagraph is the part of the Kami subnet metagraph the evaluator uses.
// Stake vectors are in TAO.
type SubnetMetagraph struct {
	Netuid          int       `json:"netuid"`
	Name            string    `json:"name"`
	Block           int       `json:"block"`
	Tempo           int       `json:"tempo"`
	NumUids         int       `json:"numUids"`
	MaxUids         int       `json:"maxUids"`
	Rho             float64   `json:"rho"`
	Kappa           float64   `json:"kappa"`
	Difficulty      HexOrInt  `json:"difficulty"`
	ActivityCutoff  int       `json:"activityCutoff"`
	MaxValidators   int       `json:"maxValidators"`
	Hotkeys         []string  `json:"hotkeys"`
	Coldkeys        []string  `json:"coldkeys"`
	Active          []bool    `json:"active"`
	ValidatorPermit []bool    `json:"validatorPermit"`
	LastUpdate      []int     `json:"lastUpdate"`
	Consensus       []float64 `json:"consensus"`
	Trust           []float64 `json:"trust"`
	Rank            []float64 `json:"rank"`
	Incentives      []float64 `json:"incentives"`
	AlphaStake      []float64 `json:"alphaStake"`
	TaoStake        []float64 `json:"taoStake"`
	TotalStake      []float64 `json:"totalStake"`
}

type SubnetHyperparams struct {
	Rho                  float64 `json:"rho"`
	Kappa                float64 `json:"kappa"`
	Tempo                int     `json:"tempo"`
	ImmunityPeriod       int     `json:"immunityPeriod"`
	MinAllowedWeights    int     `json:"minAllowedWeights"`
	MaxWeightsLimit      int     `json:"maxWeightsLimit"`
	ActivityCutoff       int     `json:"activityCutoff"`
	MaxValidators        int     `json:"maxValidators"`
	BondsMovingAvg       int64   `json:"bondsMovingAvg"`
	LiquidAlphaEnabled   bool    `json:"liquidAlphaEnabled"`
	AlphaHigh            float64 `json:"alphaHigh"`
	AlphaLow             float64 `json:"alphaLow"`
	CommitRevealPeriod   int     `json:"commitRevealPeriod"`
	CommitRevealsEnabled bool    `json:"commitRevealWeightsEnabled"`
}

type LatestBlock struct {
	ParentHash     string `json:"parentHash"`
	BlockNumber    int    `json:"blockNumber"`
	StateRoot      string `json:"stateRoot"`
	ExtrinsicsRoot string `json:"extrinsicsRoot"`
}

// WeightEntry is one (uid, weight) pair of a validator's weight row.
type WeightEntry struct {
	UID    uint16
	Weight uint16
}

// WeightRow is the Vec<(u16, u16)> a validator stores on chain.
type WeightRow []WeightEntry

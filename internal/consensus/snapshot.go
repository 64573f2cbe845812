// Package consensus evaluates a Yuma consensus epoch over a subnet snapshot: the
// stake-weighted median of validator weights, the clipped weights it implies, and the
// rank, trust, incentive and bond vectors that follow from them.
package consensus

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"

	"github.com/tensorplex-labs/yuma/pkg/chain"
)

// Snapshot is the subnet state an epoch runs on. Weights are given either as
// [uid, weight] tuples or as hex SCALE encoded rows, one row per uid. Optional fields
// left empty take their defaults: everyone active and permitted, no previous bonds,
// kappa and bond alpha from the evaluator's parameters.
type Snapshot struct {
	Netuid int `json:"netuid"`
	Block  int `json:"block"`

	Kappa              *uint16 `json:"kappa,omitempty"`
	BondsMovingAverage *uint64 `json:"bondsMovingAverage,omitempty"`

	Stake           []uint64          `json:"stake"`
	Active          []bool            `json:"active,omitempty"`
	ValidatorPermit []bool            `json:"validatorPermit,omitempty"`
	Weights         []chain.WeightRow `json:"weights,omitempty"`
	WeightsSCALE    []string          `json:"weightsScale,omitempty"`
	Bonds           []chain.WeightRow `json:"bonds,omitempty"`
}

// WeightRows returns the snapshot's weight rows, decoding the SCALE form when that is
// the one present.
func (s *Snapshot) WeightRows() ([]chain.WeightRow, error) {
	if len(s.WeightsSCALE) == 0 {
		return s.Weights, nil
	}
	if len(s.Weights) > 0 {
		return nil, fmt.Errorf("snapshot sets both weights and weightsScale")
	}
	rows := make([]chain.WeightRow, len(s.WeightsSCALE))
	for i, enc := range s.WeightsSCALE {
		row, err := chain.DecodeWeightRowHex(enc)
		if err != nil {
			return nil, fmt.Errorf("weights row %d: %w", i, err)
		}
		rows[i] = row
	}
	return rows, nil
}

func isZstd(path string) bool { return strings.HasSuffix(path, ".zst") }

// LoadSnapshot reads a JSON snapshot, decompressing files ending in .zst.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return DecodeSnapshot(data, isZstd(path))
}

func DecodeSnapshot(data []byte, compressed bool) (*Snapshot, error) {
	if compressed {
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zstd: new reader: %w", err)
		}
		defer r.Close()
		data, err = io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: decompress snapshot: %w", err)
		}
	}

	var s Snapshot
	if err := sonic.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// SaveSnapshot writes s as JSON, compressed when path ends in .zst.
func SaveSnapshot(path string, s *Snapshot) error {
	data, err := sonic.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if isZstd(path) {
		var buf bytes.Buffer
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("zstd: new writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			_ = w.Close()
			return fmt.Errorf("zstd: compress snapshot: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("zstd: close writer: %w", err)
		}
		data = buf.Bytes()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ApplyChainState replaces the chain-sourced parts of s with cs: stake, activity,
// validator permits, kappa and the bonds moving average. Weights and bonds are kept.
func (s *Snapshot) ApplyChainState(cs *chain.ChainState) {
	metagraph := cs.Metagraph()
	hyperparams := cs.Hyperparams()
	stake, kappa := cs.Stake()

	s.Netuid = cs.Netuid()
	s.Block = cs.Block()
	s.Stake = stake
	s.Active = metagraph.Active
	s.ValidatorPermit = metagraph.ValidatorPermit
	s.Kappa = &kappa
	if hyperparams.BondsMovingAvg > 0 {
		bma := uint64(hyperparams.BondsMovingAvg)
		s.BondsMovingAverage = &bma
	}
}

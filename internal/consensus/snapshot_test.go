package consensus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/yuma/pkg/chain"
)

const snapshotJSON = `{
	"netuid": 98,
	"block": 1000,
	"kappa": 32767,
	"stake": [3000000000, 1000000000, 0, 0],
	"weights": [[[2, 65535], [3, 65535]], [[2, 65535]], [], []]
}`

func TestDecodeSnapshot(t *testing.T) {
	s, err := DecodeSnapshot([]byte(snapshotJSON), false)
	require.NoError(t, err)

	assert.Equal(t, 98, s.Netuid)
	assert.Equal(t, 1000, s.Block)
	require.NotNil(t, s.Kappa)
	assert.Equal(t, uint16(32767), *s.Kappa)
	assert.Nil(t, s.BondsMovingAverage)
	assert.Equal(t, []uint64{3_000_000_000, 1_000_000_000, 0, 0}, s.Stake)
	require.Len(t, s.Weights, 4)
	assert.Equal(t, chain.WeightRow{{2, 65535}, {3, 65535}}, s.Weights[0])
	assert.Empty(t, s.Weights[3])

	rows, err := s.WeightRows()
	require.NoError(t, err)
	assert.Equal(t, s.Weights, rows)
}

func TestDecodeSnapshot_Scale(t *testing.T) {
	s, err := DecodeSnapshot([]byte(`{"stake":[1,1],"weightsScale":["0x04010000ff","0x00"]}`), false)
	require.NoError(t, err)

	rows, err := s.WeightRows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, chain.WeightRow{{1, 0xff00}}, rows[0])
	assert.Empty(t, rows[1])
}

func TestDecodeSnapshot_Errors(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"stake":`), false)
	assert.Error(t, err)
	_, err = DecodeSnapshot([]byte(`{"stake":[-1]}`), false)
	assert.Error(t, err)
	_, err = DecodeSnapshot([]byte(snapshotJSON), true)
	assert.Error(t, err)
}

func TestSaveLoadSnapshot(t *testing.T) {
	want, err := DecodeSnapshot([]byte(snapshotJSON), false)
	require.NoError(t, err)

	for _, name := range []string{"epoch.json", "epoch.json.zst"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, SaveSnapshot(path, want))

		got, err := LoadSnapshot(path)
		require.NoError(t, err, name)
		assert.Equal(t, want.Netuid, got.Netuid, name)
		assert.Equal(t, want.Kappa, got.Kappa, name)
		assert.Equal(t, want.Stake, got.Stake, name)
		assert.Equal(t, want.Weights[:2], got.Weights[:2], name)
	}

	_, err = LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSaveSnapshot_Compressed(t *testing.T) {
	s, err := DecodeSnapshot([]byte(snapshotJSON), false)
	require.NoError(t, err)

	dir := t.TempDir()
	plain, packed := filepath.Join(dir, "a.json"), filepath.Join(dir, "a.json.zst")
	require.NoError(t, SaveSnapshot(plain, s))
	require.NoError(t, SaveSnapshot(packed, s))

	data, err := os.ReadFile(packed)
	require.NoError(t, err)
	// zstd frame magic
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, data[:4])

	_, err = DecodeSnapshot(data, false)
	assert.Error(t, err)
	fromPacked, err := DecodeSnapshot(data, true)
	require.NoError(t, err)
	fromPlain, err := LoadSnapshot(plain)
	require.NoError(t, err)
	assert.Equal(t, fromPlain, fromPacked)
}

func TestApplyChainState(t *testing.T) {
	s, err := DecodeSnapshot([]byte(snapshotJSON), false)
	require.NoError(t, err)

	cs := chain.NewChainState(98)
	cs.UpdateBlock(2000)
	cs.UpdateMetagraph(chain.SubnetMetagraph{
		Netuid:          98,
		Active:          []bool{true, true, false, true},
		ValidatorPermit: []bool{true, true, false, false},
		TotalStake:      []float64{1, 1, 0.5, 0},
	})
	cs.UpdateHyperparams(chain.SubnetHyperparams{Kappa: 0.5, BondsMovingAvg: 900_000})

	s.ApplyChainState(cs)
	assert.Equal(t, 2000, s.Block)
	assert.Equal(t, []uint64{1_000_000_000, 1_000_000_000, 500_000_000, 0}, s.Stake)
	assert.Equal(t, []bool{true, true, false, false}, s.ValidatorPermit)
	require.NotNil(t, s.Kappa)
	assert.Equal(t, uint16(32768), *s.Kappa)
	require.NotNil(t, s.BondsMovingAverage)
	assert.Equal(t, uint64(900_000), *s.BondsMovingAverage)
	assert.Len(t, s.Weights, 4)

	_, err = BuildInputs(s, params)
	assert.NoError(t, err)
}

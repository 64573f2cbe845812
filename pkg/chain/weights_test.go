package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/yuma/pkg/yumamath"
)

func TestEncodeWeightRow(t *testing.T) {
	cases := []struct {
		row  WeightRow
		want []byte
	}{
		{WeightRow{}, []byte{0x00}},
		{WeightRow{{UID: 1, Weight: 65535}}, []byte{0x04, 0x01, 0x00, 0xff, 0xff}},
		{WeightRow{{UID: 0, Weight: 1}, {UID: 300, Weight: 2}}, []byte{0x08, 0x00, 0x00, 0x01, 0x00, 0x2c, 0x01, 0x02, 0x00}},
	}
	for _, tc := range cases {
		got, err := EncodeWeightRow(tc.row)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)

		decoded, err := DecodeWeightRow(got)
		require.NoError(t, err)
		if len(tc.row) == 0 {
			assert.Empty(t, decoded)
			continue
		}
		assert.Equal(t, tc.row, decoded)
	}
}

func TestDecodeWeightRowHex(t *testing.T) {
	row, err := DecodeWeightRowHex("0x040100ffff")
	require.NoError(t, err)
	assert.Equal(t, WeightRow{{UID: 1, Weight: 65535}}, row)

	_, err = DecodeWeightRowHex("0xzz")
	assert.Error(t, err)
}

func TestWeightRowSparse(t *testing.T) {
	row := WeightRow{{3, 5}, {0, 7}, {9, 1}, {0, 8}, {2, 0}}
	assert.Error(t, row.Validate())

	want := yumamath.SparseRow{
		{Col: 0, Value: yumamath.U16ToFixed(7)},
		{Col: 3, Value: yumamath.U16ToFixed(5)},
	}
	assert.Equal(t, want, row.Sparse(4))
	assert.Empty(t, row.Sparse(0))

	m := SparseWeights([]WeightRow{row, {}}, 4)
	require.Len(t, m, 2)
	assert.Equal(t, want, m[0])
	assert.Empty(t, m[1])
}

func TestWeightRowFromSparse(t *testing.T) {
	row := WeightRow{{0, 65535}, {1, 32768}, {5, 1}}
	require.NoError(t, row.Validate())
	assert.Equal(t, row, WeightRowFromSparse(row.Sparse(6)))

	got := WeightRowFromSparse(yumamath.SparseRow{
		{Col: 1, Value: yumamath.Fixed(0.25)},
		{Col: 4, Value: yumamath.Fixed(0.5)},
	})
	assert.Equal(t, WeightRow{{1, 32768}, {4, 65535}}, got)
	assert.Empty(t, WeightRowFromSparse(nil))
}

func TestConvertWeightsAndUidsForEmit(t *testing.T) {
	row, err := ConvertWeightsAndUidsForEmit([]uint16{1, 2, 3}, []float64{0.5, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, WeightRow{{1, 32768}, {2, 65535}}, row)

	row, err = ConvertWeightsAndUidsForEmit(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, row)

	row, err = ConvertWeightsAndUidsForEmit([]uint16{5}, []float64{0})
	require.NoError(t, err)
	assert.Empty(t, row)

	_, err = ConvertWeightsAndUidsForEmit([]uint16{1}, []float64{0.5, 0.5})
	assert.Error(t, err)
	_, err = ConvertWeightsAndUidsForEmit([]uint16{1, 2}, []float64{0.5, -0.5})
	assert.Error(t, err)
	_, err = ConvertWeightsAndUidsForEmit([]uint16{1, 1}, []float64{0.5, 1})
	assert.Error(t, err)
}

func TestProportions(t *testing.T) {
	row := WeightRow{{2, 65535}, {0, 32768}, {4, 1}}
	sparse := row.SparseProportions(4)
	require.Len(t, sparse, 2)
	assert.Equal(t, yumamath.SparseEntry{Col: 0, Value: yumamath.U16ProportionToFixed(32768)}, sparse[0])
	assert.Equal(t, yumamath.SparseEntry{Col: 2, Value: yumamath.Fixed(1)}, sparse[1])

	got := ProportionsFromSparse(yumamath.SparseRow{
		{Col: 0, Value: yumamath.Fixed(0.5)},
		{Col: 3, Value: yumamath.Fixed(1)},
		{Col: 5, Value: yumamath.Fixed(0.00001)},
	})
	assert.Equal(t, WeightRow{{0, 32767}, {3, 65535}}, got)
}

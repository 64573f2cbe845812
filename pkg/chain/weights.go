package chain

import (
	"cmp"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/tensorplex-labs/yuma/pkg/fixed"
	"github.com/tensorplex-labs/yuma/pkg/yumamath"
)

// EncodeWeightRow returns the SCALE encoding of row, a compact length followed by
// little endian (uid, weight) pairs.
func EncodeWeightRow(row WeightRow) ([]byte, error) {
	data, err := scale.Marshal([]WeightEntry(row))
	if err != nil {
		return nil, fmt.Errorf("encode weight row: %w", err)
	}
	return data, nil
}

// DecodeWeightRow parses a SCALE encoded Vec<(u16, u16)>.
func DecodeWeightRow(data []byte) (WeightRow, error) {
	var entries []WeightEntry
	if err := scale.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode weight row: %w", err)
	}
	return WeightRow(entries), nil
}

// DecodeWeightRowHex accepts the 0x prefixed hex strings RPC nodes return.
func DecodeWeightRowHex(s string) (WeightRow, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode weight row: invalid hex: %w", err)
	}
	return DecodeWeightRow(data)
}

// Validate reports duplicate uids.
func (r WeightRow) Validate() error {
	seen := make(map[uint16]struct{}, len(r))
	for _, e := range r {
		if _, ok := seen[e.UID]; ok {
			return fmt.Errorf("duplicate uid %d in weight row", e.UID)
		}
		seen[e.UID] = struct{}{}
	}
	return nil
}

// Sparse converts the row into raw (unnormalized) fixed-point cells over a subnet of
// n neurons. Uids outside the subnet and zero weights are dropped, repeated uids keep
// their first weight, and cells come out ordered by uid.
func (r WeightRow) Sparse(n int) yumamath.SparseRow {
	return r.sparse(n, yumamath.U16ToFixed)
}

// SparseProportions is Sparse with every weight read as the fraction w/65535, the
// way bonds are stored.
func (r WeightRow) SparseProportions(n int) yumamath.SparseRow {
	return r.sparse(n, yumamath.U16ProportionToFixed)
}

func (r WeightRow) sparse(n int, value func(uint16) fixed.I32F32) yumamath.SparseRow {
	out := make(yumamath.SparseRow, 0, len(r))
	seen := make(map[uint16]struct{}, len(r))
	for _, e := range r {
		if int(e.UID) >= n || e.Weight == 0 {
			continue
		}
		if _, ok := seen[e.UID]; ok {
			continue
		}
		seen[e.UID] = struct{}{}
		out = append(out, yumamath.SparseEntry{Col: e.UID, Value: value(e.Weight)})
	}
	slices.SortFunc(out, func(a, b yumamath.SparseEntry) int { return cmp.Compare(a.Col, b.Col) })
	return out
}

// SparseWeights converts every row with WeightRow.Sparse.
func SparseWeights(rows []WeightRow, n int) yumamath.SparseMatrix {
	m := make(yumamath.SparseMatrix, len(rows))
	for i, r := range rows {
		m[i] = r.Sparse(n)
	}
	return m
}

// ProportionsFromSparse encodes each cell as the u16 proportion floor(v*65535),
// the form bonds are stored in. Cells that encode to zero are left out.
func ProportionsFromSparse(row yumamath.SparseRow) WeightRow {
	out := make(WeightRow, 0, len(row))
	for _, e := range row {
		if w := yumamath.FixedProportionToU16(e.Value); w > 0 {
			out = append(out, WeightEntry{UID: e.Col, Weight: w})
		}
	}
	return out
}

// WeightRowFromSparse encodes a sparse row the way validators submit it: the largest
// weight becomes 65535 and cells that round to zero are left out.
func WeightRowFromSparse(row yumamath.SparseRow) WeightRow {
	values := make(yumamath.Vector, len(row))
	for i, e := range row {
		values[i] = e.Value
	}
	upscaled := yumamath.VecMaxUpscaleToU16(values)

	out := make(WeightRow, 0, len(row))
	for i, e := range row {
		if upscaled[i] > 0 {
			out = append(out, WeightEntry{UID: e.Col, Weight: upscaled[i]})
		}
	}
	return out
}

// ConvertWeightsAndUidsForEmit turns float scores into the row a validator emits.
// Negative weights or mismatched lengths are rejected. An all-zero input emits
// nothing.
func ConvertWeightsAndUidsForEmit(uids []uint16, weights []float64) (WeightRow, error) {
	if len(uids) != len(weights) {
		return nil, fmt.Errorf("uids and weights must have the same length, got %d and %d", len(uids), len(weights))
	}
	if len(uids) == 0 {
		return WeightRow{}, nil
	}

	row := make(yumamath.SparseRow, 0, len(uids))
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("weights cannot be negative: %v", weights)
		}
		row = append(row, yumamath.SparseEntry{Col: uids[i], Value: yumamath.Fixed(w)})
	}

	out := WeightRowFromSparse(row)
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

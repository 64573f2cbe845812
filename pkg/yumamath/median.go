package yumamath

import "github.com/tensorplex-labs/yuma/pkg/fixed"

// WeightedMedian returns the stake-weighted median of score over the candidate
// indices in partition: the pivot score whose stake band covers minority inside the
// cumulative stake segment [lo, hi].
//
// The pivot is always the score at the middle of the current partition so every
// node selects identically. The search loops instead of recursing, which bounds the
// stack on sorted input.
func WeightedMedian(stake, score Vector, partition []int, minority, lo, hi fixed.I32F32) fixed.I32F32 {
	for {
		switch len(partition) {
		case 0:
			return fixed.Zero32
		case 1:
			return score[partition[0]]
		}
		requireSameLen("weighted_median", len(stake), len(score))

		pivot := score[partition[len(partition)/2]]
		loStake, hiStake := fixed.Zero32, fixed.Zero32
		var lower, upper []int
		for _, idx := range partition {
			switch score[idx].Cmp(pivot) {
			case -1:
				loStake = loStake.SaturatingAdd(stake[idx])
				lower = append(lower, idx)
			case 1:
				hiStake = hiStake.SaturatingAdd(stake[idx])
				upper = append(upper, idx)
			}
		}

		loEdge := lo.SaturatingAdd(loStake)
		hiEdge := hi.SaturatingSub(hiStake)
		switch {
		case loEdge.LessEq(minority) && minority.Less(hiEdge):
			return pivot
		case minority.Less(loEdge) && len(lower) > 0:
			partition, hi = lower, loEdge
		case hiEdge.LessEq(minority) && len(upper) > 0:
			partition, lo = upper, hiEdge
		default:
			return pivot
		}
	}
}

// WeightedMedianCol computes the weighted median of every column of score over the
// validators (rows) with positive stake. Stake is renormalized over those rows and
// the minority target is the renormalized total minus majority.
func WeightedMedianCol(stake Vector, score DenseMatrix, majority fixed.I32F32) Vector {
	columns := score.NumCols()
	if columns == 0 {
		return Vector{}
	}
	requireSameLen("weighted_median_col", len(stake), len(score))
	median := make(Vector, columns)

	useStake := make(Vector, 0, len(stake))
	useScore := make(Vector, 0, len(stake))
	for c := 0; c < columns; c++ {
		useStake, useScore = useStake[:0], useScore[:0]
		for r, s := range stake {
			requireSameLen("weighted_median_col", columns, len(score[r]))
			if s.IsPositive() {
				useStake = append(useStake, s)
				useScore = append(useScore, score[r][c])
			}
		}
		if len(useStake) == 0 {
			continue
		}
		InplaceNormalize(useStake)
		sum := Sum(useStake)
		median[c] = WeightedMedian(useStake, useScore, indices(len(useStake)), sum.SaturatingSub(majority), fixed.Zero32, sum)
	}
	return median
}

// WeightedMedianColSparse is WeightedMedianCol over a sparse score matrix with the
// given number of columns.
func WeightedMedianColSparse(stake Vector, score SparseMatrix, columns int, majority fixed.I32F32) Vector {
	requireSameLen("weighted_median_col_sparse", len(stake), len(score))
	median := make(Vector, columns)

	useStake := make(Vector, 0, len(stake))
	for _, s := range stake {
		if s.IsPositive() {
			useStake = append(useStake, s)
		}
	}
	if len(useStake) == 0 {
		return median
	}
	InplaceNormalize(useStake)
	sum := Sum(useStake)
	minority := sum.SaturatingSub(majority)

	useScore := make([]Vector, columns)
	for c := range useScore {
		useScore[c] = make(Vector, len(useStake))
	}
	k := 0
	for r, s := range stake {
		if !s.IsPositive() {
			continue
		}
		for _, e := range score[r] {
			useScore[e.Col][k] = e.Value
		}
		k++
	}

	idx := indices(len(useStake))
	for c := range median {
		median[c] = WeightedMedian(useStake, useScore[c], idx, minority, fixed.Zero32, sum)
	}
	return median
}

func indices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

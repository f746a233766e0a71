// Package aggregate merges consistency and market adjustments into a single
// per-employee score and ranks employees by it.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/okian/fairpay/internal/domain/model"
	"github.com/okian/fairpay/internal/domain/types"
)

// Combine averages the two adjustments.
func Combine(consistency, market float64) float64 {
	return (consistency + market) / 2
}

// Aggregate ranks employees by descending combined score. Both inputs must be
// aligned with the same dataset; ties keep ascending index order.
func Aggregate(consistency, market []float64) (types.Ranking, error) {
	if len(consistency) != len(market) {
		return types.Ranking{}, fmt.Errorf("%w: %d consistency vs %d market adjustments",
			model.ErrMismatchedLength, len(consistency), len(market))
	}

	entries := make([]types.Entry, len(consistency))
	for i := range consistency {
		entries[i] = types.Entry{
			Index:       i,
			Consistency: consistency[i],
			Market:      market[i],
			Combined:    Combine(consistency[i], market[i]),
		}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Combined > entries[b].Combined
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return types.Ranking{Entries: entries}, nil
}

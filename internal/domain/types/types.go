// Package types contains ranking types shared by the aggregator and its consumers.
package types

// Entry is one employee's position in an aggregated ranking.
type Entry struct {
	Rank        int     `json:"rank"`
	Index       int     `json:"index"`
	Consistency float64 `json:"consistency"`
	Market      float64 `json:"market"`
	Combined    float64 `json:"combined"`
}

// Ranking is ordered by descending Combined score, ties by ascending Index.
type Ranking struct {
	Entries []Entry `json:"entries"`
}

// Len returns the number of ranked entries.
func (r Ranking) Len() int { return len(r.Entries) }

// Order returns the dataset indices in ranking order.
func (r Ranking) Order() []int {
	out := make([]int, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Index
	}
	return out
}

// ConsistencySeries returns consistency adjustments in ranking order.
func (r Ranking) ConsistencySeries() []float64 {
	out := make([]float64, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Consistency
	}
	return out
}

// MarketSeries returns market adjustments in ranking order.
func (r Ranking) MarketSeries() []float64 {
	out := make([]float64, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Market
	}
	return out
}

// CombinedSeries returns combined scores in ranking order.
func (r Ranking) CombinedSeries() []float64 {
	out := make([]float64, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Combined
	}
	return out
}

// Top returns at most n leading entries.
func (r Ranking) Top(n int) []Entry {
	if n < 0 {
		n = 0
	}
	if n > len(r.Entries) {
		n = len(r.Entries)
	}
	return r.Entries[:n]
}

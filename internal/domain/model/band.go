package model

import (
	"fmt"
	"math"
)

// Default band multipliers.
const (
	DefaultBandLo  = 0.9
	DefaultBandHi  = 1.05
	DefaultBandHi2 = 1.3
)

// BandBounds are the multipliers applied to the market curve: [Lo, Hi] is the
// market band and Hi2 the replacement-cost ceiling.
type BandBounds struct {
	Lo  float64 `json:"lo"`
	Hi  float64 `json:"hi"`
	Hi2 float64 `json:"hi2"`
}

// DefaultBandBounds returns 0.9 / 1.05 / 1.3.
func DefaultBandBounds() BandBounds {
	return BandBounds{Lo: DefaultBandLo, Hi: DefaultBandHi, Hi2: DefaultBandHi2}
}

// Validate enforces 0 < Lo <= Hi <= Hi2 with finite values.
func (b BandBounds) Validate() error {
	for _, v := range []float64{b.Lo, b.Hi, b.Hi2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound in %+v", ErrInvalidBandBounds, b)
		}
	}
	if b.Lo <= 0 {
		return fmt.Errorf("%w: lo %v must be positive", ErrInvalidBandBounds, b.Lo)
	}
	if b.Lo > b.Hi || b.Hi > b.Hi2 {
		return fmt.Errorf("%w: want lo <= hi <= hi2, got %v, %v, %v", ErrInvalidBandBounds, b.Lo, b.Hi, b.Hi2)
	}
	return nil
}

// Classification places a salary relative to the market curve.
type Classification int

// Classifications in increasing salary order.
const (
	BelowMarket Classification = iota
	WithinMarket
	BelowReplacementCost
	AboveReplacementCost
	NegativeValueAdd
)

var classificationNames = [...]string{
	BelowMarket:          "below-market",
	WithinMarket:         "within-market",
	BelowReplacementCost: "below-replacement-cost",
	AboveReplacementCost: "above-replacement-cost",
	NegativeValueAdd:     "negative-value-add",
}

// Classifications lists every classification in order.
func Classifications() []Classification {
	return []Classification{BelowMarket, WithinMarket, BelowReplacementCost, AboveReplacementCost, NegativeValueAdd}
}

func (c Classification) String() string {
	if c < 0 || int(c) >= len(classificationNames) {
		return fmt.Sprintf("classification(%d)", int(c))
	}
	return classificationNames[c]
}

// MarshalText encodes the classification by name.
func (c Classification) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(classificationNames) {
		return nil, fmt.Errorf("unknown classification %d", int(c))
	}
	return []byte(classificationNames[c]), nil
}

// UnmarshalText decodes a classification name.
func (c *Classification) UnmarshalText(text []byte) error {
	for i, name := range classificationNames {
		if name == string(text) {
			*c = Classification(i)
			return nil
		}
	}
	return fmt.Errorf("unknown classification %q", string(text))
}

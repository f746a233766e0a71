package model

import (
	"errors"
)

// Sentinel error kinds for the calibration pipeline. Callers match them with
// errors.Is; producers wrap them with the offending value.
var (
	ErrEmptyDataset      = errors.New("empty dataset")
	ErrNonPositiveDomain = errors.New("productivity must be positive for a power-law fit")
	ErrInvalidSample     = errors.New("invalid sample")
	ErrFitConvergence    = errors.New("curve fit did not converge")
	ErrInvalidBandBounds = errors.New("invalid band bounds")
	ErrInvalidMultiplier = errors.New("invalid market multiplier")
	ErrMismatchedLength  = errors.New("mismatched adjustment lengths")
)

package domain

import "errors"

// Failure taxonomy for the scoring and learning pipeline. All are
// per-stock or per-run scoped: one stock's failure excludes that stock
// from the day's output, it never aborts the run.
var (
	// ErrInsufficientHistory - fewer bars than the required lookback.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrInvalidBarData - a bar with a zero/negative denominator or
	// otherwise unusable values.
	ErrInvalidBarData = errors.New("invalid bar data")

	// ErrInvalidIndicatorValue - NaN/Inf leaked into an indicator.
	ErrInvalidIndicatorValue = errors.New("invalid indicator value")

	// ErrUnknownGrade - a grade outside the closed S/A/B/C/D set.
	// Unreachable through GradeFor; kept as a defensive check.
	ErrUnknownGrade = errors.New("unknown grade")

	// ErrInsufficientSamples - optimizer refused to run on too few
	// score/outcome pairs.
	ErrInsufficientSamples = errors.New("insufficient learning samples")

	// ErrInvalidWeight - a weight outside (0, max] was about to be used.
	ErrInvalidWeight = errors.New("invalid weight value")
)

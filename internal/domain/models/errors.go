package models

import "errors"

// Domain error kinds. Scoring components absorb these locally and degrade to
// a neutral contribution; training surfaces them to the caller.
var (
	// ErrNoData means no price series could be obtained at all.
	ErrNoData = errors.New("no price data")

	// ErrInsufficientData means too few bars or valid rows remain to
	// compute an indicator or train a model.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrModelNotFound means inference was requested before any
	// successful training run persisted a model.
	ErrModelNotFound = errors.New("model not found")

	// ErrInvalidFeature means an undefined feature value reached a stage
	// that requires a fully defined vector.
	ErrInvalidFeature = errors.New("invalid feature vector")
)

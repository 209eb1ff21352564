package ml

import "errors"

var (
	// ErrEmptyTrainingSet indicates Fit was called without rows.
	ErrEmptyTrainingSet = errors.New("ml: empty training set")

	// ErrNotFitted indicates Predict was called on an unfitted pipeline.
	ErrNotFitted = errors.New("ml: pipeline not fitted")

	// ErrLengthMismatch indicates records and targets differ in length.
	ErrLengthMismatch = errors.New("ml: records and targets differ in length")
)

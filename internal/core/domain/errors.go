package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Data source errors.

	// ErrSourceUnavailable indicates there is no local raw file and the
	// remote repository could not provide one.
	ErrSourceUnavailable = errors.New("no data source available")

	// ErrSourceNotFound indicates the authoritative raw file does not exist on disk.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrRemoteUnavailable indicates the remote repository cannot be queried,
	// either for lack of credentials or because the call failed.
	ErrRemoteUnavailable = errors.New("remote repository unavailable")

	// Storage and training errors.

	// ErrStorageFailure indicates the analytical store rejected a load or save.
	ErrStorageFailure = errors.New("storage failure")

	// ErrNoTrainingData indicates the training subset is empty.
	ErrNoTrainingData = errors.New("no training data")

	// Serving errors.

	// ErrModelUnavailable indicates the model cache is empty or the artifact failed to load.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrPredictionOutOfRange indicates a prediction is not finite, not positive,
	// or above the configured price ceiling.
	ErrPredictionOutOfRange = errors.New("prediction out of range")

	// Dispatch errors.

	// ErrQueueFull indicates the pipeline dispatcher cannot accept more jobs.
	ErrQueueFull = errors.New("pipeline queue full")

	// ErrDispatcherStopped indicates the pipeline dispatcher is not running.
	ErrDispatcherStopped = errors.New("pipeline dispatcher stopped")
)

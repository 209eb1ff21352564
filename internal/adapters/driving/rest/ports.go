package rest

import (
	"errors"

	"github.com/custodia-labs/preciar/internal/core/ports/driving"
)

// ErrMissingPredictionService is returned when the prediction service is not provided.
var ErrMissingPredictionService = errors.New("rest: prediction service is required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Prediction is required.
	Prediction driving.PredictionService

	// Pipeline backs the synchronous POST /v1/ingest and POST /v1/train. Optional.
	Pipeline driving.PipelineService

	// Dispatcher backs the background pipeline and job routes. Optional.
	Dispatcher driving.Dispatcher
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Prediction == nil {
		return ErrMissingPredictionService
	}
	return nil
}

package mcp

import (
	"github.com/custodia-labs/preciar/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Prediction answers price predictions and health checks.
	Prediction driving.PredictionService

	// Dispatcher queues pipeline runs.
	Dispatcher driving.Dispatcher

	// Experiments exposes the training history.
	Experiments driving.ExperimentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Prediction == nil {
		return ErrMissingPredictionService
	}
	// Dispatcher and Experiments are optional
	return nil
}

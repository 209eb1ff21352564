package services

import (
	"context"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
	"github.com/custodia-labs/preciar/internal/core/ports/driving"
)

// Ensure ExperimentService implements the interface.
var _ driving.ExperimentService = (*ExperimentService)(nil)

// DefaultExperimentLimit is used when List is called with a non-positive limit.
const DefaultExperimentLimit = 20

// ExperimentService exposes the experiment history.
type ExperimentService struct {
	store driven.ExperimentStore
}

// NewExperimentService creates an experiment service.
func NewExperimentService(store driven.ExperimentStore) *ExperimentService {
	return &ExperimentService{store: store}
}

// List returns the most recent experiment records, newest first.
func (s *ExperimentService) List(ctx context.Context, limit int) ([]domain.ExperimentRecord, error) {
	if limit <= 0 {
		limit = DefaultExperimentLimit
	}
	return s.store.List(ctx, limit)
}

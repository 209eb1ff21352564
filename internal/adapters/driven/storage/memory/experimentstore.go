package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
)

// Ensure ExperimentStore implements the interface.
var _ driven.ExperimentStore = (*ExperimentStore)(nil)

// ExperimentStore is an in-memory implementation of driven.ExperimentStore.
type ExperimentStore struct {
	mu      sync.RWMutex
	records []domain.ExperimentRecord
}

// NewExperimentStore creates a new in-memory experiment store.
func NewExperimentStore() *ExperimentStore {
	return &ExperimentStore{}
}

// Append stores records. A batch with an unnamed record is rejected whole.
func (s *ExperimentStore) Append(ctx context.Context, records []domain.ExperimentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range records {
		if r.Experiment == "" || r.Model == "" {
			return domain.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

// List returns up to limit records, newest first.
func (s *ExperimentStore) List(_ context.Context, limit int) ([]domain.ExperimentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ExperimentRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

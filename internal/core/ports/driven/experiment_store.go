package driven

import (
	"context"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// ExperimentStore is the append-only history of training runs.
// Implementations create their schema if absent and never update or delete rows.
type ExperimentStore interface {
	// Append stores records in one transaction.
	Append(ctx context.Context, records []domain.ExperimentRecord) error

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]domain.ExperimentRecord, error)
}

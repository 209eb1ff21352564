package driven

import (
	"context"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// RawFilter selects the training subset of the raw table.
type RawFilter struct {
	// Region matches the l2 column. Empty disables the condition.
	Region string

	// Operation matches the operation_type column. Empty disables the condition.
	Operation string
}

// AnalyticalStore holds the raw table, the clean table and the columnar snapshot.
// Implementations release their database handle before every method returns.
type AnalyticalStore interface {
	// HasRawTable reports whether the raw table exists.
	HasRawTable(ctx context.Context) (bool, error)

	// ReplaceRawTable drops and recreates the raw table from a CSV file.
	// Returns the number of loaded rows.
	ReplaceRawTable(ctx context.Context, csvPath string) (int64, error)

	// ExportSnapshot writes the raw table to a columnar file, overwriting it.
	ExportSnapshot(ctx context.Context, path string) error

	// LoadRaw reads the filtered raw table into memory.
	LoadRaw(ctx context.Context, filter RawFilter) (*domain.Table, error)

	// ReplaceCleanTable drops and recreates the clean table from table.
	ReplaceCleanTable(ctx context.Context, table *domain.Table) error
}

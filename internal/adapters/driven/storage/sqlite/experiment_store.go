package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
)

// experimentStore implements driven.ExperimentStore.
// Rows are only ever inserted.
type experimentStore struct {
	store *Store
}

var _ driven.ExperimentStore = (*experimentStore)(nil)

// Append stores records in one transaction.
func (s *experimentStore) Append(ctx context.Context, records []domain.ExperimentRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning experiment transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO experiments (
			recorded_at, experiment, model, rmse, mae, r2,
			rf_n_estimators, rf_min_samples_split,
			gb_n_estimators, gb_learning_rate, gb_max_depth, gb_subsample,
			test_size
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing experiment insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.Experiment == "" || r.Model == "" {
			return domain.ErrInvalidInput
		}
		_, err := stmt.ExecContext(ctx,
			r.RecordedAt.UTC().Format(time.RFC3339Nano), r.Experiment, string(r.Model),
			r.Metrics.RMSE, r.Metrics.MAE, r.Metrics.R2,
			nullableInt(r.RFTrees), nullableInt(r.RFMinSamplesSplit),
			nullableInt(r.GBEstimators), nullableFloat(r.GBLearningRate),
			nullableInt(r.GBMaxDepth), nullableFloat(r.GBSubsample),
			r.TestSize,
		)
		if err != nil {
			return fmt.Errorf("inserting experiment %s/%s: %w", r.Experiment, r.Model, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing experiments: %w", err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (s *experimentStore) List(ctx context.Context, limit int) ([]domain.ExperimentRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT recorded_at, experiment, model, rmse, mae, r2,
			rf_n_estimators, rf_min_samples_split,
			gb_n_estimators, gb_learning_rate, gb_max_depth, gb_subsample,
			test_size
		FROM experiments
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying experiments: %w", err)
	}
	defer rows.Close()

	var records []domain.ExperimentRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			r                                domain.ExperimentRecord
			recordedAt, model                string
			rfTrees, rfSplit, gbEst, gbDepth sql.NullInt64
			gbLearningRate, gbSubsample      sql.NullFloat64
		)
		if err := rows.Scan(&recordedAt, &r.Experiment, &model,
			&r.Metrics.RMSE, &r.Metrics.MAE, &r.Metrics.R2,
			&rfTrees, &rfSplit, &gbEst, &gbLearningRate, &gbDepth, &gbSubsample,
			&r.TestSize); err != nil {
			return nil, fmt.Errorf("scanning experiment: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			r.RecordedAt = t
		}
		r.Model = domain.ModelFamily(model)
		r.RFTrees = intPtr(rfTrees)
		r.RFMinSamplesSplit = intPtr(rfSplit)
		r.GBEstimators = intPtr(gbEst)
		r.GBLearningRate = floatPtr(gbLearningRate)
		r.GBMaxDepth = intPtr(gbDepth)
		r.GBSubsample = floatPtr(gbSubsample)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating experiments: %w", err)
	}

	return records, nil
}

// nullableInt returns nil for a nil pointer, otherwise the value.
func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableFloat returns nil for a nil pointer, otherwise the value.
func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

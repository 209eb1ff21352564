package ml

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearData returns y = 3*x0 - 2*x1 on a small grid.
func linearData() ([][]float64, []float64) {
	var X [][]float64
	var y []float64
	for a := 0; a < 20; a++ {
		for b := 0; b < 10; b++ {
			X = append(X, []float64{float64(a), float64(b)})
			y = append(y, 3*float64(a)-2*float64(b))
		}
	}
	return X, y
}

func rmse(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s / float64(len(a)))
}

func TestForest_FitsAndIsDeterministic(t *testing.T) {
	X, y := linearData()
	cfg := ForestConfig{Trees: 20, MinSamplesSplit: 2, Seed: 7, Workers: 3}

	f1 := NewForest(cfg)
	require.NoError(t, f1.Fit(context.Background(), X, y))
	f2 := NewForest(ForestConfig{Trees: 20, MinSamplesSplit: 2, Seed: 7, Workers: 1})
	require.NoError(t, f2.Fit(context.Background(), X, y))

	p1 := f1.Predict(X)
	p2 := f2.Predict(X)
	assert.Equal(t, p1, p2)
	assert.Len(t, f1.Trees, 20)
	assert.Less(t, rmse(p1, y), 5.0)
}

func TestForest_DifferentSeedsDiffer(t *testing.T) {
	X, y := linearData()

	f1 := NewForest(ForestConfig{Trees: 5, Seed: 1})
	require.NoError(t, f1.Fit(context.Background(), X, y))
	f2 := NewForest(ForestConfig{Trees: 5, Seed: 2})
	require.NoError(t, f2.Fit(context.Background(), X, y))

	assert.NotEqual(t, f1.Predict(X), f2.Predict(X))
}

func TestForest_Errors(t *testing.T) {
	err := NewForest(ForestConfig{Trees: 3}).Fit(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)

	X, y := linearData()
	err = NewForest(ForestConfig{Trees: 0}).Fit(context.Background(), X, y)
	assert.Error(t, err)
}

func TestForest_CancelledContext(t *testing.T) {
	X, y := linearData()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewForest(ForestConfig{Trees: 10, Workers: 1}).Fit(ctx, X, y)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBoosting_ReducesErrorOverMean(t *testing.T) {
	X, y := linearData()
	b := NewBoosting(BoostingConfig{Estimators: 100, LearningRate: 0.1, MaxDepth: 3, Subsample: 0.8, Seed: 42})
	require.NoError(t, b.Fit(context.Background(), X, y))

	baseline := make([]float64, len(y))
	for i := range baseline {
		baseline[i] = Mean(y)
	}

	assert.InDelta(t, Mean(y), b.Init, 1e-9)
	assert.Len(t, b.Trees, 100)
	assert.Less(t, rmse(b.Predict(X), y), rmse(baseline, y)/4)
}

func TestBoosting_IsDeterministic(t *testing.T) {
	X, y := linearData()
	cfg := BoostingConfig{Estimators: 30, LearningRate: 0.1, MaxDepth: 2, Subsample: 0.5, Seed: 3}

	b1 := NewBoosting(cfg)
	require.NoError(t, b1.Fit(context.Background(), X, y))
	b2 := NewBoosting(cfg)
	require.NoError(t, b2.Fit(context.Background(), X, y))

	assert.Equal(t, b1.Predict(X), b2.Predict(X))
}

func TestBoosting_Errors(t *testing.T) {
	X, y := linearData()

	err := NewBoosting(BoostingConfig{Estimators: 1, LearningRate: 0.1}).Fit(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)

	err = NewBoosting(BoostingConfig{Estimators: 0, LearningRate: 0.1}).Fit(context.Background(), X, y)
	assert.Error(t, err)

	err = NewBoosting(BoostingConfig{Estimators: 5, LearningRate: 0}).Fit(context.Background(), X, y)
	assert.Error(t, err)
}

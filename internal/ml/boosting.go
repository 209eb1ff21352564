package ml

import (
	"context"
	"fmt"
	"math/rand/v2"
)

// BoostingConfig configures stochastic gradient boosting with squared loss.
type BoostingConfig struct {
	Estimators      int
	LearningRate    float64
	MaxDepth        int
	Subsample       float64
	MinSamplesSplit int
	Seed            uint64
}

// Boosting is an additive ensemble of shallow trees fitted to residuals.
type Boosting struct {
	Config BoostingConfig
	Init   float64
	Trees  []*Tree
}

// NewBoosting creates an unfitted boosting ensemble.
func NewBoosting(cfg BoostingConfig) *Boosting {
	return &Boosting{Config: cfg}
}

// Fit starts from the target mean and adds one tree per stage, each fitted to
// the current residuals of a random subsample drawn without replacement.
func (b *Boosting) Fit(ctx context.Context, X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return fmt.Errorf("fit boosting: %w", ErrEmptyTrainingSet)
	}
	if b.Config.Estimators <= 0 {
		return fmt.Errorf("fit boosting: estimators must be positive, got %d", b.Config.Estimators)
	}
	if b.Config.LearningRate <= 0 {
		return fmt.Errorf("fit boosting: learning rate must be positive, got %g", b.Config.LearningRate)
	}

	subsample := b.Config.Subsample
	if subsample <= 0 || subsample > 1 {
		subsample = 1
	}
	sampleSize := int(float64(n) * subsample)
	if sampleSize < 1 {
		sampleSize = 1
	}

	data := newBinnedMatrix(X)
	params := treeParams{MaxDepth: b.Config.MaxDepth, MinSamplesSplit: b.Config.MinSamplesSplit}

	b.Init = Mean(y)
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = b.Init
	}
	residual := make([]float64, n)
	builder := newTreeBuilder(data, residual, params)
	rng := rand.New(rand.NewPCG(b.Config.Seed, 0))

	b.Trees = make([]*Tree, 0, b.Config.Estimators)
	for stage := 0; stage < b.Config.Estimators; stage++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("fit boosting: %w", err)
		}
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}
		idx := rng.Perm(n)[:sampleSize]
		tree := builder.fit(idx)
		for i, x := range X {
			pred[i] += b.Config.LearningRate * tree.PredictRow(x)
		}
		b.Trees = append(b.Trees, tree)
	}
	return nil
}

// Predict sums the initial estimate and the scaled tree outputs.
func (b *Boosting) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		v := b.Init
		for _, t := range b.Trees {
			v += b.Config.LearningRate * t.PredictRow(x)
		}
		out[i] = v
	}
	return out
}

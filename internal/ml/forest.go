package ml

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForestConfig configures a bootstrap random forest.
type ForestConfig struct {
	Trees           int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxDepth        int
	Seed            uint64

	// Workers bounds parallel tree fitting. Zero uses GOMAXPROCS.
	Workers int
}

// Forest averages the predictions of independently grown trees.
type Forest struct {
	Config ForestConfig
	Trees  []*Tree
}

// NewForest creates an unfitted forest.
func NewForest(cfg ForestConfig) *Forest {
	return &Forest{Config: cfg}
}

// Fit grows every tree on its own bootstrap sample.
// Tree i draws its sample from a generator seeded with (Seed, i), so results
// do not depend on scheduling.
func (f *Forest) Fit(ctx context.Context, X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("fit forest: %w", ErrEmptyTrainingSet)
	}
	if f.Config.Trees <= 0 {
		return fmt.Errorf("fit forest: trees must be positive, got %d", f.Config.Trees)
	}

	data := newBinnedMatrix(X)
	params := treeParams{
		MaxDepth:        f.Config.MaxDepth,
		MinSamplesSplit: f.Config.MinSamplesSplit,
		MinSamplesLeaf:  f.Config.MinSamplesLeaf,
	}

	workers := f.Config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trees := make([]*Tree, f.Config.Trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for t := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(f.Config.Seed, uint64(t)))
			idx := make([]int, len(X))
			for i := range idx {
				idx[i] = rng.IntN(len(X))
			}
			trees[t] = newTreeBuilder(data, y, params).fit(idx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fit forest: %w", err)
	}

	f.Trees = trees
	return nil
}

// Predict averages tree outputs for each row.
func (f *Forest) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(f.Trees) == 0 {
		return out
	}
	for i, x := range X {
		var sum float64
		for _, t := range f.Trees {
			sum += t.PredictRow(x)
		}
		out[i] = sum / float64(len(f.Trees))
	}
	return out
}

package ml

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// TrainTestSplit shuffles row indices with a seeded generator and holds out
// ceil(testSize*n) rows for testing. The same n, testSize and seed always
// produce the same split.
func TrainTestSplit(n int, testSize float64, seed uint64) (train, test []int) {
	nTest := int(math.Ceil(testSize*float64(n) - 1e-9))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	return perm[nTest:], perm[:nTest]
}

// Score computes RMSE, MAE and the coefficient of determination.
// R² is 1 for a perfect fit of a constant target and 0 otherwise when the target has no variance.
func Score(actual, predicted []float64) domain.Metrics {
	n := float64(len(actual))
	if n == 0 {
		return domain.Metrics{RMSE: math.NaN(), MAE: math.NaN(), R2: math.NaN()}
	}

	rmse := floats.Distance(actual, predicted, 2) / math.Sqrt(n)
	mae := floats.Distance(actual, predicted, 1) / n

	var r2 float64
	_, variance := stat.PopMeanVariance(actual, nil)
	switch {
	case variance > 0:
		r2 = stat.RSquaredFrom(predicted, actual, nil)
	case rmse == 0:
		r2 = 1
	}
	return domain.Metrics{RMSE: rmse, MAE: mae, R2: r2}
}

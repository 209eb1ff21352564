package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

func numRec(vals map[string]float64) domain.FeatureRecord {
	return domain.FeatureRecord{Numeric: vals, Categorical: map[string]string{}}
}

func TestNumericTransformer_RobustImputesMedian(t *testing.T) {
	records := []domain.FeatureRecord{
		numRec(map[string]float64{"x": 1}),
		numRec(map[string]float64{"x": 2}),
		numRec(map[string]float64{"x": 3}),
		numRec(map[string]float64{"x": 4}),
		numRec(map[string]float64{}),
	}
	tr := NewNumericTransformer([]string{"x"}, ScalingRobust)
	tr.Fit(records)

	assert.Equal(t, 2.5, tr.Medians[0])

	out := make([]float64, 1)
	tr.Transform(numRec(map[string]float64{}), out)
	assert.InDelta(t, (2.5-tr.Centers[0])/tr.Scales[0], out[0], 1e-12)

	tr.Transform(numRec(map[string]float64{"x": math.NaN()}), out)
	assert.InDelta(t, (2.5-tr.Centers[0])/tr.Scales[0], out[0], 1e-12)
}

func TestNumericTransformer_Standard(t *testing.T) {
	records := []domain.FeatureRecord{
		numRec(map[string]float64{"x": 2}),
		numRec(map[string]float64{"x": 4}),
		numRec(map[string]float64{"x": 4}),
		numRec(map[string]float64{"x": 4}),
		numRec(map[string]float64{"x": 5}),
		numRec(map[string]float64{"x": 5}),
		numRec(map[string]float64{"x": 7}),
		numRec(map[string]float64{"x": 9}),
	}
	tr := NewNumericTransformer([]string{"x"}, ScalingStandard)
	tr.Fit(records)

	assert.Equal(t, 5.0, tr.Centers[0])
	assert.Equal(t, 2.0, tr.Scales[0])

	out := make([]float64, 1)
	tr.Transform(numRec(map[string]float64{"x": 9}), out)
	assert.Equal(t, 2.0, out[0])
}

func TestNumericTransformer_ConstantAndEmptyColumns(t *testing.T) {
	records := []domain.FeatureRecord{
		numRec(map[string]float64{"c": 3}),
		numRec(map[string]float64{"c": 3}),
	}
	tr := NewNumericTransformer([]string{"c", "empty"}, ScalingRobust)
	tr.Fit(records)

	assert.Equal(t, 1.0, tr.Scales[0], "zero spread scales by one")
	assert.Equal(t, 0.0, tr.Medians[1], "no observations impute zero")

	out := make([]float64, 2)
	tr.Transform(numRec(map[string]float64{"c": 5}), out)
	assert.Equal(t, []float64{2, 0}, out)
}

func TestCategoricalEncoder_IgnoresUnknown(t *testing.T) {
	records := []domain.FeatureRecord{
		{Categorical: map[string]string{"l3": "Palermo"}},
		{Categorical: map[string]string{"l3": "Almagro"}},
		{Categorical: map[string]string{}},
	}
	enc := NewCategoricalEncoder([]string{"l3"})
	enc.Fit(records)

	require.Equal(t, []string{"Almagro", "Palermo", MissingCategory}, enc.Categories[0])
	assert.Equal(t, 3, enc.Width())

	out := make([]float64, 3)
	enc.Transform(domain.FeatureRecord{Categorical: map[string]string{"l3": "Palermo"}}, out)
	assert.Equal(t, []float64{0, 1, 0}, out)

	enc.Transform(domain.FeatureRecord{Categorical: map[string]string{}}, out)
	assert.Equal(t, []float64{0, 0, 1}, out)

	enc.Transform(domain.FeatureRecord{Categorical: map[string]string{"l3": "Atlantis"}}, out)
	assert.Equal(t, []float64{0, 0, 0}, out)
}

func TestColumnTransformer_Transform(t *testing.T) {
	records := []domain.FeatureRecord{
		{Numeric: map[string]float64{"x": 1}, Categorical: map[string]string{"c": "a"}},
		{Numeric: map[string]float64{"x": 3}, Categorical: map[string]string{"c": "b"}},
	}
	ct := &ColumnTransformer{
		Numeric:     NewNumericTransformer([]string{"x"}, ScalingStandard),
		Categorical: NewCategoricalEncoder([]string{"c"}),
	}
	ct.Fit(records)

	X := ct.Transform(records)
	require.Len(t, X, 2)
	assert.Equal(t, 3, ct.Width())
	assert.Equal(t, []float64{-1, 1, 0}, X[0])
	assert.Equal(t, []float64{1, 0, 1}, X[1])
}

package ml

import (
	"math"
	"sort"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// MissingCategory replaces absent categorical values before encoding.
const MissingCategory = "missing"

// Scaling selects how numeric features are centred and scaled after imputation.
type Scaling string

// Available scalings.
const (
	// ScalingRobust centres on the median and divides by the inter-quartile range.
	ScalingRobust Scaling = "robust"

	// ScalingStandard centres on the mean and divides by the population standard deviation.
	ScalingStandard Scaling = "standard"
)

// NumericTransformer imputes missing values with the training median, then scales.
type NumericTransformer struct {
	Features []string
	Scaling  Scaling
	Medians  []float64
	Centers  []float64
	Scales   []float64
}

// NewNumericTransformer creates an unfitted numeric transformer.
func NewNumericTransformer(features []string, scaling Scaling) *NumericTransformer {
	return &NumericTransformer{Features: features, Scaling: scaling}
}

// Fit learns medians and scaling statistics from records.
// A feature with no observed values is imputed with 0.
func (t *NumericTransformer) Fit(records []domain.FeatureRecord) {
	k := len(t.Features)
	t.Medians = make([]float64, k)
	t.Centers = make([]float64, k)
	t.Scales = make([]float64, k)

	col := make([]float64, len(records))
	for j, name := range t.Features {
		for i, rec := range records {
			col[i] = numericValue(rec, name)
		}
		sorted := SortedFinite(col)
		median := 0.0
		if len(sorted) > 0 {
			median = Quantile(sorted, 0.5)
		}
		t.Medians[j] = median

		imputed := make([]float64, len(col))
		for i, v := range col {
			if isMissing(v) {
				v = median
			}
			imputed[i] = v
		}

		var center, scale float64
		switch t.Scaling {
		case ScalingStandard:
			center, scale = Mean(imputed), StdDev(imputed)
		default:
			sort.Float64s(imputed)
			center = Quantile(imputed, 0.5)
			scale = Quantile(imputed, 0.75) - Quantile(imputed, 0.25)
		}
		if math.IsNaN(center) {
			center = 0
		}
		if scale == 0 || math.IsNaN(scale) {
			scale = 1
		}
		t.Centers[j], t.Scales[j] = center, scale
	}
}

// Width returns the number of output columns.
func (t *NumericTransformer) Width() int {
	return len(t.Features)
}

// Transform writes the scaled features of rec into out.
func (t *NumericTransformer) Transform(rec domain.FeatureRecord, out []float64) {
	for j, name := range t.Features {
		v := numericValue(rec, name)
		if isMissing(v) {
			v = t.Medians[j]
		}
		out[j] = (v - t.Centers[j]) / t.Scales[j]
	}
}

// CategoricalEncoder fills missing categories with a constant and one-hot encodes.
// Categories unseen during Fit encode as all zeros.
type CategoricalEncoder struct {
	Features   []string
	Fill       string
	Categories [][]string
}

// NewCategoricalEncoder creates an unfitted encoder.
func NewCategoricalEncoder(features []string) *CategoricalEncoder {
	return &CategoricalEncoder{Features: features, Fill: MissingCategory}
}

// Fit learns the sorted category set of each feature.
func (e *CategoricalEncoder) Fit(records []domain.FeatureRecord) {
	e.Categories = make([][]string, len(e.Features))
	for j, name := range e.Features {
		seen := make(map[string]struct{})
		for _, rec := range records {
			seen[e.value(rec, name)] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for c := range seen {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		e.Categories[j] = cats
	}
}

// Width returns the number of output columns.
func (e *CategoricalEncoder) Width() int {
	w := 0
	for _, cats := range e.Categories {
		w += len(cats)
	}
	return w
}

// Transform writes the one-hot encoding of rec into out.
func (e *CategoricalEncoder) Transform(rec domain.FeatureRecord, out []float64) {
	offset := 0
	for j, name := range e.Features {
		cats := e.Categories[j]
		for k := range cats {
			out[offset+k] = 0
		}
		v := e.value(rec, name)
		if k := sort.SearchStrings(cats, v); k < len(cats) && cats[k] == v {
			out[offset+k] = 1
		}
		offset += len(cats)
	}
}

func (e *CategoricalEncoder) value(rec domain.FeatureRecord, name string) string {
	v, ok := rec.Categorical[name]
	if !ok {
		return e.Fill
	}
	return v
}

// ColumnTransformer concatenates numeric and categorical outputs.
type ColumnTransformer struct {
	Numeric     *NumericTransformer
	Categorical *CategoricalEncoder
}

// Fit fits both parts.
func (c *ColumnTransformer) Fit(records []domain.FeatureRecord) {
	c.Numeric.Fit(records)
	c.Categorical.Fit(records)
}

// Width returns the number of output columns.
func (c *ColumnTransformer) Width() int {
	return c.Numeric.Width() + c.Categorical.Width()
}

// Transform encodes records as a dense row-major matrix.
func (c *ColumnTransformer) Transform(records []domain.FeatureRecord) [][]float64 {
	w := c.Width()
	nw := c.Numeric.Width()
	backing := make([]float64, len(records)*w)
	X := make([][]float64, len(records))
	for i, rec := range records {
		row := backing[i*w : (i+1)*w : (i+1)*w]
		c.Numeric.Transform(rec, row[:nw])
		c.Categorical.Transform(rec, row[nw:])
		X[i] = row
	}
	return X
}

func numericValue(rec domain.FeatureRecord, name string) float64 {
	v, ok := rec.Numeric[name]
	if !ok {
		return math.NaN()
	}
	return v
}

func isMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

package ml

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/gob"
	"fmt"
	"math"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// Pipeline is a fitted preprocessing plus estimator chain.
// Exactly one of Forest and Boosting is set.
type Pipeline struct {
	Name        domain.ModelFamily
	Transformer *ColumnTransformer
	Forest      *Forest
	Boosting    *Boosting

	// LogTarget fits on log1p(y) and inverts predictions with expm1.
	LogTarget bool
}

var _ domain.Regressor = (*Pipeline)(nil)

// NewRandomForestPipeline builds the robust-scaled, log-target forest pipeline.
func NewRandomForestPipeline(numeric, categorical []string, cfg ForestConfig) *Pipeline {
	return &Pipeline{
		Name: domain.FamilyRandomForest,
		Transformer: &ColumnTransformer{
			Numeric:     NewNumericTransformer(numeric, ScalingRobust),
			Categorical: NewCategoricalEncoder(categorical),
		},
		Forest:    NewForest(cfg),
		LogTarget: true,
	}
}

// NewGradientBoostingPipeline builds the standard-scaled boosting pipeline on the raw target.
func NewGradientBoostingPipeline(numeric, categorical []string, cfg BoostingConfig) *Pipeline {
	return &Pipeline{
		Name: domain.FamilyGradientBoosting,
		Transformer: &ColumnTransformer{
			Numeric:     NewNumericTransformer(numeric, ScalingStandard),
			Categorical: NewCategoricalEncoder(categorical),
		},
		Boosting: NewBoosting(cfg),
	}
}

// Fit fits the transformer and the estimator.
func (p *Pipeline) Fit(ctx context.Context, records []domain.FeatureRecord, y []float64) error {
	if len(records) != len(y) {
		return ErrLengthMismatch
	}
	if len(records) == 0 {
		return ErrEmptyTrainingSet
	}

	p.Transformer.Fit(records)
	X := p.Transformer.Transform(records)

	target := y
	if p.LogTarget {
		target = make([]float64, len(y))
		for i, v := range y {
			target[i] = math.Log1p(v)
		}
	}

	switch {
	case p.Forest != nil:
		return p.Forest.Fit(ctx, X, target)
	case p.Boosting != nil:
		return p.Boosting.Fit(ctx, X, target)
	default:
		return fmt.Errorf("fit %s: no estimator configured", p.Name)
	}
}

// Predict returns prices on the original scale.
func (p *Pipeline) Predict(records []domain.FeatureRecord) ([]float64, error) {
	if !p.fitted() {
		return nil, ErrNotFitted
	}
	X := p.Transformer.Transform(records)

	var out []float64
	if p.Forest != nil {
		out = p.Forest.Predict(X)
	} else {
		out = p.Boosting.Predict(X)
	}
	if p.LogTarget {
		for i, v := range out {
			out[i] = math.Expm1(v)
		}
	}
	return out, nil
}

func (p *Pipeline) fitted() bool {
	if p.Transformer == nil || p.Transformer.Numeric.Medians == nil {
		return false
	}
	if p.Forest != nil {
		return len(p.Forest.Trees) > 0
	}
	return p.Boosting != nil && len(p.Boosting.Trees) > 0
}

// MarshalBinary encodes the pipeline as gzip-compressed gob.
func (p *Pipeline) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(zw).Encode(p); err != nil {
		return nil, fmt.Errorf("encode pipeline: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress pipeline: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads a pipeline written by MarshalBinary.
func Decode(data []byte) (domain.Regressor, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress pipeline: %w", err)
	}
	defer zr.Close()

	var p Pipeline
	if err := gob.NewDecoder(zr).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode pipeline: %w", err)
	}
	if !p.fitted() {
		return nil, ErrNotFitted
	}
	return &p, nil
}

package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driving"
	"github.com/custodia-labs/preciar/internal/logger"
)

// Ensure PredictionService implements the interface.
var _ driving.PredictionService = (*PredictionService)(nil)

// LatencyWindow is the number of recent request latencies averaged by Health.
const LatencyWindow = 50

// PredictionService serves guarded price predictions from the model cache.
type PredictionService struct {
	cache   driving.ModelCache
	ceiling float64
	now     func() time.Time

	mu        sync.Mutex
	latencies []float64
	next      int
}

// NewPredictionService creates a prediction service. Predictions above
// ceiling are rejected as out of range.
func NewPredictionService(cache driving.ModelCache, ceiling float64) *PredictionService {
	return &PredictionService{
		cache:     cache,
		ceiling:   ceiling,
		now:       time.Now,
		latencies: make([]float64, 0, LatencyWindow),
	}
}

// Predict validates the sample and predicts its price.
func (s *PredictionService) Predict(ctx context.Context, sample domain.Sample) (*domain.Prediction, error) {
	out, err := s.PredictBatch(ctx, []domain.Sample{sample})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// PredictBatch validates every sample, then predicts them with a single model read.
// Any invalid sample or out-of-range prediction fails the whole batch.
func (s *PredictionService) PredictBatch(ctx context.Context, samples []domain.Sample) ([]domain.Prediction, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", domain.ErrInvalidInput)
	}

	records := make([]domain.FeatureRecord, len(samples))
	currencies := make([]string, len(samples))
	for i, sample := range samples {
		sample.Normalize()
		if err := validateSample(&sample); err != nil {
			if len(samples) > 1 {
				return nil, fmt.Errorf("sample %d: %w", i, err)
			}
			return nil, err
		}
		records[i] = sample.Record()
		currencies[i] = sample.Currency
	}

	start := s.now()
	model, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := model.Predict(records)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	for i, p := range prices {
		if err := s.guard(p); err != nil {
			logger.Warn("predict: sample %d rejected: %v", i, err)
			return nil, err
		}
	}
	latency := float64(s.now().Sub(start).Microseconds()) / 1000 / float64(len(samples))
	s.recordLatency(latency)

	out := make([]domain.Prediction, len(prices))
	for i, p := range prices {
		out[i] = domain.Prediction{
			PredictedPrice: round(p, 2),
			Currency:       currencies[i],
			LatencyMS:      round(latency, 3),
		}
	}
	return out, nil
}

func (s *PredictionService) guard(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 || price > s.ceiling {
		return fmt.Errorf("%w: %g", domain.ErrPredictionOutOfRange, price)
	}
	return nil
}

// Health reports model availability, loading the model if needed.
func (s *PredictionService) Health(ctx context.Context) domain.HealthReport {
	_, err := s.cache.Get(ctx)
	if err != nil {
		logger.Warn("health: model unavailable: %v", err)
	}
	return domain.HealthReport{
		Status:       string(domain.StatusOK),
		ModelLoaded:  err == nil,
		ModelPath:    s.cache.Path(),
		AvgLatencyMS: s.averageLatency(),
	}
}

// Reload forces the cache to reread the artifact.
func (s *PredictionService) Reload(ctx context.Context) error {
	_, err := s.cache.Load(ctx, true)
	return err
}

func (s *PredictionService) recordLatency(ms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.latencies) < LatencyWindow {
		s.latencies = append(s.latencies, ms)
		return
	}
	s.latencies[s.next] = ms
	s.next = (s.next + 1) % LatencyWindow
}

func (s *PredictionService) averageLatency() *float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.latencies) == 0 {
		return nil
	}
	var sum float64
	for _, v := range s.latencies {
		sum += v
	}
	avg := sum / float64(len(s.latencies))
	return &avg
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

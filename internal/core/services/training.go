package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
	"github.com/custodia-labs/preciar/internal/core/ports/driving"
	"github.com/custodia-labs/preciar/internal/logger"
	"github.com/custodia-labs/preciar/internal/ml"
)

// Ensure TrainingService implements the interface.
var _ driving.TrainingService = (*TrainingService)(nil)

// TrainingService cleans the raw table and fits, evaluates and publishes both model families.
type TrainingService struct {
	settings    domain.Settings
	store       driven.AnalyticalStore
	artifacts   driven.ArtifactStore
	experiments driven.ExperimentStore
	exporter    driven.ExperimentExporter
	cache       driving.ModelCache
	cleaner     *Cleaner
	now         func() time.Time
}

// NewTrainingService creates a training service.
// exporter and cache may be nil.
func NewTrainingService(
	settings domain.Settings,
	store driven.AnalyticalStore,
	artifacts driven.ArtifactStore,
	experiments driven.ExperimentStore,
	exporter driven.ExperimentExporter,
	cache driving.ModelCache,
) *TrainingService {
	return &TrainingService{
		settings:    settings,
		store:       store,
		artifacts:   artifacts,
		experiments: experiments,
		exporter:    exporter,
		cache:       cache,
		cleaner:     NewCleaner(settings.Cleaning, time.Now),
		now:         time.Now,
	}
}

// stageError tags a failure with its result reason.
type stageError struct {
	reason domain.Reason
	err    error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func fail(reason domain.Reason, format string, args ...any) error {
	return &stageError{reason: reason, err: fmt.Errorf(format, args...)}
}

// Train runs the full training pipeline. It never returns an error; failures
// are reported in the result and leave the previous manifest in place.
func (s *TrainingService) Train(ctx context.Context) domain.TrainResult {
	logger.Section("Training")

	res, err := s.train(ctx)
	if err != nil {
		reason := domain.ReasonTrainingFailure
		var se *stageError
		if errors.As(err, &se) {
			reason = se.reason
		}
		logger.Error("train: %v", err)
		if res == nil {
			res = &domain.TrainResult{}
		}
		res.Status = domain.StatusError
		res.Message = err.Error()
		res.Reason = reason
		return *res
	}
	return *res
}

func (s *TrainingService) train(ctx context.Context) (*domain.TrainResult, error) {
	clean, _, err := s.loadClean(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store.ReplaceCleanTable(ctx, clean); err != nil {
		return nil, fail(domain.ReasonStorageFailure, "save clean table: %w", err)
	}
	logger.Info("train: clean table saved (%d rows)", clean.Rows())

	data := DropMissingTarget(clean)
	if data.Rows() < 2 {
		return nil, fail(domain.ReasonNoTrainingData, "train: %d rows with a known price: %w", data.Rows(), domain.ErrNoTrainingData)
	}
	records, prices := FeatureRecords(data)
	logger.Info("train: %d rows ready for training", len(records))

	hp := s.settings.Training
	trainIdx, testIdx := ml.TrainTestSplit(len(records), hp.TestSize, hp.Seed)
	xTrain, yTrain := subset(records, prices, trainIdx)
	xTest, yTest := subset(records, prices, testIdx)

	rf := ml.NewRandomForestPipeline(domain.NumericFeatures(), domain.CategoricalFeatures(), ml.ForestConfig{
		Trees:           hp.RFTrees,
		MinSamplesSplit: hp.RFMinSamplesSplit,
		Seed:            hp.Seed,
	})
	gb := ml.NewGradientBoostingPipeline(domain.NumericFeatures(), domain.CategoricalFeatures(), ml.BoostingConfig{
		Estimators:   hp.GBEstimators,
		LearningRate: hp.GBLearningRate,
		MaxDepth:     hp.GBMaxDepth,
		Subsample:    hp.GBSubsample,
		Seed:         hp.Seed,
	})

	metrics := make(map[domain.ModelFamily]domain.Metrics, 2)
	for _, p := range []*ml.Pipeline{rf, gb} {
		logger.Info("train: fitting %s on %d rows", p.Name, len(xTrain))
		if err := p.Fit(ctx, xTrain, yTrain); err != nil {
			return nil, fail(domain.ReasonTrainingFailure, "fit %s: %w", p.Name, err)
		}
		pred, err := p.Predict(xTest)
		if err != nil {
			return nil, fail(domain.ReasonTrainingFailure, "evaluate %s: %w", p.Name, err)
		}
		m := ml.Score(yTest, pred)
		metrics[p.Name] = m
		logger.Info("train: --- %s --- RMSE: %.2f, MAE: %.2f, R2: %.4f", p.Name, m.RMSE, m.MAE, m.R2)
	}

	rfMetrics, gbMetrics := metrics[domain.FamilyRandomForest], metrics[domain.FamilyGradientBoosting]
	res := &domain.TrainResult{MetricsRF: &rfMetrics, MetricsGB: &gbMetrics}

	if err := s.publish(ctx, []*ml.Pipeline{rf, gb}, metrics); err != nil {
		return res, err
	}

	at := s.now()
	res.Experiment = domain.NewExperimentID(at)
	s.record(ctx, res.Experiment, at, metrics)

	if s.cache != nil {
		if _, err := s.cache.Load(ctx, true); err != nil {
			return res, fail(domain.ReasonArtifactFailure, "reload model cache: %w", err)
		}
	}

	res.Status = domain.StatusOK
	res.Message = "training complete and model reloaded"
	return res, nil
}

// Profile returns the column profile of the cleaned training subset.
func (s *TrainingService) Profile(ctx context.Context) ([]domain.ColumnProfile, error) {
	_, profile, err := s.loadClean(ctx)
	return profile, err
}

func (s *TrainingService) loadClean(ctx context.Context) (*domain.Table, []domain.ColumnProfile, error) {
	raw, err := s.store.LoadRaw(ctx, driven.RawFilter{
		Region:    s.settings.Cleaning.Region,
		Operation: s.settings.Cleaning.Operation,
	})
	if err != nil {
		return nil, nil, fail(domain.ReasonStorageFailure, "load raw table: %w", err)
	}
	if raw.Rows() == 0 {
		return nil, nil, fail(domain.ReasonNoTrainingData, "raw table has no rows for %s/%s: %w",
			s.settings.Cleaning.Region, s.settings.Cleaning.Operation, domain.ErrNoTrainingData)
	}
	logger.Info("train: loaded %d raw rows", raw.Rows())

	clean, profile := s.cleaner.Clean(raw)
	return clean, profile, nil
}

// publish writes both artifacts and then the manifest. A failed artifact
// write returns before the manifest is touched.
func (s *TrainingService) publish(
	ctx context.Context,
	pipelines []*ml.Pipeline,
	metrics map[domain.ModelFamily]domain.Metrics,
) error {
	manifest := domain.Manifest{}
	for _, p := range pipelines {
		path := s.settings.Paths.ArtifactPath(p.Name)
		if err := s.artifacts.SaveModel(ctx, path, p); err != nil {
			return fail(domain.ReasonArtifactFailure, "save %s: %w", p.Name, err)
		}
		logger.Info("train: saved %s to %s", p.Name, path)
		manifest.Models = append(manifest.Models, domain.ManifestEntry{
			Name:    p.Name,
			Path:    path,
			Metrics: metrics[p.Name],
		})
	}

	if err := s.artifacts.WriteManifest(ctx, s.settings.Paths.ManifestPath(), manifest); err != nil {
		return fail(domain.ReasonArtifactFailure, "write manifest: %w", err)
	}
	return nil
}

// record appends experiment rows and exports tracking files. Failures are
// logged; the published artifacts stay valid.
func (s *TrainingService) record(
	ctx context.Context,
	experiment string,
	at time.Time,
	metrics map[domain.ModelFamily]domain.Metrics,
) {
	hp := s.settings.Training
	rows := domain.ExperimentRecords(experiment, at, hp,
		metrics[domain.FamilyRandomForest], metrics[domain.FamilyGradientBoosting])
	if err := s.experiments.Append(ctx, rows); err != nil {
		logger.Error("train: record experiment %s: %v", experiment, err)
	} else {
		logger.Info("train: metrics recorded for experiment %s", experiment)
	}

	if s.exporter != nil {
		if err := s.exporter.Export(ctx, hp, metrics); err != nil {
			logger.Warn("train: export params and metrics: %v", err)
		}
	}
}

// FeatureRecords converts table rows to model inputs and returns the price column.
// Missing values are left out of the record maps.
func FeatureRecords(t *domain.Table) ([]domain.FeatureRecord, []float64) {
	n := t.Rows()
	records := make([]domain.FeatureRecord, n)
	for i := range records {
		records[i] = domain.FeatureRecord{
			Numeric:     make(map[string]float64),
			Categorical: make(map[string]string),
		}
	}

	for _, name := range domain.NumericFeatures() {
		col, ok := t.Column(name)
		if !ok || col.Kind != domain.KindNumeric {
			continue
		}
		for i := 0; i < n; i++ {
			if !col.IsNull(i) {
				records[i].Numeric[name] = col.Numbers[i]
			}
		}
	}

	for _, name := range domain.CategoricalFeatures() {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		for i := 0; i < n; i++ {
			if col.IsNull(i) {
				continue
			}
			switch col.Kind {
			case domain.KindText:
				records[i].Categorical[name] = col.Texts[i]
			case domain.KindNumeric:
				records[i].Categorical[name] = strconv.FormatFloat(col.Numbers[i], 'f', -1, 64)
			}
		}
	}

	prices := make([]float64, n)
	if col, ok := t.Column(domain.ColumnPrice); ok && col.Kind == domain.KindNumeric {
		copy(prices, col.Numbers)
	}
	return records, prices
}

func subset(records []domain.FeatureRecord, y []float64, idx []int) ([]domain.FeatureRecord, []float64) {
	xs := make([]domain.FeatureRecord, len(idx))
	ys := make([]float64, len(idx))
	for j, i := range idx {
		xs[j], ys[j] = records[i], y[i]
	}
	return xs, ys
}

package domain

import "time"

// ModelFamily names one of the two trained pipelines.
type ModelFamily string

// Model families, in manifest order. The first family is the one served.
const (
	FamilyRandomForest     ModelFamily = "RandomForest"
	FamilyGradientBoosting ModelFamily = "GradientBoosting"
)

// Column names used by the feature schema.
const (
	ColumnPrice          = "price"
	ColumnLon            = "lon"
	ColumnLat            = "lat"
	ColumnRooms          = "rooms"
	ColumnBedrooms       = "bedrooms"
	ColumnBathrooms      = "bathrooms"
	ColumnSurfaceTotal   = "surface_total"
	ColumnSurfaceCovered = "surface_covered"
	ColumnDaysActive     = "days_active"
	ColumnCreatedAge     = "created_age_days"
	ColumnL3             = "l3"
	ColumnCurrency       = "currency"
	ColumnPricePeriod    = "price_period"
	ColumnPropertyType   = "property_type"
	ColumnOperationType  = "operation_type"
	ColumnStartDate      = "start_date"
	ColumnEndDate        = "end_date"
	ColumnCreatedOn      = "created_on"
	ColumnSurfaceFlagged = "surface_flagged"
)

// NumericFeatures returns the numeric model inputs in column order.
func NumericFeatures() []string {
	return []string{
		ColumnLon, ColumnLat, ColumnRooms, ColumnBedrooms, ColumnBathrooms,
		ColumnSurfaceTotal, ColumnSurfaceCovered, ColumnDaysActive, ColumnCreatedAge,
	}
}

// CategoricalFeatures returns the categorical model inputs in column order.
func CategoricalFeatures() []string {
	return []string{ColumnL3, ColumnCurrency, ColumnPricePeriod, ColumnPropertyType, ColumnOperationType}
}

// FeatureRecord is one listing as seen by a price model.
// A numeric feature that is absent or NaN is missing; so is an absent categorical feature.
type FeatureRecord struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// Regressor is a fitted price model.
type Regressor interface {
	// Predict returns one price per record, on the original price scale.
	Predict(records []FeatureRecord) ([]float64, error)

	// MarshalBinary serialises the fitted model.
	MarshalBinary() ([]byte, error)
}

// Metrics holds held-out evaluation scores.
type Metrics struct {
	RMSE float64 `json:"rmse" yaml:"rmse"`
	MAE  float64 `json:"mae" yaml:"mae"`
	R2   float64 `json:"r2" yaml:"r2"`
}

// ManifestEntry references one persisted model artifact.
type ManifestEntry struct {
	Name    ModelFamily `json:"name"`
	Path    string      `json:"path"`
	Metrics Metrics     `json:"metrics"`
}

// Manifest lists the artifacts produced by the latest successful training run.
// It is rewritten wholesale and only after every artifact it references is saved.
type Manifest struct {
	Models []ManifestEntry `json:"models"`
}

// Entry returns the entry for a model family.
func (m *Manifest) Entry(family ModelFamily) (*ManifestEntry, bool) {
	for i := range m.Models {
		if m.Models[i].Name == family {
			return &m.Models[i], true
		}
	}
	return nil, false
}

// Hyperparameters configures the split and both model families.
type Hyperparameters struct {
	TestSize float64 `yaml:"split_test_size"`
	Seed     uint64  `yaml:"seed"`

	RFTrees           int `yaml:"rf_n_estimators"`
	RFMinSamplesSplit int `yaml:"rf_min_samples_split"`

	GBEstimators   int     `yaml:"gb_n_estimators"`
	GBLearningRate float64 `yaml:"gb_learning_rate"`
	GBMaxDepth     int     `yaml:"gb_max_depth"`
	GBSubsample    float64 `yaml:"gb_subsample"`
}

// DefaultHyperparameters returns the production training configuration.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		TestSize:          0.2,
		Seed:              42,
		RFTrees:           100,
		RFMinSamplesSplit: 4,
		GBEstimators:      200,
		GBLearningRate:    0.05,
		GBMaxDepth:        3,
		GBSubsample:       0.8,
	}
}

// ExperimentRecord is one append-only row of the experiment store.
// Hyper-parameters that do not apply to Model are nil.
type ExperimentRecord struct {
	RecordedAt time.Time
	Experiment string
	Model      ModelFamily
	Metrics    Metrics

	RFTrees           *int
	RFMinSamplesSplit *int
	GBEstimators      *int
	GBLearningRate    *float64
	GBMaxDepth        *int
	GBSubsample       *float64

	TestSize float64
}

// NewExperimentID derives an experiment id from a timestamp.
func NewExperimentID(t time.Time) string {
	return "exp_" + t.Format("20060102_150405")
}

// ExperimentRecords builds the two rows recorded for a training run.
func ExperimentRecords(experiment string, at time.Time, hp Hyperparameters, rf, gb Metrics) []ExperimentRecord {
	rfTrees, rfSplit := hp.RFTrees, hp.RFMinSamplesSplit
	gbEst, gbLR, gbDepth, gbSub := hp.GBEstimators, hp.GBLearningRate, hp.GBMaxDepth, hp.GBSubsample

	return []ExperimentRecord{
		{
			RecordedAt:        at,
			Experiment:        experiment,
			Model:             FamilyRandomForest,
			Metrics:           rf,
			RFTrees:           &rfTrees,
			RFMinSamplesSplit: &rfSplit,
			TestSize:          hp.TestSize,
		},
		{
			RecordedAt:     at,
			Experiment:     experiment,
			Model:          FamilyGradientBoosting,
			Metrics:        gb,
			GBEstimators:   &gbEst,
			GBLearningRate: &gbLR,
			GBMaxDepth:     &gbDepth,
			GBSubsample:    &gbSub,
			TestSize:       hp.TestSize,
		},
	}
}

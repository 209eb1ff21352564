package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
	"github.com/custodia-labs/preciar/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyRawDir         = "paths.raw_dir"
	keyAnalyticalDB   = "paths.analytical_db"
	keyParquet        = "paths.parquet"
	keyModelsDir      = "paths.models_dir"
	keyMetricsDir     = "paths.metrics_dir"
	keyDatasetBase    = "dataset.base"
	keyDatasetSlug    = "dataset.slug"
	keyRemoteFile     = "dataset.remote_file"
	keyRemoteBaseURL  = "remote.base_url"
	keyRemoteTimeout  = "remote.timeout_seconds"
	keyRemoteDownload = "remote.download_timeout_seconds"
	keyRegion         = "cleaning.region"
	keyOperation      = "cleaning.operation"
	keySurfacePolicy  = "cleaning.surface_policy"
	keyTestSize       = "training.test_size"
	keySeed           = "training.seed"
	keyRFTrees        = "training.rf_trees"
	keyRFMinSplit     = "training.rf_min_samples_split"
	keyGBEstimators   = "training.gb_estimators"
	keyGBLearningRate = "training.gb_learning_rate"
	keyGBMaxDepth     = "training.gb_max_depth"
	keyGBSubsample    = "training.gb_subsample"
	keyPriceCeiling   = "serving.price_ceiling"
	keyServingAddr    = "serving.addr"
	keySchedEnabled   = "scheduler.enabled"
	keySchedInterval  = "scheduler.pipeline_interval"
	keyRetrainEvery   = "scheduler.retrain_interval"
	keyLogFormat      = "log.format"
	keyLogFile        = "log.file"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

// settingKinds lists every key accepted by Set.
var settingKinds = map[string]valueKind{
	keyRawDir:         kindString,
	keyAnalyticalDB:   kindString,
	keyParquet:        kindString,
	keyModelsDir:      kindString,
	keyMetricsDir:     kindString,
	keyDatasetBase:    kindString,
	keyDatasetSlug:    kindString,
	keyRemoteFile:     kindString,
	keyRemoteBaseURL:  kindString,
	keyRemoteTimeout:  kindInt,
	keyRemoteDownload: kindInt,
	keyRegion:         kindString,
	keyOperation:      kindString,
	keySurfacePolicy:  kindString,
	keyTestSize:       kindFloat,
	keySeed:           kindInt,
	keyRFTrees:        kindInt,
	keyRFMinSplit:     kindInt,
	keyGBEstimators:   kindInt,
	keyGBLearningRate: kindFloat,
	keyGBMaxDepth:     kindInt,
	keyGBSubsample:    kindFloat,
	keyPriceCeiling:   kindFloat,
	keyServingAddr:    kindString,
	keySchedEnabled:   kindBool,
	keySchedInterval:  kindDuration,
	keyRetrainEvery:   kindDuration,
	keyLogFormat:      kindString,
	keyLogFile:        kindString,
}

// SettingsService overlays configured values on the default settings.
type SettingsService struct {
	configStore driven.ConfigStore
	dataDir     string
}

// NewSettingsService creates a new settings service rooted at dataDir.
func NewSettingsService(configStore driven.ConfigStore, dataDir string) *SettingsService {
	return &SettingsService{configStore: configStore, dataDir: dataDir}
}

// Settings returns the defaults with every configured key applied.
func (s *SettingsService) Settings() domain.Settings {
	st := domain.DefaultSettings(s.dataDir)

	s.getString(keyRawDir, &st.Paths.RawDir)
	s.getString(keyAnalyticalDB, &st.Paths.AnalyticalDB)
	s.getString(keyParquet, &st.Paths.Parquet)
	s.getString(keyModelsDir, &st.Paths.ModelsDir)
	s.getString(keyMetricsDir, &st.Paths.MetricsDir)

	s.getString(keyDatasetBase, &st.Dataset.Base)
	s.getString(keyDatasetSlug, &st.Dataset.Slug)
	s.getString(keyRemoteFile, &st.Dataset.RemoteFile)

	s.getString(keyRemoteBaseURL, &st.Remote.BaseURL)
	if v, ok := s.intValue(keyRemoteTimeout); ok && v > 0 {
		st.Remote.Timeout = time.Duration(v) * time.Second
	}
	if v, ok := s.intValue(keyRemoteDownload); ok && v > 0 {
		st.Remote.DownloadTimeout = time.Duration(v) * time.Second
	}

	s.getString(keyRegion, &st.Cleaning.Region)
	s.getString(keyOperation, &st.Cleaning.Operation)
	if p := domain.SurfacePolicy(s.configStore.GetString(keySurfacePolicy)); p.IsValid() {
		st.Cleaning.SurfacePolicy = p
	}

	s.getFloat(keyTestSize, &st.Training.TestSize)
	if v, ok := s.intValue(keySeed); ok && v >= 0 {
		st.Training.Seed = uint64(v)
	}
	s.getInt(keyRFTrees, &st.Training.RFTrees)
	s.getInt(keyRFMinSplit, &st.Training.RFMinSamplesSplit)
	s.getInt(keyGBEstimators, &st.Training.GBEstimators)
	s.getFloat(keyGBLearningRate, &st.Training.GBLearningRate)
	s.getInt(keyGBMaxDepth, &st.Training.GBMaxDepth)
	s.getFloat(keyGBSubsample, &st.Training.GBSubsample)

	s.getFloat(keyPriceCeiling, &st.Serving.PriceCeiling)
	s.getString(keyServingAddr, &st.Serving.Addr)

	if _, ok := s.configStore.Get(keySchedEnabled); ok {
		st.Scheduler.Enabled = s.configStore.GetBool(keySchedEnabled)
	}
	if d, ok := s.duration(keySchedInterval); ok {
		cfg, _ := st.Scheduler.Task(domain.TaskPipelineRefresh)
		cfg.Interval = d
		st.Scheduler.SetTask(cfg)
	}
	// A retrain interval switches the retrain task on.
	if d, ok := s.duration(keyRetrainEvery); ok {
		cfg, _ := st.Scheduler.Task(domain.TaskModelRetrain)
		cfg.Interval = d
		cfg.Enabled = true
		st.Scheduler.SetTask(cfg)
	}

	if f := domain.LogFormat(s.configStore.GetString(keyLogFormat)); f.IsValid() {
		st.Log.Format = f
	}
	s.getString(keyLogFile, &st.Log.File)

	return st
}

// Get returns the raw configured value of key.
func (s *SettingsService) Get(key string) (any, bool) {
	return s.configStore.Get(key)
}

// Set parses value according to the key's type, validates it and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
	if err := validateSetting(key, parsed); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every configured key.
func (s *SettingsService) Keys() []string {
	return s.configStore.Keys()
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func parseSetting(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	default:
		return value, nil
	}
}

func validateSetting(key string, v any) error {
	switch key {
	case keySurfacePolicy:
		if p := domain.SurfacePolicy(v.(string)); !p.IsValid() {
			return fmt.Errorf("must be %q or %q", domain.SurfacePolicyClamp, domain.SurfacePolicyFlag)
		}
	case keyLogFormat:
		if f := domain.LogFormat(v.(string)); !f.IsValid() {
			return fmt.Errorf("must be %q or %q", domain.LogFormatText, domain.LogFormatJSON)
		}
	case keyTestSize:
		if f := v.(float64); f <= 0 || f >= 1 {
			return fmt.Errorf("must be between 0 and 1: %g", f)
		}
	case keyGBSubsample:
		if f := v.(float64); f <= 0 || f > 1 {
			return fmt.Errorf("must be in (0, 1]: %g", f)
		}
	case keyGBLearningRate, keyPriceCeiling:
		if f := v.(float64); f <= 0 {
			return fmt.Errorf("must be positive: %g", f)
		}
	case keySeed:
		if n := v.(int); n < 0 {
			return fmt.Errorf("must not be negative: %d", n)
		}
	case keyRemoteTimeout, keyRemoteDownload, keyRFTrees, keyRFMinSplit, keyGBEstimators, keyGBMaxDepth:
		if n := v.(int); n <= 0 {
			return fmt.Errorf("must be positive: %d", n)
		}
	case keySchedInterval, keyRetrainEvery:
		d, _ := time.ParseDuration(v.(string))
		if d < time.Minute {
			return fmt.Errorf("must be at least 1m: %s", d)
		}
	}
	return nil
}

func (s *SettingsService) getString(key string, dst *string) {
	if v := s.configStore.GetString(key); v != "" {
		*dst = v
	}
}

func (s *SettingsService) intValue(key string) (int, bool) {
	if _, ok := s.configStore.Get(key); !ok {
		return 0, false
	}
	return s.configStore.GetInt(key), true
}

func (s *SettingsService) getInt(key string, dst *int) {
	if v, ok := s.intValue(key); ok && v > 0 {
		*dst = v
	}
}

func (s *SettingsService) duration(key string) (time.Duration, bool) {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func (s *SettingsService) getFloat(key string, dst *float64) {
	if _, ok := s.configStore.Get(key); !ok {
		return
	}
	if v := s.configStore.GetFloat(key); v > 0 {
		*dst = v
	}
}

package domain

import (
	"fmt"
	"math"
)

// DefaultCurrency is assumed when a sample does not name one.
const DefaultCurrency = "USD"

// Sample is a listing submitted for price prediction.
// Optional numeric fields are pointers; nil means unknown. The binding tags
// are checked by gin on HTTP requests and by the prediction service for
// every other caller.
type Sample struct {
	Lon            *float64 `json:"lon" csv:"lon" binding:"required"`
	Lat            *float64 `json:"lat" csv:"lat" binding:"required"`
	L3             string   `json:"l3" csv:"l3" binding:"required"`
	Rooms          *float64 `json:"rooms,omitempty" csv:"rooms,omitempty" binding:"omitempty,gte=0"`
	Bedrooms       *float64 `json:"bedrooms,omitempty" csv:"bedrooms,omitempty" binding:"omitempty,gte=0"`
	Bathrooms      *float64 `json:"bathrooms,omitempty" csv:"bathrooms,omitempty" binding:"omitempty,gte=0"`
	SurfaceTotal   *float64 `json:"surface_total,omitempty" csv:"surface_total,omitempty" binding:"omitempty,gte=0"`
	SurfaceCovered *float64 `json:"surface_covered,omitempty" csv:"surface_covered,omitempty" binding:"omitempty,gte=0"`
	Currency       string   `json:"currency" csv:"currency"`
	PricePeriod    *string  `json:"price_period,omitempty" csv:"price_period,omitempty"`
	PropertyType   string   `json:"property_type" csv:"property_type" binding:"required"`
	OperationType  string   `json:"operation_type" csv:"operation_type" binding:"required"`
	DaysActive     *float64 `json:"days_active,omitempty" csv:"days_active,omitempty" binding:"omitempty,gte=0"`
	CreatedAgeDays *float64 `json:"created_age_days,omitempty" csv:"created_age_days,omitempty" binding:"omitempty,gte=0"`
}

// Normalize fills defaults in place.
func (s *Sample) Normalize() {
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
}

// Validate rejects infinite coordinates and measurements, which the binding
// tags cannot express. Errors wrap ErrInvalidInput.
func (s *Sample) Validate() error {
	for name, v := range s.numbers() {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidInput, name)
		}
	}
	return nil
}

func (s *Sample) numbers() map[string]*float64 {
	return map[string]*float64{
		ColumnLon:            s.Lon,
		ColumnLat:            s.Lat,
		ColumnRooms:          s.Rooms,
		ColumnBedrooms:       s.Bedrooms,
		ColumnBathrooms:      s.Bathrooms,
		ColumnSurfaceTotal:   s.SurfaceTotal,
		ColumnSurfaceCovered: s.SurfaceCovered,
		ColumnDaysActive:     s.DaysActive,
		ColumnCreatedAge:     s.CreatedAgeDays,
	}
}

// Record converts the sample to model input. Unknown optional values are left missing.
func (s *Sample) Record() FeatureRecord {
	rec := FeatureRecord{
		Numeric: make(map[string]float64),
		Categorical: map[string]string{
			ColumnL3:            s.L3,
			ColumnCurrency:      s.Currency,
			ColumnPropertyType:  s.PropertyType,
			ColumnOperationType: s.OperationType,
		},
	}
	for name, v := range s.numbers() {
		if v != nil {
			rec.Numeric[name] = *v
		}
	}
	if s.PricePeriod != nil {
		rec.Categorical[ColumnPricePeriod] = *s.PricePeriod
	}
	return rec
}

// Prediction is the served answer for one sample.
type Prediction struct {
	PredictedPrice float64 `json:"predicted_price"`
	Currency       string  `json:"currency"`
	LatencyMS      float64 `json:"latency_ms"`
}

// HealthReport summarises serving readiness.
type HealthReport struct {
	Status       string   `json:"status"`
	ModelLoaded  bool     `json:"model_loaded"`
	ModelPath    string   `json:"model_path"`
	AvgLatencyMS *float64 `json:"avg_latency_ms"`
}

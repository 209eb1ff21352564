package services

import (
	"math"
	"strings"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/logger"
	"github.com/custodia-labs/preciar/internal/ml"
)

// dateLayouts are tried in order when parsing text date columns.
var dateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Cleaner turns the filtered raw table into the clean table.
type Cleaner struct {
	settings domain.CleaningSettings
	now      func() time.Time
}

// NewCleaner creates a cleaner. now supplies the reference date for created_age_days.
func NewCleaner(settings domain.CleaningSettings, now func() time.Time) *Cleaner {
	if now == nil {
		now = time.Now
	}
	return &Cleaner{settings: settings, now: now}
}

// Clean drops unused columns, parses dates, clips outliers, derives the
// temporal features and applies the surface policy. raw is modified in place.
// The profile taken before clipping is returned alongside the table.
func (c *Cleaner) Clean(raw *domain.Table) (*domain.Table, []domain.ColumnProfile) {
	raw.Drop(c.settings.DropColumns...)
	CleanTemporal(raw, c.settings.DateColumns, c.settings.Placeholder)

	profile := Profile(raw)
	for _, p := range profile {
		if p.Kind == domain.KindNumeric {
			logger.Debug("profile: %s nulls=%d unique=%d min=%g q1=%g median=%g mean=%g q3=%g max=%g",
				p.Name, p.Nulls, p.Distinct, p.Min, p.Q1, p.Median, p.Mean, p.Q3, p.Max)
		}
	}

	clipped := ClipOutliers(raw, profile)
	logger.Debug("clean: clipped %d values", clipped)

	DeriveFeatures(raw, c.now())

	if n := ApplySurfacePolicy(raw, c.settings.SurfacePolicy); n > 0 {
		logger.Info("clean: %d rows with covered surface above total (%s)", n, c.settings.SurfacePolicy)
	}
	return raw, profile
}

// Profile computes per-column statistics. Quantiles are NaN for non-numeric columns.
func Profile(t *domain.Table) []domain.ColumnProfile {
	profiles := make([]domain.ColumnProfile, 0, len(t.Columns))
	for _, col := range t.Columns {
		p := domain.ColumnProfile{
			Name:     col.Name,
			Kind:     col.Kind,
			Nulls:    col.NullCount(),
			Distinct: distinct(col),
			Min:      math.NaN(),
			Q1:       math.NaN(),
			Median:   math.NaN(),
			Mean:     math.NaN(),
			Q3:       math.NaN(),
			Max:      math.NaN(),
		}
		if col.Kind == domain.KindNumeric {
			sorted := ml.SortedFinite(col.Numbers)
			if len(sorted) > 0 {
				p.Min, p.Max = ml.Range(sorted)
				p.Q1 = ml.Quantile(sorted, 0.25)
				p.Median = ml.Quantile(sorted, 0.5)
				p.Q3 = ml.Quantile(sorted, 0.75)
				p.Mean = ml.Mean(sorted)
			}
		}
		profiles = append(profiles, p)
	}
	return profiles
}

func distinct(col *domain.Column) int {
	seen := make(map[any]struct{})
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		switch col.Kind {
		case domain.KindTime:
			seen[col.Times[i].UnixNano()] = struct{}{}
		default:
			seen[col.Value(i)] = struct{}{}
		}
	}
	return len(seen)
}

// ClipOutliers clamps every numeric column with a positive IQR to
// [Q1-1.5*IQR, Q3+1.5*IQR]. Rows are never removed and missing values stay missing.
// Returns the number of values changed.
func ClipOutliers(t *domain.Table, profile []domain.ColumnProfile) int {
	byName := make(map[string]domain.ColumnProfile, len(profile))
	for _, p := range profile {
		byName[p.Name] = p
	}

	changed := 0
	for _, col := range t.NumericColumns() {
		p, ok := byName[col.Name]
		if !ok {
			continue
		}
		iqr := p.IQR()
		if math.IsNaN(iqr) || iqr <= 0 {
			continue
		}
		lower, upper := p.Q1-1.5*iqr, p.Q3+1.5*iqr
		for i, v := range col.Numbers {
			if math.IsNaN(v) {
				continue
			}
			clamped := math.Min(math.Max(v, lower), upper)
			if clamped != v {
				col.Numbers[i] = clamped
				changed++
			}
		}
	}
	return changed
}

// CleanTemporal converts the named columns to time columns. The placeholder
// and unparsable values become missing. Absent columns are skipped.
func CleanTemporal(t *domain.Table, columns []string, placeholder string) {
	for _, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			continue
		}

		n := col.Len()
		times := make([]time.Time, n)
		valid := make([]bool, n)
		bad := 0
		for i := 0; i < n; i++ {
			if col.IsNull(i) {
				continue
			}
			switch col.Kind {
			case domain.KindTime:
				if placeholder != "" && col.Times[i].Format(domain.DateLayout) == placeholder {
					continue
				}
				times[i], valid[i] = col.Times[i], true
			case domain.KindText:
				s := strings.TrimSpace(col.Texts[i])
				if s == "" || s == placeholder {
					continue
				}
				if ts, ok := parseDate(s); ok {
					times[i], valid[i] = ts, true
				} else {
					bad++
				}
			default:
				bad++
			}
		}
		if bad > 0 {
			logger.Warn("clean: %d unparsable values in %s set to missing", bad, name)
		}
		t.Set(domain.NewTimeColumn(name, times, valid))
	}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// DeriveFeatures adds days_active (end_date - start_date) and created_age_days
// (now - created_on) in whole days. A missing or absent source date yields a missing value.
func DeriveFeatures(t *domain.Table, now time.Time) {
	n := t.Rows()
	start, _ := t.Column(domain.ColumnStartDate)
	end, _ := t.Column(domain.ColumnEndDate)
	created, _ := t.Column(domain.ColumnCreatedOn)

	active := make([]float64, n)
	age := make([]float64, n)
	for i := 0; i < n; i++ {
		active[i], age[i] = math.NaN(), math.NaN()
		if s, ok := timeAt(start, i); ok {
			if e, ok := timeAt(end, i); ok {
				active[i] = wholeDays(e.Sub(s))
			}
		}
		if c, ok := timeAt(created, i); ok {
			age[i] = wholeDays(now.Sub(c))
		}
	}
	t.Set(domain.NewNumericColumn(domain.ColumnDaysActive, active))
	t.Set(domain.NewNumericColumn(domain.ColumnCreatedAge, age))
}

func timeAt(col *domain.Column, i int) (time.Time, bool) {
	if col == nil || col.Kind != domain.KindTime || col.IsNull(i) {
		return time.Time{}, false
	}
	return col.Times[i], true
}

func wholeDays(d time.Duration) float64 {
	return math.Floor(d.Hours() / 24)
}

// ApplySurfacePolicy handles rows where surface_covered exceeds surface_total.
// Clamp lowers surface_covered; flag adds a surface_flagged indicator column.
// Returns the number of inconsistent rows.
func ApplySurfacePolicy(t *domain.Table, policy domain.SurfacePolicy) int {
	total, okT := t.Column(domain.ColumnSurfaceTotal)
	covered, okC := t.Column(domain.ColumnSurfaceCovered)
	if !okT || !okC || total.Kind != domain.KindNumeric || covered.Kind != domain.KindNumeric {
		return 0
	}

	var flags []float64
	if policy == domain.SurfacePolicyFlag {
		flags = make([]float64, t.Rows())
	}

	count := 0
	for i, c := range covered.Numbers {
		tot := total.Numbers[i]
		if math.IsNaN(c) || math.IsNaN(tot) || c <= tot {
			continue
		}
		count++
		if flags != nil {
			flags[i] = 1
		} else {
			covered.Numbers[i] = tot
		}
	}
	if flags != nil {
		t.Set(domain.NewNumericColumn(domain.ColumnSurfaceFlagged, flags))
	}
	return count
}

// DropMissingTarget returns the rows with a known price.
func DropMissingTarget(t *domain.Table) *domain.Table {
	price, ok := t.Column(domain.ColumnPrice)
	if !ok {
		return t.Filter(func(int) bool { return false })
	}
	return t.Filter(func(i int) bool { return !price.IsNull(i) })
}
